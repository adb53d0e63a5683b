package trace

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/gogpu/docview"
)

// Recorder captures a pointer-event stream into the trace wire format.
// The first recorded event anchors the trace timeline.
type Recorder struct {
	meta    Meta
	start   time.Time
	started bool
	buf     bytes.Buffer
	events  int
}

// NewRecorder creates a recorder. The meta frame is written lazily, ahead
// of the first event.
func NewRecorder(meta Meta) *Recorder {
	return &Recorder{meta: meta}
}

// Record appends one pointer event to the trace.
func (r *Recorder) Record(ev docview.PointerEvent) error {
	if !r.started {
		frame, err := EncodeFrame(MsgMeta, r.meta)
		if err != nil {
			return err
		}
		r.buf.Write(frame)
		r.start = ev.Time
		r.started = true
	}

	frame, err := EncodeFrame(MsgEvent, fromPointer(ev, r.start))
	if err != nil {
		return err
	}
	r.buf.Write(frame)
	r.events++
	return nil
}

// Events returns the number of recorded events.
func (r *Recorder) Events() int { return r.events }

// Bytes returns the encoded trace.
func (r *Recorder) Bytes() []byte {
	return bytes.Clone(r.buf.Bytes())
}

// Replay decodes a trace and delivers each pointer event to fn in order,
// with timestamps re-anchored at base. It returns the trace metadata and
// the number of events delivered.
//
// Replay is synchronous: recorded inter-event delays are reflected in the
// event timestamps, not in wall-clock pacing.
func Replay(data []byte, base time.Time, fn func(docview.PointerEvent)) (Meta, int, error) {
	var meta Meta
	delivered := 0

	for len(data) > 0 {
		header, payload, rest, err := DecodeFrame(data)
		if err != nil {
			return meta, delivered, err
		}
		data = rest

		switch header.Type {
		case MsgMeta:
			if err := cbor.Unmarshal(payload, &meta); err != nil {
				return meta, delivered, fmt.Errorf("trace: cbor decode meta: %w", err)
			}
		case MsgEvent:
			var ev Event
			if err := cbor.Unmarshal(payload, &ev); err != nil {
				return meta, delivered, fmt.Errorf("trace: cbor decode event: %w", err)
			}
			fn(ev.toPointer(base))
			delivered++
		default:
			// Unknown frame types are skipped for forward compatibility.
		}
	}
	return meta, delivered, nil
}
