// Package trace implements a binary wire format for recorded pointer-event
// streams, so gestures can be captured once and replayed deterministically
// into a viewer (tests, demos, bug reproductions).
//
// A trace is a sequence of frames. Each frame is an 8-byte header followed
// by a CBOR payload:
//
//	[0:2]  magic   (big-endian uint16, 0x4754 "GT")
//	[2]    version (uint8, 1)
//	[3]    type    (uint8, MessageType)
//	[4:8]  length  (little-endian uint32, payload bytes)
package trace

import (
	"time"

	"github.com/gogpu/docview"
)

// MessageType identifies the kind of a trace frame.
type MessageType uint8

const (
	// MsgMeta carries trace metadata and is written once, first.
	MsgMeta MessageType = 0x01

	// MsgEvent carries one pointer event.
	MsgEvent MessageType = 0x02
)

// Meta describes a recorded trace.
type Meta struct {
	Name       string  `cbor:"name,omitempty"`
	ContainerW float64 `cbor:"cw,omitempty"`
	ContainerH float64 `cbor:"ch,omitempty"`
}

// TracePoint is a touch position.
type TracePoint struct {
	X float64 `cbor:"x"`
	Y float64 `cbor:"y"`
}

// Event is one recorded pointer event. AtMs is milliseconds since the
// start of the trace.
type Event struct {
	Kind    uint8        `cbor:"kind"`
	Touches []TracePoint `cbor:"touches,omitempty"`
	AtMs    uint64       `cbor:"at"`
}

// toPointer converts a recorded event back into a live pointer event,
// anchored at the given base time.
func (e Event) toPointer(base time.Time) docview.PointerEvent {
	touches := make([]docview.Point, len(e.Touches))
	for i, t := range e.Touches {
		touches[i] = docview.Pt(t.X, t.Y)
	}
	return docview.PointerEvent{
		Kind:    docview.PointerKind(e.Kind),
		Touches: touches,
		Time:    base.Add(time.Duration(e.AtMs) * time.Millisecond),
	}
}

// fromPointer converts a live pointer event into its recorded form.
func fromPointer(ev docview.PointerEvent, start time.Time) Event {
	touches := make([]TracePoint, len(ev.Touches))
	for i, p := range ev.Touches {
		touches[i] = TracePoint{X: p.X, Y: p.Y}
	}
	at := ev.Time.Sub(start)
	if at < 0 {
		at = 0
	}
	return Event{
		Kind:    uint8(ev.Kind),
		Touches: touches,
		AtMs:    uint64(at / time.Millisecond),
	}
}
