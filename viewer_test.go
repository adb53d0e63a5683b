package docview

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"
)

// eventLog collects emitted events for inspection.
type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) handler(ev Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func (l *eventLog) all() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

func (l *eventLog) progress() []float64 {
	var out []float64
	for _, ev := range l.all() {
		if p, ok := ev.(LoadProgressEvent); ok {
			out = append(out, p.Progress)
		}
	}
	return out
}

func (l *eventLog) count(match func(Event) bool) int {
	n := 0
	for _, ev := range l.all() {
		if match(ev) {
			n++
		}
	}
	return n
}

func newTestViewer(doc Document, opts ...Option) (*Viewer, *eventLog) {
	v := New(&fakeEngine{doc: doc}, opts...)
	v.SetContainerSize(400, 800)
	log := &eventLog{}
	v.OnEvent(log.handler)
	return v, log
}

func TestViewerLoadLifecycle(t *testing.T) {
	doc := newFakeDoc(3, 400, 800)
	v, log := newTestViewer(doc)
	defer v.Close()

	if err := v.LoadDocument(context.Background(), "doc.bin"); err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	v.Wait()

	// The initial viewport covers pages 1-2 with the prefetch margin;
	// page 3 waits for a scroll.
	if !v.IsLoading() {
		t.Error("IsLoading = false before all pages rendered")
	}
	if n := v.PageCount(); n != 3 {
		t.Errorf("PageCount = %d, want 3", n)
	}

	v.SetScroll(800)
	v.Wait()

	if v.IsLoading() {
		t.Error("IsLoading = true after completion")
	}
	if p := v.Progress(); p != 1 {
		t.Errorf("Progress = %v, want 1", p)
	}

	if n := log.count(func(ev Event) bool { _, ok := ev.(LoadStartEvent); return ok }); n != 1 {
		t.Errorf("load-start events = %d, want 1", n)
	}
	if n := log.count(func(ev Event) bool { _, ok := ev.(LoadCompleteEvent); return ok }); n != 1 {
		t.Errorf("load-complete events = %d, want 1", n)
	}
	for _, ev := range log.all() {
		if c, ok := ev.(LoadCompleteEvent); ok && c.PageCount != 3 {
			t.Errorf("load-complete page count = %d, want 3", c.PageCount)
		}
	}

	// Progress events are strictly increasing and end at 1; out-of-order
	// scheduler reports are suppressed.
	progress := log.progress()
	if len(progress) == 0 {
		t.Fatal("no load-progress events")
	}
	last := 0.0
	for i, p := range progress {
		if p <= last {
			t.Errorf("progress[%d] = %v not strictly increasing (prev %v)", i, p, last)
		}
		last = p
	}
	if last != 1 {
		t.Errorf("final progress event = %v, want 1", last)
	}

	// Events arrive in commit order: load-start first, load-complete last
	// among the load events, progress 1 immediately before it.
	events := log.all()
	if _, ok := events[0].(LoadStartEvent); !ok {
		t.Errorf("first event = %T, want LoadStartEvent", events[0])
	}
	for i, ev := range events {
		if _, ok := ev.(LoadCompleteEvent); !ok {
			continue
		}
		if i == 0 {
			t.Fatal("load-complete emitted first")
		}
		p, ok := events[i-1].(LoadProgressEvent)
		if !ok || p.Progress != 1 {
			t.Errorf("event before load-complete = %#v, want progress 1", events[i-1])
		}
	}
}

func TestViewerEmptySourceIsNoOp(t *testing.T) {
	v, log := newTestViewer(newFakeDoc(3, 400, 800))
	defer v.Close()

	for _, source := range []Source{nil, "", []byte{}} {
		if err := v.LoadDocument(context.Background(), source); err != nil {
			t.Errorf("LoadDocument(%#v) = %v, want nil", source, err)
		}
	}
	if events := log.all(); len(events) != 0 {
		t.Errorf("events = %v, want none", events)
	}
	if v.IsLoading() {
		t.Error("IsLoading = true after no-op loads")
	}
}

func TestViewerLoadError(t *testing.T) {
	openErr := errors.New("corrupt document")
	v := New(&fakeEngine{err: openErr})
	v.SetContainerSize(400, 800)
	log := &eventLog{}
	v.OnEvent(log.handler)
	defer v.Close()

	err := v.LoadDocument(context.Background(), "doc.bin")
	if !errors.Is(err, openErr) {
		t.Fatalf("LoadDocument error = %v, want %v", err, openErr)
	}
	if v.IsLoading() {
		t.Error("IsLoading = true after failed load")
	}

	events := log.all()
	if len(events) != 2 {
		t.Fatalf("events = %v, want [load-start load-error]", events)
	}
	if _, ok := events[0].(LoadStartEvent); !ok {
		t.Errorf("first event = %T, want LoadStartEvent", events[0])
	}
	le, ok := events[1].(LoadErrorEvent)
	if !ok {
		t.Fatalf("second event = %T, want LoadErrorEvent", events[1])
	}
	if !errors.Is(le.Err, openErr) {
		t.Errorf("load-error err = %v, want %v", le.Err, openErr)
	}
}

func TestViewerReloadFailureKeepsDocument(t *testing.T) {
	doc := newFakeDoc(3, 400, 800)
	engine := &fakeEngine{doc: doc}
	v := New(engine)
	v.SetContainerSize(400, 800)
	defer v.Close()

	if err := v.LoadDocument(context.Background(), "doc.bin"); err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	v.Wait()

	engine.err = errors.New("transient failure")
	if err := v.LoadDocument(context.Background(), "other.bin"); err == nil {
		t.Fatal("reload succeeded, want error")
	}

	if doc.isClosed() {
		t.Error("current document closed by failed reload")
	}
	if n := v.PageCount(); n != 3 {
		t.Errorf("PageCount = %d, want 3 (old document intact)", n)
	}
}

func TestViewerPinchEmitsScaleChange(t *testing.T) {
	v, log := newTestViewer(newFakeDoc(3, 400, 800))
	defer v.Close()

	if err := v.LoadDocument(context.Background(), "doc.bin"); err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	v.SetScroll(800)
	v.Wait()

	base := time.Now()
	v.Pointer(PointerEvent{Kind: PointerDown, Touches: []Point{Pt(200, 360), Pt(200, 440)}, Time: base})
	v.Pointer(PointerEvent{Kind: PointerMove, Touches: []Point{Pt(200, 340), Pt(200, 460)}, Time: base.Add(16 * time.Millisecond)})
	v.Pointer(PointerEvent{Kind: PointerUp, Time: base.Add(32 * time.Millisecond)})

	if s := v.Scale(); math.Abs(s-1.3) > 1e-9 {
		t.Fatalf("Scale = %v, want 1.3", s)
	}

	var scales []float64
	for _, ev := range log.all() {
		if sc, ok := ev.(ScaleChangeEvent); ok {
			scales = append(scales, sc.Scale)
		}
	}
	if len(scales) == 0 {
		t.Fatal("no scale-change events")
	}
	if got := scales[len(scales)-1]; math.Abs(got-1.3) > 1e-9 {
		t.Errorf("last scale-change = %v, want 1.3", got)
	}

	v.ResetPosition()
	events := log.all()
	final, ok := events[len(events)-1].(ScaleChangeEvent)
	if !ok || final.Scale != 1 {
		t.Errorf("event after ResetPosition = %#v, want scale-change 1", events[len(events)-1])
	}
}

func TestViewerClosedRejectsLoad(t *testing.T) {
	v, log := newTestViewer(newFakeDoc(1, 400, 800))
	v.Close()

	err := v.LoadDocument(context.Background(), "doc.bin")
	if !errors.Is(err, ErrViewerClosed) {
		t.Fatalf("LoadDocument after Close = %v, want ErrViewerClosed", err)
	}
	if events := log.all(); len(events) != 0 {
		t.Errorf("events after close = %v, want none", events)
	}

	// Close is idempotent.
	v.Close()
}

func TestViewerStepDrivesInertia(t *testing.T) {
	v, _ := newTestViewer(newFakeDoc(3, 400, 800))
	defer v.Close()

	if err := v.LoadDocument(context.Background(), "doc.bin"); err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	v.Wait()

	base := time.Now()
	v.Pointer(PointerEvent{Kind: PointerDown, Touches: []Point{Pt(200, 400)}, Time: base})
	for i := 1; i <= 3; i++ {
		v.Pointer(PointerEvent{Kind: PointerMove, Touches: []Point{Pt(200, 400 - float64(i)*30)}, Time: base.Add(time.Duration(i) * 16 * time.Millisecond)})
	}
	v.Pointer(PointerEvent{Kind: PointerUp, Time: base.Add(48 * time.Millisecond)})

	if !v.Step() {
		t.Fatal("Step = false right after flick")
	}
	steps := 1
	for v.Step() {
		if steps++; steps > 500 {
			t.Fatal("inertial scroll did not terminate")
		}
	}
	if !v.Transform().Settled() {
		t.Error("transform not settled after animation")
	}
}

func TestViewerConfigOptions(t *testing.T) {
	v, _ := newTestViewer(newFakeDoc(1, 400, 800),
		WithMaxScale(8),
		WithResolutionMultiplier(2),
		WithViewportBufferPages(1),
	)
	defer v.Close()

	cfg := v.Config()
	if cfg.MaxScale != 8 {
		t.Errorf("MaxScale = %v, want 8", cfg.MaxScale)
	}
	if cfg.ResolutionMultiplier != 2 {
		t.Errorf("ResolutionMultiplier = %v, want 2", cfg.ResolutionMultiplier)
	}
	if cfg.ViewportBufferPages != 1 {
		t.Errorf("ViewportBufferPages = %d, want 1", cfg.ViewportBufferPages)
	}
}
