package docview

import (
	"context"
	"sync"
)

// ViewerStats are counters for monitoring a viewer instance.
type ViewerStats struct {
	EventsEmitted int
	Scheduler     SchedulerStats
}

// Viewer is the host adapter: it binds the container geometry and
// configuration, forwards device pointer events into the gesture
// controller, and exposes the public method and event surface.
//
// All public methods are safe for concurrent use, except Pointer, which
// consumes a single sequential pointer stream.
type Viewer struct {
	mu sync.Mutex

	cfg    Config
	engine Engine

	transform  *Transform
	controller *Controller
	scheduler  *Scheduler

	container Size

	loading      bool
	completeSent bool
	pageCount    int
	lastProgress float64
	closed       bool

	// emitMu serializes handler invocation so event order matches the
	// order state changes were committed.
	emitMu        sync.Mutex
	handlers      []EventHandler
	eventsEmitted int
}

// New creates a viewer backed by the given document engine.
func New(engine Engine, opts ...Option) *Viewer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	v := &Viewer{
		cfg:    cfg,
		engine: engine,
	}
	v.transform = NewTransform(cfg)
	v.controller = NewController(v.transform, cfg)
	v.scheduler = NewScheduler(cfg)

	v.transform.SetOnScaleChange(func(scale float64) {
		v.emit(ScaleChangeEvent{Scale: scale})
	})
	v.scheduler.SetOnLayout(func(content Size) {
		v.mu.Lock()
		container := v.container
		v.mu.Unlock()
		v.transform.SetGeometry(container, content)
	})
	v.scheduler.SetOnProgress(v.handleProgress)

	return v
}

// Config returns the resolved viewer configuration.
func (v *Viewer) Config() Config { return v.cfg }

// OnEvent registers an event handler. Handlers run synchronously, in
// registration order, on the goroutine that caused the event.
func (v *Viewer) OnEvent(h EventHandler) {
	v.emitMu.Lock()
	v.handlers = append(v.handlers, h)
	v.emitMu.Unlock()
}

// SetContainerSize sets the container content-area size in pixels and
// invalidates geometry-derived state. Zero sizes degrade panning to a
// no-op; they are not an error.
func (v *Viewer) SetContainerSize(w, h float64) {
	v.mu.Lock()
	v.container = Size{W: w, H: h}
	container := v.container
	v.mu.Unlock()

	v.scheduler.SetContainerSize(container)
	v.transform.SetGeometry(container, v.scheduler.ContentSize())
}

// LoadDocument opens the source through the engine and creates the page
// slots. It returns once document metadata is obtained; individual pages
// continue rendering asynchronously as they enter the viewport.
//
// An empty source (nil, "", or empty byte slice) is a silent no-op. A
// previously loaded document is torn down only after the new document's
// metadata has been obtained, so a failed load leaves it intact.
func (v *Viewer) LoadDocument(ctx context.Context, source Source) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewerClosed
	}
	if emptySource(source) {
		v.mu.Unlock()
		return nil
	}
	v.loading = true
	v.mu.Unlock()

	v.emit(LoadStartEvent{})

	doc, err := v.engine.Open(ctx, source)
	if err == nil {
		err = v.scheduler.Load(doc)
		if err != nil {
			doc.Close()
		}
	}
	if err != nil {
		v.mu.Lock()
		v.loading = false
		v.mu.Unlock()
		v.emit(LoadErrorEvent{Err: err})
		return err
	}

	v.mu.Lock()
	v.pageCount = v.scheduler.PageCount()
	v.completeSent = false
	v.lastProgress = 0
	container := v.container
	v.mu.Unlock()

	v.transform.Reset()
	v.scheduler.SetViewport(0, container.H)
	return nil
}

// handleProgress forwards scheduler progress as load-progress events and
// emits load-complete once every page has rendered at least once.
func (v *Viewer) handleProgress(progress float64) {
	v.mu.Lock()
	if progress <= v.lastProgress && progress < 1 {
		v.mu.Unlock()
		return
	}
	v.lastProgress = progress

	complete := progress >= 1 && !v.completeSent
	if complete {
		v.completeSent = true
		v.loading = false
	}
	count := v.pageCount
	v.mu.Unlock()

	v.emit(LoadProgressEvent{Progress: progress})
	if complete {
		v.emit(LoadCompleteEvent{PageCount: count})
	}
}

// Pointer feeds one raw pointer event into the gesture controller.
// Pointer events form a single sequential stream and must be delivered
// from one goroutine.
func (v *Viewer) Pointer(ev PointerEvent) {
	v.controller.Handle(ev)
}

// Step advances the inertial-scroll animation by one frame and reports
// whether it is still running. Hosts call this from their redraw loop.
func (v *Viewer) Step() bool {
	return v.transform.Step()
}

// SetScroll delivers the container's scroll offset to the rendering
// scheduler; the viewport extent is the container height.
func (v *Viewer) SetScroll(offset float64) {
	v.mu.Lock()
	extent := v.container.H
	v.mu.Unlock()
	v.scheduler.SetViewport(offset, extent)
}

// ResetPosition restores the identity transform and emits a scale-change
// notification with value 1.
func (v *Viewer) ResetPosition() {
	v.transform.Reset()
}

// Scale returns the current zoom scale.
func (v *Viewer) Scale() float64 {
	return v.transform.Scale()
}

// IsLoading reports whether a document load is in progress: true from
// load-start until load-complete or load-error.
func (v *Viewer) IsLoading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

// PageCount returns the page count of the loaded document, 0 if none.
func (v *Viewer) PageCount() int {
	return v.scheduler.PageCount()
}

// Progress returns the rendering progress in [0,1].
func (v *Viewer) Progress() float64 {
	return v.scheduler.Progress()
}

// Transform exposes the transform engine, for hosts that need the current
// matrix or drive custom frame loops.
func (v *Viewer) Transform() *Transform { return v.transform }

// Scheduler exposes the rendering scheduler, for hosts that composite the
// page surfaces themselves.
func (v *Viewer) Scheduler() *Scheduler { return v.scheduler }

// Wait blocks until all rasterization tasks started so far have finished.
func (v *Viewer) Wait() {
	v.scheduler.Wait()
}

// Stats returns monitoring counters.
func (v *Viewer) Stats() ViewerStats {
	v.emitMu.Lock()
	emitted := v.eventsEmitted
	v.emitMu.Unlock()
	return ViewerStats{
		EventsEmitted: emitted,
		Scheduler:     v.scheduler.Stats(),
	}
}

// Close tears down the viewer: cancels rendering, discards surfaces, and
// closes the document. The viewer must not be used afterwards.
func (v *Viewer) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.loading = false
	v.mu.Unlock()

	v.scheduler.Close()
}

// emit delivers an event to all registered handlers, serialized so that
// handlers observe events in commit order.
func (v *Viewer) emit(ev Event) {
	v.emitMu.Lock()
	handlers := v.handlers
	v.eventsEmitted++
	for _, h := range handlers {
		h(ev)
	}
	v.emitMu.Unlock()
}

// emptySource reports whether the source is absent: nil, an empty string,
// or an empty byte slice.
func emptySource(source Source) bool {
	switch s := source.(type) {
	case nil:
		return true
	case string:
		return s == ""
	case []byte:
		return len(s) == 0
	default:
		return false
	}
}
