package docview

import (
	"context"
	"sync"

	"github.com/gogpu/docview/surface"
)

// SlotStatus is the render status of a page slot.
type SlotStatus uint8

const (
	// SlotPending means no rasterization has been requested (or the slot
	// was evicted and will re-render on its next viewport entry).
	SlotPending SlotStatus = iota

	// SlotLoading means a rasterization task is (or was) in flight.
	SlotLoading

	// SlotComplete means the slot's surface holds the rendered page.
	SlotComplete
)

// String implements fmt.Stringer.
func (s SlotStatus) String() string {
	switch s {
	case SlotPending:
		return "pending"
	case SlotLoading:
		return "loading"
	case SlotComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// SlotInfo is a read-only snapshot of one page slot.
type SlotInfo struct {
	// Page is the 1-based page number.
	Page int

	// Top and Height are the slot's layout rectangle in container
	// coordinates (pages stack vertically, full width).
	Top, Height float64

	// Status is the slot's render status.
	Status SlotStatus

	// HasSurface reports whether a rendering surface is allocated.
	HasSurface bool
}

// pageSlot is the per-page bookkeeping record. It is owned exclusively by
// the Scheduler and mutated only under its lock.
type pageSlot struct {
	page int

	// Layout rectangle reserved for the page, container coordinates.
	top, height, width float64

	surf    surface.Surface
	status  SlotStatus
	visible bool

	// cancel aborts the in-flight rasterization task, if any.
	cancel context.CancelFunc

	// taskGen invalidates completions of superseded tasks.
	taskGen uint64

	// renderedOnce marks slots counted toward load progress; eviction
	// does not reset it, so progress stays monotone.
	renderedOnce bool
}

// SchedulerStats are cumulative counters since the last document load.
type SchedulerStats struct {
	PagesRendered    int
	RendersCancelled int
	RenderFailures   int
}

// Scheduler decides which pages have surfaces allocated and rasterized,
// based purely on viewport intersection. Zoom and pan never re-rasterize:
// the raster resolution (base scale) is fixed per document load.
type Scheduler struct {
	mu  sync.Mutex
	cfg Config

	doc       Document
	baseScale float64

	container Size
	slots     []*pageSlot

	offset, extent float64

	newSurface func(w, h int) (surface.Surface, error)

	// onProgress and onLayout fire outside the lock.
	onProgress func(progress float64)
	onLayout   func(content Size)

	rendered int
	stats    SchedulerStats

	tasks sync.WaitGroup
}

// NewScheduler creates a rendering scheduler. Surfaces are allocated
// through the surface registry.
func NewScheduler(cfg Config) *Scheduler {
	return &Scheduler{
		cfg:        cfg,
		newSurface: surface.New,
	}
}

// SetSurfaceFactory overrides surface allocation. Mainly used by hosts
// providing hardware-backed surfaces and by tests.
func (s *Scheduler) SetSurfaceFactory(fn func(w, h int) (surface.Surface, error)) {
	s.mu.Lock()
	s.newSurface = fn
	s.mu.Unlock()
}

// SetOnProgress registers the progress callback, invoked with
// rendered/total in [0,1] after each first-time page completion.
func (s *Scheduler) SetOnProgress(fn func(float64)) {
	s.mu.Lock()
	s.onProgress = fn
	s.mu.Unlock()
}

// SetOnLayout registers the layout callback, invoked whenever the total
// content size changes (slot heights settle as pages render).
func (s *Scheduler) SetOnLayout(fn func(Size)) {
	s.mu.Lock()
	s.onLayout = fn
	s.mu.Unlock()
}

// SetContainerSize updates the container content-area size. The base
// raster scale of an already-loaded document is not recomputed.
func (s *Scheduler) SetContainerSize(sz Size) {
	s.mu.Lock()
	s.container = sz
	s.mu.Unlock()
}

// Load installs a new document. The previous document (if any) is torn
// down only after the new document's metadata has been validated, so a
// failed load leaves the old document intact.
func (s *Scheduler) Load(doc Document) error {
	if doc == nil {
		return ErrNoDocument
	}

	// Validate new metadata before touching the old state.
	count := doc.PageCount()
	if count <= 0 {
		return ErrNoDocument
	}
	first, err := doc.PageViewport(1, 1)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.teardownLocked()

	s.doc = doc
	s.baseScale = baseRasterScale(s.container.W, first.Width, s.cfg.ResolutionMultiplier)

	// Reserve layout space for every page from the first page's aspect
	// ratio; heights settle to actual values as pages render.
	width := s.container.W
	if width <= 0 {
		width = first.Width
	}
	estHeight := width
	if first.Width > 0 {
		estHeight = width * first.Height / first.Width
	}

	s.slots = make([]*pageSlot, count)
	for i := range s.slots {
		s.slots[i] = &pageSlot{
			page:   i + 1,
			top:    float64(i) * estHeight,
			height: estHeight,
			width:  width,
		}
	}
	s.rendered = 0
	s.stats = SchedulerStats{}
	onLayout := s.onLayout
	content := s.contentSizeLocked()
	s.mu.Unlock()

	if onLayout != nil {
		onLayout(content)
	}
	return nil
}

// baseRasterScale computes the fixed raster resolution for a document:
// the scale that fits the first page to the container width, oversampled
// by the resolution multiplier. Degenerate geometry falls back to the
// multiplier alone.
func baseRasterScale(containerW, firstPageW, multiplier float64) float64 {
	if containerW <= 0 || firstPageW <= 0 {
		return multiplier
	}
	return containerW / firstPageW * multiplier
}

// SetViewport delivers a visibility-changed message: the viewport now
// spans [offset, offset+extent] of the page layout. Slots entering the
// viewport (with a prefetch margin of one full extent) get surfaces and
// rasterization tasks; slots leaving it are evicted.
func (s *Scheduler) SetViewport(offset, extent float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return
	}

	s.offset = offset
	s.extent = extent

	margin := extent
	if s.cfg.ViewportBufferPages > 0 && len(s.slots) > 0 {
		margin += float64(s.cfg.ViewportBufferPages) * s.avgHeightLocked()
	}
	lo := offset - margin
	hi := offset + extent + margin

	for _, slot := range s.slots {
		visible := slot.top < hi && slot.top+slot.height > lo
		switch {
		case visible && !slot.visible:
			slot.visible = true
			s.enterLocked(slot)
		case !visible && slot.visible:
			slot.visible = false
			s.leaveLocked(slot)
		}
	}
}

// enterLocked handles a slot becoming intersecting: start rasterization if
// the slot has none yet. Failed slots stay in SlotLoading and are only
// retried after an evict/re-enter cycle.
func (s *Scheduler) enterLocked(slot *pageSlot) {
	if slot.status != SlotPending {
		return
	}
	s.startRenderLocked(slot)
}

// leaveLocked handles a slot losing intersection: cancel any in-flight
// task, discard the surface, and reset to pending. The single-page case is
// never evicted, to avoid visible flicker.
func (s *Scheduler) leaveLocked(slot *pageSlot) {
	if len(s.slots) <= 1 {
		return
	}
	if slot.cancel != nil {
		slot.cancel()
		slot.cancel = nil
		s.stats.RendersCancelled++
	}
	slot.taskGen++
	if slot.surf != nil {
		if err := slot.surf.Close(); err != nil {
			Logger().Warn("surface close failed", "page", slot.page, "err", err)
		}
		slot.surf = nil
	}
	slot.status = SlotPending
}

// startRenderLocked begins rasterization of a slot at the base scale.
// Any previous task for the slot is cancelled first, so a single slot
// never has two tasks outstanding.
func (s *Scheduler) startRenderLocked(slot *pageSlot) {
	if slot.cancel != nil {
		slot.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	slot.cancel = cancel
	slot.taskGen++
	slot.status = SlotLoading

	doc := s.doc
	page := slot.page
	scale := s.baseScale
	gen := slot.taskGen
	newSurface := s.newSurface

	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		defer cancel()

		vp, err := doc.PageViewport(page, scale)
		if err != nil {
			s.finishRender(slot, gen, nil, Viewport{}, err)
			return
		}

		surf := s.slotSurface(slot, gen)
		if surf == nil {
			created, err := newSurface(int(vp.Width+0.5), int(vp.Height+0.5))
			if err != nil {
				s.finishRender(slot, gen, nil, vp, err)
				return
			}
			surf = created
		}

		err = doc.RenderPage(ctx, page, scale, surf)
		s.finishRender(slot, gen, surf, vp, err)
	}()
}

// slotSurface returns the slot's surface if the task generation is still
// current, allowing a re-render to reuse an attached surface.
func (s *Scheduler) slotSurface(slot *pageSlot, gen uint64) surface.Surface {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot.taskGen != gen {
		return nil
	}
	return slot.surf
}

// finishRender records the outcome of a rasterization task. Stale
// completions (superseded or evicted tasks) are discarded.
func (s *Scheduler) finishRender(slot *pageSlot, gen uint64, surf surface.Surface, vp Viewport, err error) {
	s.mu.Lock()

	if slot.taskGen != gen {
		// Evicted or superseded while in flight.
		attached := slot.surf
		s.mu.Unlock()
		if surf != nil && surf != attached {
			surf.Close()
		}
		return
	}
	slot.cancel = nil

	if err != nil {
		// Non-fatal: the slot stays loading until the next visibility
		// toggle resets it to pending.
		s.stats.RenderFailures++
		s.mu.Unlock()
		if surf != nil {
			surf.Close()
		}
		Logger().Warn("page render failed", "page", slot.page, "err", err)
		return
	}

	slot.surf = surf
	slot.status = SlotComplete
	s.stats.PagesRendered++

	// Reserve the slot's layout height from the rendered raster so
	// surrounding pages keep stable scroll positions.
	if s.cfg.ResolutionMultiplier > 0 {
		slot.width = vp.Width / s.cfg.ResolutionMultiplier
		slot.height = vp.Height / s.cfg.ResolutionMultiplier
	}
	s.relayoutLocked()

	progressChanged := false
	if !slot.renderedOnce {
		slot.renderedOnce = true
		s.rendered++
		progressChanged = true
	}
	progress := float64(s.rendered) / float64(len(s.slots))
	onProgress := s.onProgress
	onLayout := s.onLayout
	content := s.contentSizeLocked()
	s.mu.Unlock()

	if onLayout != nil {
		onLayout(content)
	}
	if progressChanged && onProgress != nil {
		onProgress(progress)
	}
}

// relayoutLocked restacks slot tops after a height change.
func (s *Scheduler) relayoutLocked() {
	top := 0.0
	for _, slot := range s.slots {
		slot.top = top
		top += slot.height
	}
}

func (s *Scheduler) contentSizeLocked() Size {
	var sz Size
	for _, slot := range s.slots {
		if slot.width > sz.W {
			sz.W = slot.width
		}
		sz.H += slot.height
	}
	return sz
}

func (s *Scheduler) avgHeightLocked() float64 {
	if len(s.slots) == 0 {
		return 0
	}
	total := 0.0
	for _, slot := range s.slots {
		total += slot.height
	}
	return total / float64(len(s.slots))
}

// teardownLocked cancels all tasks, discards all surfaces and slots, and
// closes the current document.
func (s *Scheduler) teardownLocked() {
	for _, slot := range s.slots {
		if slot.cancel != nil {
			slot.cancel()
			slot.cancel = nil
			s.stats.RendersCancelled++
		}
		slot.taskGen++
		if slot.surf != nil {
			slot.surf.Close()
			slot.surf = nil
		}
	}
	s.slots = nil
	if s.doc != nil {
		if err := s.doc.Close(); err != nil {
			Logger().Warn("document close failed", "err", err)
		}
		s.doc = nil
	}
	s.baseScale = 0
	s.rendered = 0
}

// Close tears down the scheduler and its document.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.teardownLocked()
	s.mu.Unlock()
	s.tasks.Wait()
}

// Wait blocks until all rasterization tasks started so far have finished
// (including cancelled ones). Mainly for tests and the demo.
func (s *Scheduler) Wait() {
	s.tasks.Wait()
}

// BaseScale returns the fixed raster resolution of the loaded document,
// or 0 when no document is loaded.
func (s *Scheduler) BaseScale() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseScale
}

// PageCount returns the number of page slots.
func (s *Scheduler) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// Progress returns rendered/total pages in [0,1], 0 with no document.
func (s *Scheduler) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.slots) == 0 {
		return 0
	}
	return float64(s.rendered) / float64(len(s.slots))
}

// ContentSize returns the total laid-out size of all pages.
func (s *Scheduler) ContentSize() Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contentSizeLocked()
}

// Stats returns cumulative counters since the last load.
func (s *Scheduler) Stats() SchedulerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Slots returns a read-only snapshot of all page slots.
func (s *Scheduler) Slots() []SlotInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SlotInfo, len(s.slots))
	for i, slot := range s.slots {
		out[i] = SlotInfo{
			Page:       slot.page,
			Top:        slot.top,
			Height:     slot.height,
			Status:     slot.status,
			HasSurface: slot.surf != nil,
		}
	}
	return out
}

// Surface returns the rendering surface of the given 1-based page, or nil
// if none is allocated. The caller must not close it.
func (s *Scheduler) Surface(page int) surface.Surface {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page < 1 || page > len(s.slots) {
		return nil
	}
	return s.slots[page-1].surf
}
