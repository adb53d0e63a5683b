package docview

// Event is a notification emitted by the Viewer. The concrete types are
// LoadStartEvent, LoadProgressEvent, LoadCompleteEvent, LoadErrorEvent and
// ScaleChangeEvent.
type Event interface {
	isEvent()
}

// LoadStartEvent is emitted when a document load begins.
type LoadStartEvent struct{}

// LoadProgressEvent reports rendering progress as rendered/total pages,
// in [0, 1]. Values are monotonically non-decreasing within one load.
type LoadProgressEvent struct {
	Progress float64
}

// LoadCompleteEvent is emitted once every page of the document has been
// rendered at least once.
type LoadCompleteEvent struct {
	PageCount int
}

// LoadErrorEvent is emitted once when a document load fails.
type LoadErrorEvent struct {
	Err error
}

// ScaleChangeEvent is emitted whenever the zoom scale changes.
type ScaleChangeEvent struct {
	Scale float64
}

func (LoadStartEvent) isEvent()    {}
func (LoadProgressEvent) isEvent() {}
func (LoadCompleteEvent) isEvent() {}
func (LoadErrorEvent) isEvent()    {}
func (ScaleChangeEvent) isEvent()  {}

// EventHandler receives viewer events. Handlers run synchronously on the
// goroutine that caused the event and must not block.
type EventHandler func(Event)
