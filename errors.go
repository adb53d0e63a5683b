package docview

import "errors"

// Common errors.
var (
	// ErrNoDocument is returned when an operation requires a loaded
	// document and none is present.
	ErrNoDocument = errors.New("docview: no document loaded")

	// ErrViewerClosed is returned when operations are called on a closed
	// viewer.
	ErrViewerClosed = errors.New("docview: viewer closed")
)
