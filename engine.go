package docview

import (
	"context"

	"github.com/gogpu/docview/surface"
)

// Source is an opaque document source: a URL, a file path, a byte buffer,
// or an engine-specific descriptor. docview passes it through to the
// engine's Open unmodified.
type Source = any

// Viewport is the size of a page at a given raster scale.
type Viewport struct {
	Width, Height float64
}

// Engine is the external document decoding engine. It parses a source into
// a Document that can report page metadata and rasterize pages.
//
// Engines may be used to open multiple documents concurrently.
type Engine interface {
	// Open parses the source and returns the document. Open must respect
	// ctx cancellation. A failed Open must not leak resources.
	Open(ctx context.Context, source Source) (Document, error)
}

// Document is one open document produced by an Engine. Pages are numbered
// starting at 1.
//
// RenderPage calls for distinct pages may run concurrently; calls for the
// same page are serialized by the scheduler.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int

	// PageViewport returns the size of the page rasterized at the given
	// scale. Scale 1 is the page's intrinsic size.
	PageViewport(page int, scale float64) (Viewport, error)

	// RenderPage rasterizes the page at the given scale onto dst.
	// It must return promptly with ctx.Err() once ctx is cancelled.
	RenderPage(ctx context.Context, page int, scale float64, dst surface.Surface) error

	// Close releases the document's resources. In-flight RenderPage
	// calls are cancelled by the scheduler before Close is invoked.
	Close() error
}
