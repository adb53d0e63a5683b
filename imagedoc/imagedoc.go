// Package imagedoc provides a reference docview.Engine whose documents are
// sequences of decoded images, one image per page.
//
// It exists so the viewer core can be exercised end to end (tests, demos,
// image-gallery hosts) without a full document format engine. Supported
// sources:
//
//	[]image.Image  decoded pages
//	image.Image    a single decoded page
//	[][]byte       encoded pages (PNG, JPEG, GIF, BMP)
//	[]string       file paths to encoded pages
//	string         a single file path
package imagedoc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/gogpu/docview"
	"github.com/gogpu/docview/surface"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
)

// Errors returned by the engine.
var (
	ErrUnsupportedSource = errors.New("imagedoc: unsupported source type")
	ErrNoPages           = errors.New("imagedoc: source has no pages")
	ErrDocumentClosed    = errors.New("imagedoc: document closed")
)

// renderBandRows is the destination band height between cancellation
// checks during RenderPage.
const renderBandRows = 256

// Engine decodes image sources into documents.
type Engine struct {
	filter surface.Filter
}

// New creates an image document engine using bilinear scaling.
func New() *Engine {
	return &Engine{filter: surface.FilterBilinear}
}

// NewWithFilter creates an engine using the given resampling filter.
func NewWithFilter(f surface.Filter) *Engine {
	return &Engine{filter: f}
}

// Open decodes the source into a document. See the package documentation
// for the supported source types.
func (e *Engine) Open(ctx context.Context, source docview.Source) (docview.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var pages []image.Image
	switch src := source.(type) {
	case []image.Image:
		pages = append(pages, src...)
	case image.Image:
		pages = []image.Image{src}
	case [][]byte:
		for i, raw := range src {
			img, _, err := image.Decode(bytes.NewReader(raw))
			if err != nil {
				return nil, fmt.Errorf("imagedoc: decode page %d: %w", i+1, err)
			}
			pages = append(pages, img)
		}
	case []string:
		for _, path := range src {
			img, err := decodeFile(path)
			if err != nil {
				return nil, err
			}
			pages = append(pages, img)
		}
	case string:
		img, err := decodeFile(src)
		if err != nil {
			return nil, err
		}
		pages = []image.Image{img}
	default:
		return nil, ErrUnsupportedSource
	}

	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	return &document{pages: pages, filter: e.filter}, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imagedoc: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("imagedoc: decode %s: %w", path, err)
	}
	return img, nil
}

// document implements docview.Document over decoded images.
type document struct {
	mu     sync.Mutex
	pages  []image.Image
	filter surface.Filter
	closed bool
}

// PageCount returns the number of pages.
func (d *document) PageCount() int {
	return len(d.pages)
}

// PageViewport returns the page size at the given raster scale.
func (d *document) PageViewport(page int, scale float64) (docview.Viewport, error) {
	img, err := d.page(page)
	if err != nil {
		return docview.Viewport{}, err
	}
	b := img.Bounds()
	return docview.Viewport{
		Width:  float64(b.Dx()) * scale,
		Height: float64(b.Dy()) * scale,
	}, nil
}

// RenderPage scales the page image onto dst. Rendering proceeds in
// horizontal bands so cancellation takes effect within one band.
func (d *document) RenderPage(ctx context.Context, page int, scale float64, dst surface.Surface) error {
	img, err := d.page(page)
	if err != nil {
		return err
	}

	src := img.Bounds()
	dstW := dst.Width()
	dstH := dst.Height()
	if dstW <= 0 || dstH <= 0 || src.Dx() <= 0 || src.Dy() <= 0 {
		return nil
	}

	si, bandable := img.(subImager)
	if !bandable {
		// No sub-image access: render in one pass.
		if err := ctx.Err(); err != nil {
			return err
		}
		dst.DrawImageScaled(img, image.Rect(0, 0, dstW, dstH), d.filter)
		return ctx.Err()
	}

	for y := 0; y < dstH; y += renderBandRows {
		if err := ctx.Err(); err != nil {
			return err
		}

		bandH := renderBandRows
		if y+bandH > dstH {
			bandH = dstH - y
		}
		dstBand := image.Rect(0, y, dstW, y+bandH)

		// Source rows corresponding to this destination band.
		sy0 := src.Min.Y + y*src.Dy()/dstH
		sy1 := src.Min.Y + (y+bandH)*src.Dy()/dstH
		if sy1 <= sy0 {
			sy1 = sy0 + 1
		}
		srcBand := image.Rect(src.Min.X, sy0, src.Max.X, sy1)

		dst.DrawImageScaled(si.SubImage(srcBand), dstBand, d.filter)
	}
	return ctx.Err()
}

// subImager is implemented by all the stdlib raster image types.
type subImager interface {
	SubImage(image.Rectangle) image.Image
}

// Close releases the document. Subsequent renders fail with
// ErrDocumentClosed.
func (d *document) Close() error {
	d.mu.Lock()
	d.closed = true
	d.pages = nil
	d.mu.Unlock()
	return nil
}

func (d *document) page(page int) (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDocumentClosed
	}
	if page < 1 || page > len(d.pages) {
		return nil, fmt.Errorf("imagedoc: page %d out of range [1,%d]", page, len(d.pages))
	}
	return d.pages[page-1], nil
}
