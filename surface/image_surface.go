// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"image"
	"image/color"
	"image/draw"
)

// ImageSurface is a CPU-based surface backed by an *image.RGBA.
// This is the default surface implementation.
type ImageSurface struct {
	width  int
	height int
	img    *image.RGBA

	// closed tracks if Close has been called
	closed bool
}

// NewImageSurface creates a new CPU-based surface with the given
// dimensions. Non-positive dimensions are raised to 1.
func NewImageSurface(width, height int) *ImageSurface {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}

	return &ImageSurface{
		width:  width,
		height: height,
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewImageSurfaceFromImage creates a surface backed by an existing image.
// Drawing renders into the provided image directly.
func NewImageSurfaceFromImage(img *image.RGBA) *ImageSurface {
	bounds := img.Bounds()
	return &ImageSurface{
		width:  bounds.Dx(),
		height: bounds.Dy(),
		img:    img,
	}
}

// Width returns the surface width.
func (s *ImageSurface) Width() int { return s.width }

// Height returns the surface height.
func (s *ImageSurface) Height() int { return s.height }

// Clear fills the surface with the given color.
func (s *ImageSurface) Clear(c color.Color) {
	if s.closed {
		return
	}
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// DrawImage draws an image at the specified position, unscaled.
func (s *ImageSurface) DrawImage(img image.Image, at image.Point) {
	if s.closed {
		return
	}
	r := img.Bounds().Sub(img.Bounds().Min).Add(at)
	draw.Draw(s.img, r, img, img.Bounds().Min, draw.Over)
}

// DrawImageScaled draws an image scaled into dst using the given filter.
func (s *ImageSurface) DrawImageScaled(img image.Image, dst image.Rectangle, f Filter) {
	if s.closed {
		return
	}
	f.Scaler().Scale(s.img, dst, img, img.Bounds(), draw.Src, nil)
}

// Snapshot returns a copy of the current surface contents.
func (s *ImageSurface) Snapshot() *image.RGBA {
	out := image.NewRGBA(s.img.Bounds())
	copy(out.Pix, s.img.Pix)
	return out
}

// Image returns the backing image without copying. The caller must not
// retain it past the surface's lifetime.
func (s *ImageSurface) Image() *image.RGBA { return s.img }

// Close releases the surface. Close is idempotent.
func (s *ImageSurface) Close() error {
	s.closed = true
	return nil
}
