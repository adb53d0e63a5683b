// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// Surface is the raster target a page is rendered onto.
//
// Surfaces are NOT thread-safe. Each surface is owned by a single page slot
// and rendered to by at most one task at a time; the scheduler enforces
// this ordering.
type Surface interface {
	// Width returns the surface width in pixels.
	Width() int

	// Height returns the surface height in pixels.
	Height() int

	// Clear fills the entire surface with the given color.
	Clear(c color.Color)

	// DrawImage draws an image at the specified position, unscaled.
	DrawImage(img image.Image, at image.Point)

	// DrawImageScaled draws an image scaled into the destination
	// rectangle using the given filter.
	DrawImageScaled(img image.Image, dst image.Rectangle, f Filter)

	// Snapshot returns the current surface contents as an RGBA image.
	// The returned image is a copy; modifying it does not affect the
	// surface.
	Snapshot() *image.RGBA

	// Close releases all resources associated with the surface.
	// Close is idempotent; a closed surface ignores drawing calls.
	Close() error
}

// Filter selects the resampling kernel used by DrawImageScaled.
type Filter uint8

const (
	// FilterNearest is nearest-neighbor sampling: fastest, blockiest.
	FilterNearest Filter = iota

	// FilterBilinear is bilinear interpolation: the default tradeoff.
	FilterBilinear

	// FilterCatmullRom is Catmull-Rom interpolation: sharpest results
	// for photographic content, slowest.
	FilterCatmullRom
)

// Scaler returns the x/image scaler implementing the filter.
func (f Filter) Scaler() xdraw.Scaler {
	switch f {
	case FilterNearest:
		return xdraw.NearestNeighbor
	case FilterCatmullRom:
		return xdraw.CatmullRom
	default:
		return xdraw.ApproxBiLinear
	}
}

// Options configures surface creation through the registry.
type Options struct {
	Width  int
	Height int
}
