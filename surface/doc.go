// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package surface provides the rendering surface abstraction for docview.
//
// A Surface is the raster target a document engine renders a page onto.
// The default implementation is [ImageSurface], a CPU surface backed by an
// *image.RGBA that blits with the golang.org/x/image/draw scalers.
//
// Backends register themselves through the registry, so hosts can plug
// hardware-backed surfaces without the core linking any GPU library:
//
//	func init() {
//	    surface.Register("metal", 100, metalFactory, metalAvailable)
//	}
//
//	s, err := surface.New(1200, 1600) // best available backend
package surface
