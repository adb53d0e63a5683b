// Package docview provides the interaction and rendering core of a
// touch-driven paginated document viewer.
//
// # Overview
//
// docview converts raw touch-pointer streams into a pan/zoom transform under
// boundary and velocity constraints, and schedules lazy rasterization of the
// pages that intersect the viewport. The document decoding engine itself is
// a collaborator: any type implementing [Engine] can supply page metadata and
// rasterize pages onto rendering surfaces. A reference engine backed by
// decoded images ships in the imagedoc package.
//
// # Quick Start
//
//	eng := imagedoc.New()
//	v := docview.New(eng, docview.WithMaxScale(4))
//	v.SetContainerSize(400, 800)
//
//	if err := v.LoadDocument(ctx, source); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Feed pointer events from the host:
//	v.Pointer(docview.PointerEvent{Kind: docview.PointerDown, ...})
//
//	// Drive the frame loop while inertial scrolling is active:
//	for v.Step() {
//	}
//
// # Architecture
//
// The core is organized into four cooperating components:
//   - Transform: owns scale/translate state, the boundary-limit cache, and
//     the inertial-scroll animation
//   - Controller: classifies pointer streams into drag, pinch, and
//     double-tap gestures and drives the Transform
//   - Scheduler: owns the page slots and the cancellable rasterization
//     pipeline, driven by explicit viewport-visibility messages
//   - Viewer: the host adapter tying the three together and exposing the
//     public method and event surface
//
// Zoom is a transform on the already-rendered raster: the raster resolution
// is fixed per document load (base scale), so pinch and drag never trigger
// re-rasterization.
//
// # Coordinate System
//
// Container coordinates, origin at top-left, X increases right, Y increases
// down. Pages are laid out vertically in document order; the viewport is a
// vertical window (offset, extent) over that layout.
package docview

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"
)
