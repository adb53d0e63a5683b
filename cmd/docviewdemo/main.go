// Command docviewdemo exercises the docview viewer core headlessly: it
// loads a procedurally generated image document, replays a pinch-zoom
// gesture through the trace format, runs an inertial flick, and writes the
// composited viewport to a PNG.
package main

import (
	"context"
	"flag"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"os"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/docview"
	"github.com/gogpu/docview/imagedoc"
	"github.com/gogpu/docview/surface"
	"github.com/gogpu/docview/trace"
)

func main() {
	var (
		width  = flag.Int("width", 400, "container width")
		height = flag.Int("height", 800, "container height")
		pages  = flag.Int("pages", 3, "number of generated pages")
		output = flag.String("output", "viewport.png", "output file")
	)
	flag.Parse()

	v := docview.New(imagedoc.New())
	v.SetContainerSize(float64(*width), float64(*height))
	v.OnEvent(func(ev docview.Event) {
		switch e := ev.(type) {
		case docview.LoadStartEvent:
			log.Println("load-start")
		case docview.LoadProgressEvent:
			log.Printf("load-progress %.2f", e.Progress)
		case docview.LoadCompleteEvent:
			log.Printf("load-complete pages=%d", e.PageCount)
		case docview.LoadErrorEvent:
			log.Printf("load-error %v", e.Err)
		case docview.ScaleChangeEvent:
			log.Printf("scale-change %.2f", e.Scale)
		}
	})

	if err := v.LoadDocument(context.Background(), generatePages(*pages)); err != nil {
		log.Fatalf("load failed: %v", err)
	}
	v.Wait()

	replayPinch(v, float64(*width), float64(*height))
	flick(v, float64(*width), float64(*height))

	if err := savePNG(*output, compositeViewport(v, *width, *height)); err != nil {
		log.Fatalf("save failed: %v", err)
	}
	log.Printf("viewport saved to %s (%dx%d, scale %.2f)", *output, *width, *height, v.Scale())

	v.Close()
}

// generatePages produces simple gradient pages with a distinct tint per
// page so panning and zooming are visible in the output.
func generatePages(n int) []image.Image {
	const pageW, pageH = 600, 900
	pages := make([]image.Image, n)
	for p := 0; p < n; p++ {
		img := image.NewRGBA(image.Rect(0, 0, pageW, pageH))
		tint := uint8(60 + 150*p/max(n, 1))
		for y := 0; y < pageH; y++ {
			shade := uint8(255 * y / pageH)
			for x := 0; x < pageW; x++ {
				img.SetRGBA(x, y, color.RGBA{R: shade, G: tint, B: 255 - shade, A: 255})
			}
		}
		pages[p] = img
	}
	return pages
}

// replayPinch records a two-finger zoom gesture and replays it through the
// trace wire format into the viewer.
func replayPinch(v *docview.Viewer, w, h float64) {
	base := time.Now()
	rec := trace.NewRecorder(trace.Meta{Name: "pinch", ContainerW: w, ContainerH: h})

	cx, cy := w/2, h/2
	events := []docview.PointerEvent{
		{Kind: docview.PointerDown, Touches: touch(cx, cy-40, cx, cy+40), Time: base},
	}
	for i := 1; i <= 8; i++ {
		spread := 40 + float64(i)*15
		events = append(events, docview.PointerEvent{
			Kind:    docview.PointerMove,
			Touches: touch(cx, cy-spread, cx, cy+spread),
			Time:    base.Add(time.Duration(i) * 16 * time.Millisecond),
		})
	}
	events = append(events, docview.PointerEvent{
		Kind: docview.PointerUp,
		Time: base.Add(150 * time.Millisecond),
	})

	for _, ev := range events {
		if err := rec.Record(ev); err != nil {
			log.Fatalf("record failed: %v", err)
		}
	}

	if _, n, err := trace.Replay(rec.Bytes(), time.Now(), v.Pointer); err != nil {
		log.Fatalf("replay failed: %v", err)
	} else {
		log.Printf("replayed %d pinch events", n)
	}
}

// flick drags downward and releases with velocity, then drives the frame
// loop until the inertial scroll settles.
func flick(v *docview.Viewer, w, h float64) {
	base := time.Now()
	v.Pointer(docview.PointerEvent{Kind: docview.PointerDown, Touches: touch1(w/2, h/2), Time: base})
	for i := 1; i <= 4; i++ {
		v.Pointer(docview.PointerEvent{
			Kind:    docview.PointerMove,
			Touches: touch1(w/2, h/2-float64(i)*30),
			Time:    base.Add(time.Duration(i) * 16 * time.Millisecond),
		})
	}
	v.Pointer(docview.PointerEvent{Kind: docview.PointerUp, Time: base.Add(70 * time.Millisecond)})

	frames := 0
	for v.Step() {
		frames++
	}
	log.Printf("inertial scroll settled after %d frames", frames)
}

// compositeViewport draws every rendered page through the current
// transform into a container-sized image.
func compositeViewport(v *docview.Viewer, w, h int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	view := v.Transform().Matrix()
	for _, slot := range v.Scheduler().Slots() {
		if slot.Status != docview.SlotComplete {
			continue
		}
		surf := v.Scheduler().Surface(slot.Page)
		if surf == nil {
			continue
		}
		src := snapshot(surf)

		// raster -> page layout -> view
		k := slot.Height / float64(src.Bounds().Dy())
		m := view.
			Multiply(docview.Translation(0, slot.Top)).
			Multiply(docview.Scaling(k))

		xdraw.ApproxBiLinear.Transform(out,
			f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F},
			src, src.Bounds(), draw.Over, nil)
	}
	return out
}

func snapshot(s surface.Surface) *image.RGBA {
	if is, ok := s.(*surface.ImageSurface); ok {
		return is.Image()
	}
	return s.Snapshot()
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func touch(x1, y1, x2, y2 float64) []docview.Point {
	return []docview.Point{docview.Pt(x1, y1), docview.Pt(x2, y2)}
}

func touch1(x, y float64) []docview.Point {
	return []docview.Point{docview.Pt(x, y)}
}
