package docview

import (
	"math"
	"time"
)

// PointerKind identifies the kind of a pointer event.
type PointerKind uint8

const (
	// PointerDown reports one or more touches going down. Touches holds
	// all currently active touch points, including the new ones.
	PointerDown PointerKind = iota + 1

	// PointerMove reports movement of the active touches.
	PointerMove

	// PointerUp reports touches lifting. Touches holds the touches that
	// remain active; an empty slice means the interaction ended.
	PointerUp

	// PointerDoubleClick is a pointer-device (mouse) double-click. It
	// takes the zoom-toggle path directly, without touch-history or
	// double-tap bookkeeping. Touches holds the click point.
	PointerDoubleClick
)

// PointerEvent is one step of a raw pointer stream as delivered by the
// host platform.
type PointerEvent struct {
	Kind    PointerKind
	Touches []Point
	Time    time.Time
}

// Gesture tuning constants.
const (
	// historyCap bounds the rolling touch history used for release
	// velocity estimation.
	historyCap = 5

	// dragSlop is the movement in pixels beyond which a touch no longer
	// counts as a tap.
	dragSlop = 10.0

	// minFlickMillis is the minimum history span required to compute a
	// release velocity.
	minFlickMillis = 10.0

	// frameMillis converts px/ms velocities into the px/frame unit the
	// inertial animation steps in.
	frameMillis = 1000.0 / 60.0

	// doubleTapTimeout and doubleTapSlop bound consecutive taps that
	// count as a double-tap.
	doubleTapTimeout = 300 * time.Millisecond
	doubleTapSlop    = 50.0

	// doubleTapZoom is the fixed zoom-in factor of the double-tap toggle.
	doubleTapZoom = 2.0

	// zoomedEpsilon: scales within this distance of 1 are treated as
	// "not zoomed" by the double-tap toggle.
	zoomedEpsilon = 0.2
)

type gestureState uint8

const (
	gestureIdle gestureState = iota
	gestureDragging
	gesturePinching
)

// sample is one entry of the velocity history ring buffer.
type sample struct {
	x, y float64
	t    time.Time
}

// Controller classifies a raw pointer stream into single-touch drags,
// two-touch pinches, and double-taps, and drives the Transform accordingly.
//
// A Controller consumes a single sequential pointer stream and must be fed
// from one goroutine.
type Controller struct {
	tr  *Transform
	cfg Config

	state gestureState

	// anchor is the initial touch position minus the translate at drag
	// start, so each move computes an absolute new translate.
	anchor Point

	// start is the initial touch position, for tap-slop and as the
	// double-tap center.
	start   Point
	moved   bool
	pinched bool

	// baseline is the inter-finger distance the next pinch ratio is
	// computed against. Updated every pinch move (incremental ratio).
	baseline float64

	history [historyCap]sample
	histLen int
	histPos int

	lastTap    Point
	lastTapAt  time.Time
	hasLastTap bool
}

// NewController creates a gesture controller driving the given transform.
func NewController(tr *Transform, cfg Config) *Controller {
	return &Controller{tr: tr, cfg: cfg}
}

// Handle consumes one pointer event and advances the gesture state machine.
func (c *Controller) Handle(ev PointerEvent) {
	switch ev.Kind {
	case PointerDown:
		c.tr.StopInertialScroll()
		if len(ev.Touches) >= 2 {
			c.beginPinch(ev.Touches)
		} else if len(ev.Touches) == 1 && c.state == gestureIdle {
			c.beginDrag(ev.Touches[0], ev.Time)
		}

	case PointerMove:
		switch {
		case len(ev.Touches) >= 2 && c.state == gesturePinching:
			c.pinchMove(ev.Touches[0], ev.Touches[1])
		case len(ev.Touches) >= 2:
			// Second finger appeared without a down event.
			c.beginPinch(ev.Touches)
		case c.state == gestureDragging && len(ev.Touches) == 1:
			c.dragMove(ev.Touches[0], ev.Time)
		}

	case PointerUp:
		if len(ev.Touches) == 0 {
			c.release(ev.Time)
		} else if c.state == gesturePinching && len(ev.Touches) == 1 {
			// Dropping to one finger ends the pinch. No inertia; the
			// remaining finger is ignored until the next touch down.
			c.tr.SetPinching(false)
			c.state = gestureIdle
			c.clearHistory()
		}

	case PointerDoubleClick:
		if len(ev.Touches) == 1 {
			c.toggleZoom(ev.Touches[0])
		}
	}
}

func (c *Controller) beginDrag(p Point, at time.Time) {
	c.state = gestureDragging
	c.tr.SetDragging(true)
	c.tr.InvalidateLimits()

	tx, ty := c.tr.Translate()
	c.anchor = p.Sub(Pt(tx, ty))
	c.start = p
	c.moved = false
	c.pinched = false

	c.clearHistory()
	c.pushSample(p, at)
}

func (c *Controller) beginPinch(touches []Point) {
	c.state = gesturePinching
	c.tr.SetPinching(true)
	c.tr.InvalidateLimits()

	c.baseline = touches[0].Distance(touches[1])
	c.pinched = true
	c.clearHistory()
}

func (c *Controller) dragMove(p Point, at time.Time) {
	next := p.Sub(c.anchor)
	x, y := c.tr.Constrain(next.X, next.Y)
	c.tr.Apply(c.tr.Scale(), x, y)

	c.pushSample(p, at)
	if p.Distance(c.start) > dragSlop {
		c.moved = true
	}
}

func (c *Controller) pinchMove(a, b Point) {
	dist := a.Distance(b)
	if c.baseline <= 0 {
		c.baseline = dist
		return
	}

	mid := a.Midpoint(b)
	rawRatio := dist / c.baseline
	dampedRatio := 1 + (rawRatio-1)*c.cfg.PinchSensitivity

	old := c.tr.Scale()
	newScale := clamp(old*dampedRatio, c.cfg.MinScale, c.cfg.MaxScale)

	// Keep the document point under the gesture midpoint fixed.
	tx, ty := c.tr.Translate()
	nx := mid.X - (mid.X-tx)*(newScale/old)
	ny := mid.Y - (mid.Y-ty)*(newScale/old)

	cx, cy := c.tr.ConstrainAt(newScale, nx, ny)
	c.tr.Apply(newScale, cx, cy)

	c.baseline = dist
}

func (c *Controller) release(at time.Time) {
	wasDrag := c.state == gestureDragging
	wasPinch := c.state == gesturePinching || c.pinched

	if c.state == gestureDragging {
		c.tr.SetDragging(false)
	}
	if c.state == gesturePinching {
		c.tr.SetPinching(false)
	}
	c.state = gestureIdle

	switch {
	case wasDrag && c.moved && !wasPinch:
		if vx, vy, ok := c.flickVelocity(); ok {
			c.tr.StartInertialScroll(vx, vy)
		}

	case !c.moved && !wasPinch:
		// A tap.
		if c.hasLastTap &&
			at.Sub(c.lastTapAt) <= doubleTapTimeout &&
			c.start.Distance(c.lastTap) <= doubleTapSlop {
			c.hasLastTap = false
			c.toggleZoom(c.start)
		} else {
			c.lastTap = c.start
			c.lastTapAt = at
			c.hasLastTap = true
			if c.tr.Scale() < c.cfg.MinScale {
				c.tr.Reset()
			}
		}
	}

	c.clearHistory()
	c.moved = false
	c.pinched = false
}

// toggleZoom implements the double-tap (and mouse double-click) zoom
// toggle: near scale 1 it zooms in by a fixed factor centered on the given
// point; otherwise it resets to the identity transform.
func (c *Controller) toggleZoom(p Point) {
	old := c.tr.Scale()
	if math.Abs(old-1) > zoomedEpsilon {
		c.tr.Reset()
		return
	}

	newScale := clamp(doubleTapZoom, c.cfg.MinScale, c.cfg.MaxScale)
	tx, ty := c.tr.Translate()
	nx := p.X - (p.X-tx)*(newScale/old)
	ny := p.Y - (p.Y-ty)*(newScale/old)

	cx, cy := c.tr.ConstrainAt(newScale, nx, ny)
	c.tr.Apply(newScale, cx, cy)
}

// flickVelocity estimates the release velocity in px/frame from the rolling
// history. It requires at least 3 samples spanning more than 10ms.
func (c *Controller) flickVelocity() (vx, vy float64, ok bool) {
	if c.histLen < 3 {
		return 0, 0, false
	}

	firstIdx := 0
	if c.histLen == historyCap {
		firstIdx = c.histPos
	}
	lastIdx := (c.histPos - 1 + historyCap) % historyCap

	first := c.history[firstIdx]
	last := c.history[lastIdx]

	elapsed := float64(last.t.Sub(first.t)) / float64(time.Millisecond)
	if elapsed <= minFlickMillis {
		return 0, 0, false
	}

	vx = (last.x - first.x) / elapsed * frameMillis
	vy = (last.y - first.y) / elapsed * frameMillis
	return vx, vy, true
}

func (c *Controller) pushSample(p Point, at time.Time) {
	c.history[c.histPos] = sample{x: p.X, y: p.Y, t: at}
	c.histPos = (c.histPos + 1) % historyCap
	if c.histLen < historyCap {
		c.histLen++
	}
}

func (c *Controller) clearHistory() {
	c.histLen = 0
	c.histPos = 0
}
