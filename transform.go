package docview

import (
	"math"
	"sync"
)

const (
	// limitsEpsilon is the scale delta beyond which the cached boundary
	// limits are considered stale.
	limitsEpsilon = 0.001

	// velocityStop is the per-axis velocity (px/frame) below which the
	// inertial scroll animation terminates.
	velocityStop = 0.1
)

// Transform owns the pan/zoom state of the viewer: scale, translation,
// gesture flags, and the inertial-scroll animation. It is the only writer
// of scale and translation; the gesture controller and host adapter go
// through its methods.
//
// At rest (no drag, no pinch, no inertial animation) the translation is
// always within the boundary limits for the current scale. During an active
// gesture momentary violations are tolerated for responsiveness.
type Transform struct {
	mu sync.Mutex

	minScale float64
	maxScale float64
	damping  float64
	padding  float64

	scale  float64
	tx, ty float64

	dragging bool
	pinching bool

	vx, vy    float64
	animating bool

	container Size
	content   Size

	limits      Limits
	limitsScale float64
	limitsValid bool

	// onScaleChange is invoked (outside the lock) whenever the scale
	// value changes, and always on Reset.
	onScaleChange func(scale float64)
}

// NewTransform creates a transform engine for the given configuration.
// The initial state is the identity transform at scale 1.
func NewTransform(cfg Config) *Transform {
	return &Transform{
		minScale: cfg.MinScale,
		maxScale: cfg.MaxScale,
		damping:  cfg.DampingFactor,
		padding:  cfg.BoundaryPadding,
		scale:    1,
	}
}

// SetOnScaleChange registers the scale-change notification callback.
// The callback runs on the goroutine that caused the change, after the
// transform lock has been released.
func (t *Transform) SetOnScaleChange(fn func(scale float64)) {
	t.mu.Lock()
	t.onScaleChange = fn
	t.mu.Unlock()
}

// SetGeometry updates the container content-area size and the unscaled
// content size, invalidating the boundary-limit cache. Zero sizes are
// legal and yield zero limits (panning becomes a no-op).
func (t *Transform) SetGeometry(container, content Size) {
	t.mu.Lock()
	t.container = container
	t.content = content
	t.limitsValid = false
	t.mu.Unlock()
}

// Apply cancels any active inertial animation and sets scale and
// translation directly. No clamping is performed: callers pass
// already-constrained values, except mid-gesture where momentary
// inconsistency is tolerated.
func (t *Transform) Apply(scale, x, y float64) {
	t.mu.Lock()
	t.stopInertiaLocked()
	changed := scale != t.scale
	t.scale = scale
	t.tx = x
	t.ty = y
	notify := t.onScaleChange
	t.mu.Unlock()

	if changed && notify != nil {
		notify(scale)
	}
}

// Constrain clamps (x, y) into the boundary limits for the current scale,
// recomputing the cached limits if the scale has drifted by limitsEpsilon
// or more since they were last computed.
func (t *Transform) Constrain(x, y float64) (float64, float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limitsAtLocked(t.scale).Clamp(x, y)
}

// ConstrainAt clamps (x, y) into the boundary limits for the given scale.
// Used mid-pinch, where the translate must be constrained against the scale
// about to be applied rather than the current one.
func (t *Transform) ConstrainAt(scale, x, y float64) (float64, float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limitsAtLocked(scale).Clamp(x, y)
}

// InvalidateLimits clears the boundary-limit cache. Called on gesture start
// and on container resize.
func (t *Transform) InvalidateLimits() {
	t.mu.Lock()
	t.limitsValid = false
	t.mu.Unlock()
}

// Reset stops any inertial animation, restores the identity transform at
// scale 1, clears the boundary cache, and emits a scale-change notification
// with value 1.
func (t *Transform) Reset() {
	t.mu.Lock()
	t.stopInertiaLocked()
	t.scale = 1
	t.tx = 0
	t.ty = 0
	t.dragging = false
	t.pinching = false
	t.limitsValid = false
	notify := t.onScaleChange
	t.mu.Unlock()

	if notify != nil {
		notify(1)
	}
}

// StartInertialScroll begins a decaying free-scroll animation with the
// given initial velocity in px/frame. Velocities already below the stop
// threshold on both axes are ignored.
func (t *Transform) StartInertialScroll(vx, vy float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if math.Abs(vx) < velocityStop && math.Abs(vy) < velocityStop {
		return
	}
	t.vx = vx
	t.vy = vy
	t.animating = true
}

// StopInertialScroll cancels the inertial animation, if any.
func (t *Transform) StopInertialScroll() {
	t.mu.Lock()
	t.stopInertiaLocked()
	t.mu.Unlock()
}

// Step advances the inertial animation by one frame: the proposed position
// is current plus velocity, clamped to the boundary limits; an axis that
// was clamped has its velocity zeroed (inelastic stop at the boundary);
// remaining velocity decays by the damping factor. Step reports whether
// the animation is still running, so hosts can drive it from their redraw
// loop:
//
//	for v.Step() {
//	    // schedule next frame
//	}
func (t *Transform) Step() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.animating {
		return false
	}

	nx := t.tx + t.vx
	ny := t.ty + t.vy
	cx, cy := t.limitsLocked().Clamp(nx, ny)
	if cx != nx {
		t.vx = 0
	}
	if cy != ny {
		t.vy = 0
	}
	t.tx = cx
	t.ty = cy

	t.vx *= t.damping
	t.vy *= t.damping
	if math.Abs(t.vx) < velocityStop && math.Abs(t.vy) < velocityStop {
		t.stopInertiaLocked()
	}
	return t.animating
}

// SetDragging marks the start or end of a single-touch drag. Dragging and
// pinching are mutually exclusive; setting one clears the other.
func (t *Transform) SetDragging(on bool) {
	t.mu.Lock()
	t.dragging = on
	if on {
		t.pinching = false
	}
	t.mu.Unlock()
}

// SetPinching marks the start or end of a two-touch pinch.
func (t *Transform) SetPinching(on bool) {
	t.mu.Lock()
	t.pinching = on
	if on {
		t.dragging = false
	}
	t.mu.Unlock()
}

// Scale returns the current zoom scale.
func (t *Transform) Scale() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scale
}

// Translate returns the current translation in pixels.
func (t *Transform) Translate() (x, y float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tx, t.ty
}

// Velocity returns the current inertial velocity in px/frame.
func (t *Transform) Velocity() (vx, vy float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.vx, t.vy
}

// Settled reports whether no drag, pinch, or inertial animation is active.
// Hosts use this as the transition hint: visual updates are immediate while
// unsettled, smoothly interpolated otherwise.
func (t *Transform) Settled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.dragging && !t.pinching && !t.animating
}

// Matrix returns the current transform as a 2D affine matrix: content
// points are scaled first, then translated.
func (t *Transform) Matrix() Matrix {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Translation(t.tx, t.ty).Multiply(Scaling(t.scale))
}

// Limits returns the boundary limits for the current scale.
func (t *Transform) Limits() Limits {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limitsLocked()
}

func (t *Transform) limitsLocked() Limits {
	return t.limitsAtLocked(t.scale)
}

// limitsAtLocked returns the boundary limits for the given scale, a
// memoized view of ComputeLimits keyed by (scale, container, content).
// SetGeometry and InvalidateLimits clear the memo; a scale drift of
// limitsEpsilon or more recomputes it.
func (t *Transform) limitsAtLocked(scale float64) Limits {
	if !t.limitsValid || math.Abs(scale-t.limitsScale) >= limitsEpsilon {
		t.limits = ComputeLimits(t.container, t.content, scale, t.padding)
		t.limitsScale = scale
		t.limitsValid = true
	}
	return t.limits
}

func (t *Transform) stopInertiaLocked() {
	t.animating = false
	t.vx = 0
	t.vy = 0
}
