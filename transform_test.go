package docview

import (
	"math"
	"testing"
)

func newTestTransform(opts ...Option) *Transform {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	tr := NewTransform(cfg)
	tr.SetGeometry(Size{W: 400, H: 800}, Size{W: 400, H: 2400})
	return tr
}

func TestTransformInitialState(t *testing.T) {
	tr := newTestTransform()
	if s := tr.Scale(); s != 1 {
		t.Errorf("Scale = %v, want 1", s)
	}
	if x, y := tr.Translate(); x != 0 || y != 0 {
		t.Errorf("Translate = (%v,%v), want (0,0)", x, y)
	}
	if !tr.Settled() {
		t.Error("new transform not settled")
	}
	if !tr.Matrix().IsIdentity() {
		t.Errorf("Matrix = %+v, want identity", tr.Matrix())
	}
}

func TestTransformConstrain(t *testing.T) {
	tr := newTestTransform()

	// At scale 1 the content matches the container width: no horizontal
	// pan; vertical pan within [-1650, 50].
	x, y := tr.Constrain(100, -5000)
	if x != 0 {
		t.Errorf("x = %v, want 0", x)
	}
	if y != -1650 {
		t.Errorf("y = %v, want -1650", y)
	}

	// Idempotent.
	x2, y2 := tr.Constrain(x, y)
	if x2 != x || y2 != y {
		t.Errorf("constrain not idempotent: (%v,%v) != (%v,%v)", x2, y2, x, y)
	}
}

func TestTransformConstrainTracksScale(t *testing.T) {
	tr := newTestTransform()

	// Scale change beyond the epsilon recomputes the limits.
	tr.Apply(2, 0, 0)
	x, _ := tr.Constrain(100, 0)
	if x != 50 {
		t.Errorf("x at scale 2 = %v, want 50 (padding)", x)
	}

	// Drift below the epsilon keeps the cached limits.
	tr.Apply(2.0005, 0, 0)
	x, _ = tr.Constrain(100, 0)
	if x != 50 {
		t.Errorf("x after tiny drift = %v, want cached 50", x)
	}
}

func TestTransformApplyCancelsInertia(t *testing.T) {
	tr := newTestTransform()
	tr.StartInertialScroll(0, -20)
	tr.Apply(1, 0, -100)
	if tr.Step() {
		t.Error("Step still running after Apply")
	}
	if vx, vy := tr.Velocity(); vx != 0 || vy != 0 {
		t.Errorf("Velocity = (%v,%v), want (0,0)", vx, vy)
	}
}

func TestTransformResetEmitsScaleChange(t *testing.T) {
	tr := newTestTransform()
	var got []float64
	tr.SetOnScaleChange(func(s float64) { got = append(got, s) })

	tr.Apply(2, -100, -200)
	tr.Reset()

	if s := tr.Scale(); s != 1 {
		t.Errorf("Scale after Reset = %v, want 1", s)
	}
	if x, y := tr.Translate(); x != 0 || y != 0 {
		t.Errorf("Translate after Reset = (%v,%v), want (0,0)", x, y)
	}
	if len(got) != 2 || got[0] != 2 || got[1] != 1 {
		t.Errorf("scale notifications = %v, want [2 1]", got)
	}
}

func TestInertialDecayTermination(t *testing.T) {
	tr := newTestTransform(WithDampingFactor(0.9))
	tr.Apply(1, 0, -1000) // mid-document, room to scroll both ways

	v0 := 20.0
	tr.StartInertialScroll(0, -v0)

	// |v| decays geometrically: v0 * d^n < 0.1 within a computable bound.
	bound := int(math.Ceil(math.Log(0.1/v0)/math.Log(0.9))) + 1

	steps := 0
	for tr.Step() {
		steps++
		if steps > bound+1 {
			t.Fatalf("animation did not terminate within %d steps", bound+1)
		}
	}

	if !tr.Settled() {
		t.Error("transform not settled after decay")
	}
	x, y := tr.Translate()
	cx, cy := tr.Constrain(x, y)
	if x != cx || y != cy {
		t.Errorf("final position (%v,%v) outside limits (clamps to %v,%v)", x, y, cx, cy)
	}
}

func TestInertialStopsAtBoundary(t *testing.T) {
	tr := newTestTransform()
	tr.Apply(1, 0, 40) // 10px from the MaxY=50 padding boundary

	tr.StartInertialScroll(0, 25)
	tr.Step()

	if _, y := tr.Translate(); y != 50 {
		t.Errorf("y after boundary hit = %v, want 50", y)
	}
	if _, vy := tr.Velocity(); vy != 0 {
		t.Errorf("vy after boundary hit = %v, want 0 (inelastic stop)", vy)
	}
}

func TestInertialIgnoresSubThresholdVelocity(t *testing.T) {
	tr := newTestTransform()
	tr.StartInertialScroll(0.05, -0.09)
	if tr.Step() {
		t.Error("animation started from sub-threshold velocity")
	}
}

func TestTransformZeroSizeContainer(t *testing.T) {
	cfg := defaultConfig()
	tr := NewTransform(cfg)
	tr.SetGeometry(Size{}, Size{W: 400, H: 800})

	// Degenerate geometry: panning clamps to the origin, scale still moves.
	tr.Apply(2, -100, -100)
	x, y := tr.Constrain(-100, -100)
	if x != 0 || y != 0 {
		t.Errorf("Constrain = (%v,%v), want (0,0)", x, y)
	}
	if s := tr.Scale(); s != 2 {
		t.Errorf("Scale = %v, want 2", s)
	}
}

func TestTransformMatrix(t *testing.T) {
	tr := newTestTransform()
	tr.Apply(2, 10, 20)

	got := tr.Matrix().TransformPoint(Pt(1, 1))
	if got != Pt(12, 22) {
		t.Errorf("matrix maps (1,1) to %+v, want (12,22)", got)
	}
}

func TestTransformGestureFlagsExclusive(t *testing.T) {
	tr := newTestTransform()

	tr.SetDragging(true)
	tr.SetPinching(true)
	if tr.Settled() {
		t.Error("settled during pinch")
	}
	tr.SetPinching(false)
	if !tr.Settled() {
		t.Error("not settled after pinch ended; drag should have been cleared by pinch start")
	}
}
