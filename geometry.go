package docview

// Size is a width/height pair in container coordinates.
type Size struct {
	W, H float64
}

// IsZero reports whether either dimension is degenerate.
func (s Size) IsZero() bool {
	return s.W <= 0 || s.H <= 0
}

// Limits is the valid translate range for a given scale: the boundary
// limits of the transform. When the scaled content fits the container along
// an axis, Min==Max==0 on that axis and no panning is possible.
type Limits struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// ComputeLimits derives boundary limits from the container content-area
// size, the unscaled content size, the current scale, and the elastic
// overscroll padding. A zero-size container or content yields zero limits.
func ComputeLimits(container, content Size, scale, padding float64) Limits {
	var l Limits
	if container.IsZero() || content.IsZero() {
		return l
	}

	scaledW := content.W * scale
	scaledH := content.H * scale

	if scaledW > container.W {
		l.MinX = container.W - scaledW - padding
		l.MaxX = padding
	}
	if scaledH > container.H {
		l.MinY = container.H - scaledH - padding
		l.MaxY = padding
	}
	return l
}

// Clamp restricts (x, y) into the limit rectangle.
func (l Limits) Clamp(x, y float64) (float64, float64) {
	return clamp(x, l.MinX, l.MaxX), clamp(y, l.MinY, l.MaxY)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
