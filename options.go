package docview

// Config holds the resolved viewer configuration. It is immutable once a
// Viewer is created; out-of-range option values are clamped into their
// valid domain rather than reported as errors.
type Config struct {
	// ResolutionMultiplier is the rasterization oversampling factor
	// relative to the container width. Must be > 0.
	ResolutionMultiplier float64

	// MinScale and MaxScale bound the user-facing zoom scale.
	// MinScale <= 1 <= MaxScale.
	MinScale float64
	MaxScale float64

	// DampingFactor is the inertial velocity decay per animation frame,
	// in (0, 1).
	DampingFactor float64

	// BoundaryPadding is the elastic overscroll allowance in pixels.
	BoundaryPadding float64

	// PinchSensitivity damps the raw pinch scale ratio, in (0, 1].
	PinchSensitivity float64

	// ShowProgress and ProgressColor are display-only hints forwarded to
	// the host; the core does not interpret them.
	ShowProgress  bool
	ProgressColor string

	// ViewportBufferPages is an advisory prefetch margin in whole pages.
	ViewportBufferPages int
}

// Option configures a Viewer during creation.
//
// Example:
//
//	v := docview.New(engine,
//	    docview.WithMaxScale(6),
//	    docview.WithDampingFactor(0.9),
//	)
type Option func(*Config)

// defaultConfig returns the default viewer configuration.
func defaultConfig() Config {
	return Config{
		ResolutionMultiplier: 3,
		MinScale:             1,
		MaxScale:             4,
		DampingFactor:        0.95,
		BoundaryPadding:      50,
		PinchSensitivity:     0.6,
		ShowProgress:         true,
		ProgressColor:        "#42b983",
		ViewportBufferPages:  0,
	}
}

// WithResolutionMultiplier sets the rasterization oversampling factor.
// Values <= 0 are ignored.
func WithResolutionMultiplier(m float64) Option {
	return func(c *Config) {
		if m > 0 {
			c.ResolutionMultiplier = m
		}
	}
}

// WithMinScale sets the minimum zoom scale. Values above 1 are clamped to 1
// so the identity scale always remains reachable.
func WithMinScale(s float64) Option {
	return func(c *Config) {
		if s <= 0 {
			return
		}
		if s > 1 {
			s = 1
		}
		c.MinScale = s
	}
}

// WithMaxScale sets the maximum zoom scale. Values below 1 are clamped to 1.
func WithMaxScale(s float64) Option {
	return func(c *Config) {
		if s < 1 {
			s = 1
		}
		c.MaxScale = s
	}
}

// WithDampingFactor sets the inertial decay per frame. Values outside (0,1)
// are ignored.
func WithDampingFactor(d float64) Option {
	return func(c *Config) {
		if d > 0 && d < 1 {
			c.DampingFactor = d
		}
	}
}

// WithBoundaryPadding sets the elastic overscroll allowance in pixels.
// Negative values are ignored.
func WithBoundaryPadding(p float64) Option {
	return func(c *Config) {
		if p >= 0 {
			c.BoundaryPadding = p
		}
	}
}

// WithPinchSensitivity sets the damping applied to the raw pinch ratio.
// Values outside (0,1] are ignored.
func WithPinchSensitivity(s float64) Option {
	return func(c *Config) {
		if s > 0 && s <= 1 {
			c.PinchSensitivity = s
		}
	}
}

// WithProgress configures the display-only progress hints.
func WithProgress(show bool, color string) Option {
	return func(c *Config) {
		c.ShowProgress = show
		if color != "" {
			c.ProgressColor = color
		}
	}
}

// WithViewportBufferPages sets the advisory prefetch margin in whole pages.
// Negative values are ignored.
func WithViewportBufferPages(n int) Option {
	return func(c *Config) {
		if n >= 0 {
			c.ViewportBufferPages = n
		}
	}
}
