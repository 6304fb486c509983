package render

import (
	"github.com/sirupsen/logrus"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger for render diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithFlatness sets the maximum distance, in pixels, between a curve and
// the line segments approximating it. The default is 0.25.
func WithFlatness(tolerance float64) Option {
	return func(r *Renderer) {
		if tolerance > 0 {
			r.flatness = tolerance
		}
	}
}
