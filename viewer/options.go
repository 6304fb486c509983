package viewer

import (
	"context"
	"image"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/pdfannotate/annotation"
	"github.com/tsawler/pdfannotate/document"
	"github.com/tsawler/pdfannotate/model"
	"github.com/tsawler/pdfannotate/text"
	"github.com/tsawler/pdfannotate/textlayer"
)

// DefaultScale is the render scale used when none is configured.
const DefaultScale = 1.5

// Recognizer finds text on a rendered surface. It is used for pages that
// carry images but no positioned text.
type Recognizer interface {
	PageText(ctx context.Context, img image.Image, vp model.Viewport) (*text.TextContent, error)
}

// Option configures a Session.
type Option func(*options)

type options struct {
	scale       float64
	calibration textlayer.Calibration
	origin      model.Point
	startPage   int
	log         logrus.FieldLogger
	sidecarPath string
	sidecar     *annotation.Sidecar
	ocr         Recognizer
}

func defaultOptions() options {
	return options{
		scale:       DefaultScale,
		calibration: textlayer.DefaultCalibration(),
		startPage:   1,
		log:         document.DefaultLogger(),
	}
}

// WithScale sets the render scale. Non-positive values are ignored.
func WithScale(scale float64) Option {
	return func(o *options) {
		if scale > 0 {
			o.scale = scale
		}
	}
}

// WithCalibration sets the text layer offsets and overlay scale.
func WithCalibration(c textlayer.Calibration) Option {
	return func(o *options) {
		o.calibration = c
	}
}

// WithOrigin sets the on-screen position of the rendered surface, which
// the text layer container is aligned to.
func WithOrigin(p model.Point) Option {
	return func(o *options) {
		o.origin = p
	}
}

// WithStartPage sets the first page shown. It is clamped to the document.
func WithStartPage(n int) Option {
	return func(o *options) {
		o.startPage = n
	}
}

// WithLogger sets the logger for session diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithSidecar loads annotations from the sidecar at path, replays them on
// every page and saves new annotations back to it.
func WithSidecar(path string) Option {
	return func(o *options) {
		o.sidecarPath = path
	}
}

// WithAnnotations replays annotations held in memory. New annotations are
// added to s but not saved.
func WithAnnotations(s *annotation.Sidecar) Option {
	return func(o *options) {
		o.sidecar = s
	}
}

// WithOCR enables a text layer recognized from the surface for pages
// that have images but no text. The session takes ownership of r.
func WithOCR(r Recognizer) Option {
	return func(o *options) {
		o.ocr = r
	}
}
