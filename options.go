package pdfannotate

import (
	"github.com/sirupsen/logrus"

	"github.com/tsawler/pdfannotate/textlayer"
	"github.com/tsawler/pdfannotate/viewer"
)

// ViewOptions holds the configuration of a Viewer.
type ViewOptions struct {
	scale       float64
	calibration textlayer.Calibration
	page        int
	logger      logrus.FieldLogger
	ocr         bool
	ocrLanguage string

	// sidecar is the explicit sidecar path; noSidecar disables lookup
	sidecar   string
	noSidecar bool
}

// defaultOptions returns the default view options.
func defaultOptions() ViewOptions {
	return ViewOptions{
		scale:       viewer.DefaultScale,
		calibration: textlayer.DefaultCalibration(),
		page:        1,
	}
}

// clone creates a copy of ViewOptions. All fields are values, so the
// copy shares nothing with the original.
func (o ViewOptions) clone() ViewOptions {
	return o
}
