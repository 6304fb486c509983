package pdfannotate

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/pdfannotate/annotation"
	"github.com/tsawler/pdfannotate/document"
	"github.com/tsawler/pdfannotate/format"
	"github.com/tsawler/pdfannotate/ocr"
	"github.com/tsawler/pdfannotate/render"
	"github.com/tsawler/pdfannotate/textlayer"
	"github.com/tsawler/pdfannotate/viewer"
)

// Viewer configures a viewing session fluently. Each configuration method
// returns a new Viewer, so a partially configured Viewer can be shared and
// extended safely.
type Viewer struct {
	filename string
	data     []byte
	fromData bool
	doc      *document.Document

	options ViewOptions
}

func (v *Viewer) clone() *Viewer {
	return &Viewer{
		filename: v.filename,
		data:     v.data,
		fromData: v.fromData,
		doc:      v.doc,
		options:  v.options.clone(),
	}
}

// ============================================================================
// Configuration Methods (return new Viewer instance)
// ============================================================================

// Scale sets the render scale. The default is 1.5.
//
// Example:
//
//	s, err := pdfannotate.Open("doc.pdf").Scale(2).View(ctx)
func (v *Viewer) Scale(scale float64) *Viewer {
	nv := v.clone()
	nv.options.scale = scale
	return nv
}

// Calibrate sets the text layer offsets and overlay scale.
func (v *Viewer) Calibrate(c textlayer.Calibration) *Viewer {
	nv := v.clone()
	nv.options.calibration = c
	return nv
}

// Page sets the first page shown (1-indexed).
func (v *Viewer) Page(n int) *Viewer {
	nv := v.clone()
	nv.options.page = n
	return nv
}

// Logger sets the logger used by every component of the session.
func (v *Viewer) Logger(l logrus.FieldLogger) *Viewer {
	nv := v.clone()
	nv.options.logger = l
	return nv
}

// OCR recognizes text on pages that carry images but no text. It needs a
// build with the "ocr" tag; otherwise View fails with ocr.ErrOCRNotEnabled.
func (v *Viewer) OCR() *Viewer {
	nv := v.clone()
	nv.options.ocr = true
	return nv
}

// OCRLanguage enables OCR with the given Tesseract languages, such as
// "eng+fra".
func (v *Viewer) OCRLanguage(lang string) *Viewer {
	nv := v.OCR()
	nv.options.ocrLanguage = lang
	return nv
}

// Sidecar sets the sidecar file to replay and save annotations to.
func (v *Viewer) Sidecar(path string) *Viewer {
	nv := v.clone()
	nv.options.sidecar = path
	nv.options.noSidecar = false
	return nv
}

// NoSidecar disables annotations.
func (v *Viewer) NoSidecar() *Viewer {
	nv := v.clone()
	nv.options.sidecar = ""
	nv.options.noSidecar = true
	return nv
}

// ============================================================================
// Terminal Operations
// ============================================================================

// View loads the document and starts a viewing session on it. The caller
// must close the session.
//
// Example:
//
//	s, err := pdfannotate.Open("doc.paj").View(ctx)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
func (v *Viewer) View(ctx context.Context) (*viewer.Session, error) {
	doc, err := v.Load(ctx)
	if err != nil {
		return nil, err
	}

	opts := []viewer.Option{
		viewer.WithScale(v.options.scale),
		viewer.WithCalibration(v.options.calibration),
		viewer.WithStartPage(v.options.page),
		viewer.WithLogger(v.logger()),
	}

	sidecar, err := v.SidecarPath()
	if err != nil {
		doc.Close()
		return nil, err
	}
	if sidecar != "" {
		opts = append(opts, viewer.WithSidecar(sidecar))
	}

	if v.options.ocr {
		client, err := v.ocrClient()
		if err != nil {
			doc.Close()
			return nil, err
		}
		opts = append(opts, viewer.WithOCR(client))
	}

	s, err := viewer.Open(ctx, doc, opts...)
	if err != nil {
		doc.Close()
		return nil, err
	}
	return s, nil
}

// Load reads and parses the document.
func (v *Viewer) Load(ctx context.Context) (*document.Document, error) {
	if v.doc != nil {
		return v.doc, nil
	}

	data := v.data
	if !v.fromData {
		path, err := v.PDFPath()
		if err != nil {
			return nil, err
		}
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("%w: %w", document.ErrDocumentLoad, err)
		}
	}
	return document.Load(ctx, data, document.WithLogger(v.logger()))
}

// PageCount returns the number of pages without starting a session.
func (v *Viewer) PageCount(ctx context.Context) (int, error) {
	doc, err := v.Load(ctx)
	if err != nil {
		return 0, err
	}
	if v.doc == nil {
		defer doc.Close()
	}
	return doc.PageCount(), nil
}

// Render rasterizes page n at the configured scale without starting a
// session.
func (v *Viewer) Render(ctx context.Context, n int) (*render.Result, error) {
	doc, err := v.Load(ctx)
	if err != nil {
		return nil, err
	}
	if v.doc == nil {
		defer doc.Close()
	}
	return render.New(render.WithLogger(v.logger())).Render(ctx, doc, n, v.options.scale)
}

// Bootstrap creates the sidecar of the PDF when it does not exist. It
// returns the sidecar path and whether the file was created.
func (v *Viewer) Bootstrap() (string, bool, error) {
	path, err := v.PDFPath()
	if err != nil {
		return "", false, err
	}
	return annotation.Bootstrap(path)
}

// PDFPath returns the path of the PDF file. For a sidecar it is the PDF
// next to it, which must exist.
func (v *Viewer) PDFPath() (string, error) {
	if v.filename == "" {
		return "", errors.New("no filename specified")
	}
	if format.Detect(v.filename) != format.Sidecar {
		return v.filename, nil
	}

	path := annotation.PDFPath(v.filename)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%s does not have a corresponding PDF file: %w", v.filename, err)
	}
	return path, nil
}

// SidecarPath returns the sidecar the session will use, or "" for none.
// Without an explicit sidecar, the one next to the PDF is used if it
// exists.
func (v *Viewer) SidecarPath() (string, error) {
	switch {
	case v.options.noSidecar:
		return "", nil
	case v.options.sidecar != "":
		return v.options.sidecar, nil
	case v.filename == "":
		return "", nil
	case format.Detect(v.filename) == format.Sidecar:
		return v.filename, nil
	}

	path := annotation.SidecarPath(v.filename)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return path, nil
}

func (v *Viewer) logger() logrus.FieldLogger {
	if v.options.logger != nil {
		return v.options.logger
	}
	return document.DefaultLogger()
}

func (v *Viewer) ocrClient() (*ocr.Client, error) {
	client, err := ocr.New()
	if err != nil {
		return nil, err
	}
	if v.options.ocrLanguage != "" {
		if err := client.SetLanguage(v.options.ocrLanguage); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set OCR language: %w", err)
		}
	}
	return client, nil
}
