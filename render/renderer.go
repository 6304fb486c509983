package render

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/pdfannotate/contentstream"
	"github.com/tsawler/pdfannotate/core"
	"github.com/tsawler/pdfannotate/document"
	"github.com/tsawler/pdfannotate/graphicsstate"
	"github.com/tsawler/pdfannotate/model"
	"github.com/tsawler/pdfannotate/text"
)

// ErrRender is returned when a page cannot be rasterized.
var ErrRender = errors.New("render failed")

// cancelCheckInterval is the number of operators between context checks
const cancelCheckInterval = 256

// Renderer paints pages onto RGBA surfaces.
type Renderer struct {
	log      logrus.FieldLogger
	flatness float64
}

// New creates a renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		log:      document.DefaultLogger(),
		flatness: 0.25,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is a rendered page.
type Result struct {
	Page     *document.Page
	Viewport model.Viewport
	Image    *image.RGBA

	// Counters for diagnostics
	Paths  int
	Runs   int
	Images int
}

// Render fetches page pageNumber (1-based) of doc and renders it at scale.
// An out of range page number fails with document.ErrPageIndexOutOfRange.
func (r *Renderer) Render(ctx context.Context, doc *document.Document, pageNumber int, scale float64) (*Result, error) {
	page, err := doc.Page(ctx, pageNumber)
	if err != nil {
		return nil, err
	}
	return r.RenderPage(ctx, page, scale)
}

// RenderPage renders an already fetched page at scale.
func (r *Renderer) RenderPage(ctx context.Context, page *document.Page, scale float64) (*Result, error) {
	log := r.log.WithField("page", page.Number)

	if scale <= 0 {
		return nil, fmt.Errorf("%w: invalid scale %v", ErrRender, scale)
	}

	vp := page.Viewport(scale)
	w, h := vp.PixelWidth(), vp.PixelHeight()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty surface %dx%d", ErrRender, w, h)
	}

	data, err := page.Content(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}

	ops, err := contentstream.NewParser(data).Parse()
	if err != nil {
		return nil, fmt.Errorf("%w: parse content stream: %w", ErrRender, err)
	}

	c := newCanvas(w, h, vp, r.flatness)
	res := &Result{Page: page, Viewport: vp, Image: c.img}

	ex := page.NewExtractor()
	fonts := ex.Fonts()
	styles := ex.Content().Styles
	ex.Interpreter().OnPaint = func(path *graphicsstate.Path, mode graphicsstate.PaintMode, gs *graphicsstate.GraphicsState) {
		res.Paths++
		c.paintPath(path, mode, gs)
	}
	ex.OnItem = func(item text.TextItem) {
		if !item.HasTransform() || item.Invisible() {
			return
		}
		res.Runs++
		baseFont := ""
		if f, ok := fonts[item.FontName]; ok {
			baseFont = f.BaseFont
		}
		family := text.DefaultFontFamily
		if s, ok := styles[item.FontName]; ok {
			family = s.FontFamily
		}
		c.drawText(item, pickFace(baseFont, family))
	}
	ex.OnImage = func(stream *core.Stream, ctm model.Matrix) {
		img, err := page.DecodeImage(stream)
		if err != nil {
			log.WithError(err).Debug("skipping undecodable image")
			return
		}
		res.Images++
		c.drawImage(img, ctm)
	}

	failed := 0
	for i, op := range ops {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if err := ex.Process(op); err != nil {
			failed++
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"width":  w,
		"height": h,
		"paths":  res.Paths,
		"runs":   res.Runs,
		"images": res.Images,
		"failed": failed,
	}).Debug("page rendered")
	return res, nil
}
