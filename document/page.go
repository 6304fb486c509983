package document

import (
	"context"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/pdfannotate/core"
	"github.com/tsawler/pdfannotate/model"
	"github.com/tsawler/pdfannotate/pages"
	"github.com/tsawler/pdfannotate/reader"
	"github.com/tsawler/pdfannotate/text"
)

// Page is one page of a Document.
type Page struct {
	// Number is the 1-based page number
	Number int

	// ViewBox is the visible area in user space
	ViewBox model.BBox

	// Rotation is the normalized /Rotate value
	Rotation int

	doc  *Document
	page *pages.Page
}

func newPage(d *Document, n int, p *pages.Page) (*Page, error) {
	box, err := p.ViewBox()
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", n, err)
	}
	return &Page{
		Number:   n,
		ViewBox:  box,
		Rotation: p.Rotate(),
		doc:      d,
		page:     p,
	}, nil
}

// Width returns the displayed width at scale 1.
func (p *Page) Width() float64 {
	if p.Rotation == 90 || p.Rotation == 270 {
		return p.ViewBox.Height
	}
	return p.ViewBox.Width
}

// Height returns the displayed height at scale 1.
func (p *Page) Height() float64 {
	if p.Rotation == 90 || p.Rotation == 270 {
		return p.ViewBox.Width
	}
	return p.ViewBox.Height
}

// Viewport returns the pixel mapping of the page at scale.
func (p *Page) Viewport(scale float64) model.Viewport {
	return model.NewViewport(p.ViewBox, scale, p.Rotation)
}

// Document returns the document the page belongs to.
func (p *Page) Document() *Document {
	return p.doc
}

// TextContent extracts the ordered text items of the page.
func (p *Page) TextContent(ctx context.Context) (*text.TextContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tc, err := p.doc.r.ExtractTextContent(p.page)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", p.Number, err)
	}

	p.doc.log.WithFields(logrus.Fields{
		"page":  p.Number,
		"items": len(tc.Items),
	}).Debug("text content extracted")
	return tc, nil
}

// Content returns the decoded content stream of the page.
func (p *Page) Content(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := p.doc.r.PageContent(p.page)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", p.Number, err)
	}
	return data, nil
}

// NewExtractor returns a content stream walker with the page's fonts
// and XObjects registered.
func (p *Page) NewExtractor() *text.Extractor {
	return p.doc.r.NewPageExtractor(p.page)
}

// Images returns the image XObjects named in the page resources.
func (p *Page) Images() ([]reader.PageImage, error) {
	return p.doc.r.ExtractPageImages(p.page)
}

// DecodeImage decodes an image XObject painted on the page.
func (p *Page) DecodeImage(stream *core.Stream) (image.Image, error) {
	return p.doc.r.DecodeImage(stream)
}
