package ocr

import (
	"errors"
	"image"
	"strings"

	"github.com/tsawler/pdfannotate/model"
	"github.com/tsawler/pdfannotate/text"
)

// ErrOCRNotEnabled is returned when OCR support was not compiled in.
// Rebuild with -tags ocr to enable it.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// FontName is the font resource name given to recognized words.
const FontName = "OCR"

// PageSegMode controls how the engine analyzes the page layout.
type PageSegMode int

// Page segmentation modes, numbered as Tesseract numbers them.
const (
	PSMAuto         PageSegMode = 3  // Fully automatic (default)
	PSMSingleColumn PageSegMode = 4  // Single column of variable sizes
	PSMSingleBlock  PageSegMode = 6  // Single uniform block of text
	PSMSingleLine   PageSegMode = 7  // Single text line
	PSMSparseText   PageSegMode = 11 // Find as much text as possible
)

// Word is a recognized word and its box on the surface, in pixels.
type Word struct {
	Text       string
	Box        image.Rectangle
	Confidence float64
}

// TextContent places words found on a surface rendered with vp into the
// page's user space. Each word becomes one text item whose transform maps
// a one-unit em box onto the word's box, so a text layer built from the
// result lines up with the surface. Blank and empty words are dropped.
func TextContent(words []Word, vp model.Viewport) *text.TextContent {
	content := &text.TextContent{
		Styles: map[string]text.TextStyle{
			FontName: {FontFamily: text.DefaultFontFamily, Ascent: 0.8, Descent: -0.2},
		},
	}

	for _, w := range words {
		str := strings.TrimSpace(w.Text)
		if str == "" || w.Box.Empty() {
			continue
		}

		// Baseline start, top start and baseline end of the box
		origin := vp.ConvertToPDFPoint(pt(w.Box.Min.X, w.Box.Max.Y))
		top := vp.ConvertToPDFPoint(pt(w.Box.Min.X, w.Box.Min.Y))
		end := vp.ConvertToPDFPoint(pt(w.Box.Max.X, w.Box.Max.Y))

		width := origin.Distance(end)
		height := origin.Distance(top)
		if width == 0 || height == 0 {
			continue
		}
		ux, uy := (end.X-origin.X)/width, (end.Y-origin.Y)/width
		vx, vy := (top.X-origin.X)/height, (top.Y-origin.Y)/height

		m := model.Matrix{ux * height, uy * height, vx * height, vy * height, origin.X, origin.Y}
		content.Items = append(content.Items, text.TextItem{
			Str:        str,
			Transform:  &m,
			FontName:   FontName,
			Width:      width,
			Height:     height,
			Dir:        text.DetectDirection(str),
			RenderMode: 3,
		})
	}
	return content
}

func pt(x, y int) model.Point {
	return model.Point{X: float64(x), Y: float64(y)}
}
