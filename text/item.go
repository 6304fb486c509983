package text

import (
	"image/color"

	"github.com/tsawler/pdfannotate/model"
)

// MarkedContent identifies marked-content boundary items.
type MarkedContent int

const (
	// NotMarked is an ordinary text run
	NotMarked MarkedContent = iota
	// BeginMarked is produced by BMC and BDC
	BeginMarked
	// EndMarked is produced by EMC
	EndMarked
)

// TextItem is one run of text produced by a text showing operator, or a
// marked-content boundary. Boundary items have no Transform.
type TextItem struct {
	Str string

	// Transform maps glyph space (one unit per em) to user space at the
	// start of the run. Nil for marked-content items.
	Transform *model.Matrix

	FontName string

	// Width and Height of the run in user space units
	Width  float64
	Height float64

	Dir Direction

	// Render hints
	FillColor  color.RGBA
	RenderMode int

	Marked MarkedContent
	Tag    string
}

// HasTransform reports whether the item is positioned text.
func (it TextItem) HasTransform() bool {
	return it.Transform != nil
}

// Invisible reports whether the run uses text render mode 3 (neither
// filled nor stroked), as OCR layers do.
func (it TextItem) Invisible() bool {
	return it.RenderMode == 3 || it.RenderMode == 7
}

// TextStyle describes a font as used by the text layer.
type TextStyle struct {
	FontFamily string
	Ascent     float64
	Descent    float64
	Vertical   bool
}

// DefaultFontFamily is the generic family used for unknown fonts.
const DefaultFontFamily = "sans-serif"

// TextContent is the ordered text of a page together with the styles of
// the fonts it references.
type TextContent struct {
	Items  []TextItem
	Styles map[string]TextStyle
}

// Positioned returns the number of items that carry a transform.
func (c *TextContent) Positioned() int {
	n := 0
	for _, it := range c.Items {
		if it.HasTransform() {
			n++
		}
	}
	return n
}

// Style returns the style of the named font, or a default sans-serif style.
func (c *TextContent) Style(fontName string) TextStyle {
	if s, ok := c.Styles[fontName]; ok {
		return s
	}
	return TextStyle{FontFamily: DefaultFontFamily, Ascent: 0.8, Descent: -0.2}
}
