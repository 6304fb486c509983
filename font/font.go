package font

import (
	"strings"
	"unicode/utf8"
)

// Font is a font resource reduced to what text placement needs: the
// Unicode text of each character code and its advance width.
type Font struct {
	Name     string
	BaseFont string
	Subtype  string

	// Encoding is the encoding name for simple fonts and the CMap name
	// (Identity-H, Identity-V, ...) for composite fonts.
	Encoding string

	Descriptor    *Descriptor
	ToUnicodeCMap *CMap

	enc Encoding

	// Advance widths in thousandths of text space. Simple fonts fill
	// codeWidths from /Widths; composite fonts use cid ranges.
	codeWidths   map[int]float64
	missingWidth float64
	metrics      *[95]float64
	cid          *cidWidths
	widthScale   float64
}

// Descriptor holds the font descriptor entries the text layer reads.
type Descriptor struct {
	FontName     string
	Flags        int
	FontBBox     [4]float64
	ItalicAngle  float64
	Ascent       float64
	Descent      float64
	CapHeight    float64
	MissingWidth float64
	Embedded     bool
}

// Descriptor flag bits.
const (
	FlagFixedPitch = 1 << 0
	FlagSerif      = 1 << 1
	FlagSymbolic   = 1 << 2
	FlagItalic     = 1 << 6
)

// Glyph is one decoded character code of a shown string.
type Glyph struct {
	Code  int
	Bytes int
	Text  string

	// Width is the advance in thousandths of text space.
	Width float64

	// Space marks a single-byte code 32, where word spacing applies.
	Space bool
}

// NewFont returns a font without a resource dictionary, measured with the
// standard 14 metrics closest to baseFont.
func NewFont(name, baseFont, subtype string) *Font {
	f := &Font{
		Name:       name,
		BaseFont:   baseFont,
		Subtype:    subtype,
		Encoding:   "WinAnsiEncoding",
		metrics:    standardMetrics(baseFont),
		widthScale: 1,
	}
	if subtype == "Type0" {
		f.Encoding = "Identity-H"
		f.cid = &cidWidths{dw: 1000}
	}
	return f
}

// Composite reports whether the font uses two-byte codes.
func (f *Font) Composite() bool {
	return f.cid != nil
}

// Vertical reports whether the font writes top to bottom.
func (f *Font) Vertical() bool {
	return f.Composite() && strings.HasSuffix(f.Encoding, "-V")
}

// Standard reports whether the base font is one of the standard 14 fonts.
func (f *Font) Standard() bool {
	_, ok := standard14[stripSubset(f.BaseFont)]
	return ok
}

// Glyphs splits a shown string into character codes.
func (f *Font) Glyphs(data []byte) []Glyph {
	if f.cid != nil {
		return f.compositeGlyphs(data)
	}
	if f.ToUnicodeCMap == nil && len(data) >= 2 {
		if data[0] == 0xFE && data[1] == 0xFF {
			return f.utf16Glyphs(data[2:], DecodeUTF16BE)
		}
		if data[0] == 0xFF && data[1] == 0xFE {
			return f.utf16Glyphs(data[2:], DecodeUTF16LE)
		}
	}

	glyphs := make([]Glyph, 0, len(data))
	for _, b := range data {
		code := int(b)
		text, ok := f.ToUnicodeCMap.Lookup(uint32(code), 1)
		if !ok {
			text, ok = f.ToUnicodeCMap.Lookup(uint32(code), 2)
		}
		if !ok {
			text = string(f.encoding().Decode(b))
		}
		glyphs = append(glyphs, Glyph{
			Code:  code,
			Bytes: 1,
			Text:  text,
			Width: f.simpleWidth(code, text),
			Space: code == 32,
		})
	}
	return glyphs
}

func (f *Font) compositeGlyphs(data []byte) []Glyph {
	glyphs := make([]Glyph, 0, len(data)/2)
	for i := 0; i < len(data); {
		n := 2
		if i+1 >= len(data) {
			n = 1
		}
		code := 0
		for _, b := range data[i : i+n] {
			code = code<<8 | int(b)
		}
		text, ok := f.ToUnicodeCMap.Lookup(uint32(code), n)
		if !ok {
			text = ""
			if code > 0 && utf8.ValidRune(rune(code)) {
				text = string(rune(code))
			}
		}
		glyphs = append(glyphs, Glyph{
			Code:  code,
			Bytes: n,
			Text:  text,
			Width: f.cid.width(code) * f.widthScale,
			Space: n == 1 && code == 32,
		})
		i += n
	}
	return glyphs
}

// utf16Glyphs reads a byte-order-marked text string shown with a simple
// font. Some producers write Unicode text this way.
func (f *Font) utf16Glyphs(data []byte, decode func([]byte) string) []Glyph {
	var glyphs []Glyph
	for _, r := range decode(data) {
		glyphs = append(glyphs, Glyph{
			Code:  int(r),
			Bytes: utf8.RuneLen(r),
			Text:  string(r),
			Width: f.runeWidth(r),
			Space: r == ' ',
		})
	}
	return glyphs
}

// DecodeString returns the NFC-normalized text of a shown string.
func (f *Font) DecodeString(data []byte) string {
	var sb strings.Builder
	for _, g := range f.Glyphs(data) {
		sb.WriteString(g.Text)
	}
	return NormalizeUnicode(sb.String())
}

// StringWidth sums the advances of data in thousandths of text space.
func (f *Font) StringWidth(data []byte) float64 {
	w := 0.0
	for _, g := range f.Glyphs(data) {
		w += g.Width
	}
	return w
}

func (f *Font) encoding() Encoding {
	if f.enc != nil {
		return f.enc
	}
	return GetEncoding(f.Encoding)
}

func (f *Font) simpleWidth(code int, text string) float64 {
	if w, ok := f.codeWidths[code]; ok {
		return w * f.widthScale
	}
	if f.codeWidths != nil && f.missingWidth > 0 {
		return f.missingWidth * f.widthScale
	}
	r, _ := utf8.DecodeRuneInString(text)
	return f.runeWidth(r)
}

func (f *Font) runeWidth(r rune) float64 {
	if f.metrics != nil && r >= 32 && r <= 126 {
		return f.metrics[r-32]
	}
	if f.missingWidth > 0 {
		return f.missingWidth
	}
	return 500
}

// cidWidths is the /DW and /W data of a descendant CIDFont.
type cidWidths struct {
	dw     float64
	ranges []cidRange
}

type cidRange struct {
	first, last int
	width       float64
	widths      []float64
}

func (c *cidWidths) width(cid int) float64 {
	for _, r := range c.ranges {
		if cid < r.first || cid > r.last {
			continue
		}
		if r.widths != nil {
			return r.widths[cid-r.first]
		}
		return r.width
	}
	return c.dw
}

func stripSubset(name string) string {
	if len(name) > 7 && name[6] == '+' && strings.ToUpper(name[:6]) == name[:6] {
		return name[7:]
	}
	return name
}
