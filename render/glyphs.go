package render

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/tsawler/pdfannotate/model"
	"github.com/tsawler/pdfannotate/text"
)

// face selects one of the built-in Go fonts
type face int

const (
	faceRegular face = iota
	faceBold
	faceItalic
	faceBoldItalic
	faceMono
	faceMonoBold
	numFaces
)

var (
	facesOnce sync.Once
	faces     [numFaces]*sfnt.Font
	facesErr  error
)

// loadFaces parses the Go fonts once. sfnt.Font values are safe for
// concurrent use; sfnt.Buffer values are not.
func loadFaces() error {
	facesOnce.Do(func() {
		sources := [numFaces][]byte{
			faceRegular:    goregular.TTF,
			faceBold:       gobold.TTF,
			faceItalic:     goitalic.TTF,
			faceBoldItalic: gobolditalic.TTF,
			faceMono:       gomono.TTF,
			faceMonoBold:   gomonobold.TTF,
		}
		for i, ttf := range sources {
			f, err := sfnt.Parse(ttf)
			if err != nil {
				facesErr = fmt.Errorf("parse built-in font %d: %w", i, err)
				return
			}
			faces[i] = f
		}
	})
	return facesErr
}

// pickFace maps a PDF base font name and a generic family onto a Go font.
func pickFace(baseFont, family string) face {
	name := strings.ToLower(baseFont)
	bold := strings.Contains(name, "bold") || strings.Contains(name, "black") || strings.Contains(name, "heavy")
	italic := strings.Contains(name, "italic") || strings.Contains(name, "oblique")

	if family == "monospace" {
		if bold {
			return faceMonoBold
		}
		return faceMono
	}

	switch {
	case bold && italic:
		return faceBoldItalic
	case bold:
		return faceBold
	case italic:
		return faceItalic
	}
	return faceRegular
}

// glyphBuffer holds the per-canvas sfnt scratch space
type glyphBuffer struct {
	buf sfnt.Buffer
}

type placedGlyph struct {
	index sfnt.GlyphIndex
	x     float64 // pen position in em
}

// drawText paints the glyphs of a run. Glyphs are laid out with the Go
// font advances, then the run is stretched along its baseline to the
// width the PDF font declares.
func (c *canvas) drawText(item text.TextItem, fc face) {
	if err := loadFaces(); err != nil {
		return
	}
	f := faces[fc]
	buf := &c.glyphs.buf

	upem := float64(f.UnitsPerEm())
	ppem := fixed.I(int(f.UnitsPerEm()))

	var glyphs []placedGlyph
	pen := 0.0
	for _, r := range item.Str {
		gi, err := f.GlyphIndex(buf, r)
		if err != nil || gi == 0 {
			pen += 0.5
			continue
		}
		adv, err := f.GlyphAdvance(buf, gi, ppem, font.HintingNone)
		if err != nil {
			continue
		}
		glyphs = append(glyphs, placedGlyph{index: gi, x: pen})
		pen += float64(adv) / 64 / upem
	}
	if len(glyphs) == 0 {
		return
	}

	stretch := 1.0
	if runScale := item.Transform.ScaleX(); pen > 0 && item.Width > 0 && runScale > 0 {
		stretch = item.Width / (pen * runScale)
	}

	dev := c.device(*item.Transform)
	pt := func(x float64, p fixed.Point26_6) model.Point {
		return dev.Transform(model.Point{
			X: (x + float64(p.X)/64/upem) * stretch,
			Y: -float64(p.Y) / 64 / upem,
		})
	}

	c.sh.reset()
	for _, g := range glyphs {
		segs, err := f.LoadGlyph(buf, g.index, ppem, nil)
		if err != nil {
			continue
		}
		for _, seg := range segs {
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				c.sh.moveTo(pt(g.x, seg.Args[0]))
			case sfnt.SegmentOpLineTo:
				c.sh.lineTo(pt(g.x, seg.Args[0]))
			case sfnt.SegmentOpQuadTo:
				c.sh.quadTo(pt(g.x, seg.Args[0]), pt(g.x, seg.Args[1]))
			case sfnt.SegmentOpCubeTo:
				c.sh.cubeTo(pt(g.x, seg.Args[0]), pt(g.x, seg.Args[1]), pt(g.x, seg.Args[2]))
			}
		}
		c.sh.close()
	}

	col := item.FillColor
	col.A = 0xff
	c.fill(col)
}
