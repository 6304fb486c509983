package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"

	"github.com/tsawler/pdfannotate/graphicsstate"
	"github.com/tsawler/pdfannotate/model"
)

// minHalfWidth keeps hairlines (line width 0) one pixel wide
const minHalfWidth = 0.5

// canvas is the drawing surface of one render
type canvas struct {
	img      *image.RGBA
	ras      *vector.Rasterizer
	vp       model.Viewport
	flatness float64
	sh       shape
	glyphs   glyphBuffer
}

func newCanvas(w, h int, vp model.Viewport, flatness float64) *canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return &canvas{
		img:      img,
		ras:      vector.NewRasterizer(w, h),
		vp:       vp,
		flatness: flatness,
	}
}

// device returns the matrix from user space under ctm to pixels
func (c *canvas) device(ctm model.Matrix) model.Matrix {
	return ctm.Multiply(c.vp.Transform)
}

// paintPath fills and strokes a path as the painting operator asks.
// Even-odd fills are approximated with the nonzero rule.
func (c *canvas) paintPath(path *graphicsstate.Path, mode graphicsstate.PaintMode, gs *graphicsstate.GraphicsState) {
	m := c.device(gs.CTM)
	subpaths := path.Flatten(m, c.flatness)

	if mode.Fills() {
		c.sh.reset()
		for _, sp := range subpaths {
			c.sh.polygon(sp.Points...)
		}
		c.fill(gs.FillRGBA())
	}

	if mode.Strokes() {
		hw := gs.LineWidth * math.Sqrt(math.Abs(m.Determinant())) / 2
		if hw < minHalfWidth {
			hw = minHalfWidth
		}
		c.sh.reset()
		for _, sp := range subpaths {
			if len(sp.Points) == 0 {
				continue
			}
			c.sh.strokeOutline(sp.Points, sp.Closed, hw)
		}
		c.fill(gs.StrokeRGBA())
	}
}

// fill rasterizes the current shape with a solid color. The rasterizer
// only covers the shape bounds clipped to the surface.
func (c *canvas) fill(col color.RGBA) {
	s := &c.sh
	s.close()
	if s.empty() {
		return
	}

	rect := image.Rect(
		int(math.Floor(s.minX)), int(math.Floor(s.minY)),
		int(math.Ceil(s.maxX))+1, int(math.Ceil(s.maxY))+1,
	).Intersect(c.img.Bounds())
	if rect.Empty() {
		return
	}

	c.ras.Reset(rect.Dx(), rect.Dy())
	ox, oy := float64(rect.Min.X), float64(rect.Min.Y)
	pt := func(p model.Point) (float32, float32) {
		return float32(p.X - ox), float32(p.Y - oy)
	}

	for _, op := range s.ops {
		switch op.kind {
		case opMove:
			c.ras.MoveTo(pt(op.pts[0]))
		case opLine:
			c.ras.LineTo(pt(op.pts[0]))
		case opQuad:
			x1, y1 := pt(op.pts[0])
			x2, y2 := pt(op.pts[1])
			c.ras.QuadTo(x1, y1, x2, y2)
		case opCube:
			x1, y1 := pt(op.pts[0])
			x2, y2 := pt(op.pts[1])
			x3, y3 := pt(op.pts[2])
			c.ras.CubeTo(x1, y1, x2, y2, x3, y3)
		case opClose:
			c.ras.ClosePath()
		}
	}

	c.ras.Draw(c.img, rect, image.NewUniform(col), image.Point{})
}

// drawImage maps img onto the unit square under ctm. The first image row
// is the top edge of the square.
func (c *canvas) drawImage(img image.Image, ctm model.Matrix) {
	b := img.Bounds()
	if b.Empty() {
		return
	}

	unit := model.Matrix{1 / float64(b.Dx()), 0, 0, -1 / float64(b.Dy()), 0, 1}
	m := model.Translate(-float64(b.Min.X), -float64(b.Min.Y)).
		Multiply(unit).
		Multiply(c.device(ctm))
	if math.Abs(m.Determinant()) < 1e-12 {
		return
	}

	aff := f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
	xdraw.ApproxBiLinear.Transform(c.img, aff, img, b, xdraw.Over, nil)
}
