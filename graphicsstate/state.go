package graphicsstate

import (
	"errors"
	"image/color"

	"github.com/tsawler/pdfannotate/model"
)

// ErrStackUnderflow is returned by Restore without a matching Save.
var ErrStackUnderflow = errors.New("graphics state stack underflow")

// GraphicsState is the subset of the PDF graphics state the renderer and
// text extractor need. Colors are RGB in [0, 1].
type GraphicsState struct {
	CTM         model.Matrix
	LineWidth   float64
	StrokeColor [3]float64
	FillColor   [3]float64
	Text        TextState

	saved []snapshot
}

// TextState holds the text parameters (Tc, Tw, Tz, TL, Tf, Tr, Ts) and
// the matrices of the current text object.
type TextState struct {
	FontName          string
	FontSize          float64
	CharSpacing       float64
	WordSpacing       float64
	HorizontalScaling float64 // percent
	Leading           float64
	RenderingMode     int
	Rise              float64

	TextMatrix     model.Matrix
	TextLineMatrix model.Matrix
}

// snapshot is what q saves. The text matrices belong to the text
// object rather than the graphics state, so Q leaves them alone.
type snapshot struct {
	ctm          model.Matrix
	lineWidth    float64
	stroke, fill [3]float64
	text         TextState
}

func NewGraphicsState() *GraphicsState {
	return &GraphicsState{
		CTM:       model.Identity(),
		LineWidth: 1,
		Text: TextState{
			FontSize:          12,
			HorizontalScaling: 100,
			TextMatrix:        model.Identity(),
			TextLineMatrix:    model.Identity(),
		},
	}
}

// Depth is the number of unmatched Save calls.
func (gs *GraphicsState) Depth() int { return len(gs.saved) }

// Save implements q.
func (gs *GraphicsState) Save() {
	gs.saved = append(gs.saved, snapshot{
		ctm:       gs.CTM,
		lineWidth: gs.LineWidth,
		stroke:    gs.StrokeColor,
		fill:      gs.FillColor,
		text:      gs.Text,
	})
}

// Restore implements Q.
func (gs *GraphicsState) Restore() error {
	n := len(gs.saved)
	if n == 0 {
		return ErrStackUnderflow
	}
	s := gs.saved[n-1]
	gs.saved = gs.saved[:n-1]

	tm, tlm := gs.Text.TextMatrix, gs.Text.TextLineMatrix
	gs.CTM, gs.LineWidth = s.ctm, s.lineWidth
	gs.StrokeColor, gs.FillColor = s.stroke, s.fill
	gs.Text = s.text
	gs.Text.TextMatrix, gs.Text.TextLineMatrix = tm, tlm
	return nil
}

// Transform implements cm: CTM' = m × CTM.
func (gs *GraphicsState) Transform(m model.Matrix) {
	gs.CTM = m.Multiply(gs.CTM)
}

func (gs *GraphicsState) SetLineWidth(w float64)            { gs.LineWidth = w }
func (gs *GraphicsState) SetStrokeColorRGB(r, g, b float64) { gs.StrokeColor = [3]float64{r, g, b} }
func (gs *GraphicsState) SetFillColorRGB(r, g, b float64)   { gs.FillColor = [3]float64{r, g, b} }

// SetFont implements Tf.
func (gs *GraphicsState) SetFont(name string, size float64) {
	gs.Text.FontName, gs.Text.FontSize = name, size
}

func (gs *GraphicsState) SetCharSpacing(v float64)       { gs.Text.CharSpacing = v }
func (gs *GraphicsState) SetWordSpacing(v float64)       { gs.Text.WordSpacing = v }
func (gs *GraphicsState) SetHorizontalScaling(v float64) { gs.Text.HorizontalScaling = v }
func (gs *GraphicsState) SetLeading(v float64)           { gs.Text.Leading = v }
func (gs *GraphicsState) SetRenderingMode(mode int)      { gs.Text.RenderingMode = mode }
func (gs *GraphicsState) SetTextRise(v float64)          { gs.Text.Rise = v }

func (gs *GraphicsState) GetFontName() string { return gs.Text.FontName }

// BeginText implements BT.
func (gs *GraphicsState) BeginText() {
	gs.Text.TextMatrix = model.Identity()
	gs.Text.TextLineMatrix = model.Identity()
}

// EndText implements ET. Nothing outlives the text object.
func (gs *GraphicsState) EndText() {}

// SetTextMatrix implements Tm.
func (gs *GraphicsState) SetTextMatrix(m model.Matrix) {
	gs.Text.TextMatrix, gs.Text.TextLineMatrix = m, m
}

// TranslateText implements Td: Tlm' = T(tx, ty) × Tlm, and Tm follows.
func (gs *GraphicsState) TranslateText(tx, ty float64) {
	gs.Text.TextLineMatrix = model.Translate(tx, ty).Multiply(gs.Text.TextLineMatrix)
	gs.Text.TextMatrix = gs.Text.TextLineMatrix
}

// TranslateTextSetLeading implements TD.
func (gs *GraphicsState) TranslateTextSetLeading(tx, ty float64) {
	gs.Text.Leading = -ty
	gs.TranslateText(tx, ty)
}

// NextLine implements T*.
func (gs *GraphicsState) NextLine() {
	gs.TranslateText(0, -gs.Text.Leading)
}

// Advance moves Tm by tx text space units along its baseline after a
// glyph is shown. The line matrix stays put.
func (gs *GraphicsState) Advance(tx float64) {
	gs.Text.TextMatrix = model.Translate(tx, 0).Multiply(gs.Text.TextMatrix)
}

// TextRenderingMatrix maps glyph space, one unit per em, to user space:
// [Tfs×Th 0 0 Tfs 0 Trise] × Tm × CTM.
func (gs *GraphicsState) TextRenderingMatrix() model.Matrix {
	t := gs.Text
	m := model.Matrix{t.FontSize * t.HorizontalScaling / 100, 0, 0, t.FontSize, 0, t.Rise}
	return m.Multiply(t.TextMatrix).Multiply(gs.CTM)
}

func (gs *GraphicsState) FillRGBA() color.RGBA   { return rgba(gs.FillColor) }
func (gs *GraphicsState) StrokeRGBA() color.RGBA { return rgba(gs.StrokeColor) }

func rgba(c [3]float64) color.RGBA {
	ch := func(f float64) uint8 { return uint8(min(max(f, 0), 1)*255 + 0.5) }
	return color.RGBA{R: ch(c[0]), G: ch(c[1]), B: ch(c[2]), A: 0xff}
}

// cmykToRGB is the naive complement conversion without a color profile.
func cmykToRGB(c, m, y, k float64) (r, g, b float64) {
	return (1 - c) * (1 - k), (1 - m) * (1 - k), (1 - y) * (1 - k)
}
