package graphicsstate

import (
	"errors"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/tsawler/pdfannotate/model"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestNewGraphicsState(t *testing.T) {
	gs := NewGraphicsState()
	if gs.LineWidth != 1 || gs.Text.FontSize != 12 || gs.Text.HorizontalScaling != 100 {
		t.Errorf("defaults: width %v size %v scaling %v", gs.LineWidth, gs.Text.FontSize, gs.Text.HorizontalScaling)
	}
	if gs.CTM != model.Identity() || gs.Depth() != 0 {
		t.Errorf("CTM %v depth %d", gs.CTM, gs.Depth())
	}
}

func TestSaveRestore(t *testing.T) {
	gs := NewGraphicsState()
	gs.SetLineWidth(2.5)
	gs.SetFont("Helvetica", 14)
	gs.SetFillColorRGB(1, 0, 0)
	before := *gs

	gs.Save()
	gs.Save()
	if gs.Depth() != 2 {
		t.Fatalf("Depth = %d", gs.Depth())
	}
	gs.SetLineWidth(5)
	gs.SetFont("Times", 18)
	gs.SetFillColorRGB(0, 0, 1)
	gs.SetStrokeColorRGB(0, 1, 0)
	gs.Transform(model.Translate(10, 10))

	for i := 0; i < 2; i++ {
		if err := gs.Restore(); err != nil {
			t.Fatalf("Restore %d: %v", i, err)
		}
	}
	if diff := cmp.Diff(before, *gs, cmpopts.IgnoreUnexported(GraphicsState{})); diff != "" {
		t.Errorf("state after q q Q Q (-want +got):\n%s", diff)
	}
	if err := gs.Restore(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("unmatched Restore = %v", err)
	}
}

func TestRestoreKeepsTextMatrix(t *testing.T) {
	gs := NewGraphicsState()
	gs.BeginText()
	gs.Save()
	gs.TranslateText(72, 700)
	gs.Restore()

	if gs.Text.TextMatrix[4] != 72 || gs.Text.TextLineMatrix[5] != 700 {
		t.Errorf("text matrices should survive Q: %v %v", gs.Text.TextMatrix, gs.Text.TextLineMatrix)
	}
}

func TestTransformConcatenation(t *testing.T) {
	tests := []struct {
		name string
		ops  []model.Matrix
		want model.Matrix
	}{
		{"translate", []model.Matrix{model.Translate(100, 200)}, model.Matrix{1, 0, 0, 1, 100, 200}},
		{"scale then translate", []model.Matrix{model.Scale(2, 2), model.Translate(10, 5)}, model.Matrix{2, 0, 0, 2, 20, 10}},
		{"translate then scale", []model.Matrix{model.Translate(10, 5), model.Scale(2, 2)}, model.Matrix{2, 0, 0, 2, 10, 5}},
	}
	for _, tt := range tests {
		gs := NewGraphicsState()
		for _, m := range tt.ops {
			gs.Transform(m)
		}
		if diff := cmp.Diff(tt.want, gs.CTM, approx); diff != "" {
			t.Errorf("%s: CTM (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestTextStateSetters(t *testing.T) {
	gs := NewGraphicsState()
	gs.SetFont("F1", 9)
	gs.SetCharSpacing(0.5)
	gs.SetWordSpacing(2)
	gs.SetHorizontalScaling(80)
	gs.SetLeading(11)
	gs.SetRenderingMode(3)
	gs.SetTextRise(4)

	want := TextState{
		FontName: "F1", FontSize: 9,
		CharSpacing: 0.5, WordSpacing: 2,
		HorizontalScaling: 80, Leading: 11,
		RenderingMode: 3, Rise: 4,
		TextMatrix:     model.Identity(),
		TextLineMatrix: model.Identity(),
	}
	if diff := cmp.Diff(want, gs.Text); diff != "" {
		t.Errorf("text state (-want +got):\n%s", diff)
	}
	if gs.GetFontName() != "F1" {
		t.Errorf("GetFontName = %q", gs.GetFontName())
	}
}

func TestTextPositioning(t *testing.T) {
	gs := NewGraphicsState()
	gs.SetTextMatrix(model.Matrix{1, 0, 0, 1, 100, 200})
	gs.BeginText()
	if gs.Text.TextMatrix != model.Identity() || gs.Text.TextLineMatrix != model.Identity() {
		t.Fatal("BT should reset both text matrices")
	}

	gs.TranslateText(10, 20)
	gs.TranslateText(5, 10)
	if gs.Text.TextMatrix[4] != 15 || gs.Text.TextMatrix[5] != 30 {
		t.Errorf("Td accumulates: got %v", gs.Text.TextMatrix)
	}

	gs.SetTextMatrix(model.Matrix{2, 0, 0, 2, 100, 100})
	gs.TranslateText(10, -5)
	if diff := cmp.Diff(model.Matrix{2, 0, 0, 2, 120, 90}, gs.Text.TextMatrix, approx); diff != "" {
		t.Errorf("Td moves in text space (-want +got):\n%s", diff)
	}
}

func TestLeadingOperators(t *testing.T) {
	gs := NewGraphicsState()
	gs.BeginText()
	gs.TranslateTextSetLeading(0, -14)
	if gs.Text.Leading != 14 {
		t.Errorf("TD leading = %v, want 14", gs.Text.Leading)
	}
	gs.NextLine()
	if gs.Text.TextMatrix[5] != -28 || gs.Text.TextLineMatrix != gs.Text.TextMatrix {
		t.Errorf("after T*: Tm %v Tlm %v", gs.Text.TextMatrix, gs.Text.TextLineMatrix)
	}
}

func TestAdvance(t *testing.T) {
	gs := NewGraphicsState()
	gs.SetTextMatrix(model.Matrix{0, 1, -1, 0, 50, 50})
	gs.Advance(10)

	// Rotated text advances along its own baseline.
	if diff := cmp.Diff(model.Matrix{0, 1, -1, 0, 50, 60}, gs.Text.TextMatrix, approx); diff != "" {
		t.Errorf("Advance (-want +got):\n%s", diff)
	}
	if gs.Text.TextLineMatrix[5] != 50 {
		t.Error("Advance moved the line matrix")
	}
}

func TestTextRenderingMatrix(t *testing.T) {
	gs := NewGraphicsState()
	gs.Transform(model.Scale(2, 2))
	gs.BeginText()
	gs.SetFont("F1", 10)
	gs.SetHorizontalScaling(50)
	gs.SetTextRise(3)
	gs.TranslateText(100, 200)

	want := model.Matrix{10, 0, 0, 20, 200, 406}
	if diff := cmp.Diff(want, gs.TextRenderingMatrix(), approx); diff != "" {
		t.Errorf("Trm (-want +got):\n%s", diff)
	}
}

func TestColors(t *testing.T) {
	gs := NewGraphicsState()
	gs.SetFillColorRGB(1, 0.5, 0)
	gs.SetStrokeColorRGB(-1, 2, 0.2)

	if got, want := gs.FillRGBA(), (color.RGBA{255, 128, 0, 255}); got != want {
		t.Errorf("FillRGBA = %v, want %v", got, want)
	}
	if got, want := gs.StrokeRGBA(), (color.RGBA{0, 255, 51, 255}); got != want {
		t.Errorf("StrokeRGBA = %v, want %v", got, want)
	}
	if r, g, b := cmykToRGB(0, 1, 1, 0); r != 1 || g != 0 || b != 0 {
		t.Errorf("cmykToRGB(0,1,1,0) = %v %v %v, want red", r, g, b)
	}
	if r, g, b := cmykToRGB(0, 0, 0, 0.5); r != 0.5 || g != 0.5 || b != 0.5 {
		t.Errorf("cmykToRGB(0,0,0,.5) = %v %v %v", r, g, b)
	}
}
