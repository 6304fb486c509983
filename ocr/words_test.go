package ocr

import (
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/tsawler/pdfannotate/model"
	"github.com/tsawler/pdfannotate/text"
	"github.com/tsawler/pdfannotate/textlayer"
)

var letter = model.NewBBox(0, 0, 612, 792)

func TestTextContent(t *testing.T) {
	tests := []struct {
		name     string
		rotation int
		scale    float64
		box      image.Rectangle
		want     model.Matrix
		width    float64
	}{
		{
			name:  "upright",
			scale: 1.5,
			box:   image.Rect(108, 90, 168, 108),
			want:  model.Matrix{12, 0, 0, 12, 72, 720},
			width: 40,
		},
		{
			name:     "rotated page",
			rotation: 90,
			scale:    1,
			box:      image.Rect(10, 20, 50, 32),
			want:     model.Matrix{0, 12, -12, 0, 32, 10},
			width:    40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp := model.NewViewport(letter, tt.scale, tt.rotation)
			content := TextContent([]Word{{Text: " Hello ", Box: tt.box, Confidence: 91}}, vp)

			if len(content.Items) != 1 {
				t.Fatalf("got %d items, want 1", len(content.Items))
			}
			item := content.Items[0]
			if item.Str != "Hello" || item.FontName != FontName || !item.Invisible() {
				t.Errorf("item = %q %q mode %d", item.Str, item.FontName, item.RenderMode)
			}
			approx := cmpopts.EquateApprox(0, 1e-9)
			if diff := cmp.Diff(tt.want, *item.Transform, approx); diff != "" {
				t.Errorf("transform mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.width, item.Width, approx); diff != "" {
				t.Errorf("width mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTextContent_LinesUpWithSurface(t *testing.T) {
	vp := model.NewViewport(letter, 1.5, 0)
	content := TextContent([]Word{{Text: "Scanned", Box: image.Rect(108, 90, 213, 108)}}, vp)

	layer := textlayer.Synthesize(content, vp, model.Point{}, textlayer.DefaultCalibration())
	if len(layer.Nodes) != 1 {
		t.Fatalf("got %d nodes", len(layer.Nodes))
	}
	n := layer.Nodes[0]
	approx := cmpopts.EquateApprox(0, 1e-9)
	got := []float64{n.Left, n.Top, n.FontSize}
	if diff := cmp.Diff([]float64{108, 108, 18}, got, approx); diff != "" {
		t.Errorf("node placement (-want +got):\n%s", diff)
	}
	if n.FontFamily != text.DefaultFontFamily {
		t.Errorf("FontFamily = %q", n.FontFamily)
	}
}

func TestTextContent_DropsEmptyWords(t *testing.T) {
	vp := model.NewViewport(letter, 1, 0)
	content := TextContent([]Word{
		{Text: "  ", Box: image.Rect(0, 0, 10, 10)},
		{Text: "x", Box: image.Rect(5, 5, 5, 10)},
		{Text: "ok", Box: image.Rect(0, 0, 10, 10)},
	}, vp)

	if len(content.Items) != 1 || content.Items[0].Str != "ok" {
		t.Errorf("items = %+v", content.Items)
	}
}
