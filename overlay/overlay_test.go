package overlay

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/tsawler/pdfannotate/model"
	"github.com/tsawler/pdfannotate/text"
	"github.com/tsawler/pdfannotate/textlayer"
)

func at(m model.Matrix) *model.Matrix { return &m }

// sampleLayer lays out three lines of text at scale 1.5
func sampleLayer(lines ...string) textlayer.Layer {
	content := &text.TextContent{Styles: map[string]text.TextStyle{"F1": {FontFamily: "sans-serif"}}}
	for i, line := range lines {
		content.Items = append(content.Items, text.TextItem{
			Str:       line,
			Transform: at(model.Matrix{12, 0, 0, 12, 72, 720 - 14*float64(i)}),
			FontName:  "F1",
			Width:     6 * float64(len(line)),
		})
	}
	vp := model.NewViewport(model.NewBBox(0, 0, 612, 792), 1.5, 0)
	return textlayer.Synthesize(content, vp, model.Point{}, textlayer.DefaultCalibration())
}

func rng(sn, so, en, eo int) Range {
	return Range{Start: Position{sn, so}, End: Position{en, eo}}
}

func sel(r ...Range) Selection {
	return Selection{Ranges: r}
}

// spans returns the text of every highlight span in document order
func spans(o *Overlay) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if isHighlight(n) {
			var texts []*html.Node
			collectText(n, &texts)
			var b strings.Builder
			for _, t := range texts {
				b.WriteString(t.Data)
			}
			out = append(out, attr(n, "data-highlight-id")+"="+b.String())
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(o.Root())
	return out
}

func TestMaterialize(t *testing.T) {
	o := Materialize(sampleLayer("Top Left", "Second"), 3)

	if o.NodeCount() != 2 || o.Page() != 3 {
		t.Fatalf("NodeCount() = %d, Page() = %d", o.NodeCount(), o.Page())
	}

	got := o.HTML()
	for _, want := range []string{
		`<div id="text-layer" data-page="3" style="left: 0px; top: -12px; width: 918px; height: 1188px; transform: scale(0.975); transform-origin: 0 0">`,
		`<div class="text-run" data-index="0" data-id="r0" dir="ltr" style="left: 108px; top: 108px; font-size: 18px; font-family: sans-serif; transform: scaleX(0.333)">Top Left</div>`,
		`data-index="1" data-id="r1"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("HTML missing %s\n%s", want, got)
		}
	}

	if i, ok := o.NodeIndex("r1"); !ok || i != 1 {
		t.Errorf("NodeIndex(r1) = %d, %v", i, ok)
	}
	if o.NodeID(5) != "" {
		t.Error("NodeID out of range should be empty")
	}
}

func TestMaterializeEscapesText(t *testing.T) {
	o := Materialize(sampleLayer("a < b & c"), 1)
	if !strings.Contains(o.HTML(), ">a &lt; b &amp; c</div>") {
		t.Errorf("text not escaped: %s", o.HTML())
	}
}

func TestTopLeftHighlight(t *testing.T) {
	o := Materialize(sampleLayer("Top Left"), 1)

	h, err := o.OnPointerUp(sel(rng(0, 0, 0, 8)))
	if err != nil {
		t.Fatalf("OnPointerUp() error = %v", err)
	}
	if h == nil {
		t.Fatal("expected a highlight")
	}

	want := Highlight{ID: "h1", Page: 1, Range: rng(0, 0, 0, 8), Text: "Top Left", StartID: "r0", EndID: "r0", Segments: 1}
	if diff := cmp.Diff(want, *h); diff != "" {
		t.Errorf("highlight mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(o.HTML(), `<span class="highlight" data-highlight-id="h1">Top Left</span>`) {
		t.Errorf("span missing: %s", o.HTML())
	}
}

func TestOnPointerUpNoOps(t *testing.T) {
	tests := []struct {
		name string
		sel  Selection
	}{
		{"no range", sel()},
		{"collapsed", sel(rng(0, 3, 0, 3))},
		{"boundary between nodes", sel(rng(0, 8, 1, 0))},
		{"empty node", sel(rng(1, 0, 1, 0))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Materialize(sampleLayer("Top Left", "", "Third"), 1)
			before := o.HTML()

			h, err := o.OnPointerUp(tt.sel)
			if err != nil || h != nil {
				t.Fatalf("OnPointerUp() = %v, %v, want nil, nil", h, err)
			}
			if o.HTML() != before {
				t.Error("DOM changed")
			}
			if len(o.Highlights()) != 0 {
				t.Error("highlight recorded")
			}
		})
	}
}

func TestTwoDisjointSelections(t *testing.T) {
	o := Materialize(sampleLayer("Top Left", "Second line"), 1)

	if _, err := o.OnPointerUp(sel(rng(0, 0, 0, 3))); err != nil {
		t.Fatal(err)
	}
	if _, err := o.OnPointerUp(sel(rng(1, 7, 1, 11))); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"h1=Top", "h2=line"}, spans(o)); diff != "" {
		t.Errorf("spans mismatch (-want +got):\n%s", diff)
	}
	if len(o.Highlights()) != 2 {
		t.Errorf("Highlights() = %d, want 2", len(o.Highlights()))
	}

	// Text is never reordered or removed
	for i, want := range []string{"Top Left", "Second line"} {
		var texts []*html.Node
		collectText(o.runs[i], &texts)
		var b strings.Builder
		for _, tn := range texts {
			b.WriteString(tn.Data)
		}
		if b.String() != want {
			t.Errorf("node %d text = %q, want %q", i, b.String(), want)
		}
	}
}

func TestHighlightAcrossNodes(t *testing.T) {
	o := Materialize(sampleLayer("Top Left", "Second line", "Third"), 1)

	h, err := o.Highlight(rng(0, 4, 2, 2))
	if err != nil {
		t.Fatalf("Highlight() error = %v", err)
	}
	if h.Text != "LeftSecond lineTh" || h.Segments != 3 {
		t.Errorf("Text = %q, Segments = %d", h.Text, h.Segments)
	}
	if h.StartID != "r0" || h.EndID != "r2" {
		t.Errorf("ids = %s..%s, want r0..r2", h.StartID, h.EndID)
	}
	if diff := cmp.Diff([]string{"h1=Left", "h1=Second line", "h1=Th"}, spans(o)); diff != "" {
		t.Errorf("spans mismatch (-want +got):\n%s", diff)
	}
}

func TestOverlappingHighlightsNest(t *testing.T) {
	o := Materialize(sampleLayer("abcdefgh"), 1)

	if _, err := o.Highlight(rng(0, 1, 0, 6)); err != nil {
		t.Fatal(err)
	}
	h2, err := o.Highlight(rng(0, 4, 0, 8))
	if err != nil {
		t.Fatal(err)
	}
	if h2.Segments != 2 {
		t.Errorf("Segments = %d, want 2", h2.Segments)
	}

	got := o.HTML()
	inner := `a<span class="highlight" data-highlight-id="h1">bcd<span class="highlight" data-highlight-id="h2">ef</span></span><span class="highlight" data-highlight-id="h2">gh</span>`
	if !strings.Contains(got, inner) {
		t.Errorf("nested structure missing\nwant %s\ngot  %s", inner, got)
	}
}

func TestClearHighlightsRestoresDOM(t *testing.T) {
	o := Materialize(sampleLayer("Top Left", "Second line", "Third"), 1)
	original := o.HTML()

	for _, r := range []Range{rng(0, 1, 2, 3), rng(1, 2, 1, 5), rng(0, 0, 0, 8)} {
		if _, err := o.Highlight(r); err != nil {
			t.Fatalf("Highlight(%v) error = %v", r, err)
		}
	}
	if o.HTML() == original {
		t.Fatal("highlights did not change the DOM")
	}

	o.ClearHighlights()
	if got := o.HTML(); got != original {
		t.Errorf("DOM not restored\nwant %s\ngot  %s", original, got)
	}
	if len(o.Highlights()) != 0 {
		t.Error("highlights not cleared")
	}
	for _, run := range o.runs {
		if n := countChildren(run); n > 1 {
			t.Errorf("run has %d children after clear, want 1", n)
		}
	}
}

func countChildren(n *html.Node) int {
	c := 0
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c++
	}
	return c
}

func TestInvalidRanges(t *testing.T) {
	tests := []struct {
		name string
		r    Range
	}{
		{"negative node", rng(-1, 0, 0, 1)},
		{"node past end", rng(0, 0, 2, 0)},
		{"negative offset", rng(0, -1, 0, 2)},
		{"offset past end", rng(0, 0, 0, 9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Materialize(sampleLayer("Top Left", "x"), 1)
			if _, err := o.OnPointerUp(sel(tt.r)); !errors.Is(err, ErrInvalidRange) {
				t.Errorf("OnPointerUp() error = %v, want ErrInvalidRange", err)
			}
			if _, err := o.Highlight(tt.r); !errors.Is(err, ErrInvalidRange) {
				t.Errorf("Highlight() error = %v, want ErrInvalidRange", err)
			}
			if _, err := o.TextInRange(tt.r); !errors.Is(err, ErrInvalidRange) {
				t.Errorf("TextInRange() error = %v, want ErrInvalidRange", err)
			}
		})
	}

	o := Materialize(sampleLayer("Top Left"), 1)
	if _, err := o.Highlight(rng(0, 2, 0, 2)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Highlight(collapsed) error = %v, want ErrInvalidRange", err)
	}
}

func TestBackwardSelection(t *testing.T) {
	o := Materialize(sampleLayer("Top Left"), 1)
	h, err := o.OnPointerUp(sel(rng(0, 8, 0, 4)))
	if err != nil || h == nil {
		t.Fatalf("OnPointerUp() = %v, %v", h, err)
	}
	if h.Text != "Left" || h.Range != rng(0, 4, 0, 8) {
		t.Errorf("highlight = %q %v", h.Text, h.Range)
	}
}

func TestRuneOffsets(t *testing.T) {
	o := Materialize(sampleLayer("naïve café"), 1)
	h, err := o.Highlight(rng(0, 6, 0, 10))
	if err != nil {
		t.Fatalf("Highlight() error = %v", err)
	}
	if h.Text != "café" {
		t.Errorf("Text = %q, want café", h.Text)
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in      string
		want    Position
		wantErr bool
	}{
		{"0:0", Position{0, 0}, false},
		{"3:12", Position{3, 12}, false},
		{" 1 : 2 ", Position{1, 2}, false},
		{"3", Position{}, true},
		{"a:1", Position{}, true},
		{"1:b", Position{}, true},
	}

	for _, tt := range tests {
		got, err := ParsePosition(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePosition(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePosition(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !tt.wantErr && got.String() != strings.ReplaceAll(tt.in, " ", "") {
			t.Errorf("String() = %q", got.String())
		}
	}
}
