package graphicsstate

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsawler/pdfannotate/model"
)

func pt(x, y float64) model.Point { return model.Point{X: x, Y: y} }

func TestPathConstruction(t *testing.T) {
	tests := []struct {
		name    string
		build   func(p *Path)
		want    []segment
		current model.Point
		open    bool
	}{
		{
			name:  "empty",
			build: func(*Path) {},
		},
		{
			name:    "move and line",
			build:   func(p *Path) { p.MoveTo(1, 2); p.LineTo(3, 4) },
			want:    []segment{{kind: segMove, pts: [3]model.Point{pt(1, 2)}}, {kind: segLine, pts: [3]model.Point{pt(3, 4)}}},
			current: pt(3, 4), open: true,
		},
		{
			name:    "line without current point moves",
			build:   func(p *Path) { p.LineTo(5, 6) },
			want:    []segment{{kind: segMove, pts: [3]model.Point{pt(5, 6)}}},
			current: pt(5, 6), open: true,
		},
		{
			name:  "curve",
			build: func(p *Path) { p.MoveTo(0, 0); p.CurveTo(1, 2, 3, 4, 5, 6) },
			want: []segment{
				{kind: segMove},
				{kind: segCurve, pts: [3]model.Point{pt(1, 2), pt(3, 4), pt(5, 6)}},
			},
			current: pt(5, 6), open: true,
		},
		{
			name:  "v uses current point",
			build: func(p *Path) { p.MoveTo(9, 9); p.CurveToV(3, 4, 5, 6) },
			want: []segment{
				{kind: segMove, pts: [3]model.Point{pt(9, 9)}},
				{kind: segCurve, pts: [3]model.Point{pt(9, 9), pt(3, 4), pt(5, 6)}},
			},
			current: pt(5, 6), open: true,
		},
		{
			name:  "y uses end point",
			build: func(p *Path) { p.MoveTo(0, 0); p.CurveToY(1, 2, 5, 6) },
			want: []segment{
				{kind: segMove},
				{kind: segCurve, pts: [3]model.Point{pt(1, 2), pt(5, 6), pt(5, 6)}},
			},
			current: pt(5, 6), open: true,
		},
		{
			name:  "curves and close need a current point",
			build: func(p *Path) { p.CurveToV(1, 1, 2, 2); p.CurveToY(1, 1, 2, 2); p.ClosePath() },
		},
		{
			name:  "close returns to subpath start",
			build: func(p *Path) { p.MoveTo(1, 1); p.LineTo(4, 1); p.ClosePath() },
			want: []segment{
				{kind: segMove, pts: [3]model.Point{pt(1, 1)}},
				{kind: segLine, pts: [3]model.Point{pt(4, 1)}},
				{kind: segClose},
			},
			current: pt(1, 1), open: true,
		},
		{
			name:  "rectangle",
			build: func(p *Path) { p.Rectangle(10, 20, 30, 40) },
			want: []segment{
				{kind: segMove, pts: [3]model.Point{pt(10, 20)}},
				{kind: segLine, pts: [3]model.Point{pt(40, 20)}},
				{kind: segLine, pts: [3]model.Point{pt(40, 60)}},
				{kind: segLine, pts: [3]model.Point{pt(10, 60)}},
				{kind: segClose},
			},
			current: pt(10, 20), open: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPath()
			tt.build(p)
			if diff := cmp.Diff(tt.want, p.segs, cmp.AllowUnexported(segment{})); diff != "" {
				t.Errorf("segments (-want +got):\n%s", diff)
			}
			cur, open := p.CurrentPoint()
			if cur != tt.current || open != tt.open {
				t.Errorf("CurrentPoint = %v, %v; want %v, %v", cur, open, tt.current, tt.open)
			}
			if p.IsEmpty() != (len(tt.want) == 0) {
				t.Errorf("IsEmpty = %v", p.IsEmpty())
			}
		})
	}
}

func TestPathClear(t *testing.T) {
	p := NewPath()
	p.Rectangle(0, 0, 1, 1)
	p.Clear()
	if !p.IsEmpty() {
		t.Error("Clear left segments")
	}
	if _, open := p.CurrentPoint(); open {
		t.Error("Clear kept the current point")
	}
}

func TestFlattenRectangle(t *testing.T) {
	p := NewPath()
	p.Rectangle(10, 20, 30, 40)

	want := []Subpath{{
		Points: []model.Point{pt(20, 40), pt(80, 40), pt(80, 120), pt(20, 120)},
		Closed: true,
	}}
	if diff := cmp.Diff(want, p.Flatten(model.Scale(2, 2), 0.5), approx); diff != "" {
		t.Errorf("Flatten (-want +got):\n%s", diff)
	}
}

func TestFlattenCurve(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.CurveTo(0, 50, 100, 50, 100, 0)

	sub := p.Flatten(model.Identity(), 0.5)
	if len(sub) != 1 {
		t.Fatalf("got %d subpaths", len(sub))
	}
	pts := sub[0].Points
	// Control polygon length 200 at tolerance 0.5 gives 100 chords.
	if len(pts) != 101 {
		t.Errorf("got %d points, want 101", len(pts))
	}
	if last := pts[len(pts)-1]; math.Abs(last.X-100)+math.Abs(last.Y) > 1e-9 {
		t.Errorf("curve ends at %v", last)
	}
	if mid := pts[50]; math.Abs(mid.X-50)+math.Abs(mid.Y-37.5) > 1e-9 {
		t.Errorf("midpoint = %v, want (50, 37.5)", mid)
	}
}

func TestFlattenChordLimits(t *testing.T) {
	if n := chords(pt(0, 0), pt(0, 0), pt(0, 0), pt(0, 0), 1); n != 1 {
		t.Errorf("degenerate curve: %d chords", n)
	}
	if n := chords(pt(0, 0), pt(1e6, 0), pt(0, 0), pt(1e6, 0), 0.5); n != 256 {
		t.Errorf("huge curve: %d chords", n)
	}
}

func TestFlattenSubpaths(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.MoveTo(20, 20)
	p.LineTo(30, 20)
	p.ClosePath()
	p.LineTo(40, 40)

	sub := p.Flatten(model.Identity(), 0)
	if len(sub) != 2 {
		t.Fatalf("got %d subpaths, want 2", len(sub))
	}
	if sub[0].Closed || !sub[1].Closed {
		t.Errorf("Closed = %v, %v", sub[0].Closed, sub[1].Closed)
	}
	if got := len(sub[1].Points); got != 3 {
		t.Errorf("second subpath has %d points, want 3", got)
	}
}
