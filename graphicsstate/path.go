package graphicsstate

import (
	"math"

	"github.com/tsawler/pdfannotate/model"
)

type segmentKind uint8

const (
	segMove segmentKind = iota
	segLine
	segCurve
	segClose
)

// segment holds its end point last: pts[0] for moves and lines, pts[2]
// for curves after the two control points.
type segment struct {
	kind segmentKind
	pts  [3]model.Point
}

// Path accumulates path construction operators in user space until a
// painting operator consumes it.
type Path struct {
	segs    []segment
	current model.Point
	start   model.Point
	open    bool // a current point exists
}

func NewPath() *Path {
	return &Path{}
}

// CurrentPoint returns the pen position, if any.
func (p *Path) CurrentPoint() (model.Point, bool) {
	return p.current, p.open
}

// MoveTo begins a subpath (m).
func (p *Path) MoveTo(x, y float64) {
	pt := model.Point{X: x, Y: y}
	p.segs = append(p.segs, segment{kind: segMove, pts: [3]model.Point{pt}})
	p.current, p.start, p.open = pt, pt, true
}

// LineTo appends a straight segment (l). Without a current point it acts
// as MoveTo.
func (p *Path) LineTo(x, y float64) {
	if !p.open {
		p.MoveTo(x, y)
		return
	}
	pt := model.Point{X: x, Y: y}
	p.segs = append(p.segs, segment{kind: segLine, pts: [3]model.Point{pt}})
	p.current = pt
}

// CurveTo appends a cubic Bézier segment (c).
func (p *Path) CurveTo(x1, y1, x2, y2, x3, y3 float64) {
	if !p.open {
		p.MoveTo(x1, y1)
	}
	end := model.Point{X: x3, Y: y3}
	p.segs = append(p.segs, segment{kind: segCurve, pts: [3]model.Point{{X: x1, Y: y1}, {X: x2, Y: y2}, end}})
	p.current = end
}

// CurveToV uses the current point as the first control point (v).
func (p *Path) CurveToV(x2, y2, x3, y3 float64) {
	if p.open {
		p.CurveTo(p.current.X, p.current.Y, x2, y2, x3, y3)
	}
}

// CurveToY uses the end point as the second control point (y).
func (p *Path) CurveToY(x1, y1, x3, y3 float64) {
	if p.open {
		p.CurveTo(x1, y1, x3, y3, x3, y3)
	}
}

// ClosePath closes the current subpath (h).
func (p *Path) ClosePath() {
	if !p.open {
		return
	}
	p.segs = append(p.segs, segment{kind: segClose})
	p.current = p.start
}

// Rectangle appends a closed four-sided subpath (re).
func (p *Path) Rectangle(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.ClosePath()
}

// Clear drops all segments and the current point, keeping capacity.
func (p *Path) Clear() {
	p.segs = p.segs[:0]
	p.open = false
}

func (p *Path) IsEmpty() bool {
	return len(p.segs) == 0
}

// Subpath is a flattened polyline in device space.
type Subpath struct {
	Points []model.Point
	Closed bool
}

// Flatten maps the path through m and replaces curves with chords about
// tolerance device units long. A non-positive tolerance means 0.5.
func (p *Path) Flatten(m model.Matrix, tolerance float64) []Subpath {
	if tolerance <= 0 {
		tolerance = 0.5
	}
	var out []Subpath
	var pen model.Point
	for _, s := range p.segs {
		if s.kind != segMove && len(out) == 0 {
			continue
		}
		switch s.kind {
		case segMove:
			pen = m.Transform(s.pts[0])
			out = append(out, Subpath{Points: []model.Point{pen}})
			continue
		case segClose:
			sp := &out[len(out)-1]
			sp.Closed = true
			pen = sp.Points[0]
			continue
		}
		sp := &out[len(out)-1]
		switch s.kind {
		case segLine:
			pen = m.Transform(s.pts[0])
			sp.Points = append(sp.Points, pen)
		case segCurve:
			c1, c2, end := m.Transform(s.pts[0]), m.Transform(s.pts[1]), m.Transform(s.pts[2])
			n := chords(pen, c1, c2, end, tolerance)
			for i := 1; i <= n; i++ {
				sp.Points = append(sp.Points, bezier(pen, c1, c2, end, float64(i)/float64(n)))
			}
			pen = end
		}
	}
	return out
}

// chords picks a step count from the control polygon length, which
// bounds the curve length.
func chords(p0, p1, p2, p3 model.Point, tolerance float64) int {
	poly := p0.Distance(p1) + p1.Distance(p2) + p2.Distance(p3)
	return min(max(int(math.Ceil(poly/(4*tolerance))), 1), 256)
}

func bezier(p0, p1, p2, p3 model.Point, t float64) model.Point {
	u := 1 - t
	w0, w1, w2, w3 := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return model.Point{
		X: w0*p0.X + w1*p1.X + w2*p2.X + w3*p3.X,
		Y: w0*p0.Y + w1*p1.Y + w2*p2.Y + w3*p3.Y,
	}
}
