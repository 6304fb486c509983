package render

import (
	"math"

	"github.com/tsawler/pdfannotate/model"
)

type opKind uint8

const (
	opMove opKind = iota
	opLine
	opQuad
	opCube
	opClose
)

type shapeOp struct {
	kind opKind
	pts  [3]model.Point
}

// shape records an outline in device space and tracks its bounds, so the
// rasterizer only has to cover the pixels the outline can touch.
type shape struct {
	ops  []shapeOp
	open bool

	minX, minY, maxX, maxY float64
}

func (s *shape) reset() {
	s.ops = s.ops[:0]
	s.open = false
	s.minX, s.minY = math.Inf(1), math.Inf(1)
	s.maxX, s.maxY = math.Inf(-1), math.Inf(-1)
}

func (s *shape) grow(pts ...model.Point) {
	for _, p := range pts {
		s.minX = math.Min(s.minX, p.X)
		s.minY = math.Min(s.minY, p.Y)
		s.maxX = math.Max(s.maxX, p.X)
		s.maxY = math.Max(s.maxY, p.Y)
	}
}

func (s *shape) moveTo(p model.Point) {
	s.close()
	s.ops = append(s.ops, shapeOp{kind: opMove, pts: [3]model.Point{p}})
	s.open = true
	s.grow(p)
}

func (s *shape) lineTo(p model.Point) {
	if !s.open {
		return
	}
	s.ops = append(s.ops, shapeOp{kind: opLine, pts: [3]model.Point{p}})
	s.grow(p)
}

func (s *shape) quadTo(p1, p2 model.Point) {
	if !s.open {
		return
	}
	s.ops = append(s.ops, shapeOp{kind: opQuad, pts: [3]model.Point{p1, p2}})
	s.grow(p1, p2)
}

func (s *shape) cubeTo(p1, p2, p3 model.Point) {
	if !s.open {
		return
	}
	s.ops = append(s.ops, shapeOp{kind: opCube, pts: [3]model.Point{p1, p2, p3}})
	s.grow(p1, p2, p3)
}

// close ends the current subpath. The rasterizer accumulates signed
// area, so every subpath must be closed before the next one starts.
func (s *shape) close() {
	if s.open {
		s.ops = append(s.ops, shapeOp{kind: opClose})
		s.open = false
	}
}

func (s *shape) empty() bool {
	return len(s.ops) == 0
}

// polygon adds a closed polygon
func (s *shape) polygon(pts ...model.Point) {
	if len(pts) < 3 {
		return
	}
	s.moveTo(pts[0])
	for _, p := range pts[1:] {
		s.lineTo(p)
	}
	s.close()
}

// strokeOutline adds the outline of a polyline of half width hw. Every
// segment becomes a quad and interior vertices get a disc, all wound the
// same way so overlaps never cancel.
func (s *shape) strokeOutline(pts []model.Point, closed bool, hw float64) {
	if len(pts) == 1 || (len(pts) == 2 && pts[0] == pts[1]) {
		s.dot(pts[0], hw)
		return
	}

	n := len(pts)
	segs := n - 1
	if closed {
		segs = n
	}
	for i := 0; i < segs; i++ {
		a, b := pts[i], pts[(i+1)%n]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*hw, dx/l*hw
		s.polygon(
			model.Point{X: a.X + nx, Y: a.Y + ny},
			model.Point{X: b.X + nx, Y: b.Y + ny},
			model.Point{X: b.X - nx, Y: b.Y - ny},
			model.Point{X: a.X - nx, Y: a.Y - ny},
		)
	}

	if hw < 1 {
		return
	}
	first, last := 1, n-1
	if closed {
		first, last = 0, n
	}
	for i := first; i < last; i++ {
		s.dot(pts[i], hw)
	}
}

// dot adds an octagon around c, wound like the stroke quads
func (s *shape) dot(c model.Point, r float64) {
	var pts [8]model.Point
	for i := range pts {
		t := -float64(i) * math.Pi / 4
		pts[i] = model.Point{X: c.X + r*math.Cos(t), Y: c.Y + r*math.Sin(t)}
	}
	s.polygon(pts[:]...)
}
