package graphicsstate

import (
	"github.com/tsawler/pdfannotate/contentstream"
	"github.com/tsawler/pdfannotate/core"
	"github.com/tsawler/pdfannotate/model"
)

// PaintMode describes how a finished path is painted
type PaintMode int

const (
	// PaintNone ends the path without painting (n operator)
	PaintNone PaintMode = iota
	// PaintStroke strokes the path
	PaintStroke
	// PaintFill fills the path using the nonzero winding rule
	PaintFill
	// PaintFillEvenOdd fills the path using the even-odd rule
	PaintFillEvenOdd
	// PaintFillStroke fills (nonzero) then strokes
	PaintFillStroke
	// PaintFillStrokeEvenOdd fills (even-odd) then strokes
	PaintFillStrokeEvenOdd
)

// Fills reports whether the mode paints the path interior
func (m PaintMode) Fills() bool {
	return m == PaintFill || m == PaintFillEvenOdd || m == PaintFillStroke || m == PaintFillStrokeEvenOdd
}

// Strokes reports whether the mode paints the path outline
func (m PaintMode) Strokes() bool {
	return m == PaintStroke || m == PaintFillStroke || m == PaintFillStrokeEvenOdd
}

// PaintFunc receives every painted path together with the graphics state in
// effect when the painting operator ran. The path is reused after the call
// returns.
type PaintFunc func(path *Path, mode PaintMode, gs *GraphicsState)

// Interpreter applies the graphics state, color and path operators of a
// content stream. Text operators are left to the caller.
type Interpreter struct {
	gs   *GraphicsState
	path *Path

	// OnPaint, when set, is called for every path painting operator
	OnPaint PaintFunc
}

// NewInterpreter creates an interpreter with a fresh graphics state
func NewInterpreter() *Interpreter {
	return &Interpreter{
		gs:   NewGraphicsState(),
		path: NewPath(),
	}
}

// State returns the live graphics state
func (in *Interpreter) State() *GraphicsState {
	return in.gs
}

// Run processes a sequence of operations
func (in *Interpreter) Run(operations []contentstream.Operation) error {
	for _, op := range operations {
		if _, err := in.Process(op); err != nil {
			return err
		}
	}
	return nil
}

// Process applies one operation. It reports whether the operator belongs to
// the graphics state, color or path groups.
func (in *Interpreter) Process(op contentstream.Operation) (bool, error) {
	switch op.Operator {
	case "q":
		in.gs.Save()
	case "Q":
		return true, in.gs.Restore()
	case "cm":
		if len(op.Operands) == 6 {
			in.gs.Transform(OperandsToMatrix(op.Operands))
		}
	case "w":
		if len(op.Operands) == 1 {
			if w, ok := ToFloat(op.Operands[0]); ok {
				in.gs.SetLineWidth(w)
			}
		}

	case "RG", "G", "K", "SC", "SCN":
		if r, g, b, ok := colorOperands(op.Operands); ok {
			in.gs.SetStrokeColorRGB(r, g, b)
		}
	case "rg", "g", "k", "sc", "scn":
		if r, g, b, ok := colorOperands(op.Operands); ok {
			in.gs.SetFillColorRGB(r, g, b)
		}

	case "m":
		if v, ok := floats(op.Operands, 2); ok {
			in.path.MoveTo(v[0], v[1])
		}
	case "l":
		if v, ok := floats(op.Operands, 2); ok {
			in.path.LineTo(v[0], v[1])
		}
	case "c":
		if v, ok := floats(op.Operands, 6); ok {
			in.path.CurveTo(v[0], v[1], v[2], v[3], v[4], v[5])
		}
	case "v":
		if v, ok := floats(op.Operands, 4); ok {
			in.path.CurveToV(v[0], v[1], v[2], v[3])
		}
	case "y":
		if v, ok := floats(op.Operands, 4); ok {
			in.path.CurveToY(v[0], v[1], v[2], v[3])
		}
	case "h":
		in.path.ClosePath()
	case "re":
		if v, ok := floats(op.Operands, 4); ok {
			in.path.Rectangle(v[0], v[1], v[2], v[3])
		}

	case "S":
		in.paint(PaintStroke)
	case "s":
		in.path.ClosePath()
		in.paint(PaintStroke)
	case "f", "F":
		in.paint(PaintFill)
	case "f*":
		in.paint(PaintFillEvenOdd)
	case "B":
		in.paint(PaintFillStroke)
	case "B*":
		in.paint(PaintFillStrokeEvenOdd)
	case "b":
		in.path.ClosePath()
		in.paint(PaintFillStroke)
	case "b*":
		in.path.ClosePath()
		in.paint(PaintFillStrokeEvenOdd)
	case "n":
		in.paint(PaintNone)

	default:
		return false, nil
	}

	return true, nil
}

func (in *Interpreter) paint(mode PaintMode) {
	if in.OnPaint != nil && mode != PaintNone && !in.path.IsEmpty() {
		in.OnPaint(in.path, mode, in.gs)
	}
	in.path.Clear()
}

// colorOperands converts 1 (gray), 3 (RGB) or 4 (CMYK) numeric operands to
// RGB. Pattern names in scn operands are ignored.
func colorOperands(operands []core.Object) (r, g, b float64, ok bool) {
	var nums []float64
	for _, o := range operands {
		if f, isNum := ToFloat(o); isNum {
			nums = append(nums, f)
		}
	}

	switch len(nums) {
	case 1:
		return nums[0], nums[0], nums[0], true
	case 3:
		return nums[0], nums[1], nums[2], true
	case 4:
		r, g, b = cmykToRGB(nums[0], nums[1], nums[2], nums[3])
		return r, g, b, true
	}
	return 0, 0, 0, false
}

func floats(operands []core.Object, n int) ([]float64, bool) {
	if len(operands) != n {
		return nil, false
	}
	vals := make([]float64, n)
	for i, o := range operands {
		f, ok := ToFloat(o)
		if !ok {
			return nil, false
		}
		vals[i] = f
	}
	return vals, true
}

// ToFloat converts a numeric PDF object to float64
func ToFloat(obj core.Object) (float64, bool) {
	switch v := obj.(type) {
	case core.Int:
		return float64(v), true
	case core.Real:
		return float64(v), true
	default:
		return 0, false
	}
}

// OperandsToMatrix converts six numeric operands to a matrix, falling back
// to identity when the operand count is wrong.
func OperandsToMatrix(operands []core.Object) model.Matrix {
	if len(operands) != 6 {
		return model.Identity()
	}

	var m model.Matrix
	for i, op := range operands {
		m[i], _ = ToFloat(op)
	}

	return m
}
