// Package graphicsstate provides PDF graphics state management.
//
// GraphicsState tracks the current transformation matrix, line width,
// fill and stroke colors, and the text state (font, spacing, scaling,
// leading, rise, and the text and text line matrices). Matrices are
// concatenated in PDF order: cm pre-multiplies the CTM, Td pre-multiplies
// the text line matrix, and glyph advances move the text matrix along its
// own baseline.
//
//	gs := graphicsstate.NewGraphicsState()
//	gs.Save()                     // q
//	gs.Transform(matrix)          // cm
//	gs.SetFont("F1", 12)          // Tf
//	trm := gs.TextRenderingMatrix()
//	gs.Restore()                  // Q
//
// # Interpreter
//
// Interpreter applies the graphics state, color and path operators of a
// content stream and reports each painted path through OnPaint. Text
// operators are not handled; callers process them against State().
package graphicsstate
