// Package model provides the geometry shared by the rendering and text
// layer packages.
//
//   - [Point] - a 2D point
//   - [BBox] - an axis-aligned rectangle
//   - [Matrix] - 2D affine transformation matrix in PDF order [a b c d e f]
//   - [Viewport] - the mapping from a page's user space to the pixels of a render
//
// # Matrices
//
// m.Multiply(n) applies m first, then n, which is the order PDF uses when a
// text matrix is concatenated with the CTM:
//
//	trm := textMatrix.Multiply(ctm)
//
// # Viewports
//
// [NewViewport] builds the usual screen transform: the origin is the
// top-left corner of the visible area, y grows downward and the page
// rotation is applied clockwise. [Viewport.ConvertToPDFPoint] inverts it.
package model
