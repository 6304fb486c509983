package model

import "math"

// Viewport maps PDF user space of one page to the pixel space of a render
// at a given scale. The pixel origin is the top-left corner of the page.
type Viewport struct {
	ViewBox  BBox    // Visible page area in user space (CropBox)
	Scale    float64 // Pixels per PDF unit
	Rotation int     // Normalized page rotation: 0, 90, 180 or 270

	Width  float64 // Pixel width, unrounded
	Height float64 // Pixel height, unrounded

	// Transform maps user space coordinates to pixel coordinates.
	Transform Matrix
}

// NewViewport builds the viewport for a page box, scale and rotation.
// Rotation is normalized to a multiple of 90 degrees in [0, 360).
func NewViewport(viewBox BBox, scale float64, rotation int) Viewport {
	rotation = NormalizeRotation(rotation)

	x0, y0 := viewBox.Left(), viewBox.Bottom()
	x1, y1 := viewBox.Right(), viewBox.Top()
	centerX := (x0 + x1) / 2
	centerY := (y0 + y1) / 2

	var a, b, c, d float64
	switch rotation {
	case 90:
		a, b, c, d = 0, 1, 1, 0
	case 180:
		a, b, c, d = -1, 0, 0, 1
	case 270:
		a, b, c, d = 0, -1, -1, 0
	default:
		a, b, c, d = 1, 0, 0, -1
	}

	var offsetX, offsetY, width, height float64
	if a == 0 {
		offsetX = math.Abs(centerY-y0) * scale
		offsetY = math.Abs(centerX-x0) * scale
		width = (y1 - y0) * scale
		height = (x1 - x0) * scale
	} else {
		offsetX = math.Abs(centerX-x0) * scale
		offsetY = math.Abs(centerY-y0) * scale
		width = (x1 - x0) * scale
		height = (y1 - y0) * scale
	}

	return Viewport{
		ViewBox:  viewBox,
		Scale:    scale,
		Rotation: rotation,
		Width:    width,
		Height:   height,
		Transform: Matrix{
			a * scale,
			b * scale,
			c * scale,
			d * scale,
			offsetX - a*scale*centerX - c*scale*centerY,
			offsetY - b*scale*centerX - d*scale*centerY,
		},
	}
}

// NormalizeRotation folds any multiple of 90 degrees into [0, 360).
// Values that are not multiples of 90 are treated as 0.
func NormalizeRotation(rotation int) int {
	rotation %= 360
	if rotation < 0 {
		rotation += 360
	}
	if rotation%90 != 0 {
		return 0
	}
	return rotation
}

// PixelWidth returns the width of a surface holding this viewport.
func (v Viewport) PixelWidth() int {
	return int(math.Floor(v.Width + 1e-9))
}

// PixelHeight returns the height of a surface holding this viewport.
func (v Viewport) PixelHeight() int {
	return int(math.Floor(v.Height + 1e-9))
}

// ConvertToViewportPoint maps a user space point to pixels.
func (v Viewport) ConvertToViewportPoint(p Point) Point {
	return v.Transform.Transform(p)
}

// ConvertToPDFPoint maps a pixel position back to user space.
func (v Viewport) ConvertToPDFPoint(p Point) Point {
	inv, ok := v.Transform.Inverse()
	if !ok {
		return Point{}
	}
	return inv.Transform(p)
}
