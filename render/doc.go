// Package render rasterizes PDF pages into RGBA surfaces.
//
// The renderer walks the page content once. Paths are filled and
// stroked with golang.org/x/image/vector using the nonzero winding
// rule, text runs are drawn with the Go font family (glyph outlines from
// golang.org/x/image/font/sfnt) placed at the run transform and
// stretched to the width the PDF declares, and image XObjects are
// decoded and mapped through their CTM with golang.org/x/image/draw.
// Text in render mode 3 is invisible and not painted.
//
// Embedded font programs are not used. The surface is meant as a
// backdrop for the selectable text layer, not as a faithful proof.
//
// Basic usage:
//
//	r := render.New()
//	res, err := r.Render(ctx, doc, 1, 1.5)
//	if err != nil {
//	    return err
//	}
//	err = render.EncodePNG(w, res.Image)
//
// A Renderer holds no per-render state and may be shared between
// goroutines; every call returns a fresh surface.
package render
