package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
)

// EncodePNG writes a surface as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("%w: encode PNG: %w", ErrRender, err)
	}
	return nil
}

// PNG returns the rendered surface encoded as PNG.
func (r *Result) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, r.Image); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
