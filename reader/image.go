package reader

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sort"

	"github.com/tsawler/pdfannotate/core"
	"github.com/tsawler/pdfannotate/pages"
)

// PageImage is an image XObject with its samples decoded.
type PageImage struct {
	Name             string // XObject name (e.g., "Im1")
	Width            int
	Height           int
	ColorSpace       string // DeviceGray, DeviceRGB, DeviceCMYK or Indexed
	BitsPerComponent int
	Data             []byte // Decoded samples, or the encoded file for DCT
	Filter           string // Last filter of the chain, e.g. "DCTDecode"

	// Base and Palette describe an Indexed color space: Palette holds one
	// entry of Base components per index.
	Base    string
	Palette []byte

	// Inverted is set by a /Decode [1 0] array on one-component images.
	Inverted bool
}

// ExtractPageImages returns the image XObjects named in a page's
// resources. Images that cannot be decoded are skipped.
func (r *Reader) ExtractPageImages(page *pages.Page) ([]PageImage, error) {
	resources, err := page.Resources()
	if err != nil {
		return nil, nil
	}

	xobjectObj := resources.Get("XObject")
	if xobjectObj == nil {
		return nil, nil
	}

	resolved, err := r.Resolve(xobjectObj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve XObject dictionary: %w", err)
	}
	xobjects, ok := resolved.(core.Dict)
	if !ok {
		return nil, nil
	}

	names := xobjects.Keys()
	sort.Strings(names)

	var images []PageImage
	for _, name := range names {
		obj, err := r.Resolve(xobjects[name])
		if err != nil {
			continue
		}
		stream, ok := obj.(*core.Stream)
		if !ok || !isImage(stream) {
			continue
		}
		img, err := r.extractImage(name, stream)
		if err != nil {
			continue
		}
		images = append(images, *img)
	}

	return images, nil
}

// DecodeImage converts an image XObject stream into an image.Image.
func (r *Reader) DecodeImage(stream *core.Stream) (image.Image, error) {
	if !isImage(stream) {
		return nil, fmt.Errorf("stream is not an image XObject")
	}
	img, err := r.extractImage("", stream)
	if err != nil {
		return nil, err
	}
	return img.Image()
}

func isImage(stream *core.Stream) bool {
	subtype, _ := stream.Dict.GetName("Subtype")
	return subtype == "Image"
}

// extractImage reads the image dictionary and decodes the samples
func (r *Reader) extractImage(name string, stream *core.Stream) (*PageImage, error) {
	dict := stream.Dict

	width, wok := dict.GetInt("Width")
	height, hok := dict.GetInt("Height")
	if !wok || !hok {
		return nil, fmt.Errorf("image missing Width or Height")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}

	if mask, ok := dict.GetBool("ImageMask"); ok && bool(mask) {
		return nil, fmt.Errorf("stencil masks are not supported")
	}

	img := &PageImage{
		Name:             name,
		Width:            int(width),
		Height:           int(height),
		ColorSpace:       "DeviceGray",
		BitsPerComponent: 8,
	}
	if bpc, ok := dict.GetInt("BitsPerComponent"); ok {
		img.BitsPerComponent = int(bpc)
	}
	if cs := dict.Get("ColorSpace"); cs != nil {
		if err := r.applyColorSpace(img, cs); err != nil {
			return nil, err
		}
	}

	switch f := dict.Get("Filter").(type) {
	case core.Name:
		img.Filter = string(f)
	case core.Array:
		if len(f) > 0 {
			if last, ok := f[len(f)-1].(core.Name); ok {
				img.Filter = string(last)
			}
		}
	}

	if dec, ok := dict.GetArray("Decode"); ok && len(dec) == 2 {
		lo, _ := dec.GetInt(0)
		hi, _ := dec.GetInt(1)
		img.Inverted = lo == 1 && hi == 0
	}

	data, err := stream.Decoded()
	if err != nil {
		return nil, fmt.Errorf("failed to decode image stream: %w", err)
	}
	img.Data = data

	return img, nil
}

// applyColorSpace resolves a color space object into the image fields
func (r *Reader) applyColorSpace(img *PageImage, obj core.Object) error {
	resolved, err := r.Resolve(obj)
	if err != nil {
		return fmt.Errorf("failed to resolve color space: %w", err)
	}

	switch v := resolved.(type) {
	case core.Name:
		img.ColorSpace = deviceSpace(string(v), 0)
		return nil
	case core.Array:
		if len(v) == 0 {
			return nil
		}
		family, _ := v.GetName(0)
		switch family {
		case "ICCBased":
			n := 0
			if len(v) > 1 {
				if s, err := r.Resolve(v[1]); err == nil {
					if stream, ok := s.(*core.Stream); ok {
						c, _ := stream.Dict.GetInt("N")
						n = int(c)
					}
				}
			}
			img.ColorSpace = deviceSpace("ICCBased", n)
		case "Indexed":
			if len(v) < 4 {
				return fmt.Errorf("indexed color space needs 4 entries, got %d", len(v))
			}
			base := &PageImage{}
			if err := r.applyColorSpace(base, v[1]); err != nil {
				return err
			}
			lookup, err := r.Resolve(v[3])
			if err != nil {
				return fmt.Errorf("failed to resolve palette: %w", err)
			}
			switch l := lookup.(type) {
			case core.String:
				img.Palette = []byte(l)
			case *core.Stream:
				if img.Palette, err = l.Decoded(); err != nil {
					return fmt.Errorf("failed to decode palette: %w", err)
				}
			default:
				return fmt.Errorf("invalid palette type %T", lookup)
			}
			img.ColorSpace = "Indexed"
			img.Base = base.ColorSpace
		case "CalRGB", "CalGray", "Lab", "DeviceN", "Separation":
			n := 0
			if family == "DeviceN" && len(v) > 1 {
				if names, ok := v[1].(core.Array); ok {
					n = len(names)
				}
			}
			img.ColorSpace = deviceSpace(string(family), n)
		default:
			img.ColorSpace = deviceSpace(string(family), 0)
		}
	}
	return nil
}

// deviceSpace maps a color space family and component count onto the
// device space used to interpret samples
func deviceSpace(family string, n int) string {
	switch family {
	case "DeviceRGB", "RGB", "CalRGB", "Lab":
		return "DeviceRGB"
	case "DeviceCMYK", "CMYK":
		return "DeviceCMYK"
	}
	switch n {
	case 3:
		return "DeviceRGB"
	case 4:
		return "DeviceCMYK"
	}
	return "DeviceGray"
}

// components returns the number of samples per pixel
func (img *PageImage) components() int {
	switch img.ColorSpace {
	case "DeviceRGB":
		return 3
	case "DeviceCMYK":
		return 4
	}
	return 1
}

// Image converts the samples to an image.Image
func (img *PageImage) Image() (image.Image, error) {
	switch img.Filter {
	case "DCTDecode", "DCT":
		decoded, err := jpeg.Decode(bytes.NewReader(img.Data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode JPEG image: %w", err)
		}
		return decoded, nil
	case "JPXDecode":
		return nil, fmt.Errorf("JPEG 2000 images are not supported")
	}

	samples, err := img.unpack()
	if err != nil {
		return nil, err
	}

	rect := image.Rect(0, 0, img.Width, img.Height)
	switch img.ColorSpace {
	case "DeviceRGB":
		out := image.NewRGBA(rect)
		for i := 0; i < img.Width*img.Height; i++ {
			copy(out.Pix[i*4:], samples[i*3:i*3+3])
			out.Pix[i*4+3] = 0xff
		}
		return out, nil

	case "DeviceCMYK":
		out := image.NewRGBA(rect)
		for i := 0; i < img.Width*img.Height; i++ {
			s := samples[i*4 : i*4+4]
			r, g, b := color.CMYKToRGB(s[0], s[1], s[2], s[3])
			out.Pix[i*4], out.Pix[i*4+1], out.Pix[i*4+2], out.Pix[i*4+3] = r, g, b, 0xff
		}
		return out, nil

	case "Indexed":
		return img.indexed(samples)

	default:
		out := image.NewGray(rect)
		copy(out.Pix, samples)
		if img.Inverted {
			for i, v := range out.Pix {
				out.Pix[i] = 0xff - v
			}
		}
		return out, nil
	}
}

// indexed expands palette indices through the base color space
func (img *PageImage) indexed(indices []byte) (image.Image, error) {
	base := &PageImage{ColorSpace: img.Base}
	n := base.components()
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))

	for i, idx := range indices {
		off := int(idx) * n
		if off+n > len(img.Palette) {
			return nil, fmt.Errorf("palette index %d out of range", idx)
		}
		entry := img.Palette[off : off+n]
		var r, g, b uint8
		switch n {
		case 3:
			r, g, b = entry[0], entry[1], entry[2]
		case 4:
			r, g, b = color.CMYKToRGB(entry[0], entry[1], entry[2], entry[3])
		default:
			r, g, b = entry[0], entry[0], entry[0]
		}
		out.Pix[i*4], out.Pix[i*4+1], out.Pix[i*4+2], out.Pix[i*4+3] = r, g, b, 0xff
	}
	return out, nil
}

// unpack expands packed samples to one byte per component. Rows start on
// byte boundaries. Sub-byte samples are scaled to 0-255 except for
// palette indices, which are kept as is.
func (img *PageImage) unpack() ([]byte, error) {
	bpc := img.BitsPerComponent
	switch bpc {
	case 1, 2, 4, 8, 16:
	default:
		return nil, fmt.Errorf("unsupported bits per component: %d", bpc)
	}

	perRow := img.Width * img.components()
	rowBytes := (perRow*bpc + 7) / 8
	if need := rowBytes * img.Height; len(img.Data) < need {
		return nil, fmt.Errorf("insufficient data: got %d, expected %d", len(img.Data), need)
	}

	if bpc == 8 {
		return img.Data[:perRow*img.Height], nil
	}

	out := make([]byte, perRow*img.Height)
	scale := 255 / (1<<bpc - 1)
	if img.ColorSpace == "Indexed" {
		scale = 1
	}
	for y := 0; y < img.Height; y++ {
		row := img.Data[y*rowBytes : (y+1)*rowBytes]
		for x := 0; x < perRow; x++ {
			var v int
			if bpc == 16 {
				// Keep the high byte
				v = int(row[x*2])
			} else {
				bit := x * bpc
				v = int(row[bit/8]>>(8-bpc-bit%8)) & (1<<bpc - 1)
				v *= scale
			}
			out[y*perRow+x] = byte(v)
		}
	}
	return out, nil
}

// ToPNG encodes the image as PNG, the input format of the OCR engine.
func (img *PageImage) ToPNG() ([]byte, error) {
	goImg, err := img.Image()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, goImg); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
