package reader

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tsawler/pdfannotate/core"
	"github.com/tsawler/pdfannotate/internal/pdftest"
)

func TestPageImage_ToPNG_Grayscale8Bit(t *testing.T) {
	img := &PageImage{
		Name:             "TestImg",
		Width:            2,
		Height:           2,
		ColorSpace:       "DeviceGray",
		BitsPerComponent: 8,
		Data:             []byte{0, 128, 64, 255},
	}

	pngData, err := img.ToPNG()
	if err != nil {
		t.Fatalf("ToPNG failed: %v", err)
	}

	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	if !bytes.HasPrefix(pngData, pngMagic) {
		t.Errorf("missing PNG signature: % x", pngData[:min(8, len(pngData))])
	}
}

func TestPageImage_Image(t *testing.T) {
	tests := []struct {
		name string
		img  PageImage
		want []color.RGBA
	}{
		{
			name: "bilevel",
			img:  PageImage{Width: 4, Height: 1, ColorSpace: "DeviceGray", BitsPerComponent: 1, Data: []byte{0xA0}},
			want: []color.RGBA{{255, 255, 255, 255}, {0, 0, 0, 255}, {255, 255, 255, 255}, {0, 0, 0, 255}},
		},
		{
			name: "bilevel inverted",
			img:  PageImage{Width: 2, Height: 1, ColorSpace: "DeviceGray", BitsPerComponent: 1, Data: []byte{0x80}, Inverted: true},
			want: []color.RGBA{{0, 0, 0, 255}, {255, 255, 255, 255}},
		},
		{
			name: "4-bit gray",
			img:  PageImage{Width: 2, Height: 1, ColorSpace: "DeviceGray", BitsPerComponent: 4, Data: []byte{0xF0}},
			want: []color.RGBA{{255, 255, 255, 255}, {0, 0, 0, 255}},
		},
		{
			name: "rgb",
			img:  PageImage{Width: 2, Height: 1, ColorSpace: "DeviceRGB", BitsPerComponent: 8, Data: []byte{255, 0, 0, 0, 255, 0}},
			want: []color.RGBA{{255, 0, 0, 255}, {0, 255, 0, 255}},
		},
		{
			name: "cmyk",
			img:  PageImage{Width: 1, Height: 1, ColorSpace: "DeviceCMYK", BitsPerComponent: 8, Data: []byte{0, 255, 255, 0}},
			want: []color.RGBA{{255, 0, 0, 255}},
		},
		{
			name: "indexed rgb",
			img: PageImage{Width: 3, Height: 1, ColorSpace: "Indexed", Base: "DeviceRGB", BitsPerComponent: 8,
				Data: []byte{1, 0, 1}, Palette: []byte{0, 0, 255, 255, 255, 0}},
			want: []color.RGBA{{255, 255, 0, 255}, {0, 0, 255, 255}, {255, 255, 0, 255}},
		},
		{
			name: "indexed 2-bit keeps indices",
			img: PageImage{Width: 2, Height: 1, ColorSpace: "Indexed", Base: "DeviceGray", BitsPerComponent: 2,
				Data: []byte{0x40}, Palette: []byte{10, 20, 30, 40}},
			want: []color.RGBA{{20, 20, 20, 255}, {10, 10, 10, 255}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goImg, err := tt.img.Image()
			if err != nil {
				t.Fatalf("Image() error = %v", err)
			}
			var got []color.RGBA
			for x := 0; x < tt.img.Width; x++ {
				got = append(got, color.RGBAModel.Convert(goImg.At(x, 0)).(color.RGBA))
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("pixels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPageImage_ImageErrors(t *testing.T) {
	tests := []struct {
		name string
		img  PageImage
	}{
		{"insufficient gray data", PageImage{Width: 10, Height: 10, ColorSpace: "DeviceGray", BitsPerComponent: 8, Data: []byte{1, 2}}},
		{"insufficient rgb data", PageImage{Width: 2, Height: 2, ColorSpace: "DeviceRGB", BitsPerComponent: 8, Data: make([]byte, 6)}},
		{"insufficient cmyk data", PageImage{Width: 2, Height: 2, ColorSpace: "DeviceCMYK", BitsPerComponent: 8, Data: make([]byte, 8)}},
		{"unsupported bpc", PageImage{Width: 1, Height: 1, ColorSpace: "DeviceGray", BitsPerComponent: 3, Data: []byte{0}}},
		{"palette overrun", PageImage{Width: 1, Height: 1, ColorSpace: "Indexed", Base: "DeviceRGB", BitsPerComponent: 8, Data: []byte{5}, Palette: []byte{0, 0, 0}}},
		{"jpeg 2000", PageImage{Width: 1, Height: 1, Filter: "JPXDecode"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.img.Image(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPageImage_JPEG(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatalf("jpeg encode: %v", err)
	}

	img := PageImage{Width: 8, Height: 8, Filter: "DCTDecode", Data: buf.Bytes()}
	goImg, err := img.Image()
	if err != nil {
		t.Fatalf("Image() error = %v", err)
	}
	if goImg.Bounds().Dx() != 8 || goImg.Bounds().Dy() != 8 {
		t.Errorf("bounds = %v, want 8x8", goImg.Bounds())
	}
}

func TestExtractPageImages(t *testing.T) {
	b := pdftest.New()
	catalog := b.Reserve()
	tree := b.Reserve()
	icc := b.AddStream("/N 3", []byte("profile"))
	im0 := b.AddStream(`/Type /XObject /Subtype /Image /Width 1 /Height 1 /BitsPerComponent 8 /ColorSpace /DeviceGray`, []byte{0x80})
	im1 := b.AddStream(
		`/Type /XObject /Subtype /Image /Width 1 /Height 1 /BitsPerComponent 8 /ColorSpace [/ICCBased `+itoa(icc)+` 0 R]`,
		[]byte{1, 2, 3})
	form := b.AddStream(`/Type /XObject /Subtype /Form /BBox [0 0 1 1]`, []byte(""))
	content := b.AddStream("", []byte("q 10 0 0 10 0 0 cm /Im0 Do Q"))
	page := b.Add(`<< /Type /Page /Parent ` + itoa(tree) + ` 0 R /MediaBox [0 0 100 100] /Contents ` + itoa(content) +
		` 0 R /Resources << /XObject << /Im0 ` + itoa(im0) + ` 0 R /Im1 ` + itoa(im1) + ` 0 R /Fm0 ` + itoa(form) + ` 0 R >> >> >>`)
	b.Set(tree, `<< /Type /Pages /Kids [`+itoa(page)+` 0 R] /Count 1 >>`)
	b.Set(catalog, `<< /Type /Catalog /Pages `+itoa(tree)+` 0 R >>`)

	r, err := NewReaderFromBytes(b.Bytes("/Root " + itoa(catalog) + " 0 R"))
	if err != nil {
		t.Fatalf("NewReaderFromBytes: %v", err)
	}
	p, err := r.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}

	images, err := r.ExtractPageImages(p)
	if err != nil {
		t.Fatalf("ExtractPageImages: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	if images[0].Name != "Im0" || images[0].ColorSpace != "DeviceGray" {
		t.Errorf("first image = %s %s", images[0].Name, images[0].ColorSpace)
	}
	if images[1].Name != "Im1" || images[1].ColorSpace != "DeviceRGB" {
		t.Errorf("ICC image with N=3 should be RGB, got %s %s", images[1].Name, images[1].ColorSpace)
	}

	obj, err := r.GetObject(im0)
	if err != nil {
		t.Fatalf("GetObject: %v", err)
	}
	decoded, err := r.DecodeImage(obj.(*core.Stream))
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if g := color.GrayModel.Convert(decoded.At(0, 0)).(color.Gray); g.Y != 0x80 {
		t.Errorf("pixel = %d, want 128", g.Y)
	}
}
