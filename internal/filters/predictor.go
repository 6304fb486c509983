package filters

import "fmt"

// unpredict reverses the /Predictor applied before Flate or LZW
// compression: 1 is none, 2 is TIFF horizontal differencing and 10 to 15
// are PNG row filters, where each row carries its own filter byte.
func unpredict(data []byte, params Params) ([]byte, error) {
	predictor := getIntParam(params, "Predictor", 1)
	if predictor == 1 {
		return data, nil
	}

	colors := getIntParam(params, "Colors", 1)
	bpc := getIntParam(params, "BitsPerComponent", 8)
	columns := getIntParam(params, "Columns", 1)
	if colors < 1 || columns < 1 || bpc < 1 {
		return nil, fmt.Errorf("predictor: invalid Colors=%d Columns=%d BitsPerComponent=%d", colors, columns, bpc)
	}
	stride := (columns*colors*bpc + 7) / 8
	bpp := (colors*bpc + 7) / 8

	switch {
	case predictor == 2:
		if bpc != 8 {
			return nil, fmt.Errorf("predictor 2: %d bits per component not supported", bpc)
		}
		return tiffUnpredict(data, stride, bpp)
	case predictor >= 10 && predictor <= 15:
		return pngUnpredict(data, stride, bpp)
	}
	return nil, fmt.Errorf("unsupported predictor %d", predictor)
}

func tiffUnpredict(data []byte, stride, bpp int) ([]byte, error) {
	if len(data)%stride != 0 {
		return nil, fmt.Errorf("predictor 2: %d bytes is not a whole number of %d-byte rows", len(data), stride)
	}
	out := append([]byte(nil), data...)
	for row := 0; row < len(out); row += stride {
		for i := row + bpp; i < row+stride; i++ {
			out[i] += out[i-bpp]
		}
	}
	return out, nil
}

// pngUnpredict undoes PNG filtering. A trailing partial row is dropped.
func pngUnpredict(data []byte, stride, bpp int) ([]byte, error) {
	rows := len(data) / (stride + 1)
	out := make([]byte, rows*stride)
	prev := make([]byte, stride)

	for r := 0; r < rows; r++ {
		in := data[r*(stride+1):]
		filter, src := in[0], in[1:stride+1]
		cur := out[r*stride : (r+1)*stride]

		for i := range cur {
			var left, upLeft byte
			if i >= bpp {
				left, upLeft = cur[i-bpp], prev[i-bpp]
			}
			up := prev[i]

			switch filter {
			case 0:
				cur[i] = src[i]
			case 1:
				cur[i] = src[i] + left
			case 2:
				cur[i] = src[i] + up
			case 3:
				cur[i] = src[i] + byte((int(left)+int(up))/2)
			case 4:
				cur[i] = src[i] + paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("png predictor: row %d has filter type %d", r, filter)
			}
		}
		prev = cur
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
