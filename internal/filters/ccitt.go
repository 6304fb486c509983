package filters

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/image/ccitt"
)

// CCITTFaxDecode decodes Group 3 (one-dimensional) and Group 4 fax data,
// the usual encoding of scanned bi-level page images.
//
// Recognized parameters: K (<0 Group 4, 0 Group 3), Columns (default 1728),
// Rows (0 means detect from the data) and BlackIs1.
func CCITTFaxDecode(data []byte, params Params) ([]byte, error) {
	k := getIntParam(params, "K", 0)
	if k > 0 {
		return nil, fmt.Errorf("mixed 2-D Group 3 encoding (K=%d) not supported", k)
	}

	sf := ccitt.Group3
	if k < 0 {
		sf = ccitt.Group4
	}

	columns := getIntParam(params, "Columns", 1728)
	rows := getIntParam(params, "Rows", 0)
	if rows <= 0 {
		rows = ccitt.AutoDetectHeight
	}

	r := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, sf, columns, rows,
		&ccitt.Options{Invert: getBoolParam(params, "BlackIs1", false)})
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ccitt decode failed: %w", err)
	}
	return out, nil
}

// RunLengthDecode expands PackBits-style run-length data. A length byte n
// in [0, 127] copies the next n+1 bytes, n in [129, 255] repeats the next
// byte 257-n times and 128 ends the data.
func RunLengthDecode(data []byte) ([]byte, error) {
	var out bytes.Buffer
	for i := 0; i < len(data); {
		n := int(data[i])
		i++
		switch {
		case n == 128:
			return out.Bytes(), nil
		case n < 128:
			if i+n+1 > len(data) {
				return nil, fmt.Errorf("run length literal overruns data at offset %d", i-1)
			}
			out.Write(data[i : i+n+1])
			i += n + 1
		default:
			if i >= len(data) {
				return nil, fmt.Errorf("run length repeat missing byte at offset %d", i-1)
			}
			out.Write(bytes.Repeat(data[i:i+1], 257-n))
			i++
		}
	}
	return out.Bytes(), nil
}

func getBoolParam(params Params, key string, defaultValue bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}
	return defaultValue
}
