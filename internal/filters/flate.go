package filters

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Params holds a stream's DecodeParms converted to Go values: int,
// float64, bool or string.
type Params map[string]interface{}

// FlateDecode inflates zlib data and undoes any /Predictor.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}
	defer zr.Close()

	out, err := readTruncated(zr)
	if err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}
	return unpredict(out, params)
}

// readTruncated reads r to the end. Streams cut off before their
// checksum are common, so a short read that produced data is accepted.
func readTruncated(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	_, err := io.Copy(&buf, r)
	if err != nil && !(errors.Is(err, io.ErrUnexpectedEOF) && buf.Len() > 0) {
		return nil, err
	}
	return buf.Bytes(), nil
}

func getIntParam(params Params, key string, def int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}
