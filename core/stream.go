package core

import (
	"fmt"

	"github.com/tsawler/pdfannotate/internal/filters"
)

// Decode applies the stream's /Filter chain to its raw data. Image
// codecs (DCTDecode, JPXDecode) are passed through for the image layer to
// handle.
func (s *Stream) Decode() ([]byte, error) {
	names, err := filterNames(s.Dict.Get("Filter"))
	if err != nil {
		return nil, err
	}
	parms := s.Dict.Get("DecodeParms")
	if parms == nil {
		parms = s.Dict.Get("DP")
	}

	data := s.Data
	for i, name := range names {
		data, err = applyFilter(name, data, filterParams(parms, i))
		if err != nil {
			return nil, fmt.Errorf("filter %d (%s): %w", i, name, err)
		}
	}
	return data, nil
}

func filterNames(obj Object) ([]string, error) {
	switch f := obj.(type) {
	case nil, Null:
		return nil, nil
	case Name:
		return []string{string(f)}, nil
	case Array:
		names := make([]string, len(f))
		for i, v := range f {
			n, ok := v.(Name)
			if !ok {
				return nil, fmt.Errorf("filter %d is %T, want a name", i, v)
			}
			names[i] = string(n)
		}
		return names, nil
	}
	return nil, fmt.Errorf("invalid Filter type %T", obj)
}

// filterParams picks the DecodeParms for the i-th filter. An array holds
// one entry per filter; a lone dictionary applies to every filter.
func filterParams(parms Object, i int) filters.Params {
	if arr, ok := parms.(Array); ok {
		parms = arr.Get(i)
	}
	dict, ok := parms.(Dict)
	if !ok {
		return nil
	}
	params := make(filters.Params, len(dict))
	for k, v := range dict {
		switch v := v.(type) {
		case Int:
			params[k] = int(v)
		case Real:
			params[k] = float64(v)
		case Bool:
			params[k] = bool(v)
		case String:
			params[k] = string(v)
		case Name:
			params[k] = string(v)
		default:
			params[k] = v
		}
	}
	return params
}

func applyFilter(name string, data []byte, params filters.Params) ([]byte, error) {
	switch name {
	case "FlateDecode", "Fl":
		return filters.FlateDecode(data, params)
	case "LZWDecode", "LZW":
		return filters.LZWDecode(data, params)
	case "ASCIIHexDecode", "AHx":
		return filters.ASCIIHexDecode(data)
	case "ASCII85Decode", "A85":
		return filters.ASCII85Decode(data)
	case "RunLengthDecode", "RL":
		return filters.RunLengthDecode(data)
	case "CCITTFaxDecode", "CCF":
		return filters.CCITTFaxDecode(data, params)
	case "DCTDecode", "DCT", "JPXDecode":
		return data, nil
	case "JBIG2Decode", "Crypt":
		return nil, fmt.Errorf("%s is not supported", name)
	}
	return nil, fmt.Errorf("unknown filter %s", name)
}
