// Package filters implements the PDF stream decoding filters.
//
// FlateDecode and LZWDecode decompress and then undo the /Predictor named
// in the decode parameters (TIFF predictor 2 or the PNG row filters).
// ASCIIHexDecode, ASCII85Decode and RunLengthDecode are plain byte
// transforms. CCITTFaxDecode expands Group 3 and Group 4 fax images.
//
// Decode parameters arrive as a Params map of Go values:
//
//	params := filters.Params{"Predictor": 12, "Columns": 100, "Colors": 3}
//	decoded, err := filters.FlateDecode(data, params)
package filters
