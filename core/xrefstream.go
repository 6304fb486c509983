package core

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
)

var objHeaderPattern = regexp.MustCompile(`^\d+\s+\d+\s+obj`)

// isXRefStream reports whether the data at the current position is an XRef
// stream object rather than a traditional "xref" table. The read position
// is left unchanged.
func (x *XRefParser) isXRefStream() (bool, error) {
	pos, err := x.reader.Seek(0, io.SeekCurrent)
	if err != nil {
		return false, fmt.Errorf("failed to get position: %w", err)
	}
	defer x.reader.Seek(pos, io.SeekStart)

	buf := make([]byte, 64)
	n, err := io.ReadFull(x.reader, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, fmt.Errorf("failed to read xref section: %w", err)
	}
	head := bytes.TrimLeft(buf[:n], " \t\r\n\f\x00")

	switch {
	case bytes.HasPrefix(head, []byte("xref")):
		return false, nil
	case objHeaderPattern.Match(head):
		return true, nil
	}
	return false, fmt.Errorf("no xref table or xref stream at offset %d", pos)
}

// parseXRefStream parses a cross-reference stream (PDF 1.5) at the current
// position. The stream dictionary doubles as the trailer.
func (x *XRefParser) parseXRefStream() (*XRefTable, error) {
	parser := NewParser(x.reader)
	indObj, err := parser.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("failed to parse xref stream object: %w", err)
	}

	stream, ok := indObj.Object.(*Stream)
	if !ok {
		return nil, fmt.Errorf("xref stream object is %T, not a stream", indObj.Object)
	}

	if name, ok := stream.Dict.GetName("Type"); !ok || name != "XRef" {
		return nil, fmt.Errorf("xref stream has wrong /Type: %v", stream.Dict.Get("Type"))
	}

	size, ok := stream.Dict.GetInt("Size")
	if !ok {
		return nil, fmt.Errorf("xref stream missing /Size")
	}

	wArr, ok := stream.Dict.GetArray("W")
	if !ok {
		return nil, fmt.Errorf("xref stream missing /W")
	}
	if len(wArr) != 3 {
		return nil, fmt.Errorf("xref stream /W must have 3 elements, got %d", len(wArr))
	}
	w := make([]int, 3)
	for i := range wArr {
		v, ok := wArr.GetInt(i)
		if !ok || v < 0 || v > 8 {
			return nil, fmt.Errorf("invalid /W entry %v", wArr[i])
		}
		w[i] = int(v)
	}

	index := []int{0, int(size)}
	if idxArr, ok := stream.Dict.GetArray("Index"); ok {
		if len(idxArr)%2 != 0 {
			return nil, fmt.Errorf("xref stream /Index has odd length %d", len(idxArr))
		}
		index = index[:0]
		for i := range idxArr {
			v, ok := idxArr.GetInt(i)
			if !ok {
				return nil, fmt.Errorf("invalid /Index entry %v", idxArr[i])
			}
			index = append(index, int(v))
		}
	}

	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode xref stream: %w", err)
	}

	table := NewXRefTable()
	table.IsStream = true
	table.Trailer = stream.Dict

	pos := 0
	for i := 0; i < len(index); i += 2 {
		first, count := index[i], index[i+1]
		for j := 0; j < count; j++ {
			entry, n, err := x.parseXRefStreamEntry(data[pos:], w)
			if err != nil {
				return nil, fmt.Errorf("xref stream entry %d: %w", first+j, err)
			}
			pos += n
			table.Set(first+j, entry)
		}
	}

	return table, nil
}

// parseXRefStreamEntry decodes one binary entry using the field widths w.
// It returns the entry and the number of bytes consumed.
func (x *XRefParser) parseXRefStreamEntry(data []byte, w []int) (*XRefEntry, int, error) {
	total := w[0] + w[1] + w[2]
	if len(data) < total {
		return nil, 0, fmt.Errorf("need %d bytes, have %d", total, len(data))
	}

	// A zero-width type field defaults to type 1
	typ := int64(1)
	if w[0] > 0 {
		typ = readBigEndianInt(data, w[0])
	}
	field2 := readBigEndianInt(data[w[0]:], w[1])
	field3 := readBigEndianInt(data[w[0]+w[1]:], w[2])

	entry := &XRefEntry{Offset: field2, Generation: int(field3)}
	switch typ {
	case 0:
		entry.Type = XRefEntryFree
	case 1:
		entry.Type = XRefEntryUncompressed
		entry.InUse = true
	case 2:
		entry.Type = XRefEntryCompressed
		entry.InUse = true
	default:
		// Unknown types are treated as null references
		entry.Type = XRefEntryFree
	}

	return entry, total, nil
}

// readBigEndianInt reads a width-byte big-endian unsigned integer
func readBigEndianInt(data []byte, width int) int64 {
	var v int64
	for i := 0; i < width && i < len(data); i++ {
		v = v<<8 | int64(data[i])
	}
	return v
}
