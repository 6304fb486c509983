package core

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// XRefEntryType distinguishes the three kinds of cross-reference entries.
type XRefEntryType int

const (
	XRefEntryFree XRefEntryType = iota
	XRefEntryUncompressed
	XRefEntryCompressed
)

// XRefEntry locates one object. For uncompressed entries Offset is a
// byte offset; for compressed ones it is the number of the containing
// object stream and Generation is the index inside it.
type XRefEntry struct {
	Type       XRefEntryType
	Offset     int64
	Generation int
	InUse      bool
}

// XRefTable maps object numbers to entries. Trailer is the trailer
// dictionary, or the stream dictionary for an xref stream.
type XRefTable struct {
	Entries  map[int]*XRefEntry
	Trailer  Dict
	IsStream bool
}

// NewXRefTable returns an empty table.
func NewXRefTable() *XRefTable {
	return &XRefTable{Entries: make(map[int]*XRefEntry), Trailer: make(Dict)}
}

func (x *XRefTable) Get(objNum int) (*XRefEntry, bool) {
	e, ok := x.Entries[objNum]
	return e, ok
}

func (x *XRefTable) Set(objNum int, entry *XRefEntry) {
	x.Entries[objNum] = entry
}

func (x *XRefTable) Size() int {
	return len(x.Entries)
}

// XRefParser reads classic xref tables and xref streams from a seekable
// file.
type XRefParser struct {
	reader io.ReadSeeker
}

func NewXRefParser(r io.ReadSeeker) *XRefParser {
	return &XRefParser{reader: r}
}

// tailSize is how much of the end of the file FindXRef searches.
const tailSize = 1024

// FindXRef returns the offset recorded after the last startxref keyword.
func (x *XRefParser) FindXRef() (int64, error) {
	size, err := x.reader.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("seek to end: %w", err)
	}
	start := max(size-tailSize, 0)
	if _, err := x.reader.Seek(start, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek to tail: %w", err)
	}
	tail, err := io.ReadAll(io.LimitReader(x.reader, size-start))
	if err != nil {
		return 0, fmt.Errorf("read tail: %w", err)
	}

	i := bytes.LastIndex(tail, []byte("startxref"))
	if i < 0 {
		return 0, fmt.Errorf("startxref not found")
	}
	fields := bytes.Fields(tail[i+len("startxref"):])
	if len(fields) == 0 {
		return 0, fmt.Errorf("startxref has no offset")
	}
	offset, err := strconv.ParseInt(string(fields[0]), 10, 64)
	if err != nil || offset < 0 || offset >= size {
		return 0, fmt.Errorf("invalid startxref offset %q", fields[0])
	}
	return offset, nil
}

// ParseXRef parses the table or stream at offset. A hybrid file's
// /XRefStm entries fill gaps in the classic table.
func (x *XRefParser) ParseXRef(offset int64) (*XRefTable, error) {
	if _, err := x.reader.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to xref: %w", err)
	}
	isStream, err := x.isXRefStream()
	if err != nil {
		return nil, err
	}
	if isStream {
		return x.parseXRefStream()
	}

	table, err := x.parseTable()
	if err != nil {
		return nil, err
	}
	if stmOff, ok := table.Trailer.GetInt("XRefStm"); ok {
		if _, err := x.reader.Seek(int64(stmOff), io.SeekStart); err == nil {
			if stm, err := x.parseXRefStream(); err == nil {
				for num, e := range stm.Entries {
					if _, ok := table.Entries[num]; !ok {
						table.Set(num, e)
					}
				}
			}
		}
	}
	return table, nil
}

// parseTable reads "xref", its subsections and the trailer dictionary.
func (x *XRefParser) parseTable() (*XRefTable, error) {
	lex := NewLexer(x.reader)
	if tok, err := lex.NextToken(); err != nil || !isKeyword(tok, "xref") {
		return nil, fmt.Errorf("expected xref keyword, got %s", describe(tok))
	}

	table := NewXRefTable()
	for {
		tok, err := lex.NextToken()
		if err != nil {
			return nil, fmt.Errorf("xref table: %w", err)
		}
		if isKeyword(tok, "trailer") {
			break
		}
		if tok.Type == TokenEOF {
			return nil, fmt.Errorf("xref table missing trailer")
		}
		first, err := intToken(tok, "subsection start")
		if err != nil {
			return nil, err
		}
		tok, err = lex.NextToken()
		if err != nil {
			return nil, err
		}
		count, err := intToken(tok, "subsection count")
		if err != nil {
			return nil, err
		}
		for i := 0; i < count; i++ {
			e, err := readTableEntry(lex)
			if err != nil {
				return nil, fmt.Errorf("xref entry %d: %w", first+i, err)
			}
			table.Set(first+i, e)
		}
	}

	trailer, err := newLexerParser(lex).ParseObject()
	if err != nil {
		return nil, fmt.Errorf("trailer: %w", err)
	}
	dict, ok := trailer.(Dict)
	if !ok {
		return nil, fmt.Errorf("trailer is %T, not a dictionary", trailer)
	}
	table.Trailer = dict
	return table, nil
}

// readTableEntry reads "offset generation n|f".
func readTableEntry(lex *Lexer) (*XRefEntry, error) {
	var nums [2]int
	for i := range nums {
		tok, err := lex.NextToken()
		if err != nil {
			return nil, err
		}
		if nums[i], err = intToken(tok, "entry field"); err != nil {
			return nil, err
		}
	}
	tok, err := lex.NextToken()
	if err != nil {
		return nil, err
	}
	e := &XRefEntry{Offset: int64(nums[0]), Generation: nums[1]}
	switch {
	case isKeyword(tok, "n"):
		e.Type, e.InUse = XRefEntryUncompressed, true
	case isKeyword(tok, "f"):
		e.Type = XRefEntryFree
	default:
		return nil, fmt.Errorf("expected n or f, got %s", describe(tok))
	}
	return e, nil
}

func intToken(tok *Token, what string) (int, error) {
	if tok == nil || tok.Type != TokenInteger {
		return 0, fmt.Errorf("expected %s, got %s", what, describe(tok))
	}
	n, err := strconv.Atoi(string(tok.Value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, tok.Value)
	}
	return n, nil
}

// ParseXRefFromEOF parses the section startxref points at.
func (x *XRefParser) ParseXRefFromEOF() (*XRefTable, error) {
	offset, err := x.FindXRef()
	if err != nil {
		return nil, err
	}
	return x.ParseXRef(offset)
}

// ParsePrevXRef parses the section named by the trailer's /Prev. It
// returns nil when there is none.
func (x *XRefParser) ParsePrevXRef(table *XRefTable) (*XRefTable, error) {
	prev := table.Trailer.Get("Prev")
	if prev == nil {
		return nil, nil
	}
	off, ok := prev.(Int)
	if !ok {
		return nil, fmt.Errorf("invalid /Prev %T", prev)
	}
	return x.ParseXRef(int64(off))
}

// MergeXRefTables combines sections oldest first: later entries and the
// last trailer win.
func MergeXRefTables(tables ...*XRefTable) *XRefTable {
	merged := NewXRefTable()
	for _, t := range tables {
		for num, e := range t.Entries {
			merged.Set(num, e)
		}
		merged.Trailer = t.Trailer
		merged.IsStream = t.IsStream
	}
	return merged
}

// ParseAllXRefs follows the /Prev chain from startxref and returns the
// sections oldest first. A chain that loops back is cut at the repeat.
func (x *XRefParser) ParseAllXRefs() ([]*XRefTable, error) {
	offset, err := x.FindXRef()
	if err != nil {
		return nil, err
	}

	var tables []*XRefTable
	seen := map[int64]bool{}
	for !seen[offset] {
		seen[offset] = true
		t, err := x.ParseXRef(offset)
		if err != nil {
			return nil, fmt.Errorf("xref at %d: %w", offset, err)
		}
		tables = append([]*XRefTable{t}, tables...)

		prev, ok := t.Trailer.GetInt("Prev")
		if !ok {
			break
		}
		offset = int64(prev)
	}
	return tables, nil
}
