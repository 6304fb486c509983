package font

import (
	"encoding/hex"
	"fmt"

	"github.com/tsawler/pdfannotate/core"
)

// CMap maps character codes to Unicode text. It holds the bfchar and
// bfrange sections of a ToUnicode CMap; codes are keyed by value and byte
// length so <20> and <0020> stay distinct.
type CMap struct {
	chars  map[cmapKey]string
	ranges []bfRange
}

type cmapKey struct {
	code uint32
	n    int
}

type bfRange struct {
	first, last uint32
	n           int
	dst         []uint16 // UTF-16 of the first code; the last unit increments
	list        []string // explicit destinations, when given as an array
}

// ParseToUnicodeCMap decodes and parses a ToUnicode stream.
func ParseToUnicodeCMap(stream *core.Stream) (*CMap, error) {
	if stream == nil {
		return nil, fmt.Errorf("nil ToUnicode stream")
	}
	data, err := stream.Decoded()
	if err != nil {
		return nil, fmt.Errorf("decode ToUnicode stream: %w", err)
	}
	return ParseCMap(data), nil
}

// ParseCMap reads the mappings of a CMap program. Sections it does not
// use and malformed entries are skipped.
func ParseCMap(data []byte) *CMap {
	cm := &CMap{chars: make(map[cmapKey]string)}
	toks := tokenizeCMap(data)

	for i := 0; i < len(toks); i++ {
		switch toks[i].word {
		case "beginbfchar":
			i++
			for ; i+1 < len(toks) && toks[i].word != "endbfchar"; i += 2 {
				src, dst := toks[i], toks[i+1]
				if !src.isHex || !dst.isHex {
					continue
				}
				cm.chars[cmapKey{code: toCode(src.hex), n: len(src.hex)}] = utf16Text(dst.hex)
			}
		case "beginbfrange":
			i++
			for i+2 < len(toks) && toks[i].word != "endbfrange" {
				lo, hi := toks[i], toks[i+1]
				i += 2
				r := bfRange{first: toCode(lo.hex), last: toCode(hi.hex), n: len(lo.hex)}
				if toks[i].word == "[" {
					for i++; i < len(toks) && toks[i].word != "]"; i++ {
						r.list = append(r.list, utf16Text(toks[i].hex))
					}
				} else {
					r.dst = utf16Units(toks[i].hex)
				}
				i++
				if lo.isHex && hi.isHex && r.first <= r.last {
					cm.ranges = append(cm.ranges, r)
				}
			}
		}
	}
	return cm
}

// Lookup returns the text of an n-byte code. A nil CMap maps nothing.
func (cm *CMap) Lookup(code uint32, n int) (string, bool) {
	if cm == nil {
		return "", false
	}
	if s, ok := cm.chars[cmapKey{code: code, n: n}]; ok {
		return s, true
	}
	for _, r := range cm.ranges {
		if r.n != n || code < r.first || code > r.last {
			continue
		}
		off := code - r.first
		if r.list != nil {
			if int(off) < len(r.list) {
				return r.list[off], true
			}
			return "", false
		}
		if len(r.dst) == 0 {
			return "", false
		}
		units := append([]uint16(nil), r.dst...)
		units[len(units)-1] += uint16(off)
		return decodeUnits(units), true
	}
	return "", false
}

// Len returns the number of single mappings and ranges.
func (cm *CMap) Len() int {
	if cm == nil {
		return 0
	}
	return len(cm.chars) + len(cm.ranges)
}

type cmapToken struct {
	word  string
	hex   []byte
	isHex bool
}

// tokenizeCMap splits a CMap program into hex strings, brackets and bare
// words. Strings, names, dictionaries and comments come back as words
// that never match a section keyword.
func tokenizeCMap(data []byte) []cmapToken {
	var toks []cmapToken
	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0:
			i++
		case c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case c == '<' && i+1 < len(data) && data[i+1] == '<', c == '>' && i+1 < len(data) && data[i+1] == '>':
			toks = append(toks, cmapToken{word: string(data[i : i+2])})
			i += 2
		case c == '<':
			j := i + 1
			var digits []byte
			for j < len(data) && data[j] != '>' {
				if isHexDigit(data[j]) {
					digits = append(digits, data[j])
				}
				j++
			}
			if len(digits)%2 == 1 {
				digits = append(digits, '0')
			}
			b := make([]byte, len(digits)/2)
			_, _ = hex.Decode(b, digits)
			toks = append(toks, cmapToken{hex: b, isHex: true})
			i = j + 1
		case c == '(':
			depth := 0
			j := i
			for ; j < len(data); j++ {
				if data[j] == '\\' {
					j++
					continue
				}
				if data[j] == '(' {
					depth++
				} else if data[j] == ')' {
					depth--
					if depth == 0 {
						break
					}
				}
			}
			toks = append(toks, cmapToken{word: "()"})
			i = j + 1
		case c == '[' || c == ']' || c == '{' || c == '}':
			toks = append(toks, cmapToken{word: string(c)})
			i++
		default:
			j := i + 1
			for j < len(data) && !isCMapDelimiter(data[j]) {
				j++
			}
			toks = append(toks, cmapToken{word: string(data[i:j])})
			i = j
		}
	}
	return toks
}

func isCMapDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0, '<', '>', '[', ']', '{', '}', '(', ')', '/', '%':
		return true
	}
	return false
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}

func toCode(b []byte) uint32 {
	var code uint32
	for _, c := range b {
		code = code<<8 | uint32(c)
	}
	return code
}

func utf16Units(b []byte) []uint16 {
	if len(b) == 1 {
		return []uint16{uint16(b[0])}
	}
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])<<8|uint16(b[i+1]))
	}
	return units
}

func utf16Text(b []byte) string {
	return decodeUnits(utf16Units(b))
}

func decodeUnits(units []uint16) string {
	b := make([]byte, 0, len(units)*2)
	for _, u := range units {
		b = append(b, byte(u>>8), byte(u))
	}
	return DecodeUTF16BE(b)
}
