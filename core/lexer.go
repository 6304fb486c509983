package core

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// TokenType classifies a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenWhitespace
	TokenComment
	TokenKeyword // obj, endobj, stream, true, null ...
	TokenInteger
	TokenReal
	TokenString    // (literal)
	TokenHexString // <hex digits>
	TokenName      // /Name, without the slash
	TokenArrayStart
	TokenArrayEnd
	TokenDictStart
	TokenDictEnd
	TokenIndirectRef // the R of "n g R"
)

var tokenTypeNames = [...]string{
	"EOF", "Whitespace", "Comment", "Keyword", "Integer", "Real", "String",
	"HexString", "Name", "ArrayStart", "ArrayEnd", "DictStart", "DictEnd", "IndirectRef",
}

func (t TokenType) String() string {
	if t < 0 || int(t) >= len(tokenTypeNames) {
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
	return tokenTypeNames[t]
}

// Token is one lexical unit. Value holds the decoded bytes: escapes in
// literal strings and names are resolved, hex strings keep their digits.
type Token struct {
	Type  TokenType
	Value []byte
	Pos   int64 // byte offset from the start of the reader
}

// Lexer splits PDF syntax into tokens. It also exposes raw reads for the
// binary data of streams.
type Lexer struct {
	r   *bufio.Reader
	pos int64
}

// NewLexer returns a lexer reading from r.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{r: bufio.NewReader(r)}
}

// NextToken returns the next token. Whitespace is skipped; at the end of
// input a TokenEOF is returned with a nil error.
func (l *Lexer) NextToken() (*Token, error) {
	if err := l.skipSpace(); err != nil && err != io.EOF {
		return nil, err
	}
	start := l.pos
	c, err := l.peek()
	if err == io.EOF {
		return &Token{Type: TokenEOF, Pos: start}, nil
	}
	if err != nil {
		return nil, err
	}

	switch {
	case c == '%':
		return l.comment(start)
	case c == '[':
		l.discard(1)
		return &Token{Type: TokenArrayStart, Value: []byte("["), Pos: start}, nil
	case c == ']':
		l.discard(1)
		return &Token{Type: TokenArrayEnd, Value: []byte("]"), Pos: start}, nil
	case c == '(':
		return l.literal(start)
	case c == '<':
		if l.doubled('<') {
			l.discard(2)
			return &Token{Type: TokenDictStart, Value: []byte("<<"), Pos: start}, nil
		}
		return l.hexString(start)
	case c == '>':
		if l.doubled('>') {
			l.discard(2)
			return &Token{Type: TokenDictEnd, Value: []byte(">>"), Pos: start}, nil
		}
		return nil, fmt.Errorf("unexpected '>' at offset %d", start)
	case c == '/':
		return l.name(start)
	case isDigit(c) || c == '-' || c == '+' || c == '.':
		return l.number(start)
	case isAlpha(c) || c == '\'' || c == '"':
		return l.keyword(start)
	}
	return nil, fmt.Errorf("unexpected character %q at offset %d", c, start)
}

func (l *Lexer) readByte() (byte, error) {
	c, err := l.r.ReadByte()
	if err == nil {
		l.pos++
	}
	return c, err
}

func (l *Lexer) peek() (byte, error) {
	b, err := l.r.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// doubled reports whether the next two bytes are both c.
func (l *Lexer) doubled(c byte) bool {
	b, err := l.r.Peek(2)
	return err == nil && b[0] == c && b[1] == c
}

func (l *Lexer) discard(n int) {
	d, _ := l.r.Discard(n)
	l.pos += int64(d)
}

func (l *Lexer) skipSpace() error {
	for {
		c, err := l.peek()
		if err != nil {
			return err
		}
		if !isWhitespace(c) {
			return nil
		}
		l.discard(1)
	}
}

// comment reads from % to the end of the line. The line terminator is
// consumed but not included.
func (l *Lexer) comment(start int64) (*Token, error) {
	var buf bytes.Buffer
	for {
		c, err := l.readByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if c == '\n' {
			break
		}
		if c == '\r' {
			if next, err := l.peek(); err == nil && next == '\n' {
				l.discard(1)
			}
			break
		}
		buf.WriteByte(c)
	}
	return &Token{Type: TokenComment, Value: buf.Bytes(), Pos: start}, nil
}

var literalEscapes = map[byte]byte{
	'n': '\n', 'r': '\r', 't': '\t', 'b': '\b', 'f': '\f',
	'(': '(', ')': ')', '\\': '\\',
}

// literal reads a balanced (string), resolving backslash escapes.
func (l *Lexer) literal(start int64) (*Token, error) {
	l.discard(1)
	var buf bytes.Buffer
	for depth := 1; ; {
		c, err := l.readByte()
		if err != nil {
			return nil, fmt.Errorf("unterminated string at offset %d: %w", start, err)
		}
		switch c {
		case '(':
			depth++
		case ')':
			if depth--; depth == 0 {
				return &Token{Type: TokenString, Value: buf.Bytes(), Pos: start}, nil
			}
		case '\\':
			if c, err = l.readByte(); err != nil {
				return nil, fmt.Errorf("unterminated string at offset %d: %w", start, err)
			}
			if e, ok := literalEscapes[c]; ok {
				buf.WriteByte(e)
				continue
			}
			switch {
			case c == '\r' || c == '\n':
				if next, err := l.peek(); c == '\r' && err == nil && next == '\n' {
					l.discard(1)
				}
			case isOctalDigit(c):
				v := c - '0'
				for i := 0; i < 2; i++ {
					next, err := l.peek()
					if err != nil || !isOctalDigit(next) {
						break
					}
					l.discard(1)
					v = v*8 + next - '0'
				}
				buf.WriteByte(v)
			default:
				buf.WriteByte(c)
			}
			continue
		}
		buf.WriteByte(c)
	}
}

// hexString reads <...>, dropping whitespace between digits.
func (l *Lexer) hexString(start int64) (*Token, error) {
	l.discard(1)
	var buf bytes.Buffer
	for {
		c, err := l.readByte()
		if err != nil {
			return nil, fmt.Errorf("unterminated hex string at offset %d: %w", start, err)
		}
		switch {
		case c == '>':
			return &Token{Type: TokenHexString, Value: buf.Bytes(), Pos: start}, nil
		case isWhitespace(c):
		case isHexDigit(c):
			buf.WriteByte(c)
		default:
			return nil, fmt.Errorf("invalid hex digit %q at offset %d", c, l.pos-1)
		}
	}
}

// name reads /Name, resolving #xx escapes.
func (l *Lexer) name(start int64) (*Token, error) {
	l.discard(1)
	var buf bytes.Buffer
	for {
		c, err := l.peek()
		if err == io.EOF || err == nil && (isWhitespace(c) || isDelimiter(c)) {
			return &Token{Type: TokenName, Value: buf.Bytes(), Pos: start}, nil
		}
		if err != nil {
			return nil, err
		}
		l.discard(1)
		if c != '#' {
			buf.WriteByte(c)
			continue
		}
		hi, err1 := l.readByte()
		lo, err2 := l.readByte()
		if err1 != nil || err2 != nil || !isHexDigit(hi) || !isHexDigit(lo) {
			return nil, fmt.Errorf("invalid escape in name at offset %d", start)
		}
		buf.WriteByte(hexValue(hi)<<4 | hexValue(lo))
	}
}

// number reads an integer or a real. A second decimal point ends the
// token.
func (l *Lexer) number(start int64) (*Token, error) {
	var buf bytes.Buffer
	typ := TokenInteger
	for {
		c, err := l.peek()
		if err != nil {
			break
		}
		if c == '.' && typ == TokenInteger {
			typ = TokenReal
		} else if !isDigit(c) && !(buf.Len() == 0 && (c == '-' || c == '+')) {
			break
		}
		l.discard(1)
		buf.WriteByte(c)
	}
	return &Token{Type: typ, Value: buf.Bytes(), Pos: start}, nil
}

// keyword reads a bare word. Content stream operators such as T*, d0
// and the quote operators are keywords too.
func (l *Lexer) keyword(start int64) (*Token, error) {
	var buf bytes.Buffer
	for {
		c, err := l.peek()
		if err != nil || !isKeywordByte(c) {
			break
		}
		l.discard(1)
		buf.WriteByte(c)
	}
	if buf.Len() == 1 && buf.Bytes()[0] == 'R' {
		return &Token{Type: TokenIndirectRef, Value: buf.Bytes(), Pos: start}, nil
	}
	return &Token{Type: TokenKeyword, Value: buf.Bytes(), Pos: start}, nil
}

// SkipStreamEOL consumes the end-of-line marker after a stream keyword:
// CRLF, LF, or a lone CR. Spaces before the marker are tolerated. Data
// that starts immediately is left untouched.
func (l *Lexer) SkipStreamEOL() error {
	for {
		c, err := l.peek()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch c {
		case ' ', '\t':
			l.discard(1)
		case '\n':
			l.discard(1)
			return nil
		case '\r':
			l.discard(1)
			if next, err := l.peek(); err == nil && next == '\n' {
				l.discard(1)
			}
			return nil
		default:
			return nil
		}
	}
}

// ReadBytes reads exactly n raw bytes.
func (l *Lexer) ReadBytes(n int) ([]byte, error) {
	data := make([]byte, n)
	got, err := io.ReadFull(l.r, data)
	l.pos += int64(got)
	if err != nil {
		return data[:got], fmt.Errorf("read %d bytes at offset %d: got %d: %w", n, l.pos-int64(got), got, err)
	}
	return data, nil
}

// SkipBytes discards n raw bytes.
func (l *Lexer) SkipBytes(n int) error {
	d, err := l.r.Discard(n)
	l.pos += int64(d)
	return err
}

// Peek returns the next byte without consuming it.
func (l *Lexer) Peek() (byte, error) {
	return l.peek()
}

// ReadByte consumes one raw byte.
func (l *Lexer) ReadByte() (byte, error) {
	return l.readByte()
}

func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isDigit(b byte) bool      { return '0' <= b && b <= '9' }
func isOctalDigit(b byte) bool { return '0' <= b && b <= '7' }
func isAlpha(b byte) bool      { return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' }

func isKeywordByte(b byte) bool {
	return isAlpha(b) || isDigit(b) || b == '*' || b == '\'' || b == '"'
}

func isHexDigit(b byte) bool {
	return isDigit(b) || 'a' <= b && b <= 'f' || 'A' <= b && b <= 'F'
}

func hexValue(b byte) byte {
	switch {
	case isDigit(b):
		return b - '0'
	case 'a' <= b && b <= 'f':
		return b - 'a' + 10
	case 'A' <= b && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}
