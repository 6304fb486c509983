package contentstream

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/tsawler/pdfannotate/core"
)

// Operation is one operator together with the operands that preceded it.
type Operation struct {
	Operator string
	Operands []core.Object
}

// Parser splits a content stream into operations.
type Parser struct {
	lex      *core.Lexer
	ops      []Operation
	operands []core.Object
}

// NewParser returns a parser over decoded content stream bytes.
func NewParser(data []byte) *Parser {
	return &Parser{lex: core.NewLexer(bytes.NewReader(data))}
}

// Parse reads the whole stream. Operands left over at the end, with no
// operator to consume them, are dropped.
func (p *Parser) Parse() ([]Operation, error) {
	for {
		tok, err := p.lex.NextToken()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case core.TokenEOF:
			return p.ops, nil
		case core.TokenComment:
			continue
		case core.TokenKeyword, core.TokenIndirectRef:
			if obj, ok := constant(tok); ok {
				p.operands = append(p.operands, obj)
				continue
			}
			p.ops = append(p.ops, Operation{Operator: string(tok.Value), Operands: p.operands})
			p.operands = nil
			if string(tok.Value) == "ID" {
				p.skipInlineImage()
			}
		default:
			obj, err := p.operand(tok)
			if err != nil {
				return nil, err
			}
			p.operands = append(p.operands, obj)
		}
	}
}

func constant(tok *core.Token) (core.Object, bool) {
	if tok.Type != core.TokenKeyword {
		return nil, false
	}
	switch string(tok.Value) {
	case "true":
		return core.Bool(true), true
	case "false":
		return core.Bool(false), true
	case "null":
		return core.Null{}, true
	}
	return nil, false
}

// operand converts a token into an object, reading nested arrays and
// dictionaries to their closing delimiter.
func (p *Parser) operand(tok *core.Token) (core.Object, error) {
	if obj, ok := constant(tok); ok {
		return obj, nil
	}
	switch tok.Type {
	case core.TokenInteger:
		if n, err := strconv.ParseInt(string(tok.Value), 10, 64); err == nil {
			return core.Int(n), nil
		}
		// A lone sign or an overflowing integer.
		f, err := strconv.ParseFloat(string(tok.Value), 64)
		if err != nil {
			return core.Int(0), nil
		}
		return core.Real(f), nil
	case core.TokenReal:
		f, err := strconv.ParseFloat(string(tok.Value), 64)
		if err != nil {
			return core.Real(0), nil
		}
		return core.Real(f), nil
	case core.TokenString:
		return core.String(tok.Value), nil
	case core.TokenHexString:
		digits := tok.Value
		if len(digits)%2 == 1 {
			digits = append(digits, '0')
		}
		b := make([]byte, len(digits)/2)
		if _, err := hex.Decode(b, digits); err != nil {
			return nil, fmt.Errorf("hex string at offset %d: %w", tok.Pos, err)
		}
		return core.String(b), nil
	case core.TokenName:
		return core.Name(tok.Value), nil
	case core.TokenArrayStart:
		return p.array()
	case core.TokenDictStart:
		return p.dict()
	}
	return nil, fmt.Errorf("unexpected %v %q at offset %d", tok.Type, tok.Value, tok.Pos)
}

// next returns the next token that is not a comment.
func (p *Parser) next() (*core.Token, error) {
	for {
		tok, err := p.lex.NextToken()
		if err != nil || tok.Type != core.TokenComment {
			return tok, err
		}
	}
}

func (p *Parser) array() (core.Array, error) {
	arr := core.Array{}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case core.TokenArrayEnd:
			return arr, nil
		case core.TokenEOF:
			return nil, fmt.Errorf("unterminated array")
		}
		obj, err := p.operand(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) dict() (core.Dict, error) {
	d := core.Dict{}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case core.TokenDictEnd:
			return d, nil
		case core.TokenEOF:
			return nil, fmt.Errorf("unterminated dictionary")
		case core.TokenName:
		default:
			return nil, fmt.Errorf("dictionary key at offset %d is %v", tok.Pos, tok.Type)
		}
		key := string(tok.Value)
		val, err := p.next()
		if err != nil {
			return nil, err
		}
		if val.Type == core.TokenEOF {
			return nil, fmt.Errorf("unterminated dictionary")
		}
		if d[key], err = p.operand(val); err != nil {
			return nil, err
		}
	}
}

// skipInlineImage consumes the binary data following ID and records the
// EI that ends it. EI counts only with whitespace on both sides; data
// that never finds one runs to the end of the stream.
func (p *Parser) skipInlineImage() {
	if c, err := p.lex.Peek(); err == nil && isSpace(c) {
		p.lex.ReadByte()
	}
	before, last := byte(0), byte(' ')
	for {
		c, err := p.lex.ReadByte()
		if err != nil {
			return
		}
		if c == 'I' && last == 'E' && isSpace(before) {
			if next, err := p.lex.Peek(); err != nil || isSpace(next) {
				p.ops = append(p.ops, Operation{Operator: "EI"})
				return
			}
		}
		before, last = last, c
	}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}
