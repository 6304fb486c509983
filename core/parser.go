package core

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
)

// ReferenceResolver resolves indirect references. The parser needs one
// for streams whose /Length is itself an indirect object.
type ReferenceResolver interface {
	ResolveReference(ref IndirectRef) (Object, error)
}

// Parser builds objects from a Lexer with one token of lookahead.
type Parser struct {
	lex      *Lexer
	cur      *Token
	ahead    *Token
	err      error // lexing error that ended the token stream
	resolver ReferenceResolver
}

// NewParser returns a parser reading from r.
func NewParser(r io.Reader) *Parser {
	return newLexerParser(NewLexer(r))
}

// newLexerParser continues parsing where l stands.
func newLexerParser(l *Lexer) *Parser {
	p := &Parser{lex: l}
	p.advance()
	p.advance()
	return p
}

// SetReferenceResolver sets the resolver used for indirect stream lengths.
func (p *Parser) SetReferenceResolver(resolver ReferenceResolver) {
	p.resolver = resolver
}

// advance shifts the lookahead. Nothing is read past a stream keyword:
// the bytes after it are raw data for parseStream.
func (p *Parser) advance() {
	p.cur, p.ahead = p.ahead, nil
	if p.err != nil || isKeyword(p.cur, "stream") {
		return
	}
	p.ahead, p.err = p.lex.NextToken()
}

func (p *Parser) skipComments() {
	for p.cur != nil && p.cur.Type == TokenComment {
		p.advance()
	}
}

func (p *Parser) exhausted(where string) error {
	if p.err != nil {
		return p.err
	}
	return fmt.Errorf("unexpected end of input%s", where)
}

func isKeyword(t *Token, kw string) bool {
	return t != nil && t.Type == TokenKeyword && string(t.Value) == kw
}

func describe(t *Token) string {
	if t == nil {
		return "end of input"
	}
	return fmt.Sprintf("%v %q at offset %d", t.Type, t.Value, t.Pos)
}

// ParseObject parses the next direct object or indirect reference. It
// returns io.EOF at the end of input.
func (p *Parser) ParseObject() (Object, error) {
	p.skipComments()
	t := p.cur
	if t == nil {
		return nil, p.exhausted("")
	}

	var obj Object
	switch t.Type {
	case TokenEOF:
		return nil, io.EOF
	case TokenInteger:
		return p.parseNumber()
	case TokenArrayStart:
		return p.parseArray()
	case TokenDictStart:
		return p.parseDict()
	case TokenKeyword:
		switch string(t.Value) {
		case "null":
			obj = Null{}
		case "true":
			obj = Bool(true)
		case "false":
			obj = Bool(false)
		default:
			return nil, fmt.Errorf("unexpected keyword %q at offset %d", t.Value, t.Pos)
		}
	case TokenReal:
		f, err := strconv.ParseFloat(string(t.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real %q at offset %d", t.Value, t.Pos)
		}
		obj = Real(f)
	case TokenString:
		obj = String(t.Value)
	case TokenHexString:
		digits := t.Value
		if len(digits)%2 == 1 {
			digits = append(digits, '0')
		}
		b := make([]byte, len(digits)/2)
		if _, err := hex.Decode(b, digits); err != nil {
			return nil, fmt.Errorf("invalid hex string at offset %d: %w", t.Pos, err)
		}
		obj = String(b)
	case TokenName:
		obj = Name(t.Value)
	default:
		return nil, fmt.Errorf("unexpected %s", describe(t))
	}
	p.advance()
	return obj, nil
}

// parseNumber reads an integer, or an indirect reference when the
// integer is followed by another integer and R.
func (p *Parser) parseNumber() (Object, error) {
	t := p.cur
	n, err := strconv.ParseInt(string(t.Value), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(t.Value), 64)
		if ferr != nil {
			return nil, fmt.Errorf("invalid number %q at offset %d", t.Value, t.Pos)
		}
		p.advance()
		return Real(f), nil
	}
	p.advance()

	if p.cur != nil && p.cur.Type == TokenInteger && p.ahead != nil && p.ahead.Type == TokenIndirectRef {
		if gen, err := strconv.ParseInt(string(p.cur.Value), 10, 64); err == nil {
			p.advance()
			p.advance()
			return IndirectRef{Number: int(n), Generation: int(gen)}, nil
		}
	}
	return Int(n), nil
}

func (p *Parser) parseArray() (Object, error) {
	p.advance()
	var arr Array
	for {
		p.skipComments()
		switch {
		case p.cur == nil:
			return nil, p.exhausted(" in array")
		case p.cur.Type == TokenEOF:
			return nil, fmt.Errorf("unexpected EOF in array")
		case p.cur.Type == TokenArrayEnd:
			p.advance()
			return arr, nil
		}
		obj, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", len(arr), err)
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) parseDict() (Object, error) {
	p.advance()
	dict := make(Dict)
	for {
		p.skipComments()
		switch {
		case p.cur == nil:
			return nil, p.exhausted(" in dictionary")
		case p.cur.Type == TokenEOF:
			return nil, fmt.Errorf("unexpected EOF in dictionary")
		case p.cur.Type == TokenDictEnd:
			p.advance()
			return dict, nil
		case p.cur.Type != TokenName:
			return nil, fmt.Errorf("dictionary key: expected name, got %s", describe(p.cur))
		}
		key := string(p.cur.Value)
		p.advance()
		value, err := p.ParseObject()
		if err != nil {
			return nil, fmt.Errorf("dictionary value /%s: %w", key, err)
		}
		dict[key] = value
	}
}

// ParseIndirectObject parses "num gen obj ... endobj". A dictionary
// followed by a stream keyword becomes a *Stream.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	p.skipComments()
	num, err := p.expectInt("object number")
	if err != nil {
		return nil, err
	}
	gen, err := p.expectInt("generation number")
	if err != nil {
		return nil, err
	}
	if !isKeyword(p.cur, "obj") {
		return nil, fmt.Errorf("object %d %d: expected obj, got %s", num, gen, describe(p.cur))
	}
	p.advance()

	obj, err := p.ParseObject()
	if err != nil {
		return nil, fmt.Errorf("object %d %d: %w", num, gen, err)
	}
	if isKeyword(p.cur, "stream") {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, fmt.Errorf("object %d %d: stream must follow a dictionary", num, gen)
		}
		stream, err := p.parseStream(dict)
		if err != nil {
			return nil, fmt.Errorf("object %d %d: %w", num, gen, err)
		}
		obj = stream
	}
	if !isKeyword(p.cur, "endobj") {
		return nil, fmt.Errorf("object %d %d: expected endobj, got %s", num, gen, describe(p.cur))
	}
	p.advance()

	return &IndirectObject{Ref: IndirectRef{Number: num, Generation: gen}, Object: obj}, nil
}

func (p *Parser) expectInt(what string) (int, error) {
	if p.cur == nil || p.cur.Type != TokenInteger {
		return 0, fmt.Errorf("expected %s, got %s", what, describe(p.cur))
	}
	n, err := strconv.Atoi(string(p.cur.Value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, p.cur.Value)
	}
	p.advance()
	return n, nil
}

// parseStream reads the raw data after a stream keyword. The lexer sits
// right after the keyword since advance stops there.
func (p *Parser) parseStream(dict Dict) (*Stream, error) {
	length, err := p.streamLength(dict)
	if err != nil {
		return nil, err
	}
	if err := p.lex.SkipStreamEOL(); err != nil {
		return nil, fmt.Errorf("stream: %w", err)
	}
	data, err := p.lex.ReadBytes(length)
	if err != nil {
		return nil, fmt.Errorf("stream data: %w", err)
	}
	t, err := p.lex.NextToken()
	if err != nil {
		return nil, fmt.Errorf("after stream data: %w", err)
	}
	if !isKeyword(t, "endstream") {
		return nil, fmt.Errorf("expected endstream, got %s", describe(t))
	}

	p.cur, p.ahead = nil, nil
	p.advance()
	p.advance()
	return &Stream{Dict: dict, Data: data}, nil
}

func (p *Parser) streamLength(dict Dict) (int, error) {
	var length Object = dict.Get("Length")
	if ref, ok := length.(IndirectRef); ok {
		if p.resolver == nil {
			return 0, fmt.Errorf("stream length %v needs a reference resolver", ref)
		}
		resolved, err := p.resolver.ResolveReference(ref)
		if err != nil {
			return 0, fmt.Errorf("resolve stream length %v: %w", ref, err)
		}
		length = resolved
	}
	switch v := length.(type) {
	case nil:
		return 0, fmt.Errorf("stream dictionary has no Length")
	case Int:
		if v < 0 {
			return 0, fmt.Errorf("invalid stream length %d", v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("stream length is %T, want Int", length)
	}
}
