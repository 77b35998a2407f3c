package parser

import (
	"errors"
	"fmt"
	"go/constant"
	"go/token"
	"io"
	"strconv"
	"strings"
	"text/scanner"
)

// ParseError describes a syntax error in attribute source.
type ParseError struct {
	err error
	pos token.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.pos.Line, e.pos.Column, e.err)
}

// Underlying returns the error without position information.
func (e *ParseError) Underlying() error {
	return e.err
}

func (e *ParseError) Unwrap() error {
	return e.err
}

// Pos returns the location of the error.
func (e *ParseError) Pos() token.Position {
	return e.pos
}

// ParseAttributes parses all attributes in the given reader. The input is a
// sequence of attributes, each starting with '@'. Whitespace, including line
// breaks, may appear between any two tokens. Any error returned is a
// *ParseError.
func ParseAttributes(filename string, r io.Reader) ([]*Attribute, error) {
	p := newParser(filename, r)
	var attrs []*Attribute
	for {
		t := p.peek()
		if t.r == scanner.EOF {
			break
		}
		a, err := p.parseAttribute()
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	if p.err != nil {
		return nil, p.err
	}
	return attrs, nil
}

// ParseString parses all attributes in the given source.
func ParseString(src string) ([]*Attribute, error) {
	return ParseAttributes("", strings.NewReader(src))
}

// MustParse is like ParseString but panics if the source cannot be parsed.
// It is intended for tests and for initializing package variables.
func MustParse(src string) []*Attribute {
	attrs, err := ParseString(src)
	if err != nil {
		panic(err)
	}
	return attrs
}

// ParseMeta parses a single meta, without a leading '@'.
func ParseMeta(src string) (*Meta, error) {
	p := newParser("", strings.NewReader(src))
	m, err := p.parseMeta()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseLiteral parses a single literal value.
func ParseLiteral(src string) (*Literal, error) {
	p := newParser("", strings.NewReader(src))
	t := p.next()
	if !t.isLiteralStart() {
		return nil, p.errorf(t.pos, "expected literal, got %s", t)
	}
	lit, err := p.parseLiteral(t)
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return lit, nil
}

// MustParseLiteral is like ParseLiteral but panics if the source cannot be
// parsed.
func MustParseLiteral(src string) *Literal {
	lit, err := ParseLiteral(src)
	if err != nil {
		panic(err)
	}
	return lit
}

type tok struct {
	r    rune
	text string
	pos  token.Position
}

func (t tok) String() string {
	switch t.r {
	case scanner.EOF:
		return "end of input"
	case scanner.Ident:
		return fmt.Sprintf("identifier %q", t.text)
	case scanner.Int:
		return "int literal"
	case scanner.Float:
		return "float literal"
	case scanner.Char:
		return "rune literal"
	case scanner.String:
		return "string literal"
	case scanner.RawString:
		return "raw string literal"
	default:
		return strconv.QuoteRune(t.r)
	}
}

func (t tok) isLiteralStart() bool {
	switch t.r {
	case scanner.Int, scanner.Float, scanner.Char, scanner.String, scanner.RawString, '-':
		return true
	case scanner.Ident:
		return t.text == "true" || t.text == "false" || t.text == "b"
	}
	return false
}

type attrParser struct {
	s      scanner.Scanner
	err    *ParseError
	peeked []tok
}

func newParser(filename string, r io.Reader) *attrParser {
	var p attrParser
	p.s.Init(r)
	p.s.Filename = filename
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats |
		scanner.ScanChars | scanner.ScanStrings | scanner.ScanRawStrings
	p.s.Error = func(s *scanner.Scanner, msg string) {
		if p.err == nil {
			p.err = &ParseError{err: errors.New(msg), pos: toPosition(s.Pos())}
		}
	}
	return &p
}

func toPosition(pos scanner.Position) token.Position {
	return token.Position{
		Filename: pos.Filename,
		Offset:   pos.Offset,
		Line:     pos.Line,
		Column:   pos.Column,
	}
}

func (p *attrParser) scan() tok {
	r := p.s.Scan()
	return tok{r: r, text: p.s.TokenText(), pos: toPosition(p.s.Position)}
}

func (p *attrParser) next() tok {
	if len(p.peeked) > 0 {
		t := p.peeked[0]
		p.peeked = p.peeked[1:]
		return t
	}
	return p.scan()
}

func (p *attrParser) peek() tok {
	if len(p.peeked) == 0 {
		p.peeked = append(p.peeked, p.scan())
	}
	return p.peeked[0]
}

func (p *attrParser) errorf(pos token.Position, format string, args ...interface{}) *ParseError {
	if p.err != nil {
		// scanner errors take precedence since they happen first
		return p.err
	}
	p.err = &ParseError{err: fmt.Errorf(format, args...), pos: pos}
	return p.err
}

func (p *attrParser) expectEOF() error {
	if t := p.next(); t.r != scanner.EOF {
		return p.errorf(t.pos, "unexpected %s", t)
	}
	if p.err != nil {
		return p.err
	}
	return nil
}

func (p *attrParser) parseAttribute() (*Attribute, error) {
	t := p.next()
	if t.r != '@' {
		return nil, p.errorf(t.pos, "expected '@', got %s", t)
	}
	m, err := p.parseMeta()
	if err != nil {
		return nil, err
	}
	return &Attribute{Meta: m, Pos: t.pos}, nil
}

func (p *attrParser) parsePath() (Path, error) {
	t := p.next()
	if t.r != scanner.Ident {
		return Path{}, p.errorf(t.pos, "expected identifier, got %s", t)
	}
	path := Path{Segments: []string{t.text}, Pos: t.pos}
	for p.peek().r == '.' {
		p.next()
		t = p.next()
		if t.r != scanner.Ident {
			return Path{}, p.errorf(t.pos, "expected identifier after '.', got %s", t)
		}
		path.Segments = append(path.Segments, t.text)
	}
	return path, nil
}

func (p *attrParser) parseMeta() (*Meta, error) {
	path, err := p.parsePath()
	if err != nil {
		return nil, err
	}
	switch p.peek().r {
	case '=':
		p.next()
		t := p.next()
		if !t.isLiteralStart() {
			return nil, p.errorf(t.pos, "expected literal after '=', got %s", t)
		}
		lit, err := p.parseLiteral(t)
		if err != nil {
			return nil, err
		}
		return &Meta{Kind: NameValueMeta, Path: path, Lit: lit}, nil
	case '(':
		p.next()
		nested, err := p.parseNested()
		if err != nil {
			return nil, err
		}
		return &Meta{Kind: ListMeta, Path: path, Nested: nested}, nil
	default:
		return &Meta{Kind: PathMeta, Path: path}, nil
	}
}

func (p *attrParser) parseNested() ([]Nested, error) {
	nested := []Nested{}
	for {
		t := p.peek()
		if t.r == ')' {
			p.next()
			return nested, nil
		}
		var n Nested
		if t.isLiteralStart() && !(t.r == scanner.Ident && t.text == "b" && !p.isBytePrefix(t)) {
			lit, err := p.parseLiteral(p.next())
			if err != nil {
				return nil, err
			}
			n.Lit = lit
		} else {
			m, err := p.parseMeta()
			if err != nil {
				return nil, err
			}
			n.Meta = m
		}
		nested = append(nested, n)

		switch t := p.next(); t.r {
		case ',':
		case ')':
			return nested, nil
		default:
			return nil, p.errorf(t.pos, "expected ',' or ')', got %s", t)
		}
	}
}

// isBytePrefix reports whether the given "b" identifier, which must be the
// next token, is immediately followed by a string or rune literal.
func (p *attrParser) isBytePrefix(b tok) bool {
	if len(p.peeked) < 2 {
		p.peeked = append(p.peeked, p.scan())
	}
	n := p.peeked[1]
	return (n.r == scanner.String || n.r == scanner.Char) && n.pos.Offset == b.pos.Offset+1
}

func (p *attrParser) parseLiteral(t tok) (*Literal, error) {
	switch t.r {
	case '-':
		n := p.next()
		if n.r != scanner.Int && n.r != scanner.Float {
			return nil, p.errorf(n.pos, "expected number after '-', got %s", n)
		}
		lit, err := p.parseLiteral(n)
		if err != nil {
			return nil, err
		}
		lit.Val = constant.UnaryOp(token.SUB, lit.Val, 0)
		lit.Pos = t.pos
		return lit, nil

	case scanner.Int:
		return p.makeLiteral(IntLit, t, token.INT)

	case scanner.Float:
		return p.makeLiteral(FloatLit, t, token.FLOAT)

	case scanner.Char:
		return p.makeLiteral(CharLit, t, token.CHAR)

	case scanner.String, scanner.RawString:
		return p.makeLiteral(StrLit, t, token.STRING)

	case scanner.Ident:
		switch t.text {
		case "true", "false":
			return &Literal{Kind: BoolLit, Val: constant.MakeBool(t.text == "true"), Pos: t.pos}, nil
		case "b":
			n := p.peek()
			if n.pos.Offset != t.pos.Offset+1 {
				break
			}
			switch n.r {
			case scanner.String:
				p.next()
				lit, err := p.makeLiteral(ByteStrLit, n, token.STRING)
				if err != nil {
					return nil, err
				}
				lit.Pos = t.pos
				return lit, nil
			case scanner.Char:
				p.next()
				lit, err := p.makeLiteral(ByteLit, n, token.CHAR)
				if err != nil {
					return nil, err
				}
				if v, ok := constant.Int64Val(lit.Val); !ok || v > 0xff {
					return nil, p.errorf(n.pos, "byte literal %s out of range", n.text)
				}
				lit.Pos = t.pos
				return lit, nil
			}
		}
	}
	return nil, p.errorf(t.pos, "expected literal, got %s", t)
}

func (p *attrParser) makeLiteral(kind LitKind, t tok, gotok token.Token) (*Literal, error) {
	v := constant.MakeFromLiteral(t.text, gotok, 0)
	if v.Kind() == constant.Unknown {
		return nil, p.errorf(t.pos, "malformed %s literal %s", kind, t.text)
	}
	return &Literal{Kind: kind, Val: v, Pos: t.pos}, nil
}
