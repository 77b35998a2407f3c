package parser

import (
	"bytes"
	"fmt"
	"go/constant"
	"go/token"
	"strconv"
	"strings"
)

// LitKind identifies the kind of a literal value.
type LitKind int

const (
	// StrLit is a string literal, interpreted or raw.
	StrLit LitKind = iota + 1
	// ByteStrLit is a byte string literal, such as b"abc".
	ByteStrLit
	// ByteLit is a single byte literal, such as b'a'.
	ByteLit
	// CharLit is a rune literal, such as 'a'.
	CharLit
	// IntLit is an integer literal.
	IntLit
	// FloatLit is a floating point literal.
	FloatLit
	// BoolLit is true or false.
	BoolLit
)

func (k LitKind) String() string {
	switch k {
	case StrLit:
		return "string"
	case ByteStrLit:
		return "byte string"
	case ByteLit:
		return "byte"
	case CharLit:
		return "char"
	case IntLit:
		return "int"
	case FloatLit:
		return "float"
	case BoolLit:
		return "bool"
	default:
		return fmt.Sprintf("?%d?", int(k))
	}
}

// Literal is a literal value. Strings and byte strings hold constant string
// values; bytes, chars and ints hold constant ints.
type Literal struct {
	Kind LitKind
	Val  constant.Value
	Pos  token.Position
}

// NewStringLiteral returns a string literal with no position.
func NewStringLiteral(s string) *Literal {
	return &Literal{Kind: StrLit, Val: constant.MakeString(s)}
}

// NewBytesLiteral returns a byte string literal with no position.
func NewBytesLiteral(b []byte) *Literal {
	return &Literal{Kind: ByteStrLit, Val: constant.MakeString(string(b))}
}

// NewByteLiteral returns a byte literal with no position.
func NewByteLiteral(b byte) *Literal {
	return &Literal{Kind: ByteLit, Val: constant.MakeInt64(int64(b))}
}

// NewCharLiteral returns a rune literal with no position.
func NewCharLiteral(r rune) *Literal {
	return &Literal{Kind: CharLit, Val: constant.MakeInt64(int64(r))}
}

// NewIntLiteral returns an integer literal with no position.
func NewIntLiteral(i int64) *Literal {
	return &Literal{Kind: IntLit, Val: constant.MakeInt64(i)}
}

// NewFloatLiteral returns a float literal with no position. The value is
// formatted with the given bit size and re-parsed so that the literal is the
// shortest decimal that round-trips to a float of that size.
func NewFloatLiteral(f float64, bitSize int) *Literal {
	return &Literal{Kind: FloatLit, Val: constant.MakeFromLiteral(formatFloat(f, bitSize), token.FLOAT, 0)}
}

// NewBoolLiteral returns a bool literal with no position.
func NewBoolLiteral(b bool) *Literal {
	return &Literal{Kind: BoolLit, Val: constant.MakeBool(b)}
}

func formatFloat(f float64, bitSize int) string {
	s := strconv.FormatFloat(f, 'g', -1, bitSize)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// Equal reports whether the two literals have the same kind and value.
// Positions are ignored.
func (l *Literal) Equal(o *Literal) bool {
	if l == nil || o == nil {
		return l == o
	}
	if l.Kind != o.Kind {
		return false
	}
	return constant.Compare(l.Val, token.EQL, o.Val)
}

// String returns the literal in the syntax accepted by ParseLiteral.
func (l *Literal) String() string {
	switch l.Kind {
	case StrLit:
		return strconv.Quote(constant.StringVal(l.Val))
	case ByteStrLit:
		return "b" + quoteBytes(constant.StringVal(l.Val))
	case ByteLit:
		v, _ := constant.Int64Val(l.Val)
		return "b" + strconv.QuoteRuneToASCII(rune(v))
	case CharLit:
		v, _ := constant.Int64Val(l.Val)
		return strconv.QuoteRune(rune(v))
	case IntLit:
		return l.Val.ExactString()
	case FloatLit:
		f, _ := constant.Float64Val(l.Val)
		return formatFloat(f, 64)
	case BoolLit:
		return strconv.FormatBool(constant.BoolVal(l.Val))
	default:
		return l.Val.String()
	}
}

func quoteBytes(s string) string {
	var buf bytes.Buffer
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case c >= 0x20 && c < 0x7f:
			buf.WriteByte(c)
		default:
			fmt.Fprintf(&buf, `\x%02x`, c)
		}
	}
	buf.WriteByte('"')
	return buf.String()
}

// Path is a possibly dotted identifier, such as "foo" or "foo.bar".
type Path struct {
	Segments []string
	Pos      token.Position
}

// NewPath returns a path with the given segments and no position.
func NewPath(segments ...string) Path {
	return Path{Segments: segments}
}

// IsIdent reports whether the path is the single identifier name.
func (p Path) IsIdent(name string) bool {
	return len(p.Segments) == 1 && p.Segments[0] == name
}

func (p Path) String() string {
	return strings.Join(p.Segments, ".")
}

// MetaKind identifies the shape of a Meta.
type MetaKind int

const (
	// PathMeta is a bare path, such as "foo".
	PathMeta MetaKind = iota + 1
	// ListMeta is a path followed by a parenthesized list, such as
	// "foo(bar = 1, baz)".
	ListMeta
	// NameValueMeta is a path and a value, such as `foo = "bar"`.
	NameValueMeta
)

func (k MetaKind) String() string {
	switch k {
	case PathMeta:
		return "path"
	case ListMeta:
		return "list"
	case NameValueMeta:
		return "name-value"
	default:
		return fmt.Sprintf("?%d?", int(k))
	}
}

// Meta is the content of an attribute or of an element in an attribute's
// list. Nested is only used by ListMeta and Lit only by NameValueMeta.
type Meta struct {
	Kind   MetaKind
	Path   Path
	Nested []Nested
	Lit    *Literal
}

// NewPathMeta returns a bare path meta.
func NewPathMeta(path string) *Meta {
	return &Meta{Kind: PathMeta, Path: NewPath(path)}
}

// NewNameValueMeta returns a meta of the form "path = lit".
func NewNameValueMeta(path string, lit *Literal) *Meta {
	return &Meta{Kind: NameValueMeta, Path: NewPath(path), Lit: lit}
}

// NewListMeta returns a meta of the form "path(nested...)".
func NewListMeta(path string, nested ...Nested) *Meta {
	return &Meta{Kind: ListMeta, Path: NewPath(path), Nested: nested}
}

// IsPath reports whether m is a bare path.
func (m *Meta) IsPath() bool { return m.Kind == PathMeta }

// IsList reports whether m has a parenthesized list.
func (m *Meta) IsList() bool { return m.Kind == ListMeta }

// IsNameValue reports whether m is of the form "name = literal".
func (m *Meta) IsNameValue() bool { return m.Kind == NameValueMeta }

// Pos returns the position of the start of the meta.
func (m *Meta) Pos() token.Position {
	return m.Path.Pos
}

func (m *Meta) String() string {
	var buf bytes.Buffer
	m.writeTo(&buf)
	return buf.String()
}

func (m *Meta) writeTo(buf *bytes.Buffer) {
	buf.WriteString(m.Path.String())
	switch m.Kind {
	case NameValueMeta:
		buf.WriteString(" = ")
		buf.WriteString(m.Lit.String())
	case ListMeta:
		buf.WriteByte('(')
		for i, n := range m.Nested {
			if i > 0 {
				buf.WriteString(", ")
			}
			if n.Meta != nil {
				n.Meta.writeTo(buf)
			} else {
				buf.WriteString(n.Lit.String())
			}
		}
		buf.WriteByte(')')
	}
}

// Nested is one element of a list meta: either a meta or a bare literal.
type Nested struct {
	Meta *Meta
	Lit  *Literal
}

// Pos returns the position of the element.
func (n Nested) Pos() token.Position {
	if n.Meta != nil {
		return n.Meta.Pos()
	}
	return n.Lit.Pos
}

// Attribute is a parsed "@meta" attribute.
type Attribute struct {
	Meta *Meta
	// Pos is the position of the leading '@'.
	Pos token.Position
}

// NewAttribute returns an attribute with the given content and no position.
func NewAttribute(m *Meta) *Attribute {
	return &Attribute{Meta: m}
}

func (a *Attribute) String() string {
	return "@" + a.Meta.String()
}

// AdjustPositions rewrites the positions of the given attributes, and of
// everything in them, using the given function. This is used when attributes
// are parsed from a fragment of a file, such as a comment, so that positions
// are relative to the whole file.
func AdjustPositions(attrs []*Attribute, adjust func(token.Position) token.Position) {
	for _, a := range attrs {
		a.Pos = adjust(a.Pos)
		adjustMeta(a.Meta, adjust)
	}
}

func adjustMeta(m *Meta, adjust func(token.Position) token.Position) {
	m.Path.Pos = adjust(m.Path.Pos)
	if m.Lit != nil {
		m.Lit.Pos = adjust(m.Lit.Pos)
	}
	for _, n := range m.Nested {
		if n.Meta != nil {
			adjustMeta(n.Meta, adjust)
		} else {
			n.Lit.Pos = adjust(n.Lit.Pos)
		}
	}
}
