package attrdef

import (
	"fmt"
	"go/ast"
	goparser "go/parser"
	"go/token"
	"go/types"

	"github.com/jhump/attrdef/parser"
)

// Kind is the kind of literal a field accepts.
type Kind int

const (
	// Any accepts any literal.
	Any Kind = iota
	// Flag accepts no value at all; the field is a bare name, such as
	// "@foo(enabled)". Fields of type struct{} are flags.
	Flag
	// Str accepts string literals. Fields of type string.
	Str
	// ByteStr accepts byte string literals, such as b"abc". Fields of type
	// []byte.
	ByteStr
	// Byte accepts byte literals, such as b'a'. Fields of type byte.
	Byte
	// Char accepts rune literals. Fields of type rune.
	Char
	// I32 accepts integer literals. Fields of type int32.
	I32
	// F32 accepts float literals. Fields of type float32.
	F32
	// Bool accepts true and false. Fields of type bool.
	Bool
)

func (k Kind) String() string {
	switch k {
	case Any:
		return "anything"
	case Flag:
		return "nothing"
	case Str:
		return "string"
	case ByteStr:
		return "byte string"
	case Byte:
		return "byte"
	case Char:
		return "char"
	case I32:
		return "int32"
	case F32:
		return "float32"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("?%d?", int(k))
	}
}

// GoString returns the name of the Kind constant, as it would be referenced
// from another package.
func (k Kind) GoString() string {
	switch k {
	case Any:
		return "attrdef.Any"
	case Flag:
		return "attrdef.Flag"
	case Str:
		return "attrdef.Str"
	case ByteStr:
		return "attrdef.ByteStr"
	case Byte:
		return "attrdef.Byte"
	case Char:
		return "attrdef.Char"
	case I32:
		return "attrdef.I32"
	case F32:
		return "attrdef.F32"
	case Bool:
		return "attrdef.Bool"
	default:
		return fmt.Sprintf("attrdef.Kind(%d)", int(k))
	}
}

// ConstName returns the name of the Kind's exported constant.
func (k Kind) ConstName() string {
	s := k.GoString()
	return s[len("attrdef."):]
}

func (k Kind) litKind() parser.LitKind {
	switch k {
	case Str:
		return parser.StrLit
	case ByteStr:
		return parser.ByteStrLit
	case Byte:
		return parser.ByteLit
	case Char:
		return parser.CharLit
	case I32:
		return parser.IntLit
	case F32:
		return parser.FloatLit
	case Bool:
		return parser.BoolLit
	default:
		return 0
	}
}

// Type describes what a field accepts: its kind and whether a value may be
// absent.
type Type struct {
	Kind     Kind
	Optional bool
}

func (t Type) String() string {
	if t.Optional {
		return "optional " + t.Kind.String()
	}
	return t.Kind.String()
}

// Check verifies that the given literal, which is nil when there is no value,
// is acceptable for t. Any accepts any literal and Flag accepts none. A nil
// literal is also fine when t is optional. Otherwise the literal's kind must
// match t's kind exactly. The returned error wraps ErrKindMismatch.
func (t Type) Check(lit *parser.Literal) error {
	switch {
	case lit != nil && t.Kind == Any:
		return nil
	case lit == nil && t.Kind == Flag:
		return nil
	case lit == nil && t.Optional:
		return nil
	case lit != nil && t.Kind.litKind() == lit.Kind:
		return nil
	case lit != nil:
		return errorf(lit.Pos, ErrKindMismatch, "expected %v, got %v", t.Kind, lit)
	default:
		return errorf(token.Position{}, ErrKindMismatch, "expected %v, got nothing", t.Kind)
	}
}

// Classify determines the Type for a field declared with the given type
// expression. Pointers make a field optional, but a pointer to a pointer is
// not allowed. Returned errors wrap ErrUnsupportedType.
//
// Classification is done on syntax, not on go/types types, because rune and
// int32 (and byte and uint8) are indistinguishable after type-checking.
func Classify(expr ast.Expr) (Type, error) {
	switch e := expr.(type) {
	case *ast.ParenExpr:
		return Classify(e.X)
	case *ast.Ident:
		switch e.Name {
		case "string":
			return Type{Kind: Str}, nil
		case "byte", "uint8":
			return Type{Kind: Byte}, nil
		case "rune":
			return Type{Kind: Char}, nil
		case "int32":
			return Type{Kind: I32}, nil
		case "float32":
			return Type{Kind: F32}, nil
		case "bool":
			return Type{Kind: Bool}, nil
		}
	case *ast.ArrayType:
		if e.Len == nil {
			if elem, ok := e.Elt.(*ast.Ident); ok && (elem.Name == "byte" || elem.Name == "uint8") {
				return Type{Kind: ByteStr}, nil
			}
		}
	case *ast.StructType:
		if e.Fields == nil || len(e.Fields.List) == 0 {
			return Type{Kind: Flag}, nil
		}
	case *ast.StarExpr:
		t, err := Classify(e.X)
		if err != nil {
			return Type{}, err
		}
		if t.Optional {
			return Type{}, unsupportedType(expr)
		}
		t.Optional = true
		return t, nil
	}
	return Type{}, unsupportedType(expr)
}

// ClassifyString is like Classify but parses the given type expression first.
func ClassifyString(src string) (Type, error) {
	expr, err := goparser.ParseExpr(src)
	if err != nil {
		return Type{}, fmt.Errorf("%w: %q: %v", ErrUnsupportedType, src, err)
	}
	return Classify(expr)
}

func unsupportedType(expr ast.Expr) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedType, types.ExprString(expr))
}
