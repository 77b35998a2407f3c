package attrdef

import (
	"fmt"
	"go/constant"
	"math"

	"github.com/jhump/attrdef/parser"
)

// DefaultValue is the default for a field. It always has a kind, matching the
// kind of the field, and may or may not have a value. A zero DefaultValue is
// an empty default of kind Any.
type DefaultValue struct {
	kind  Kind
	value interface{}
}

// NoDefault returns an empty default of the given kind.
func NoDefault(k Kind) DefaultValue {
	return DefaultValue{kind: k}
}

// FlagDefault returns the default for flag fields. It never has a value.
func FlagDefault() DefaultValue {
	return DefaultValue{kind: Flag}
}

// StringDefault returns a default of kind Str.
func StringDefault(s string) DefaultValue {
	return DefaultValue{kind: Str, value: s}
}

// BytesDefault returns a default of kind ByteStr.
func BytesDefault(b []byte) DefaultValue {
	if b == nil {
		b = []byte{}
	}
	return DefaultValue{kind: ByteStr, value: b}
}

// ByteDefault returns a default of kind Byte.
func ByteDefault(b byte) DefaultValue {
	return DefaultValue{kind: Byte, value: b}
}

// CharDefault returns a default of kind Char.
func CharDefault(r rune) DefaultValue {
	return DefaultValue{kind: Char, value: r}
}

// Int32Default returns a default of kind I32.
func Int32Default(i int32) DefaultValue {
	return DefaultValue{kind: I32, value: i}
}

// Float32Default returns a default of kind F32.
func Float32Default(f float32) DefaultValue {
	return DefaultValue{kind: F32, value: f}
}

// BoolDefault returns a default of kind Bool.
func BoolDefault(b bool) DefaultValue {
	return DefaultValue{kind: Bool, value: b}
}

// AnyDefault returns a default of kind Any. If lit is nil, the default is
// empty.
func AnyDefault(lit *parser.Literal) DefaultValue {
	if lit == nil {
		return DefaultValue{kind: Any}
	}
	return DefaultValue{kind: Any, value: lit}
}

// DefaultFromLiteral creates a default for a field of the given type from the
// given literal, which may be nil. Kind Any accepts any literal. Kind Flag
// requires that there is no literal. Other kinds accept a nil literal, which
// produces an empty default, or a literal of the matching kind. Integer
// literals must fit in 32 bits for I32 and float literals must be finite as
// a float32 for F32. The returned error wraps
// ErrKindMismatch.
func DefaultFromLiteral(t Type, lit *parser.Literal) (DefaultValue, error) {
	if t.Kind == Any {
		return AnyDefault(lit), nil
	}
	if lit == nil {
		return NoDefault(t.Kind), nil
	}
	if t.Kind == Flag || t.Kind.litKind() != lit.Kind {
		return DefaultValue{}, errorf(lit.Pos, ErrKindMismatch, "expected %v, got %v", t.Kind, lit)
	}
	switch t.Kind {
	case Str:
		return StringDefault(constant.StringVal(lit.Val)), nil
	case ByteStr:
		return BytesDefault([]byte(constant.StringVal(lit.Val))), nil
	case Byte:
		v, ok := constant.Uint64Val(lit.Val)
		if !ok || v > math.MaxUint8 {
			return DefaultValue{}, errorf(lit.Pos, ErrKindMismatch, "byte value %v out of range", lit)
		}
		return ByteDefault(byte(v)), nil
	case Char:
		v, ok := constant.Int64Val(lit.Val)
		if !ok || v < 0 || v > math.MaxInt32 {
			return DefaultValue{}, errorf(lit.Pos, ErrKindMismatch, "char value %v out of range", lit)
		}
		return CharDefault(rune(v)), nil
	case I32:
		v, ok := constant.Int64Val(lit.Val)
		if !ok || v < math.MinInt32 || v > math.MaxInt32 {
			return DefaultValue{}, errorf(lit.Pos, ErrKindMismatch, "int32 value %v out of range", lit)
		}
		return Int32Default(int32(v)), nil
	case F32:
		v, _ := constant.Float32Val(lit.Val)
		if math.IsInf(float64(v), 0) {
			return DefaultValue{}, errorf(lit.Pos, ErrKindMismatch, "float32 value %v out of range", lit)
		}
		return Float32Default(v), nil
	case Bool:
		return BoolDefault(constant.BoolVal(lit.Val)), nil
	}
	return DefaultValue{}, fmt.Errorf("unknown kind %v", t.Kind)
}

// Kind returns the kind of the default.
func (d DefaultValue) Kind() Kind {
	return d.kind
}

// Type returns the Type of fields that this default is suitable for.
func (d DefaultValue) Type(optional bool) Type {
	return Type{Kind: d.kind, Optional: optional}
}

// HasValue returns true if the default carries a value. Flag defaults never
// do.
func (d DefaultValue) HasValue() bool {
	return d.value != nil
}

// Value returns the default value, or nil if there is none. The dynamic type
// of the value depends on the kind: string, []byte, byte, rune, int32,
// float32, bool or, for kind Any, *parser.Literal.
func (d DefaultValue) Value() interface{} {
	return d.value
}

// Literal returns the default as a literal, or nil if there is no value.
func (d DefaultValue) Literal() *parser.Literal {
	if d.value == nil {
		return nil
	}
	switch d.kind {
	case Str:
		return parser.NewStringLiteral(d.value.(string))
	case ByteStr:
		return parser.NewBytesLiteral(d.value.([]byte))
	case Byte:
		return parser.NewByteLiteral(d.value.(byte))
	case Char:
		return parser.NewCharLiteral(d.value.(rune))
	case I32:
		return parser.NewIntLiteral(int64(d.value.(int32)))
	case F32:
		return parser.NewFloatLiteral(float64(d.value.(float32)), 32)
	case Bool:
		return parser.NewBoolLiteral(d.value.(bool))
	case Any:
		l := *d.value.(*parser.Literal)
		return &l
	default:
		return nil
	}
}

func (d DefaultValue) String() string {
	lit := d.Literal()
	if lit == nil {
		return fmt.Sprintf("%v(none)", d.kind)
	}
	return fmt.Sprintf("%v(%v)", d.kind, lit)
}
