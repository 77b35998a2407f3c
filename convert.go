package attrdef

import (
	"fmt"
	"go/constant"
	"go/token"
	"math"
	"reflect"

	"github.com/jhump/attrdef/parser"
)

// Unmarshaler can be implemented by types that know how to decode themselves
// from a field's entry. The given meta is nil when the field is absent and
// has no default.
type Unmarshaler interface {
	UnmarshalAttribute(m *parser.Meta) error
}

// Decode populates the given target with the value in the given meta, which
// is the entry for a field as returned from Def.FindEntry. A nil meta means
// the field is absent.
//
// The given target must be a non-nil pointer. The value to which it points
// is updated to reflect the entry. Supported kinds of targets follow:
//  * string: requires a string literal.
//  * []byte: requires a byte string literal.
//  * uint8: requires a byte literal.
//  * int32: requires an integer literal that fits in 32 bits, or a char
//    literal (since rune and int32 are the same type).
//  * float32: requires a float literal.
//  * bool: requires true or false.
//  * struct{}: a flag; requires a bare path.
//  * parser.Literal: requires a name-value entry with any literal.
//  * pointers to any of the above: the pointer is nil when the field is
//    absent.
//  * types that implement Unmarshaler.
// Named types whose underlying type is one of the above are also supported.
//
// An error wrapping ErrUnexpectedValue is returned when the shape of the
// entry is wrong, such as a flag given a value or a value field given as a
// bare path. An error wrapping ErrKindMismatch is returned when the literal
// is the wrong kind for the target.
func Decode(m *parser.Meta, target interface{}) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr {
		return fmt.Errorf("cannot decode into non-pointer value of type %T", target)
	}
	if rv.IsNil() {
		return fmt.Errorf("cannot decode into nil pointer of type %T", target)
	}
	// clear out existing value
	rv.Elem().Set(reflect.Zero(rv.Elem().Type()))

	return decode(m, rv.Elem())
}

var typeOfUnmarshaler = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
var typeOfLiteral = reflect.TypeOf(parser.Literal{})

func decode(m *parser.Meta, target reflect.Value) error {
	if target.CanAddr() && target.Addr().Type().Implements(typeOfUnmarshaler) {
		return target.Addr().Interface().(Unmarshaler).UnmarshalAttribute(m)
	}

	if target.Kind() == reflect.Ptr {
		if m == nil {
			target.Set(reflect.Zero(target.Type()))
			return nil
		}
		target.Set(reflect.New(target.Type().Elem()))
		return decode(m, target.Elem())
	}

	if target.Kind() == reflect.Struct && target.NumField() == 0 {
		// flag
		if m == nil {
			return errorf(token.Position{}, ErrMissingRequired, "expected flag, got nothing")
		}
		if !m.IsPath() {
			return errorf(m.Pos(), ErrUnexpectedValue, "unexpected value for flag %v", m.Path)
		}
		return nil
	}

	if m == nil {
		return errorf(token.Position{}, ErrMissingRequired, "expected %v, got nothing", target.Type())
	}
	if !m.IsNameValue() {
		return errorf(m.Pos(), ErrUnexpectedValue, "expected named value for %v, got %v meta", m.Path, m.Kind)
	}

	if target.Type() == typeOfLiteral {
		target.Set(reflect.ValueOf(*m.Lit))
		return nil
	}
	return decodeLiteral(m.Lit, target)
}

func decodeLiteral(lit *parser.Literal, target reflect.Value) error {
	mismatch := func(want string) error {
		return errorf(lit.Pos, ErrKindMismatch, "expected %s, got %v", want, lit)
	}

	switch target.Kind() {
	case reflect.String:
		if lit.Kind != parser.StrLit {
			return mismatch("string")
		}
		target.SetString(constant.StringVal(lit.Val))

	case reflect.Slice:
		if target.Type().Elem().Kind() != reflect.Uint8 {
			return fmt.Errorf("cannot decode into value of type %v", target.Type())
		}
		if lit.Kind != parser.ByteStrLit {
			return mismatch("byte string")
		}
		target.SetBytes([]byte(constant.StringVal(lit.Val)))

	case reflect.Uint8:
		if lit.Kind != parser.ByteLit {
			return mismatch("byte")
		}
		v, ok := constant.Uint64Val(lit.Val)
		if !ok || v > math.MaxUint8 {
			return errorf(lit.Pos, ErrKindMismatch, "value %v is out of range for type %v", lit, target.Type())
		}
		target.SetUint(v)

	case reflect.Int32:
		if lit.Kind != parser.IntLit && lit.Kind != parser.CharLit {
			return mismatch("int32")
		}
		v, ok := constant.Int64Val(lit.Val)
		if !ok || v < math.MinInt32 || v > math.MaxInt32 {
			return errorf(lit.Pos, ErrKindMismatch, "value %v is out of range for type %v", lit, target.Type())
		}
		target.SetInt(v)

	case reflect.Float32:
		if lit.Kind != parser.FloatLit {
			return mismatch("float32")
		}
		v, _ := constant.Float32Val(lit.Val)
		if math.IsInf(float64(v), 0) {
			return errorf(lit.Pos, ErrKindMismatch, "value %v is out of range for type %v", lit, target.Type())
		}
		target.SetFloat(float64(v))

	case reflect.Bool:
		if lit.Kind != parser.BoolLit {
			return mismatch("bool")
		}
		target.SetBool(constant.BoolVal(lit.Val))

	default:
		return fmt.Errorf("cannot decode into value of type %v", target.Type())
	}
	return nil
}
