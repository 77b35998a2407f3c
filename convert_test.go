package attrdef

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jhump/attrdef/parser"
)

type testName string

type testUpper string

func (u *testUpper) UnmarshalAttribute(m *parser.Meta) error {
	var s string
	if err := Decode(m, &s); err != nil {
		return err
	}
	*u = testUpper(strings.ToUpper(s))
	return nil
}

func TestDecode(t *testing.T) {
	cases := []struct {
		meta     string
		target   interface{}
		expected interface{}
	}{
		{`x = "abc"`, new(string), "abc"},
		{`x = b"ab\x00"`, new([]byte), []byte("ab\x00")},
		{`x = b'a'`, new(uint8), uint8('a')},
		{`x = 7`, new(int32), int32(7)},
		{`x = -2147483648`, new(int32), int32(-2147483648)},
		{`x = 'λ'`, new(rune), 'λ'},
		{`x = 1.5`, new(float32), float32(1.5)},
		{`x = true`, new(bool), true},
		{`x`, new(struct{}), struct{}{}},
		{`x = "n"`, new(testName), testName("n")},
		{`x = "up"`, new(testUpper), testUpper("UP")},
	}
	for _, c := range cases {
		m, err := parser.ParseMeta(c.meta)
		if err != nil {
			t.Fatalf("%s: failed to parse: %v", c.meta, err)
		}
		if err := Decode(m, c.target); err != nil {
			t.Errorf("%s: unexpected error: %v", c.meta, err)
			continue
		}
		actual := reflect.ValueOf(c.target).Elem().Interface()
		if !reflect.DeepEqual(actual, c.expected) {
			t.Errorf("%s: wrong value: expecting %v, got %v", c.meta, c.expected, actual)
		}
	}
}

func TestDecode_Pointers(t *testing.T) {
	m, err := parser.ParseMeta(`x = 42`)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	var p *int32
	if err := Decode(m, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil || *p != 42 {
		t.Errorf("wrong value: %v", p)
	}
	if err := Decode(nil, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Errorf("absent field should be nil, got %d", *p)
	}

	var lit *parser.Literal
	if err := Decode(m, &lit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lit.Equal(parser.NewIntLiteral(42)) {
		t.Errorf("wrong literal: %v", lit)
	}
	var litVal parser.Literal
	if err := Decode(m, &litVal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !litVal.Equal(parser.NewIntLiteral(42)) {
		t.Errorf("wrong literal: %v", &litVal)
	}
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		meta   string
		target interface{}
		err    error
	}{
		{`x = 1`, new(string), ErrKindMismatch},
		{`x = "abc"`, new([]byte), ErrKindMismatch},
		{`x = 'a'`, new(uint8), ErrKindMismatch},
		{`x = 1.5`, new(int32), ErrKindMismatch},
		{`x = 3000000000`, new(int32), ErrKindMismatch},
		{`x = 1`, new(float32), ErrKindMismatch},
		{`x = 1e39`, new(float32), ErrKindMismatch},
		{`x = 1`, new(bool), ErrKindMismatch},
		{`x`, new(string), ErrUnexpectedValue},
		{`x(a = 1)`, new(int32), ErrUnexpectedValue},
		{`x = 1`, new(struct{}), ErrUnexpectedValue},
		{`x = 1`, new(*struct{}), ErrUnexpectedValue},
		{``, new(string), ErrMissingRequired},
		{``, new(struct{}), ErrMissingRequired},
	}
	for _, c := range cases {
		var m *parser.Meta
		if c.meta != "" {
			var err error
			m, err = parser.ParseMeta(c.meta)
			if err != nil {
				t.Fatalf("%s: failed to parse: %v", c.meta, err)
			}
		}
		err := Decode(m, c.target)
		if !errors.Is(err, c.err) {
			t.Errorf("%s into %T: expecting %v, got %v", c.meta, c.target, c.err, err)
		}
	}
}

func TestDecode_BadTargets(t *testing.T) {
	m, err := parser.ParseMeta(`x = 1`)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	var i int32
	if err := Decode(m, i); err == nil {
		t.Errorf("expecting error for non-pointer target")
	}
	if err := Decode(m, (*int32)(nil)); err == nil {
		t.Errorf("expecting error for nil pointer target")
	}
	var i64 int64
	if err := Decode(m, &i64); err == nil {
		t.Errorf("expecting error for unsupported target type")
	}
	var strs []string
	if err := Decode(m, &strs); err == nil {
		t.Errorf("expecting error for unsupported target type")
	}
}
