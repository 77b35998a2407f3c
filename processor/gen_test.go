package processor

import (
	"bytes"
	goparser "go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/jhump/gopoet"

	"github.com/jhump/attrdef"
)

func TestGenerateFile(t *testing.T) {
	d, err := derive(t, fooSource, "Foo")
	if err != nil {
		t.Fatalf("failed to derive: %v", err)
	}
	file := GenerateFile("example.com/foo", "foo", []*Derived{d})
	if file.Name != "foo.attrdef.go" {
		t.Errorf("wrong file name: %s", file.Name)
	}

	var buf bytes.Buffer
	if err := gopoet.WriteGoFile(&buf, file); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	src := buf.String()

	gen, err := goparser.ParseFile(token.NewFileSet(), file.Name, src, 0)
	if err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, src)
	}
	if gen.Name.Name != "foo" {
		t.Errorf("wrong package: %s", gen.Name.Name)
	}
	for _, name := range []string{"FooFromAttributes", "FooAttributeDefs", "StripFooAttributes"} {
		if obj := gen.Scope.Lookup(name); obj == nil {
			t.Errorf("generated code is missing func %s", name)
		}
	}
	for _, name := range []string{"fooFieldDefs", "fooNameField", "fooRatioField", "fooHTTPServerField"} {
		if obj := gen.Scope.Lookup(name); obj == nil {
			t.Errorf("generated code is missing var %s", name)
		}
	}

	expected := []string{
		`import "github.com/jhump/attrdef"`,
		`"foo_attr", "title", true`,
		`"foo_attr", "ratio", false`,
		`Float32Default(1.5)`,
		`CharDefault('x')`,
		`FlagDefault()`,
		`NoDefault(attrdef.Str)`,
		`fooHTTPServerField.ExtractValue(attrs, &v.HTTPServer)`,
		`return fooFieldDefs.Strip(attrs)`,
	}
	for _, e := range expected {
		if !strings.Contains(src, e) {
			t.Errorf("generated code does not contain %q:\n%s", e, src)
		}
	}
}

func TestDefaultValueCode(t *testing.T) {
	testCases := []struct {
		def      attrdef.DefaultValue
		expected string
	}{
		{attrdef.NoDefault(attrdef.I32), "NoDefault(attrdef.I32)"},
		{attrdef.FlagDefault(), "FlagDefault()"},
		{attrdef.StringDefault("baz"), `StringDefault("baz")`},
		{attrdef.BytesDefault([]byte("abc")), `BytesDefault([]byte("abc"))`},
		{attrdef.ByteDefault(7), "ByteDefault(7)"},
		{attrdef.Int32Default(-42), "Int32Default(-42)"},
		{attrdef.Float32Default(0.25), "Float32Default(0.25)"},
		{attrdef.BoolDefault(true), "BoolDefault(true)"},
	}
	for _, tc := range testCases {
		format, args := defaultValueCode(tc.def)
		file := gopoet.NewGoFile("test.go", "example.com/foo", "foo")
		file.AddVar(gopoet.NewVar("v").Initialize(format, args...))
		var buf bytes.Buffer
		if err := gopoet.WriteGoFile(&buf, file); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		if !strings.Contains(buf.String(), tc.expected) {
			t.Errorf("expecting code to contain %q:\n%s", tc.expected, buf.String())
		}
	}
}
