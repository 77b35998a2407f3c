package processor

import (
	"bytes"
	"errors"
	"go/ast"
	goparser "go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/tools/go/loader"

	"github.com/jhump/attrdef"
)

func TestExtractAttributes(t *testing.T) {
	src := `package foo

// Foo has text before its attributes.
// Contact foo@example.com for details.
//
// @foo(a = 1, b)
// @bar
type Foo struct{}

/* Bar uses a block comment.
   @baz("x") */
type Bar struct{}

// Baz has no attributes.
type Baz struct{}
`
	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, "test.go", src, goparser.ParseComments)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	docs := map[string]*ast.CommentGroup{}
	for _, decl := range file.Decls {
		gen := decl.(*ast.GenDecl)
		docs[gen.Specs[0].(*ast.TypeSpec).Name.Name] = gen.Doc
	}

	attrs, err := extractAttributes(fset, docs["Foo"])
	if err != nil {
		t.Fatalf("failed to extract: %v", err)
	}
	if len(attrs) != 2 || attrs[0].String() != "@foo(a = 1, b)" || attrs[1].String() != "@bar" {
		t.Fatalf("wrong attributes: %v", attrs)
	}

	attrs, err = extractAttributes(fset, docs["Bar"])
	if err != nil {
		t.Fatalf("failed to extract: %v", err)
	}
	if len(attrs) != 1 || attrs[0].String() != `@baz("x")` {
		t.Fatalf("wrong attributes: %v", attrs)
	}
	if pos := attrs[0].Pos; pos.Line != 11 || pos.Column != 4 {
		t.Errorf("wrong position: %v", pos)
	}

	attrs, err = extractAttributes(fset, docs["Baz"])
	if err != nil || attrs != nil {
		t.Errorf("expecting no attributes, got %v, %v", attrs, err)
	}
}

func TestExtractAttributes_Positions(t *testing.T) {
	src := `package foo

// Foo is documented.
//
// @foo(a = 1,
//      b = "two")
// @bar
type Foo struct{}
`
	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, "test.go", src, goparser.ParseComments)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	doc := file.Decls[0].(*ast.GenDecl).Doc
	attrs, err := extractAttributes(fset, doc)
	if err != nil {
		t.Fatalf("failed to extract: %v", err)
	}
	if len(attrs) != 2 {
		t.Fatalf("expecting 2 attributes, got %d", len(attrs))
	}
	foo := attrs[0].Meta
	if pos := attrs[0].Pos; pos.Filename != "test.go" || pos.Line != 5 || pos.Column != 4 {
		t.Errorf("wrong position for @foo: %v", pos)
	}
	b := foo.Nested[1].Meta
	if pos := b.Lit.Pos; pos.Line != 6 || pos.Column != 13 {
		t.Errorf("wrong position for literal: %v", pos)
	}
	if pos := attrs[1].Pos; pos.Line != 7 || pos.Column != 4 {
		t.Errorf("wrong position for @bar: %v", pos)
	}
}

func TestExtractAttributes_SyntaxError(t *testing.T) {
	src := `package foo

// @foo(a = )
type Foo struct{}
`
	fset := token.NewFileSet()
	file, err := goparser.ParseFile(fset, "test.go", src, goparser.ParseComments)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	_, err = extractAttributes(fset, file.Decls[0].(*ast.GenDecl).Doc)
	if !errors.Is(err, attrdef.ErrMalformedSyntax) {
		t.Fatalf("expecting malformed syntax, got %v", err)
	}
	var ewp *attrdef.ErrorWithPosition
	if !errors.As(err, &ewp) {
		t.Fatalf("expecting error with position, got %T", err)
	}
	if pos := ewp.Pos(); pos.Line != 3 || pos.Filename != "test.go" {
		t.Errorf("wrong position: %v", pos)
	}
}

const packageSource = `package foo

// Options are derived.
//
// @attrdef()
type Options struct {
	Name string
	// @attrdef(rename = "max")
	Limit *int32
}

// Ignored has no attributes so it is not derived.
type Ignored struct {
	Size int
}

// @notes(this is not valid syntax
type Notes int
`

type bufferCloser struct {
	*bytes.Buffer
}

func (bufferCloser) Close() error { return nil }

func executeSource(t *testing.T, src string, procs ...Processor) map[string]*bytes.Buffer {
	t.Helper()
	dir := t.TempDir()
	filename := filepath.Join(dir, "foo.go")
	if err := os.WriteFile(filename, []byte(src), 0666); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}
	outputs := map[string]*bytes.Buffer{}
	logger := zerolog.New(io.Discard)
	cfg := Config{
		CreatePkgs: []loader.PkgSpec{{Path: "example.com/foo", Filenames: []string{filename}}},
		Processors: procs,
		OutputFactory: func(path string) (io.WriteCloser, error) {
			buf := &bytes.Buffer{}
			outputs[path] = buf
			return bufferCloser{buf}, nil
		},
		Logger: &logger,
	}
	if err := cfg.Execute(); err != nil {
		t.Fatalf("failed to execute: %v", err)
	}
	return outputs
}

func TestExecute_Context(t *testing.T) {
	var ctx *Context
	executeSource(t, packageSource, func(c *Context, _ OutputFactory) error {
		ctx = c
		return nil
	})
	if ctx == nil {
		t.Fatalf("processor was not invoked")
	}
	if len(ctx.Types()) != 3 {
		t.Fatalf("expecting 3 types, got %d", len(ctx.Types()))
	}
	// 3 types, 2 fields in Options, 1 field in Ignored
	if ctx.NumElements() != 6 {
		t.Errorf("expecting 6 elements, got %d", ctx.NumElements())
	}
	opts := ctx.LookupType("Options")
	if opts == nil || !opts.IsStruct() || !opts.HasAttribute(Namespace) {
		t.Fatalf("wrong element for Options: %+v", opts)
	}
	if len(opts.Children) != 2 || opts.Children[1].Name != "Limit" || opts.Children[1].Parent != opts {
		t.Errorf("wrong fields for Options: %v", opts.Children)
	}
	if opts.Obj == nil || opts.Obj.Name() != "Options" {
		t.Errorf("Options has wrong object: %v", opts.Obj)
	}
	if ctx.GetElement(0) != opts {
		t.Errorf("types should precede their fields")
	}
	notes := ctx.LookupType("Notes")
	if notes == nil || notes.IsStruct() || notes.Err == nil {
		t.Errorf("Notes should record its syntax error: %+v", notes)
	}
	if elems := ctx.ElementsWithAttribute(Namespace); len(elems) != 2 {
		t.Errorf("expecting 2 elements with attrdef attributes, got %d", len(elems))
	}
	if ctx.LookupType("Missing") != nil {
		t.Errorf("Missing should not be found")
	}
}

func TestExecute_DeriveProcessor(t *testing.T) {
	outputs := executeSource(t, packageSource, DeriveProcessor())
	buf := outputs["example.com/foo/foo.attrdef.go"]
	if buf == nil {
		t.Fatalf("no output written: %v", outputs)
	}
	src := buf.String()
	for _, e := range []string{"OptionsFromAttributes", `"options", "max", false`, `"options", "name", true`} {
		if !strings.Contains(src, e) {
			t.Errorf("generated code does not contain %q:\n%s", e, src)
		}
	}
	if strings.Contains(src, "Ignored") {
		t.Errorf("generated code should not include Ignored:\n%s", src)
	}
}

func TestSelectTypes(t *testing.T) {
	executeSource(t, packageSource, func(ctx *Context, _ OutputFactory) error {
		elems, err := SelectTypes(ctx)
		if err != nil {
			t.Fatalf("failed to select: %v", err)
		}
		if len(elems) != 1 || elems[0].Name != "Options" {
			t.Errorf("wrong types selected: %v", elems)
		}
		elems, err = SelectTypes(ctx, "Ignored", "Options")
		if err != nil {
			t.Fatalf("failed to select: %v", err)
		}
		if len(elems) != 2 || elems[0].Name != "Ignored" {
			t.Errorf("wrong types selected: %v", elems)
		}
		if _, err := SelectTypes(ctx, "Missing"); err == nil {
			t.Errorf("expecting an error for a missing type")
		}
		return nil
	})
}

const malformedSource = `package foo

// @attrdef(rename = )
type Options struct{ Name string }

// @other(x = )
type Unrelated struct{ Name string }
`

func TestSelectTypes_MalformedAttribute(t *testing.T) {
	executeSource(t, malformedSource, func(ctx *Context, _ OutputFactory) error {
		elems, err := SelectTypes(ctx)
		if err != nil {
			t.Fatalf("failed to select: %v", err)
		}
		if len(elems) != 1 || elems[0].Name != "Options" {
			t.Fatalf("wrong types selected: %v", elems)
		}
		if !errors.Is(elems[0].Err, attrdef.ErrMalformedSyntax) {
			t.Errorf("expecting malformed syntax error, got %v", elems[0].Err)
		}
		return nil
	})

	dir := t.TempDir()
	filename := filepath.Join(dir, "foo.go")
	if err := os.WriteFile(filename, []byte(malformedSource), 0666); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}
	cfg := Config{
		CreatePkgs: []loader.PkgSpec{{Path: "example.com/foo", Filenames: []string{filename}}},
		Processors: []Processor{DeriveProcessor()},
		OutputFactory: func(path string) (io.WriteCloser, error) {
			return nil, errors.New("should not be called")
		},
	}
	if err := cfg.Execute(); !errors.Is(err, attrdef.ErrMalformedSyntax) {
		t.Errorf("expecting malformed syntax error, got %v", err)
	}
}

func TestMentionsAttribute(t *testing.T) {
	testCases := map[string]bool{
		"// @attrdef(rename = )":   true,
		"//   @attrdef":            true,
		"/* @attrdef(x */":         true,
		"// @attrdefs(x = 1)":      false,
		"// see @attrdef for more": false,
		"// @other(x = )":          false,
	}
	for text, expected := range testCases {
		e := &Element{Doc: &ast.CommentGroup{List: []*ast.Comment{{Text: text}}}}
		if actual := e.mentionsAttribute("attrdef"); actual != expected {
			t.Errorf("%q: expecting %v, got %v", text, expected, actual)
		}
	}
	if (&Element{}).mentionsAttribute("attrdef") {
		t.Errorf("element without doc should not mention any attribute")
	}
}

func TestDeriveProcessor_Errors(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "foo.go")
	if err := os.WriteFile(filename, []byte(packageSource), 0666); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}
	for _, name := range []string{"Ignored", "Notes"} {
		cfg := Config{
			CreatePkgs: []loader.PkgSpec{{Path: "example.com/foo", Filenames: []string{filename}}},
			Processors: []Processor{DeriveProcessor(name)},
			OutputFactory: func(path string) (io.WriteCloser, error) {
				return nil, errors.New("should not be called")
			},
		}
		if err := cfg.Execute(); err == nil {
			t.Errorf("%s: expecting an error", name)
		}
	}
}

func TestEmbeddedName(t *testing.T) {
	testCases := map[string]string{
		"Foo":              "Foo",
		"*Foo":             "Foo",
		"bar.Foo":          "Foo",
		"*bar.Foo":         "Foo",
		"Foo[int]":         "Foo",
		"Foo[int, string]": "Foo",
	}
	for src, expected := range testCases {
		expr, err := goparser.ParseExpr(src)
		if err != nil {
			t.Fatalf("failed to parse %q: %v", src, err)
		}
		if actual := embeddedName(expr); actual != expected {
			t.Errorf("embeddedName(%q): expecting %q, got %q", src, expected, actual)
		}
	}
}
