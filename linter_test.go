package attrdef

import (
	"go/ast"
	"go/token"
	"testing"

	"github.com/jhump/attrdef/parser"
)

var (
	testRenameField = NewDef("foo", "rename", false, NoDefault(Str))
	testLinter      = NewStructLinter(NewDefs(testRenameField), testDefs)
)

func TestStructLinter(t *testing.T) {
	declPos := token.Position{Filename: "test.go", Line: 3, Column: 6}
	fieldPos := token.Position{Filename: "test.go", Line: 5, Column: 2}

	cases := []struct {
		name string
		decl *Decl
		errs []error
	}{
		{
			name: "ok",
			decl: &Decl{
				Name:     "Foo",
				Pos:      declPos,
				Attrs:    parser.MustParse(`@foo(rename = "foo")`),
				IsStruct: true,
				Fields: []*FieldDecl{
					{Name: "A", Pos: fieldPos, Attrs: parser.MustParse(`@foo(bar = 1)`), Type: ast.NewIdent("int32")},
					{Name: "B", Pos: fieldPos, Type: ast.NewIdent("string")},
				},
			},
		},
		{
			name: "struct attribute problems",
			decl: &Decl{
				Name:     "Foo",
				Pos:      declPos,
				Attrs:    parser.MustParse(`@foo(rename = 1, bar = 1)`),
				IsStruct: true,
			},
			errs: []error{ErrKindMismatch, ErrUnrecognizedField},
		},
		{
			name: "field attribute problems",
			decl: &Decl{
				Name:     "Foo",
				Pos:      declPos,
				IsStruct: true,
				Fields: []*FieldDecl{
					{Name: "A", Pos: fieldPos, Attrs: parser.MustParse(`@foo(rename = "a")`)},
					{Name: "B", Pos: fieldPos, Attrs: parser.MustParse(`@foo(bar = true)`)},
				},
			},
			errs: []error{ErrUnrecognizedField, ErrKindMismatch},
		},
		{
			name: "not a struct",
			decl: &Decl{
				Name:  "Foo",
				Pos:   declPos,
				Attrs: parser.MustParse(`@foo(rename = 1)`),
				Fields: []*FieldDecl{
					{Name: "A", Pos: fieldPos, Attrs: parser.MustParse(`@foo(fizz)`)},
				},
			},
			errs: []error{ErrKindMismatch, ErrStructuralMismatch},
		},
	}
	for _, c := range cases {
		var diags Diagnostics
		testLinter.Validate(c.decl, &diags)
		checkDiagnostics(t, c.name, &diags, c.errs)
	}
}

func TestStructLinter_FallbackPositions(t *testing.T) {
	structFields := NewDefs(NewDef("foo", "name", true, NoDefault(Str)))
	fieldFields := NewDefs(NewDef("foo", "index", true, NoDefault(I32)))
	linter := NewStructLinter(structFields, fieldFields)

	declPos := token.Position{Filename: "test.go", Line: 3, Column: 6}
	fieldPos1 := token.Position{Filename: "test.go", Line: 4, Column: 2}
	fieldPos2 := token.Position{Filename: "test.go", Line: 5, Column: 2}
	decl := &Decl{
		Name:     "Foo",
		Pos:      declPos,
		IsStruct: true,
		Fields: []*FieldDecl{
			{Name: "A", Pos: fieldPos1},
			{Name: "B", Pos: fieldPos2},
		},
	}

	var diags Diagnostics
	linter.Validate(decl, &diags)
	errs := diags.Errors()
	if len(errs) != 3 {
		t.Fatalf("expecting 3 errors, got %d: %v", len(errs), diags.Err())
	}
	for i, expected := range []token.Position{declPos, fieldPos1, fieldPos2} {
		if pos := errs[i].Pos(); pos != expected {
			t.Errorf("error #%d: wrong position: expecting %v, got %v", i+1, expected, pos)
		}
	}
	if diags.Fallback.IsValid() {
		t.Errorf("fallback position should be restored")
	}
}

func TestStructLinter_NilDefs(t *testing.T) {
	linter := NewStructLinter(nil, nil)
	var diags Diagnostics
	linter.Validate(&Decl{Name: "Foo", IsStruct: true, Attrs: parser.MustParse(`@foo(bar)`)}, &diags)
	if err := diags.Err(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
