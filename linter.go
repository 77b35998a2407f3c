package attrdef

import (
	"go/ast"
	"go/token"

	"github.com/jhump/attrdef/parser"
)

// Decl is a type declaration and its attributes.
type Decl struct {
	Name  string
	Pos   token.Position
	Attrs []*parser.Attribute
	// IsStruct is false for any type that is not a struct. Such types have
	// no fields.
	IsStruct bool
	Fields   []*FieldDecl
}

// FieldDecl is a field in a struct and its attributes.
type FieldDecl struct {
	Name  string
	Pos   token.Position
	Attrs []*parser.Attribute
	Type  ast.Expr
}

// StructLinter validates the attributes of a struct type. The attributes on
// the type itself are checked against one collection of definitions and the
// attributes on each field against another.
type StructLinter struct {
	StructDefs *Defs
	FieldDefs  *Defs
}

// NewStructLinter creates a linter from the given collections. A nil
// collection is the same as EmptyDefs().
func NewStructLinter(structDefs, fieldDefs *Defs) *StructLinter {
	if structDefs == nil {
		structDefs = EmptyDefs()
	}
	if fieldDefs == nil {
		fieldDefs = EmptyDefs()
	}
	return &StructLinter{StructDefs: structDefs, FieldDefs: fieldDefs}
}

// Validate checks the attributes of the given declaration and of its fields,
// in order, adding any problems to diags. If the declaration is not a struct,
// that is reported and its fields are not checked.
func (l *StructLinter) Validate(decl *Decl, diags *Diagnostics) {
	saved := diags.Fallback
	defer func() {
		diags.Fallback = saved
	}()

	diags.Fallback = decl.Pos
	l.StructDefs.Validate(decl.Attrs, diags)

	if !decl.IsStruct {
		diags.Errorf(decl.Pos, ErrStructuralMismatch, "%s is not a struct", decl.Name)
		return
	}

	for _, fld := range decl.Fields {
		diags.Fallback = fld.Pos
		l.FieldDefs.Validate(fld.Attrs, diags)
	}
}
