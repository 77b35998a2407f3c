package processor

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"strings"
	"unicode"

	"github.com/jhump/attrdef"
	"github.com/jhump/attrdef/parser"
)

// Namespace is the attribute path used to configure derived types and their
// fields.
const Namespace = "attrdef"

var (
	// RenameField overrides the namespace of a derived type or the name of a
	// field. By default, these are the snake-case form of the Go names.
	RenameField = attrdef.NewDef(Namespace, "rename", false, attrdef.NoDefault(attrdef.Str))
	// DefaultValueField provides a default value for a field. Its literal
	// must be the kind of the field's type. A field with a default is not
	// required. Pointer fields cannot have a default.
	DefaultValueField = attrdef.NewDef(Namespace, "default_value", false, attrdef.NoDefault(attrdef.Any))

	structDefs = attrdef.NewDefs(RenameField)
	fieldDefs  = attrdef.NewDefs(RenameField, DefaultValueField)

	// StructLint validates the attributes used to configure a derived type.
	StructLint = attrdef.NewStructLinter(structDefs, fieldDefs)
)

// Derived is the model for a struct type from which field definitions are
// derived.
type Derived struct {
	// TypeName is the name of the Go type.
	TypeName string
	// Namespace is the attribute path of all of the type's fields.
	Namespace string
	Pos       token.Position
	Fields    []*DerivedField
}

// DerivedField is the model for one field of a derived type.
type DerivedField struct {
	// GoName is the name of the field in the Go struct.
	GoName string
	// Name is the name of the field in attributes.
	Name     string
	Pos      token.Position
	TypeExpr ast.Expr
	Type     attrdef.Type
	Required bool
	Default  attrdef.DefaultValue
}

// Def returns the field definition for the field.
func (f *DerivedField) Def(namespace string) *attrdef.Def {
	return attrdef.NewDef(namespace, f.Name, f.Required, f.Default)
}

// Defs returns the field definitions for the type's fields.
func (d *Derived) Defs() *attrdef.Defs {
	defs := make([]*attrdef.Def, len(d.Fields))
	for i, f := range d.Fields {
		defs[i] = f.Def(d.Namespace)
	}
	return attrdef.NewDefs(defs...)
}

// Derive validates the attributes of the given type declaration, and of its
// fields, and computes the model for it. The attributes are extracted from the
// given doc comment and from the doc comments of the fields. All problems
// found are returned as an *attrdef.DiagnosticError.
func Derive(fset *token.FileSet, spec *ast.TypeSpec, doc *ast.CommentGroup) (*Derived, error) {
	attrs, err := extractAttributes(fset, doc)
	if err != nil {
		return nil, err
	}
	decl := &attrdef.Decl{
		Name:  spec.Name.Name,
		Pos:   fset.Position(spec.Name.Pos()),
		Attrs: attrs,
	}
	if st, ok := spec.Type.(*ast.StructType); ok {
		decl.IsStruct = true
		for _, fld := range st.Fields.List {
			attrs, err := extractAttributes(fset, fld.Doc)
			if err != nil {
				return nil, err
			}
			if len(fld.Names) == 0 {
				decl.Fields = append(decl.Fields, &attrdef.FieldDecl{
					Name:  embeddedName(fld.Type),
					Pos:   fset.Position(fld.Type.Pos()),
					Attrs: attrs,
					Type:  fld.Type,
				})
				continue
			}
			for _, id := range fld.Names {
				decl.Fields = append(decl.Fields, &attrdef.FieldDecl{
					Name:  id.Name,
					Pos:   fset.Position(id.Pos()),
					Attrs: attrs,
					Type:  fld.Type,
				})
			}
		}
	}
	return DeriveDecl(decl, embeddedFields(spec))
}

// DeriveElement is like Derive but uses the attributes already extracted for
// the given type element.
func DeriveElement(e *Element) (*Derived, error) {
	if e.Kind != TypeElement {
		return nil, fmt.Errorf("%v: %s is a %v, not a type", e.Pos, e.Name, e.Kind)
	}
	if e.Err != nil {
		return nil, e.Err
	}
	return DeriveDecl(e.Decl(), embeddedFields(e.Spec))
}

func embeddedFields(spec *ast.TypeSpec) map[ast.Expr]bool {
	st, ok := spec.Type.(*ast.StructType)
	if !ok {
		return nil
	}
	embedded := map[ast.Expr]bool{}
	for _, fld := range st.Fields.List {
		if len(fld.Names) == 0 {
			embedded[fld.Type] = true
		}
	}
	return embedded
}

// DeriveDecl validates the given declaration and computes the model for it.
// Fields whose type expression is in embedded are reported as unsupported.
func DeriveDecl(decl *attrdef.Decl, embedded map[ast.Expr]bool) (*Derived, error) {
	diags := attrdef.Diagnostics{Fallback: decl.Pos}
	StructLint.Validate(decl, &diags)
	if !decl.IsStruct {
		return nil, diags.Err()
	}

	d := &Derived{
		TypeName:  decl.Name,
		Namespace: toSnakeCase(decl.Name),
		Pos:       decl.Pos,
	}
	if name, ok := checkRename(decl.Attrs, &diags); ok {
		d.Namespace = name
	}

	names := map[string]string{}
	for _, fld := range decl.Fields {
		f := deriveField(fld, embedded[fld.Type], &diags)
		if f == nil {
			continue
		}
		if other, ok := names[f.Name]; ok {
			diags.Errorf(fld.Pos, attrdef.ErrDuplicateField, "fields %s and %s both use name %q", other, fld.Name, f.Name)
			continue
		}
		names[f.Name] = fld.Name
		d.Fields = append(d.Fields, f)
	}

	if err := diags.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

func deriveField(fld *attrdef.FieldDecl, isEmbedded bool, diags *attrdef.Diagnostics) *DerivedField {
	f := &DerivedField{
		GoName:   fld.Name,
		Name:     toSnakeCase(fld.Name),
		Pos:      fld.Pos,
		TypeExpr: fld.Type,
	}
	if name, ok := checkRename(fld.Attrs, diags); ok {
		f.Name = name
	}

	if isEmbedded {
		diags.Errorf(fld.Pos, attrdef.ErrUnsupportedType, "embedded field %s is not allowed", fld.Name)
		return nil
	}
	typ, err := attrdef.Classify(fld.Type)
	if err != nil {
		diags.Add(attrdef.NewErrorWithPosition(fld.Pos, fmt.Errorf("field %s: %w", fld.Name, err)))
		return nil
	}
	f.Type = typ

	lit, _ := DefaultValueField.FindLiteral(fld.Attrs)
	if lit != nil && typ.Optional {
		diags.Errorf(lit.Pos, attrdef.ErrConflictingDefault, "optional fields can't have a default value")
		return nil
	}
	def, err := attrdef.DefaultFromLiteral(typ, lit)
	if err != nil {
		diags.Add(err)
		return nil
	}
	f.Default = def
	// a struct{} flag must be present; only *struct{} can be absent
	f.Required = !typ.Optional && !def.HasValue()
	return f
}

// checkRename returns the value of the rename field, if present and valid.
// An invalid name is reported to diags.
func checkRename(attrs []*parser.Attribute, diags *attrdef.Diagnostics) (string, bool) {
	lit, err := RenameField.FindLiteral(attrs)
	if err != nil || lit == nil || lit.Kind != parser.StrLit {
		// wrong kinds are reported by StructLint
		return "", false
	}
	name := constant.StringVal(lit.Val)
	if !isIdentifier(name) {
		diags.Errorf(lit.Pos, attrdef.ErrInvalidRename, "%q is not a valid identifier", name)
		return "", false
	}
	return name, true
}

// isIdentifier reports whether name can be used as the path of an attribute
// or the name of a field in one. Unlike Go identifiers, keywords are allowed.
func isIdentifier(name string) bool {
	return token.IsIdentifier(name) || token.IsKeyword(name)
}

// toSnakeCase converts a Go name to lower case with words separated by
// underscores. Runs of capitals are kept together as a single word, so
// "HTTPServer" becomes "http_server".
func toSnakeCase(s string) string {
	runes := []rune(s)
	var result []rune
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				result = append(result, '_')
			}
		}
		result = append(result, r)
	}
	return strings.ToLower(string(result))
}
