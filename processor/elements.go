package processor

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jhump/attrdef"
	"github.com/jhump/attrdef/parser"
)

// ElementKind indicates the kind of an Element.
type ElementKind int

const (
	// TypeElement is a top-level type declaration.
	TypeElement ElementKind = iota
	// FieldElement is a field of a top-level struct type.
	FieldElement
)

func (k ElementKind) String() string {
	switch k {
	case TypeElement:
		return "type"
	case FieldElement:
		return "field"
	default:
		return "?"
	}
}

// Element is a type, or a field in a struct type, and its attributes.
type Element struct {
	Kind ElementKind
	Name string
	Pos  token.Position
	// Attrs holds the attributes from the element's doc comment.
	Attrs []*parser.Attribute
	// Err is the error, if any, encountered extracting attributes. For a
	// type, this also includes errors extracting attributes for its fields.
	Err error

	File *ast.File
	// Doc is the doc comment of the element, if any.
	Doc *ast.CommentGroup
	// Spec is the declaration of a type element.
	Spec *ast.TypeSpec
	// Field is the declaration of a field element. If a declaration names
	// more than one field, they share the same *ast.Field.
	Field *ast.Field
	// Obj is the type-checked object for the element. It is nil for
	// embedded fields.
	Obj types.Object

	Parent   *Element
	Children []*Element

	isStruct bool
}

// IsStruct returns true if the element is a struct type.
func (e *Element) IsStruct() bool {
	return e.isStruct
}

// HasAttribute returns true if the element has an attribute with the given
// path.
func (e *Element) HasAttribute(path string) bool {
	for _, a := range e.Attrs {
		if a.Meta.Path.String() == path {
			return true
		}
	}
	return false
}

// mentionsAttribute returns true if a line of the element's doc comment starts
// with an attribute with the given path, even if that attribute could not be
// parsed.
func (e *Element) mentionsAttribute(path string) bool {
	if e.Doc == nil {
		return false
	}
	prefix := "@" + path
	for _, c := range e.Doc.List {
		txt := strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(c.Text, "//"), "/*"), "*/")
		for _, line := range strings.Split(txt, "\n") {
			line = strings.TrimLeft(strings.TrimSpace(line), "*")
			line = strings.TrimSpace(line)
			if !strings.HasPrefix(line, prefix) {
				continue
			}
			rest := line[len(prefix):]
			if rest == "" {
				return true
			}
			r, _ := utf8.DecodeRuneInString(rest)
			if r != '_' && r != '.' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return true
			}
		}
	}
	return false
}

// Decl returns the declaration of a type element, for use with an
// attrdef.StructLinter. It returns nil for field elements.
func (e *Element) Decl() *attrdef.Decl {
	if e.Kind != TypeElement {
		return nil
	}
	decl := &attrdef.Decl{
		Name:     e.Name,
		Pos:      e.Pos,
		Attrs:    e.Attrs,
		IsStruct: e.isStruct,
	}
	for _, c := range e.Children {
		decl.Fields = append(decl.Fields, &attrdef.FieldDecl{
			Name:  c.Name,
			Pos:   c.Pos,
			Attrs: c.Attrs,
			Type:  c.Field.Type,
		})
	}
	return decl
}

// NumElements returns the number of elements in the package: all types and
// the fields of all struct types.
func (c *Context) NumElements() int {
	return len(c.allElements)
}

// GetElement returns the element at the given index. Types precede their
// fields and are otherwise in source order.
func (c *Context) GetElement(index int) *Element {
	return c.allElements[index]
}

// Types returns the type elements in the package, in source order.
func (c *Context) Types() []*Element {
	return c.types
}

// LookupType returns the type element with the given name, or nil if the
// package has no such type.
func (c *Context) LookupType(name string) *Element {
	return c.typesByName[name]
}

// ElementsWithAttribute returns the elements with an attribute whose path is
// the given path.
func (c *Context) ElementsWithAttribute(path string) []*Element {
	var elems []*Element
	for _, e := range c.allElements {
		if e.HasAttribute(path) {
			elems = append(elems, e)
		}
	}
	return elems
}
