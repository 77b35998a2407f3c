package attrdef

import (
	"github.com/jhump/attrdef/parser"
)

// Defs is an ordered collection of field definitions. Usually all of the
// fields share a namespace. Validating with a Defs rejects any entry in one
// of its namespaces that does not correspond to a known field.
type Defs struct {
	defs []*Def
}

var emptyDefs = &Defs{}

// NewDefs returns a collection of the given field definitions.
func NewDefs(defs ...*Def) *Defs {
	return &Defs{defs: defs}
}

// EmptyDefs returns an empty collection. Validating with it accepts all
// attributes since it recognizes no namespaces.
func EmptyDefs() *Defs {
	return emptyDefs
}

// Defs returns the field definitions in the collection.
func (ds *Defs) Defs() []*Def {
	return ds.defs
}

// Len returns the number of field definitions in the collection.
func (ds *Defs) Len() int {
	return len(ds.defs)
}

// Lookup returns the definition for the given field, or nil if the collection
// has none. If more than one definition matches, the last one is returned.
func (ds *Defs) Lookup(path, name string) *Def {
	var found *Def
	for _, d := range ds.defs {
		if d.Path == path && d.Name == name {
			found = d
		}
	}
	return found
}

// Strip removes the entries for all fields in the collection from the given
// attributes. Each definition strips the result of the one before it. See
// Def.Strip.
func (ds *Defs) Strip(attrs []*parser.Attribute) []*parser.Attribute {
	for _, d := range ds.defs {
		attrs = d.Strip(attrs)
	}
	return attrs
}

func (ds *Defs) hasPath(m *parser.Meta) bool {
	for _, d := range ds.defs {
		if d.matchesPath(m) {
			return true
		}
	}
	return false
}

// Validate checks the given attributes against the collection. Each field is
// validated, per Def.Validate. Then every attribute in a namespace of one of
// the fields is checked: it must be a list and every entry in the list must
// be a name-value or bare name of a known field. Problems are added to diags.
func (ds *Defs) Validate(attrs []*parser.Attribute, diags *Diagnostics) {
	for _, d := range ds.defs {
		d.Validate(attrs, diags)
	}

	for _, a := range attrs {
		if !ds.hasPath(a.Meta) {
			continue
		}
		if !a.Meta.IsList() {
			diags.Errorf(a.Meta.Pos(), ErrMalformedShape, "expected a list meta for %v", a.Meta.Path)
			continue
		}
		path := a.Meta.Path.String()
		for _, n := range a.Meta.Nested {
			if n.Meta == nil {
				diags.Errorf(n.Lit.Pos, ErrMalformedShape, "expected meta, got %v", n.Lit)
				continue
			}
			if n.Meta.IsList() {
				diags.Errorf(n.Meta.Pos(), ErrMalformedShape, "expected name-and-value or path meta")
			}
			if ds.Lookup(path, n.Meta.Path.String()) == nil {
				diags.Errorf(n.Meta.Pos(), ErrUnrecognizedField, "%s(%v)", path, n.Meta.Path)
			}
		}
	}
}
