package attrdef

import (
	"fmt"
	"go/token"

	"github.com/jhump/attrdef/parser"
)

// Def defines a single field. Fields are named entries in the list of an
// attribute whose path is the field's namespace. For example, the attribute
// below has values for two fields, "bar" and "baz", in the namespace "foo":
//
//   @foo(bar = 1, baz)
//
// A required field never has a default. Defs are created once, usually as
// package variables, and should not be modified.
type Def struct {
	// The namespace of the field.
	Path string
	// The name of the field.
	Name string
	// Whether the field must be present.
	Required bool
	// The default value, used when the field is absent.
	Default DefaultValue
}

// NewDef creates a new field definition.
func NewDef(path, name string, required bool, def DefaultValue) *Def {
	return &Def{Path: path, Name: name, Required: required, Default: def}
}

// Type returns the type of values accepted by this field. The type is
// optional when the field is neither required nor has a default.
func (d *Def) Type() Type {
	return d.Default.Type(!d.Required && !d.Default.HasValue())
}

func (d *Def) String() string {
	return fmt.Sprintf("%s(%s)", d.Path, d.Name)
}

func (d *Def) matchesPath(m *parser.Meta) bool {
	return m.Path.String() == d.Path
}

func (d *Def) matchesName(m *parser.Meta) bool {
	return m.Path.String() == d.Name
}

// FindEntry returns the entry for this field in the given attributes. The
// first matching entry is returned, even if there are others; Validate
// reports duplicates.
//
// If there is no entry and the field is required, an error wrapping
// ErrMissingRequired is returned. If the field is not required but has a
// default value, an entry of the form "name = default" is returned. Otherwise
// the returned entry is nil.
//
// The synthesized entry is keyed by the field name, not the namespace path,
// so that it has the same shape as an explicit entry found in the list.
func (d *Def) FindEntry(attrs []*parser.Attribute) (*parser.Meta, error) {
	for _, a := range attrs {
		if !d.matchesPath(a.Meta) || !a.Meta.IsList() {
			continue
		}
		for _, n := range a.Meta.Nested {
			if n.Meta != nil && d.matchesName(n.Meta) {
				return n.Meta, nil
			}
		}
	}

	if d.Required {
		return nil, errorf(token.Position{}, ErrMissingRequired, "attribute for required field not found: %v", d)
	}
	if lit := d.Default.Literal(); lit != nil {
		return parser.NewNameValueMeta(d.Name, lit), nil
	}
	return nil, nil
}

// FindLiteral is like FindEntry except that it returns the literal value of
// the entry. If the entry is not of the form "name = value", such as a flag,
// nil is returned.
func (d *Def) FindLiteral(attrs []*parser.Attribute) (*parser.Literal, error) {
	m, err := d.FindEntry(attrs)
	if err != nil || m == nil || !m.IsNameValue() {
		return nil, err
	}
	return m.Lit, nil
}

// ExtractValue finds the entry for this field and decodes it into target.
// See Decode for the supported kinds of targets.
func (d *Def) ExtractValue(attrs []*parser.Attribute, target interface{}) error {
	m, err := d.FindEntry(attrs)
	if err != nil {
		return err
	}
	if err := Decode(m, target); err != nil {
		return fmt.Errorf("%v: %w", d, err)
	}
	return nil
}

// Strip returns the given attributes with all entries for this field removed.
// An attribute whose list becomes empty is removed entirely, as is an
// attribute that is just the bare namespace path. The order of the remaining
// attributes and entries is preserved.
//
// The given attributes are not modified. Attributes that are changed are
// copied, so the returned slice may share elements with the given one.
func (d *Def) Strip(attrs []*parser.Attribute) []*parser.Attribute {
	result := make([]*parser.Attribute, 0, len(attrs))
	for _, a := range attrs {
		if stripped := d.stripFrom(a); stripped != nil {
			result = append(result, stripped)
		}
	}
	return result
}

// stripFrom returns nil if the attribute should be removed.
func (d *Def) stripFrom(a *parser.Attribute) *parser.Attribute {
	if !d.matchesPath(a.Meta) {
		return a
	}
	switch a.Meta.Kind {
	case parser.PathMeta:
		return nil
	case parser.ListMeta:
		nested := make([]parser.Nested, 0, len(a.Meta.Nested))
		for _, n := range a.Meta.Nested {
			if n.Meta != nil && d.matchesName(n.Meta) {
				continue
			}
			nested = append(nested, n)
		}
		if len(nested) == 0 {
			return nil
		}
		if len(nested) == len(a.Meta.Nested) {
			return a
		}
		m := *a.Meta
		m.Nested = nested
		return &parser.Attribute{Meta: &m, Pos: a.Pos}
	default:
		return a
	}
}

// Validate checks the entries for this field in the given attributes. It
// reports duplicate entries, entries of the wrong shape or kind, and a missing
// entry when the field is required. Problems are added to diags.
func (d *Def) Validate(attrs []*parser.Attribute, diags *Diagnostics) {
	found := false
	for _, a := range attrs {
		if !d.matchesPath(a.Meta) || !a.Meta.IsList() {
			continue
		}
		for _, n := range a.Meta.Nested {
			m := n.Meta
			if m == nil || !d.matchesName(m) {
				continue
			}
			if m.IsList() {
				diags.Errorf(m.Pos(), ErrMalformedShape, "unexpected meta list for %v", d)
				continue
			}
			if found {
				diags.Errorf(m.Pos(), ErrDuplicateField, "duplicate %v attribute", d)
			}
			found = true
			d.checkValue(m, diags)
		}
	}

	if !found && d.Required {
		diags.Errorf(token.Position{}, ErrMissingRequired, "missing required %v attribute", d)
	}
}

func (d *Def) checkValue(m *parser.Meta, diags *Diagnostics) {
	t := d.Type()
	if m.IsPath() {
		if t.Kind != Flag {
			// a bare name never carries a value, even for optional fields
			t.Optional = false
			if err := t.Check(nil); err != nil {
				diags.Add(withPos(err, m.Pos()))
			}
		}
		return
	}
	if t.Kind == Flag {
		diags.Errorf(m.Lit.Pos, ErrUnexpectedValue, "unexpected value for flag %v", d)
		return
	}
	if err := t.Check(m.Lit); err != nil {
		diags.Add(err)
	}
}
