// Package attrdef provides typed field definitions for attributes: small
// annotations, written in doc comments, of the form
//
//    @foo(bar = 5, baz = "abc", enabled)
//
// An attribute has a namespace ("foo" above) and a list of named fields. A
// Def describes one field: its namespace, name, whether it is required and
// its default value. Defs are used to find and decode the value of a field in
// a list of attributes, to strip the field's entries from the list and to
// validate the entries. A Defs groups the fields of a namespace so that
// entries with unknown names can be rejected. A StructLinter validates the
// attributes of a struct type and of its fields in a single pass.
//
// Attributes are parsed with the parser sub-package. Defs are usually not
// written by hand. Instead, a struct whose fields describe the namespace is
// given to the attrgen program, which generates the Defs and the code to
// populate the struct from a list of attributes:
//
//    // @attrdef(rename = "foo")
//    type Foo struct {
//        Bar int32
//        // @attrdef(default_value = "abc")
//        Baz     string
//        Enabled *struct{}
//    }
//
// Running attrgen on the package containing this type generates
// FooFromAttributes, FooAttributeDefs and StripFooAttributes functions.
package attrdef

import (
	"github.com/jhump/attrdef/parser"
)

// Load validates attrs against defs and then, if there are no problems, uses
// fromAttrs to extract a value. Validation problems are returned as a
// *DiagnosticError.
func Load[T any](attrs []*parser.Attribute, defs *Defs, fromAttrs func([]*parser.Attribute) (T, error)) (T, error) {
	var diags Diagnostics
	if len(attrs) > 0 {
		diags.Fallback = attrs[0].Pos
	}
	defs.Validate(attrs, &diags)
	if err := diags.Err(); err != nil {
		var zero T
		return zero, err
	}
	return fromAttrs(attrs)
}
