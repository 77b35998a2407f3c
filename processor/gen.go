package processor

import (
	"fmt"
	"io"
	"path"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/jhump/gopoet"

	"github.com/jhump/attrdef"
)

var (
	attrdefPkg = gopoet.NewPackage("github.com/jhump/attrdef")
	parserPkg  = gopoet.NewPackage("github.com/jhump/attrdef/parser")

	attrsType = gopoet.SliceType(gopoet.PointerType(gopoet.NamedType(parserPkg.Symbol("Attribute"))))
	defsType  = gopoet.PointerType(gopoet.NamedType(attrdefPkg.Symbol("Defs")))
)

// DeriveProcessor returns a processor that generates field definitions and
// accessors for struct types. If typeNames is empty, every type that has an
// attrdef attribute is processed. Otherwise, only the named types are, and it
// is an error if any of them is missing.
//
// The generated code is written to a single file named <pkg>.attrdef.go. For
// each type T, it contains:
//
//    func TFromAttributes(attrs []*parser.Attribute) (*T, error)
//    func TAttributeDefs() *attrdef.Defs
//    func StripTAttributes(attrs []*parser.Attribute) []*parser.Attribute
func DeriveProcessor(typeNames ...string) Processor {
	return func(ctx *Context, output OutputFactory) error {
		elems, err := SelectTypes(ctx, typeNames...)
		if err != nil {
			return err
		}
		if len(elems) == 0 {
			// nothing to do!
			ctx.Logger.Debug().Msg("no types to derive")
			return nil
		}

		derived := make([]*Derived, 0, len(elems))
		for _, e := range elems {
			d, err := DeriveElement(e)
			if err != nil {
				return err
			}
			ctx.Logger.Info().
				Str("type", d.TypeName).
				Str("namespace", d.Namespace).
				Int("fields", len(d.Fields)).
				Msg("derived field definitions")
			derived = append(derived, d)
		}

		outputPkg := ctx.Package.Pkg
		file := GenerateFile(outputPkg.Path(), outputPkg.Name(), derived)
		out, err := output(path.Join(outputPkg.Path(), file.Name))
		if err != nil {
			return err
		}
		return writeAndClose(out, file)
	}
}

func writeAndClose(out io.WriteCloser, file *gopoet.GoFile) error {
	err := gopoet.WriteGoFile(out, file)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return err
}

// SelectTypes returns the type elements with the given names. If no names are
// given, it returns all struct types that have an attrdef attribute. A struct
// whose doc comment has a malformed attrdef attribute is also returned, so
// that deriving it reports the syntax error.
func SelectTypes(ctx *Context, typeNames ...string) ([]*Element, error) {
	if len(typeNames) == 0 {
		var elems []*Element
		for _, e := range ctx.Types() {
			if !e.IsStruct() {
				continue
			}
			if e.HasAttribute(Namespace) || (e.Err != nil && e.mentionsAttribute(Namespace)) {
				elems = append(elems, e)
			}
		}
		return elems, nil
	}
	elems := make([]*Element, 0, len(typeNames))
	for _, name := range typeNames {
		e := ctx.LookupType(name)
		if e == nil {
			return nil, fmt.Errorf("package %s has no type named %s", ctx.Package.Pkg.Path(), name)
		}
		elems = append(elems, e)
	}
	return elems, nil
}

// GenerateFile returns a Go file, in the given package, with the code for the
// given derived types.
func GenerateFile(pkgPath, pkgName string, derived []*Derived) *gopoet.GoFile {
	file := gopoet.NewGoFile(fmt.Sprintf("%s.attrdef.go", pkgName), pkgPath, pkgName)
	pkg := gopoet.NewPackage(pkgPath)
	for _, d := range derived {
		generateType(file, pkg, d)
	}
	return file
}

func generateType(file *gopoet.GoFile, pkg gopoet.Package, d *Derived) {
	prefix := lowerFirst(d.TypeName)
	defsVar := prefix + "FieldDefs"
	fieldVars := make([]string, len(d.Fields))

	for i, f := range d.Fields {
		fieldVars[i] = prefix + upperFirst(f.GoName) + "Field"
		defFormat, defArgs := defaultValueCode(f.Default)
		args := append([]interface{}{attrdefPkg.Symbol("NewDef"), d.Namespace, f.Name, f.Required}, defArgs...)
		file.AddVar(gopoet.NewVar(fieldVars[i]).
			Initialize("%s(%q, %q, %v, "+defFormat+")", args...))
	}

	var defsArgs []interface{}
	defsFormat := "%s("
	defsArgs = append(defsArgs, attrdefPkg.Symbol("NewDefs"))
	for i, v := range fieldVars {
		if i > 0 {
			defsFormat += ", "
		}
		defsFormat += v
	}
	defsFormat += ")"
	file.AddVar(gopoet.NewVar(defsVar).Initialize(defsFormat, defsArgs...))

	typeSym := pkg.Symbol(d.TypeName)
	typePtr := gopoet.PointerType(gopoet.NamedType(typeSym))

	fromAttrs := gopoet.NewFunc(d.TypeName+"FromAttributes").
		SetComment(fmt.Sprintf("%sFromAttributes creates a %s from the %s fields in the given attributes.", d.TypeName, d.TypeName, d.Namespace)).
		AddArg("attrs", attrsType).
		AddResult("", typePtr).
		AddResult("", gopoet.ErrorType)
	fromAttrs.Printlnf("var v %s", typeSym)
	for i, f := range d.Fields {
		fromAttrs.Printlnf("if err := %s.ExtractValue(attrs, &v.%s); err != nil {", fieldVars[i], f.GoName)
		fromAttrs.Println("return nil, err")
		fromAttrs.Println("}")
	}
	fromAttrs.Println("return &v, nil")
	file.AddElement(fromAttrs)

	defs := gopoet.NewFunc(d.TypeName+"AttributeDefs").
		SetComment(fmt.Sprintf("%sAttributeDefs returns the definitions of the %s fields.", d.TypeName, d.Namespace)).
		AddResult("", defsType)
	defs.Printlnf("return %s", defsVar)
	file.AddElement(defs)

	strip := gopoet.NewFunc("Strip"+d.TypeName+"Attributes").
		SetComment(fmt.Sprintf("Strip%sAttributes returns the given attributes without the %s fields.", d.TypeName, d.Namespace)).
		AddArg("attrs", attrsType).
		AddResult("", attrsType)
	strip.Printlnf("return %s.Strip(attrs)", defsVar)
	file.AddElement(strip)
}

// defaultValueCode returns a format string and arguments that produce Go code
// for the given default.
func defaultValueCode(def attrdef.DefaultValue) (string, []interface{}) {
	if !def.HasValue() {
		if def.Kind() == attrdef.Flag {
			return "%s()", []interface{}{attrdefPkg.Symbol("FlagDefault")}
		}
		return "%s(%s)", []interface{}{attrdefPkg.Symbol("NoDefault"), attrdefPkg.Symbol(def.Kind().ConstName())}
	}
	switch def.Kind() {
	case attrdef.Str:
		return "%s(%q)", []interface{}{attrdefPkg.Symbol("StringDefault"), def.Value()}
	case attrdef.ByteStr:
		return "%s([]byte(%q))", []interface{}{attrdefPkg.Symbol("BytesDefault"), def.Value()}
	case attrdef.Byte:
		return "%s(%d)", []interface{}{attrdefPkg.Symbol("ByteDefault"), def.Value()}
	case attrdef.Char:
		return "%s(%q)", []interface{}{attrdefPkg.Symbol("CharDefault"), def.Value()}
	case attrdef.I32:
		return "%s(%d)", []interface{}{attrdefPkg.Symbol("Int32Default"), def.Value()}
	case attrdef.F32:
		f := def.Value().(float32)
		return "%s(%s)", []interface{}{attrdefPkg.Symbol("Float32Default"), strconv.FormatFloat(float64(f), 'g', -1, 32)}
	case attrdef.Bool:
		return "%s(%v)", []interface{}{attrdefPkg.Symbol("BoolDefault"), def.Value()}
	default:
		lit := def.Literal()
		return "%s(%s(%q))", []interface{}{attrdefPkg.Symbol("AnyDefault"), parserPkg.Symbol("MustParseLiteral"), lit.String()}
	}
}

func lowerFirst(s string) string {
	r, sz := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[sz:]
}

func upperFirst(s string) string {
	r, sz := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[sz:]
}

