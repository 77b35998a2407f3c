package processor

import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/build"
	goparser "go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/tools/go/loader"

	"github.com/jhump/attrdef"
	"github.com/jhump/attrdef/parser"
)

// OutputFactory is a function that creates a writer to an output for the
// given location. The path includes the Go import path of the package and the
// name of the file. Output factories typically use os.OpenFile to create files
// but this function allows the behavior to be customized.
type OutputFactory func(path string) (io.WriteCloser, error)

// Processor is a function that acts on attributes and is invoked from the
// attrgen tool. Typical processor implementations generate code based on the
// attributes present in source.
type Processor func(ctx *Context, output OutputFactory) error

// ProcessAll invokes all registered Processor instances to process the given
// packages. If the given outputDir is blank, outputs are written to the
// directory that contains the sources for a particular package.
func ProcessAll(pkgPaths []string, includeTest bool, outputDir string) error {
	return Process(pkgPaths, includeTest, outputDir, AllRegisteredProcessors()...)
}

// Process invokes the given processors to process the given packages.
func Process(pkgPaths []string, includeTest bool, outputDir string, procs ...Processor) error {
	importPkgs := map[string]bool{}
	for _, pkgPath := range pkgPaths {
		importPkgs[pkgPath] = includeTest
	}
	cfg := Config{
		ImportPkgs:    importPkgs,
		Processors:    procs,
		OutputFactory: DefaultOutputFactory(outputDir),
	}
	return cfg.Execute()
}

// DefaultOutputFactory returns the default OutputFactory used by Process and
// ProcessAll. If the given rootDir is blank, outputs are written to the
// directory that contains the package's sources. Otherwise, the full path will
// be <rootDir>/src/<path> (note the implicit "src" path element, just like when
// looking for sources in GOPATH).
//
// After computing the destination path, os.OpenFile is used to open the file
// for writing (creating the file if necessary, truncating it if it already
// exists).
func DefaultOutputFactory(rootDir string) OutputFactory {
	return func(path string) (io.WriteCloser, error) {
		dest, err := determineOutputDir(rootDir, filepath.ToSlash(filepath.Dir(path)))
		if err != nil {
			return nil, err
		}
		dest = filepath.Join(dest, filepath.Base(path))
		return os.OpenFile(dest, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0666)
	}
}

func determineOutputDir(root, pkgPath string) (string, error) {
	if root != "" {
		out := filepath.Join(root, "src", pkgPath)
		if err := os.MkdirAll(out, os.ModePerm); err != nil {
			return "", fmt.Errorf("could not create output directory %s: %w", out, err)
		}
		return out, nil
	}
	return PackageDir(pkgPath)
}

// PackageDir returns the directory that contains the sources for the given
// package. It is an error if the package is in GOROOT.
func PackageDir(pkgPath string) (string, error) {
	pkg, err := build.Import(pkgPath, ".", build.FindOnly)
	if err != nil {
		return "", fmt.Errorf("could not determine directory for package %q: %w", pkgPath, err)
	}
	if pkg.Goroot {
		return "", fmt.Errorf("cannot generate output for package %q because it is in GOROOT", pkgPath)
	}
	return pkg.Dir, nil
}

// Config represents the configuration for running one or more Processors.
// Callers should configure all of the exported fields and then call the
// Execute method to actually invoke the processors.
type Config struct {
	ImportPkgs    map[string]bool
	CreatePkgs    []loader.PkgSpec
	Processors    []Processor
	OutputFactory func(path string) (io.WriteCloser, error)
	// Logger, if not nil, is used to log progress. It is also made available
	// to processors via Context.Logger.
	Logger *zerolog.Logger
}

// Execute invokes the configured processors for the configured packages,
// writing outputs using the configured OutputFactory.
func (cfg *Config) Execute() error {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	conf := loader.Config{
		ParserMode:          goparser.ParseComments,
		TypeCheckFuncBodies: func(string) bool { return false },
		ImportPkgs:          cfg.ImportPkgs,
		CreatePkgs:          cfg.CreatePkgs,
	}
	prg, err := conf.Load()
	if err != nil {
		return err
	}
	for _, pkgInfo := range prg.InitialPackages() {
		ctx := newContext(pkgInfo, prg, logger)
		ctx.computeAllAttributes()
		ctx.Logger.Debug().
			Int("files", len(pkgInfo.Files)).
			Int("elements", ctx.NumElements()).
			Msg("computed attributes")
		for _, proc := range cfg.Processors {
			if err := proc(ctx, cfg.OutputFactory); err != nil {
				return err
			}
		}
	}
	return nil
}

// Context represents the environment for a processor. It represents a single
// package (for which the processors were invoked). It provides access to all
// types in the package, their fields and their attributes.
type Context struct {
	// Package holds all information about the package being processed. It
	// provides access to the ASTs of files in the package as well as the
	// results of type analysis, to allow for introspection of package elements.
	Package *loader.PackageInfo

	// Program holds information about an entire program being processed, which
	// includes any packages that are being processed as well as their
	// dependencies. This also provides access to the token.FileSet, which can
	// be used to resolve details for source code locations.
	Program *loader.Program

	// Logger is tagged with the path of the package being processed.
	Logger zerolog.Logger

	allElements []*Element
	types       []*Element
	typesByName map[string]*Element
}

func newContext(pkg *loader.PackageInfo, prg *loader.Program, logger zerolog.Logger) *Context {
	return &Context{
		Package:     pkg,
		Program:     prg,
		Logger:      logger.With().Str("package", pkg.Pkg.Path()).Logger(),
		typesByName: map[string]*Element{},
	}
}

func (c *Context) computeAllAttributes() {
	for _, file := range c.Package.Files {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, s := range gen.Specs {
				spec := s.(*ast.TypeSpec)
				doc := spec.Doc
				if doc == nil || len(doc.List) == 0 {
					doc = gen.Doc
				}
				c.computeAttributesFromType(file, spec, doc)
			}
		}
	}
}

func (c *Context) computeAttributesFromType(file *ast.File, spec *ast.TypeSpec, doc *ast.CommentGroup) {
	fset := c.Program.Fset
	te := &Element{
		Kind: TypeElement,
		Name: spec.Name.Name,
		Pos:  fset.Position(spec.Name.Pos()),
		File: file,
		Doc:  doc,
		Spec: spec,
		Obj:  c.Package.ObjectOf(spec.Name),
	}
	// Errors are kept with the element instead of failing right away. Doc
	// comments of types that are never processed may contain text that
	// happens to look like an attribute.
	te.Attrs, te.Err = extractAttributes(fset, doc)

	if st, ok := spec.Type.(*ast.StructType); ok {
		te.isStruct = true
		for _, fld := range st.Fields.List {
			attrs, err := extractAttributes(fset, fld.Doc)
			if err != nil && te.Err == nil {
				te.Err = err
			}
			if len(fld.Names) == 0 {
				// embedded field
				fe := &Element{
					Kind:   FieldElement,
					Name:   embeddedName(fld.Type),
					Pos:    fset.Position(fld.Type.Pos()),
					File:   file,
					Doc:    fld.Doc,
					Field:  fld,
					Attrs:  attrs,
					Parent: te,
				}
				te.Children = append(te.Children, fe)
				continue
			}
			for _, id := range fld.Names {
				fe := &Element{
					Kind:   FieldElement,
					Name:   id.Name,
					Pos:    fset.Position(id.Pos()),
					File:   file,
					Doc:    fld.Doc,
					Field:  fld,
					Obj:    c.Package.ObjectOf(id),
					Attrs:  attrs,
					Parent: te,
				}
				te.Children = append(te.Children, fe)
			}
		}
	}

	c.types = append(c.types, te)
	c.typesByName[te.Name] = te
	c.allElements = append(c.allElements, te)
	c.allElements = append(c.allElements, te.Children...)
}

// extractAttributes finds and parses the attributes in the given doc comment.
// Attributes start at the first line whose first non-space character is '@'
// and run to the end of the comment. The positions of the returned attributes
// refer to their locations in the file that contains the comment.
func extractAttributes(fset *token.FileSet, doc *ast.CommentGroup) ([]*parser.Attribute, error) {
	buf, adjuster := extractAttributeText(fset, doc)
	if buf == nil {
		return nil, nil
	}
	attrs, err := parser.ParseAttributes("", buf)
	if err != nil {
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			pos := adjuster.adjustPosition(perr.Pos())
			return nil, attrdef.NewErrorWithPosition(pos, fmt.Errorf("%w: %v", attrdef.ErrMalformedSyntax, perr.Underlying()))
		}
		return nil, err
	}
	parser.AdjustPositions(attrs, adjuster.adjustPosition)
	return attrs, nil
}

func extractAttributeText(fset *token.FileSet, doc *ast.CommentGroup) (*bytes.Buffer, posAdjuster) {
	if doc == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	var adjuster posAdjuster
	found := false
	prevSingleLine := false
	var pos token.Position
	for _, l := range doc.List {
		txt := l.Text
		singleLine := false
		if strings.HasPrefix(txt, "/*") {
			txt = txt[2:]
			if strings.HasSuffix(txt, "*/") {
				txt = txt[:len(txt)-2]
			}
		} else if strings.HasPrefix(txt, "//") {
			singleLine = true
			txt = txt[2:]
		}

		if singleLine != prevSingleLine {
			found = false
			buf.Reset()
			prevSingleLine = singleLine
			adjuster = nil
		}

		pos = fset.Position(l.Slash)
		// skip past opening "//" or "/*"
		pos.Offset += 2
		pos.Column += 2

		for _, line := range strings.Split(txt, "\n") {
			trimmed := strings.TrimSpace(line)
			if !found && trimmed != "" && trimmed[0] == '@' {
				found = true
			}
			if found {
				adjuster = append(adjuster, posAdj{outOffset: buf.Len(), inPos: pos})
				buf.WriteString(line)
				buf.WriteByte('\n')
			}
			pos.Offset += len(line) + 1
			pos.Line++
			pos.Column = 1
		}

		// set this so we can record end of input as the last entry in adjuster
		pos = fset.Position(l.End())
	}
	if !found {
		return nil, nil
	}
	adjuster = append(adjuster, posAdj{outOffset: buf.Len(), inPos: pos})
	return &buf, adjuster
}

type posAdj struct {
	outOffset int
	inPos     token.Position
}

type posAdjuster []posAdj

func (a posAdjuster) adjustPosition(pos token.Position) token.Position {
	if pos.Line < 1 || pos.Line > len(a) {
		return pos
	}
	el := a[pos.Line-1]
	var tok token.Position
	tok.Filename = el.inPos.Filename
	tok.Line = el.inPos.Line
	tok.Column = el.inPos.Column + pos.Column - 1
	tok.Offset = el.inPos.Offset + (pos.Offset - el.outOffset)
	return tok
}

func embeddedName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.StarExpr:
		return embeddedName(e.X)
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(e.X)
	case *ast.IndexListExpr:
		return embeddedName(e.X)
	default:
		return "?"
	}
}
