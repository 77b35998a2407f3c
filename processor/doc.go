// Package processor contains the library used by code that processes
// attributes in Go source.
//
// This package defines a function type, Processor, which is implemented by
// things that can process attributes.
//
//    func(ctx *Context, output processor.OutputFactory) error
//
// Processing is generally expected to validate attributes and, optionally,
// generate code that is derived from them.
//
// If a processor returns an error, processing has failed and the error should
// indicate why. Validation errors should be constructed with
// attrdef.NewErrorWithPosition, or collected in an attrdef.Diagnostics, so
// that they can report locations in the source code, to aid users in
// resolving the error.
//
// The OutputFactory passed to the processor may be used to generate code. When
// generating source code, a processor should use the factory to create an
// output whose path includes both the Go import path and source file name.
//
// The remaining APIs and types in this package can be broken into three main
// categories: Processor Registration, Processor Invocation, and Deriving.
//
// Processor Registration
//
// Processor implementations can be registered with this package using the
// RegisterProcessor method. All registered processors can later be queried with
// the AllRegisteredProcessors function. These can be used to create
// command-line tools that will run custom processors. The attrgen program
// (included in this repo) registers the processor returned by DeriveProcessor.
//
// Processor Invocation
//
// The package includes functions and types used to invoke processors. Key among
// them is processor.Config. This struct defines the packages that will be
// processed, the processors that will be invoked, and the output factory (which
// controls where generated output files are actually written).
//
// After a processor.Config is constructed, its Execute method is used to
// actually invoke the configured processors. This process involves parsing the
// source code for all packages to process, performing type analysis on the
// sources, and then extracting attributes from the doc comments of types and
// struct fields. Attributes in a doc comment start at the first line whose
// first non-space character is '@':
//
//    // Input is the configuration for ...
//    //
//    // @attrdef(rename = "input")
//    type Input struct {
//        // @attrdef(default_value = 3)
//        Size int32
//    }
//
// Once attributes are extracted, they are passed to each configured processor,
// via the processor.Context, one package at a time.
//
// There are also some "shortcut" methods in this package: Process and
// ProcessAll. These functions create a processor.Config using the arguments
// given and using "typical" values for other settings and then call the
// resulting config's Execute method. The ProcessAll method will invoke all
// processors that have been registered with this package (via the
// RegisterProcessor function).
//
// Deriving
//
// Derive and DeriveElement compute the field definitions for a struct type.
// Each field of the struct becomes a field in the type's namespace, which is
// the snake-case form of the type name. Both can be changed using the attrdef
// namespace: the rename field applies to types and fields and the
// default_value field applies to fields. Pointer fields, and fields with a
// default value, are optional. Other fields are required.
//
// The field types that can be used are string, []byte, byte, rune, int32,
// float32, bool, struct{} (a flag), and pointers to any of them.
package processor
