package attrdef

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
)

// Standard errors. Errors returned by this package, and those collected in
// Diagnostics, wrap one of these so callers can use errors.Is.
var (
	ErrMissingRequired    = errors.New("missing required field")
	ErrDuplicateField     = errors.New("duplicate field")
	ErrKindMismatch       = errors.New("wrong kind of value")
	ErrUnrecognizedField  = errors.New("unrecognized attribute")
	ErrMalformedShape     = errors.New("malformed attribute")
	ErrUnexpectedValue    = errors.New("unexpected value shape")
	ErrStructuralMismatch = errors.New("expected a struct")
	ErrInvalidRename      = errors.New("invalid rename")
	ErrConflictingDefault = errors.New("conflicting default value")
	ErrUnsupportedType    = errors.New("unsupported type")
	ErrMalformedSyntax    = errors.New("malformed attribute syntax")
)

// ErrorWithPosition is an error that has source position information associated
// with it. The position indicates the location in a source file where the error
// was encountered.
type ErrorWithPosition struct {
	err error
	pos token.Position
}

// Error implements the error interface. It includes position information in the
// returned message when the position is known.
func (e *ErrorWithPosition) Error() string {
	if !e.pos.IsValid() {
		return e.err.Error()
	}
	return fmt.Sprintf("%v: %s", e.pos, e.err.Error())
}

// Underlying returns the underlying error.
func (e *ErrorWithPosition) Underlying() error {
	return e.err
}

func (e *ErrorWithPosition) Unwrap() error {
	return e.err
}

// Pos returns the location in source where the underlying error was
// encountered.
func (e *ErrorWithPosition) Pos() token.Position {
	return e.pos
}

// NewErrorWithPosition returns the given error, but associates it with the
// given source code location.
func NewErrorWithPosition(pos token.Position, err error) *ErrorWithPosition {
	return &ErrorWithPosition{err: err, pos: pos}
}

// errorf creates a positioned error that wraps kind, which should be one of
// the standard errors.
func errorf(pos token.Position, kind error, format string, args ...interface{}) *ErrorWithPosition {
	return NewErrorWithPosition(pos, fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...)))
}

// withPos returns err as an *ErrorWithPosition. The given position is used
// only if err does not already have a valid one.
func withPos(err error, pos token.Position) *ErrorWithPosition {
	if err == nil {
		return nil
	}
	var ewp *ErrorWithPosition
	if !errors.As(err, &ewp) {
		return NewErrorWithPosition(pos, err)
	}
	if !ewp.pos.IsValid() {
		return NewErrorWithPosition(pos, ewp.err)
	}
	return ewp
}

// Diagnostics collects the problems found while validating attributes.
// Validation keeps going after a problem is found so that a single pass
// reports as many as possible.
type Diagnostics struct {
	// Fallback is used as the location of problems that have no position of
	// their own, such as a missing required field.
	Fallback token.Position

	errs []*ErrorWithPosition
}

// Add records err. If err has no position, the fallback position is used.
// A nil error is ignored.
func (d *Diagnostics) Add(err error) {
	if err == nil {
		return
	}
	d.errs = append(d.errs, withPos(err, d.Fallback))
}

// Errorf records a problem at the given position. The kind should be one of
// the standard errors.
func (d *Diagnostics) Errorf(pos token.Position, kind error, format string, args ...interface{}) {
	d.Add(errorf(pos, kind, format, args...))
}

// Len returns the number of problems recorded.
func (d *Diagnostics) Len() int {
	return len(d.errs)
}

// Errors returns all recorded problems in the order they were found.
func (d *Diagnostics) Errors() []*ErrorWithPosition {
	return d.errs
}

// Err returns nil if no problems were recorded. Otherwise it returns a
// *DiagnosticError holding all of them.
func (d *Diagnostics) Err() error {
	if len(d.errs) == 0 {
		return nil
	}
	errs := make([]*ErrorWithPosition, len(d.errs))
	copy(errs, d.errs)
	return &DiagnosticError{Errs: errs}
}

// DiagnosticError is the error returned by Diagnostics.Err.
type DiagnosticError struct {
	Errs []*ErrorWithPosition
}

func (e *DiagnosticError) Error() string {
	if len(e.Errs) == 1 {
		return e.Errs[0].Error()
	}
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d problems:\n%s", len(e.Errs), strings.Join(msgs, "\n"))
}

func (e *DiagnosticError) Unwrap() []error {
	errs := make([]error, len(e.Errs))
	for i, err := range e.Errs {
		errs[i] = err
	}
	return errs
}
