package liberty

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the parser. Only ErrInvalidConfiguration and
// ErrUnexpectedEOF are part of the original failure taxonomy; the shape and
// value errors guard the table invariants of a returned model.
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrUnexpectedEOF        = errors.New("unexpected end of file")
	ErrTableShape           = errors.New("table shape mismatch")
	ErrMalformedValue       = errors.New("malformed table value")
	ErrUnknownArcType       = errors.New("unknown arc type")
)

// ParseError provides structured error information for a failed parse.
type ParseError struct {
	Op    string // Operation that failed (e.g., "extract", "load")
	File  string // Source name of the line sequence
	Line  int    // 1-indexed line of the table header or offending line
	Table string // Table type being extracted, if any
	Cause error  // Underlying error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	where := e.File
	if e.Line > 0 {
		where = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	if e.Table != "" {
		return fmt.Sprintf("%s %s at %s: %v", e.Op, e.Table, where, e.Cause)
	}
	if where != "" {
		return fmt.Sprintf("%s at %s: %v", e.Op, where, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ErrorBuilder provides a fluent interface for building ParseErrors.
type ErrorBuilder struct {
	err ParseError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: ParseError{Op: op}}
}

// File sets the source name.
func (b *ErrorBuilder) File(name string) *ErrorBuilder {
	b.err.File = name
	return b
}

// Line sets the 1-indexed line number.
func (b *ErrorBuilder) Line(n int) *ErrorBuilder {
	b.err.Line = n
	return b
}

// Table sets the table type.
func (b *ErrorBuilder) Table(tableType string) *ErrorBuilder {
	b.err.Table = tableType
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Build returns the constructed ParseError.
func (b *ErrorBuilder) Build() *ParseError {
	return &b.err
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	return &b.err
}
