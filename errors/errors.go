// Package errors defines the error types reported while compiling a script.
//
// Errors are usually raised deep inside the grammar and decoding code where
// the current line is not known. Such errors are "anonymous" (Line == 0) and
// are stamped with a location by the nearest caller that knows it, using At
// or Locate. A location that has already been stamped is never overwritten,
// so the innermost position always wins.
package errors

import (
	goerrors "errors"
	"fmt"
)

// Kind is the category of an error.
type Kind int

const (
	// Structural covers indentation problems, unknown or malformed macro
	// headers and unterminated byte expressions.
	Structural Kind = iota
	// Encoding covers invalid digits, bad literal lengths, out of range
	// string characters, bad escapes and malformed padding sizes.
	Encoding
	// Scope covers undefined names and expansion arity mismatches.
	Scope
	// Tooling covers failures of the external assembler.
	Tooling
)

// String returns the string representation of the error kind.
func (k Kind) String() string {
	switch k {
	case Structural:
		return "structural error"
	case Encoding:
		return "encoding error"
	case Scope:
		return "scope error"
	case Tooling:
		return "tooling error"
	default:
		return "error"
	}
}

// StackFrame identifies one macro invocation that was active when an error
// was raised.
type StackFrame struct {
	Function string
	Line     int
}

// String returns a formatted string representation of the stack frame.
func (f StackFrame) String() string {
	if f.Function != "" {
		return fmt.Sprintf("at $%s (line %d)", f.Function, f.Line)
	}
	return fmt.Sprintf("at line %d", f.Line)
}

// Error is a compilation error with an optional source location.
type Error struct {
	Kind     Kind
	Message  string
	Cause    error
	Filename string
	Line     int    // 1-based line number, 0 while anonymous
	Column   int    // 1-based column number, 0 if unknown
	Source   string // text of the offending line
	Stack    []StackFrame
}

// Error renders the error the way the command line reports it.
func (e *Error) Error() string {
	if e.Line == 0 {
		return e.Msg()
	}
	return fmt.Sprintf("Runtime error on line %d: %s", e.Line, e.Msg())
}

// Msg returns the message without any location prefix.
func (e *Error) Msg() string {
	switch {
	case e.Message != "" && e.Cause != nil:
		return e.Message + ": " + e.Cause.Error()
	case e.Message != "":
		return e.Message
	case e.Cause != nil:
		return e.Cause.Error()
	}
	return e.Kind.String()
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsAnonymous reports whether the error has not been given a line yet.
func (e *Error) IsAnonymous() bool {
	return e.Line == 0
}

// ToFormatted converts the error to a FormattedError for display.
func (e *Error) ToFormatted() *FormattedError {
	return &FormattedError{
		Kind:     e.Kind.String(),
		Message:  e.Msg(),
		Filename: e.Filename,
		Line:     e.Line,
		Column:   e.Column,
		Source:   e.Source,
		Stack:    e.Stack,
	}
}

// Newf returns an anonymous error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an anonymous error of the given kind that wraps cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Structuralf returns a structural error with a formatted message.
func Structuralf(format string, args ...any) *Error {
	return Newf(Structural, format, args...)
}

// Encodingf returns an encoding error with a formatted message.
func Encodingf(format string, args ...any) *Error {
	return Newf(Encoding, format, args...)
}

// Scopef returns a scope error with a formatted message.
func Scopef(format string, args ...any) *Error {
	return Newf(Scope, format, args...)
}

// Toolingf returns a tooling error with a formatted message.
func Toolingf(format string, args ...any) *Error {
	return Newf(Tooling, format, args...)
}

// AtColumn marks the column, relative to the start of the text being parsed,
// where the error occurred.
func (e *Error) AtColumn(column int) *Error {
	if e.Column == 0 {
		e.Column = column
	}
	return e
}

// At stamps line onto err unless it already carries a line. Errors that are
// not of type *Error are wrapped as structural errors.
func At(err error, line int) error {
	return Locate(err, line, "", 0)
}

// Locate stamps line and source text onto err unless they are already set.
// A column recorded relative to a trimmed line is shifted by columnOffset
// so that it points into source.
func Locate(err error, line int, source string, columnOffset int) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !goerrors.As(err, &e) {
		return &Error{Kind: Structural, Cause: err, Line: line, Source: source}
	}
	if e.Line != 0 {
		return err
	}
	e.Line = line
	if e.Source == "" {
		e.Source = source
		if e.Column > 0 {
			e.Column += columnOffset
		}
	}
	return err
}

// WithFilename records the script filename on err if it has none.
func WithFilename(err error, filename string) error {
	var e *Error
	if goerrors.As(err, &e) && e.Filename == "" {
		e.Filename = filename
	}
	return err
}

// WithFrame appends a call frame to err. Frames are appended innermost first.
func WithFrame(err error, frame StackFrame) error {
	var e *Error
	if goerrors.As(err, &e) {
		e.Stack = append(e.Stack, frame)
	}
	return err
}

// KindOf returns the kind of err if it is, or wraps, an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if goerrors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return goerrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return goerrors.As(err, target)
}
