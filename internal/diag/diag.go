// Package diag implements the compiler's error taxonomy: fatal conditions
// raised by the parser (including malformed tokens from the lexer), the
// assembly emitter and the compiler driver are reported as a *diag.Error
// carrying one of a fixed set of Kinds, a position in the source buffer,
// and a one-line snapshot of the surrounding text. The TAC lowerer's
// internal errors are plain wrapped errors, not *diag.Error values.
//
// Every stage returns its errors rather than printing and exiting
// directly; only the CLI driver formats and reports them, matching the
// "report and abort, no recovery" policy described for this compiler.
package diag

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies the error.
type Kind string

const (
	Lex      Kind = "lex error"
	Syntax   Kind = "syntax error"
	Name     Kind = "name error"
	Type     Kind = "type error"
	Resource Kind = "resource error"
)

// Error is the single error type every compiler stage returns.
type Error struct {
	Kind     Kind
	Pos      int
	Snapshot string
	cause    error
}

// New builds a *Error of the given kind, formatting its message the way
// fmt.Errorf would, and capturing a stack trace via pkg/errors so the
// originating site survives being passed up through the pipeline.
func New(kind Kind, pos int, snapshot string, format string, args ...interface{}) *Error {
	return &Error{
		Kind:     kind,
		Pos:      pos,
		Snapshot: snapshot,
		cause:    errors.Errorf(format, args...),
	}
}

// Wrap attaches kind/pos/snapshot context to an error returned by a lower
// layer (for example os.Open failing), preserving it as the cause.
func Wrap(kind Kind, pos int, snapshot string, cause error, msg string) *Error {
	return &Error{
		Kind:     kind,
		Pos:      pos,
		Snapshot: snapshot,
		cause:    errors.Wrap(cause, msg),
	}
}

// Error implements the error interface with the one-line diagnostic
// format: "<kind>: <message> (near: <snapshot>)".
func (e *Error) Error() string {
	if e.Snapshot == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.cause)
	}
	return fmt.Sprintf("%s: %s (near: %s)", e.Kind, e.cause, e.Snapshot)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.cause
}
