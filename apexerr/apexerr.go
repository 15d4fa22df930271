// Package apexerr defines the typed error values produced while compiling
// and running Apex programs, pairing every error with the source location
// it occurred at, following the teacher's plain-error convention but typed
// per the two phases apexErr.c distinguishes: compile-time syntax errors
// and run-time errors (with an optional call trace).
package apexerr

import (
	"fmt"
	"strings"

	"github.com/apex-lang/apex/token"
)

// SyntaxError is a parse-time error tied to a source location.
type SyntaxError struct {
	Loc token.SrcLoc
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: syntax error: %s", e.Loc, e.Msg)
}

// NewSyntax builds a SyntaxError.
func NewSyntax(loc token.SrcLoc, format string, args ...any) *SyntaxError {
	return &SyntaxError{Loc: loc, Msg: fmt.Sprintf(format, args...)}
}

// Frame is one entry of a RuntimeError's call trace: the function that was
// executing and where its call instruction was compiled from.
type Frame struct {
	FnName string
	Loc    token.SrcLoc
}

// RuntimeError is an error raised during bytecode execution, carrying the
// active call stack at the point of failure.
type RuntimeError struct {
	Loc   token.SrcLoc
	Msg   string
	Trace []Frame
}

func (e *RuntimeError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: runtime error: %s", e.Loc, e.Msg)
	for _, f := range e.Trace {
		fmt.Fprintf(&sb, "\n\tat %s (%s)", f.FnName, f.Loc)
	}
	return sb.String()
}

// NewRuntime builds a RuntimeError with no trace; use WithTrace to attach
// the call stack once it's known to the caller.
func NewRuntime(loc token.SrcLoc, format string, args ...any) *RuntimeError {
	return &RuntimeError{Loc: loc, Msg: fmt.Sprintf(format, args...)}
}

// WithTrace attaches a call trace to a RuntimeError and returns it.
func (e *RuntimeError) WithTrace(trace []Frame) *RuntimeError {
	e.Trace = trace
	return e
}
