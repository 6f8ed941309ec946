// Package jaferr defines the fatal error taxonomy shared by every pass of
// the core: parser, resolver, analyser, allocator, assembler and emitter.
//
// There are no recoverable errors within the core; every error returned
// from a pass aborts the whole build. Kind exists so the CLI and tests can
// distinguish categories of failure without string matching.
package jaferr

import (
	"fmt"

	"github.com/mna/ain-tools/internal/jaftoken"
)

// Kind is one of the six abstract error categories.
type Kind uint8

const (
	// InvalidInput covers a malformed container, a truncated section, an
	// unknown opcode during disassembly, or invalid UTF-8 in JAF source.
	InvalidInput Kind = iota
	// Unresolved covers a name (label, function, local, global, struct,
	// member, library, library function, filename, delegate) that did
	// not resolve.
	Unresolved
	// TypeError covers mismatched assignment/argument types, incompatible
	// casts, or a non-lvalue used as an lvalue.
	TypeError
	// ArityError covers too few or too many arguments to a function,
	// HLL call, or builtin.
	ArityError
	// Unsupported covers a feature not implemented on the requested file
	// version.
	Unsupported
	// InternalError covers an assertion failure in the compiler itself.
	InternalError
)

var kindNames = [...]string{
	InvalidInput:  "invalid input",
	Unresolved:    "unresolved",
	TypeError:     "type error",
	ArityError:    "arity error",
	Unsupported:   "unsupported",
	InternalError: "internal error",
}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return "unknown error"
	}
	return kindNames[k]
}

// Error is the single error type produced by every core pass. It carries
// enough context to render the "file:line: error: ...\n\tin: <excerpt>"
// message the specification requires at the CLI boundary.
type Error struct {
	Kind    Kind
	Pos     jaftoken.Position
	Msg     string
	Excerpt string // rendered source of the offending expression/statement
	Wrapped error
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap lets errors.Is/As see through to a wrapped cause, e.g. an
// underlying io or zlib error from the binary codec.
func (e *Error) Unwrap() error { return e.Wrapped }

// Report renders the full fatal-error message mandated by the
// specification's failure model, including the source excerpt.
func (e *Error) Report() string {
	if e.Excerpt == "" {
		return e.Error() + "\n"
	}
	return fmt.Sprintf("%s\n\tin: %s\n", e.Error(), e.Excerpt)
}

// New builds an *Error with no position information, for passes (e.g. the
// binary codec) that report byte offsets instead of source positions.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// At builds an *Error anchored to a source position and excerpt, the
// shape every JAF-facing pass (parser, resolver, analyser, allocator,
// emitter) should use.
func At(kind Kind, pos jaftoken.Position, excerpt, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...), Excerpt: excerpt}
}

// WithCause attaches an underlying cause to a newly constructed Error.
func (e *Error) WithCause(err error) *Error {
	e.Wrapped = err
	return e
}

// Warning is a non-fatal diagnostic (unallocated string index, missing
// main, overriding main, ...). Warnings never stop compilation; the CLI
// prints them as "warning: ..." and continues.
type Warning struct {
	Pos jaftoken.Position
	Msg string
}

func (w Warning) String() string {
	if w.Pos.IsValid() {
		return fmt.Sprintf("warning: %s: %s", w.Pos, w.Msg)
	}
	return "warning: " + w.Msg
}

// Warnf constructs a Warning.
func Warnf(pos jaftoken.Position, format string, args ...any) Warning {
	return Warning{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
