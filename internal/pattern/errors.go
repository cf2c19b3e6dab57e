package pattern

import (
	"errors"
	"fmt"
)

var (
	ErrSyntax          = errors.New("syntax error")
	ErrUnknownVariable = errors.New("unknown variable")
	ErrRemapMismatch   = errors.New("variable remap mismatch")
	ErrBackReference   = errors.New("invalid back-reference")
)

// CompileError is returned for a pattern or replacement that cannot be
// turned into a matcher. Offset is a rune offset into Source, or -1.
type CompileError struct {
	Source string
	Offset int
	Detail string
	Err    error
}

func (e *CompileError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("pattern %q at %d: %v: %s", e.Source, e.Offset, e.Err, e.Detail)
	}
	return fmt.Sprintf("pattern %q: %v: %s", e.Source, e.Err, e.Detail)
}

func (e *CompileError) Unwrap() error { return e.Err }

func newError(src string, offset int, err error, format string, args ...any) *CompileError {
	return &CompileError{Source: src, Offset: offset, Err: err, Detail: fmt.Sprintf(format, args...)}
}
