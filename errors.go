// errors.go — the error kinds of spec §7, plus caret-snippet rendering of
// any of them against the offending source. Grounded directly on the
// teacher's errors.go (WrapErrorWithSource / prettyErrorStringLabeled):
// same header-line-context-caret shape, adapted to this spec's error
// kinds instead of MindScript's Lex/Parse/Runtime triad.
package minilua

import (
	"fmt"
	"strings"
)

// ParseFailedError reports that source did not parse (spec §7).
type ParseFailedError struct {
	Diagnostics []Diagnostic
}

func (e *ParseFailedError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "parse failed"
	}
	return fmt.Sprintf("parse failed: %s", e.Diagnostics[0].Msg)
}

// NameError is reserved for a future strict mode (spec §7); the default
// evaluator never raises it (a missing name reads as Nil).
type NameError struct {
	Name  string
	Range Range
}

func (e *NameError) Error() string { return fmt.Sprintf("undefined name %q", e.Name) }

// CallError reports invoking a non-callable value, or a native function
// that raised.
type CallError struct {
	Callee string
	Cause  error
	Range  Range
}

func (e *CallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("error calling %s: %s", e.Callee, e.Cause)
	}
	return fmt.Sprintf("attempt to call a non-function value (%s)", e.Callee)
}
func (e *CallError) Unwrap() error { return e.Cause }

// LoopMisuseError reports a 'break' reaching the top level outside any
// loop.
type LoopMisuseError struct {
	Range Range
}

func (e *LoopMisuseError) Error() string { return "break outside a loop" }

// CancelledError is the error kind for a host-requested abort (spec §5).
// The evaluator has no tick callback or other cancellation hook, so nothing
// in this package returns it.
type CancelledError struct{}

func (e *CancelledError) Error() string { return "evaluation cancelled" }

// InternalInvariantError reports a tree shape that does not match what the
// evaluator expects — a bug, not a user error.
type InternalInvariantError struct {
	Msg   string
	Range Range
}

func (e *InternalInvariantError) Error() string { return "internal invariant violated: " + e.Msg }

// located is implemented by every error kind above (and *TypeError) that
// carries a source Range, letting WrapErrorWithSource render a snippet
// uniformly.
type located interface {
	error
	sourceRange() Range
}

func (e *ParseFailedError) sourceRange() Range {
	if len(e.Diagnostics) > 0 {
		return e.Diagnostics[0].Range
	}
	return Range{}
}
func (e *NameError) sourceRange() Range              { return e.Range }
func (e *CallError) sourceRange() Range              { return e.Range }
func (e *LoopMisuseError) sourceRange() Range        { return e.Range }
func (e *InternalInvariantError) sourceRange() Range { return e.Range }
func (e *TypeError) sourceRange() Range              { return e.Range }

// WrapErrorWithSource augments err with a caret-annotated snippet of src
// when err carries a Range, mirroring the teacher's caret rendering. Other
// errors (e.g. *CancelledError) are returned unchanged.
func WrapErrorWithSource(err error, src string) error {
	le, ok := err.(located)
	if !ok {
		return err
	}
	r := le.sourceRange()
	return fmt.Errorf("%s", snippet(src, errorHeader(err), r.Start.Row, r.Start.Column, err.Error()))
}

func errorHeader(err error) string {
	switch err.(type) {
	case *ParseFailedError:
		return "PARSE ERROR"
	case *TypeError:
		return "TYPE ERROR"
	case *NameError:
		return "NAME ERROR"
	case *CallError:
		return "CALL ERROR"
	case *LoopMisuseError:
		return "LOOP ERROR"
	case *InternalInvariantError:
		return "INTERNAL ERROR"
	default:
		return "RUNTIME ERROR"
	}
}

// snippet builds a Python-like caret snippet: a header line, the 1-based
// line/column, and up to one line of context before and after.
func snippet(src, header string, row, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	line := row + 1
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	column := col + 1
	if column < 1 {
		column = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, column, msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	pad := column - 1
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", pad))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
