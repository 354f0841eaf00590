// Package diagnostics renders and accumulates the interpreter's static and
// runtime error reports through an explicit sink passed by reference,
// rather than process-wide error flags or inline
// fmt.Fprintf(os.Stderr, ...); os.Exit(...) calls at each call site.
package diagnostics

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Kind distinguishes the two error categories spec.md §7 defines.
type Kind int

const (
	// Static covers lexical, parse, and resolution errors.
	Static Kind = iota
	// Runtime covers errors raised while walking the tree.
	Runtime
)

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Kind    Kind
	Line    int
	Where   string // " at end", " at 'LEX'", or "" — empty for runtime errors
	Message string
}

// Format renders the diagnostic the way spec.md §7 specifies:
// static:  "[line L] Error AT: MESSAGE"
// runtime: "MESSAGE\n[line L]"
func (d Diagnostic) Format(useColor bool) string {
	var sb strings.Builder
	paint := func(s string) string { return s }
	if useColor {
		paint = color.New(color.FgRed, color.Bold).Sprint
	}

	switch d.Kind {
	case Static:
		fmt.Fprintf(&sb, "[line %d] %s%s: %s", d.Line, paint("Error"), d.Where, d.Message)
	case Runtime:
		fmt.Fprintf(&sb, "%s\n[line %d]", paint(d.Message), d.Line)
	}
	return sb.String()
}

// Sink accumulates diagnostics for a single run and tracks whether a static
// or runtime error occurred, mirroring the driver's had_error /
// had_runtime_error flags from spec.md §9 without relying on package-level
// mutable state.
type Sink struct {
	w        io.Writer
	useColor bool

	diags          []Diagnostic
	hadError       bool
	hadRuntimeErr  bool
}

// NewSink creates a Sink writing formatted diagnostics to w.
func NewSink(w io.Writer, useColor bool) *Sink {
	return &Sink{w: w, useColor: useColor}
}

// StaticError records a lexical/parse/resolution error at line with the
// given "at" context (e.g. " at end", " at 'foo'", or "").
func (s *Sink) StaticError(line int, where, message string) {
	s.report(Diagnostic{Kind: Static, Line: line, Where: where, Message: message})
	s.hadError = true
}

// RuntimeError records a runtime error.
func (s *Sink) RuntimeError(line int, message string) {
	s.report(Diagnostic{Kind: Runtime, Line: line, Message: message})
	s.hadRuntimeErr = true
}

func (s *Sink) report(d Diagnostic) {
	s.diags = append(s.diags, d)
	if s.w != nil {
		fmt.Fprintln(s.w, d.Format(s.useColor))
	}
}

// HadError reports whether any static error was recorded.
func (s *Sink) HadError() bool { return s.hadError }

// HadRuntimeError reports whether a runtime error was recorded.
func (s *Sink) HadRuntimeError() bool { return s.hadRuntimeErr }

// Diagnostics returns every diagnostic recorded so far, in report order.
func (s *Sink) Diagnostics() []Diagnostic { return s.diags }

// ExitCode implements the CLI contract from spec.md §6.
func (s *Sink) ExitCode() int {
	switch {
	case s.hadRuntimeErr:
		return 70
	case s.hadError:
		return 65
	default:
		return 0
	}
}
