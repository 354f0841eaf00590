// Package lox wires the lexer, parser, resolver, and interpreter into the
// single pipeline every entry point (CLI subcommands, the REPL, and the
// fixture tests) drives, stringing Scan → Parse → Resolve → Evaluate
// behind one struct instead of repeating the wiring at each call site.
package lox

import (
	"fmt"
	"io"

	"github.com/loxlang/golox/internal/ast"
	"github.com/loxlang/golox/internal/diagnostics"
	"github.com/loxlang/golox/internal/interp"
	"github.com/loxlang/golox/internal/lexer"
	"github.com/loxlang/golox/internal/parser"
	"github.com/loxlang/golox/internal/resolver"
	"github.com/loxlang/golox/internal/token"
)

// Pipeline bundles the pieces an entry point drives repeatedly. Diagnostics
// are taken per call (not stored) so a REPL's tenth line isn't permanently
// poisoned by the third line's typo — only the persistent Interpreter
// (needed so top-level declarations survive across REPL lines) lives here.
type Pipeline struct {
	Stdout io.Writer
	interp *interp.Interpreter
}

// New creates a Pipeline that writes `print` output to stdout.
func New(stdout io.Writer) *Pipeline {
	return &Pipeline{Stdout: stdout}
}

// Tokenize scans source and returns its tokens, reporting lexical errors to
// sink.
func (p *Pipeline) Tokenize(source string, sink *diagnostics.Sink) []token.Token {
	return lexer.New(source, sink).ScanTokens()
}

// ParseProgram scans and parses source as a full program (a statement
// list), reporting lexical and syntax errors to sink.
func (p *Pipeline) ParseProgram(source string, sink *diagnostics.Sink) []ast.Stmt {
	tokens := p.Tokenize(source, sink)
	return parser.New(tokens, sink).Parse()
}

// Resolve runs static resolution over stmts, reporting resolution errors to
// sink, and returns the scope-distance table the interpreter needs.
func (p *Pipeline) Resolve(stmts []ast.Stmt, sink *diagnostics.Sink) resolver.Locals {
	return resolver.New(sink).Resolve(stmts)
}

// Run scans, parses, resolves, and interprets source in one shot — the
// path the `run` subcommand and `-e`/`--eval` use. It stops after each
// stage if that stage reported an error, matching spec.md §9's phase
// ordering (never interpret code that failed to resolve).
func (p *Pipeline) Run(source string, sink *diagnostics.Sink) {
	stmts := p.ParseProgram(source, sink)
	if sink.HadError() {
		return
	}

	locals := p.Resolve(stmts, sink)
	if sink.HadError() {
		return
	}

	p.interpreter(locals)
	if err := p.interp.Run(stmts); err != nil {
		reportRuntimeError(sink, err)
	}
}

// REPL evaluates one line of REPL input against the Pipeline's persistent
// interpreter and environment. A line with a lexical, syntax or resolution
// error never reaches the interpreter; a runtime error stops the line but
// keeps whatever its earlier statements already did. Neither poisons later
// lines (each call gets its own sink), and a bare expression statement
// auto-prints its value instead of requiring an explicit print.
func (p *Pipeline) REPL(line string, sink *diagnostics.Sink) {
	stmts := p.ParseProgram(line, sink)
	if sink.HadError() {
		return
	}

	locals := p.Resolve(stmts, sink)
	if sink.HadError() {
		return
	}

	p.interpreter(locals)

	if len(stmts) == 1 {
		if exprStmt, ok := stmts[0].(*ast.Expression); ok {
			v, err := p.interp.Eval(exprStmt.Expression)
			if err != nil {
				reportRuntimeError(sink, err)
				return
			}
			fmt.Fprintln(p.Stdout, v.String())
			return
		}
	}

	if err := p.interp.Run(stmts); err != nil {
		reportRuntimeError(sink, err)
	}
}

// interpreter lazily creates the Pipeline's Interpreter on first use and
// merges newly resolved locals into it on every subsequent call, so a REPL
// session's interpreter accumulates scope information across lines.
func (p *Pipeline) interpreter(locals resolver.Locals) {
	if p.interp == nil {
		p.interp = interp.New(p.Stdout, locals)
		return
	}
	for id, distance := range locals {
		p.interp.Locals()[id] = distance
	}
}

func reportRuntimeError(sink *diagnostics.Sink, err error) {
	if re, ok := err.(*interp.RuntimeError); ok {
		sink.RuntimeError(re.Token.Line, re.Message)
		return
	}
	sink.RuntimeError(0, err.Error())
}
