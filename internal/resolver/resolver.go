// Package resolver performs the static analysis pass that assigns every
// variable reference a nonnegative lexical scope distance, so the
// interpreter never has to walk the environment chain by name at runtime.
package resolver

import (
	"github.com/loxlang/golox/internal/ast"
	"github.com/loxlang/golox/internal/diagnostics"
	"github.com/loxlang/golox/internal/token"
)

type functionType int

const (
	functionNone functionType = iota
	functionFunction
	functionMethod
	functionInitializer
)

type classType int

const (
	classNone classType = iota
	classClass
	classSubclass
)

// Locals maps an expression node's stable ID to the resolved scope distance.
// Absence of an entry means "global: look up by name in the global frame".
type Locals map[int]int

// scope maps a name to whether it has finished resolving its initializer.
type scope map[string]bool

// Resolver is a single pre-order walk over the AST. It never mutates the
// AST; it only writes into Locals.
type Resolver struct {
	sink   *diagnostics.Sink
	locals Locals
	scopes []scope

	currentFunction functionType
	currentClass    classType
}

// New creates a Resolver reporting static-semantic errors to sink.
func New(sink *diagnostics.Sink) *Resolver {
	return &Resolver{sink: sink, locals: make(Locals)}
}

// Resolve walks the whole program and returns the completed Locals map.
func (r *Resolver) Resolve(stmts []ast.Stmt) Locals {
	r.resolveStmts(stmts)
	return r.locals
}

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.Block:
		r.beginScope()
		r.resolveStmts(n.Statements)
		r.endScope()
	case *ast.Class:
		r.resolveClass(n)
	case *ast.Var:
		r.resolveVar(n)
	case *ast.Function:
		r.declare(n.Name)
		r.define(n.Name)
		r.resolveFunction(n, functionFunction)
	case *ast.Expression:
		r.resolveExpr(n.Expression)
	case *ast.If:
		r.resolveExpr(n.Condition)
		r.resolveStmt(n.Then)
		if n.Else != nil {
			r.resolveStmt(n.Else)
		}
	case *ast.Print:
		r.resolveExpr(n.Expression)
	case *ast.Return:
		r.resolveReturn(n)
	case *ast.While:
		r.resolveExpr(n.Condition)
		r.resolveStmt(n.Body)
		if n.Increment != nil {
			r.resolveExpr(n.Increment)
		}
	case *ast.Break, *ast.Continue:
		// nothing to resolve; loop-nesting is a parser-enforced invariant
	default:
		panic("resolver: unhandled statement type")
	}
}

func (r *Resolver) resolveVar(n *ast.Var) {
	r.declare(n.Name)
	if n.Initializer != nil {
		r.resolveExpr(n.Initializer)
	}
	r.define(n.Name)
}

func (r *Resolver) resolveReturn(n *ast.Return) {
	if r.currentFunction == functionNone {
		r.sink.StaticError(n.Keyword.Line, " at '"+n.Keyword.Lexeme+"'", "Can't return from top-level code.")
	}
	if n.Value != nil {
		if r.currentFunction == functionInitializer {
			r.sink.StaticError(n.Keyword.Line, "", "Can't return a value from an initializer.")
		}
		r.resolveExpr(n.Value)
	}
}

func (r *Resolver) resolveClass(n *ast.Class) {
	enclosingClass := r.currentClass
	r.currentClass = classClass

	r.declare(n.Name)
	r.define(n.Name)

	if n.Superclass != nil {
		if n.Superclass.Name.Lexeme == n.Name.Lexeme {
			r.sink.StaticError(n.Superclass.Name.Line, "", "A class can't inherit from itself.")
		}
		r.currentClass = classSubclass
		r.resolveExpr(n.Superclass)

		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true

	for _, method := range n.Methods {
		fnType := functionMethod
		if method.Name.Lexeme == "init" {
			fnType = functionInitializer
		}
		r.resolveFunction(method, fnType)
	}

	r.endScope()

	if n.Superclass != nil {
		r.endScope()
	}

	r.currentClass = enclosingClass
}

func (r *Resolver) resolveFunction(fn *ast.Function, fnType functionType) {
	enclosing := r.currentFunction
	r.currentFunction = fnType

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStmts(fn.Body)
	r.endScope()

	r.currentFunction = enclosing
}

func (r *Resolver) resolveExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Variable:
		r.resolveVariable(n)
	case *ast.Assign:
		r.resolveExpr(n.Value)
		r.resolveLocal(n.ID(), n.Name.Lexeme)
	case *ast.Binary:
		r.resolveExpr(n.Left)
		r.resolveExpr(n.Right)
	case *ast.Logical:
		r.resolveExpr(n.Left)
		r.resolveExpr(n.Right)
	case *ast.Call:
		r.resolveExpr(n.Callee)
		for _, a := range n.Args {
			r.resolveExpr(a)
		}
	case *ast.Get:
		r.resolveExpr(n.Object)
	case *ast.Set:
		r.resolveExpr(n.Value)
		r.resolveExpr(n.Object)
	case *ast.Grouping:
		r.resolveExpr(n.Expression)
	case *ast.Unary:
		r.resolveExpr(n.Right)
	case *ast.Literal:
		// nothing to resolve
	case *ast.This:
		if r.currentClass == classNone {
			r.sink.StaticError(n.Keyword.Line, "", "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(n.ID(), n.Keyword.Lexeme)
	case *ast.Super:
		r.resolveSuper(n)
	default:
		panic("resolver: unhandled expression type")
	}
}

func (r *Resolver) resolveVariable(n *ast.Variable) {
	if len(r.scopes) > 0 {
		if defined, declared := r.scopes[len(r.scopes)-1][n.Name.Lexeme]; declared && !defined {
			r.sink.StaticError(n.Name.Line, " at '"+n.Name.Lexeme+"'",
				"Can't read local variable in its own initializer.")
		}
	}
	r.resolveLocal(n.ID(), n.Name.Lexeme)
}

func (r *Resolver) resolveSuper(n *ast.Super) {
	switch r.currentClass {
	case classNone:
		r.sink.StaticError(n.Keyword.Line, "", "Can't use 'super' outside of a class.")
	case classClass:
		r.sink.StaticError(n.Keyword.Line, "", "Can't use 'super' in a class with no superclass.")
	}
	r.resolveLocal(n.ID(), n.Keyword.Lexeme)
}

// ---------------------------------------------------------------- Scopes

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(scope))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	s := r.scopes[len(r.scopes)-1]
	if _, ok := s[name.Lexeme]; ok {
		r.sink.StaticError(name.Line, " at '"+name.Lexeme+"'",
			"Already a variable with this name in this scope.")
	}
	s[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}

// resolveLocal walks scopes from innermost outward; the first scope
// containing name records how many frames above the innermost it sits.
// No match means the reference is global and is left unresolved.
func (r *Resolver) resolveLocal(exprID int, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.locals[exprID] = len(r.scopes) - 1 - i
			return
		}
	}
}
