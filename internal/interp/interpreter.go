// Package interp walks the AST to produce side effects and values: a
// single-threaded, synchronous tree-walking evaluator using a chain of
// per-scope Environments, closure capture for functions, and a
// class/instance model with method binding and superclass dispatch.
package interp

import (
	"fmt"
	"io"

	"github.com/loxlang/golox/internal/ast"
	"github.com/loxlang/golox/internal/resolver"
	"github.com/loxlang/golox/internal/token"
	"github.com/loxlang/golox/internal/value"
)

// RuntimeError carries the token (for its line) and message spec.md §7
// requires for the "MESSAGE\n[line L]" report.
type RuntimeError struct {
	Token   token.Token
	Message string
}

func (e *RuntimeError) Error() string { return e.Message }

func newRuntimeError(tok token.Token, message string) *RuntimeError {
	return &RuntimeError{Token: tok, Message: message}
}

// Internal, non-error control-flow unwinds. These must never surface to a
// caller as an error; they are always recovered at the loop or call
// boundary that owns them (spec.md §7).
type returnUnwind struct{ value value.Value }
type breakUnwind struct{}
type continueUnwind struct{}

// Interpreter owns exactly one mutable field relevant to evaluation order:
// the current environment frame (spec.md §5). There is one Interpreter per
// Run invocation.
type Interpreter struct {
	Globals *Environment
	env     *Environment
	locals  resolver.Locals
	stdout  io.Writer
}

// New creates an Interpreter that writes `print` output to stdout and
// resolves variable references using locals (produced by the resolver).
func New(stdout io.Writer, locals resolver.Locals) *Interpreter {
	globals := NewEnvironment(nil)
	globals.Define("clock", Clock{})
	return &Interpreter{Globals: globals, env: globals, locals: locals, stdout: stdout}
}

// Locals exposes the scope-distance table so a REPL can merge in locals
// resolved from later lines into the same long-lived interpreter.
func (i *Interpreter) Locals() resolver.Locals { return i.locals }

// Run executes a program's statement list in the global environment.
func (i *Interpreter) Run(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := i.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------- Statements

// Exec executes one statement. It returns a *RuntimeError for genuine
// runtime failures; return/break/continue propagate as panics caught at
// their owning boundary (executeBlock, via Function.Call, for return;
// runLoopBody, via execWhile, for break/continue). runInEnv does not catch
// them; it only restores the enclosing frame as they pass through.
func (i *Interpreter) Exec(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.Expression:
		_, err := i.Eval(n.Expression)
		return err
	case *ast.Print:
		v, err := i.Eval(n.Expression)
		if err != nil {
			return err
		}
		fmt.Fprintln(i.stdout, v.String())
		return nil
	case *ast.Var:
		return i.execVar(n)
	case *ast.Block:
		return i.runInEnv(n.Statements, NewEnvironment(i.env))
	case *ast.If:
		return i.execIf(n)
	case *ast.While:
		return i.execWhile(n)
	case *ast.Function:
		i.env.Define(n.Name.Lexeme, NewFunction(n, i.env, false))
		return nil
	case *ast.Return:
		return i.execReturn(n)
	case *ast.Class:
		return i.execClass(n)
	case *ast.Break:
		panic(breakUnwind{})
	case *ast.Continue:
		panic(continueUnwind{})
	default:
		panic("interp: unhandled statement type")
	}
}

func (i *Interpreter) execVar(n *ast.Var) error {
	var v value.Value = value.Nil{}
	if n.Initializer != nil {
		var err error
		v, err = i.Eval(n.Initializer)
		if err != nil {
			return err
		}
	}
	i.env.Define(n.Name.Lexeme, v)
	return nil
}

func (i *Interpreter) execIf(n *ast.If) error {
	cond, err := i.Eval(n.Condition)
	if err != nil {
		return err
	}
	if value.Truthy(cond) {
		return i.Exec(n.Then)
	}
	if n.Else != nil {
		return i.Exec(n.Else)
	}
	return nil
}

// execWhile: on break, the loop exits without running Increment; on
// continue, Increment still runs (spec.md §4.6/§8) before the condition is
// re-checked.
func (i *Interpreter) execWhile(n *ast.While) error {
	for {
		cond, err := i.Eval(n.Condition)
		if err != nil {
			return err
		}
		if !value.Truthy(cond) {
			return nil
		}

		brk, err := i.runLoopBody(n.Body)
		if err != nil {
			return err
		}
		if brk {
			return nil
		}

		if n.Increment != nil {
			if _, err := i.Eval(n.Increment); err != nil {
				return err
			}
		}
	}
}

func (i *Interpreter) runLoopBody(body ast.Stmt) (brk bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch r.(type) {
			case breakUnwind:
				brk = true
			case continueUnwind:
				// fall through: brk stays false, increment still runs
			default:
				panic(r)
			}
		}
	}()
	return false, i.Exec(body)
}

func (i *Interpreter) execReturn(n *ast.Return) error {
	var v value.Value = value.Nil{}
	if n.Value != nil {
		var err error
		v, err = i.Eval(n.Value)
		if err != nil {
			return err
		}
	}
	panic(returnUnwind{value: v})
}

func (i *Interpreter) execClass(n *ast.Class) error {
	var superclass *Class
	if n.Superclass != nil {
		sv, err := i.Eval(n.Superclass)
		if err != nil {
			return err
		}
		sc, ok := sv.(*Class)
		if !ok {
			return newRuntimeError(n.Superclass.Name, "Superclass must be a class.")
		}
		superclass = sc
	}

	i.env.Define(n.Name.Lexeme, value.Nil{})

	methodEnv := i.env
	if superclass != nil {
		methodEnv = NewEnvironment(i.env)
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*Function, len(n.Methods))
	for _, m := range n.Methods {
		methods[m.Name.Lexeme] = NewFunction(m, methodEnv, m.Name.Lexeme == "init")
	}

	class := NewClass(n.Name.Lexeme, superclass, methods)
	return i.env.Assign(n.Name, class)
}

// runInEnv runs stmts with env as the current frame, restoring the previous
// frame on every exit path — including propagation of return/break/continue
// panics and runtime errors (spec.md §5).
func (i *Interpreter) runInEnv(stmts []ast.Stmt, env *Environment) error {
	previous := i.env
	i.env = env
	defer func() { i.env = previous }()

	for _, s := range stmts {
		if err := i.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// executeBlock is runInEnv that also reports a return unwind as a value, for
// Function.Call.
func (i *Interpreter) executeBlock(stmts []ast.Stmt, env *Environment) (ret value.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ru, ok := r.(returnUnwind); ok {
				ret, err = ru.value, nil
				return
			}
			panic(r)
		}
	}()

	if execErr := i.runInEnv(stmts, env); execErr != nil {
		return nil, execErr
	}
	return nil, nil
}

// ---------------------------------------------------------------- Expressions

// Eval evaluates one expression, strictly and left-to-right as spec.md §5
// requires at every position.
func (i *Interpreter) Eval(e ast.Expr) (value.Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return literalValue(n.Value), nil
	case *ast.Grouping:
		return i.Eval(n.Expression)
	case *ast.Unary:
		return i.evalUnary(n)
	case *ast.Binary:
		return i.evalBinary(n)
	case *ast.Logical:
		return i.evalLogical(n)
	case *ast.Variable:
		return i.lookUpVariable(n.Name, n.ID())
	case *ast.Assign:
		return i.evalAssign(n)
	case *ast.Call:
		return i.evalCall(n)
	case *ast.Get:
		return i.evalGet(n)
	case *ast.Set:
		return i.evalSet(n)
	case *ast.This:
		return i.lookUpVariable(n.Keyword, n.ID())
	case *ast.Super:
		return i.evalSuper(n)
	default:
		panic("interp: unhandled expression type")
	}
}

func literalValue(v any) value.Value {
	switch val := v.(type) {
	case nil:
		return value.Nil{}
	case bool:
		return value.Bool(val)
	case float64:
		return value.Number(val)
	case string:
		return value.String(val)
	default:
		panic(fmt.Sprintf("interp: unexpected literal type %T", v))
	}
}

func (i *Interpreter) lookUpVariable(name token.Token, exprID int) (value.Value, error) {
	if distance, ok := i.locals[exprID]; ok {
		return i.env.GetAt(distance, name.Lexeme), nil
	}
	return i.Globals.Get(name)
}

func (i *Interpreter) evalAssign(n *ast.Assign) (value.Value, error) {
	v, err := i.Eval(n.Value)
	if err != nil {
		return nil, err
	}

	if distance, ok := i.locals[n.ID()]; ok {
		i.env.AssignAt(distance, n.Name.Lexeme, v)
		return v, nil
	}
	if err := i.Globals.Assign(n.Name, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (i *Interpreter) evalUnary(n *ast.Unary) (value.Value, error) {
	right, err := i.Eval(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Operator.Type {
	case token.BANG:
		return value.Bool(!value.Truthy(right)), nil
	case token.MINUS:
		num, ok := right.(value.Number)
		if !ok {
			return nil, newRuntimeError(n.Operator, "Operand must be a number.")
		}
		return -num, nil
	default:
		panic("interp: unhandled unary operator")
	}
}

func (i *Interpreter) evalLogical(n *ast.Logical) (value.Value, error) {
	left, err := i.Eval(n.Left)
	if err != nil {
		return nil, err
	}

	if n.Operator.Type == token.OR {
		if value.Truthy(left) {
			return left, nil
		}
	} else { // AND
		if !value.Truthy(left) {
			return left, nil
		}
	}

	return i.Eval(n.Right)
}

func (i *Interpreter) evalBinary(n *ast.Binary) (value.Value, error) {
	left, err := i.Eval(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.Eval(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Operator.Type {
	case token.PLUS:
		return evalPlus(left, right, n.Operator)
	case token.MINUS:
		a, b, err := bothNumbers(left, right, n.Operator)
		if err != nil {
			return nil, err
		}
		return a - b, nil
	case token.STAR:
		a, b, err := bothNumbers(left, right, n.Operator)
		if err != nil {
			return nil, err
		}
		return a * b, nil
	case token.SLASH:
		a, b, err := bothNumbers(left, right, n.Operator)
		if err != nil {
			return nil, err
		}
		return a / b, nil
	case token.GREATER:
		a, b, err := bothNumbers(left, right, n.Operator)
		if err != nil {
			return nil, err
		}
		return value.Bool(a > b), nil
	case token.GREATER_EQUAL:
		a, b, err := bothNumbers(left, right, n.Operator)
		if err != nil {
			return nil, err
		}
		return value.Bool(a >= b), nil
	case token.LESS:
		a, b, err := bothNumbers(left, right, n.Operator)
		if err != nil {
			return nil, err
		}
		return value.Bool(a < b), nil
	case token.LESS_EQUAL:
		a, b, err := bothNumbers(left, right, n.Operator)
		if err != nil {
			return nil, err
		}
		return value.Bool(a <= b), nil
	case token.EQUAL_EQUAL:
		return value.Bool(value.Equal(left, right)), nil
	case token.BANG_EQUAL:
		return value.Bool(!value.Equal(left, right)), nil
	default:
		panic("interp: unhandled binary operator")
	}
}

func evalPlus(left, right value.Value, op token.Token) (value.Value, error) {
	if a, ok := left.(value.Number); ok {
		if b, ok := right.(value.Number); ok {
			return a + b, nil
		}
	}
	if a, ok := left.(value.String); ok {
		if b, ok := right.(value.String); ok {
			return a + b, nil
		}
	}
	return nil, newRuntimeError(op, "Operands must be numbers or strings.")
}

func bothNumbers(left, right value.Value, op token.Token) (value.Number, value.Number, error) {
	a, aOK := left.(value.Number)
	b, bOK := right.(value.Number)
	if !aOK || !bOK {
		return 0, 0, newRuntimeError(op, "Operands must be a number.")
	}
	return a, b, nil
}

func (i *Interpreter) evalCall(n *ast.Call) (value.Value, error) {
	callee, err := i.Eval(n.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]value.Value, len(n.Args))
	for idx, a := range n.Args {
		v, err := i.Eval(a)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}

	callable, ok := callee.(Callable)
	if !ok {
		return nil, newRuntimeError(n.Paren, "Can only call functions and classes.")
	}

	if len(args) != callable.Arity() {
		return nil, newRuntimeError(n.Paren,
			fmt.Sprintf("Expected %d arguments but got %d.", callable.Arity(), len(args)))
	}

	return callable.Call(i, args)
}

func (i *Interpreter) evalGet(n *ast.Get) (value.Value, error) {
	obj, err := i.Eval(n.Object)
	if err != nil {
		return nil, err
	}

	inst, ok := obj.(*Instance)
	if !ok {
		return nil, newRuntimeError(n.Name, "Only instances have properties.")
	}

	v, found := inst.Get(n.Name.Lexeme)
	if !found {
		return nil, newRuntimeError(n.Name, fmt.Sprintf("Undefined property '%s'.", n.Name.Lexeme))
	}
	return v, nil
}

func (i *Interpreter) evalSet(n *ast.Set) (value.Value, error) {
	obj, err := i.Eval(n.Object)
	if err != nil {
		return nil, err
	}

	inst, ok := obj.(*Instance)
	if !ok {
		return nil, newRuntimeError(n.Name, "Only instances have fields.")
	}

	v, err := i.Eval(n.Value)
	if err != nil {
		return nil, err
	}

	inst.Set(n.Name.Lexeme, v)
	return v, nil
}

// evalSuper implements spec.md §4.5's distance arithmetic: super sits one
// frame above this, by construction of the resolver's scope nesting.
func (i *Interpreter) evalSuper(n *ast.Super) (value.Value, error) {
	distance := i.locals[n.ID()]

	superclass, _ := i.env.GetAt(distance, "super").(*Class)
	instance, _ := i.env.GetAt(distance-1, "this").(*Instance)

	method := superclass.FindMethod(n.Method.Lexeme)
	if method == nil {
		return nil, newRuntimeError(n.Method, fmt.Sprintf("Undefined property '%s'.", n.Method.Lexeme))
	}
	return method.bind(instance), nil
}
