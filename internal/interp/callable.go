package interp

import (
	"fmt"
	"time"

	"github.com/loxlang/golox/internal/ast"
	"github.com/loxlang/golox/internal/value"
)

// Callable is any runtime value exposing arity and call — functions,
// classes (construction), and native built-ins all implement it.
type Callable interface {
	value.Value
	Arity() int
	Call(interp *Interpreter, args []value.Value) (value.Value, error)
}

// ---------------------------------------------------------------- clock

// Clock is the single built-in the language's standard library offers:
// arity 0, returns seconds since epoch.
type Clock struct{}

func (Clock) String() string { return "<native fn>" }
func (Clock) Arity() int     { return 0 }
func (Clock) Call(*Interpreter, []value.Value) (value.Value, error) {
	return value.Number(float64(time.Now().UnixNano()) / 1e9), nil
}

// ---------------------------------------------------------------- Function

// Function is a user-defined function or method value. Its closure is
// captured at declaration time and fixed for the function's lifetime.
type Function struct {
	decl          *ast.Function
	closure       *Environment
	isInitializer bool
}

func NewFunction(decl *ast.Function, closure *Environment, isInitializer bool) *Function {
	return &Function{decl: decl, closure: closure, isInitializer: isInitializer}
}

func (f *Function) String() string { return fmt.Sprintf("<fn %s>", f.decl.Name.Lexeme) }
func (f *Function) Arity() int     { return len(f.decl.Params) }

func (f *Function) Call(interp *Interpreter, args []value.Value) (v value.Value, err error) {
	env := NewEnvironment(f.closure)
	for i, param := range f.decl.Params {
		env.Define(param.Lexeme, args[i])
	}

	ret, err := interp.executeBlock(f.decl.Body, env)
	if err != nil {
		return nil, err
	}

	if f.isInitializer {
		return f.closure.GetAt(0, "this"), nil
	}
	if ret != nil {
		return ret, nil
	}
	return value.Nil{}, nil
}

// bind produces a new function value with a frame — holding "this" bound to
// instance — inserted between the method's captured environment and any
// future call frame, so "this" resolves at distance 1 from the body's own
// frame; when the class has a superclass, "super" sits one frame further
// out, at distance 2.
func (f *Function) bind(instance *Instance) *Function {
	env := NewEnvironment(f.closure)
	env.Define("this", instance)
	return NewFunction(f.decl, env, f.isInitializer)
}

// ---------------------------------------------------------------- Class

// Class stores a name→method mapping and an optional superclass reference.
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

func NewClass(name string, superclass *Class, methods map[string]*Function) *Class {
	return &Class{Name: name, Superclass: superclass, Methods: methods}
}

func (c *Class) String() string { return c.Name }

// FindMethod looks up a method by name, checking this class's own methods
// first and then recursively up the superclass chain; the first match wins.
func (c *Class) FindMethod(name string) *Function {
	if m, ok := c.Methods[name]; ok {
		return m
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil
}

func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

func (c *Class) Call(interp *Interpreter, args []value.Value) (value.Value, error) {
	instance := NewInstance(c)
	if init := c.FindMethod("init"); init != nil {
		if _, err := init.bind(instance).Call(interp, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// ---------------------------------------------------------------- Instance

// Instance is an object: a class reference plus dynamic fields.
type Instance struct {
	class  *Class
	fields map[string]value.Value
}

func NewInstance(class *Class) *Instance {
	return &Instance{class: class, fields: make(map[string]value.Value)}
}

func (i *Instance) String() string { return i.class.Name + " instance" }

// Get returns the field if present; otherwise a method bound to this
// instance. It reports false when neither exists; the caller turns that into
// the runtime error.
func (i *Instance) Get(name string) (value.Value, bool) {
	if v, ok := i.fields[name]; ok {
		return v, true
	}
	if method := i.class.FindMethod(name); method != nil {
		return method.bind(i), true
	}
	return nil, false
}

func (i *Instance) Set(name string, v value.Value) {
	i.fields[name] = v
}
