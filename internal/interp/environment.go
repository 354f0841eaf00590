package interp

import (
	"fmt"

	"github.com/loxlang/golox/internal/token"
	"github.com/loxlang/golox/internal/value"
)

// Environment is one lexical scope's name→value mapping plus a parent link.
// Frames form a forest: each has at most one parent, and a function value
// keeps its capturing frame alive for as long as the function value itself
// is reachable.
type Environment struct {
	parent *Environment
	values map[string]value.Value
}

// NewEnvironment creates a frame whose parent is parent (nil for the global
// frame).
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{parent: parent, values: make(map[string]value.Value)}
}

// Define writes into the current frame unconditionally — redefinition in
// the same frame always succeeds (useful for a REPL; see spec.md §4.3).
func (e *Environment) Define(name string, v value.Value) {
	e.values[name] = v
}

// Get looks up name in this frame, then its ancestors, failing with a
// runtime error if no frame defines it.
func (e *Environment) Get(name token.Token) (value.Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name.Lexeme]; ok {
			return v, nil
		}
	}
	return nil, newRuntimeError(name, fmt.Sprintf("Undefined variable '%s'.", name.Lexeme))
}

// Assign walks the same chain as Get but replaces an existing binding
// instead of creating one; it fails if no enclosing frame already defines
// the name.
func (e *Environment) Assign(name token.Token, v value.Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name.Lexeme]; ok {
			env.values[name.Lexeme] = v
			return nil
		}
	}
	return newRuntimeError(name, fmt.Sprintf("Undefined variable '%s'.", name.Lexeme))
}

// GetAt walks exactly distance parents — no fallback — as directed by the
// resolver's scope-distance map.
func (e *Environment) GetAt(distance int, name string) value.Value {
	return e.ancestor(distance).values[name]
}

// AssignAt is the write counterpart of GetAt.
func (e *Environment) AssignAt(distance int, name string, v value.Value) {
	e.ancestor(distance).values[name] = v
}

func (e *Environment) ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.parent
	}
	return env
}
