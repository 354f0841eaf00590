package ast_test

import (
	"testing"

	"github.com/loxlang/golox/internal/ast"
	"github.com/loxlang/golox/internal/token"
	"github.com/stretchr/testify/assert"
)

func TestExprIDsAreStable(t *testing.T) {
	lit := ast.NewLiteral(7, 1.0)
	assert.Equal(t, 7, lit.ID())
}

func TestBinaryString(t *testing.T) {
	left := ast.NewLiteral(0, 1.0)
	right := ast.NewLiteral(1, 2.0)
	op := token.Token{Type: token.PLUS, Lexeme: "+", Line: 1}
	bin := ast.NewBinary(2, left, op, right)
	assert.Equal(t, "(+ 1 2)", bin.String())
}

func TestClassStringIncludesSuperclass(t *testing.T) {
	name := token.Token{Type: token.IDENTIFIER, Lexeme: "Cat", Line: 1}
	super := ast.NewVariable(0, token.Token{Type: token.IDENTIFIER, Lexeme: "Animal", Line: 1})
	class := &ast.Class{Name: name, Superclass: super}
	assert.Contains(t, class.String(), "class Cat < Animal")
}

func TestWhileStringOmitsIncrement(t *testing.T) {
	cond := ast.NewLiteral(0, true)
	body := &ast.Break{}
	w := &ast.While{Condition: cond, Body: body}
	assert.Equal(t, "while (true) break;", w.String())
}
