package token_test

import (
	"testing"

	"github.com/loxlang/golox/internal/token"
	"github.com/stretchr/testify/assert"
)

func TestTokenString(t *testing.T) {
	tok := token.Token{Type: token.STRING, Lexeme: `"hi"`, Literal: "hi", Line: 1}
	assert.Equal(t, "STRING \"hi\" hi", tok.String())

	noLit := token.Token{Type: token.PLUS, Lexeme: "+", Line: 1}
	assert.Equal(t, "PLUS + null", noLit.String())
}

func TestKeywordsTakePrecedenceOverIdentifiers(t *testing.T) {
	typ, ok := token.Keywords["class"]
	assert.True(t, ok)
	assert.Equal(t, token.CLASS, typ)

	_, ok = token.Keywords["classy"]
	assert.False(t, ok)
}

func TestTypeStringUnknown(t *testing.T) {
	assert.Equal(t, "Type(999)", token.Type(999).String())
}
