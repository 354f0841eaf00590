package resolver_test

import (
	"bytes"
	"testing"

	"github.com/loxlang/golox/internal/diagnostics"
	"github.com/loxlang/golox/internal/lexer"
	"github.com/loxlang/golox/internal/parser"
	"github.com/loxlang/golox/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolve(t *testing.T, source string) (resolver.Locals, *diagnostics.Sink) {
	t.Helper()
	var buf bytes.Buffer
	sink := diagnostics.NewSink(&buf, false)
	toks := lexer.New(source, sink).ScanTokens()
	stmts := parser.New(toks, sink).Parse()
	require.False(t, sink.HadError())
	locals := resolver.New(sink).Resolve(stmts)
	return locals, sink
}

func TestResolveLocalVariableDistance(t *testing.T) {
	locals, sink := resolve(t, `
		var a = "global";
		{
			var a = "block";
			print a;
		}
	`)
	require.False(t, sink.HadError())
	assert.Len(t, locals, 1)
	for _, distance := range locals {
		assert.Equal(t, 0, distance)
	}
}

func TestResolveClosureDistance(t *testing.T) {
	locals, sink := resolve(t, `
		fun outer() {
			var x = 1;
			fun inner() {
				print x;
			}
			inner();
		}
	`)
	require.False(t, sink.HadError())
	// print x resolves at distance 1 (inner's scope -> outer's scope);
	// the inner() call resolves at distance 0 (outer's own scope).
	found := map[int]bool{}
	for _, d := range locals {
		found[d] = true
	}
	assert.True(t, found[0])
	assert.True(t, found[1])
}

func TestResolveSelfReferenceInInitializerIsError(t *testing.T) {
	_, sink := resolve(t, `{ var a = a; }`)
	assert.True(t, sink.HadError())
}

func TestResolveDuplicateLocalDeclarationIsError(t *testing.T) {
	_, sink := resolve(t, `{ var a = 1; var a = 2; }`)
	assert.True(t, sink.HadError())
}

func TestResolveReturnOutsideFunctionIsError(t *testing.T) {
	_, sink := resolve(t, `return 1;`)
	assert.True(t, sink.HadError())
}

func TestResolveReturnValueFromInitializerIsError(t *testing.T) {
	_, sink := resolve(t, `
		class Foo {
			init() {
				return 1;
			}
		}
	`)
	assert.True(t, sink.HadError())
}

func TestResolveThisOutsideClassIsError(t *testing.T) {
	_, sink := resolve(t, `print this;`)
	assert.True(t, sink.HadError())
}

func TestResolveSuperWithoutSuperclassIsError(t *testing.T) {
	_, sink := resolve(t, `
		class Foo {
			bar() { return super.bar(); }
		}
	`)
	assert.True(t, sink.HadError())
}

func TestResolveClassInheritingFromItselfIsError(t *testing.T) {
	_, sink := resolve(t, `class Foo < Foo {}`)
	assert.True(t, sink.HadError())
}
