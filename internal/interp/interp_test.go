package interp_test

import (
	"bytes"
	"testing"

	"github.com/loxlang/golox/internal/diagnostics"
	"github.com/loxlang/golox/internal/interp"
	"github.com/loxlang/golox/internal/lexer"
	"github.com/loxlang/golox/internal/parser"
	"github.com/loxlang/golox/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run is the test harness's own small pipeline, independent of
// internal/lox, so these tests exercise interp in isolation.
func run(t *testing.T, source string) (stdout string, runErr error, sink *diagnostics.Sink) {
	t.Helper()
	var errBuf, outBuf bytes.Buffer
	sink = diagnostics.NewSink(&errBuf, false)

	toks := lexer.New(source, sink).ScanTokens()
	stmts := parser.New(toks, sink).Parse()
	require.False(t, sink.HadError(), "unexpected parse error: %s", errBuf.String())

	locals := resolver.New(sink).Resolve(stmts)
	require.False(t, sink.HadError(), "unexpected resolve error: %s", errBuf.String())

	i := interp.New(&outBuf, locals)
	runErr = i.Run(stmts)
	return outBuf.String(), runErr, sink
}

func TestArithmeticAndPrint(t *testing.T) {
	out, err, _ := run(t, `print 1 + 2 * 3;`)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func TestStringConcatenation(t *testing.T) {
	out, err, _ := run(t, `print "foo" + "bar";`)
	require.NoError(t, err)
	assert.Equal(t, "foobar\n", out)
}

func TestTruthinessAndLogicalShortCircuit(t *testing.T) {
	out, err, _ := run(t, `
		print nil or "default";
		print false and "unreached" or "fallback";
	`)
	require.NoError(t, err)
	assert.Equal(t, "default\nfallback\n", out)
}

func TestVariableScopingAndShadowing(t *testing.T) {
	out, err, _ := run(t, `
		var a = "outer";
		{
			var a = "inner";
			print a;
		}
		print a;
	`)
	require.NoError(t, err)
	assert.Equal(t, "inner\nouter\n", out)
}

func TestClosureCapturesByReference(t *testing.T) {
	out, err, _ := run(t, `
		fun makeCounter() {
			var count = 0;
			fun increment() {
				count = count + 1;
				print count;
			}
			return increment;
		}
		var counter = makeCounter();
		counter();
		counter();
	`)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n", out)
}

func TestWhileBreak(t *testing.T) {
	out, err, _ := run(t, `
		var i = 0;
		while (true) {
			if (i >= 3) break;
			print i;
			i = i + 1;
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestForContinueStillRunsIncrement(t *testing.T) {
	out, err, _ := run(t, `
		for (var i = 0; i < 5; i = i + 1) {
			if (i == 2) continue;
			print i;
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n3\n4\n", out)
}

func TestClassInstanceFieldsAndMethods(t *testing.T) {
	out, err, _ := run(t, `
		class Greeter {
			init(name) {
				this.name = name;
			}
			greet() {
				print "Hello, " + this.name + "!";
			}
		}
		var g = Greeter("World");
		g.greet();
	`)
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!\n", out)
}

func TestSuperDispatch(t *testing.T) {
	out, err, _ := run(t, `
		class Animal {
			speak() {
				print "...";
			}
		}
		class Dog < Animal {
			speak() {
				super.speak();
				print "Woof!";
			}
		}
		Dog().speak();
	`)
	require.NoError(t, err)
	assert.Equal(t, "...\nWoof!\n", out)
}

func TestRuntimeErrorOnBadOperand(t *testing.T) {
	_, err, _ := run(t, `print "foo" - 1;`)
	require.Error(t, err)
	re, ok := err.(*interp.RuntimeError)
	require.True(t, ok)
	assert.Equal(t, "Operands must be a number.", re.Message)
}

func TestRuntimeErrorUndefinedProperty(t *testing.T) {
	_, err, _ := run(t, `
		class Box {}
		print Box().missing;
	`)
	require.Error(t, err)
	re, ok := err.(*interp.RuntimeError)
	require.True(t, ok)
	assert.Equal(t, "Undefined property 'missing'.", re.Message)
}

func TestCallArityMismatch(t *testing.T) {
	_, err, _ := run(t, `
		fun add(a, b) { return a + b; }
		add(1);
	`)
	require.Error(t, err)
	re, ok := err.(*interp.RuntimeError)
	require.True(t, ok)
	assert.Equal(t, "Expected 2 arguments but got 1.", re.Message)
}
