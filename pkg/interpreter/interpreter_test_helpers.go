package interpreter

import (
	"bytes"
	"testing"

	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/resolver"
	"lox/interpreter-go/pkg/runtime"
)

// runSource parses, resolves and interprets source, returning the printed
// output and the run error. Static errors fail the test.
func runSource(t *testing.T, source string, opts ...Option) (*Interpreter, string, error) {
	t.Helper()
	stmts, diags := parser.ParseSource(source)
	if err := diags.Err(); err != nil {
		t.Fatalf("parse: %v", err)
	}
	distances, diags := resolver.Resolve(stmts)
	if err := diags.Err(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var out bytes.Buffer
	interp := New(append([]Option{WithOutput(&out)}, opts...)...)
	interp.Resolve(distances)
	err := interp.Interpret(stmts)
	return interp, out.String(), err
}

func mustRun(t *testing.T, source string, opts ...Option) (*Interpreter, string) {
	t.Helper()
	interp, out, err := runSource(t, source, opts...)
	if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}
	return interp, out
}

func globalNumber(t *testing.T, interp *Interpreter, name string) float64 {
	t.Helper()
	val, err := interp.GlobalEnvironment().Get(name)
	if err != nil {
		t.Fatalf("global %s: %v", name, err)
	}
	num, ok := val.(runtime.NumberValue)
	if !ok {
		t.Fatalf("global %s: expected number, got %#v", name, val)
	}
	return num.Val
}
