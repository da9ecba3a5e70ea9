package tailcall_test

import (
	"errors"
	"testing"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/printer"
	"lox/interpreter-go/pkg/tailcall"
)

func rewrite(t *testing.T, fn *ast.FunctionDecl) *ast.FunctionDecl {
	t.Helper()
	out, err := tailcall.Rewrite(fn)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	return out
}

func TestRewriteConditionalCallInThenBranch(t *testing.T) {
	fn := ast.Fn("loop", []string{"n"},
		ast.Cond(ast.Bin(">", ast.ID("n"), ast.Num(0)), ast.Expr(ast.CallOf(ast.ID("loop"), ast.Bin("-", ast.ID("n"), ast.Num(1)))), nil),
	)
	got := printer.Statement(rewrite(t, fn))
	want := "(tailrec fun loop (n) (while (> n 0) (block (var $n (- n 1)) (; (= n $n)))))"
	if got != want {
		t.Fatalf("unexpected rewrite:\n%s\nwant:\n%s", got, want)
	}
}

func TestRewriteCallInElseBranchNegatesCondition(t *testing.T) {
	fn := ast.Fn("foo", []string{"acc", "n"},
		ast.Cond(
			ast.Bin("==", ast.ID("n"), ast.Num(0)),
			ast.Blk(ast.Ret(ast.ID("acc"))),
			ast.Blk(
				ast.Expr(ast.Asg("z", ast.Bin("+", ast.ID("z"), ast.Num(1)))),
				ast.Ret(ast.CallOf(ast.ID("foo"), ast.Bin("*", ast.Num(2), ast.ID("acc")), ast.Bin("-", ast.ID("n"), ast.Num(1)))),
			),
		),
	)
	got := printer.Statement(rewrite(t, fn))
	want := "(tailrec fun foo (acc n) " +
		"(while (! (group (== n 0))) (block " +
		"(var $acc) (var $n) " +
		"(block (; (= z (+ z 1))) (; (= $acc (* 2 acc))) (; (= $n (- n 1)))) " +
		"(; (= acc $acc)) (; (= n $n)))) " +
		"(block (return acc)))"
	if got != want {
		t.Fatalf("unexpected rewrite:\n%s\nwant:\n%s", got, want)
	}
}

func TestRewriteUnconditionalCallRepeatsPrefix(t *testing.T) {
	fn := ast.Fn("f", []string{"n"},
		ast.Let("k", ast.Num(1)),
		ast.Let("unset", nil),
		ast.Ret(ast.CallOf(ast.ID("f"), ast.Bin("+", ast.ID("k"), ast.ID("n")))),
	)
	out := rewrite(t, fn)
	got := printer.Statements(out.Body)
	want := "(var k 1)\n(var unset)\n" +
		"(while true (block (var $n (+ k n)) (; (= n $n)) (; (= k 1)) (; (reset unset))))"
	if got != want {
		t.Fatalf("unexpected rewrite:\n%s\nwant:\n%s", got, want)
	}

	loop := out.Body[2].(*ast.While).Body.(*ast.Block)
	copied := loop.Statements[2].(*ast.ExpressionStmt).Expression.(*ast.Assign).Value
	if copied == ast.Expression(fn.Body[0].(*ast.VarDecl).Initializer) {
		t.Fatalf("repeated prefix shares nodes with the original")
	}
	if decl := loop.Statements[0].(*ast.VarDecl); !decl.Synthetic {
		t.Fatalf("expected synthetic temporary")
	}
}

func TestRewriteResetsUninitializedPrefixVariable(t *testing.T) {
	fn := ast.Fn("f", []string{"n"},
		ast.Let("unset", nil),
		ast.Expr(ast.CallOf(ast.ID("f"), ast.ID("n"))),
	)
	loop := rewrite(t, fn).Body[1].(*ast.While).Body.(*ast.Block)
	reset, ok := loop.Statements[len(loop.Statements)-1].(*ast.ExpressionStmt).Expression.(*ast.Assign)
	if !ok || !reset.Reset || reset.Value != nil {
		t.Fatalf("expected a reset of unset, got %s", printer.Statement(loop))
	}
}

func TestRewriteKeepsPreCallBlockNesting(t *testing.T) {
	fn := ast.Fn("f", []string{"n"},
		ast.Cond(ast.Bin(">", ast.ID("n"), ast.Num(0)), ast.Blk(
			ast.Let("a", ast.ID("n")),
			ast.Blk(
				ast.Let("b", ast.ID("a")),
				ast.Let("a", ast.Bin("-", ast.ID("b"), ast.Num(1))),
				ast.Expr(ast.CallOf(ast.ID("f"), ast.ID("a"))),
			),
		), nil),
	)
	got := printer.Statement(rewrite(t, fn))
	want := "(tailrec fun f (n) (while (> n 0) (block " +
		"(var $n) " +
		"(block (var a n) (block (var b a) (var a (- b 1)) (; (= $n a)))) " +
		"(; (= n $n)))))"
	if got != want {
		t.Fatalf("unexpected rewrite:\n%s\nwant:\n%s", got, want)
	}
}

func TestRewriteUnwrapsSingleBlockBody(t *testing.T) {
	fn := ast.Fn("f", []string{"n"}, ast.Blk(ast.Expr(ast.CallOf(ast.ID("f"), ast.ID("n")))))
	out := rewrite(t, fn)
	if len(out.Body) != 1 {
		t.Fatalf("expected a single block, got %d statements", len(out.Body))
	}
	block, ok := out.Body[0].(*ast.Block)
	if !ok {
		t.Fatalf("expected block, got %T", out.Body[0])
	}
	if _, ok := block.Statements[0].(*ast.While); !ok {
		t.Fatalf("expected loop inside block, got %T", block.Statements[0])
	}
}

func TestRewriteLeavesInputUntouched(t *testing.T) {
	fn := ast.Fn("f", []string{"n"},
		ast.Out(ast.ID("n")),
		ast.Cond(ast.ID("n"), ast.Ret(ast.CallOf(ast.ID("f"), ast.Bool(false))), ast.Ret(ast.Nil())),
	)
	before := printer.Statement(fn)
	rewrite(t, fn)
	if after := printer.Statement(fn); after != before {
		t.Fatalf("input mutated:\n%s\n%s", before, after)
	}
	if fn.TailRec {
		t.Fatalf("input flagged as rewritten")
	}
}

func TestRewriteRejectsUnrecognizedShapes(t *testing.T) {
	cases := map[string]*ast.FunctionDecl{
		"empty body": ast.Fn("f", nil),
		"call inside expression": ast.Fn("f", []string{"n"},
			ast.Ret(ast.Bin("+", ast.Num(1), ast.CallOf(ast.ID("f"), ast.ID("n"))))),
		"call to another function": ast.Fn("f", []string{"n"},
			ast.Ret(ast.CallOf(ast.ID("g"), ast.ID("n")))),
		"no self call in either branch": ast.Fn("f", []string{"n"},
			ast.Cond(ast.ID("n"), ast.Ret(ast.Num(1)), ast.Ret(ast.Num(2)))),
		"trailing print": ast.Fn("f", []string{"n"},
			ast.Expr(ast.CallOf(ast.ID("f"), ast.ID("n"))), ast.Out(ast.ID("n"))),
		"method call": ast.Fn("f", []string{"n"},
			ast.Ret(ast.CallOf(ast.Prop(ast.Self(), "f"), ast.ID("n")))),
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := tailcall.Rewrite(fn)
			var tcErr *tailcall.Error
			if !errors.As(err, &tcErr) {
				t.Fatalf("expected *tailcall.Error, got %v", err)
			}
			if tcErr.Message != tailcall.NotTailRecursive {
				t.Fatalf("unexpected message %q", tcErr.Message)
			}
		})
	}
}

func TestRewriteRejectsArgumentCountMismatch(t *testing.T) {
	fn := ast.Fn("f", []string{"a", "b"}, ast.Expr(ast.CallOf(ast.ID("f"), ast.ID("a"))))
	_, err := tailcall.Rewrite(fn)
	var tcErr *tailcall.Error
	if !errors.As(err, &tcErr) {
		t.Fatalf("expected *tailcall.Error, got %v", err)
	}
	if tcErr.Message != "tail call to 'f' passes 1 arguments, expected 2" {
		t.Fatalf("unexpected message %q", tcErr.Message)
	}
}
