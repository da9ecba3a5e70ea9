// Package tailcall rewrites self-tail-recursive function bodies into loops.
//
// The evaluator has no general tail-call elimination, so a function opted in
// with `tailrec` is rewritten once, when its declaration is parsed and before
// scope resolution, into
//
//	initial...
//	while (cond) { preCalls + simultaneous parameter rebinding; initial'... }
//	termination...
//
// where initial' is a fresh copy of the statements preceding the trailing
// construct, so every iteration runs the same prefix a recursive call would.
package tailcall

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
)

// NotTailRecursive is the diagnostic for a tailrec body of unrecognized shape.
const NotTailRecursive = "function marked as tail-recursive is not tail-recursive"

// Error explains why a declaration could not be rewritten.
type Error struct {
	Token   ast.Token
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[line %d] %s", e.Token.Line, e.Message)
}

// tailCallFunction is the recognized shape of a tail-recursive body.
type tailCallFunction struct {
	call        *ast.Call
	preCalls    [][]ast.Statement
	condition   ast.Expression
	termination []ast.Statement
	initial     []ast.Statement
}

// Rewrite returns a copy of fn whose body iterates instead of recursing.
// The input declaration is not modified.
func Rewrite(fn *ast.FunctionDecl) (*ast.FunctionDecl, error) {
	if fn == nil {
		return nil, fmt.Errorf("tailcall: nil function")
	}
	var body []ast.Statement
	var err error
	if len(fn.Body) == 1 {
		if block, ok := fn.Body[0].(*ast.Block); ok {
			var inner []ast.Statement
			inner, err = rewriteBody(fn, block.Statements)
			if err == nil {
				body = []ast.Statement{ast.NewBlock(inner)}
			}
		} else {
			body, err = rewriteBody(fn, fn.Body)
		}
	} else {
		body, err = rewriteBody(fn, fn.Body)
	}
	if err != nil {
		return nil, err
	}
	out := ast.NewFunctionDecl(fn.Name, fn.Params, body)
	out.TailRec = true
	return out, nil
}

func rewriteBody(fn *ast.FunctionDecl, stmts []ast.Statement) ([]ast.Statement, error) {
	shape, ok := extractTailCallFunction(fn.Name.Lexeme, stmts)
	if !ok {
		return nil, &Error{Token: fn.Name, Message: NotTailRecursive}
	}
	if len(shape.call.Arguments) != len(fn.Params) {
		return nil, &Error{
			Token:   shape.call.Paren,
			Message: fmt.Sprintf("tail call to '%s' passes %d arguments, expected %d", fn.Name.Lexeme, len(shape.call.Arguments), len(fn.Params)),
		}
	}

	loopBody := rebind(fn.Params, shape.call, shape.preCalls)
	loopBody = append(loopBody, repeatInitial(shape.initial)...)
	loop := ast.NewWhile(shape.condition, ast.NewBlock(loopBody))

	out := make([]ast.Statement, 0, len(shape.initial)+1+len(shape.termination))
	out = append(out, shape.initial...)
	out = append(out, loop)
	out = append(out, shape.termination...)
	return out, nil
}

// extractTailCallFunction matches the trailing statement against the
// supported shapes: `if` with the self call in the then branch, `if` with the
// self call in the else branch, or an unconditional self call.
func extractTailCallFunction(name string, stmts []ast.Statement) (*tailCallFunction, bool) {
	if len(stmts) == 0 {
		return nil, false
	}
	initial := stmts[:len(stmts)-1]
	switch last := stmts[len(stmts)-1].(type) {
	case *ast.If:
		if call, pre, ok := extractTailCall(name, last.ThenBranch); ok {
			var termination []ast.Statement
			if last.ElseBranch != nil {
				termination = []ast.Statement{last.ElseBranch}
			}
			return &tailCallFunction{
				call:        call,
				preCalls:    pre,
				condition:   last.Condition,
				termination: termination,
				initial:     initial,
			}, true
		}
		if last.ElseBranch == nil {
			return nil, false
		}
		if call, pre, ok := extractTailCall(name, last.ElseBranch); ok {
			bang := ast.NewToken(ast.TokenBang, "!", call.Paren.Line)
			return &tailCallFunction{
				call:        call,
				preCalls:    pre,
				condition:   ast.NewUnary(bang, ast.NewGrouping(last.Condition)),
				termination: []ast.Statement{last.ThenBranch},
				initial:     initial,
			}, true
		}
		return nil, false
	case *ast.ExpressionStmt, *ast.Return:
		call, pre, ok := extractTailCall(name, last)
		if !ok {
			return nil, false
		}
		return &tailCallFunction{
			call:      call,
			preCalls:  pre,
			condition: ast.NewLiteral(true),
			initial:   initial,
		}, true
	default:
		return nil, false
	}
}

// extractTailCall finds a self call in tail position of stmt. The statements
// preceding it are returned per enclosing block, outermost first, so the
// rewrite can rebuild the same nesting.
func extractTailCall(name string, stmt ast.Statement) (*ast.Call, [][]ast.Statement, bool) {
	switch s := stmt.(type) {
	case *ast.ExpressionStmt:
		if call, ok := selfCall(name, s.Expression); ok {
			return call, nil, true
		}
	case *ast.Return:
		if call, ok := selfCall(name, s.Value); ok {
			return call, nil, true
		}
	case *ast.Block:
		if len(s.Statements) == 0 {
			return nil, nil, false
		}
		last := len(s.Statements) - 1
		call, inner, ok := extractTailCall(name, s.Statements[last])
		if !ok {
			return nil, nil, false
		}
		pre := make([][]ast.Statement, 0, 1+len(inner))
		pre = append(pre, s.Statements[:last])
		pre = append(pre, inner...)
		return call, pre, true
	}
	return nil, nil, false
}

func selfCall(name string, expr ast.Expression) (*ast.Call, bool) {
	call, ok := expr.(*ast.Call)
	if !ok {
		return nil, false
	}
	callee, ok := call.Callee.(*ast.Variable)
	if !ok || callee.Name.Lexeme != name {
		return nil, false
	}
	return call, true
}

// rebind evaluates every argument against the current parameter values
// before any parameter is overwritten. Temporaries are named `$param`, which
// the scanner never produces, so user code cannot observe or shadow them.
func rebind(params []ast.Token, call *ast.Call, preCalls [][]ast.Statement) []ast.Statement {
	temps := make([]ast.Token, len(params))
	for idx, param := range params {
		temps[idx] = ast.NewToken(ast.TokenIdentifier, "$"+param.Lexeme, call.Paren.Line)
	}

	var out []ast.Statement
	if !hasStatements(preCalls) {
		for idx := range params {
			out = append(out, synthetic(temps[idx], call.Arguments[idx]))
		}
	} else {
		// Arguments may refer to locals declared by the pre-calls, so they are
		// evaluated in the innermost pre-call scope and handed out through the
		// temporaries declared just outside the outermost one.
		last := len(preCalls) - 1
		inner := append([]ast.Statement(nil), preCalls[last]...)
		for idx := range params {
			out = append(out, synthetic(temps[idx], nil))
			inner = append(inner, ast.NewExpressionStmt(ast.NewAssign(temps[idx], call.Arguments[idx])))
		}
		for level := last - 1; level >= 0; level-- {
			wrapped := append([]ast.Statement(nil), preCalls[level]...)
			inner = append(wrapped, ast.NewBlock(inner))
		}
		out = append(out, ast.NewBlock(inner))
	}
	for idx, param := range params {
		out = append(out, ast.NewExpressionStmt(ast.NewAssign(param, ast.NewVariable(temps[idx]))))
	}
	return out
}

func hasStatements(levels [][]ast.Statement) bool {
	for _, level := range levels {
		if len(level) > 0 {
			return true
		}
	}
	return false
}

func synthetic(name ast.Token, initializer ast.Expression) *ast.VarDecl {
	decl := ast.NewVarDecl(name, initializer)
	decl.Synthetic = true
	return decl
}

// repeatInitial copies the body prefix for the loop. Top-level variable
// declarations become assignments so each iteration updates the binding the
// first pass declared in the function scope; a declaration without an
// initializer resets that binding to uninitialized.
func repeatInitial(initial []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, 0, len(initial))
	for _, stmt := range ast.CloneStatements(initial) {
		decl, ok := stmt.(*ast.VarDecl)
		if !ok {
			out = append(out, stmt)
			continue
		}
		if decl.Initializer == nil {
			out = append(out, ast.NewExpressionStmt(ast.NewReset(decl.Name)))
			continue
		}
		out = append(out, ast.NewExpressionStmt(ast.NewAssign(decl.Name, decl.Initializer)))
	}
	return out
}
