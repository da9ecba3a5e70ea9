package parser

import (
	"errors"
	"fmt"
	"log/slog"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/tailcall"
)

func (p *Parser) declaration() (stmt ast.Statement) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseError); !ok {
				panic(r)
			}
			p.synchronize()
			stmt = nil
		}
	}()

	switch {
	case p.match(ast.TokenTailRec):
		p.consume(ast.TokenFun, "Expect 'fun' after 'tailrec'.")
		return p.function("function", true)
	case p.match(ast.TokenClass):
		return p.classDeclaration()
	case p.match(ast.TokenFun):
		return p.function("function", false)
	case p.match(ast.TokenVar):
		return p.varDeclaration()
	default:
		return p.statement()
	}
}

func (p *Parser) classDeclaration() ast.Statement {
	name := p.consume(ast.TokenIdentifier, "Expect class name.")

	var superclass *ast.Variable
	if p.match(ast.TokenLess) {
		p.consume(ast.TokenIdentifier, "Expect superclass name.")
		superclass = ast.NewVariable(p.previous())
	}

	p.consume(ast.TokenLeftBrace, "Expect '{' before class body.")
	var methods []*ast.FunctionDecl
	for !p.check(ast.TokenRightBrace) && !p.isAtEnd() {
		if p.check(ast.TokenTailRec) {
			panic(p.errorAt(p.peek(), "Methods can't be marked 'tailrec'."))
		}
		methods = append(methods, p.function("method", false))
	}
	p.consume(ast.TokenRightBrace, "Expect '}' after class body.")
	return ast.NewClassDecl(name, superclass, methods)
}

func (p *Parser) function(kind string, tailRec bool) *ast.FunctionDecl {
	name := p.consume(ast.TokenIdentifier, fmt.Sprintf("Expect %s name.", kind))
	p.consume(ast.TokenLeftParen, fmt.Sprintf("Expect '(' after %s name.", kind))
	var params []ast.Token
	if !p.check(ast.TokenRightParen) {
		for {
			if len(params) >= maxArity {
				p.errorAt(p.peek(), fmt.Sprintf("Can't have more than %d parameters.", maxArity))
			}
			params = append(params, p.consume(ast.TokenIdentifier, "Expect parameter name."))
			if !p.match(ast.TokenComma) {
				break
			}
		}
	}
	p.consume(ast.TokenRightParen, "Expect ')' after parameters.")
	p.consume(ast.TokenLeftBrace, fmt.Sprintf("Expect '{' before %s body.", kind))
	body := p.block()

	fn := ast.NewFunctionDecl(name, params, body)
	if !tailRec {
		return fn
	}
	return p.rewriteTailRec(fn)
}

// rewriteTailRec applies the loop rewrite. On failure the diagnostic is
// reported and the declaration is returned unchanged; the reported error
// keeps the program from running.
func (p *Parser) rewriteTailRec(fn *ast.FunctionDecl) *ast.FunctionDecl {
	rewritten, err := tailcall.Rewrite(fn)
	if err != nil {
		var tcErr *tailcall.Error
		if errors.As(err, &tcErr) {
			p.report(diag.AtToken(tcErr.Token, tcErr.Message))
		} else {
			p.report(diag.AtToken(fn.Name, err.Error()))
		}
		return fn
	}
	p.logger.Debug("tail call rewritten", slog.String("function", fn.Name.Lexeme), slog.Int("line", fn.Name.Line))
	return rewritten
}

func (p *Parser) varDeclaration() ast.Statement {
	name := p.consume(ast.TokenIdentifier, "Expect variable name.")
	var initializer ast.Expression
	if p.match(ast.TokenEqual) {
		initializer = p.expression()
	}
	p.consume(ast.TokenSemicolon, "Expect ';' after variable declaration.")
	return ast.NewVarDecl(name, initializer)
}
