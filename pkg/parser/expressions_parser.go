package parser

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
)

// Binary precedence levels, loosest first.
var binaryLevels = [][]ast.TokenType{
	{ast.TokenBangEqual, ast.TokenEqualEqual},
	{ast.TokenGreater, ast.TokenGreaterEqual, ast.TokenLess, ast.TokenLessEqual},
	{ast.TokenMinus, ast.TokenPlus},
	{ast.TokenSlash, ast.TokenStar},
}

func (p *Parser) expression() ast.Expression {
	return p.assignment()
}

func (p *Parser) assignment() ast.Expression {
	expr := p.or()
	if !p.match(ast.TokenEqual) {
		return expr
	}
	equals := p.previous()
	value := p.assignment()
	switch target := expr.(type) {
	case *ast.Variable:
		return ast.NewAssign(target.Name, value)
	case *ast.Get:
		return ast.NewSet(target.Object, target.Name, value)
	}
	// Reported without unwinding; the parser is not confused.
	p.errorAt(equals, "Invalid assignment target.")
	return expr
}

func (p *Parser) or() ast.Expression {
	expr := p.and()
	for p.match(ast.TokenOr) {
		operator := p.previous()
		expr = ast.NewLogical(expr, operator, p.and())
	}
	return expr
}

func (p *Parser) and() ast.Expression {
	expr := p.binary(0)
	for p.match(ast.TokenAnd) {
		operator := p.previous()
		expr = ast.NewLogical(expr, operator, p.binary(0))
	}
	return expr
}

func (p *Parser) binary(level int) ast.Expression {
	if level == len(binaryLevels) {
		return p.unary()
	}
	expr := p.binary(level + 1)
	for p.match(binaryLevels[level]...) {
		operator := p.previous()
		expr = ast.NewBinary(expr, operator, p.binary(level+1))
	}
	return expr
}

func (p *Parser) unary() ast.Expression {
	if p.match(ast.TokenBang, ast.TokenMinus) {
		operator := p.previous()
		return ast.NewUnary(operator, p.unary())
	}
	return p.call()
}

func (p *Parser) call() ast.Expression {
	expr := p.primary()
	for {
		switch {
		case p.match(ast.TokenLeftParen):
			expr = p.finishCall(expr)
		case p.match(ast.TokenDot):
			name := p.consume(ast.TokenIdentifier, "Expect property name after '.'.")
			expr = ast.NewGet(expr, name)
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expression) ast.Expression {
	var args []ast.Expression
	if !p.check(ast.TokenRightParen) {
		for {
			if len(args) >= maxArity {
				p.errorAt(p.peek(), fmt.Sprintf("Can't have more than %d arguments.", maxArity))
			}
			args = append(args, p.expression())
			if !p.match(ast.TokenComma) {
				break
			}
		}
	}
	paren := p.consume(ast.TokenRightParen, "Expect ')' after arguments.")
	return ast.NewCall(callee, paren, args)
}

func (p *Parser) primary() ast.Expression {
	switch {
	case p.match(ast.TokenFalse):
		return ast.NewLiteral(false)
	case p.match(ast.TokenTrue):
		return ast.NewLiteral(true)
	case p.match(ast.TokenNil):
		return ast.NewLiteral(nil)
	case p.match(ast.TokenNumber, ast.TokenString):
		return ast.NewLiteral(p.previous().Literal)
	case p.match(ast.TokenSuper):
		keyword := p.previous()
		p.consume(ast.TokenDot, "Expect '.' after 'super'.")
		method := p.consume(ast.TokenIdentifier, "Expect superclass method name.")
		return ast.NewSuper(keyword, method)
	case p.match(ast.TokenThis):
		return ast.NewThis(p.previous())
	case p.match(ast.TokenIdentifier):
		return ast.NewVariable(p.previous())
	case p.match(ast.TokenLeftParen):
		expr := p.expression()
		p.consume(ast.TokenRightParen, "Expect ')' after expression.")
		return ast.NewGrouping(expr)
	}
	panic(p.errorAt(p.peek(), "Expect expression."))
}
