package parser

import "lox/interpreter-go/pkg/ast"

func (p *Parser) statement() ast.Statement {
	switch {
	case p.match(ast.TokenPrint):
		return p.printStatement()
	case p.match(ast.TokenLeftBrace):
		return ast.NewBlock(p.block())
	case p.match(ast.TokenIf):
		return p.ifStatement()
	case p.match(ast.TokenReturn):
		return p.returnStatement()
	case p.match(ast.TokenWhile):
		return p.whileStatement()
	case p.match(ast.TokenFor):
		return p.forStatement()
	default:
		return p.expressionStatement()
	}
}

func (p *Parser) block() []ast.Statement {
	var statements []ast.Statement
	for !p.check(ast.TokenRightBrace) && !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			statements = append(statements, stmt)
		}
	}
	p.consume(ast.TokenRightBrace, "Expect '}' after block.")
	return statements
}

func (p *Parser) printStatement() ast.Statement {
	value := p.expression()
	p.consume(ast.TokenSemicolon, "Expect ';' after value.")
	return ast.NewPrint(value)
}

func (p *Parser) returnStatement() ast.Statement {
	keyword := p.previous()
	var value ast.Expression
	if !p.check(ast.TokenSemicolon) {
		value = p.expression()
	}
	p.consume(ast.TokenSemicolon, "Expect ';' after return value.")
	return ast.NewReturn(keyword, value)
}

func (p *Parser) ifStatement() ast.Statement {
	p.consume(ast.TokenLeftParen, "Expect '(' after 'if'.")
	condition := p.expression()
	p.consume(ast.TokenRightParen, "Expect ')' after if condition.")
	thenBranch := p.statement()
	var elseBranch ast.Statement
	if p.match(ast.TokenElse) {
		elseBranch = p.statement()
	}
	return ast.NewIf(condition, thenBranch, elseBranch)
}

func (p *Parser) whileStatement() ast.Statement {
	p.consume(ast.TokenLeftParen, "Expect '(' after 'while'.")
	condition := p.expression()
	p.consume(ast.TokenRightParen, "Expect ')' after condition.")
	return ast.NewWhile(condition, p.statement())
}

// forStatement desugars `for (init; cond; inc) body` into
// `{ init; while (cond) { body; inc; } }`.
func (p *Parser) forStatement() ast.Statement {
	p.consume(ast.TokenLeftParen, "Expect '(' after 'for'.")

	var initializer ast.Statement
	switch {
	case p.match(ast.TokenSemicolon):
	case p.match(ast.TokenVar):
		initializer = p.varDeclaration()
	default:
		initializer = p.expressionStatement()
	}

	var condition ast.Expression
	if !p.check(ast.TokenSemicolon) {
		condition = p.expression()
	}
	p.consume(ast.TokenSemicolon, "Expect ';' after loop condition.")

	var increment ast.Expression
	if !p.check(ast.TokenRightParen) {
		increment = p.expression()
	}
	p.consume(ast.TokenRightParen, "Expect ')' after for clauses.")

	body := p.statement()
	if increment != nil {
		body = ast.NewBlock([]ast.Statement{body, ast.NewExpressionStmt(increment)})
	}
	if condition == nil {
		condition = ast.NewLiteral(true)
	}
	body = ast.NewWhile(condition, body)
	if initializer != nil {
		body = ast.NewBlock([]ast.Statement{initializer, body})
	}
	return body
}

func (p *Parser) expressionStatement() ast.Statement {
	expr := p.expression()
	p.consume(ast.TokenSemicolon, "Expect ';' after expression.")
	return ast.NewExpressionStmt(expr)
}
