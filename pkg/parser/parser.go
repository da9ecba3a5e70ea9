package parser

import (
	"io"
	"log/slog"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/lexer"
)

const maxArity = 255

// Parser is a recursive-descent parser over a scanned token stream. Syntax
// errors are reported to the sink and parsing resumes at the next statement
// boundary, so one pass reports every error it can.
type Parser struct {
	tokens  []ast.Token
	current int
	sink    diag.Sink
	logger  *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger records tail-call rewrites on logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New builds a parser. tokens must end with an EOF token.
func New(tokens []ast.Token, sink diag.Sink, opts ...Option) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != ast.TokenEOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens, ast.NewToken(ast.TokenEOF, "", line))
	}
	p := &Parser{
		tokens: tokens,
		sink:   sink,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseSource scans and parses source, collecting every diagnostic into the
// returned list.
func ParseSource(source string, opts ...Option) ([]ast.Statement, *diag.List) {
	diags := &diag.List{}
	tokens := lexer.NewScanner(source, diags).ScanTokens()
	stmts := New(tokens, diags, opts...).Parse()
	return stmts, diags
}

// Parse parses the whole program. Declarations that failed to parse are
// omitted from the result.
func (p *Parser) Parse() []ast.Statement {
	var statements []ast.Statement
	for !p.isAtEnd() {
		if stmt := p.declaration(); stmt != nil {
			statements = append(statements, stmt)
		}
	}
	return statements
}

// parseError unwinds the descent to the enclosing declaration.
type parseError struct{}

func (p *Parser) errorAt(tok ast.Token, message string) parseError {
	p.report(diag.AtToken(tok, message))
	return parseError{}
}

func (p *Parser) report(d diag.Diagnostic) {
	if p.sink != nil {
		p.sink.Report(d)
	}
}

func (p *Parser) synchronize() {
	p.advance()
	for !p.isAtEnd() {
		if p.previous().Type == ast.TokenSemicolon {
			return
		}
		switch p.peek().Type {
		case ast.TokenClass, ast.TokenFun, ast.TokenTailRec, ast.TokenVar, ast.TokenFor,
			ast.TokenIf, ast.TokenWhile, ast.TokenPrint, ast.TokenReturn:
			return
		}
		p.advance()
	}
}

func (p *Parser) consume(kind ast.TokenType, message string) ast.Token {
	if p.check(kind) {
		return p.advance()
	}
	panic(p.errorAt(p.peek(), message))
}

func (p *Parser) match(kinds ...ast.TokenType) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) check(kind ast.TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == kind
}

func (p *Parser) advance() ast.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == ast.TokenEOF
}

func (p *Parser) peek() ast.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() ast.Token {
	return p.tokens[p.current-1]
}
