package lexer

import (
	"fmt"
	"strconv"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diag"
)

// Scanner turns source text into tokens. Lines are 1-based.
type Scanner struct {
	source  string
	start   int
	current int
	line    int
	tokens  []ast.Token
	sink    diag.Sink
}

// NewScanner prepares a scanner; lexical errors go to sink.
func NewScanner(source string, sink diag.Sink) *Scanner {
	return &Scanner{source: source, line: 1, sink: sink}
}

// ScanTokens scans the whole source. The result always ends with EOF, even
// when errors were reported.
func (s *Scanner) ScanTokens() []ast.Token {
	for !s.isAtEnd() {
		s.start = s.current
		s.scanToken()
	}
	s.tokens = append(s.tokens, ast.NewToken(ast.TokenEOF, "", s.line))
	return s.tokens
}

func (s *Scanner) scanToken() {
	c := s.advance()
	switch c {
	case '(':
		s.addToken(ast.TokenLeftParen, nil)
	case ')':
		s.addToken(ast.TokenRightParen, nil)
	case '{':
		s.addToken(ast.TokenLeftBrace, nil)
	case '}':
		s.addToken(ast.TokenRightBrace, nil)
	case ',':
		s.addToken(ast.TokenComma, nil)
	case '.':
		s.addToken(ast.TokenDot, nil)
	case '-':
		s.addToken(ast.TokenMinus, nil)
	case '+':
		s.addToken(ast.TokenPlus, nil)
	case ';':
		s.addToken(ast.TokenSemicolon, nil)
	case '*':
		s.addToken(ast.TokenStar, nil)
	case '!':
		s.addToken(s.pick('=', ast.TokenBangEqual, ast.TokenBang), nil)
	case '=':
		s.addToken(s.pick('=', ast.TokenEqualEqual, ast.TokenEqual), nil)
	case '<':
		s.addToken(s.pick('=', ast.TokenLessEqual, ast.TokenLess), nil)
	case '>':
		s.addToken(s.pick('=', ast.TokenGreaterEqual, ast.TokenGreater), nil)
	case '/':
		if s.match('/') {
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
		} else {
			s.addToken(ast.TokenSlash, nil)
		}
	case ' ', '\r', '\t':
	case '\n':
		s.line++
	case '"':
		s.string()
	default:
		switch {
		case isDigit(c):
			s.number()
		case isAlpha(c):
			s.identifier()
		default:
			s.error(fmt.Sprintf("Unexpected character '%c'.", c))
		}
	}
}

func (s *Scanner) identifier() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	text := s.source[s.start:s.current]
	if kind, ok := ast.Keywords[text]; ok {
		s.addToken(kind, nil)
		return
	}
	s.addToken(ast.TokenIdentifier, nil)
}

func (s *Scanner) number() {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	value, err := strconv.ParseFloat(s.source[s.start:s.current], 64)
	if err != nil {
		s.error(fmt.Sprintf("Invalid number literal: %v", err))
		return
	}
	s.addToken(ast.TokenNumber, value)
}

func (s *Scanner) string() {
	for s.peek() != '"' && !s.isAtEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.isAtEnd() {
		s.error("Unterminated string.")
		return
	}
	s.advance()
	s.addToken(ast.TokenString, s.source[s.start+1:s.current-1])
}

func (s *Scanner) error(message string) {
	if s.sink != nil {
		s.sink.Report(diag.AtLine(s.line, message))
	}
}

func (s *Scanner) addToken(kind ast.TokenType, literal any) {
	s.tokens = append(s.tokens, ast.Token{
		Type:    kind,
		Lexeme:  s.source[s.start:s.current],
		Literal: literal,
		Line:    s.line,
	})
}

func (s *Scanner) pick(expected byte, matched, otherwise ast.TokenType) ast.TokenType {
	if s.match(expected) {
		return matched
	}
	return otherwise
}

func (s *Scanner) match(expected byte) bool {
	if s.isAtEnd() || s.source[s.current] != expected {
		return false
	}
	s.current++
	return true
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.source[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.source) {
		return 0
	}
	return s.source[s.current+1]
}

func (s *Scanner) advance() byte {
	c := s.source[s.current]
	s.current++
	return c
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.source)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isAlphaNumeric(c byte) bool {
	return isAlpha(c) || isDigit(c)
}
