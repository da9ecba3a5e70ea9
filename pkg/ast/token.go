package ast

import "fmt"

// TokenType classifies lexemes produced by the scanner.
type TokenType int

const (
	// Single-character tokens.
	TokenLeftParen TokenType = iota
	TokenRightParen
	TokenLeftBrace
	TokenRightBrace
	TokenComma
	TokenDot
	TokenMinus
	TokenPlus
	TokenSemicolon
	TokenSlash
	TokenStar

	// One or two character tokens.
	TokenBang
	TokenBangEqual
	TokenEqual
	TokenEqualEqual
	TokenGreater
	TokenGreaterEqual
	TokenLess
	TokenLessEqual

	// Literals.
	TokenIdentifier
	TokenString
	TokenNumber

	// Keywords.
	TokenAnd
	TokenClass
	TokenElse
	TokenFalse
	TokenFun
	TokenFor
	TokenIf
	TokenNil
	TokenOr
	TokenPrint
	TokenReturn
	TokenSuper
	TokenThis
	TokenTrue
	TokenVar
	TokenWhile
	TokenTailRec

	TokenEOF
)

var tokenTypeNames = [...]string{
	TokenLeftParen:    "LEFT_PAREN",
	TokenRightParen:   "RIGHT_PAREN",
	TokenLeftBrace:    "LEFT_BRACE",
	TokenRightBrace:   "RIGHT_BRACE",
	TokenComma:        "COMMA",
	TokenDot:          "DOT",
	TokenMinus:        "MINUS",
	TokenPlus:         "PLUS",
	TokenSemicolon:    "SEMICOLON",
	TokenSlash:        "SLASH",
	TokenStar:         "STAR",
	TokenBang:         "BANG",
	TokenBangEqual:    "BANG_EQUAL",
	TokenEqual:        "EQUAL",
	TokenEqualEqual:   "EQUAL_EQUAL",
	TokenGreater:      "GREATER",
	TokenGreaterEqual: "GREATER_EQUAL",
	TokenLess:         "LESS",
	TokenLessEqual:    "LESS_EQUAL",
	TokenIdentifier:   "IDENTIFIER",
	TokenString:       "STRING",
	TokenNumber:       "NUMBER",
	TokenAnd:          "AND",
	TokenClass:        "CLASS",
	TokenElse:         "ELSE",
	TokenFalse:        "FALSE",
	TokenFun:          "FUN",
	TokenFor:          "FOR",
	TokenIf:           "IF",
	TokenNil:          "NIL",
	TokenOr:           "OR",
	TokenPrint:        "PRINT",
	TokenReturn:       "RETURN",
	TokenSuper:        "SUPER",
	TokenThis:         "THIS",
	TokenTrue:         "TRUE",
	TokenVar:          "VAR",
	TokenWhile:        "WHILE",
	TokenTailRec:      "TAILREC",
	TokenEOF:          "EOF",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Keywords maps reserved words to their token type.
var Keywords = map[string]TokenType{
	"and":     TokenAnd,
	"class":   TokenClass,
	"else":    TokenElse,
	"false":   TokenFalse,
	"for":     TokenFor,
	"fun":     TokenFun,
	"if":      TokenIf,
	"nil":     TokenNil,
	"or":      TokenOr,
	"print":   TokenPrint,
	"return":  TokenReturn,
	"super":   TokenSuper,
	"this":    TokenThis,
	"true":    TokenTrue,
	"var":     TokenVar,
	"while":   TokenWhile,
	"tailrec": TokenTailRec,
}

// Token is a lexeme with its classification, literal payload and source line.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Line    int
}

// NewToken builds a token without a literal payload.
func NewToken(kind TokenType, lexeme string, line int) Token {
	return Token{Type: kind, Lexeme: lexeme, Line: line}
}

func (t Token) String() string {
	if t.Literal == nil {
		return fmt.Sprintf("%s %s", t.Type, t.Lexeme)
	}
	return fmt.Sprintf("%s %s %v", t.Type, t.Lexeme, t.Literal)
}
