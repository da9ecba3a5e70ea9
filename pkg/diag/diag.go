// Package diag collects compile-time diagnostics (scan, parse, tail-call and
// resolution errors) so a whole pass can report every problem it finds.
package diag

import (
	"fmt"
	"strings"

	"lox/interpreter-go/pkg/ast"
)

// Diagnostic is a single compile-time error attributed to a source line.
type Diagnostic struct {
	Line    int
	Where   string
	Message string
}

func (d Diagnostic) Error() string {
	if d.Where == "" {
		return fmt.Sprintf("[line %d] Error: %s", d.Line, d.Message)
	}
	return fmt.Sprintf("[line %d] Error %s: %s", d.Line, d.Where, d.Message)
}

// AtLine builds a diagnostic with no lexeme context.
func AtLine(line int, message string) Diagnostic {
	return Diagnostic{Line: line, Message: message}
}

// AtToken builds a diagnostic pointing at a token.
func AtToken(tok ast.Token, message string) Diagnostic {
	if tok.Type == ast.TokenEOF {
		return Diagnostic{Line: tok.Line, Where: "at end", Message: message}
	}
	return Diagnostic{Line: tok.Line, Where: fmt.Sprintf("at '%s'", tok.Lexeme), Message: message}
}

// Sink receives diagnostics as they are produced.
type Sink interface {
	Report(d Diagnostic)
}

// List is a Sink that accumulates diagnostics in order.
type List struct {
	items []Diagnostic
}

func (l *List) Report(d Diagnostic) {
	l.items = append(l.items, d)
}

// Len returns the number of collected diagnostics.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// Items returns a copy of the collected diagnostics.
func (l *List) Items() []Diagnostic {
	if l == nil {
		return nil
	}
	return append([]Diagnostic(nil), l.items...)
}

// Err returns nil when nothing was reported, otherwise an *Error holding
// every diagnostic.
func (l *List) Err() error {
	if l.Len() == 0 {
		return nil
	}
	return &Error{Diagnostics: l.Items()}
}

// Error aggregates compile-time diagnostics.
type Error struct {
	Diagnostics []Diagnostic
}

func (e *Error) Error() string {
	lines := make([]string, 0, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		lines = append(lines, d.Error())
	}
	return strings.Join(lines, "\n")
}
