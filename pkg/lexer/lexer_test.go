package lexer

import (
	"testing"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diag"
)

func scan(t *testing.T, source string) ([]ast.Token, *diag.List) {
	t.Helper()
	diags := &diag.List{}
	return NewScanner(source, diags).ScanTokens(), diags
}

func TestScanTokensKinds(t *testing.T) {
	tokens, diags := scan(t, "tailrec fun f(a, b) { return a <= b != !true; }")
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Err())
	}
	want := []ast.TokenType{
		ast.TokenTailRec, ast.TokenFun, ast.TokenIdentifier, ast.TokenLeftParen,
		ast.TokenIdentifier, ast.TokenComma, ast.TokenIdentifier, ast.TokenRightParen,
		ast.TokenLeftBrace, ast.TokenReturn, ast.TokenIdentifier, ast.TokenLessEqual,
		ast.TokenIdentifier, ast.TokenBangEqual, ast.TokenBang, ast.TokenTrue,
		ast.TokenSemicolon, ast.TokenRightBrace, ast.TokenEOF,
	}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(tokens), tokens)
	}
	for idx, kind := range want {
		if tokens[idx].Type != kind {
			t.Fatalf("token %d: expected %s, got %s", idx, kind, tokens[idx].Type)
		}
	}
}

func TestScanLiteralsAndLines(t *testing.T) {
	tokens, diags := scan(t, "// comment\n12.5 \"multi\nline\" 7.\nname")
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Err())
	}
	if tokens[0].Type != ast.TokenNumber || tokens[0].Literal != 12.5 || tokens[0].Line != 2 {
		t.Fatalf("unexpected number token %#v", tokens[0])
	}
	if tokens[1].Type != ast.TokenString || tokens[1].Literal != "multi\nline" {
		t.Fatalf("unexpected string token %#v", tokens[1])
	}
	// A trailing dot is not part of the number.
	if tokens[2].Literal != 7.0 || tokens[3].Type != ast.TokenDot {
		t.Fatalf("unexpected tokens %v %v", tokens[2], tokens[3])
	}
	if tokens[4].Type != ast.TokenIdentifier || tokens[4].Line != 4 {
		t.Fatalf("unexpected identifier token %#v", tokens[4])
	}
}

func TestScanErrors(t *testing.T) {
	tokens, diags := scan(t, "var a = @;\n\"open")
	if diags.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", diags.Len())
	}
	items := diags.Items()
	if items[0].Error() != "[line 1] Error: Unexpected character '@'." {
		t.Fatalf("unexpected diagnostic %q", items[0].Error())
	}
	if items[1].Message != "Unterminated string." || items[1].Line != 2 {
		t.Fatalf("unexpected diagnostic %#v", items[1])
	}
	if tokens[len(tokens)-1].Type != ast.TokenEOF {
		t.Fatalf("expected EOF terminator")
	}
}

func TestDollarIsNotAnIdentifierCharacter(t *testing.T) {
	_, diags := scan(t, "var $n = 1;")
	if diags.Len() != 1 {
		t.Fatalf("expected '$' to be rejected, got %d diagnostics", diags.Len())
	}
}
