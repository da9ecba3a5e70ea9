// Package printer renders syntax trees as text for debugging: a
// parenthesized prefix form for whole programs and a reverse Polish form for
// expressions.
package printer

import (
	"fmt"
	"strings"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
)

// Statements prints one statement per line.
func Statements(stmts []ast.Statement) string {
	lines := make([]string, len(stmts))
	for idx, stmt := range stmts {
		lines[idx] = Statement(stmt)
	}
	return strings.Join(lines, "\n")
}

func Statement(stmt ast.Statement) string {
	switch s := stmt.(type) {
	case nil:
		return "nil"
	case *ast.Block:
		return parenthesize("block", statementParts(s.Statements)...)
	case *ast.ClassDecl:
		parts := []string{s.Name.Lexeme}
		if s.Superclass != nil {
			parts = append(parts, "<", s.Superclass.Name.Lexeme)
		}
		for _, method := range s.Methods {
			parts = append(parts, Statement(method))
		}
		return parenthesize("class", parts...)
	case *ast.ExpressionStmt:
		return parenthesize(";", Expression(s.Expression))
	case *ast.FunctionDecl:
		params := make([]string, len(s.Params))
		for idx, param := range s.Params {
			params[idx] = param.Lexeme
		}
		parts := append([]string{s.Name.Lexeme, "(" + strings.Join(params, " ") + ")"}, statementParts(s.Body)...)
		if s.TailRec {
			return parenthesize("tailrec fun", parts...)
		}
		return parenthesize("fun", parts...)
	case *ast.If:
		parts := []string{Expression(s.Condition), Statement(s.ThenBranch)}
		if s.ElseBranch != nil {
			parts = append(parts, Statement(s.ElseBranch))
		}
		return parenthesize("if", parts...)
	case *ast.Print:
		return parenthesize("print", Expression(s.Expression))
	case *ast.Return:
		if s.Value == nil {
			return "(return)"
		}
		return parenthesize("return", Expression(s.Value))
	case *ast.VarDecl:
		if s.Initializer == nil {
			return parenthesize("var", s.Name.Lexeme)
		}
		return parenthesize("var", s.Name.Lexeme, Expression(s.Initializer))
	case *ast.While:
		return parenthesize("while", Expression(s.Condition), Statement(s.Body))
	default:
		return fmt.Sprintf("<%s>", stmt.NodeType())
	}
}

func Expression(expr ast.Expression) string {
	switch e := expr.(type) {
	case nil:
		return "nil"
	case *ast.Assign:
		if e.Reset {
			return parenthesize("reset", e.Name.Lexeme)
		}
		return parenthesize("=", e.Name.Lexeme, Expression(e.Value))
	case *ast.Binary:
		return parenthesize(e.Operator.Lexeme, Expression(e.Left), Expression(e.Right))
	case *ast.Call:
		parts := []string{Expression(e.Callee)}
		for _, arg := range e.Arguments {
			parts = append(parts, Expression(arg))
		}
		return parenthesize("call", parts...)
	case *ast.Get:
		return parenthesize(".", Expression(e.Object), e.Name.Lexeme)
	case *ast.Grouping:
		return parenthesize("group", Expression(e.Expression))
	case *ast.Literal:
		return literal(e.Value)
	case *ast.Logical:
		return parenthesize(e.Operator.Lexeme, Expression(e.Left), Expression(e.Right))
	case *ast.Set:
		return parenthesize("set", Expression(e.Object), e.Name.Lexeme, Expression(e.Value))
	case *ast.Super:
		return parenthesize("super", e.Method.Lexeme)
	case *ast.This:
		return "this"
	case *ast.Unary:
		return parenthesize(e.Operator.Lexeme, Expression(e.Right))
	case *ast.Variable:
		return e.Name.Lexeme
	default:
		return fmt.Sprintf("<%s>", expr.NodeType())
	}
}

// RPN renders operators after their operands. Groupings disappear; nodes
// other than operators and atoms fall back to the prefix form.
func RPN(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.Binary:
		return RPN(e.Left) + " " + RPN(e.Right) + " " + e.Operator.Lexeme
	case *ast.Logical:
		return RPN(e.Left) + " " + RPN(e.Right) + " " + e.Operator.Lexeme
	case *ast.Unary:
		return RPN(e.Right) + " " + e.Operator.Lexeme
	case *ast.Grouping:
		return RPN(e.Expression)
	default:
		return Expression(expr)
	}
}

func literal(value any) string {
	switch v := value.(type) {
	case nil:
		return "nil"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return runtime.FormatNumber(v)
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprint(v)
	}
}

func statementParts(stmts []ast.Statement) []string {
	parts := make([]string, len(stmts))
	for idx, stmt := range stmts {
		parts[idx] = Statement(stmt)
	}
	return parts
}

func parenthesize(name string, parts ...string) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(name)
	for _, part := range parts {
		b.WriteString(" ")
		b.WriteString(part)
	}
	b.WriteString(")")
	return b.String()
}
