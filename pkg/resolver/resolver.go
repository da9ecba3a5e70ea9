// Package resolver performs the static scope pass: every local variable,
// `this` and `super` reference is mapped to the number of frames between its
// use and its declaration. References it cannot find are globals and are
// looked up by name at runtime.
package resolver

import (
	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/runtime"
)

// Distances maps a reference node to its lexical distance. Keys are node
// pointers, so structurally identical references resolve independently.
type Distances map[ast.Expression]int

type FunctionType int

const (
	FunctionNone FunctionType = iota
	FunctionPlain
	FunctionMethod
	FunctionInitializer
)

type ClassType int

const (
	ClassNone ClassType = iota
	ClassPlain
	ClassSubclass
)

// Resolver walks statements and records distances. A Resolver may be fed
// several programs in turn (as a REPL does); distances accumulate.
type Resolver struct {
	scopes          []map[string]bool
	distances       Distances
	currentFunction FunctionType
	currentClass    ClassType
	sink            diag.Sink
}

// New returns a resolver reporting to sink.
func New(sink diag.Sink) *Resolver {
	return &Resolver{distances: make(Distances), sink: sink}
}

// Resolve is a convenience wrapper for a single program.
func Resolve(stmts []ast.Statement) (Distances, *diag.List) {
	diags := &diag.List{}
	distances := New(diags).Resolve(stmts)
	return distances, diags
}

// Resolve walks stmts and returns the accumulated distances.
func (r *Resolver) Resolve(stmts []ast.Statement) Distances {
	r.resolveStatements(stmts)
	return r.distances
}

func (r *Resolver) resolveStatements(stmts []ast.Statement) {
	for _, stmt := range stmts {
		r.resolveStatement(stmt)
	}
}

func (r *Resolver) resolveStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Block:
		r.beginScope()
		r.resolveStatements(s.Statements)
		r.endScope()
	case *ast.ClassDecl:
		r.resolveClass(s)
	case *ast.VarDecl:
		r.declare(s.Name, s.Synthetic)
		if s.Initializer != nil {
			r.resolveExpression(s.Initializer)
		}
		r.define(s.Name)
	case *ast.FunctionDecl:
		r.declare(s.Name, false)
		r.define(s.Name)
		r.resolveFunction(s, FunctionPlain)
	case *ast.ExpressionStmt:
		r.resolveExpression(s.Expression)
	case *ast.If:
		r.resolveExpression(s.Condition)
		r.resolveStatement(s.ThenBranch)
		if s.ElseBranch != nil {
			r.resolveStatement(s.ElseBranch)
		}
	case *ast.Print:
		r.resolveExpression(s.Expression)
	case *ast.Return:
		if r.currentFunction == FunctionNone {
			r.error(s.Keyword, "Can't return from top-level code.")
		}
		if s.Value != nil {
			if r.currentFunction == FunctionInitializer {
				r.error(s.Keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpression(s.Value)
		}
	case *ast.While:
		r.resolveExpression(s.Condition)
		r.resolveStatement(s.Body)
	case nil:
	default:
		panic("resolver: unknown statement " + string(stmt.NodeType()))
	}
}

func (r *Resolver) resolveClass(class *ast.ClassDecl) {
	enclosingClass := r.currentClass
	r.currentClass = ClassPlain
	defer func() { r.currentClass = enclosingClass }()

	r.declare(class.Name, false)
	r.define(class.Name)

	if class.Superclass != nil {
		if class.Superclass.Name.Lexeme == class.Name.Lexeme {
			r.error(class.Superclass.Name, "A class can't inherit from itself.")
		}
		r.currentClass = ClassSubclass
		r.resolveExpression(class.Superclass)

		r.beginScope()
		r.scopes[len(r.scopes)-1]["super"] = true
		defer r.endScope()
	}

	r.beginScope()
	r.scopes[len(r.scopes)-1]["this"] = true
	for _, method := range class.Methods {
		kind := FunctionMethod
		if method.Name.Lexeme == runtime.InitializerName {
			kind = FunctionInitializer
		}
		r.resolveFunction(method, kind)
	}
	r.endScope()
}

func (r *Resolver) resolveFunction(fn *ast.FunctionDecl, kind FunctionType) {
	enclosingFunction := r.currentFunction
	r.currentFunction = kind
	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param, false)
		r.define(param)
	}
	r.resolveStatements(fn.Body)
	r.endScope()
	r.currentFunction = enclosingFunction
}

func (r *Resolver) resolveExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.Variable:
		if len(r.scopes) > 0 {
			if defined, ok := r.scopes[len(r.scopes)-1][e.Name.Lexeme]; ok && !defined {
				r.error(e.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e, e.Name.Lexeme)
	case *ast.Assign:
		if !e.Reset {
			r.resolveExpression(e.Value)
		}
		r.resolveLocal(e, e.Name.Lexeme)
	case *ast.Binary:
		r.resolveExpression(e.Left)
		r.resolveExpression(e.Right)
	case *ast.Call:
		r.resolveExpression(e.Callee)
		for _, arg := range e.Arguments {
			r.resolveExpression(arg)
		}
	case *ast.Get:
		r.resolveExpression(e.Object)
	case *ast.Set:
		r.resolveExpression(e.Value)
		r.resolveExpression(e.Object)
	case *ast.Grouping:
		r.resolveExpression(e.Expression)
	case *ast.Literal:
	case *ast.Logical:
		r.resolveExpression(e.Left)
		r.resolveExpression(e.Right)
	case *ast.Super:
		switch r.currentClass {
		case ClassNone:
			r.error(e.Keyword, "Can't use 'super' outside of a class.")
		case ClassPlain:
			r.error(e.Keyword, "Can't use 'super' in a class with no superclass.")
		}
		r.resolveLocal(e, "super")
	case *ast.This:
		if r.currentClass == ClassNone {
			r.error(e.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(e, "this")
	case *ast.Unary:
		r.resolveExpression(e.Right)
	default:
		panic("resolver: unknown expression " + string(expr.NodeType()))
	}
}

func (r *Resolver) error(tok ast.Token, message string) {
	if r.sink != nil {
		r.sink.Report(diag.AtToken(tok, message))
	}
}
