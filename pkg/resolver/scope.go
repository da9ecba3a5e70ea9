package resolver

import "lox/interpreter-go/pkg/ast"

// beginScope opens a scope. Values record whether a name is defined (true)
// or only declared (false).
func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare adds name to the innermost scope. Globals are not tracked, so
// top-level redeclaration is allowed. Compiler-synthesized declarations skip
// the duplicate check.
func (r *Resolver) declare(name ast.Token, synthetic bool) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.scopes[len(r.scopes)-1]
	if _, exists := scope[name.Lexeme]; exists && !synthetic {
		r.error(name, "Already a variable with this name in this scope.")
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name ast.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}

// resolveLocal records the distance to the innermost scope declaring name.
func (r *Resolver) resolveLocal(expr ast.Expression, name string) {
	for idx := len(r.scopes) - 1; idx >= 0; idx-- {
		if _, ok := r.scopes[idx][name]; ok {
			r.distances[expr] = len(r.scopes) - 1 - idx
			return
		}
	}
}
