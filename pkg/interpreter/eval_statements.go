package interpreter

import (
	"fmt"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
)

func (i *Interpreter) execute(node ast.Statement, env *runtime.Environment) (flow, error) {
	switch n := node.(type) {
	case *ast.ExpressionStmt:
		if _, err := i.evaluateExpression(n.Expression, env); err != nil {
			return normalFlow, err
		}
		return normalFlow, nil
	case *ast.Print:
		val, err := i.evaluateExpression(n.Expression, env)
		if err != nil {
			return normalFlow, err
		}
		if _, err := fmt.Fprintln(i.out, valueToString(val)); err != nil {
			return normalFlow, err
		}
		return normalFlow, nil
	case *ast.VarDecl:
		return i.executeVarDecl(n, env)
	case *ast.Block:
		return i.executeBlock(n.Statements, env.Extend())
	case *ast.If:
		return i.executeIf(n, env)
	case *ast.While:
		return i.executeWhile(n, env)
	case *ast.FunctionDecl:
		env.Define(n.Name.Lexeme, &runtime.FunctionValue{Declaration: n, Closure: env})
		return normalFlow, nil
	case *ast.Return:
		var val runtime.Value = runtime.NilValue{}
		if n.Value != nil {
			var err error
			if val, err = i.evaluateExpression(n.Value, env); err != nil {
				return normalFlow, err
			}
		}
		return returnFlow(val), nil
	case *ast.ClassDecl:
		return normalFlow, i.executeClassDecl(n, env)
	default:
		return normalFlow, fmt.Errorf("unsupported statement type: %s", node.NodeType())
	}
}

// executeBlock runs stmts in env and stops at the first non-normal outcome.
func (i *Interpreter) executeBlock(stmts []ast.Statement, env *runtime.Environment) (flow, error) {
	for _, stmt := range stmts {
		result, err := i.execute(stmt, env)
		if err != nil {
			return normalFlow, err
		}
		if result.kind != flowNormal {
			return result, nil
		}
	}
	return normalFlow, nil
}

func (i *Interpreter) executeVarDecl(decl *ast.VarDecl, env *runtime.Environment) (flow, error) {
	val := runtime.Uninitialized
	if decl.Initializer != nil {
		var err error
		if val, err = i.evaluateExpression(decl.Initializer, env); err != nil {
			return normalFlow, err
		}
	}
	env.Define(decl.Name.Lexeme, val)
	return normalFlow, nil
}

func (i *Interpreter) executeIf(stmt *ast.If, env *runtime.Environment) (flow, error) {
	cond, err := i.evaluateExpression(stmt.Condition, env)
	if err != nil {
		return normalFlow, err
	}
	if isTruthy(cond) {
		return i.execute(stmt.ThenBranch, env)
	}
	if stmt.ElseBranch != nil {
		return i.execute(stmt.ElseBranch, env)
	}
	return normalFlow, nil
}

func (i *Interpreter) executeWhile(loop *ast.While, env *runtime.Environment) (flow, error) {
	for {
		cond, err := i.evaluateExpression(loop.Condition, env)
		if err != nil {
			return normalFlow, err
		}
		if !isTruthy(cond) {
			return normalFlow, nil
		}
		result, err := i.execute(loop.Body, env)
		if err != nil {
			return normalFlow, err
		}
		if result.kind != flowNormal {
			return result, nil
		}
	}
}

// executeClassDecl binds the class name first so methods can refer to it,
// and stores the class value only once the method table is complete.
func (i *Interpreter) executeClassDecl(decl *ast.ClassDecl, env *runtime.Environment) error {
	var superclass *runtime.ClassValue
	if decl.Superclass != nil {
		val, err := i.evaluateExpression(decl.Superclass, env)
		if err != nil {
			return err
		}
		class, ok := val.(*runtime.ClassValue)
		if !ok {
			return newRuntimeError(decl.Superclass.Name, "Superclass must be a class.")
		}
		superclass = class
	}

	env.Define(decl.Name.Lexeme, runtime.NilValue{})

	methodEnv := env
	if superclass != nil {
		methodEnv = env.Extend()
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*runtime.FunctionValue, len(decl.Methods))
	for _, method := range decl.Methods {
		methods[method.Name.Lexeme] = &runtime.FunctionValue{
			Declaration:   method,
			Closure:       methodEnv,
			IsInitializer: method.Name.Lexeme == runtime.InitializerName,
		}
	}

	class := &runtime.ClassValue{Name: decl.Name.Lexeme, Superclass: superclass, Methods: methods}
	return env.Assign(decl.Name.Lexeme, class)
}
