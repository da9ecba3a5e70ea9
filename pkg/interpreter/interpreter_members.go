package interpreter

import (
	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateGet(expr *ast.Get, env *runtime.Environment) (runtime.Value, error) {
	obj, err := i.evaluateExpression(expr.Object, env)
	if err != nil {
		return nil, err
	}
	inst, ok := obj.(*runtime.InstanceValue)
	if !ok {
		return nil, newRuntimeError(expr.Name, "Only instances have properties.")
	}
	val, ok := inst.Get(expr.Name.Lexeme)
	if !ok {
		return nil, newRuntimeError(expr.Name, "Undefined property '%s'.", expr.Name.Lexeme)
	}
	return val, nil
}

func (i *Interpreter) evaluateSet(expr *ast.Set, env *runtime.Environment) (runtime.Value, error) {
	obj, err := i.evaluateExpression(expr.Object, env)
	if err != nil {
		return nil, err
	}
	inst, ok := obj.(*runtime.InstanceValue)
	if !ok {
		return nil, newRuntimeError(expr.Name, "Only instances have fields.")
	}
	val, err := i.evaluateExpression(expr.Value, env)
	if err != nil {
		return nil, err
	}
	inst.Set(expr.Name.Lexeme, val)
	return val, nil
}

// evaluateSuper looks the method up on the superclass bound where the
// enclosing class was declared, then binds it to the current receiver. The
// receiver's `this` frame sits one link inside the `super` frame.
func (i *Interpreter) evaluateSuper(expr *ast.Super, env *runtime.Environment) (runtime.Value, error) {
	distance, ok := i.locals[expr]
	if !ok {
		return nil, newRuntimeError(expr.Keyword, "Can't use 'super' outside of a class.")
	}
	i.observe(expr.Keyword, distance, env)
	superVal, err := env.GetAt(distance, "super")
	if err != nil {
		return nil, variableError(expr.Keyword, err)
	}
	superclass, ok := superVal.(*runtime.ClassValue)
	if !ok {
		return nil, newRuntimeError(expr.Keyword, "Superclass must be a class.")
	}
	thisVal, err := env.GetAt(distance-1, "this")
	if err != nil {
		return nil, variableError(expr.Keyword, err)
	}
	instance, ok := thisVal.(*runtime.InstanceValue)
	if !ok {
		return nil, newRuntimeError(expr.Keyword, "Only instances have properties.")
	}
	method, ok := superclass.FindMethod(expr.Method.Lexeme)
	if !ok {
		return nil, newRuntimeError(expr.Method, "Undefined property '%s'.", expr.Method.Lexeme)
	}
	return method.Bind(instance), nil
}
