package interpreter

import (
	"errors"
	"fmt"
	"math"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evaluateExpression(node ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return runtime.FromLiteral(n.Value)
	case *ast.Grouping:
		return i.evaluateExpression(n.Expression, env)
	case *ast.Unary:
		return i.evaluateUnaryExpression(n, env)
	case *ast.Binary:
		return i.evaluateBinaryExpression(n, env)
	case *ast.Logical:
		return i.evaluateLogicalExpression(n, env)
	case *ast.Variable:
		return i.lookUpVariable(n.Name, n, env)
	case *ast.Assign:
		return i.evaluateAssignment(n, env)
	case *ast.Call:
		return i.evaluateCall(n, env)
	case *ast.Get:
		return i.evaluateGet(n, env)
	case *ast.Set:
		return i.evaluateSet(n, env)
	case *ast.This:
		return i.lookUpVariable(n.Keyword, n, env)
	case *ast.Super:
		return i.evaluateSuper(n, env)
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", node.NodeType())
	}
}

func (i *Interpreter) evaluateUnaryExpression(expr *ast.Unary, env *runtime.Environment) (runtime.Value, error) {
	operand, err := i.evaluateExpression(expr.Right, env)
	if err != nil {
		return nil, err
	}
	switch expr.Operator.Type {
	case ast.TokenMinus:
		num, ok := operand.(runtime.NumberValue)
		if !ok {
			return nil, newRuntimeError(expr.Operator, "Operand must be a number.")
		}
		return runtime.NumberValue{Val: -num.Val}, nil
	case ast.TokenBang:
		return runtime.BoolValue{Val: !isTruthy(operand)}, nil
	default:
		return nil, newRuntimeError(expr.Operator, "Unsupported unary operator '%s'.", expr.Operator.Lexeme)
	}
}

func (i *Interpreter) evaluateBinaryExpression(expr *ast.Binary, env *runtime.Environment) (runtime.Value, error) {
	leftVal, err := i.evaluateExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	rightVal, err := i.evaluateExpression(expr.Right, env)
	if err != nil {
		return nil, err
	}

	switch expr.Operator.Type {
	case ast.TokenEqualEqual:
		return runtime.BoolValue{Val: isEqual(leftVal, rightVal)}, nil
	case ast.TokenBangEqual:
		return runtime.BoolValue{Val: !isEqual(leftVal, rightVal)}, nil
	case ast.TokenPlus:
		_, leftStr := leftVal.(runtime.StringValue)
		_, rightStr := rightVal.(runtime.StringValue)
		if leftStr || rightStr {
			return runtime.StringValue{Val: valueToString(leftVal) + valueToString(rightVal)}, nil
		}
	}

	l, r, ok := numberOperands(leftVal, rightVal)
	if !ok {
		return nil, newRuntimeError(expr.Operator, "Operands must be numbers.")
	}
	switch expr.Operator.Type {
	case ast.TokenPlus:
		return runtime.NumberValue{Val: l + r}, nil
	case ast.TokenMinus:
		return runtime.NumberValue{Val: l - r}, nil
	case ast.TokenStar:
		return runtime.NumberValue{Val: l * r}, nil
	case ast.TokenSlash:
		return runtime.NumberValue{Val: l / r}, nil
	case ast.TokenGreater:
		return runtime.BoolValue{Val: l > r}, nil
	case ast.TokenGreaterEqual:
		return runtime.BoolValue{Val: l >= r}, nil
	case ast.TokenLess:
		return runtime.BoolValue{Val: l < r}, nil
	case ast.TokenLessEqual:
		return runtime.BoolValue{Val: l <= r}, nil
	default:
		return nil, newRuntimeError(expr.Operator, "Unsupported binary operator '%s'.", expr.Operator.Lexeme)
	}
}

// evaluateLogicalExpression short-circuits and yields the deciding operand
// itself rather than a boolean.
func (i *Interpreter) evaluateLogicalExpression(expr *ast.Logical, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evaluateExpression(expr.Left, env)
	if err != nil {
		return nil, err
	}
	if expr.Operator.Type == ast.TokenOr {
		if isTruthy(left) {
			return left, nil
		}
	} else if !isTruthy(left) {
		return left, nil
	}
	return i.evaluateExpression(expr.Right, env)
}

func (i *Interpreter) evaluateAssignment(assign *ast.Assign, env *runtime.Environment) (runtime.Value, error) {
	val := runtime.Uninitialized
	var err error
	if !assign.Reset {
		if val, err = i.evaluateExpression(assign.Value, env); err != nil {
			return nil, err
		}
	}
	if distance, ok := i.locals[assign]; ok {
		i.observe(assign.Name, distance, env)
		err = env.AssignAt(distance, assign.Name.Lexeme, val)
	} else {
		err = i.global.Assign(assign.Name.Lexeme, val)
	}
	if err != nil {
		return nil, variableError(assign.Name, err)
	}
	return val, nil
}

func (i *Interpreter) lookUpVariable(name ast.Token, expr ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	var (
		val runtime.Value
		err error
	)
	if distance, ok := i.locals[expr]; ok {
		i.observe(name, distance, env)
		val, err = env.GetAt(distance, name.Lexeme)
	} else {
		val, err = i.global.Get(name.Lexeme)
	}
	if err != nil {
		return nil, variableError(name, err)
	}
	return val, nil
}

func (i *Interpreter) observe(name ast.Token, distance int, env *runtime.Environment) {
	if i.observer == nil {
		return
	}
	i.observer(LocalAccess{
		Name:     name.Lexeme,
		Line:     name.Line,
		Distance: distance,
		Depth:    env.DepthOf(name.Lexeme),
	})
}

func variableError(name ast.Token, err error) error {
	switch {
	case errors.Is(err, runtime.ErrUninitialized):
		return newRuntimeError(name, "Variable '%s' is not initialized.", name.Lexeme)
	case errors.Is(err, runtime.ErrUndefined):
		return newRuntimeError(name, "Undefined variable '%s'.", name.Lexeme)
	default:
		return err
	}
}

func (i *Interpreter) evaluateCall(call *ast.Call, env *runtime.Environment) (runtime.Value, error) {
	callee, err := i.evaluateExpression(call.Callee, env)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, 0, len(call.Arguments))
	for _, argExpr := range call.Arguments {
		val, err := i.evaluateExpression(argExpr, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}

	switch fn := callee.(type) {
	case *runtime.NativeFunctionValue:
		if err := checkArity(call.Paren, fn.Arity, len(args)); err != nil {
			return nil, err
		}
		return fn.Impl(args)
	case *runtime.FunctionValue:
		if err := checkArity(call.Paren, fn.Arity(), len(args)); err != nil {
			return nil, err
		}
		return i.invokeFunction(fn, args, call.Paren)
	case *runtime.ClassValue:
		if err := checkArity(call.Paren, fn.Arity(), len(args)); err != nil {
			return nil, err
		}
		return i.instantiate(fn, args, call.Paren)
	default:
		return nil, newRuntimeError(call.Paren, "Can only call functions and classes.")
	}
}

func checkArity(paren ast.Token, expected, got int) error {
	if expected != got {
		return newRuntimeError(paren, "Expected %d arguments but got %d.", expected, got)
	}
	return nil
}

// invokeFunction runs fn in a fresh frame parented at its captured
// environment, independent of the caller's frame.
func (i *Interpreter) invokeFunction(fn *runtime.FunctionValue, args []runtime.Value, paren ast.Token) (runtime.Value, error) {
	if i.callDepth >= i.maxCallDepth {
		return nil, newRuntimeError(paren, "Stack overflow.")
	}
	i.callDepth++
	defer func() { i.callDepth-- }()

	localEnv := runtime.NewEnvironment(fn.Closure)
	for idx, param := range fn.Declaration.Params {
		localEnv.Define(param.Lexeme, args[idx])
	}
	result, err := i.executeBlock(fn.Declaration.Body, localEnv)
	if err != nil {
		return nil, err
	}
	if fn.IsInitializer {
		return fn.Closure.GetAt(0, "this")
	}
	if result.kind == flowReturn {
		return result.value, nil
	}
	return runtime.NilValue{}, nil
}

func (i *Interpreter) instantiate(class *runtime.ClassValue, args []runtime.Value, paren ast.Token) (runtime.Value, error) {
	instance := runtime.NewInstance(class)
	if init, ok := class.FindMethod(runtime.InitializerName); ok {
		if _, err := i.invokeFunction(init.Bind(instance), args, paren); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

func isTruthy(val runtime.Value) bool {
	switch v := val.(type) {
	case runtime.BoolValue:
		return v.Val
	case runtime.NilValue:
		return false
	default:
		return true
	}
}

// isEqual compares scalars by value and everything else by identity. NaN
// equals itself.
func isEqual(a, b runtime.Value) bool {
	switch l := a.(type) {
	case runtime.NilValue:
		_, ok := b.(runtime.NilValue)
		return ok
	case runtime.BoolValue:
		r, ok := b.(runtime.BoolValue)
		return ok && l.Val == r.Val
	case runtime.NumberValue:
		r, ok := b.(runtime.NumberValue)
		return ok && (l.Val == r.Val || (math.IsNaN(l.Val) && math.IsNaN(r.Val)))
	case runtime.StringValue:
		r, ok := b.(runtime.StringValue)
		return ok && l.Val == r.Val
	default:
		return a == b
	}
}

func numberOperands(left, right runtime.Value) (float64, float64, bool) {
	l, ok := left.(runtime.NumberValue)
	if !ok {
		return 0, 0, false
	}
	r, ok := right.(runtime.NumberValue)
	if !ok {
		return 0, 0, false
	}
	return l.Val, r.Val, true
}
