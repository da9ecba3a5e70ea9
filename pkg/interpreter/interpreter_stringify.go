package interpreter

import (
	"fmt"

	"lox/interpreter-go/pkg/runtime"
)

func valueToString(val runtime.Value) string {
	switch v := val.(type) {
	case runtime.NilValue:
		return "nil"
	case runtime.BoolValue:
		if v.Val {
			return "true"
		}
		return "false"
	case runtime.NumberValue:
		return runtime.FormatNumber(v.Val)
	case runtime.StringValue:
		return v.Val
	case *runtime.NativeFunctionValue:
		return "<native fn>"
	case *runtime.FunctionValue:
		return fmt.Sprintf("<fn %s>", v.Name())
	case *runtime.ClassValue:
		return v.Name
	case *runtime.InstanceValue:
		return v.Class.Name + " instance"
	case nil:
		return "nil"
	default:
		return fmt.Sprintf("<%s>", val.Kind())
	}
}
