package interpreter

import "lox/interpreter-go/pkg/runtime"

func (i *Interpreter) defineNatives() {
	i.global.Define("clock", &runtime.NativeFunctionValue{
		Name:  "clock",
		Arity: 0,
		Impl: func(args []runtime.Value) (runtime.Value, error) {
			return runtime.NumberValue{Val: float64(i.now().UnixNano()) / 1e9}, nil
		},
	})
}
