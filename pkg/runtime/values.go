package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"lox/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindNativeFunction
	KindFunction
	KindClass
	KindInstance
	KindUninitialized
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindNativeFunction:
		return "native_function"
	case KindFunction:
		return "function"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindUninitialized:
		return "uninitialized"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

// NilValue is the absence value.
type NilValue struct{}

func (NilValue) Kind() Kind { return KindNil }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

type uninitializedValue struct{}

func (uninitializedValue) Kind() Kind { return KindUninitialized }

// Uninitialized marks a variable declared without an initializer. It never
// escapes an Environment read: Get and GetAt report ErrUninitialized instead.
var Uninitialized Value = uninitializedValue{}

// FromLiteral converts a literal payload produced by the scanner.
func FromLiteral(value any) (Value, error) {
	switch v := value.(type) {
	case nil:
		return NilValue{}, nil
	case bool:
		return BoolValue{Val: v}, nil
	case float64:
		return NumberValue{Val: v}, nil
	case string:
		return StringValue{Val: v}, nil
	default:
		return nil, fmt.Errorf("runtime: unsupported literal %T", value)
	}
}

// FormatNumber renders a number the way `print` shows it: integral values
// drop their fractional part.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	var text string
	if math.Abs(v) < 1e21 {
		text = strconv.FormatFloat(v, 'f', -1, 64)
	} else {
		text = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.TrimSuffix(text, ".0")
}

//-----------------------------------------------------------------------------
// Callables
//-----------------------------------------------------------------------------

// NativeFunc implements a host-provided function.
type NativeFunc func(args []Value) (Value, error)

type NativeFunctionValue struct {
	Name  string
	Arity int
	Impl  NativeFunc
}

func (v *NativeFunctionValue) Kind() Kind { return KindNativeFunction }

// FunctionValue is a closure: a declaration plus the environment that was
// active where it was declared.
type FunctionValue struct {
	Declaration   *ast.FunctionDecl
	Closure       *Environment
	IsInitializer bool
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

func (v *FunctionValue) Arity() int {
	return len(v.Declaration.Params)
}

func (v *FunctionValue) Name() string {
	return v.Declaration.Name.Lexeme
}

// Bind layers a frame defining `this` over the captured environment. Each
// call produces a new closure.
func (v *FunctionValue) Bind(instance *InstanceValue) *FunctionValue {
	env := NewEnvironment(v.Closure)
	env.Define("this", instance)
	return &FunctionValue{Declaration: v.Declaration, Closure: env, IsInitializer: v.IsInitializer}
}

//-----------------------------------------------------------------------------
// Classes and instances
//-----------------------------------------------------------------------------

// InitializerName is the method invoked when a class is called.
const InitializerName = "init"

type ClassValue struct {
	Name       string
	Superclass *ClassValue
	Methods    map[string]*FunctionValue
}

func (v *ClassValue) Kind() Kind { return KindClass }

// FindMethod walks the superclass chain; the nearest definition wins.
func (v *ClassValue) FindMethod(name string) (*FunctionValue, bool) {
	for class := v; class != nil; class = class.Superclass {
		if method, ok := class.Methods[name]; ok {
			return method, true
		}
	}
	return nil, false
}

// Arity is the initializer's arity, or zero without one.
func (v *ClassValue) Arity() int {
	if init, ok := v.FindMethod(InitializerName); ok {
		return init.Arity()
	}
	return 0
}

type InstanceValue struct {
	Class  *ClassValue
	Fields map[string]Value
}

func NewInstance(class *ClassValue) *InstanceValue {
	return &InstanceValue{Class: class, Fields: make(map[string]Value)}
}

func (v *InstanceValue) Kind() Kind { return KindInstance }

// Get reads a field, falling back to a freshly bound method.
func (v *InstanceValue) Get(name string) (Value, bool) {
	if field, ok := v.Fields[name]; ok {
		return field, true
	}
	if method, ok := v.Class.FindMethod(name); ok {
		return method.Bind(v), true
	}
	return nil, false
}

// Set always writes the field map, shadowing any method of the same name.
func (v *InstanceValue) Set(name string, value Value) {
	v.Fields[name] = value
}
