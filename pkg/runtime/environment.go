package runtime

import (
	"errors"
	"fmt"
)

var (
	// ErrUndefined reports a name with no binding in the searched frames.
	ErrUndefined = errors.New("undefined variable")
	// ErrUninitialized reports a read of a variable declared without an
	// initializer and not assigned since.
	ErrUninitialized = errors.New("uninitialized variable")
)

// Environment is one frame of lexical bindings. Frames are shared by child
// frames and by closures, and live as long as any of them.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Define inserts or replaces a binding in the current frame.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Assign updates an existing binding in the first frame where it appears.
func (e *Environment) Assign(name string, value Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			env.values[name] = value
			return nil
		}
	}
	return fmt.Errorf("%w '%s'", ErrUndefined, name)
}

// Get retrieves a binding, searching outward through the frame chain.
func (e *Environment) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return checkInitialized(name, v)
		}
	}
	return nil, fmt.Errorf("%w '%s'", ErrUndefined, name)
}

// Ancestor follows exactly distance parent links.
func (e *Environment) Ancestor(distance int) *Environment {
	env := e
	for hop := 0; hop < distance && env != nil; hop++ {
		env = env.parent
	}
	return env
}

// GetAt reads name from the frame distance links up, without searching the
// frames in between.
func (e *Environment) GetAt(distance int, name string) (Value, error) {
	env := e.Ancestor(distance)
	if env == nil {
		return nil, fmt.Errorf("%w '%s': no frame at distance %d", ErrUndefined, name, distance)
	}
	v, ok := env.values[name]
	if !ok {
		return nil, fmt.Errorf("%w '%s' at distance %d", ErrUndefined, name, distance)
	}
	return checkInitialized(name, v)
}

// AssignAt writes name in the frame distance links up.
func (e *Environment) AssignAt(distance int, name string, value Value) error {
	env := e.Ancestor(distance)
	if env == nil {
		return fmt.Errorf("%w '%s': no frame at distance %d", ErrUndefined, name, distance)
	}
	if _, ok := env.values[name]; !ok {
		return fmt.Errorf("%w '%s' at distance %d", ErrUndefined, name, distance)
	}
	env.values[name] = value
	return nil
}

// DepthOf counts the links walked before a frame binding name is found, or
// returns -1 when no frame does.
func (e *Environment) DepthOf(name string) int {
	depth := 0
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			return depth
		}
		depth++
	}
	return -1
}

// Extend creates a child frame of e.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}

func checkInitialized(name string, v Value) (Value, error) {
	if v == Uninitialized {
		return nil, fmt.Errorf("%w '%s'", ErrUninitialized, name)
	}
	return v, nil
}
