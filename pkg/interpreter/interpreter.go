package interpreter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/runtime"
)

// DefaultMaxCallDepth bounds nested user-function calls. Exceeding it is the
// runtime error "Stack overflow."
const DefaultMaxCallDepth = 1024

// Interpreter evaluates resolved programs. One Interpreter is one run: its
// global environment holds the natives and every top-level binding.
type Interpreter struct {
	global       *runtime.Environment
	locals       map[ast.Expression]int
	out          io.Writer
	logger       *slog.Logger
	maxCallDepth int
	callDepth    int
	now          func() time.Time
	observer     func(LocalAccess)
}

// LocalAccess describes one distance-based variable access. Depth is the
// number of links a by-name search would walk from the accessing frame.
type LocalAccess struct {
	Name     string
	Line     int
	Distance int
	Depth    int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput routes print statements to w (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) {
		if w != nil {
			i.out = w
		}
	}
}

// WithMaxCallDepth overrides DefaultMaxCallDepth. Values below one are ignored.
func WithMaxCallDepth(depth int) Option {
	return func(i *Interpreter) {
		if depth > 0 {
			i.maxCallDepth = depth
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithClock replaces the time source behind the clock() native.
func WithClock(now func() time.Time) Option {
	return func(i *Interpreter) {
		if now != nil {
			i.now = now
		}
	}
}

// WithLocalAccessObserver is called on every resolved variable, `this` or
// `super` access.
func WithLocalAccessObserver(fn func(LocalAccess)) Option {
	return func(i *Interpreter) {
		i.observer = fn
	}
}

// New returns an interpreter with a fresh global environment.
func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		global:       runtime.NewEnvironment(nil),
		locals:       make(map[ast.Expression]int),
		out:          os.Stdout,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxCallDepth: DefaultMaxCallDepth,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.defineNatives()
	return i
}

// GlobalEnvironment returns the interpreter’s global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Resolve merges resolved distances into the interpreter. References without
// an entry are treated as globals.
func (i *Interpreter) Resolve(distances map[ast.Expression]int) {
	for expr, distance := range distances {
		i.locals[expr] = distance
	}
}

// Interpret executes top-level statements in order. The first runtime error
// stops the run and is returned as a *RuntimeError.
func (i *Interpreter) Interpret(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if _, err := i.execute(stmt, i.global); err != nil {
			var rtErr *RuntimeError
			if errors.As(err, &rtErr) {
				i.logger.Debug("runtime error", slog.Int("line", rtErr.Token.Line), slog.String("message", rtErr.Message))
			}
			return err
		}
	}
	return nil
}

// Evaluate evaluates a single expression in the global environment.
func (i *Interpreter) Evaluate(expr ast.Expression) (runtime.Value, error) {
	return i.evaluateExpression(expr, i.global)
}

// Stringify renders a value the way print does.
func (i *Interpreter) Stringify(val runtime.Value) string {
	return valueToString(val)
}

// RuntimeError is a failure during evaluation, attributed to a token.
type RuntimeError struct {
	Token   ast.Token
	Message string
}

func (e *RuntimeError) Error() string {
	return e.Message
}

func newRuntimeError(tok ast.Token, format string, args ...any) *RuntimeError {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, args...)}
}

type flowKind int

const (
	flowNormal flowKind = iota
	flowReturn
)

// flow is the outcome of executing a statement. Failure travels separately
// as an error.
type flow struct {
	kind  flowKind
	value runtime.Value
}

var normalFlow = flow{kind: flowNormal}

func returnFlow(value runtime.Value) flow {
	return flow{kind: flowReturn, value: value}
}
