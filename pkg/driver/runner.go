// Package driver hosts the interpreter: it runs scripts through the
// scan/parse/resolve/evaluate pipeline, reports diagnostics, and loads
// projects described by lox.yml together with their dependencies.
package driver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/interpreter"
	"lox/interpreter-go/pkg/parser"
	"lox/interpreter-go/pkg/printer"
	"lox/interpreter-go/pkg/resolver"
)

var (
	// ErrCompile reports that scanning, parsing, the tail-call rewrite or
	// resolution produced diagnostics. Nothing was evaluated.
	ErrCompile = errors.New("compile error")
	// ErrRuntime reports that evaluation stopped on a runtime error.
	ErrRuntime = errors.New("runtime error")
)

// Options configures a Runner. Zero values select os.Stdout, os.Stderr, a
// discarding logger and interpreter.DefaultMaxCallDepth.
type Options struct {
	Out          io.Writer
	Err          io.Writer
	Logger       *slog.Logger
	MaxCallDepth int
}

// Runner is one interpreter session. Every script it runs shares the same
// global environment, so a project's dependencies and preludes are visible
// to its entry script and REPL lines see earlier definitions.
type Runner struct {
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
	interp *interpreter.Interpreter
}

// NewRunner starts a session with a fresh global environment.
func NewRunner(opts Options) *Runner {
	r := &Runner{
		out:    opts.Out,
		errOut: opts.Err,
		logger: opts.Logger,
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.errOut == nil {
		r.errOut = os.Stderr
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r.interp = interpreter.New(
		interpreter.WithOutput(r.out),
		interpreter.WithMaxCallDepth(opts.MaxCallDepth),
		interpreter.WithLogger(r.logger),
	)
	return r
}

// Run executes source in a fresh session.
func Run(ctx context.Context, source string, opts Options) error {
	return NewRunner(opts).Run(ctx, "<script>", source)
}

// Run executes source in this session. name labels the source in logs and
// errors.
func (r *Runner) Run(ctx context.Context, name, source string) error {
	stmts, err := r.compile(ctx, name, source)
	if err != nil {
		return err
	}
	return r.execute(name, stmts)
}

// RunFile reads and runs a script.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	return r.Run(ctx, path, string(data))
}

// Eval runs one REPL entry. A lone expression statement has its value
// printed instead of being discarded.
func (r *Runner) Eval(ctx context.Context, source string) error {
	stmts, err := r.compile(ctx, "<repl>", source)
	if err != nil {
		return err
	}
	if len(stmts) == 1 {
		if exprStmt, ok := stmts[0].(*ast.ExpressionStmt); ok {
			value, err := r.interp.Evaluate(exprStmt.Expression)
			if err != nil {
				return r.runtimeFailure("<repl>", err)
			}
			fmt.Fprintln(r.out, r.interp.Stringify(value))
			return nil
		}
	}
	return r.execute("<repl>", stmts)
}

// PrintAST parses source, applying tail-call rewrites, and writes the tree
// in parenthesized prefix form without evaluating it.
func (r *Runner) PrintAST(ctx context.Context, name, source string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stmts, diags := parser.ParseSource(NormalizeSource(source), parser.WithLogger(r.logger))
	if diags.Len() > 0 {
		r.report(diags)
		return errors.Wrapf(ErrCompile, "%s", name)
	}
	if len(stmts) > 0 {
		fmt.Fprintln(r.out, printer.Statements(stmts))
	}
	return nil
}

func (r *Runner) compile(ctx context.Context, name, source string) ([]ast.Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stmts, diags := parser.ParseSource(NormalizeSource(source), parser.WithLogger(r.logger))
	if diags.Len() > 0 {
		r.report(diags)
		return nil, errors.Wrapf(ErrCompile, "%s", name)
	}
	distances, diags := resolver.Resolve(stmts)
	if diags.Len() > 0 {
		r.report(diags)
		return nil, errors.Wrapf(ErrCompile, "%s", name)
	}
	r.interp.Resolve(distances)
	return stmts, nil
}

func (r *Runner) execute(name string, stmts []ast.Statement) error {
	r.logger.Debug("executing", slog.String("source", name), slog.Int("statements", len(stmts)))
	if err := r.interp.Interpret(stmts); err != nil {
		return r.runtimeFailure(name, err)
	}
	return nil
}

func (r *Runner) runtimeFailure(name string, err error) error {
	var rtErr *interpreter.RuntimeError
	if errors.As(err, &rtErr) {
		fmt.Fprintf(r.errOut, "%s\n[line %d]\n", rtErr.Message, rtErr.Token.Line)
	} else {
		fmt.Fprintln(r.errOut, err.Error())
	}
	return errors.Wrapf(ErrRuntime, "%s: %v", name, err)
}

func (r *Runner) report(diags *diag.List) {
	for _, d := range diags.Items() {
		fmt.Fprintln(r.errOut, d.Error())
	}
}

// RunProject runs every dependency in manifest order, then the preludes,
// then the entry script, all in one session. Dependencies come from the
// lockfile cache when lock names them; path dependencies may also run in
// place before anything is installed.
func RunProject(ctx context.Context, manifest *Manifest, lock *Lockfile, opts Options) error {
	if manifest == nil {
		return errors.New("run: nil manifest")
	}
	if opts.MaxCallDepth == 0 {
		opts.MaxCallDepth = manifest.MaxCallDepth
	}
	r := NewRunner(opts)

	for _, name := range manifest.DependencyOrder {
		script, err := dependencyScript(manifest, lock, name)
		if err != nil {
			return err
		}
		if err := r.RunFile(ctx, script); err != nil {
			return err
		}
	}
	for _, prelude := range manifest.PreludePaths() {
		if err := r.RunFile(ctx, prelude); err != nil {
			return err
		}
	}
	return r.RunFile(ctx, manifest.EntryPath())
}

func dependencyScript(manifest *Manifest, lock *Lockfile, name string) (string, error) {
	spec := manifest.Dependencies[name]
	if pkg, ok := lock.Find(name); ok {
		if err := VerifyPackage(pkg); err != nil {
			return "", err
		}
		entry := pkg.Entry
		if entry == "" {
			entry = spec.EntryFile()
		}
		return filepath.Join(pkg.Dir, entry), nil
	}
	if spec.Path != "" {
		return filepath.Join(manifest.resolve(spec.Path), spec.EntryFile()), nil
	}
	return "", errors.Errorf("dependency %q is not installed; run `lox deps install`", name)
}
