package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"lox/interpreter-go/pkg/driver"
)

const cliToolVersion = "lox 0.1.0"

// Exit statuses follow sysexits(3).
const (
	exitOK      = 0
	exitUsage   = 64
	exitCompile = 65
	exitRuntime = 70
	exitIO      = 74
)

func main() {
	os.Exit(run(os.Args[1:]))
}

type cliOptions struct {
	verbose  bool
	printAST bool
}

func run(args []string) int {
	opts, rest, ok := parseFlags(args)
	if !ok {
		printUsage()
		return exitUsage
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("LOX_LOG")), "debug") {
		opts.verbose = true
	}
	logger := newLogger(opts.verbose)
	ctx := context.Background()

	if opts.printAST {
		if len(rest) != 1 {
			printUsage()
			return exitUsage
		}
		return printAST(ctx, rest[0], logger)
	}

	if len(rest) == 0 {
		return runRepl(ctx, logger)
	}

	switch rest[0] {
	case "--help", "-h", "help":
		printUsage()
		return exitOK
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return exitOK
	case "run":
		return runEntry(ctx, rest[1:], logger)
	case "deps":
		return runDeps(ctx, rest[1:], logger)
	case "repl":
		return runRepl(ctx, logger)
	default:
		return runEntry(ctx, rest, logger)
	}
}

// parseFlags pulls the global flags out of args. Flags may appear anywhere
// before a `--`; everything else keeps its order.
func parseFlags(args []string) (cliOptions, []string, bool) {
	var opts cliOptions
	rest := make([]string, 0, len(args))
	for idx, arg := range args {
		switch arg {
		case "-v", "--verbose":
			opts.verbose = true
		case "--print-ast":
			opts.printAST = true
		case "--":
			rest = append(rest, args[idx+1:]...)
			return opts, rest, true
		default:
			if strings.HasPrefix(arg, "-") && !isKnownCommandFlag(arg) {
				fmt.Fprintf(os.Stderr, "unknown flag %q\n", arg)
				return opts, nil, false
			}
			rest = append(rest, arg)
		}
	}
	return opts, rest, true
}

func isKnownCommandFlag(arg string) bool {
	switch arg {
	case "--help", "-h", "--version", "-V":
		return true
	}
	return false
}

func newLogger(verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// exitCode maps a driver error onto the process status. Diagnostics were
// already written by the driver; anything else is printed here.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, driver.ErrCompile):
		return exitCompile
	case errors.Is(err, driver.ErrRuntime):
		return exitRuntime
	default:
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitIO
	}
}

func driverOptions(logger *slog.Logger) driver.Options {
	return driver.Options{Out: os.Stdout, Err: os.Stderr, Logger: logger}
}

func printAST(ctx context.Context, path string, logger *slog.Logger) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
		return exitIO
	}
	return exitCode(driver.NewRunner(driverOptions(logger)).PrintAST(ctx, path, string(data)))
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lox                      start the REPL")
	fmt.Fprintln(os.Stderr, "  lox <file.lox>           run a script")
	fmt.Fprintln(os.Stderr, "  lox run [file.lox]       run a script, or the project in lox.yml")
	fmt.Fprintln(os.Stderr, "  lox deps install         fetch dependencies and write lox.lock")
	fmt.Fprintln(os.Stderr, "  lox --print-ast <file>   print the parsed program")
	fmt.Fprintln(os.Stderr, "  lox --version")
	fmt.Fprintln(os.Stderr, "Flags: -v, --verbose (or LOX_LOG=debug) log to stderr")
}
