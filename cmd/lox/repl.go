package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"lox/interpreter-go/pkg/driver"
	"lox/interpreter-go/pkg/parser"
)

const (
	promptMain  = "lox> "
	promptCont  = "...> "
	historyFile = "history"
)

// lineReader is the part of *liner.State the loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func runRepl(ctx context.Context, logger *slog.Logger) int {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := ""
	if home, err := driver.DefaultCacheDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if err := os.MkdirAll(filepath.Dir(histPath), 0o755); err != nil {
			logger.Debug("history not saved", slog.String("error", err.Error()))
			return
		}
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	return repl(ctx, ln, driver.NewRunner(driverOptions(logger)))
}

// repl evaluates entries until EOF. Errors are reported by the runner and
// never end the session.
func repl(ctx context.Context, in lineReader, runner *driver.Runner) int {
	for {
		src, ok := readByParseProbe(in, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(os.Stdout)
			return exitOK
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		_ = runner.Eval(ctx, src)
		in.AppendHistory(strings.ReplaceAll(src, "\n", " "))
	}
}

// readByParseProbe keeps reading lines while the accumulated source fails to
// parse only because it ended early. A blank continuation line submits what
// was typed so far. An expression typed without its semicolon gets one.
func readByParseProbe(in lineReader, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = in.Prompt(prompt)
		} else {
			line, err = in.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if err != nil {
			return "", true
		}
		if b.Len() > 0 && strings.TrimSpace(line) == "" {
			return b.String(), true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if !incomplete(src) {
			return src, true
		}
		if withSemicolon := src + ";"; !incomplete(withSemicolon) && parses(withSemicolon) {
			return withSemicolon, true
		}
	}
}

func incomplete(src string) bool {
	_, diags := parser.ParseSource(src)
	for _, d := range diags.Items() {
		if d.Where == "at end" || d.Message == "Unterminated string." {
			return true
		}
	}
	return false
}

func parses(src string) bool {
	_, diags := parser.ParseSource(src)
	return diags.Len() == 0
}
