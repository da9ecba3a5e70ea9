package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"lox/interpreter-go/pkg/driver"
)

func runDeps(ctx context.Context, args []string, logger *slog.Logger) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "lox deps requires a subcommand (install)")
		return exitUsage
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "lox deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return exitUsage
		}
		return runDepsInstall(ctx, logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return exitUsage
	}
}

func runDepsInstall(ctx context.Context, logger *slog.Logger) int {
	manifestPath, err := findManifest(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitUsage
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return exitUsage
	}
	cacheDir, err := driver.DefaultCacheDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitIO
	}
	logger.Debug("installing dependencies", slog.String("project", manifest.Name), slog.String("cache", cacheDir))

	lock, err := driver.InstallDependencies(ctx, manifest, cacheDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitIO
	}
	for _, pkg := range lock.Packages {
		fmt.Fprintf(os.Stdout, "%s %s %s\n", pkg.Name, pkg.Version, pkg.Checksum)
	}
	fmt.Fprintf(os.Stdout, "wrote %s\n", lock.Path)
	return exitOK
}
