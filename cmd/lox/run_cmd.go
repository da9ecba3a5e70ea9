package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"lox/interpreter-go/pkg/driver"
)

var errManifestNotFound = errors.New(driver.ManifestName + " not found")

func runEntry(ctx context.Context, args []string, logger *slog.Logger) int {
	switch len(args) {
	case 0:
		manifestPath, err := findManifest(".")
		if err != nil {
			if errors.Is(err, errManifestNotFound) {
				fmt.Fprintf(os.Stderr, "lox run requires a script or a project (%s not found)\n", driver.ManifestName)
				return exitUsage
			}
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return exitIO
		}
		return runProject(ctx, manifestPath, logger)
	case 1:
	default:
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return exitUsage
	}

	target := args[0]
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		manifestPath := filepath.Join(target, driver.ManifestName)
		if _, err := os.Stat(manifestPath); err != nil {
			fmt.Fprintf(os.Stderr, "%s is a directory without %s\n", target, driver.ManifestName)
			return exitUsage
		}
		return runProject(ctx, manifestPath, logger)
	}

	runner := driver.NewRunner(driverOptions(logger))
	return exitCode(runner.RunFile(ctx, target))
}

func runProject(ctx context.Context, manifestPath string, logger *slog.Logger) int {
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return exitUsage
	}
	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitUsage
	}
	logger.Debug("running project", slog.String("name", manifest.Name), slog.String("entry", manifest.EntryPath()))
	return exitCode(driver.RunProject(ctx, manifest, lock, driverOptions(logger)))
}

// findManifest walks from start towards the filesystem root.
func findManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve start directory %q: %w", start, err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	origin := dir
	for {
		candidate := filepath.Join(dir, driver.ManifestName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found from %s upwards: %w", driver.ManifestName, origin, errManifestNotFound)
		}
		dir = parent
	}
}

// loadLockfileForManifest returns nil when there is no lockfile and every
// dependency can run in place from its path.
func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	lockPath := filepath.Join(manifest.Dir(), driver.LockfileName)
	lock, err := driver.LoadLockfile(lockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if manifestHasGitDependencies(manifest) {
				return nil, fmt.Errorf("%s missing for %q; run `lox deps install`", driver.LockfileName, manifest.Name)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile %s: %w", lockPath, err)
	}
	if lock.Root != manifest.Name {
		return nil, fmt.Errorf("lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
	}
	return lock, nil
}

func manifestHasGitDependencies(manifest *driver.Manifest) bool {
	for _, dep := range manifest.Dependencies {
		if dep != nil && dep.Git != "" {
			return true
		}
	}
	return false
}
