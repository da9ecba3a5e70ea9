package driver

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Tool identifies the lockfile writer.
const Tool = "lox"

// DefaultCacheDir returns $LOX_HOME, or ~/.lox when it is unset.
func DefaultCacheDir() (string, error) {
	if home := os.Getenv("LOX_HOME"); home != "" {
		return filepath.Abs(home)
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "locate home directory")
	}
	return filepath.Join(userHome, ".lox"), nil
}

// InstallDependencies fetches every manifest dependency into cacheDir and
// writes lox.lock next to the manifest.
func InstallDependencies(ctx context.Context, manifest *Manifest, cacheDir string, logger *slog.Logger) (*Lockfile, error) {
	if manifest == nil {
		return nil, errors.New("install: nil manifest")
	}
	if cacheDir == "" {
		return nil, errors.New("install: empty cache directory")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	pathFetcher := &PathFetcher{ProjectDir: manifest.Dir(), CacheDir: cacheDir}
	gitFetcher := &GitFetcher{CacheDir: cacheDir}

	lock := NewLockfile(manifest.Name, Tool)
	for _, name := range manifest.DependencyOrder {
		spec := manifest.Dependencies[name]
		var fetcher Fetcher = pathFetcher
		if spec.Git != "" {
			fetcher = gitFetcher
		}
		pkg, err := fetcher.Fetch(ctx, name, spec)
		if err != nil {
			return nil, err
		}
		logger.Debug("dependency fetched",
			slog.String("name", pkg.Name),
			slog.String("version", pkg.Version),
			slog.String("checksum", pkg.Checksum))
		lock.Packages = append(lock.Packages, pkg)
	}

	if err := WriteLockfile(lock, filepath.Join(manifest.Dir(), LockfileName)); err != nil {
		return nil, err
	}
	return lock, nil
}

// VerifyPackage recomputes the checksum of a cached dependency.
func VerifyPackage(pkg *LockedPackage) error {
	if pkg == nil {
		return errors.New("verify: nil package")
	}
	sum, err := DirChecksum(pkg.Dir)
	if err != nil {
		return errors.Wrapf(err, "dependency %q: checksum %s", pkg.Name, pkg.Dir)
	}
	if sum != pkg.Checksum {
		return errors.Errorf("dependency %q: checksum mismatch (lockfile %s, cache %s); run `lox deps install`", pkg.Name, pkg.Checksum, sum)
	}
	return nil
}
