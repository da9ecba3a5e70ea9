package driver

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// Fetcher materializes one dependency in the cache and describes it for the
// lockfile.
type Fetcher interface {
	Fetch(ctx context.Context, name string, spec *DependencySpec) (*LockedPackage, error)
}

// PathFetcher copies a dependency from a directory relative to the project.
type PathFetcher struct {
	ProjectDir string
	CacheDir   string
}

func (p *PathFetcher) Fetch(ctx context.Context, name string, spec *DependencySpec) (*LockedPackage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src := spec.Path
	if !filepath.IsAbs(src) {
		src = filepath.Join(p.ProjectDir, src)
	}
	info, err := os.Stat(src)
	if err != nil {
		return nil, errors.Wrapf(err, "dependency %q", name)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("dependency %q: %s is not a directory", name, src)
	}

	checksum, err := DirChecksum(src)
	if err != nil {
		return nil, errors.Wrapf(err, "dependency %q: checksum %s", name, src)
	}
	dst := filepath.Join(p.CacheDir, "pkg", "src", sanitizeSegment(name), "path")
	if err := copyOrSyncDir(src, dst); err != nil {
		return nil, errors.Wrapf(err, "dependency %q: copy %s -> %s", name, src, dst)
	}
	return &LockedPackage{
		Name:     sanitizeSegment(name),
		Version:  "path",
		Source:   "path:" + filepath.ToSlash(src),
		Checksum: checksum,
		Dir:      dst,
		Entry:    spec.EntryFile(),
	}, nil
}

// GitFetcher clones a dependency and checks out the pinned rev, tag or branch.
type GitFetcher struct {
	CacheDir string
}

func (g *GitFetcher) Fetch(ctx context.Context, name string, spec *DependencySpec) (*LockedPackage, error) {
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, errors.Errorf("dependency %q: git URL required", name)
	}

	baseDir := filepath.Join(g.CacheDir, "pkg", "src", sanitizeSegment(name))
	version, commit, err := ensureGitCheckout(ctx, baseDir, url, spec)
	if err != nil {
		return nil, errors.Wrapf(err, "dependency %q", name)
	}

	checkoutDir := filepath.Join(baseDir, sanitizeSegment(version))
	checksum, err := DirChecksum(checkoutDir)
	if err != nil {
		return nil, errors.Wrapf(err, "dependency %q: checksum %s", name, checkoutDir)
	}
	return &LockedPackage{
		Name:     sanitizeSegment(name),
		Version:  version,
		Source:   fmt.Sprintf("git+%s@%s", url, commit),
		Checksum: checksum,
		Dir:      checkoutDir,
		Entry:    spec.EntryFile(),
	}, nil
}

func ensureGitCheckout(ctx context.Context, baseDir, url string, spec *DependencySpec) (string, string, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}

	revision, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return "", "", err
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}

	repo, err := git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{URL: url})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", errors.Wrapf(err, "git clone %s", url)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", errors.Wrapf(err, "resolve revision %s", revision)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, sanitizeSegment(version))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", errors.Wrapf(err, "git checkout %s", revision)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", "", err
	}
	return version, hash.String(), nil
}

func gitPinnedVersion(descriptor, commit string) string {
	if commit == "" {
		return descriptor
	}
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

// Branches are read from the remote-tracking refs a fresh clone creates.
func gitRevisionFromSpec(spec *DependencySpec) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision(plumbing.NewTagReferenceName(tag)), tag, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision(plumbing.NewRemoteReferenceName(git.DefaultRemoteName, branch)), branch, nil
	}
	return "", "", errors.New("git dependencies require rev, tag, or branch")
}

func copyOrSyncDir(src, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	keep := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		keep[entry.Name()] = struct{}{}
	}
	if dstEntries, err := os.ReadDir(dst); err == nil {
		for _, entry := range dstEntries {
			if _, ok := keep[entry.Name()]; ok && entry.Name() != ".git" {
				continue
			}
			if err := os.RemoveAll(filepath.Join(dst, entry.Name())); err != nil {
				return err
			}
		}
	}

	for _, entry := range entries {
		if entry.Name() == ".git" {
			continue
		}
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := copyOrSyncDir(srcPath, dstPath); err != nil {
				return err
			}
		} else if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// DirChecksum hashes every file under path (names relative to path, then
// contents) with BLAKE2b-256. Git metadata is skipped so a clone and a copy
// of the same tree agree.
func DirChecksum(path string) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write([]byte{0})
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return "blake2b:" + hex.EncodeToString(h.Sum(nil)), nil
}
