package driver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

func initGitRepo(t *testing.T, dir string) (*git.Repository, string) {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	worktree, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == filepath.Join(dir, ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if strings.HasPrefix(rel, ".git/") {
			return nil
		}
		_, err = worktree.Add(rel)
		return err
	}))
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Lox CLI",
			Email: "lox@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)
	return repo, hash.String()
}

func TestDirChecksum(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	writeFile(t, filepath.Join(a, "main.lox"), "print 1;\n")
	writeFile(t, filepath.Join(a, "lib", "util.lox"), "fun f() {}\n")
	require.NoError(t, copyOrSyncDir(a, b))
	writeFile(t, filepath.Join(b, ".git", "HEAD"), "ref: refs/heads/master\n")

	sumA, err := DirChecksum(a)
	require.NoError(t, err)
	sumB, err := DirChecksum(b)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(sumA, "blake2b:"))
	require.Equal(t, sumA, sumB, "git metadata must not affect the checksum")

	writeFile(t, filepath.Join(b, "lib", "util.lox"), "fun g() {}\n")
	sumB, err = DirChecksum(b)
	require.NoError(t, err)
	require.NotEqual(t, sumA, sumB)
}

func TestCopyOrSyncDir_RemovesStaleFiles(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")
	writeFile(t, filepath.Join(src, "main.lox"), "print 1;\n")
	writeFile(t, filepath.Join(dst, "stale.lox"), "print 0;\n")

	require.NoError(t, copyOrSyncDir(src, dst))
	_, err := os.Stat(filepath.Join(dst, "stale.lox"))
	require.ErrorIs(t, err, os.ErrNotExist)
	data, err := os.ReadFile(filepath.Join(dst, "main.lox"))
	require.NoError(t, err)
	require.Equal(t, "print 1;\n", string(data))
}

func TestPathFetcher(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "util", "main.lox"), "var util = 1;\n")
	cache := filepath.Join(root, "cache")

	fetcher := &PathFetcher{ProjectDir: filepath.Join(root, "app"), CacheDir: cache}
	pkg, err := fetcher.Fetch(context.Background(), "util", &DependencySpec{Path: "../util"})
	require.NoError(t, err)
	require.Equal(t, "util", pkg.Name)
	require.Equal(t, "path", pkg.Version)
	require.Equal(t, "path:"+filepath.ToSlash(filepath.Join(root, "util")), pkg.Source)
	require.Equal(t, DefaultDependencyEntry, pkg.Entry)
	require.NoError(t, VerifyPackage(pkg))

	_, err = os.Stat(filepath.Join(pkg.Dir, "main.lox"))
	require.NoError(t, err)
}

func TestPathFetcher_MissingDirectory(t *testing.T) {
	fetcher := &PathFetcher{ProjectDir: t.TempDir(), CacheDir: t.TempDir()}
	_, err := fetcher.Fetch(context.Background(), "gone", &DependencySpec{Path: "nowhere"})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestGitFetcher_TagAndBranch(t *testing.T) {
	root := t.TempDir()
	repoDir := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repoDir, "main.lox"), "var greeting = \"tagged\";\n")
	repo, commit := initGitRepo(t, repoDir)
	head, err := repo.Head()
	require.NoError(t, err)
	_, err = repo.CreateTag("v1.0.0", head.Hash(), nil)
	require.NoError(t, err)

	cache := filepath.Join(root, "cache")
	fetcher := &GitFetcher{CacheDir: cache}

	tagged, err := fetcher.Fetch(context.Background(), "greet", &DependencySpec{Git: repoDir, Tag: "v1.0.0"})
	require.NoError(t, err)
	require.Equal(t, "v1.0.0@"+commit, tagged.Version)
	require.Equal(t, "git+"+repoDir+"@"+commit, tagged.Source)
	require.NoError(t, VerifyPackage(tagged))
	data, err := os.ReadFile(filepath.Join(tagged.Dir, "main.lox"))
	require.NoError(t, err)
	require.Contains(t, string(data), "tagged")

	branch, err := fetcher.Fetch(context.Background(), "greet", &DependencySpec{Git: repoDir, Branch: "master"})
	require.NoError(t, err)
	require.Equal(t, "master@"+commit, branch.Version)
	require.Equal(t, tagged.Checksum, branch.Checksum)

	pinned, err := fetcher.Fetch(context.Background(), "greet", &DependencySpec{Git: repoDir, Rev: commit})
	require.NoError(t, err)
	require.Equal(t, commit, pinned.Version)
}

func TestGitFetcher_UnknownTag(t *testing.T) {
	root := t.TempDir()
	repoDir := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repoDir, "main.lox"), "print 1;\n")
	initGitRepo(t, repoDir)

	fetcher := &GitFetcher{CacheDir: filepath.Join(root, "cache")}
	_, err := fetcher.Fetch(context.Background(), "greet", &DependencySpec{Git: repoDir, Tag: "missing"})
	require.ErrorContains(t, err, "resolve revision")
}

func TestNormalizeSource(t *testing.T) {
	require.Equal(t, "print \"\u00e9\";", NormalizeSource("\ufeffprint \"e\u0301\";"))
	require.Equal(t, "print 1;", NormalizeSource("print 1;"))
}
