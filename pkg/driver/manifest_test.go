package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestLoadManifest_Full(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestName), `
name: demo app
entry: src/main.lox
preludes:
  - lib/prelude.lox
  - lib/extra.lox
max_call_depth: 4096
dependencies:
  util: ../util
  math:
    git: https://example.com/math.git
    tag: v1.2.0
    entry: math.lox
`)

	manifest, err := LoadManifest(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, ManifestName), manifest.Path)
	require.Equal(t, "demo_app", manifest.Name)
	require.Equal(t, filepath.Join(dir, "src", "main.lox"), manifest.EntryPath())
	require.Equal(t, []string{
		filepath.Join(dir, "lib", "prelude.lox"),
		filepath.Join(dir, "lib", "extra.lox"),
	}, manifest.PreludePaths())
	require.Equal(t, 4096, manifest.MaxCallDepth)
	require.Equal(t, []string{"util", "math"}, manifest.DependencyOrder)

	util := manifest.Dependencies["util"]
	require.Equal(t, "../util", util.Path)
	require.Equal(t, DefaultDependencyEntry, util.EntryFile())

	math := manifest.Dependencies["math"]
	require.Equal(t, "https://example.com/math.git", math.Git)
	require.Equal(t, "v1.2.0", math.Tag)
	require.Equal(t, "math.lox", math.EntryFile())
}

func TestLoadManifest_SingleStringPrelude(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, "name: app\nentry: main.lox\npreludes: std.lox\n")

	manifest, err := LoadManifest(path)
	require.NoError(t, err)
	require.Equal(t, []string{"std.lox"}, manifest.Preludes)
	require.Empty(t, manifest.DependencyOrder)
}

func TestLoadManifest_UnknownField(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestName), "name: app\nentry: main.lox\ntargets: {}\n")

	_, err := LoadManifest(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "field targets not found")
}

func TestLoadManifest_Empty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestName), "")

	_, err := LoadManifest(dir)
	require.ErrorContains(t, err, "is empty")
}

func TestLoadManifest_Validation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ManifestName), `
max_call_depth: -1
dependencies:
  both:
    path: ../both
    git: https://example.com/both.git
  unpinned:
    git: https://example.com/unpinned.git
  pinned_path:
    path: ../p
    branch: main
  overpinned:
    git: https://example.com/o.git
    tag: v1
    branch: main
  empty: {}
`)

	_, err := LoadManifest(dir)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	require.ElementsMatch(t, []string{
		"name must be provided",
		"entry must be provided",
		"max_call_depth must not be negative (got -1)",
		"dependencies.both: path dependencies cannot also specify git",
		"dependencies.unpinned: git dependencies require rev, tag, or branch",
		"dependencies.pinned_path: rev, tag and branch apply only to git dependencies",
		"dependencies.overpinned: specify only one of rev, tag, or branch",
		"dependencies.empty: must specify git or path",
	}, validation.Issues)
}

func TestLoadManifest_Missing(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), ManifestName))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSanitizeSegment(t *testing.T) {
	require.Equal(t, "head", sanitizeSegment("  "))
	require.Equal(t, "v1.0_rc-1", sanitizeSegment("v1.0/rc-1"))
}
