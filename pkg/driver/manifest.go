package driver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ManifestName is the project manifest file looked up by RunProject and the CLI.
const ManifestName = "lox.yml"

// DefaultDependencyEntry is the script executed for a dependency that does not
// name one.
const DefaultDependencyEntry = "main.lox"

// Manifest represents the parsed contents of lox.yml.
type Manifest struct {
	Path         string
	Name         string
	Entry        string
	Preludes     []string
	MaxCallDepth int
	Dependencies map[string]*DependencySpec
	// DependencyOrder lists dependency names in manifest order; dependencies
	// run in this order.
	DependencyOrder []string
}

// DependencySpec describes a dependency descriptor in the manifest.
type DependencySpec struct {
	Git    string
	Rev    string
	Tag    string
	Branch string
	Path   string
	Entry  string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Dir returns the directory holding the manifest.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// EntryPath returns the absolute path of the entry script.
func (m *Manifest) EntryPath() string {
	return m.resolve(m.Entry)
}

// PreludePaths returns the absolute prelude paths in manifest order.
func (m *Manifest) PreludePaths() []string {
	out := make([]string, 0, len(m.Preludes))
	for _, prelude := range m.Preludes {
		out = append(out, m.resolve(prelude))
	}
	return out
}

func (m *Manifest) resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(m.Dir(), rel)
}

// LoadManifest parses lox.yml from disk, returning a validated manifest. A
// directory argument is searched for lox.yml.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, errors.New("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest: resolve %s", path)
	}
	if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
		absPath = filepath.Join(absPath, ManifestName)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest: open %s", absPath)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.Errorf("manifest: %s is empty", absPath)
		}
		return nil, errors.Wrapf(err, "manifest: parse %s", absPath)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if m.Entry == "" {
		errs.Issues = append(errs.Issues, "entry must be provided")
	}
	if m.MaxCallDepth < 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("max_call_depth must not be negative (got %d)", m.MaxCallDepth))
	}
	for _, name := range m.DependencyOrder {
		dep := m.Dependencies[name]
		for _, issue := range dep.validate() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: %s", name, issue))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (d *DependencySpec) validate() []string {
	var errs []string
	if d == nil {
		return []string{"must specify git or path"}
	}
	if d.Path != "" && d.Git != "" {
		return []string{"path dependencies cannot also specify git"}
	}
	if d.Path == "" && d.Git == "" {
		return []string{"must specify git or path"}
	}
	pins := 0
	for _, pin := range []string{d.Rev, d.Tag, d.Branch} {
		if pin != "" {
			pins++
		}
	}
	if d.Path != "" && pins > 0 {
		errs = append(errs, "rev, tag and branch apply only to git dependencies")
	}
	if d.Git != "" && pins == 0 {
		errs = append(errs, "git dependencies require rev, tag, or branch")
	}
	if pins > 1 {
		errs = append(errs, "specify only one of rev, tag, or branch")
	}
	return errs
}

// EntryFile returns the dependency script path relative to its root.
func (d *DependencySpec) EntryFile() string {
	if d == nil || d.Entry == "" {
		return DefaultDependencyEntry
	}
	return d.Entry
}

type manifestFile struct {
	Name         string        `yaml:"name"`
	Entry        string        `yaml:"entry"`
	Preludes     stringList    `yaml:"preludes"`
	MaxCallDepth int           `yaml:"max_call_depth"`
	Dependencies dependencyMap `yaml:"dependencies"`
}

type dependencyMap struct {
	items []dependencyMapEntry
}

type dependencyMapEntry struct {
	name string
	spec *DependencySpec
}

type stringList []string

func (mf manifestFile) toManifest(path string) *Manifest {
	result := &Manifest{
		Path:            path,
		Name:            sanitizeSegment(strings.TrimSpace(mf.Name)),
		Entry:           strings.TrimSpace(mf.Entry),
		Preludes:        mf.Preludes.Clone(),
		MaxCallDepth:    mf.MaxCallDepth,
		Dependencies:    make(map[string]*DependencySpec, len(mf.Dependencies.items)),
		DependencyOrder: make([]string, 0, len(mf.Dependencies.items)),
	}
	if strings.TrimSpace(mf.Name) == "" {
		result.Name = ""
	}
	for _, item := range mf.Dependencies.items {
		if _, exists := result.Dependencies[item.name]; exists {
			continue
		}
		result.Dependencies[item.name] = item.spec.clone()
		result.DependencyOrder = append(result.DependencyOrder, item.name)
	}
	return result
}

func (d *DependencySpec) clone() *DependencySpec {
	if d == nil {
		return nil
	}
	copy := *d
	return &copy
}

func (l stringList) Clone() []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, item := range l {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			items = append(items, strings.TrimSpace(str))
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("manifest: expected string or sequence for list but found %s", value.ShortTag())
	}
}

func (dm *dependencyMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		dm.items = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: dependencies must be a mapping")
	}
	items := make([]dependencyMapEntry, 0, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: dependency names must be non-empty")
		}
		var dep DependencySpec
		if err := dep.unmarshalYAML(valNode); err != nil {
			return fmt.Errorf("manifest: dependency %q: %w", key, err)
		}
		items = append(items, dependencyMapEntry{name: key, spec: &dep})
	}
	dm.items = items
	return nil
}

// A scalar dependency is shorthand for a path dependency.
func (d *DependencySpec) unmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*d = DependencySpec{}
			return nil
		}
		*d = DependencySpec{Path: strings.TrimSpace(value.Value)}
		return nil
	case yaml.MappingNode:
		var raw struct {
			Git    string `yaml:"git"`
			Rev    string `yaml:"rev"`
			Tag    string `yaml:"tag"`
			Branch string `yaml:"branch"`
			Path   string `yaml:"path"`
			Entry  string `yaml:"entry"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*d = DependencySpec{
			Git:    strings.TrimSpace(raw.Git),
			Rev:    strings.TrimSpace(raw.Rev),
			Tag:    strings.TrimSpace(raw.Tag),
			Branch: strings.TrimSpace(raw.Branch),
			Path:   strings.TrimSpace(raw.Path),
			Entry:  strings.TrimSpace(raw.Entry),
		}
		return nil
	case yaml.AliasNode:
		return d.unmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("expected string or mapping, found %s", value.ShortTag())
	}
}

// sanitizeSegment maps s onto characters safe for a single path segment.
func sanitizeSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
