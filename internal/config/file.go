package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// CurrentFormatVersion is compared against a loaded config's
// fnug_version. Any mismatch is reported as a warning and never
// rejects the load; a differing major component gets its own message.
const CurrentFormatVersion = "1.0.0"

// filenames are searched, in order, in each directory from the start
// point up to the filesystem root.
var filenames = []string{".fnug.json", ".fnug.yaml", ".fnug.yml"}

// rawAuto mirrors the on-disk "auto" object. Fields are pointers/nil
// slices so absence is distinguishable from an empty/false value.
type rawAuto struct {
	Watch  *bool    `yaml:"watch,omitempty" json:"watch,omitempty"`
	Git    *bool    `yaml:"git,omitempty" json:"git,omitempty"`
	Path   []string `yaml:"path,omitempty" json:"path,omitempty"`
	Regex  []string `yaml:"regex,omitempty" json:"regex,omitempty"`
	Always *bool    `yaml:"always,omitempty" json:"always,omitempty"`
}

func (r rawAuto) compile() (Auto, error) {
	regexes := make([]*regexp.Regexp, 0, len(r.Regex))
	for _, pattern := range r.Regex {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return Auto{}, &RegexError{Pattern: pattern, Err: err}
		}
		regexes = append(regexes, re)
	}
	return Auto{
		Watch:       r.Watch,
		Git:         r.Git,
		Always:      r.Always,
		Path:        append([]string(nil), r.Path...),
		Regex:       regexes,
		RegexSource: append([]string(nil), r.Regex...),
	}, nil
}

// rawCommand mirrors the on-disk command object.
type rawCommand struct {
	ID         string            `yaml:"id,omitempty" json:"id,omitempty"`
	Name       string            `yaml:"name" json:"name"`
	Cmd        string            `yaml:"cmd" json:"cmd"`
	Cwd        string            `yaml:"cwd,omitempty" json:"cwd,omitempty"`
	Auto       rawAuto           `yaml:"auto,omitempty" json:"auto,omitempty"`
	Env        map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	DependsOn  []string          `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	Scrollback int               `yaml:"scrollback,omitempty" json:"scrollback,omitempty"`
}

func (r rawCommand) compile(entryPath []string) (*Command, error) {
	auto, err := r.Auto.compile()
	if err != nil {
		return nil, err
	}
	id := r.ID
	if id == "" {
		id = uuid.New().String()
	}
	scrollback := r.Scrollback
	if scrollback <= 0 {
		scrollback = DefaultScrollback
	}
	return &Command{
		ID:         id,
		Name:       r.Name,
		Cmd:        r.Cmd,
		Cwd:        r.Cwd,
		Auto:       auto,
		Env:        r.Env,
		DependsOn:  append([]string(nil), r.DependsOn...),
		Scrollback: scrollback,
		EntryPath:  entryPath,
	}, nil
}

// rawGroup mirrors the on-disk command-group object. A root config
// file is exactly a rawGroup with an added fnug_version field
// (flattened in per spec.md §6).
type rawGroup struct {
	ID       string            `yaml:"id,omitempty" json:"id,omitempty"`
	Name     string            `yaml:"name" json:"name"`
	Auto     rawAuto           `yaml:"auto,omitempty" json:"auto,omitempty"`
	Cwd      string            `yaml:"cwd,omitempty" json:"cwd,omitempty"`
	Commands []rawCommand      `yaml:"commands,omitempty" json:"commands,omitempty"`
	Children []rawGroup        `yaml:"children,omitempty" json:"children,omitempty"`
	Env      map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
}

func (r rawGroup) compile(entryPath []string) (*Group, error) {
	auto, err := r.Auto.compile()
	if err != nil {
		return nil, err
	}
	id := r.ID
	if id == "" {
		id = uuid.New().String()
	}

	g := &Group{
		ID:        id,
		Name:      r.Name,
		Auto:      auto,
		Cwd:       r.Cwd,
		Env:       r.Env,
		EntryPath: entryPath,
	}

	for _, rc := range r.Commands {
		path := append(append([]string(nil), entryPath...), rc.Name)
		cmd, err := rc.compile(path)
		if err != nil {
			return nil, err
		}
		g.Commands = append(g.Commands, cmd)
	}
	for _, rg := range r.Children {
		path := append(append([]string(nil), entryPath...), rg.Name)
		child, err := rg.compile(path)
		if err != nil {
			return nil, err
		}
		g.Children = append(g.Children, child)
	}

	return g, nil
}

// rawConfig is the root document: fnug_version plus a flattened
// rawGroup.
type rawConfig struct {
	FnugVersion string `yaml:"fnug_version" json:"fnug_version"`
	rawGroup    `yaml:",inline" json:",inline"`
}

// Warning is a non-fatal issue surfaced during load (empty group,
// format-version mismatch — spec.md §4.1 rules 5 and 6).
type Warning struct {
	Message string
}

// LoadResult carries the compiled, inherited tree plus any warnings.
type LoadResult struct {
	Root     *Group
	Warnings []Warning
}

// FindConfig walks from startDir up to the filesystem root, returning
// the first path matching one of the recognized filenames.
func FindConfig(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range filenames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", &ConfigNotFoundError{StartDir: startDir}
}

// LoadFile parses a config file (JSON if the extension is .json, YAML
// otherwise), compiles it into a tree, validates it, and runs
// inheritance. The returned tree has every cwd absolute and every auto
// path absolute and existing on disk.
func LoadFile(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	var raw rawConfig
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
	}

	root, err := raw.rawGroup.compile(nil)
	if err != nil {
		return nil, err
	}

	var warnings []Warning
	if raw.FnugVersion != "" {
		if w := checkVersion(raw.FnugVersion); w != "" {
			warnings = append(warnings, Warning{Message: w})
		}
	}

	if err := Validate(root); err != nil {
		return nil, err
	}
	warnings = append(warnings, warnEmptyGroups(root)...)

	baseDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	if err := Inherit(root, baseDir); err != nil {
		return nil, err
	}

	return &LoadResult{Root: root, Warnings: warnings}, nil
}

func checkVersion(version string) string {
	wantMajor := strings.SplitN(CurrentFormatVersion, ".", 2)[0]
	gotMajor := strings.SplitN(version, ".", 2)[0]
	if wantMajor != gotMajor {
		return fmt.Sprintf("config fnug_version %s major version differs from binary %s", version, CurrentFormatVersion)
	}
	if version != CurrentFormatVersion {
		return fmt.Sprintf("config fnug_version %s differs from binary %s", version, CurrentFormatVersion)
	}
	return ""
}

func warnEmptyGroups(g *Group) []Warning {
	var warnings []Warning
	if len(g.Commands) == 0 && len(g.Children) == 0 {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("group %q is empty", strings.Join(g.EntryPath, "."))})
	}
	for _, child := range g.Children {
		warnings = append(warnings, warnEmptyGroups(child)...)
	}
	return warnings
}
