package config

import (
	"path/filepath"
	"strings"
)

// frame is the inheritance state threaded top-down through the tree:
// the effective cwd, the effective automation rules, and the
// accumulated environment. Grounded on original_source's
// commands/inherit.rs `Inheritance` struct.
type frame struct {
	cwd string
	auto Auto
	env  map[string]string
}

// Inherit propagates working directory, automation rules and
// environment from the root down through the tree (spec.md §4.2),
// rooted at baseDir (the directory containing the config file). It
// mutates the tree in place and is idempotent: running it again on an
// already-inherited tree is a no-op on every path and rule (spec.md §8
// round-trip property), since every cwd and path is already absolute.
func Inherit(root *Group, baseDir string) error {
	root.Cwd = inheritPath(baseDir, root.Cwd)
	f := frame{
		cwd:  root.Cwd,
		auto: root.Auto,
		env:  root.Env,
	}
	return inheritGroup(root, f)
}

// inheritPath resolves a child path against a parent directory: empty
// stays empty (caller substitutes the parent), relative is joined onto
// the parent, absolute is returned unchanged.
func inheritPath(parent, child string) string {
	if child == "" {
		return parent
	}
	if filepath.IsAbs(child) {
		return child
	}
	return filepath.Join(parent, child)
}

// mergeAuto implements spec.md §4.2's "parent contributes only if it
// itself has watch/git/always set" rule, faithfully replicated per the
// Open Question in spec.md §9 and original_source's `Auto::merge`.
func mergeAuto(child, parent Auto) Auto {
	out := child
	if parent.AnySet() {
		if out.Watch == nil {
			out.Watch = parent.Watch
		}
		if out.Git == nil {
			out.Git = parent.Git
		}
		if out.Always == nil {
			out.Always = parent.Always
		}
	}
	if len(out.Path) == 0 {
		out.Path = parent.Path
	}
	if len(out.Regex) == 0 {
		out.Regex = parent.Regex
		out.RegexSource = parent.RegexSource
	}
	return out
}

func mergeEnv(parent, child map[string]string) map[string]string {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}
	out := make(map[string]string, len(parent)+len(child))
	for k, v := range parent {
		out[k] = v
	}
	for k, v := range child {
		out[k] = v
	}
	return out
}

func inheritGroup(g *Group, parent frame) error {
	g.Cwd = inheritPath(parent.cwd, g.Cwd)
	g.Auto = mergeAuto(g.Auto, parent.auto)
	g.Env = mergeEnv(parent.env, g.Env)

	if err := resolveAutoPaths(&g.Auto, g.Cwd, g.EntryPath); err != nil {
		return err
	}

	childFrame := frame{cwd: g.Cwd, auto: g.Auto, env: g.Env}

	for _, c := range g.Commands {
		if err := inheritCommand(c, childFrame); err != nil {
			return err
		}
	}
	for _, child := range g.Children {
		if err := inheritGroup(child, childFrame); err != nil {
			return err
		}
	}
	return nil
}

func inheritCommand(c *Command, parent frame) error {
	c.Cwd = inheritPath(parent.cwd, c.Cwd)
	c.Auto = mergeAuto(c.Auto, parent.auto)
	c.Env = mergeEnv(parent.env, c.Env)

	// A command with no path of its own or inherited defaults to
	// watching its own effective cwd (spec.md §4.2,
	// "uniquely — the node's effective cwd").
	if len(c.Auto.Path) == 0 {
		c.Auto.Path = []string{c.Cwd}
	}

	return resolveAutoPaths(&c.Auto, c.Cwd, c.EntryPath)
}

// resolveAutoPaths canonicalizes every auto.path entry relative to the
// owning node's effective cwd, converting failures into
// DirectoryNotFoundError carrying the dotted entry path.
func resolveAutoPaths(auto *Auto, cwd string, entryPath []string) error {
	resolved := make([]string, 0, len(auto.Path))
	for _, p := range auto.Path {
		joined := inheritPath(cwd, p)
		abs, err := filepath.Abs(joined)
		if err != nil {
			return &DirectoryNotFoundError{
				EntryPath: strings.Join(entryPath, "."),
				Path:      joined,
				Err:       err,
			}
		}
		real, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return &DirectoryNotFoundError{
				EntryPath: strings.Join(entryPath, "."),
				Path:      abs,
				Err:       err,
			}
		}
		resolved = append(resolved, real)
	}
	auto.Path = resolved
	return nil
}
