package config

import (
	"fmt"
	"strings"
)

// Validate performs the pre-inheritance checks from spec.md §4.1:
// unique identifiers, non-blank names/shell strings, and an acyclic,
// fully-resolved dependency graph. Empty groups and version mismatches
// are warnings, handled separately in LoadFile.
func Validate(root *Group) error {
	if err := validateUniqueIDs(root); err != nil {
		return err
	}
	if err := validateNames(root); err != nil {
		return err
	}
	if err := validateDependencies(root); err != nil {
		return err
	}
	return nil
}

func validateUniqueIDs(root *Group) error {
	seen := make(map[string]bool)
	var walk func(g *Group) error
	walk = func(g *Group) error {
		if seen[g.ID] {
			return &DuplicateIDError{ID: g.ID}
		}
		seen[g.ID] = true
		for _, c := range g.Commands {
			if seen[c.ID] {
				return &DuplicateIDError{ID: c.ID}
			}
			seen[c.ID] = true
		}
		for _, child := range g.Children {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root)
}

func validateNames(root *Group) error {
	var walk func(g *Group) error
	walk = func(g *Group) error {
		if strings.TrimSpace(g.Name) == "" {
			return &ValidationError{Message: fmt.Sprintf("group %q has a blank name", strings.Join(g.EntryPath, "."))}
		}
		for _, c := range g.Commands {
			if strings.TrimSpace(c.Name) == "" {
				return &ValidationError{Message: fmt.Sprintf("command %q has a blank name", strings.Join(c.EntryPath, "."))}
			}
			if strings.TrimSpace(c.Cmd) == "" {
				return &ValidationError{Message: fmt.Sprintf("command %q has a blank shell string", strings.Join(c.EntryPath, "."))}
			}
		}
		for _, child := range g.Children {
			if err := walk(child); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root)
}

// validateDependencies checks that every depends_on id resolves and
// that the dependency graph has no cycle, via DFS with an on-stack set.
func validateDependencies(root *Group) error {
	all := root.AllCommands()
	byID := make(map[string]*Command, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	for _, c := range all {
		for _, dep := range c.DependsOn {
			if _, ok := byID[dep]; !ok {
				return &ValidationError{Message: fmt.Sprintf("command %q depends on unknown id %q", c.Name, dep)}
			}
		}
	}

	const (
		unvisited = 0
		onStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(all))
	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case onStack:
			return &ValidationError{Message: fmt.Sprintf("dependency cycle detected at %q", id)}
		case done:
			return nil
		}
		state[id] = onStack
		for _, dep := range byID[id].DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}
	for _, c := range all {
		if err := visit(c.ID); err != nil {
			return err
		}
	}
	return nil
}
