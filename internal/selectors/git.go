package selectors

import (
	"regexp"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fnug-dev/fnug/internal/config"
	fnuggit "github.com/fnug-dev/fnug/internal/git"
)

// GitSelector operates only on commands with auto.git == true. The
// heavy VCS work is hoisted out of the per-command loop: unique
// watched-path repo roots are discovered, scanned once each in
// parallel, and only then matched against every candidate command
// (spec.md §4.3).
type GitSelector struct {
	Scanner *fnuggit.Scanner
}

// Select implements Selector.
func (s *GitSelector) Select(commands []*config.Command) (selected, remaining []*config.Command, err error) {
	var candidates []*config.Command
	for _, c := range commands {
		if c.Auto.IsGit() {
			candidates = append(candidates, c)
		} else {
			remaining = append(remaining, c)
		}
	}
	if len(candidates) == 0 {
		return nil, remaining, nil
	}

	// Step 1-2: discover repo root for every unique watched path,
	// collect the unique set of roots.
	rootOf := make(map[string]string) // watched path -> repo root
	roots := make(map[string]bool)
	for _, c := range candidates {
		for _, p := range c.Auto.Path {
			if _, ok := rootOf[p]; ok {
				continue
			}
			root, err := s.Scanner.RepoRoot(p)
			if err != nil {
				return nil, nil, err
			}
			rootOf[p] = root
			if root != "" {
				roots[root] = true
			}
		}
	}

	// Step 3: scan every unique root in parallel, one goroutine per
	// root, joined before results are consumed.
	changedByRoot := make(map[string][]string, len(roots))
	var mu sync.Mutex
	var g errgroup.Group
	for root := range roots {
		root := root
		g.Go(func() error {
			changed, err := s.Scanner.ChangedPaths(root)
			if err != nil {
				return err
			}
			mu.Lock()
			changedByRoot[root] = changed
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	// Step 4: for each candidate, test whether any watched path's
	// repository has a changed file under that path matching a regex.
	for _, c := range candidates {
		if commandHasChanges(c, rootOf, changedByRoot) {
			selected = append(selected, c)
		} else {
			remaining = append(remaining, c)
		}
	}

	return selected, remaining, nil
}

func commandHasChanges(c *config.Command, rootOf map[string]string, changedByRoot map[string][]string) bool {
	for _, p := range c.Auto.Path {
		root := rootOf[p]
		if root == "" {
			continue
		}
		changed := changedByRoot[root]
		if fnuggit.HasChanges(p, changed, func(path string) bool {
			return matchesAny(c.Auto.Regex, path)
		}) {
			return true
		}
	}
	return false
}

func matchesAny(patterns []*regexp.Regexp, path string) bool {
	for _, re := range patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
