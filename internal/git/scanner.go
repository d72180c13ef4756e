// Package git discovers git repository roots and enumerates their
// non-ignored changed paths, with per-repository caching so repeated
// selector passes don't re-scan the same working tree.
package git

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
)

// Scanner discovers repository roots for arbitrary filesystem paths
// and lists each repository's non-ignored changed paths, caching both
// lookups. A Scanner is safe for concurrent use; the selector pipeline
// scans multiple repository roots in parallel (spec.md §4.3).
type Scanner struct {
	mu           sync.Mutex
	repoRoots    map[string]string   // path -> repo root ("" if not in a repo)
	changedPaths map[string][]string // repo root -> non-ignored changed paths
}

// NewScanner returns an empty Scanner.
func NewScanner() *Scanner {
	return &Scanner{
		repoRoots:    make(map[string]string),
		changedPaths: make(map[string][]string),
	}
}

// RepoRoot returns the git repository root containing path, or "" if
// path is not inside a git working tree. Cached per path.
func (s *Scanner) RepoRoot(path string) (string, error) {
	s.mu.Lock()
	if root, ok := s.repoRoots[path]; ok {
		s.mu.Unlock()
		return root, nil
	}
	s.mu.Unlock()

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		s.mu.Lock()
		s.repoRoots[path] = ""
		s.mu.Unlock()
		if err == git.ErrRepositoryNotExists {
			return "", nil
		}
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", err
	}
	root := wt.Filesystem.Root()

	s.mu.Lock()
	s.repoRoots[path] = root
	s.mu.Unlock()
	return root, nil
}

// ChangedPaths returns every non-ignored path with working-tree or
// index changes (modified, added, deleted, untracked) in the
// repository rooted at repoRoot, as absolute paths. Cached per root;
// call Reset to force a re-scan (e.g. on a new selection pass in the
// interactive TUI).
func (s *Scanner) ChangedPaths(repoRoot string) ([]string, error) {
	s.mu.Lock()
	if paths, ok := s.changedPaths[repoRoot]; ok {
		s.mu.Unlock()
		return paths, nil
	}
	s.mu.Unlock()

	repo, err := git.PlainOpen(repoRoot)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	status, err := wt.Status()
	if err != nil {
		return nil, err
	}

	var paths []string
	for file, st := range status {
		if st.Worktree == git.Unmodified && st.Staging == git.Unmodified {
			continue
		}
		paths = append(paths, filepath.Join(repoRoot, filepath.FromSlash(file)))
	}

	s.mu.Lock()
	s.changedPaths[repoRoot] = paths
	s.mu.Unlock()
	return paths, nil
}

// Reset clears every cached lookup, forcing the next RepoRoot/
// ChangedPaths call to rescan, for callers that re-select after the
// repository's changed-file set may have moved on since the last scan.
func (s *Scanner) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repoRoots = make(map[string]string)
	s.changedPaths = make(map[string][]string)
}

// HasChanges reports whether any path in changed lies under watchPath
// and matches at least one pattern — the per-command test used by the
// git-selector (spec.md §4.3 step 4).
func HasChanges(watchPath string, changed []string, matches func(path string) bool) bool {
	prefix := strings.TrimSuffix(watchPath, string(filepath.Separator))
	for _, c := range changed {
		if !strings.HasPrefix(c, prefix) {
			continue
		}
		rest := strings.TrimPrefix(c, prefix)
		if rest != "" && rest[0] != filepath.Separator {
			continue // watchPath is a sibling with a shared prefix, not an ancestor
		}
		if matches(c) {
			return true
		}
	}
	return false
}
