// Package hookinstall installs a git pre-commit hook that runs
// "fnug check", supplementing spec.md from original_source's
// init_hooks.rs (SPEC_FULL.md §4.11).
package hookinstall

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"github.com/fnug-dev/fnug/internal/lock"
)

const hookContents = `#!/bin/sh
# Installed by fnug init-hooks
exec fnug check --fail-fast --mute-success
`

// ErrHookExists is returned when a pre-commit hook is already present
// and force was not requested.
type ErrHookExists struct{ Path string }

func (e *ErrHookExists) Error() string {
	return fmt.Sprintf("pre-commit hook already exists at %s (use --force to overwrite)", e.Path)
}

// ErrNoRepo is returned when cwd is not inside a git repository.
var ErrNoRepo = errors.New("git repository not found")

// Run discovers the enclosing git repository from cwd and installs
// (or overwrites, if force) a pre-commit hook invoking "fnug check".
// Concurrent installer runs against the same repo are serialized via
// internal/lock.
func Run(cwd string, force bool) (string, error) {
	repo, err := git.PlainOpenWithOptions(cwd, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", ErrNoRepo
		}
		return "", err
	}

	hooksDir, err := hooksDir(repo, cwd)
	if err != nil {
		return "", err
	}

	release, err := lock.Acquire(filepath.Join(hooksDir, ".fnug-init-hooks.lock"))
	if err != nil {
		return "", fmt.Errorf("acquire hooks lock: %w", err)
	}
	defer release()

	hookPath := filepath.Join(hooksDir, "pre-commit")
	if _, err := os.Stat(hookPath); err == nil && !force {
		return "", &ErrHookExists{Path: hookPath}
	} else if err != nil && !os.IsNotExist(err) {
		return "", err
	}

	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(hookPath, []byte(hookContents), 0o755); err != nil {
		return "", err
	}
	// WriteFile's mode is subject to umask; force executable bits explicitly.
	if err := os.Chmod(hookPath, 0o755); err != nil {
		return "", err
	}

	return hookPath, nil
}

// hooksDir resolves the repository's hooks directory, honoring
// core.hooksPath when set in .git/config.
func hooksDir(repo *git.Repository, cwd string) (string, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return "", err
	}
	root := wt.Filesystem.Root()

	cfg, err := repo.Config()
	if err == nil {
		if raw := cfg.Raw.Section("core").Option("hooksPath"); raw != "" {
			if filepath.IsAbs(raw) {
				return raw, nil
			}
			return filepath.Join(root, raw), nil
		}
	}

	return filepath.Join(root, ".git", "hooks"), nil
}
