package watcher

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/fnug-dev/fnug/internal/config"
)

func boolPtr(b bool) *bool { return &b }

func TestNew_NoWatchableCommandsErrors(t *testing.T) {
	root := &config.Group{
		Name: "root",
		Commands: []*config.Command{
			{ID: "a", Name: "a", Cmd: "true"},
		},
	}
	if _, err := New(root, 8); !errorsIs(err, ErrNoWatchableCommands) {
		t.Fatalf("expected ErrNoWatchableCommands, got %v", err)
	}
}

func errorsIs(err, target error) bool {
	return err == target
}

func TestWatcher_TriggersOnFileWrite(t *testing.T) {
	dir := t.TempDir()

	cmd := &config.Command{
		ID:   "build",
		Name: "build",
		Cmd:  "true",
		Auto: config.Auto{Watch: boolPtr(true), Path: []string{dir}},
	}
	root := &config.Group{Name: "root", Commands: []*config.Command{cmd}}

	w, err := New(root, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	go w.Run()

	path := filepath.Join(dir, "main.go")
	if err := os.WriteFile(path, []byte("package main\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case cmds := <-w.Triggered:
		if len(cmds) != 1 || cmds[0].ID != "build" {
			t.Fatalf("unexpected triggered commands: %v", cmds)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for trigger")
	}
}

func TestWatcher_RegexFiltersNonMatchingPaths(t *testing.T) {
	dir := t.TempDir()

	cmd := &config.Command{
		ID:   "build",
		Name: "build",
		Cmd:  "true",
		Auto: config.Auto{Watch: boolPtr(true), Path: []string{dir}, Regex: []*regexp.Regexp{regexp.MustCompile(`\.go$`)}},
	}

	root := &config.Group{Name: "root", Commands: []*config.Command{cmd}}
	w, err := New(root, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	go w.Run()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case cmds := <-w.Triggered:
		t.Fatalf("expected no trigger for non-matching file, got %v", cmds)
	case <-time.After(1500 * time.Millisecond):
	}
}
