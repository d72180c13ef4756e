package selectors

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/fnug-dev/fnug/internal/config"
	"github.com/fnug-dev/fnug/internal/git"
)

func boolPtr(b bool) *bool { return &b }

func TestAlwaysSelector_Partitions(t *testing.T) {
	a := &config.Command{Name: "a", Auto: config.Auto{Always: boolPtr(true)}}
	b := &config.Command{Name: "b"}
	sel, rest, err := AlwaysSelector{}.Select([]*config.Command{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if len(sel) != 1 || sel[0] != a {
		t.Errorf("expected only a selected, got %v", sel)
	}
	if len(rest) != 1 || rest[0] != b {
		t.Errorf("expected only b remaining, got %v", rest)
	}
}

func initRepo(t *testing.T, dir string) {
	t.Helper()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "test")
}

func TestGitSelector_S4(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)

	re := regexp.MustCompile(`.*\.rs$`)
	cmd := &config.Command{
		Name: "fmt",
		Auto: config.Auto{
			Git:   boolPtr(true),
			Path:  []string{dir},
			Regex: []*regexp.Regexp{re},
		},
	}

	scanner := git.NewScanner()
	sel := &GitSelector{Scanner: scanner}

	// No changes yet: not selected.
	selected, _, err := sel.Select([]*config.Command{cmd})
	if err != nil {
		t.Fatal(err)
	}
	if len(selected) != 0 {
		t.Errorf("expected no selection with a clean tree, got %v", selected)
	}

	// Touch an unrelated file: still not selected.
	scanner.Reset()
	writeFile(t, dir, "README.md", "hello")
	selected, _, err = sel.Select([]*config.Command{cmd})
	if err != nil {
		t.Fatal(err)
	}
	if len(selected) != 0 {
		t.Errorf("expected README.md change to not select fmt, got %v", selected)
	}

	// Touch a matching file: selected.
	scanner.Reset()
	writeFile(t, dir, "src_main.rs", "fn main(){}")
	selected, _, err = sel.Select([]*config.Command{cmd})
	if err != nil {
		t.Fatal(err)
	}
	if len(selected) != 1 {
		t.Errorf("expected src_main.rs change to select fmt, got %v", selected)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
