package check

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fnug-dev/fnug/internal/config"
	fnuggit "github.com/fnug-dev/fnug/internal/git"
	"github.com/fnug-dev/fnug/internal/selectors"
)

func boolPtr(b bool) *bool { return &b }

func newPipeline() *selectors.Pipeline {
	return selectors.NewPipeline(fnuggit.NewScanner())
}

func TestRun_S1_TwoAlwaysCommands(t *testing.T) {
	root := &config.Group{
		Name: "root",
		Commands: []*config.Command{
			{ID: "a", Name: "a", Cmd: "true", Auto: config.Auto{Always: boolPtr(true)}},
			{ID: "b", Name: "b", Cmd: "false", Auto: config.Auto{Always: boolPtr(true)}},
		},
	}
	var buf bytes.Buffer
	result, err := Run(root, newPipeline(), Options{Stderr: &buf})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ExitCode != 1 {
		t.Errorf("expected exit 1, got %d", result.ExitCode)
	}
	if !result.FailedID["b"] {
		t.Errorf("expected b to be in failed set")
	}
}

func TestRun_S3_SkipOnDependencyFailure(t *testing.T) {
	root := &config.Group{
		Name: "root",
		Commands: []*config.Command{
			{ID: "a", Name: "a", Cmd: "false", Auto: config.Auto{Always: boolPtr(true)}},
			{ID: "b", Name: "b", Cmd: "true", Auto: config.Auto{Always: boolPtr(true)}, DependsOn: []string{"a"}},
		},
	}
	var buf bytes.Buffer
	result, err := Run(root, newPipeline(), Options{Stderr: &buf})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ExitCode != 1 {
		t.Errorf("expected exit 1, got %d", result.ExitCode)
	}
	if !result.FailedID["a"] || !result.FailedID["b"] {
		t.Errorf("expected both a and b in failed set, got %v", result.FailedID)
	}
}

func TestRun_S2_WriterReaderDependencyChain(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "written")

	root := &config.Group{
		Name: "root",
		Commands: []*config.Command{
			{
				ID:   "writer",
				Name: "writer",
				Cmd:  fmt.Sprintf("echo hello > %s", marker),
				Auto: config.Auto{Always: boolPtr(true)},
			},
			{
				ID:        "reader",
				Name:      "reader",
				Cmd:       fmt.Sprintf("test -f %s", marker),
				Auto:      config.Auto{Always: boolPtr(true)},
				DependsOn: []string{"writer"},
			},
		},
	}

	var buf bytes.Buffer
	result, err := Run(root, newPipeline(), Options{Stderr: &buf})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("expected exit 0, got %d (stderr: %s)", result.ExitCode, buf.String())
	}
	if result.FailedID["writer"] || result.FailedID["reader"] {
		t.Errorf("expected both commands to pass, got failed set %v", result.FailedID)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("expected writer's side effect file to exist: %v", err)
	}
}

func TestRun_EmptySelectionExitsZero(t *testing.T) {
	root := &config.Group{Name: "root"}
	var buf bytes.Buffer
	result, err := Run(root, newPipeline(), Options{Stderr: &buf})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ExitCode != 0 {
		t.Errorf("expected exit 0 for empty selection, got %d", result.ExitCode)
	}
}

func TestExpandDependencies(t *testing.T) {
	a := &config.Command{ID: "a", Name: "a"}
	b := &config.Command{ID: "b", Name: "b", DependsOn: []string{"a"}}
	c := &config.Command{ID: "c", Name: "c"}
	all := []*config.Command{a, b, c}

	expanded := ExpandDependencies([]*config.Command{b}, all)
	if len(expanded) != 2 {
		t.Fatalf("expected 2 commands (a, b), got %d", len(expanded))
	}
}

func TestTopoSort_RespectsDependsOn(t *testing.T) {
	a := &config.Command{ID: "a", Name: "a"}
	b := &config.Command{ID: "b", Name: "b", DependsOn: []string{"a"}}
	ordered := TopoSort([]*config.Command{b, a})
	if ordered[0].ID != "a" || ordered[1].ID != "b" {
		t.Errorf("expected [a, b], got [%s, %s]", ordered[0].ID, ordered[1].ID)
	}
}
