package scheduler

import (
	"testing"
	"time"

	"github.com/fnug-dev/fnug/internal/config"
	"github.com/fnug-dev/fnug/internal/ptyrun"
)

func drain(t *testing.T, s *Scheduler, n int, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for i := 0; i < n; i++ {
		select {
		case ev := <-s.Events:
			s.HandleEvent(ev)
		case <-deadline:
			t.Fatalf("timed out waiting for %d events, got %d", n, i)
		}
	}
}

func TestScheduler_DependencyChainStartsAfterSuccess(t *testing.T) {
	writer := &config.Command{ID: "writer", Name: "writer", Cmd: "true"}
	reader := &config.Command{ID: "reader", Name: "reader", Cmd: "true", DependsOn: []string{"writer"}}
	root := &config.Group{Name: "root", Commands: []*config.Command{writer, reader}}

	s := New(root, ptyrun.Size{Cols: 80, Rows: 24})
	if err := s.Start("reader", true); err != nil {
		t.Fatalf("Start: %v", err)
	}

	inst, _ := s.Instance("reader")
	if inst.Status != StatusWaitingForDeps {
		t.Fatalf("expected reader waiting for deps, got %v", inst.Status)
	}

	drain(t, s, 2, 2*time.Second) // writer exits, then reader (auto-started) exits

	inst, _ = s.Instance("reader")
	if inst.Status != StatusSuccess {
		t.Fatalf("expected reader success, got %v", inst.Status)
	}
}

func TestScheduler_SuccessClearsSelection(t *testing.T) {
	cmd := &config.Command{ID: "a", Name: "a", Cmd: "true"}
	root := &config.Group{Name: "root", Commands: []*config.Command{cmd}}

	s := New(root, ptyrun.Size{Cols: 80, Rows: 24})
	if err := s.RunSelected([]string{"a"}); err != nil {
		t.Fatalf("RunSelected: %v", err)
	}
	if !s.IsSelected("a") {
		t.Fatal("expected a selected immediately after RunSelected")
	}

	drain(t, s, 1, 2*time.Second)

	if s.IsSelected("a") {
		t.Error("expected selection cleared after successful run")
	}
}

func TestScheduler_FailureDoesNotClearSelection(t *testing.T) {
	cmd := &config.Command{ID: "a", Name: "a", Cmd: "false"}
	root := &config.Group{Name: "root", Commands: []*config.Command{cmd}}

	s := New(root, ptyrun.Size{Cols: 80, Rows: 24})
	if err := s.RunSelected([]string{"a"}); err != nil {
		t.Fatalf("RunSelected: %v", err)
	}

	drain(t, s, 1, 2*time.Second)

	if !s.IsSelected("a") {
		t.Error("expected selection to survive a failed run")
	}
}

func TestScheduler_ToggleSelected(t *testing.T) {
	s := New(&config.Group{Name: "root"}, ptyrun.Size{Cols: 80, Rows: 24})
	if s.IsSelected("x") {
		t.Fatal("expected x unselected initially")
	}
	if !s.ToggleSelected("x") {
		t.Fatal("expected ToggleSelected to return true on first toggle")
	}
	if !s.IsSelected("x") {
		t.Fatal("expected x selected after toggle")
	}
	if s.ToggleSelected("x") {
		t.Fatal("expected ToggleSelected to return false on second toggle")
	}
	if s.IsSelected("x") {
		t.Fatal("expected x unselected after second toggle")
	}
}

func TestScheduler_FailurePropagatesToDependents(t *testing.T) {
	a := &config.Command{ID: "a", Name: "a", Cmd: "false"}
	b := &config.Command{ID: "b", Name: "b", Cmd: "true", DependsOn: []string{"a"}}
	root := &config.Group{Name: "root", Commands: []*config.Command{a, b}}

	s := New(root, ptyrun.Size{Cols: 80, Rows: 24})
	if err := s.Start("b", true); err != nil {
		t.Fatalf("Start: %v", err)
	}

	drain(t, s, 1, 2*time.Second) // a exits with failure

	instA, _ := s.Instance("a")
	if instA.Status != StatusFailure {
		t.Fatalf("expected a failure, got %v", instA.Status)
	}
	instB, _ := s.Instance("b")
	if instB.Status != StatusError {
		t.Fatalf("expected b errored, got %v", instB.Status)
	}
	if instB.ErrMsg != "Dependency 'a' failed" {
		t.Errorf("unexpected error message: %q", instB.ErrMsg)
	}
}
