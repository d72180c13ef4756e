package hookinstall

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

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

func TestRun_InstallsExecutableHook(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)

	hookPath, err := Run(dir, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if hookPath != filepath.Join(dir, ".git", "hooks", "pre-commit") {
		t.Errorf("unexpected hook path: %s", hookPath)
	}
	info, err := os.Stat(hookPath)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode()&0o111 == 0 {
		t.Errorf("expected hook to be executable, mode=%v", info.Mode())
	}
}

func TestRun_RefusesOverwriteWithoutForce(t *testing.T) {
	dir := t.TempDir()
	initRepo(t, dir)

	if _, err := Run(dir, false); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if _, err := Run(dir, false); err == nil {
		t.Fatal("expected error on second install without --force")
	}
	if _, err := Run(dir, true); err != nil {
		t.Fatalf("Run with force: %v", err)
	}
}

func TestRun_NoRepoErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Run(dir, false); err != ErrNoRepo {
		t.Fatalf("expected ErrNoRepo, got %v", err)
	}
}
