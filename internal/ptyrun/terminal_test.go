package ptyrun

import (
	"testing"
	"time"
)

func TestSpawn_WaitReturnsExitCode(t *testing.T) {
	term, err := Spawn("exit 3", "", nil, Size{Cols: 80, Rows: 24}, 0)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer term.Kill()

	code, err := term.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if code != 3 {
		t.Errorf("expected exit code 3, got %d", code)
	}
}

func TestSpawn_DirtyFlagSetOnOutput(t *testing.T) {
	term, err := Spawn("echo hello", "", nil, Size{Cols: 80, Rows: 24}, 0)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer term.Kill()

	deadline := time.Now().Add(2 * time.Second)
	for !term.IsDirty() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !term.IsDirty() {
		t.Fatal("expected dirty flag to be set after output")
	}
	term.ClearDirty()
	if term.IsDirty() {
		t.Error("expected dirty flag to be cleared")
	}
}

func TestSpawn_EchoSetsDirty(t *testing.T) {
	term, err := Spawn("sleep 1", "", nil, Size{Cols: 80, Rows: 24}, 0)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer term.Kill()

	term.ClearDirty()
	if err := term.Echo([]byte("hello\n")); err != nil {
		t.Fatalf("Echo: %v", err)
	}
	deadline := time.Now().Add(1 * time.Second)
	for !term.IsDirty() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !term.IsDirty() {
		t.Error("expected dirty flag to be set after Echo")
	}
}
