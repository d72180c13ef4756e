package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".fnug.yaml", `
fnug_version: "1.0.0"
name: root
commands:
  - name: hello
    cmd: "echo hi"
    auto:
      always: true
`)
	result, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(result.Root.Commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(result.Root.Commands))
	}
	if !result.Root.Commands[0].Auto.IsAlways() {
		t.Errorf("expected always=true")
	}
}

func TestLoadFile_JSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".fnug.json", `{
		"fnug_version": "1.0.0",
		"name": "root",
		"commands": [{"name": "hello", "cmd": "echo hi"}]
	}`)
	result, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if result.Root.Commands[0].Cmd != "echo hi" {
		t.Errorf("unexpected cmd: %s", result.Root.Commands[0].Cmd)
	}
}

func TestLoadFile_RegexErrorPreservesPattern(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".fnug.yaml", `
name: root
commands:
  - name: c
    cmd: "true"
    auto:
      regex: ["[invalid"]
`)
	_, err := LoadFile(path)
	if err == nil {
		t.Fatal("expected an error")
	}
	reErr, ok := err.(*RegexError)
	if !ok {
		t.Fatalf("expected RegexError, got %T: %v", err, err)
	}
	if reErr.Pattern != "[invalid" {
		t.Errorf("expected pattern preserved, got %q", reErr.Pattern)
	}
}

func TestLoadFile_DuplicateIDAcrossGroupAndCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".fnug.yaml", `
name: root
id: dup
commands:
  - name: c
    id: dup
    cmd: "true"
`)
	_, err := LoadFile(path)
	dupErr, ok := err.(*DuplicateIDError)
	if !ok {
		t.Fatalf("expected DuplicateIDError, got %T: %v", err, err)
	}
	if dupErr.ID != "dup" {
		t.Errorf("expected id 'dup', got %q", dupErr.ID)
	}
}

func TestFindConfig_WalksToRoot(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, ".fnug.yaml", "name: root\n")

	found, err := FindConfig(sub)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	want := filepath.Join(dir, ".fnug.yaml")
	if found != want {
		t.Errorf("expected %s, got %s", want, found)
	}
}

func TestFindConfig_NotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := FindConfig(dir)
	if _, ok := err.(*ConfigNotFoundError); !ok {
		t.Fatalf("expected ConfigNotFoundError, got %T: %v", err, err)
	}
}

func TestLoadFile_EmptyRootSelectionEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".fnug.yaml", "name: root\n")
	result, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(result.Root.AllCommands()) != 0 {
		t.Errorf("expected no commands")
	}
}
