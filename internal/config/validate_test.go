package config

import "testing"

func TestValidate_DuplicateID(t *testing.T) {
	root := &Group{
		ID:   "dup",
		Name: "root",
		Commands: []*Command{
			{ID: "dup", Name: "c", Cmd: "true"},
		},
	}
	err := Validate(root)
	if err == nil {
		t.Fatal("expected an error")
	}
	dupErr, ok := err.(*DuplicateIDError)
	if !ok {
		t.Fatalf("expected DuplicateIDError, got %T", err)
	}
	if dupErr.ID != "dup" {
		t.Errorf("expected id 'dup', got %q", dupErr.ID)
	}
}

func TestValidate_BlankName(t *testing.T) {
	root := &Group{
		Name: "root",
		Commands: []*Command{
			{ID: "c", Name: "", Cmd: "true"},
		},
	}
	if _, ok := Validate(root).(*ValidationError); !ok {
		t.Fatalf("expected ValidationError")
	}
}

func TestValidate_DependencyCycle(t *testing.T) {
	root := &Group{
		Name: "root",
		Commands: []*Command{
			{ID: "a", Name: "a", Cmd: "true", DependsOn: []string{"b"}},
			{ID: "b", Name: "b", Cmd: "true", DependsOn: []string{"a"}},
		},
	}
	if _, ok := Validate(root).(*ValidationError); !ok {
		t.Fatalf("expected ValidationError for cycle")
	}
}

func TestValidate_UnknownDependency(t *testing.T) {
	root := &Group{
		Name: "root",
		Commands: []*Command{
			{ID: "a", Name: "a", Cmd: "true", DependsOn: []string{"ghost"}},
		},
	}
	if _, ok := Validate(root).(*ValidationError); !ok {
		t.Fatalf("expected ValidationError for unresolved dependency")
	}
}

func TestValidate_OK(t *testing.T) {
	root := &Group{
		Name: "root",
		Commands: []*Command{
			{ID: "a", Name: "a", Cmd: "true"},
			{ID: "b", Name: "b", Cmd: "true", DependsOn: []string{"a"}},
		},
	}
	if err := Validate(root); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
