package config

import "fmt"

// ConfigNotFoundError is returned when no .fnug.{json,yaml,yml} file is
// found walking up from the starting directory.
type ConfigNotFoundError struct {
	StartDir string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("no .fnug config file found above %s", e.StartDir)
}

// ParseError wraps a YAML/JSON decode failure, carrying the source path.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RegexError carries the offending pattern string when a regex in an
// auto.regex list fails to compile.
type RegexError struct {
	Pattern string
	Err     error
}

func (e *RegexError) Error() string {
	return fmt.Sprintf("invalid regex %q: %v", e.Pattern, e.Err)
}

func (e *RegexError) Unwrap() error { return e.Err }

// DuplicateIDError carries the identifier that appeared more than once
// across groups and commands in a single load.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate id %q", e.ID)
}

// ValidationError carries a human-readable validation failure message
// (non-blank name, non-blank shell string, unresolved/cyclic deps).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// DirectoryNotFoundError carries the path that failed to canonicalize
// and the dotted entry path (group/command names from the root) that
// produced it.
type DirectoryNotFoundError struct {
	EntryPath string
	Path      string
	Err       error
}

func (e *DirectoryNotFoundError) Error() string {
	return fmt.Sprintf("%s: directory not found: %s (%v)", e.EntryPath, e.Path, e.Err)
}

func (e *DirectoryNotFoundError) Unwrap() error { return e.Err }
