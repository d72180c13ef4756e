// Package prefs loads fnug's optional user preferences file, which
// sets defaults for flags and the active theme (SPEC_FULL.md §4.10).
// Distinct from internal/config: preferences are user-global and
// never affect command selection or inheritance.
package prefs

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/fnug-dev/fnug/internal/util"
)

// Defaults holds default CLI flag values a user can pin in preferences.
type Defaults struct {
	FailFast    bool `toml:"fail_fast"`
	MuteSuccess bool `toml:"mute_success"`
}

// Theme selects a named palette from internal/style.
type Theme struct {
	Name string `toml:"name"`
}

// Preferences is the root of ~/.config/fnug/config.toml.
type Preferences struct {
	Theme    Theme    `toml:"theme"`
	Defaults Defaults `toml:"defaults"`
}

// DefaultPath returns the conventional preferences file location.
func DefaultPath() string {
	return filepath.Join(util.ExpandHome("~/.config/fnug"), "config.toml")
}

// Load reads preferences from path. A missing file is not an error —
// it returns the default Preferences (theme "default", flags off).
func Load(path string) (Preferences, error) {
	var p Preferences
	p.Theme.Name = "default"

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, err
	}

	if _, err := toml.Decode(string(data), &p); err != nil {
		return Preferences{Theme: Theme{Name: "default"}}, err
	}
	if p.Theme.Name == "" {
		p.Theme.Name = "default"
	}
	return p, nil
}
