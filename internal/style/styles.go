// Package style provides consistent terminal styling using Lipgloss.
package style

import "github.com/charmbracelet/lipgloss"

// Palette is the set of named colors a theme assigns. Themes loaded
// from preferences (internal/prefs) select one of the built-in
// palettes below.
type Palette struct {
	Success lipgloss.Color
	Warning lipgloss.Color
	Failure lipgloss.Color
	Dim     lipgloss.Color
	Accent  lipgloss.Color
}

var (
	defaultPalette = Palette{
		Success: lipgloss.Color("42"),
		Warning: lipgloss.Color("214"),
		Failure: lipgloss.Color("196"),
		Dim:     lipgloss.Color("240"),
		Accent:  lipgloss.Color("33"),
	}

	// Bold renders text in bold with no color.
	Bold lipgloss.Style
	// Dim renders text de-emphasized.
	Dim lipgloss.Style
	// Success renders PASS-style text.
	Success lipgloss.Style
	// Warning renders SKIP-style text.
	Warning lipgloss.Style
	// Failure renders FAIL-style text.
	Failure lipgloss.Style
	// Accent marks running commands in the TUI's command list.
	Accent lipgloss.Style
)

func init() {
	ApplyPalette(defaultPalette)
}

// ApplyPalette rebuilds the package-level styles from a palette. Called
// at startup after preferences are loaded (internal/prefs); check.Run
// also applies the "default" palette when its output is a terminal.
func ApplyPalette(p Palette) {
	Bold = lipgloss.NewStyle().Bold(true)
	Dim = lipgloss.NewStyle().Foreground(p.Dim)
	Success = lipgloss.NewStyle().Foreground(p.Success).Bold(true)
	Warning = lipgloss.NewStyle().Foreground(p.Warning).Bold(true)
	Failure = lipgloss.NewStyle().Foreground(p.Failure).Bold(true)
	Accent = lipgloss.NewStyle().Foreground(p.Accent).Bold(true)
}

// Palettes maps theme names (as configured in ~/.config/fnug/config.toml)
// to their color set. "default" is always present.
var Palettes = map[string]Palette{
	"default": defaultPalette,
	"mono": {
		Success: lipgloss.Color("255"),
		Warning: lipgloss.Color("250"),
		Failure: lipgloss.Color("255"),
		Dim:     lipgloss.Color("240"),
		Accent:  lipgloss.Color("255"),
	},
}
