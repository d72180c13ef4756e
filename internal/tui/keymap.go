package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap is the fixed keybinding set from SPEC_FULL.md §4.12.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Rerun  key.Binding
	Quit   key.Binding
	Help   key.Binding
}

// DefaultKeyMap matches SPEC_FULL.md §4.12: arrows/jk navigate, enter
// set-active+start, r re-run, q/ctrl-c quit+teardown.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "set active, start"),
		),
		Rerun: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "re-run"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}
