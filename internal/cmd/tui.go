package cmd

import (
	"errors"

	"github.com/apex/log"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	fnuggit "github.com/fnug-dev/fnug/internal/git"
	"github.com/fnug-dev/fnug/internal/ptyrun"
	"github.com/fnug-dev/fnug/internal/scheduler"
	"github.com/fnug-dev/fnug/internal/selectors"
	"github.com/fnug-dev/fnug/internal/tui"
	"github.com/fnug-dev/fnug/internal/watcher"
)

// watcherEventBuffer matches the scheduler's own event channel capacity.
const watcherEventBuffer = 256

// defaultTerminalSize seeds every spawned PTY before the first
// tea.WindowSizeMsg arrives.
var defaultTerminalSize = ptyrun.Size{Cols: 80, Rows: 24}

// runTUI is rootCmd's default action: it builds a scheduler over the
// loaded command tree, pre-selects the always/git-matched commands,
// and hands control to the bubbletea program (spec.md §4.12).
func runTUI(cmd *cobra.Command, args []string) error {
	sched := scheduler.New(loadedRoot, defaultTerminalSize)

	pipeline := selectors.NewPipeline(fnuggit.NewScanner())
	selected, err := pipeline.Select(loadedRoot.AllCommands())
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(selected))
	for _, c := range selected {
		ids = append(ids, c.ID)
	}
	if err := sched.RunSelected(ids); err != nil {
		return err
	}

	w, err := watcher.New(loadedRoot, watcherEventBuffer)
	switch {
	case err == nil:
		go w.Run()
		go forwardWatcherEvents(w, sched)
		defer w.Close()
	case errors.Is(err, watcher.ErrNoWatchableCommands):
		// no auto.watch commands configured; nothing to forward.
	default:
		return err
	}

	model := tui.New(sched, loadedRoot, loggerHandle)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

// forwardWatcherEvents relays debounced, matched command batches from
// the filesystem watcher onto the scheduler's own event channel, so
// HandleEvent's EventWatcherTriggered branch is the only place that
// restarts commands in response to file changes (spec.md §4.7).
func forwardWatcherEvents(w *watcher.Watcher, sched *scheduler.Scheduler) {
	for cmds := range w.Triggered {
		ids := make([]string, 0, len(cmds))
		for _, c := range cmds {
			ids = append(ids, c.ID)
		}
		select {
		case sched.Events <- scheduler.Event{Kind: scheduler.EventWatcherTriggered, Commands: ids}:
		default:
			log.Warnf("scheduler event channel full, dropping watcher trigger for %d commands", len(ids))
		}
	}
}
