package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fnug-dev/fnug/internal/check"
	fnuggit "github.com/fnug-dev/fnug/internal/git"
	"github.com/fnug-dev/fnug/internal/scheduler"
	"github.com/fnug-dev/fnug/internal/selectors"
	"github.com/fnug-dev/fnug/internal/tui"
)

var (
	checkFailFast    bool
	checkNoTUI       bool
	checkMuteSuccess bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the headless check engine over selected commands",
	Long: `check selects commands via the always + git-diff pipeline, expands their
dependency closure, topologically sorts them, and runs them sequentially,
reporting PASS/FAIL/SKIP. Intended for CI and for the pre-commit hook
installed by "fnug init-hooks". On failure in an interactive terminal,
offers to open the TUI pre-loaded with the failed commands (suppress
with --no-tui).`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkFailFast, "fail-fast", false, "Stop at the first failing command")
	checkCmd.Flags().BoolVar(&checkNoTUI, "no-tui", false, "Never prompt to open the TUI on failure")
	checkCmd.Flags().BoolVar(&checkMuteSuccess, "mute-success", false, "Only print output for failing commands")
}

func runCheck(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("fail-fast") {
		checkFailFast = loadedPrefs.Defaults.FailFast
	}
	if !cmd.Flags().Changed("mute-success") {
		checkMuteSuccess = loadedPrefs.Defaults.MuteSuccess
	}

	pipeline := selectors.NewPipeline(fnuggit.NewScanner())
	result, err := check.Run(loadedRoot, pipeline, check.Options{
		FailFast:    checkFailFast,
		MuteSuccess: checkMuteSuccess,
		Stderr:      os.Stderr,
	})
	if err != nil {
		return err
	}
	if result.ExitCode == 0 {
		return nil
	}

	if !checkNoTUI && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd())) {
		fmt.Fprint(os.Stderr, "Open TUI to investigate? [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.EqualFold(strings.TrimSpace(answer), "y") {
			return openTUIOnFailure(result)
		}
	}

	os.Exit(result.ExitCode)
	return nil
}

// openTUIOnFailure launches the interactive TUI with exactly the
// failed commands from a headless check run pre-selected and started,
// so the user sees PTY output immediately (spec.md §6).
func openTUIOnFailure(result *check.Result) error {
	sched := scheduler.New(loadedRoot, defaultTerminalSize)

	failedIDs := make([]string, 0, len(result.FailedID))
	for id := range result.FailedID {
		failedIDs = append(failedIDs, id)
	}
	if err := sched.RunSelected(failedIDs); err != nil {
		return err
	}

	model := tui.New(sched, loadedRoot, loggerHandle)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
