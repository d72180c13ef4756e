// Package cmd wires fnug's cobra CLI surface: the default TUI, plus
// check, list, init-hooks, and mcp subcommands (spec.md §6).
package cmd

import (
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/fnug-dev/fnug/internal/config"
	"github.com/fnug-dev/fnug/internal/fnuglog"
	"github.com/fnug-dev/fnug/internal/prefs"
	"github.com/fnug-dev/fnug/internal/style"
)

var (
	configPath string
	logFile    string
	logLevel   string

	loadedRoot   *config.Group
	loadedWarns  []config.Warning
	loggerHandle *fnuglog.Handler
	loadedPrefs  prefs.Preferences
)

var rootCmd = &cobra.Command{
	Use:   "fnug",
	Short: "A command runner that knows which lints, tests, and checks to run",
	Long: `fnug selects and runs commands (lints, tests, builds) based on declarative
rules: always-on, git-diff-driven, or filesystem-watch-driven. Run with no
subcommand to open the interactive terminal UI.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to .fnug.yaml/.fnug.json (default: search upward from cwd)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Tee logs to this file in addition to the ring buffer")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

// Execute runs the root command and returns a process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// setup loads the configuration tree and installs the logger before
// any subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	handler, err := fnuglog.New(fnuglog.DefaultRingSize, logFile)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	loggerHandle = handler
	fnuglog.Init(handler, fnuglog.LevelFromString(logLevel))

	p, err := prefs.Load(prefs.DefaultPath())
	if err != nil {
		log.Warnf("loading preferences: %v", err)
	}
	loadedPrefs = p
	palette, ok := style.Palettes[p.Theme.Name]
	if !ok {
		palette = style.Palettes["default"]
	}
	style.ApplyPalette(palette)

	path := configPath
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getwd: %w", err)
		}
		found, err := config.FindConfig(cwd)
		if err != nil {
			return err
		}
		path = found
	}

	result, err := config.LoadFile(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	for _, w := range result.Warnings {
		log.Warnf("%s", w.Message)
	}
	loadedRoot = result.Root
	loadedWarns = result.Warnings
	return nil
}
