package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fnug-dev/fnug/internal/hookinstall"
	"github.com/fnug-dev/fnug/internal/style"
)

var initHooksForce bool

var initHooksCmd = &cobra.Command{
	Use:   "init-hooks",
	Short: "Install a git pre-commit hook that runs \"fnug check\"",
	RunE:  runInitHooks,
}

func init() {
	rootCmd.AddCommand(initHooksCmd)
	initHooksCmd.Flags().BoolVar(&initHooksForce, "force", false, "Overwrite an existing pre-commit hook")
}

func runInitHooks(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getwd: %w", err)
	}

	hookPath, err := hookinstall.Run(cwd, initHooksForce)
	if err != nil {
		var exists *hookinstall.ErrHookExists
		if errors.As(err, &exists) {
			return err
		}
		if errors.Is(err, hookinstall.ErrNoRepo) {
			return fmt.Errorf("not in a git repository: %w", err)
		}
		return err
	}

	fmt.Printf("%s Installed pre-commit hook at %s\n", style.Success.Render("✓"), hookPath)
	return nil
}
