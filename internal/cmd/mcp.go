package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fnug-dev/fnug/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve list_lints/run_lints/run_lint/run_all as an MCP stdio server",
	RunE:  runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	srv := mcpserver.New(loadedRoot)
	return srv.ServeStdio(context.Background())
}
