// Package mcpserver exposes the configured command tree to MCP
// clients (editors, coding agents) as a small fixed set of tools:
// list_lints, run_lints, run_lint, run_all (spec.md §4.8).
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/fnug-dev/fnug/internal/check"
	"github.com/fnug-dev/fnug/internal/config"
	fnuggit "github.com/fnug-dev/fnug/internal/git"
	"github.com/fnug-dev/fnug/internal/selectors"
)

const instructions = `fnug is a command runner that knows which lints, tests, and checks to run ` +
	`based on git changes. Use this server to verify code correctness after edits. ` +
	`Recommended workflow: (1) call run_lints after making code changes to check everything ` +
	`relevant, (2) if a specific check fails, fix the issue and re-run just that check with ` +
	`run_lint, (3) use list_lints to explore available checks or understand what would run, ` +
	`(4) use run_all for a full sweep before creating a PR or after large refactors. Always ` +
	`prefer these tools over running shell commands directly — they automatically select the ` +
	`right checks for the files you changed and handle dependency ordering.`

// Server wraps a compiled command tree and a selection pipeline for
// MCP tool dispatch.
type Server struct {
	root     *config.Group
	pipeline *selectors.Pipeline
}

// New builds a Server over an already-loaded, inherited command tree.
func New(root *config.Group) *Server {
	return &Server{root: root, pipeline: selectors.NewPipeline(fnuggit.NewScanner())}
}

// ServeStdio registers every tool and serves the MCP protocol over
// stdin/stdout until ctx is cancelled.
func (srv *Server) ServeStdio(ctx context.Context) error {
	mcpServer := server.NewMCPServer(
		"fnug",
		"1.0.0",
		server.WithInstructions(instructions),
	)
	srv.register(mcpServer)

	stdioSrv := server.NewStdioServer(mcpServer)
	return stdioSrv.Listen(ctx, os.Stdin, os.Stdout)
}

func (srv *Server) register(s *server.MCPServer) {
	s.AddTool(
		mcp.NewTool("list_lints",
			mcp.WithDescription("List all configured lint/test commands in this project. Shows which "+
				"commands are currently auto-selected based on git changes. Call this first to "+
				"understand what checks are available before running them. Each result includes the "+
				"command's id, name, shell command, working directory, auto-selection rules, "+
				"dependencies, group, and whether it is currently selected by git changes. "+
				"Use filters to narrow results."),
			mcp.WithString("group", mcp.Description("Filter by group name (case-insensitive substring match)")),
			mcp.WithString("auto_type", mcp.Description("Filter by auto-selection type: git, watch, always, or none")),
			mcp.WithString("name", mcp.Description("Filter by command name or id (case-insensitive substring match)")),
		),
		srv.listLints,
	)

	s.AddTool(
		mcp.NewTool("run_lints",
			mcp.WithDescription("Run all lint/test commands that are relevant to the current git "+
				"changes. This is the primary tool for verifying code correctness — call it after "+
				"making edits, before committing, or to validate a fix. Commands are auto-selected "+
				"based on which files were modified in git. Dependencies between commands are "+
				"resolved automatically (e.g. build before test). Returns per-command results with "+
				"pass/fail status, exit codes, stdout, stderr, and timing."),
			mcp.WithBoolean("fail_fast", mcp.Description("Stop on first failure instead of running all commands")),
		),
		srv.runLints,
	)

	s.AddTool(
		mcp.NewTool("run_lint",
			mcp.WithDescription("Run a single lint/test command by name or id. Use this to re-run a "+
				"specific failing check after fixing it, or to run a check that wasn't auto-selected. "+
				"Use list_lints to discover available command names and ids. Dependencies are resolved "+
				"and run first automatically. Returns per-command results with pass/fail status, exit "+
				"codes, stdout, stderr, and timing."),
			mcp.WithString("command", mcp.Required(), mcp.Description("The command name or id to run")),
		),
		srv.runLint,
	)

	s.AddTool(
		mcp.NewTool("run_all",
			mcp.WithDescription("Run every configured lint/test command regardless of git changes. Use "+
				"this for a full sweep before creating a pull request, after large refactors, or when "+
				"you want to ensure nothing is broken across the entire project. Dependencies are "+
				"resolved automatically. Returns per-command results with pass/fail status, exit "+
				"codes, stdout, stderr, and timing."),
			mcp.WithBoolean("fail_fast", mcp.Description("Stop on first failure instead of running all commands")),
		),
		srv.runAll,
	)
}

type lintInfo struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Cmd        string   `json:"cmd"`
	Cwd        string   `json:"cwd"`
	AutoRules  autoInfo `json:"auto_rules"`
	DependsOn  []string `json:"depends_on"`
	Group      string   `json:"group"`
	Selected   bool     `json:"selected"`
}

type autoInfo struct {
	Git    *bool `json:"git"`
	Watch  *bool `json:"watch"`
	Always *bool `json:"always"`
}

// flattenCommands walks the tree collecting (command, group-path) pairs,
// matching the original's flatten_commands.
func flattenCommands(g *config.Group, path string) []struct {
	cmd       *config.Command
	groupPath string
} {
	var out []struct {
		cmd       *config.Command
		groupPath string
	}
	for _, c := range g.Commands {
		out = append(out, struct {
			cmd       *config.Command
			groupPath string
		}{c, path})
	}
	for _, child := range g.Children {
		childPath := child.Name
		if path != "" {
			childPath = path + " > " + child.Name
		}
		out = append(out, flattenCommands(child, childPath)...)
	}
	return out
}

func (srv *Server) listLints(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	groupFilter, _ := args["group"].(string)
	autoTypeFilter, _ := args["auto_type"].(string)
	nameFilter, _ := args["name"].(string)

	allCommands := srv.root.AllCommands()
	selected, err := srv.pipeline.Select(allCommands)
	if err != nil {
		return nil, err
	}
	selectedIDs := make(map[string]bool, len(selected))
	for _, c := range selected {
		selectedIDs[c.ID] = true
	}

	flat := flattenCommands(srv.root, srv.root.Name)

	var infos []lintInfo
	for _, pair := range flat {
		c := pair.cmd
		if groupFilter != "" && !strings.Contains(strings.ToLower(pair.groupPath), strings.ToLower(groupFilter)) {
			continue
		}
		if nameFilter != "" {
			nl := strings.ToLower(nameFilter)
			if !strings.Contains(strings.ToLower(c.Name), nl) && !strings.Contains(strings.ToLower(c.ID), nl) {
				continue
			}
		}
		if autoTypeFilter != "" && !matchesAutoType(c.Auto, autoTypeFilter) {
			continue
		}
		infos = append(infos, lintInfo{
			ID:   c.ID,
			Name: c.Name,
			Cmd:  c.Cmd,
			Cwd:  c.Cwd,
			AutoRules: autoInfo{
				Git:    c.Auto.Git,
				Watch:  c.Auto.Watch,
				Always: c.Auto.Always,
			},
			DependsOn: c.DependsOn,
			Group:     pair.groupPath,
			Selected:  selectedIDs[c.ID],
		})
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func matchesAutoType(a config.Auto, autoType string) bool {
	switch strings.ToLower(autoType) {
	case "git":
		return a.IsGit()
	case "watch":
		return a.IsWatch()
	case "always":
		return a.IsAlways()
	case "none":
		return !a.IsGit() && !a.IsWatch() && !a.IsAlways()
	default:
		return true
	}
}

type runResult struct {
	Total      int               `json:"total"`
	Passed     int               `json:"passed"`
	Failed     int               `json:"failed"`
	Skipped    int               `json:"skipped"`
	DurationMs int64             `json:"duration_ms"`
	Commands   []commandRunInfo  `json:"commands"`
}

type commandRunInfo struct {
	Name       string `json:"name"`
	ID         string `json:"id"`
	Status     string `json:"status"`
	ExitCode   *int   `json:"exit_code"`
	DurationMs int64  `json:"duration_ms"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
}

type selection struct {
	kind   string // "git", "single", "all"
	target string
}

func (srv *Server) runLints(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	failFast, _ := req.GetArguments()["fail_fast"].(bool)
	return srv.runAndSerialize(selection{kind: "git"}, failFast)
}

func (srv *Server) runAll(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	failFast, _ := req.GetArguments()["fail_fast"].(bool)
	return srv.runAndSerialize(selection{kind: "all"}, failFast)
}

func (srv *Server) runLint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, _ := req.GetArguments()["command"].(string)
	if target == "" {
		return nil, fmt.Errorf("command is required")
	}
	return srv.runAndSerialize(selection{kind: "single", target: target}, false)
}

func (srv *Server) runAndSerialize(sel selection, failFast bool) (*mcp.CallToolResult, error) {
	result, err := srv.runCommands(sel, failFast)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (srv *Server) runCommands(sel selection, failFast bool) (*runResult, error) {
	allCommands := srv.root.AllCommands()

	var picked []*config.Command
	switch sel.kind {
	case "single":
		var found *config.Command
		for _, c := range allCommands {
			if c.ID == sel.target || strings.EqualFold(c.Name, sel.target) {
				found = c
				break
			}
		}
		if found == nil {
			return nil, fmt.Errorf("command not found: %s", sel.target)
		}
		picked = []*config.Command{found}
	case "all":
		picked = allCommands
	default: // "git"
		gitSelected, err := srv.pipeline.Select(allCommands)
		if err != nil {
			return nil, err
		}
		if len(gitSelected) == 0 {
			return &runResult{}, nil
		}
		picked = gitSelected
	}

	toRun := check.ExpandDependencies(picked, allCommands)
	ordered := check.TopoSort(toRun)

	start := time.Now()
	var passed, failedCount, skipped int
	failedIDs := make(map[string]bool)
	var cmdResults []commandRunInfo

	for _, cmd := range ordered {
		depFailed := false
		for _, dep := range cmd.DependsOn {
			if failedIDs[dep] {
				depFailed = true
				break
			}
		}
		if depFailed {
			failedIDs[cmd.ID] = true
			skipped++
			cmdResults = append(cmdResults, commandRunInfo{
				Name: cmd.Name, ID: cmd.ID, Status: "skipped",
				Stderr: "Skipped: dependency failed",
			})
			continue
		}

		res := check.ExecuteCommand(cmd)
		status := "passed"
		if !res.Success {
			status = "failed"
			failedCount++
			failedIDs[cmd.ID] = true
		} else {
			passed++
		}
		code := res.ExitCode
		cmdResults = append(cmdResults, commandRunInfo{
			Name: cmd.Name, ID: cmd.ID, Status: status,
			ExitCode: &code, DurationMs: res.Duration.Milliseconds(),
			Stdout: res.Stdout, Stderr: res.Stderr,
		})

		if !res.Success && failFast {
			break
		}
	}

	return &runResult{
		Total:      len(ordered),
		Passed:     passed,
		Failed:     failedCount,
		Skipped:    skipped,
		DurationMs: time.Since(start).Milliseconds(),
		Commands:   cmdResults,
	}, nil
}
