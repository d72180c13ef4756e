// Package check implements the headless check engine: select, expand
// dependencies, topologically sort, and run sequentially, reporting
// pass/fail/skip (spec.md §4.6).
package check

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"golang.org/x/term"

	"github.com/fnug-dev/fnug/internal/config"
	"github.com/fnug-dev/fnug/internal/selectors"
	"github.com/fnug-dev/fnug/internal/style"
)

// Result carries state for an interactive TUI handoff after a headless
// run (spec.md §4.6).
type Result struct {
	ExitCode   int
	SelectedID map[string]bool
	FailedID   map[string]bool
}

// CommandResult is the outcome of executing a single command with
// captured output. Shared with internal/mcpserver, whose tools need
// the same stdout/stderr/exit-code/duration shape as the check engine.
type CommandResult struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// ExpandDependencies returns selected plus every command transitively
// reachable via depends_on, preserving allCommands' order.
func ExpandDependencies(selected, allCommands []*config.Command) []*config.Command {
	byID := make(map[string]*config.Command, len(allCommands))
	for _, c := range allCommands {
		byID[c.ID] = c
	}

	selectedIDs := make(map[string]bool, len(selected))
	var queue []string
	for _, c := range selected {
		selectedIDs[c.ID] = true
		queue = append(queue, c.ID)
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		cmd, ok := byID[id]
		if !ok {
			continue
		}
		for _, dep := range cmd.DependsOn {
			if !selectedIDs[dep] {
				selectedIDs[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	var out []*config.Command
	for _, c := range allCommands {
		if selectedIDs[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// TopoSort orders commands via Kahn's algorithm, seeded in input order
// for stable tie-breaking, counting only in-set dependency edges
// (spec.md §4.6, §5).
func TopoSort(commands []*config.Command) []*config.Command {
	ids := make(map[string]bool, len(commands))
	for _, c := range commands {
		ids[c.ID] = true
	}

	inDegree := make(map[string]int, len(commands))
	dependents := make(map[string][]string)
	byID := make(map[string]*config.Command, len(commands))
	for _, c := range commands {
		byID[c.ID] = c
		deg := 0
		for _, dep := range c.DependsOn {
			if ids[dep] {
				deg++
				dependents[dep] = append(dependents[dep], c.ID)
			}
		}
		inDegree[c.ID] = deg
	}

	var queue []string
	for _, c := range commands {
		if inDegree[c.ID] == 0 {
			queue = append(queue, c.ID)
		}
	}

	result := make([]*config.Command, 0, len(commands))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, byID[id])
		for _, depID := range dependents[id] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}
	return result
}

// ExecuteCommand runs cmd with output captured rather than passed
// through, used by mute_success mode and by the MCP tool server.
func ExecuteCommand(cmd *config.Command) CommandResult {
	start := time.Now()
	c := exec.Command("sh", "-c", cmd.Cmd)
	c.Dir = cmd.Cwd
	c.Env = commandEnv(cmd)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	err := c.Run()
	duration := time.Since(start)

	if err == nil {
		return CommandResult{Success: true, ExitCode: 0, Stdout: stdout.String(), Stderr: stderr.String(), Duration: duration}
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return CommandResult{Success: false, ExitCode: exitErr.ExitCode(), Stdout: stdout.String(), Stderr: stderr.String(), Duration: duration}
	}
	return CommandResult{Success: false, ExitCode: -1, Stderr: err.Error(), Duration: duration}
}

func runPassthrough(cmd *config.Command) (bool, time.Duration) {
	start := time.Now()
	c := exec.Command("sh", "-c", cmd.Cmd)
	c.Dir = cmd.Cwd
	c.Env = commandEnv(cmd)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	c.Stdin = os.Stdin
	err := c.Run()
	return err == nil, time.Since(start)
}

func commandEnv(cmd *config.Command) []string {
	env := os.Environ()
	for k, v := range cmd.Env {
		env = append(env, k+"="+v)
	}
	return append(env, "TERM=xterm-256color")
}

// Options configures a Run call.
type Options struct {
	FailFast    bool
	MuteSuccess bool
	Stderr      io.Writer
}

// Run runs the always+git selection, expands dependencies, topo-sorts,
// and executes sequentially (spec.md §4.6, §8 scenarios S1-S3).
func Run(root *config.Group, pipeline *selectors.Pipeline, opts Options) (*Result, error) {
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	colorOn := false
	if f, ok := opts.Stderr.(*os.File); ok {
		colorOn = term.IsTerminal(int(f.Fd()))
	}
	if colorOn {
		style.ApplyPalette(style.Palettes["default"])
	}

	allCommands := root.AllCommands()
	selected, err := pipeline.Select(allCommands)
	if err != nil {
		return nil, err
	}

	if len(selected) == 0 {
		fmt.Fprintln(opts.Stderr, style.Dim.Render("No commands selected."))
		return &Result{ExitCode: 0, SelectedID: map[string]bool{}, FailedID: map[string]bool{}}, nil
	}

	toRun := ExpandDependencies(selected, allCommands)
	selectedIDs := make(map[string]bool, len(toRun))
	for _, c := range toRun {
		selectedIDs[c.ID] = true
	}
	ordered := TopoSort(toRun)

	total := len(ordered)
	totalStart := time.Now()
	passed, skipped := 0, 0
	failedIDs := make(map[string]bool)

	for i, cmd := range ordered {
		idx := i + 1
		prefix := fmt.Sprintf("[%d/%d]", idx, total)

		depFailed := false
		for _, dep := range cmd.DependsOn {
			if failedIDs[dep] {
				depFailed = true
				break
			}
		}
		if depFailed {
			fmt.Fprintf(opts.Stderr, "%s %s %s\n", style.Dim.Render(prefix), cmd.Name, style.Warning.Render("SKIP (dependency failed)"))
			failedIDs[cmd.ID] = true
			skipped++
			continue
		}

		fmt.Fprintf(opts.Stderr, "%s %s ", style.Bold.Render(prefix), cmd.Name)

		var success bool
		var duration time.Duration
		if opts.MuteSuccess {
			result := ExecuteCommand(cmd)
			success, duration = result.Success, result.Duration
			if success {
				fmt.Fprintf(opts.Stderr, "%s %s\n", style.Success.Render("PASS"), style.Dim.Render(formatDuration(duration)))
			} else {
				fmt.Fprintf(opts.Stderr, "%s %s\n", style.Failure.Render("FAIL"), style.Dim.Render(formatDuration(duration)))
				opts.Stderr.Write([]byte(result.Stdout))
				opts.Stderr.Write([]byte(result.Stderr))
			}
		} else {
			success, duration = runPassthrough(cmd)
			if success {
				fmt.Fprintf(opts.Stderr, "%s %s\n", style.Success.Render("PASS"), style.Dim.Render(formatDuration(duration)))
			} else {
				fmt.Fprintf(opts.Stderr, "%s %s\n", style.Failure.Render("FAIL"), style.Dim.Render(formatDuration(duration)))
			}
		}

		if success {
			passed++
		} else {
			failedIDs[cmd.ID] = true
			if opts.FailFast {
				fmt.Fprintln(opts.Stderr)
				printSummary(opts.Stderr, passed, len(failedIDs), skipped, total, time.Since(totalStart))
				return &Result{ExitCode: 1, SelectedID: selectedIDs, FailedID: failedIDs}, nil
			}
		}
	}

	fmt.Fprintln(opts.Stderr)
	printSummary(opts.Stderr, passed, len(failedIDs), skipped, total, time.Since(totalStart))

	exitCode := 0
	if len(failedIDs) > 0 {
		exitCode = 1
	}
	return &Result{ExitCode: exitCode, SelectedID: selectedIDs, FailedID: failedIDs}, nil
}

func printSummary(w io.Writer, passed, failed, skipped, total int, elapsed time.Duration) {
	var parts []string
	if passed > 0 {
		parts = append(parts, style.Success.Render(fmt.Sprintf("%d passed", passed)))
	}
	if failed > 0 {
		parts = append(parts, style.Failure.Render(fmt.Sprintf("%d failed", failed)))
	}
	if skipped > 0 {
		parts = append(parts, style.Warning.Render(fmt.Sprintf("%d skipped", skipped)))
	}
	joined := ""
	for i, p := range parts {
		if i > 0 {
			joined += style.Dim.Render(", ")
		}
		joined += p
	}
	fmt.Fprintf(w, "%s %s %s\n", style.Bold.Render(fmt.Sprintf("%d commands:", total)), joined, style.Dim.Render(fmt.Sprintf("(%s)", formatDuration(elapsed))))
}

func formatDuration(d time.Duration) string {
	totalSecs := int(d.Seconds())
	millis := d.Milliseconds() % 1000
	tenths := millis / 100
	if totalSecs < 60 {
		return fmt.Sprintf("%d.%ds", totalSecs, tenths)
	}
	mins := totalSecs / 60
	secs := totalSecs % 60
	return fmt.Sprintf("%dm %d.%ds", mins, secs, tenths)
}
