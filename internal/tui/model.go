// Package tui is a thin bubbletea consumer of the scheduler: it lists
// commands with a status glyph each, lets the user navigate and
// start/re-run them, shows the active command's error message and a
// log pane (SPEC_FULL.md §4.12). It does not render the commands' PTY
// output.
package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fnug-dev/fnug/internal/config"
	"github.com/fnug-dev/fnug/internal/fnuglog"
	"github.com/fnug-dev/fnug/internal/scheduler"
	"github.com/fnug-dev/fnug/internal/style"
)

// logPaneLines bounds how many of the most recent log entries are
// rendered under the command list (spec.md §4.12).
const logPaneLines = 8

// logChanCapacity matches the non-blocking-send contract documented on
// fnuglog.Handler.ConnectEventSender: a full channel just drops the
// newest entry rather than stalling the logger.
const logChanCapacity = 64

// Model is the root bubbletea model. All fields read by View() are
// guarded by mu so Update (driven by the tea runtime goroutine) and
// View render consistently.
type Model struct {
	sched    *scheduler.Scheduler
	commands []*config.Command

	cursor   int
	activeID string

	logger *fnuglog.Handler
	logCh  chan fnuglog.Entry
	logs   []fnuglog.Entry

	keys     KeyMap
	help     help.Model
	showHelp bool
	width    int
	height   int

	mu sync.RWMutex
}

// New builds a Model over every command in root, in tree order. logger
// may be nil (the log pane renders empty), but runTUI always supplies
// the process-wide handler so the pane reflects every log line emitted
// since startup, plus everything logged while the TUI is open.
func New(sched *scheduler.Scheduler, root *config.Group, logger *fnuglog.Handler) *Model {
	m := &Model{
		sched:    sched,
		commands: root.AllCommands(),
		logger:   logger,
		keys:     DefaultKeyMap(),
		help:     help.New(),
	}
	if logger != nil {
		m.logs = logger.Snapshot()
		m.logCh = make(chan fnuglog.Entry, logChanCapacity)
		logger.ConnectEventSender(m.logCh)
	}
	return m
}

// Init starts listening for scheduler events and, if a logger is
// connected, for new log entries.
func (m *Model) Init() tea.Cmd {
	if m.logCh == nil {
		return waitForEvent(m.sched)
	}
	return tea.Batch(waitForEvent(m.sched), waitForLog(m.logCh))
}

// schedulerEventMsg wraps a scheduler.Event for tea.Update dispatch.
type schedulerEventMsg scheduler.Event

func waitForEvent(s *scheduler.Scheduler) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-s.Events
		if !ok {
			return nil
		}
		return schedulerEventMsg(ev)
	}
}

// logEntryMsg wraps a fnuglog.Entry for tea.Update dispatch.
type logEntryMsg fnuglog.Entry

func waitForLog(ch chan fnuglog.Entry) tea.Cmd {
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return nil
		}
		return logEntryMsg(entry)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.mu.Lock()
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.mu.Unlock()
		return m, nil

	case schedulerEventMsg:
		m.sched.HandleEvent(scheduler.Event(msg))
		return m, waitForEvent(m.sched)

	case logEntryMsg:
		m.mu.Lock()
		m.logs = append(m.logs, fnuglog.Entry(msg))
		if len(m.logs) > fnuglog.DefaultRingSize {
			m.logs = m.logs[len(m.logs)-fnuglog.DefaultRingSize:]
		}
		m.mu.Unlock()
		return m, waitForLog(m.logCh)

	case tea.KeyMsg:
		switch {
		case msg.String() == "q" || msg.String() == "ctrl+c":
			m.sched.Teardown()
			return m, tea.Quit

		case msg.String() == "?":
			m.mu.Lock()
			m.showHelp = !m.showHelp
			m.mu.Unlock()
			return m, nil

		case msg.String() == "up" || msg.String() == "k":
			m.mu.Lock()
			if m.cursor > 0 {
				m.cursor--
			}
			m.mu.Unlock()
			return m, nil

		case msg.String() == "down" || msg.String() == "j":
			m.mu.Lock()
			if m.cursor < len(m.commands)-1 {
				m.cursor++
			}
			m.mu.Unlock()
			return m, nil

		case msg.String() == "enter":
			m.mu.Lock()
			cmd := m.commands[m.cursor]
			m.activeID = cmd.ID
			m.mu.Unlock()
			m.sched.SetSelected(cmd.ID, true)
			_ = m.sched.Start(cmd.ID, true)
			return m, nil

		case msg.String() == "r":
			m.mu.RLock()
			active := m.activeID
			m.mu.RUnlock()
			if active != "" {
				m.sched.Clear(active)
				_ = m.sched.Start(active, true)
			}
			return m, nil
		}
	}
	return m, nil
}

func (m *Model) View() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder
	for i, c := range m.commands {
		marker := "  "
		if i == m.cursor {
			marker = "> "
		}
		status := "·"
		if inst, ok := m.sched.Instance(c.ID); ok {
			status = statusGlyph(inst.Status)
		}
		line := fmt.Sprintf("%s%s %s", marker, status, c.Name)
		if c.ID == m.activeID {
			line = style.Bold.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.activeID != "" {
		if inst, ok := m.sched.Instance(m.activeID); ok && inst.ErrMsg != "" {
			b.WriteString("\n")
			b.WriteString(style.Failure.Render(inst.ErrMsg))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(style.Dim.Render(strings.Repeat("─", 40)))
	b.WriteString("\n")
	start := 0
	if len(m.logs) > logPaneLines {
		start = len(m.logs) - logPaneLines
	}
	for _, entry := range m.logs[start:] {
		b.WriteString(style.Dim.Render(entry.Message))
		b.WriteString("\n")
	}

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{
			m.keys.Up, m.keys.Down, m.keys.Select, m.keys.Rerun, m.keys.Quit, m.keys.Help,
		}))
	}

	return b.String()
}

func statusGlyph(s scheduler.Status) string {
	switch s {
	case scheduler.StatusRunning:
		return style.Accent.Render("●")
	case scheduler.StatusSuccess:
		return style.Success.Render("✓")
	case scheduler.StatusFailure, scheduler.StatusError:
		return style.Failure.Render("✗")
	case scheduler.StatusWaitingForDeps:
		return style.Warning.Render("…")
	default:
		return style.Dim.Render("·")
	}
}
