// Package fnuglog sets up apex/log with a handler that keeps a bounded
// in-memory ring buffer (for the TUI's log pane) and optionally tees
// to a log file, per SPEC_FULL.md §4.9.
package fnuglog

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
)

// DefaultRingSize bounds the in-memory entry buffer.
const DefaultRingSize = 500

// Entry is a single formatted log line, retained in the ring buffer
// and optionally pushed to a connected event sender.
type Entry struct {
	Time    time.Time
	Level   log.Level
	Message string
}

// Handler implements log.Handler with a bounded ring buffer, an
// optional file sink, and a late-bound event-sender hook so the
// scheduler's event loop (spec.md §6) can surface log lines without
// this package importing it.
type Handler struct {
	mu      sync.Mutex
	ring    []Entry
	ringCap int
	head    int
	count   int

	file *os.File
	send chan<- Entry
}

// New builds a Handler with the given ring capacity (DefaultRingSize
// if size <= 0) and, if logFile is non-empty, a tee to that file.
func New(size int, logFile string) (*Handler, error) {
	if size <= 0 {
		size = DefaultRingSize
	}
	h := &Handler{ring: make([]Entry, size), ringCap: size}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		h.file = f
	}
	return h, nil
}

// Init installs h as the apex/log handler at the given level.
func Init(h *Handler, level log.Level) {
	log.SetHandler(h)
	log.SetLevel(level)
}

// LevelFromString maps a case-insensitive level name to an apex/log
// level, defaulting to InfoLevel for unrecognized input.
func LevelFromString(s string) log.Level {
	switch strings.ToLower(s) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// HandleLog implements log.Handler.
func (h *Handler) HandleLog(e *log.Entry) error {
	line := formatEntry(e)
	entry := Entry{Time: time.Now(), Level: e.Level, Message: line}

	h.mu.Lock()
	h.ring[h.head] = entry
	h.head = (h.head + 1) % h.ringCap
	if h.count < h.ringCap {
		h.count++
	}
	file := h.file
	sender := h.send
	h.mu.Unlock()

	if file != nil {
		fmt.Fprintln(file, line)
	}
	if sender != nil {
		select {
		case sender <- entry:
		default: // non-blocking; a slow/absent consumer never stalls logging
		}
	}
	return nil
}

func formatEntry(e *log.Entry) string {
	ts := time.Now().Format("2006-01-02 15:04:05")
	level := levelLetter(e.Level)
	fields := ""
	for k, v := range e.Fields {
		fields += fmt.Sprintf(" %s=%v", k, v)
	}
	return fmt.Sprintf("%s %s %s%s", ts, level, e.Message, fields)
}

func levelLetter(l log.Level) string {
	switch l {
	case log.DebugLevel:
		return "D"
	case log.InfoLevel:
		return "I"
	case log.WarnLevel:
		return "W"
	case log.ErrorLevel:
		return "E"
	case log.FatalLevel:
		return "F"
	default:
		return "?"
	}
}

// ConnectEventSender late-binds a channel that every subsequent log
// entry is pushed to, non-blocking, so a slow consumer never stalls
// logging (SPEC_FULL.md §4.9).
func (h *Handler) ConnectEventSender(ch chan<- Entry) {
	h.mu.Lock()
	h.send = ch
	h.mu.Unlock()
}

// Snapshot returns the ring buffer's entries in chronological order.
func (h *Handler) Snapshot() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Entry, h.count)
	start := h.head - h.count
	if start < 0 {
		start += h.ringCap
	}
	for i := 0; i < h.count; i++ {
		out[i] = h.ring[(start+i)%h.ringCap]
	}
	return out
}

// Close closes the file sink, if any.
func (h *Handler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.file != nil {
		return h.file.Close()
	}
	return nil
}
