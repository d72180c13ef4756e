// Package watcher translates debounced filesystem events into the
// list of commands whose watched paths they fall under (spec.md §4.7).
package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fnug-dev/fnug/internal/config"
)

// ErrNoWatchableCommands is returned by New when no command has
// auto.watch == true.
var ErrNoWatchableCommands = errors.New("no watchable commands")

// tick is the debounce poll interval; coalesceWindow bounds how long a
// steady stream of events can suppress a flush before one is forced
// (spec.md §4.7: "5s coalescing window with a 500ms tick").
const (
	coalesceWindow = 5 * time.Second
	tick           = 500 * time.Millisecond
)

// Watcher builds a path->commands lookup table over every watch==true
// command and emits deduplicated command lists on debounced changes.
type Watcher struct {
	fsw *fsnotify.Watcher

	mu    sync.Mutex
	table map[string][]*config.Command // watched path -> commands

	Triggered chan []*config.Command // bounded, spec.md §4.7 step 3

	pending   map[string]bool
	timer     *time.Timer
	firstSeen time.Time
	closed    atomic.Bool
	wg        sync.WaitGroup
}

// New builds the path lookup table from every watch==true command in
// root and registers each watched directory (recursively) with the
// underlying fsnotify watcher.
func New(root *config.Group, bufferSize int) (*Watcher, error) {
	table := make(map[string][]*config.Command)
	for _, c := range root.AllCommands() {
		if !c.Auto.IsWatch() {
			continue
		}
		for _, p := range c.Auto.Path {
			table[p] = append(table[p], c)
		}
	}
	if len(table) == 0 {
		return nil, ErrNoWatchableCommands
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:       fsw,
		table:     table,
		Triggered: make(chan []*config.Command, bufferSize),
		pending:   make(map[string]bool),
	}

	for p := range table {
		if err := addRecursive(fsw, p); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	return w, nil
}

// addRecursive registers path and, if it is a directory, every
// subdirectory under it (fsnotify only watches one level per call).
func addRecursive(fsw *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fsw.Add(filepath.Dir(root))
	}
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if info.Name() == ".git" {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

// Run drives the debounced event loop until stopped via Close. Only
// one call to Run per Watcher is meaningful.
func (w *Watcher) Run() {
	defer close(w.Triggered)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if ev.Op&fsnotify.Create != 0 {
		_ = addRecursive(w.fsw, ev.Name) // best-effort; new files/dirs auto-register
	}

	w.pending[ev.Name] = true
	now := time.Now()
	if w.timer == nil {
		w.firstSeen = now
		w.timer = time.AfterFunc(tick, w.flush)
		return
	}
	if now.Sub(w.firstSeen) >= coalesceWindow {
		return // a flush is due any tick; don't keep pushing it back forever
	}
	w.timer.Reset(tick)
}

func (w *Watcher) flush() {
	if w.closed.Load() {
		return
	}

	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]bool)
	w.timer = nil
	w.mu.Unlock()

	if len(paths) == 0 {
		return
	}

	commands := w.matchCommands(paths)
	if len(commands) == 0 {
		return
	}

	w.wg.Add(1)
	defer w.wg.Done()
	select {
	case w.Triggered <- commands:
	default:
	}
}

// matchCommands finds every table key that is a prefix of a changed
// path and includes every command whose regex matches that path
// (spec.md §4.7 step 2), deduplicating by command id.
func (w *Watcher) matchCommands(paths []string) []*config.Command {
	w.mu.Lock()
	defer w.mu.Unlock()

	seen := make(map[string]bool)
	var out []*config.Command
	for _, changed := range paths {
		for watchedPath, cmds := range w.table {
			if !isUnder(watchedPath, changed) {
				continue
			}
			for _, c := range cmds {
				if seen[c.ID] {
					continue
				}
				if matchesAnyRegex(c.Auto.Regex, changed) {
					seen[c.ID] = true
					out = append(out, c)
				}
			}
		}
	}
	return out
}

func isUnder(watched, changed string) bool {
	if watched == changed {
		return true
	}
	return strings.HasPrefix(changed, watched+string(filepath.Separator))
}

func matchesAnyRegex(patterns []*regexp.Regexp, path string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, re := range patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Close stops the underlying fsnotify watcher and waits for in-flight
// dispatches to finish.
func (w *Watcher) Close() error {
	w.closed.Store(true)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}
