// Package scheduler starts, stops, and tears down PTY-backed process
// instances keyed by command id, gating starts on unsatisfied
// dependencies and propagating failures to dependents (spec.md §4.5).
package scheduler

import (
	"fmt"
	"os"
	"sync"

	"github.com/fnug-dev/fnug/internal/config"
	"github.com/fnug-dev/fnug/internal/ptyrun"
)

// Status is a process instance's lifecycle state (spec.md §3).
type Status int

const (
	StatusPending Status = iota
	StatusWaitingForDeps
	StatusRunning
	StatusSuccess
	StatusFailure
	StatusError
)

// ProcessInstance is owned by the Scheduler.
type ProcessInstance struct {
	ID       string
	Status   Status
	ExitCode int
	ErrMsg   string
	Terminal *ptyrun.Terminal
}

// EventKind identifies one of the four event-sink kinds from
// spec.md §6.
type EventKind int

const (
	EventProcessExited EventKind = iota
	EventProcessError
	EventWatcherTriggered
	EventConfigChanged
)

// Event is posted to the scheduler's single FIFO channel, serializing
// all state transitions (spec.md §5).
type Event struct {
	Kind     EventKind
	ID       string
	Code     int
	Message  string
	Commands []string
}

// eventChanCapacity matches spec.md §4.4/§6's bounded capacity of 256.
const eventChanCapacity = 256

// Scheduler owns the process-instance map, the pending-dependency map,
// and error messages for commands that failed to spawn.
type Scheduler struct {
	mu sync.Mutex

	root     *config.Group
	byID     map[string]*config.Command
	terminal ptyrun.Size

	instances   map[string]*ProcessInstance
	pendingDeps map[string][]string
	errMessages map[string]string
	selected    map[string]bool

	activeID string

	Events chan Event
}

// New builds a Scheduler over the given compiled, inherited tree.
func New(root *config.Group, size ptyrun.Size) *Scheduler {
	byID := make(map[string]*config.Command)
	for _, c := range root.AllCommands() {
		byID[c.ID] = c
	}
	return &Scheduler{
		root:        root,
		byID:        byID,
		terminal:    size,
		instances:   make(map[string]*ProcessInstance),
		pendingDeps: make(map[string][]string),
		errMessages: make(map[string]string),
		selected:    make(map[string]bool),
		Events:      make(chan Event, eventChanCapacity),
	}
}

// Start resolves the command and its dependency chain, spawning it
// once every dependency has a successful prior run (spec.md §4.5).
func (s *Scheduler) Start(id string, setActive bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked(id, setActive)
}

func (s *Scheduler) startLocked(id string, setActive bool) error {
	cmd, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("unknown command id %q", id)
	}

	var pending []string
	for _, dep := range cmd.DependsOn {
		if inst, ok := s.instances[dep]; ok && inst.Status == StatusSuccess {
			continue // satisfied
		}
		pending = append(pending, dep)
		if !s.isRunningOrPending(dep) {
			if err := s.startLocked(dep, false); err != nil {
				return err
			}
		}
	}

	if len(pending) > 0 {
		s.pendingDeps[id] = pending
		s.instances[id] = &ProcessInstance{ID: id, Status: StatusWaitingForDeps}
		if setActive {
			s.activeID = id
		}
		return nil
	}

	return s.spawnLocked(cmd, setActive)
}

func (s *Scheduler) isRunningOrPending(id string) bool {
	inst, ok := s.instances[id]
	if !ok {
		return false
	}
	return inst.Status == StatusRunning || inst.Status == StatusWaitingForDeps
}

func (s *Scheduler) spawnLocked(cmd *config.Command, setActive bool) error {
	if existing, ok := s.instances[cmd.ID]; ok && existing.Terminal != nil {
		existing.Terminal.Kill()
	}

	env := os.Environ()
	for k, v := range cmd.Env {
		env = append(env, k+"="+v)
	}
	env = append(env, "TERM=xterm-256color")

	term, err := ptyrun.Spawn(cmd.Cmd, cmd.Cwd, env, s.terminal, cmd.Scrollback)
	if err != nil {
		s.errMessages[cmd.ID] = err.Error()
		s.instances[cmd.ID] = &ProcessInstance{ID: cmd.ID, Status: StatusError, ErrMsg: err.Error()}
		return err
	}
	_ = term.Echo([]byte(fmt.Sprintf("$ %s\r\n", cmd.Cmd)))

	inst := &ProcessInstance{ID: cmd.ID, Status: StatusRunning, Terminal: term}
	s.instances[cmd.ID] = inst
	delete(s.pendingDeps, cmd.ID)
	if setActive {
		s.activeID = cmd.ID
	}

	go func() {
		code, waitErr := term.Wait()
		if waitErr != nil {
			s.Events <- Event{Kind: EventProcessError, ID: cmd.ID, Message: waitErr.Error()}
			return
		}
		s.Events <- Event{Kind: EventProcessExited, ID: cmd.ID, Code: code}
	}()

	return nil
}

// HandleEvent applies a process-exited/process-error event's state
// transition (spec.md §4.5). Callers read from s.Events and dispatch
// here from the single-threaded main loop.
func (s *Scheduler) HandleEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case EventProcessExited:
		s.onProcessExited(ev.ID, ev.Code)
	case EventProcessError:
		s.onProcessError(ev.ID, ev.Message)
	case EventWatcherTriggered:
		for _, id := range ev.Commands {
			s.selected[id] = true
			_ = s.startLocked(id, false)
		}
	}
}

func (s *Scheduler) onProcessExited(id string, code int) {
	inst, ok := s.instances[id]
	if !ok {
		return
	}
	if code == 0 {
		inst.Status = StatusSuccess
		inst.ExitCode = 0
		delete(s.selected, id)
		s.satisfyDependents(id)
		return
	}
	inst.Status = StatusFailure
	inst.ExitCode = code
	s.propagateFailure(id)
}

func (s *Scheduler) onProcessError(id, msg string) {
	inst, ok := s.instances[id]
	if !ok {
		inst = &ProcessInstance{ID: id}
		s.instances[id] = inst
	}
	inst.Status = StatusError
	inst.ErrMsg = msg
	s.propagateFailure(id)
}

// satisfyDependents removes id from every pending list it appears in;
// any command whose pending list becomes empty is started (non-active).
func (s *Scheduler) satisfyDependents(id string) {
	for depID, deps := range s.pendingDeps {
		remaining := deps[:0]
		for _, d := range deps {
			if d != id {
				remaining = append(remaining, d)
			}
		}
		if len(remaining) == 0 {
			delete(s.pendingDeps, depID)
			_ = s.startLocked(depID, false)
		} else {
			s.pendingDeps[depID] = remaining
		}
	}
}

// propagateFailure marks every transitive dependent of id (found via
// the pending-deps map) as errored with "Dependency '<name>' failed",
// dropping them from pending (spec.md §4.5, §7).
func (s *Scheduler) propagateFailure(id string) {
	queue := []string{id}
	for len(queue) > 0 {
		failedID := queue[0]
		queue = queue[1:]

		for depID, deps := range s.pendingDeps {
			if !contains(deps, failedID) {
				continue
			}
			delete(s.pendingDeps, depID)
			name := failedID
			if cmd, ok := s.byID[failedID]; ok {
				name = cmd.Name
			}
			s.instances[depID] = &ProcessInstance{
				ID:     depID,
				Status: StatusError,
				ErrMsg: fmt.Sprintf("Dependency '%s' failed", name),
			}
			queue = append(queue, depID)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Stop sends a kill to the command's terminal, if running.
func (s *Scheduler) Stop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inst, ok := s.instances[id]; ok && inst.Terminal != nil {
		inst.Terminal.Kill()
	}
}

// Clear removes the instance entirely.
func (s *Scheduler) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inst, ok := s.instances[id]; ok {
		if inst.Terminal != nil {
			inst.Terminal.Kill()
		}
		delete(s.instances, id)
	}
	delete(s.pendingDeps, id)
}

// RunSelected marks every command in ids as selected and starts it
// (dependency handling happens inside Start).
func (s *Scheduler) RunSelected(ids []string) error {
	for _, id := range ids {
		s.SetSelected(id, true)
		if err := s.Start(id, false); err != nil {
			return err
		}
	}
	return nil
}

// RunGroup starts every command under the group with id groupID.
func (s *Scheduler) RunGroup(groupID string) error {
	var target *config.Group
	for _, g := range s.root.AllGroups() {
		if g.ID == groupID {
			target = g
			break
		}
	}
	if target == nil {
		return fmt.Errorf("unknown group id %q", groupID)
	}
	for _, c := range target.AllCommands() {
		if err := s.Start(c.ID, false); err != nil {
			return err
		}
	}
	return nil
}

// SetSelected marks id's selection state, for the TUI's toggle
// keybinding and for the watcher's auto-select-on-trigger behavior
// (spec.md §4.5, §4.7). A command's own successful run always clears
// its entry (see onProcessExited); selecting it again re-arms it for
// the next "run selected" pass.
func (s *Scheduler) SetSelected(id string, selected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if selected {
		s.selected[id] = true
	} else {
		delete(s.selected, id)
	}
}

// ToggleSelected flips id's selection state and returns the new value.
func (s *Scheduler) ToggleSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	newState := !s.selected[id]
	if newState {
		s.selected[id] = true
	} else {
		delete(s.selected, id)
	}
	return newState
}

// IsSelected reports id's current selection state.
func (s *Scheduler) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected[id]
}

// SelectedIDs returns every currently-selected command id, for a
// "run selected" action.
func (s *Scheduler) SelectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.selected))
	for id, v := range s.selected {
		if v {
			ids = append(ids, id)
		}
	}
	return ids
}

// Instance returns a snapshot of a command's process instance, if any.
func (s *Scheduler) Instance(id string) (ProcessInstance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[id]
	if !ok {
		return ProcessInstance{}, false
	}
	return *inst, true
}

// Teardown kills every terminal; aborted background tasks simply exit
// once their channels close.
func (s *Scheduler) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inst := range s.instances {
		if inst.Terminal != nil {
			inst.Terminal.Kill()
		}
	}
}
