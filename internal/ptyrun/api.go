package ptyrun

import "github.com/charmbracelet/x/vt"

// mouseActive reports whether the child has DECSET 1000/1002/1003
// (mouse button/motion reporting) currently enabled; Click/MouseScroll
// are no-ops otherwise (spec.md §4.4). The flag is maintained by
// scanMouseMode as the state-applier parses each chunk of child output,
// since vt.SafeEmulator doesn't expose mouse-mode state directly.
func (t *Terminal) mouseActive() bool {
	return t.mouseModeActive.Load()
}

// Resize changes the pty and VT parser dimensions.
func (t *Terminal) Resize(cols, rows int) error {
	select {
	case t.ptyUp <- PtyUpdate{Resize: &Size{Cols: cols, Rows: rows}}:
	default:
		return ErrWriterDisconnected
	}
	select {
	case t.updates <- TerminalUpdate{Resize: &Size{Cols: cols, Rows: rows}}:
		return nil
	default:
		return ErrUpdateChannelDisconnected
	}
}

// Click forwards a mouse click at the given cell coordinate, encoded
// in the SGR mouse protocol. No-op (returns nil, not forwarded) if
// mouse reporting is inactive.
func (t *Terminal) Click(x, y int) error {
	if !t.mouseActive() {
		return nil
	}
	select {
	case t.ptyUp <- PtyUpdate{MouseClick: &MouseClick{X: x, Y: y}}:
		return nil
	default:
		return ErrWriterDisconnected
	}
}

// MouseScroll forwards a mouse wheel event if mouse reporting is
// active, returning whether it was forwarded.
func (t *Terminal) MouseScroll(up bool, x, y int) (forwarded bool, err error) {
	if !t.mouseActive() {
		return false, nil
	}
	select {
	case t.ptyUp <- PtyUpdate{MouseScroll: &MouseScroll{Up: up, X: x, Y: y}}:
		return true, nil
	default:
		return false, ErrWriterDisconnected
	}
}

// Scroll adjusts the scrollback view position by a relative delta.
func (t *Terminal) Scroll(delta int) error {
	select {
	case t.updates <- TerminalUpdate{ScrollDelta: &delta}:
		t.dirty.Store(true)
		return nil
	default:
		return ErrUpdateChannelDisconnected
	}
}

// SetScroll sets the scrollback view to an absolute row offset.
func (t *Terminal) SetScroll(rows int) error {
	select {
	case t.updates <- TerminalUpdate{SetScroll: &rows}:
		t.dirty.Store(true)
		return nil
	default:
		return ErrUpdateChannelDisconnected
	}
}

// Echo injects bytes into the VT parser as if the child had written
// them, without going through the pty (used for start banners).
func (t *Terminal) Echo(b []byte) error {
	select {
	case t.updates <- TerminalUpdate{Echo: b}:
		return nil
	default:
		return ErrUpdateChannelDisconnected
	}
}

// Clear resets the VT grid.
func (t *Terminal) Clear() error {
	select {
	case t.updates <- TerminalUpdate{Clear: true}:
		return nil
	default:
		return ErrUpdateChannelDisconnected
	}
}

// Write sends bytes to the child's stdin.
func (t *Terminal) Write(b []byte) error {
	select {
	case t.ptyUp <- PtyUpdate{Write: b}:
		return nil
	default:
		return ErrWriterDisconnected
	}
}

// Kill forwards a kill request to the child.
func (t *Terminal) Kill() {
	select {
	case t.ptyUp <- PtyUpdate{Kill: true}:
	default:
		// writer already gone; the child is as good as dead.
	}
}

// Wait blocks until the child has exited, returning its exit code (or
// an error if the wait itself failed, e.g. the process was never
// started successfully).
func (t *Terminal) Wait() (int, error) {
	status, ok := <-t.exitCh
	if !ok {
		return 0, ErrUpdateChannelDisconnected
	}
	return status.Code, status.Err
}

// IsDirty reports whether the VT parser has observed input since the
// last ClearDirty call.
func (t *Terminal) IsDirty() bool {
	return t.dirty.Load()
}

// ClearDirty resets the dirty flag (spec.md §3 invariant: "dirty flag
// is set iff the VT parser has observed input since the last explicit
// clear").
func (t *Terminal) ClearDirty() {
	t.dirty.Store(false)
}

// WithEmulator calls fn with the shared VT parser held under its
// mutex, bounding the critical section to a single render pass
// (spec.md §3, "critical section is bounded by one batch of pending
// updates"). The caller must not retain the emulator pointer past fn.
func (t *Terminal) WithEmulator(fn func(*vt.SafeEmulator)) {
	t.parserMu.Lock()
	defer t.parserMu.Unlock()
	fn(t.parser)
}
