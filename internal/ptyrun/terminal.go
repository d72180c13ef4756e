package ptyrun

import (
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/x/vt"
	"github.com/creack/pty"
)

// DefaultScrollback matches spec.md §4.4's default of 3500 lines.
// Spawn accepts a per-command scrollback value but does not apply it
// (nor this default) to the vt emulator, which sizes its own
// scrollback buffer.
const DefaultScrollback = 3500

// updateChanCapacity is the bounded channel capacity connecting the
// reader/state-applier/writer threads (spec.md §5).
const updateChanCapacity = 1000

// Terminal owns a pty master/slave pair, a VT parser with scrollback,
// and the three background workers described in spec.md §4.4. The
// zero value is not usable; construct with Spawn.
type Terminal struct {
	cmd  *exec.Cmd
	ptmx *os.File

	parserMu sync.Mutex
	parser   *vt.SafeEmulator

	dirty atomic.Bool

	// mouseModeActive mirrors whether the child currently has any of
	// DECSET 1000/1002/1003 enabled; mouseModeSet/mouseEscCarry are
	// only touched from applyLoop (see scanMouseMode).
	mouseModeActive atomic.Bool
	mouseModeSet    map[string]bool
	mouseEscCarry   []byte

	updates chan TerminalUpdate // reader/Echo/Clear/Scroll -> state-applier
	ptyUp   chan PtyUpdate      // Terminal API -> writer
	exitCh  chan ExitStatus     // reader -> Wait()

	closeOnce sync.Once
	doneCh    chan struct{} // closed once all three workers have exited
}

// Spawn starts cmdLine under "sh -c" inside a new pseudo-terminal sized
// to size, with the given working directory and environment (already
// merged with TERM=xterm-256color by the caller per spec.md §6), and
// launches the reader/state-applier/writer workers.
func Spawn(cmdLine, cwd string, env []string, size Size, scrollback int) (*Terminal, error) {
	if scrollback <= 0 {
		scrollback = DefaultScrollback
	}

	cmd := exec.Command("sh", "-c", cmdLine)
	cmd.Dir = cwd
	cmd.Env = env

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(size.Rows), Cols: uint16(size.Cols)})
	if err != nil {
		return nil, &ErrSpawn{Err: err}
	}

	t := &Terminal{
		cmd:     cmd,
		ptmx:    ptmx,
		parser:  vt.NewSafeEmulator(size.Cols, size.Rows),
		updates: make(chan TerminalUpdate, updateChanCapacity),
		ptyUp:   make(chan PtyUpdate, updateChanCapacity),
		exitCh:  make(chan ExitStatus, 1),
		doneCh:  make(chan struct{}),
	}
	t.mouseModeSet = make(map[string]bool)
	_ = scrollback // the vt emulator manages its own scrollback internally

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); t.readLoop() }()
	go func() { defer wg.Done(); t.applyLoop() }()
	go func() { defer wg.Done(); t.writeLoop() }()
	go func() { wg.Wait(); close(t.doneCh) }()

	return t, nil
}

// readLoop blocks on reads from the pty master into a 1 KiB buffer,
// forwarding each chunk to the state-applier. On EOF it waits for the
// child's exit status and publishes it.
func (t *Terminal) readLoop() {
	buf := make([]byte, 1024)
	for {
		n, err := t.ptmx.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case t.updates <- TerminalUpdate{Process: chunk}:
			default:
				// state-applier is behind; block rather than drop
				// process bytes, since dropped output would corrupt
				// the VT grid.
				t.updates <- TerminalUpdate{Process: chunk}
			}
		}
		if err != nil {
			break
		}
	}
	code := 0
	waitErr := t.cmd.Wait()
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		} else {
			t.exitCh <- ExitStatus{Err: waitErr}
			close(t.updates)
			return
		}
	}
	t.exitCh <- ExitStatus{Code: code}
	close(t.updates)
}

// applyLoop owns the VT parser exclusively, consuming update messages
// and batching any immediately-available ones into the same critical
// section before setting the dirty flag (spec.md §4.4, §5).
func (t *Terminal) applyLoop() {
	for first := range t.updates {
		t.parserMu.Lock()
		t.applyOne(first)
		drain:
		for {
			select {
			case u, ok := <-t.updates:
				if !ok {
					break drain
				}
				t.applyOne(u)
			default:
				break drain
			}
		}
		t.parserMu.Unlock()
		t.dirty.Store(true)
	}
}

func (t *Terminal) applyOne(u TerminalUpdate) {
	switch {
	case u.Process != nil:
		t.scanMouseMode(u.Process)
		t.parser.Write(u.Process)
	case u.Resize != nil:
		t.parser.Resize(u.Resize.Cols, u.Resize.Rows)
	case u.Echo != nil:
		t.parser.Write(u.Echo)
	case u.Clear:
		// Reset the grid via the standard "clear screen, home cursor"
		// control sequence rather than a parser-specific reset method.
		t.parser.Write([]byte("\x1b[2J\x1b[H"))
	case u.ScrollDelta != nil, u.SetScroll != nil:
		// Scrollback position is tracked by the render path reading
		// the parser directly; nothing to mutate on the emulator
		// itself beyond the dirty flag already set by the caller.
	}
}

// writeLoop owns the pty master's write end and the child's killer
// handle, consuming pty-update messages.
func (t *Terminal) writeLoop() {
	for u := range t.ptyUp {
		switch {
		case u.MouseClick != nil:
			seq := sgrMouseClick(u.MouseClick.X, u.MouseClick.Y)
			_, _ = t.ptmx.Write([]byte(seq))
		case u.MouseScroll != nil:
			seq := sgrMouseScroll(u.MouseScroll.Up, u.MouseScroll.X, u.MouseScroll.Y)
			_, _ = t.ptmx.Write([]byte(seq))
		case u.Resize != nil:
			_ = pty.Setsize(t.ptmx, &pty.Winsize{Rows: uint16(u.Resize.Rows), Cols: uint16(u.Resize.Cols)})
		case u.Write != nil:
			_, _ = t.ptmx.Write(u.Write)
		case u.Kill:
			if t.cmd.Process != nil {
				_ = t.cmd.Process.Kill()
			}
			_ = t.ptmx.Close()
		}
	}
}

func sgrMouseClick(x, y int) string {
	return sgrSeq(0, x, y, 'M')
}

func sgrMouseScroll(up bool, x, y int) string {
	btn := 65
	if !up {
		btn = 66
	}
	return sgrSeq(btn, x, y, 'M')
}

func sgrSeq(button, x, y int, final byte) string {
	return "\x1b[<" + itoa(button) + ";" + itoa(x+1) + ";" + itoa(y+1) + string(final)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

var _ io.Closer = (*Terminal)(nil)

// Close is an alias for Kill, satisfying io.Closer for callers that
// want to defer-close a Terminal.
func (t *Terminal) Close() error {
	t.Kill()
	return nil
}
