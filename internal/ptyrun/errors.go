package ptyrun

import "errors"

// ErrWriterDisconnected is returned by Terminal operations that write
// to the pty (Write, Click, MouseScroll, Resize, Kill) once the writer
// goroutine has exited — the scheduler treats this as "already
// exited" (spec.md §4.4, §7).
var ErrWriterDisconnected = errors.New("pty writer disconnected")

// ErrUpdateChannelDisconnected is returned by operations that post to
// the state-applier (Echo, Clear, Scroll, SetScroll) once it has
// exited.
var ErrUpdateChannelDisconnected = errors.New("terminal update channel disconnected")

// ErrSpawn wraps a failure to start the child process in its pty.
type ErrSpawn struct {
	Err error
}

func (e *ErrSpawn) Error() string { return "pty spawn error: " + e.Err.Error() }
func (e *ErrSpawn) Unwrap() error { return e.Err }
