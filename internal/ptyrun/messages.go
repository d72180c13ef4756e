// Package ptyrun implements the PTY-backed terminal runtime: each
// command is spawned inside a pseudo-terminal with three background
// workers — reader, state-applier, writer — connected by bounded
// channels (spec.md §4.4, §5).
package ptyrun

// TerminalUpdate is sent from the reader (and from Echo/Clear/Scroll
// callers) to the state-applier, which is the sole owner of the VT
// parser.
type TerminalUpdate struct {
	Process     []byte // raw bytes read from the child, applied to the parser
	Resize      *Size
	Echo        []byte
	ScrollDelta *int
	SetScroll   *int
	Clear       bool
}

// Size is a terminal's column/row dimensions.
type Size struct {
	Cols int
	Rows int
}

// PtyUpdate is sent to the writer, which owns the pty master's write
// end and the child's killer handle.
type PtyUpdate struct {
	MouseClick  *MouseClick
	MouseScroll *MouseScroll
	Resize      *Size
	Write       []byte
	Kill        bool
}

// MouseClick carries a 0-based cell coordinate for an SGR mouse click.
type MouseClick struct {
	X, Y int
}

// MouseScroll carries a 0-based cell coordinate and direction for an
// SGR mouse wheel event.
type MouseScroll struct {
	Up   bool
	X, Y int
}

// ExitStatus is posted by the reader once the child has exited and its
// wait() has resolved.
type ExitStatus struct {
	Code int
	Err  error
}
