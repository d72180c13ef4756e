package ptyrun

import "testing"

func newTestTerminal() *Terminal {
	return &Terminal{mouseModeSet: make(map[string]bool)}
}

func TestScanMouseMode_EnableAndDisable(t *testing.T) {
	term := newTestTerminal()
	if term.mouseActive() {
		t.Fatal("expected mouse mode inactive before any DECSET")
	}

	term.scanMouseMode([]byte("\x1b[?1000h"))
	if !term.mouseActive() {
		t.Fatal("expected mouse mode active after DECSET 1000h")
	}

	term.scanMouseMode([]byte("\x1b[?1000l"))
	if term.mouseActive() {
		t.Fatal("expected mouse mode inactive after DECRST 1000l")
	}
}

func TestScanMouseMode_CombinedModesIgnoresUnrelatedCodes(t *testing.T) {
	term := newTestTerminal()
	term.scanMouseMode([]byte("\x1b[?1002;1006h"))
	if !term.mouseActive() {
		t.Fatal("expected mouse mode active: 1002 is a tracked code")
	}

	term.scanMouseMode([]byte("\x1b[?1006l"))
	if !term.mouseActive() {
		t.Fatal("1006 alone is SGR encoding, not a tracked mode; 1002 should still be active")
	}

	term.scanMouseMode([]byte("\x1b[?1002l"))
	if term.mouseActive() {
		t.Fatal("expected mouse mode inactive once 1002 is reset")
	}
}

func TestScanMouseMode_SplitAcrossChunks(t *testing.T) {
	term := newTestTerminal()
	term.scanMouseMode([]byte("\x1b[?100"))
	term.scanMouseMode([]byte("0h"))
	if !term.mouseActive() {
		t.Fatal("expected mouse mode active after a DECSET sequence split across two reads")
	}
}

func TestScanMouseMode_UnrelatedCodeDoesNotActivate(t *testing.T) {
	term := newTestTerminal()
	term.scanMouseMode([]byte("\x1b[?25h")) // cursor visibility, unrelated
	if term.mouseActive() {
		t.Fatal("expected mouse mode inactive: 25 is not a mouse mode")
	}
}
