package ptyrun

import "regexp"

// mouseModeCodes are the DECSET/DECRST private modes that request some
// form of mouse button/motion reporting (X11, cell-motion, any-motion).
// 1006 (SGR extended coordinates) only changes encoding and is not
// tracked: a child that sets 1006 without one of these is not yet
// asking for events.
var mouseModeCodes = map[string]bool{
	"1000": true,
	"1002": true,
	"1003": true,
}

// decsetRe matches CSI private-mode set/reset sequences, e.g.
// "\x1b[?1000h" or the combined form "\x1b[?1000;1006h".
var decsetRe = regexp.MustCompile(`\x1b\[\?([0-9;]+)([hl])`)

// maxPartialEscape bounds the carry buffer: no DECSET sequence we care
// about is longer than this, so anything beyond it at a chunk boundary
// can't be the start of one.
const maxPartialEscape = 32

// scanMouseMode updates t.mouseModeActive from any DECSET/DECRST mouse
// sequences found in chunk, carrying over a possibly-split escape
// sequence from the previous call. Only called from applyLoop, which is
// the parser's single owner, so t.mouseModeSet needs no locking of its
// own beyond the atomic flag it publishes.
func (t *Terminal) scanMouseMode(chunk []byte) {
	buf := chunk
	if len(t.mouseEscCarry) > 0 {
		buf = append(append([]byte{}, t.mouseEscCarry...), chunk...)
		t.mouseEscCarry = nil
	}

	matches := decsetRe.FindAllSubmatchIndex(buf, -1)
	lastEnd := 0
	for _, m := range matches {
		codes := string(buf[m[2]:m[3]])
		enable := buf[m[4]] == 'h'
		for _, code := range splitCodes(codes) {
			if mouseModeCodes[code] {
				if enable {
					t.mouseModeSet[code] = true
				} else {
					delete(t.mouseModeSet, code)
				}
			}
		}
		lastEnd = m[1]
	}

	t.mouseModeActive.Store(len(t.mouseModeSet) > 0)

	// Preserve a possible partial escape sequence at the tail so a
	// split read doesn't lose it.
	tail := buf[lastEnd:]
	if idx := lastIndexByte(tail, 0x1b); idx >= 0 && len(tail)-idx <= maxPartialEscape {
		t.mouseEscCarry = append([]byte{}, tail[idx:]...)
	}
}

func splitCodes(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ';' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func lastIndexByte(b []byte, c byte) int {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] == c {
			return i
		}
	}
	return -1
}
