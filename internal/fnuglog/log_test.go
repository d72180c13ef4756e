package fnuglog

import (
	"testing"

	"github.com/apex/log"
)

func TestHandler_RingBufferWraps(t *testing.T) {
	h, err := New(2, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Init(h, log.DebugLevel)

	log.Info("one")
	log.Info("two")
	log.Info("three")

	snap := h.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected ring capped at 2 entries, got %d", len(snap))
	}
	if snap[0].Message == "" || snap[1].Message == "" {
		t.Error("expected non-empty messages")
	}
}

func TestHandler_ConnectEventSenderNonBlocking(t *testing.T) {
	h, err := New(4, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Init(h, log.DebugLevel)

	ch := make(chan Entry) // unbuffered, nobody reads
	h.ConnectEventSender(ch)

	done := make(chan struct{})
	go func() {
		log.Info("should not block")
		close(done)
	}()

	select {
	case <-done:
	default:
	}
	<-done // log call must return even though nothing drains ch
}

func TestLevelFromString(t *testing.T) {
	cases := map[string]log.Level{
		"debug": log.DebugLevel,
		"WARN":  log.WarnLevel,
		"bogus": log.InfoLevel,
	}
	for in, want := range cases {
		if got := LevelFromString(in); got != want {
			t.Errorf("LevelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}
