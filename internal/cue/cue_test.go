package cue

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/verte-zerg/tuifit/internal/model"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestBellRingsOncePerTone(t *testing.T) {
	out := &lockedBuffer{}
	var slept []time.Duration
	b := newBell(out, func(d time.Duration) { slept = append(slept, d) })
	b.Short()
	b.Long(model.CueRestEnd)
	b.Fanfare()
	b.Close()

	want := len(ShortPattern) + len(RestEndPattern) + len(FanfarePattern)
	if got := strings.Count(out.String(), "\a"); got != want {
		t.Fatalf("expected %d bells, got %d", want, got)
	}
	if len(slept) != want || slept[1] != RestEndPattern[0].Duration {
		t.Fatalf("unexpected sleeps: %v", slept)
	}
}

func TestBellIgnoresCuesAfterClose(t *testing.T) {
	out := &lockedBuffer{}
	b := newBell(out, func(time.Duration) {})
	b.Close()
	b.Close()
	b.Short()
	b.Fanfare()
	if out.String() != "" {
		t.Fatalf("expected no output after close, got %q", out.String())
	}
}

type failingWriter struct {
	mu     sync.Mutex
	writes int
}

func (w *failingWriter) Write([]byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes++
	return 0, errors.New("closed")
}

func TestBellStopsAfterWriteFailure(t *testing.T) {
	out := &failingWriter{}
	var slept int
	b := newBell(out, func(time.Duration) { slept++ })
	b.Fanfare()
	b.Short()
	b.Close()
	if out.writes != 1 {
		t.Fatalf("expected a single write attempt, got %d", out.writes)
	}
	if slept != 0 {
		t.Fatalf("expected no tone delays after failure, got %d", slept)
	}
}

func TestLongPatternContext(t *testing.T) {
	if LongPattern(model.CueWorkEnd)[0].Frequency == LongPattern(model.CueRestEnd)[0].Frequency {
		t.Fatalf("work-end and rest-end cues must differ")
	}
}
