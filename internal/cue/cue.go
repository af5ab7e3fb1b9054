// Package cue plays audio cues for a running session.
package cue

import (
	"io"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/verte-zerg/tuifit/internal/eventq"
	"github.com/verte-zerg/tuifit/internal/model"
)

// Tone is a single beep.
type Tone struct {
	Frequency int
	Duration  time.Duration
}

// Patterns for each cue.
var (
	ShortPattern   = []Tone{{Frequency: 1000, Duration: 120 * time.Millisecond}}
	WorkEndPattern = []Tone{{Frequency: 700, Duration: 500 * time.Millisecond}}
	RestEndPattern = []Tone{{Frequency: 880, Duration: 500 * time.Millisecond}}
	FanfarePattern = []Tone{
		{Frequency: 523, Duration: 150 * time.Millisecond},
		{Frequency: 659, Duration: 150 * time.Millisecond},
		{Frequency: 784, Duration: 150 * time.Millisecond},
		{Frequency: 1047, Duration: 400 * time.Millisecond},
	}
)

// LongPattern returns the long cue for ctx.
func LongPattern(ctx model.CueContext) []Tone {
	if ctx == model.CueRestEnd {
		return RestEndPattern
	}
	return WorkEndPattern
}

const queueSize = 8

// Bell rings the terminal bell once per tone. Cues are queued without
// blocking and dropped when the queue is full. After the first failed write
// the bell stays silent.
type Bell struct {
	w     io.Writer
	sleep func(time.Duration)
	queue chan []Tone
	done  chan struct{}
	once  sync.Once
}

// NewBell starts a player writing to w.
func NewBell(w io.Writer) *Bell {
	return newBell(w, time.Sleep)
}

func newBell(w io.Writer, sleep func(time.Duration)) *Bell {
	b := &Bell{
		w:     w,
		sleep: sleep,
		queue: make(chan []Tone, queueSize),
		done:  make(chan struct{}),
	}
	go b.loop()
	return b
}

// Short implements session.CuePlayer.
func (b *Bell) Short() { eventq.Offer(b.queue, ShortPattern) }

// Long implements session.CuePlayer.
func (b *Bell) Long(ctx model.CueContext) { eventq.Offer(b.queue, LongPattern(ctx)) }

// Fanfare implements session.CuePlayer.
func (b *Bell) Fanfare() { eventq.Offer(b.queue, FanfarePattern) }

// Close stops the player after queued cues are played.
func (b *Bell) Close() {
	b.once.Do(func() {
		close(b.queue)
		<-b.done
	})
}

func (b *Bell) loop() {
	defer close(b.done)
	muted := false
	for pattern := range b.queue {
		if muted {
			continue
		}
		for _, tone := range pattern {
			if _, err := io.WriteString(b.w, "\a"); err != nil {
				// The terminal is gone; drain the rest silently.
				muted = true
				break
			}
			b.sleep(tone.Duration)
		}
	}
}

// Silent discards every cue.
type Silent struct{}

// Short implements session.CuePlayer.
func (Silent) Short() {}

// Long implements session.CuePlayer.
func (Silent) Long(model.CueContext) {}

// Fanfare implements session.CuePlayer.
func (Silent) Fanfare() {}

// Player is a cue sink that may need closing.
type Player interface {
	Short()
	Long(ctx model.CueContext)
	Fanfare()
	Close()
}

// Close implements Player.
func (Silent) Close() {}

// ForTerminal returns a Bell on f when enabled and f is a terminal, and
// Silent otherwise.
func ForTerminal(f interface {
	io.Writer
	Fd() uintptr
}, enabled bool) Player {
	if !enabled {
		return Silent{}
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return Silent{}
	}
	return NewBell(f)
}
