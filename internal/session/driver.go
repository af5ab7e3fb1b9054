package session

import (
	"context"
	"time"

	"github.com/verte-zerg/tuifit/internal/eventq"
	"github.com/verte-zerg/tuifit/internal/model"
)

// Command is a user command delivered through a Driver.
type Command int

const (
	CmdAdvance Command = iota
	CmdTogglePause
	CmdSkipCountdown
	CmdCancel
)

const commandBuffer = 16

// Driver serializes clock ticks and user commands onto one Machine from a
// single goroutine.
type Driver struct {
	machine  *Machine
	commands chan Command
}

// NewDriver returns a Driver for m.
func NewDriver(m *Machine) *Driver {
	return &Driver{machine: m, commands: make(chan Command, commandBuffer)}
}

// Send queues cmd without blocking. It returns false when the queue is full
// or ctx is done.
func (d *Driver) Send(ctx context.Context, cmd Command) bool {
	return eventq.OfferContext(ctx, d.commands, cmd)
}

// Run consumes ticks and commands until the session finishes, is cancelled,
// or ctx is done. onUpdate, if set, sees the state after every event.
func (d *Driver) Run(ctx context.Context, ticks <-chan time.Time, onUpdate func(Snapshot)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticks:
			d.machine.Tick()
		case cmd := <-d.commands:
			d.apply(cmd)
		}
		snap := d.machine.Snapshot()
		if onUpdate != nil {
			onUpdate(snap)
		}
		if snap.Phase == model.PhaseFinished || snap.Phase == model.PhaseIdle {
			return nil
		}
	}
}

func (d *Driver) apply(cmd Command) {
	switch cmd {
	case CmdAdvance:
		d.machine.Advance()
	case CmdTogglePause:
		d.machine.TogglePause()
	case CmdSkipCountdown:
		d.machine.SkipCountdown()
	case CmdCancel:
		d.machine.Cancel()
	}
}
