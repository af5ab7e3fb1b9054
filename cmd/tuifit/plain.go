package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/verte-zerg/tuifit/internal/model"
	"github.com/verte-zerg/tuifit/internal/sequence"
	"github.com/verte-zerg/tuifit/internal/session"
)

// runPlain drives a session from ticks and line commands on in, printing a
// status line whenever it changes.
func runPlain(ctx context.Context, out io.Writer, in io.Reader, machine *session.Machine, id string, ticks <-chan time.Time) error {
	if !machine.SelectWorkout(id) {
		return fmt.Errorf("unknown workout %q (see: tuifit list)", id)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	driver := session.NewDriver(machine)
	// The reader may stay blocked on in after the session ends.
	go readCommands(ctx, in, driver)

	last := ""
	show := func(snap session.Snapshot) {
		line := statusLine(snap)
		if line == "" || line == last {
			return
		}
		last = line
		if _, err := fmt.Fprintln(out, line); err != nil {
			logErrf("failed to write status: %v\n", err)
		}
	}
	show(machine.Snapshot())

	err := driver.Run(ctx, ticks, show)
	if errors.Is(err, context.Canceled) {
		machine.Cancel()
		show(machine.Snapshot())
		return nil
	}
	return err
}

func readCommands(ctx context.Context, in io.Reader, driver *session.Driver) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		cmd, ok := parseCommand(scanner.Text())
		if !ok {
			logErrln("unknown command (enter, p, s, q)")
			continue
		}
		if !driver.Send(ctx, cmd) {
			return
		}
	}
}

func parseCommand(line string) (session.Command, bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return session.CmdAdvance, true
	case "p":
		return session.CmdTogglePause, true
	case "s":
		return session.CmdSkipCountdown, true
	case "q":
		return session.CmdCancel, true
	}
	return 0, false
}

func statusLine(snap session.Snapshot) string {
	paused := ""
	if snap.Paused {
		paused = " [paused]"
	}
	switch snap.Phase {
	case model.PhasePreCountdown:
		return fmt.Sprintf("%s starts in %d%s", snap.WorkoutName, snap.PreRemaining, paused)
	case model.PhaseInStep:
		if !snap.HasStep {
			return ""
		}
		prefix := fmt.Sprintf("[%d/%d] %s", snap.Index+1, snap.Total, snap.Step.Title)
		if snap.ManualStep() {
			return fmt.Sprintf("%s × %d (press enter when done)%s", prefix, snap.Step.Reps, paused)
		}
		line := fmt.Sprintf("%s %s%s", prefix, sequence.FormatClock(snap.Remaining), paused)
		if snap.Step.Kind == model.StepRest && snap.HasNext {
			line += " · next: " + snap.Next.Title
		}
		return line
	case model.PhaseFinished:
		return fmt.Sprintf("%s complete: %d steps, %s active", snap.WorkoutName, snap.Total, sequence.FormatClock(snap.Elapsed))
	default:
		return "Workout stopped."
	}
}
