package session

import (
	"github.com/verte-zerg/tuifit/internal/model"
	"github.com/verte-zerg/tuifit/internal/sequence"
)

// Snapshot is a read-only view of a Machine for rendering.
type Snapshot struct {
	Phase       model.Phase
	WorkoutID   string
	WorkoutName string

	Step    model.Step
	HasStep bool
	Next    model.Step
	HasNext bool

	Index        int
	Total        int
	Remaining    int
	PreRemaining int
	Paused       bool
	Elapsed      int

	Progress sequence.Fractions
}

// Snapshot returns the current state with derived progress.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := Snapshot{
		Phase:        m.phase,
		WorkoutID:    m.workout.ID,
		WorkoutName:  m.workout.Name,
		Index:        m.index,
		Total:        len(m.steps),
		Remaining:    m.remaining,
		PreRemaining: m.preRemaining,
		Paused:       m.paused,
		Elapsed:      m.elapsed,
	}
	if m.phase == model.PhaseInStep && m.index < len(m.steps) {
		snap.Step = m.steps[m.index]
		snap.HasStep = true
	}
	switch m.phase {
	case model.PhasePreCountdown:
		if len(m.steps) > 0 {
			snap.Next = m.steps[0]
			snap.HasNext = true
		}
	case model.PhaseInStep:
		snap.Next, snap.HasNext = sequence.NextWork(m.steps, m.index)
	}
	if m.phase == model.PhaseInStep || m.phase == model.PhaseFinished {
		snap.Progress = sequence.Progress(m.steps, m.index, m.remaining)
	}
	return snap
}

// Steps returns a copy of the active step sequence.
func (m *Machine) Steps() []model.Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Step, len(m.steps))
	copy(out, m.steps)
	return out
}

// ManualStep reports whether the current step waits for Advance.
func (s Snapshot) ManualStep() bool {
	return s.HasStep && !s.Step.Countdown()
}
