// Package session runs a workout as a tick-driven state machine.
package session

import (
	"sync"

	"github.com/verte-zerg/tuifit/internal/model"
	"github.com/verte-zerg/tuifit/internal/sequence"
)

// PreCountdownSeconds is the lead-in before the first step.
const PreCountdownSeconds = 5

// Catalog resolves workouts by id.
type Catalog interface {
	Lookup(id string) (model.WorkoutSpec, bool)
}

// CuePlayer receives audio cues. Implementations must not block.
type CuePlayer interface {
	Short()
	Long(ctx model.CueContext)
	Fanfare()
}

// Option configures a Machine.
type Option func(*Machine)

// WithPhaseListener registers fn for phase changes. fn runs while the machine
// is locked and must not call back into it.
func WithPhaseListener(fn func(model.Transition)) Option {
	return func(m *Machine) {
		if fn != nil {
			m.listeners = append(m.listeners, fn)
		}
	}
}

// Machine owns the state of one guided session at a time. All methods are
// safe for concurrent use; invalid commands are silently ignored.
type Machine struct {
	mu        sync.Mutex
	catalog   Catalog
	cues      CuePlayer
	listeners []func(model.Transition)
	disposed  bool

	workout      model.WorkoutSpec
	steps        []model.Step
	index        int
	phase        model.Phase
	preRemaining int
	remaining    int
	paused       bool
	elapsed      int
}

// New returns an idle Machine.
func New(catalog Catalog, cues CuePlayer, opts ...Option) *Machine {
	if cues == nil {
		cues = noCues{}
	}
	m := &Machine{catalog: catalog, cues: cues}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SelectWorkout builds the workout's steps and starts the pre-countdown.
// It reports false, leaving the machine untouched, when not idle or when the
// id is unknown.
func (m *Machine) SelectWorkout(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed || m.phase != model.PhaseIdle || m.catalog == nil {
		return false
	}
	w, ok := m.catalog.Lookup(id)
	if !ok {
		return false
	}
	m.workout = w
	m.steps = sequence.Build(w)
	m.index = 0
	m.preRemaining = PreCountdownSeconds
	m.remaining = 0
	m.paused = false
	m.elapsed = 0
	m.setPhase(model.PhasePreCountdown)
	return true
}

// Cancel abandons the session from any non-idle phase.
func (m *Machine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed || m.phase == model.PhaseIdle {
		return
	}
	m.setPhase(model.PhaseIdle)
	m.clear()
}

// Reset returns the machine to idle regardless of its phase.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != model.PhaseIdle {
		m.setPhase(model.PhaseIdle)
	}
	m.clear()
}

// Dispose resets the machine and detaches its collaborators. Every later
// command is a no-op.
func (m *Machine) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clear()
	m.phase = model.PhaseIdle
	m.disposed = true
	m.listeners = nil
	m.cues = noCues{}
	m.catalog = nil
}

// Tick applies one elapsed second.
func (m *Machine) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed || m.paused {
		return
	}
	switch m.phase {
	case model.PhasePreCountdown:
		v := m.preRemaining
		m.countdownCue(v, model.CueWorkEnd)
		if v <= 1 {
			m.preRemaining = 0
			m.enter(0)
			return
		}
		m.preRemaining--
	case model.PhaseInStep:
		m.elapsed++
		step := m.steps[m.index]
		if !step.Countdown() {
			return
		}
		if m.remaining > 0 {
			ctx := model.CueWorkEnd
			if step.Kind == model.StepRest {
				ctx = model.CueRestEnd
			}
			m.countdownCue(m.remaining, ctx)
			m.remaining--
			return
		}
		m.enter(m.index + 1)
	}
}

// Advance completes the current repetition-based step. It is ignored for
// clock-driven steps, which advance on their own.
func (m *Machine) Advance() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed || m.phase != model.PhaseInStep {
		return
	}
	if m.steps[m.index].Countdown() {
		return
	}
	m.enter(m.index + 1)
}

// TogglePause flips the pause flag during the pre-countdown or a step.
func (m *Machine) TogglePause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return
	}
	if m.phase != model.PhasePreCountdown && m.phase != model.PhaseInStep {
		return
	}
	m.paused = !m.paused
}

// SkipCountdown shortens the pre-countdown so the next tick starts the
// first step.
func (m *Machine) SkipCountdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed || m.phase != model.PhasePreCountdown {
		return
	}
	m.preRemaining = 1
}

// enter moves to step i, or finishes when i is past the end.
func (m *Machine) enter(i int) {
	if i >= len(m.steps) {
		m.index = len(m.steps)
		m.remaining = 0
		m.paused = false
		m.setPhase(model.PhaseFinished)
		m.cues.Fanfare()
		return
	}
	m.index = i
	m.remaining = 0
	if step := m.steps[i]; step.Countdown() {
		m.remaining = step.Seconds
	}
	m.paused = false
	m.setPhase(model.PhaseInStep)
}

func (m *Machine) countdownCue(v int, ctx model.CueContext) {
	switch {
	case v == 1:
		m.cues.Long(ctx)
	case v > 1 && v <= 5:
		m.cues.Short()
	}
}

func (m *Machine) setPhase(next model.Phase) {
	prev := m.phase
	m.phase = next
	if prev == next {
		return
	}
	tr := model.Transition{
		From:        prev,
		To:          next,
		WorkoutID:   m.workout.ID,
		WorkoutName: m.workout.Name,
		Index:       m.index,
		Total:       len(m.steps),
		Elapsed:     m.elapsed,
	}
	for _, fn := range m.listeners {
		fn(tr)
	}
}

func (m *Machine) clear() {
	m.workout = model.WorkoutSpec{}
	m.steps = nil
	m.index = 0
	m.preRemaining = 0
	m.remaining = 0
	m.paused = false
	m.elapsed = 0
}

type noCues struct{}

func (noCues) Short()                  {}
func (noCues) Long(_ model.CueContext) {}
func (noCues) Fanfare()                {}
