package session

import (
	"reflect"
	"testing"

	"github.com/verte-zerg/tuifit/internal/model"
)

type fakeCatalog map[string]model.WorkoutSpec

func (c fakeCatalog) Lookup(id string) (model.WorkoutSpec, bool) {
	w, ok := c[id]
	return w, ok
}

type cueRecorder struct {
	calls []string
}

func (r *cueRecorder) Short() { r.calls = append(r.calls, "short") }

func (r *cueRecorder) Long(ctx model.CueContext) {
	if ctx == model.CueRestEnd {
		r.calls = append(r.calls, "long-rest")
		return
	}
	r.calls = append(r.calls, "long-work")
}

func (r *cueRecorder) Fanfare() { r.calls = append(r.calls, "fanfare") }

func newMachine(w model.WorkoutSpec, opts ...Option) (*Machine, *cueRecorder) {
	cues := &cueRecorder{}
	return New(fakeCatalog{w.ID: w}, cues, opts...), cues
}

// startSession selects w and runs through the pre-countdown.
func startSession(t *testing.T, w model.WorkoutSpec, opts ...Option) (*Machine, *cueRecorder) {
	t.Helper()
	m, cues := newMachine(w, opts...)
	if !m.SelectWorkout(w.ID) {
		t.Fatalf("select workout %q failed", w.ID)
	}
	ticks(m, PreCountdownSeconds)
	if got := m.Snapshot().Phase; got != model.PhaseInStep && got != model.PhaseFinished {
		t.Fatalf("expected session to start, phase %v", got)
	}
	cues.calls = nil
	return m, cues
}

func ticks(m *Machine, n int) {
	for i := 0; i < n; i++ {
		m.Tick()
	}
}

func timedWorkout(id string, work, rest, repeat int) model.WorkoutSpec {
	return model.WorkoutSpec{
		ID:   id,
		Name: id,
		Exercises: []model.ExerciseSpec{
			{Name: "ex", Description: "d", WorkSeconds: work, RestSeconds: rest, RepeatCount: repeat},
		},
	}
}

func TestSelectWorkoutStartsPreCountdown(t *testing.T) {
	m, cues := newMachine(timedWorkout("w", 30, 10, 1))
	if !m.SelectWorkout("w") {
		t.Fatalf("expected selection to succeed")
	}
	snap := m.Snapshot()
	if snap.Phase != model.PhasePreCountdown || snap.PreRemaining != 5 || snap.Index != 0 || snap.Paused {
		t.Fatalf("unexpected snapshot after select: %+v", snap)
	}
	if snap.Progress.Global != 0 || snap.Progress.Step != 0 {
		t.Fatalf("expected zero progress before start: %+v", snap.Progress)
	}
	for want := 4; want >= 1; want-- {
		m.Tick()
		if got := m.Snapshot().PreRemaining; got != want {
			t.Fatalf("expected pre-countdown %d, got %d", want, got)
		}
	}
	m.Tick()
	snap = m.Snapshot()
	if snap.Phase != model.PhaseInStep || snap.Remaining != 30 || snap.PreRemaining != 0 {
		t.Fatalf("unexpected snapshot after countdown: %+v", snap)
	}
	want := []string{"short", "short", "short", "short", "long-work"}
	if !reflect.DeepEqual(cues.calls, want) {
		t.Fatalf("unexpected cues: %v", cues.calls)
	}
}

func TestSingleTimedExerciseFinishes(t *testing.T) {
	m, cues := startSession(t, timedWorkout("w", 30, 10, 1))
	if total := m.Snapshot().Total; total != 1 {
		t.Fatalf("expected terminal rest to be dropped, total %d", total)
	}
	ticks(m, 30)
	snap := m.Snapshot()
	if snap.Phase != model.PhaseInStep || snap.Remaining != 0 {
		t.Fatalf("expected countdown to reach zero in step: %+v", snap)
	}
	m.Tick()
	snap = m.Snapshot()
	if snap.Phase != model.PhaseFinished {
		t.Fatalf("expected finished, got %v", snap.Phase)
	}
	if snap.Index != 1 || snap.HasStep {
		t.Fatalf("unexpected finished snapshot: %+v", snap)
	}
	if snap.Progress.Global != 1 {
		t.Fatalf("expected full progress, got %v", snap.Progress.Global)
	}
	want := []string{"short", "short", "short", "short", "long-work", "fanfare"}
	if !reflect.DeepEqual(cues.calls, want) {
		t.Fatalf("unexpected cues: %v", cues.calls)
	}
}

func TestTickDecrementsWithoutPhaseChange(t *testing.T) {
	m, _ := startSession(t, timedWorkout("w", 8, 0, 1))
	for r := 8; r > 0; r-- {
		before := m.Snapshot()
		if before.Remaining != r {
			t.Fatalf("expected remaining %d, got %d", r, before.Remaining)
		}
		m.Tick()
		after := m.Snapshot()
		if after.Remaining != r-1 || after.Phase != before.Phase || after.Index != before.Index {
			t.Fatalf("tick at %d: unexpected state %+v", r, after)
		}
	}
}

func TestRestStepUsesRestCue(t *testing.T) {
	m, cues := startSession(t, timedWorkout("w", 1, 2, 2))
	// work(1): tick to 0, tick to advance into rest(2)
	ticks(m, 2)
	snap := m.Snapshot()
	if snap.Step.Kind != model.StepRest || snap.Remaining != 2 {
		t.Fatalf("expected rest step with 2s, got %+v", snap)
	}
	if !snap.HasNext || snap.Next.Title != "ex" {
		t.Fatalf("expected upcoming exercise during rest: %+v", snap)
	}
	ticks(m, 3)
	snap = m.Snapshot()
	if snap.Step.Kind != model.StepWork || snap.Index != 2 {
		t.Fatalf("expected second work step, got %+v", snap)
	}
	want := []string{"long-work", "short", "long-rest"}
	if !reflect.DeepEqual(cues.calls, want) {
		t.Fatalf("unexpected cues: %v", cues.calls)
	}
}

func TestPauseFreezesRest(t *testing.T) {
	m, _ := startSession(t, timedWorkout("w", 2, 5, 2))
	ticks(m, 3)
	ticks(m, 2)
	snap := m.Snapshot()
	if snap.Step.Kind != model.StepRest || snap.Remaining != 3 {
		t.Fatalf("expected rest with 3s remaining, got %+v", snap)
	}
	m.TogglePause()
	ticks(m, 5)
	frozen := m.Snapshot()
	if !frozen.Paused || frozen.Remaining != 3 || frozen.Index != snap.Index || frozen.Phase != snap.Phase {
		t.Fatalf("expected frozen state, got %+v", frozen)
	}
	m.TogglePause()
	m.Tick()
	if got := m.Snapshot().Remaining; got != 2 {
		t.Fatalf("expected remaining 2 after resume, got %d", got)
	}
}

func TestPauseFreezesPreCountdown(t *testing.T) {
	m, cues := newMachine(timedWorkout("w", 10, 0, 1))
	m.SelectWorkout("w")
	m.Tick()
	m.TogglePause()
	ticks(m, 20)
	snap := m.Snapshot()
	if snap.Phase != model.PhasePreCountdown || snap.PreRemaining != 4 {
		t.Fatalf("expected frozen pre-countdown, got %+v", snap)
	}
	if len(cues.calls) != 1 {
		t.Fatalf("expected no cues while paused, got %v", cues.calls)
	}
}

func TestRepsStepWaitsForAdvance(t *testing.T) {
	w := model.WorkoutSpec{
		ID: "w",
		Exercises: []model.ExerciseSpec{
			{Name: "squat", Description: "d", Reps: 15},
			{Name: "plank", Description: "d", WorkSeconds: 10},
		},
	}
	m, cues := startSession(t, w)
	if !m.Snapshot().ManualStep() {
		t.Fatalf("expected manual step")
	}
	ticks(m, 100)
	snap := m.Snapshot()
	if snap.Index != 0 || snap.Step.Reps != 15 {
		t.Fatalf("ticks must not leave a reps step: %+v", snap)
	}
	if snap.Progress.Step != 0 {
		t.Fatalf("expected no step progress for reps, got %v", snap.Progress.Step)
	}
	if len(cues.calls) != 0 {
		t.Fatalf("expected no cues on reps step, got %v", cues.calls)
	}
	m.Advance()
	snap = m.Snapshot()
	if snap.Index != 1 || snap.Remaining != 10 || !snap.Step.Timed {
		t.Fatalf("expected timed step after advance: %+v", snap)
	}
	m.Advance()
	if got := m.Snapshot(); got.Index != 1 || got.Remaining != 10 {
		t.Fatalf("advance on timed step must be ignored: %+v", got)
	}
}

func TestAdvanceLastRepsStepFinishes(t *testing.T) {
	w := model.WorkoutSpec{ID: "w", Exercises: []model.ExerciseSpec{{Name: "squat", Description: "d", RestSeconds: 30}}}
	m, cues := startSession(t, w)
	m.TogglePause()
	m.Advance()
	snap := m.Snapshot()
	if snap.Phase != model.PhaseFinished || snap.Paused {
		t.Fatalf("expected finished, got %+v", snap)
	}
	if !reflect.DeepEqual(cues.calls, []string{"fanfare"}) {
		t.Fatalf("unexpected cues: %v", cues.calls)
	}
}

func TestSelectUnknownWorkoutIsNoop(t *testing.T) {
	m, _ := newMachine(timedWorkout("w", 10, 0, 1))
	if m.SelectWorkout("missing-id") {
		t.Fatalf("expected unknown id to be rejected")
	}
	if got := m.Snapshot(); got.Phase != model.PhaseIdle || got.Total != 0 {
		t.Fatalf("expected idle machine, got %+v", got)
	}
}

func TestSelectOnlyFromIdle(t *testing.T) {
	m, _ := newMachine(timedWorkout("w", 10, 0, 1))
	m.SelectWorkout("w")
	m.Tick()
	if m.SelectWorkout("w") {
		t.Fatalf("expected select to be ignored outside idle")
	}
	if got := m.Snapshot().PreRemaining; got != 4 {
		t.Fatalf("pre-countdown should be untouched, got %d", got)
	}
}

func TestCancelReturnsToIdle(t *testing.T) {
	var transitions []model.Transition
	listener := WithPhaseListener(func(tr model.Transition) {
		transitions = append(transitions, tr)
	})
	m, _ := startSession(t, timedWorkout("w", 10, 5, 3), listener)
	ticks(m, 4)
	m.TogglePause()
	m.Cancel()
	snap := m.Snapshot()
	if snap.Phase != model.PhaseIdle || snap.Total != 0 || snap.Remaining != 0 || snap.Paused || snap.WorkoutID != "" {
		t.Fatalf("expected cleared idle state, got %+v", snap)
	}
	ticks(m, 10)
	if got := m.Snapshot(); got.Phase != model.PhaseIdle || got.Remaining != 0 {
		t.Fatalf("ticks after cancel must be no-ops: %+v", got)
	}
	last := transitions[len(transitions)-1]
	if last.From != model.PhaseInStep || last.To != model.PhaseIdle || last.WorkoutID != "w" || last.Total != 5 {
		t.Fatalf("unexpected cancel transition: %+v", last)
	}
	if last.Elapsed != 4 {
		t.Fatalf("expected 4 elapsed seconds, got %d", last.Elapsed)
	}
	m.Cancel()
	if len(transitions) != 3 {
		t.Fatalf("cancel while idle must not notify, got %d transitions", len(transitions))
	}
}

func TestCancelFromFinished(t *testing.T) {
	m, _ := startSession(t, timedWorkout("w", 1, 0, 1))
	ticks(m, 2)
	if m.Snapshot().Phase != model.PhaseFinished {
		t.Fatalf("expected finished")
	}
	m.TogglePause()
	if m.Snapshot().Paused {
		t.Fatalf("pause must be ignored when finished")
	}
	m.Cancel()
	if m.Snapshot().Phase != model.PhaseIdle {
		t.Fatalf("expected idle after cancel")
	}
	if !m.SelectWorkout("w") {
		t.Fatalf("expected a new selection after returning to idle")
	}
}

func TestEmptySequenceFinishesAfterCountdown(t *testing.T) {
	m, cues := newMachine(model.WorkoutSpec{ID: "empty"})
	m.SelectWorkout("empty")
	if m.Snapshot().Phase != model.PhasePreCountdown {
		t.Fatalf("expected pre-countdown for empty sequence")
	}
	ticks(m, PreCountdownSeconds)
	snap := m.Snapshot()
	if snap.Phase != model.PhaseFinished || snap.Progress.Global != 0 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if cues.calls[len(cues.calls)-1] != "fanfare" {
		t.Fatalf("expected fanfare, got %v", cues.calls)
	}
}

func TestSkipCountdown(t *testing.T) {
	m, cues := newMachine(timedWorkout("w", 10, 0, 1))
	m.SkipCountdown()
	if m.Snapshot().Phase != model.PhaseIdle {
		t.Fatalf("skip must be ignored while idle")
	}
	m.SelectWorkout("w")
	m.SkipCountdown()
	m.Tick()
	if m.Snapshot().Phase != model.PhaseInStep {
		t.Fatalf("expected step after skipped countdown")
	}
	if !reflect.DeepEqual(cues.calls, []string{"long-work"}) {
		t.Fatalf("unexpected cues: %v", cues.calls)
	}
}

func TestPhaseListenerSequence(t *testing.T) {
	var got []model.Phase
	m, _ := newMachine(timedWorkout("w", 1, 1, 2), WithPhaseListener(func(tr model.Transition) {
		got = append(got, tr.To)
	}))
	m.SelectWorkout("w")
	ticks(m, 20)
	want := []model.Phase{model.PhasePreCountdown, model.PhaseInStep, model.PhaseFinished}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected transitions: %v", got)
	}
}

func TestProgressStaysInBounds(t *testing.T) {
	w := model.WorkoutSpec{
		ID:          "w",
		RepeatCount: 2,
		Exercises: []model.ExerciseSpec{
			{Name: "a", Description: "d", WorkSeconds: 3, RestSeconds: 2, RepeatCount: 2},
			{Name: "b", Description: "d", Reps: 5, RestSeconds: 1},
		},
	}
	m, _ := newMachine(w)
	m.SelectWorkout("w")
	prev := 0.0
	for i := 0; i < 200; i++ {
		snap := m.Snapshot()
		if snap.Phase == model.PhaseFinished {
			break
		}
		p := snap.Progress
		if p.Global < 0 || p.Global > 1 || p.Step < 0 || p.Step > 1 {
			t.Fatalf("progress out of bounds: %+v", p)
		}
		if p.Global < prev {
			t.Fatalf("global progress went backwards: %v -> %v", prev, p.Global)
		}
		prev = p.Global
		if snap.ManualStep() {
			m.Advance()
			continue
		}
		m.Tick()
	}
	if m.Snapshot().Phase != model.PhaseFinished {
		t.Fatalf("expected session to finish")
	}
}

func TestDisposeMakesCommandsNoops(t *testing.T) {
	m, cues := newMachine(timedWorkout("w", 10, 0, 1))
	m.SelectWorkout("w")
	m.Dispose()
	if m.SelectWorkout("w") {
		t.Fatalf("expected disposed machine to ignore select")
	}
	ticks(m, 10)
	if got := m.Snapshot(); got.Phase != model.PhaseIdle {
		t.Fatalf("expected idle after dispose, got %v", got.Phase)
	}
	if len(cues.calls) != 0 {
		t.Fatalf("expected no cues after dispose, got %v", cues.calls)
	}
}
