package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/verte-zerg/tuifit/internal/model"
)

type memorySink struct {
	mu   sync.Mutex
	runs []model.RunRecord
	err  error
}

func (s *memorySink) InsertRun(_ context.Context, run model.RunRecord) (model.RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return model.RunRecord{}, s.err
	}
	s.runs = append(s.runs, run)
	return run, nil
}

func fixedClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}

func transition(from, to model.Phase, index, total, elapsed int) model.Transition {
	return model.Transition{
		From:        from,
		To:          to,
		WorkoutID:   "hiit",
		WorkoutName: "HIIT",
		Index:       index,
		Total:       total,
		Elapsed:     elapsed,
	}
}

func TestRecorderFinishedRun(t *testing.T) {
	sink := &memorySink{}
	start := time.Date(2026, 5, 1, 7, 0, 0, 0, time.UTC)
	rec := newRecorder(sink, fixedClock(start, start.Add(3*time.Minute)), nil)

	rec.Observe(transition(model.PhaseIdle, model.PhasePreCountdown, 0, 4, 0))
	rec.Observe(transition(model.PhasePreCountdown, model.PhaseInStep, 0, 4, 0))
	rec.Observe(transition(model.PhaseInStep, model.PhaseFinished, 4, 4, 170))
	rec.Observe(transition(model.PhaseFinished, model.PhaseIdle, 0, 0, 0))
	rec.Close()

	if len(sink.runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(sink.runs))
	}
	run := sink.runs[0]
	if run.Status != model.RunFinished || run.StepsDone != 4 || run.StepsTotal != 4 || run.ActiveSeconds != 170 {
		t.Fatalf("unexpected run: %+v", run)
	}
	if !run.StartedAt.Equal(start) || !run.EndedAt.Equal(start.Add(3*time.Minute)) {
		t.Fatalf("unexpected times: %v %v", run.StartedAt, run.EndedAt)
	}
	if run.RunID == "" {
		t.Fatalf("expected run id")
	}
}

func TestRecorderCancelledRun(t *testing.T) {
	sink := &memorySink{}
	rec := NewRecorder(sink, nil)

	rec.Observe(transition(model.PhaseIdle, model.PhasePreCountdown, 0, 4, 0))
	rec.Observe(transition(model.PhasePreCountdown, model.PhaseInStep, 0, 4, 0))
	rec.Observe(transition(model.PhaseInStep, model.PhaseIdle, 2, 4, 61))
	rec.Close()

	if len(sink.runs) != 1 || sink.runs[0].Status != model.RunCancelled || sink.runs[0].StepsDone != 2 {
		t.Fatalf("unexpected runs: %+v", sink.runs)
	}
}

func TestRecorderSkipsCountdownAbort(t *testing.T) {
	sink := &memorySink{}
	rec := NewRecorder(sink, nil)

	rec.Observe(transition(model.PhaseIdle, model.PhasePreCountdown, 0, 4, 0))
	rec.Observe(transition(model.PhasePreCountdown, model.PhaseIdle, 0, 4, 0))
	rec.Close()

	if len(sink.runs) != 0 {
		t.Fatalf("expected no runs, got %+v", sink.runs)
	}
}

func TestRecorderReportsSinkErrors(t *testing.T) {
	sink := &memorySink{err: errors.New("disk full")}
	var mu sync.Mutex
	var errs []error
	rec := NewRecorder(sink, func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, err)
	})

	rec.Observe(transition(model.PhaseIdle, model.PhasePreCountdown, 0, 1, 0))
	rec.Observe(transition(model.PhaseInStep, model.PhaseFinished, 1, 1, 10))
	rec.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
}

func TestRecorderWritesToStore(t *testing.T) {
	st := openTestStore(t)
	rec := NewRecorder(st, nil)
	rec.Observe(transition(model.PhaseIdle, model.PhasePreCountdown, 0, 2, 0))
	rec.Observe(transition(model.PhaseInStep, model.PhaseFinished, 2, 2, 45))
	rec.Close()
	rec.Close()

	run, ok, err := st.LastRun(context.Background(), "hiit")
	if err != nil || !ok {
		t.Fatalf("last run: %v (ok=%v)", err, ok)
	}
	if run.ActiveSeconds != 45 || run.Status != model.RunFinished {
		t.Fatalf("unexpected stored run: %+v", run)
	}
}
