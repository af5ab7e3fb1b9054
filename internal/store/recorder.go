package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuifit/internal/eventq"
	"github.com/verte-zerg/tuifit/internal/model"
)

const recorderQueue = 8

// RunSink persists finished or cancelled runs.
type RunSink interface {
	InsertRun(ctx context.Context, run model.RunRecord) (model.RunRecord, error)
}

// Recorder turns session phase transitions into run history. Observe is
// meant to be registered as the phase listener of a single machine; writes
// happen on a background goroutine so the listener never blocks.
type Recorder struct {
	sink  RunSink
	now   func() time.Time
	onErr func(error)

	queue     chan model.RunRecord
	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	runID   string
	started time.Time
	active  bool
}

// NewRecorder starts a Recorder writing to sink. onErr may be nil.
func NewRecorder(sink RunSink, onErr func(error)) *Recorder {
	return newRecorder(sink, time.Now, onErr)
}

func newRecorder(sink RunSink, now func() time.Time, onErr func(error)) *Recorder {
	if onErr == nil {
		onErr = func(error) {}
	}
	r := &Recorder{
		sink:  sink,
		now:   now,
		onErr: onErr,
		queue: make(chan model.RunRecord, recorderQueue),
		done:  make(chan struct{}),
	}
	go r.loop()
	return r
}

// Observe consumes a phase transition.
func (r *Recorder) Observe(tr model.Transition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case tr.From == model.PhaseIdle && tr.To == model.PhasePreCountdown:
		r.runID = uuid.NewString()
		r.started = r.now()
		r.active = true
	case tr.To == model.PhaseFinished:
		r.emit(tr, model.RunFinished)
	case tr.To == model.PhaseIdle && tr.From == model.PhasePreCountdown:
		// Abandoned before the first step; nothing worth keeping.
		r.active = false
	case tr.To == model.PhaseIdle && tr.From == model.PhaseInStep:
		r.emit(tr, model.RunCancelled)
	}
}

func (r *Recorder) emit(tr model.Transition, status string) {
	if !r.active {
		return
	}
	r.active = false
	run := model.RunRecord{
		RunID:         r.runID,
		WorkoutID:     tr.WorkoutID,
		WorkoutName:   tr.WorkoutName,
		StartedAt:     r.started,
		EndedAt:       r.now(),
		Status:        status,
		StepsDone:     tr.Index,
		StepsTotal:    tr.Total,
		ActiveSeconds: tr.Elapsed,
	}
	if !eventq.Offer(r.queue, run) {
		r.onErr(fmt.Errorf("history queue unavailable; dropped run %s", run.RunID))
	}
}

// Close flushes pending runs and stops the writer.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		close(r.queue)
	})
	<-r.done
}

func (r *Recorder) loop() {
	defer close(r.done)
	for run := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if _, err := r.sink.InsertRun(ctx, run); err != nil {
			r.onErr(fmt.Errorf("failed to save run: %w", err))
		}
		cancel()
	}
}
