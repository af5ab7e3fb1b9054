// Package model defines shared data structures.
package model

import "time"

// DefaultReps is used when a repetition-based exercise does not state a count.
const DefaultReps = 10

// ExerciseSpec is one exercise of a workout.
type ExerciseSpec struct {
	Name        string
	Description string
	MediaRef    string
	// WorkSeconds > 0 makes the exercise timed; otherwise it is repetition-based.
	WorkSeconds int
	// Reps is the repetition count; 0 means unspecified.
	Reps        int
	RestSeconds int
	// RepeatCount is the number of consecutive work+rest rounds; 0 means 1.
	RepeatCount int
}

// Timed reports whether the exercise is timed.
func (e ExerciseSpec) Timed() bool {
	return e.WorkSeconds > 0
}

// RepCount returns the repetition count, applying DefaultReps when unset.
func (e ExerciseSpec) RepCount() int {
	if e.Reps > 0 {
		return e.Reps
	}
	return DefaultReps
}

// Repeats returns the exercise repeat count, at least 1.
func (e ExerciseSpec) Repeats() int {
	if e.RepeatCount > 0 {
		return e.RepeatCount
	}
	return 1
}

// WorkoutSpec is a validated workout definition.
type WorkoutSpec struct {
	ID          string
	Name        string
	Difficulty  int
	RepeatCount int
	Exercises   []ExerciseSpec
	// Source is the file the workout was loaded from, or "builtin".
	Source string
}

// Repeats returns the workout repeat count, at least 1.
func (w WorkoutSpec) Repeats() int {
	if w.RepeatCount > 0 {
		return w.RepeatCount
	}
	return 1
}

// StepKind distinguishes work and rest steps.
type StepKind int

const (
	StepWork StepKind = iota
	StepRest
)

func (k StepKind) String() string {
	switch k {
	case StepWork:
		return "work"
	case StepRest:
		return "rest"
	default:
		return "unknown"
	}
}

// Step is one unit of a flattened session.
type Step struct {
	Kind StepKind

	WorkoutRepeat  int
	Exercise       int
	ExerciseRepeat int

	Title       string
	Description string
	MediaRef    string

	// Timed is true for timed work steps. Rest steps are always counted down
	// but leave Timed false.
	Timed bool
	// Seconds is the duration of a timed work step or a rest step.
	Seconds int
	// Reps is set for repetition-based work steps.
	Reps int
}

// Countdown reports whether the step is driven by the clock.
func (s Step) Countdown() bool {
	return s.Kind == StepRest || s.Timed
}

// CueContext selects the tone of a long cue.
type CueContext int

const (
	CueWorkEnd CueContext = iota
	CueRestEnd
)

// Phase is the coarse state of a session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePreCountdown
	PhaseInStep
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePreCountdown:
		return "pre-countdown"
	case PhaseInStep:
		return "in-step"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Transition describes a phase change of a session.
type Transition struct {
	From        Phase
	To          Phase
	WorkoutID   string
	WorkoutName string
	Index       int
	Total       int
	Elapsed     int
}

// Run statuses stored in history.
const (
	RunFinished  = "finished"
	RunCancelled = "cancelled"
)

// RunRecord captures one workout run.
type RunRecord struct {
	ID            int64
	RunID         string
	WorkoutID     string
	WorkoutName   string
	StartedAt     time.Time
	EndedAt       time.Time
	Status        string
	StepsDone     int
	StepsTotal    int
	ActiveSeconds int
}

// HistoryFilter defines filters for run history.
type HistoryFilter struct {
	WorkoutID string
	Since     *time.Time
	Last      int
}
