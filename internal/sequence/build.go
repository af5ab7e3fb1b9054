// Package sequence flattens workouts into steps and computes progress.
package sequence

import "github.com/verte-zerg/tuifit/internal/model"

// Build expands a validated workout into its ordered step sequence.
//
// Rest steps are emitted after each work step when the exercise declares a
// positive rest, except after the very last work step of the session.
func Build(w model.WorkoutSpec) []model.Step {
	workoutRepeats := w.Repeats()
	steps := make([]model.Step, 0, estimateLen(w))
	for wr := 0; wr < workoutRepeats; wr++ {
		for ei, ex := range w.Exercises {
			exRepeats := ex.Repeats()
			for er := 0; er < exRepeats; er++ {
				steps = append(steps, workStep(ex, wr, ei, er))
				isLast := wr == workoutRepeats-1 && ei == len(w.Exercises)-1 && er == exRepeats-1
				if isLast || ex.RestSeconds <= 0 {
					continue
				}
				steps = append(steps, model.Step{
					Kind:           model.StepRest,
					WorkoutRepeat:  wr,
					Exercise:       ei,
					ExerciseRepeat: er,
					Title:          "Rest",
					Seconds:        ex.RestSeconds,
				})
			}
		}
	}
	return steps
}

func workStep(ex model.ExerciseSpec, wr, ei, er int) model.Step {
	step := model.Step{
		Kind:           model.StepWork,
		WorkoutRepeat:  wr,
		Exercise:       ei,
		ExerciseRepeat: er,
		Title:          ex.Name,
		Description:    ex.Description,
		MediaRef:       ex.MediaRef,
	}
	if ex.Timed() {
		step.Timed = true
		step.Seconds = ex.WorkSeconds
	} else {
		step.Reps = ex.RepCount()
	}
	return step
}

func estimateLen(w model.WorkoutSpec) int {
	n := 0
	for _, ex := range w.Exercises {
		n += ex.Repeats() * 2
	}
	return n * w.Repeats()
}

// TotalSeconds sums the durations of all clock-driven steps.
func TotalSeconds(steps []model.Step) int {
	total := 0
	for _, s := range steps {
		if s.Countdown() {
			total += s.Seconds
		}
	}
	return total
}

// NextWork returns the first work step after index.
func NextWork(steps []model.Step, index int) (model.Step, bool) {
	for i := index + 1; i < len(steps); i++ {
		if steps[i].Kind == model.StepWork {
			return steps[i], true
		}
	}
	return model.Step{}, false
}
