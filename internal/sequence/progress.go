package sequence

import (
	"fmt"

	"github.com/verte-zerg/tuifit/internal/model"
)

// Fractions holds session-wide and current-step progress, both in [0,1].
type Fractions struct {
	Global float64
	Step   float64
}

// Progress derives progress fractions from a sequence position.
func Progress(steps []model.Step, index, remaining int) Fractions {
	if len(steps) == 0 {
		return Fractions{}
	}
	stepFrac := 0.0
	if index >= 0 && index < len(steps) {
		stepFrac = StepFraction(steps[index], remaining)
	}
	global := (float64(index) + stepFrac) / float64(len(steps))
	return Fractions{Global: clamp01(global), Step: stepFrac}
}

// StepFraction returns how much of a clock-driven step has elapsed.
// Repetition-based steps have no time base and always report 0.
func StepFraction(step model.Step, remaining int) float64 {
	if !step.Countdown() || step.Seconds <= 0 {
		return 0
	}
	d := float64(step.Seconds)
	return clamp01((d - float64(remaining)) / d)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FormatClock renders seconds as mm:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
