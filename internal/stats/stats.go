// Package stats contains run history summaries and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/tuifit/internal/model"
	"github.com/verte-zerg/tuifit/internal/sequence"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a set of runs.
type Summary struct {
	Runs          int
	Finished      int
	Cancelled     int
	ActiveSeconds int
}

// CompletionRate returns the share of finished runs.
func (s Summary) CompletionRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Finished) / float64(s.Runs)
}

// Summarize totals runs.
func Summarize(runs []model.RunRecord) Summary {
	var s Summary
	for _, r := range runs {
		s.Runs++
		s.ActiveSeconds += r.ActiveSeconds
		switch r.Status {
		case model.RunFinished:
			s.Finished++
		case model.RunCancelled:
			s.Cancelled++
		}
	}
	return s
}

// WorkoutAggregate summarizes runs of one workout.
type WorkoutAggregate struct {
	WorkoutID   string
	WorkoutName string
	Summary
}

// ByWorkout groups runs per workout, most runs first.
func ByWorkout(runs []model.RunRecord) []WorkoutAggregate {
	byID := map[string]*WorkoutAggregate{}
	var order []string
	for _, r := range runs {
		agg, ok := byID[r.WorkoutID]
		if !ok {
			agg = &WorkoutAggregate{WorkoutID: r.WorkoutID}
			byID[r.WorkoutID] = agg
			order = append(order, r.WorkoutID)
		}
		// Latest name wins.
		agg.WorkoutName = r.WorkoutName
		agg.Summary = agg.Summary.add(Summarize([]model.RunRecord{r}))
	}
	out := make([]WorkoutAggregate, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Runs == out[j].Runs {
			return out[i].WorkoutID < out[j].WorkoutID
		}
		return out[i].Runs > out[j].Runs
	})
	return out
}

func (s Summary) add(o Summary) Summary {
	return Summary{
		Runs:          s.Runs + o.Runs,
		Finished:      s.Finished + o.Finished,
		Cancelled:     s.Cancelled + o.Cancelled,
		ActiveSeconds: s.ActiveSeconds + o.ActiveSeconds,
	}
}

// FormatDuration renders seconds as h:mm:ss, or mm:ss below an hour.
func FormatDuration(seconds int) string {
	if seconds < 3600 {
		return sequence.FormatClock(seconds)
	}
	return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints a summary block for runs.
func RenderSummary(w io.Writer, runs []model.RunRecord) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	s := Summarize(runs)
	minutes := make([]float64, len(runs))
	for i, r := range runs {
		minutes[i] = float64(r.ActiveSeconds) / 60
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Runs: %d", s.Runs),
		fmt.Sprintf("Finished: %d", s.Finished),
		fmt.Sprintf("Cancelled: %d", s.Cancelled),
		fmt.Sprintf("Completion: %.1f%%", s.CompletionRate()*100),
		fmt.Sprintf("Active time: %s", FormatDuration(s.ActiveSeconds)),
		fmt.Sprintf("Trend: %s", Sparkline(minutes)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderWorkoutTable prints per-workout aggregates.
func RenderWorkoutTable(w io.Writer, runs []model.RunRecord, width int) error {
	aggs := ByWorkout(runs)
	if len(aggs) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Per Workout"); err != nil {
		return err
	}
	headers := []string{"Workout", "Runs", "Finished", "Active"}
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, []string{
			agg.WorkoutName,
			fmt.Sprintf("%d", agg.Runs),
			fmt.Sprintf("%d", agg.Finished),
			FormatDuration(agg.ActiveSeconds),
		})
	}
	return writeTable(w, headers, rows, map[int]bool{1: true, 2: true, 3: true}, width)
}

// RenderRunTable prints one row per run.
func RenderRunTable(w io.Writer, runs []model.RunRecord, width int) error {
	if len(runs) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Runs"); err != nil {
		return err
	}
	headers := []string{"Ended", "Workout", "Status", "Steps", "Active"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			r.WorkoutName,
			r.Status,
			fmt.Sprintf("%d/%d", r.StepsDone, r.StepsTotal),
			FormatDuration(r.ActiveSeconds),
		})
	}
	return writeTable(w, headers, rows, map[int]bool{3: true, 4: true}, width)
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool, width int) error {
	cols := make([]Column, len(headers))
	for i, h := range headers {
		cols[i] = Column{Title: h, Right: rightAlign[i]}
	}
	for _, line := range FormatTable(cols, rows) {
		if width > 0 {
			line = truncate(line, width)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
