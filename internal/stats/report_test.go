package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuifit/internal/model"
	"github.com/verte-zerg/tuifit/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tuifit.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Hour)
		status := model.RunFinished
		if i == 2 {
			status = model.RunCancelled
		}
		_, err := st.InsertRun(ctx, model.RunRecord{
			WorkoutID:     "hiit",
			WorkoutName:   "HIIT Express",
			StartedAt:     start,
			EndedAt:       start.Add(5 * time.Minute),
			Status:        status,
			StepsDone:     5,
			StepsTotal:    5,
			ActiveSeconds: 300,
		})
		if err != nil {
			t.Fatalf("insert run: %v", err)
		}
	}

	report, err := BuildReport(ctx, st, model.HistoryFilter{Last: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(report.Runs))
	}
	if report.Summary.Finished != 1 || report.Summary.Cancelled != 1 || report.Summary.ActiveSeconds != 600 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}

	var buf bytes.Buffer
	if err := RenderReport(&buf, report, 0); err != nil {
		t.Fatalf("render report: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Runs: 2", "Completion: 50.0%", "Active time: 10:00", "Per Workout", "HIIT Express", "cancelled"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "No runs found.\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestByWorkoutOrdersByRuns(t *testing.T) {
	runs := []model.RunRecord{
		{WorkoutID: "b", WorkoutName: "B", Status: model.RunFinished, ActiveSeconds: 10},
		{WorkoutID: "a", WorkoutName: "A", Status: model.RunFinished, ActiveSeconds: 20},
		{WorkoutID: "a", WorkoutName: "A2", Status: model.RunCancelled, ActiveSeconds: 5},
	}
	aggs := ByWorkout(runs)
	if len(aggs) != 2 || aggs[0].WorkoutID != "a" {
		t.Fatalf("unexpected order: %+v", aggs)
	}
	if aggs[0].WorkoutName != "A2" || aggs[0].Runs != 2 || aggs[0].Finished != 1 || aggs[0].ActiveSeconds != 25 {
		t.Fatalf("unexpected aggregate: %+v", aggs[0])
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[int]string{59: "00:59", 600: "10:00", 3661: "1:01:01"}
	for in, want := range cases {
		if got := FormatDuration(in); got != want {
			t.Fatalf("FormatDuration(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestSparklineFlat(t *testing.T) {
	if got := Sparkline([]float64{3, 3, 3}); got != "+++" {
		t.Fatalf("unexpected flat sparkline %q", got)
	}
	if got := Sparkline([]float64{0, 10}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
}
