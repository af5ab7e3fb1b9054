package stats

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/verte-zerg/tuifit/internal/model"
	"github.com/verte-zerg/tuifit/internal/store"
)

// Report contains precomputed data for history rendering.
type Report struct {
	Runs    []model.RunRecord
	Summary Summary
}

// BuildReport loads runs matching filter.
func BuildReport(ctx context.Context, st *store.Store, filter model.HistoryFilter) (Report, error) {
	runs, err := st.ListRuns(ctx, filter)
	if err != nil {
		return Report{}, err
	}
	return Report{Runs: runs, Summary: Summarize(runs)}, nil
}

// RenderReport prints the summary, per-workout and per-run tables. A width
// of 0 disables truncation.
func RenderReport(w io.Writer, report Report, width int) error {
	if err := RenderSummary(w, report.Runs); err != nil {
		return err
	}
	if err := RenderWorkoutTable(w, report.Runs, width); err != nil {
		return err
	}
	return RenderRunTable(w, report.Runs, width)
}

// TerminalWidth returns the width of stdout, or 0 when it is not a terminal.
func TerminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return 0
	}
	return width
}
