package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuifit/internal/model"
	"github.com/verte-zerg/tuifit/internal/store"
)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tuifit.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	base := time.Date(2026, 4, 1, 7, 0, 0, 0, time.UTC)
	for i, id := range []string{"hiit", "yoga", "hiit"} {
		start := base.Add(time.Duration(i) * 24 * time.Hour)
		_, err := st.InsertRun(context.Background(), model.RunRecord{
			WorkoutID:     id,
			WorkoutName:   strings.ToUpper(id),
			StartedAt:     start,
			EndedAt:       start.Add(20 * time.Minute),
			Status:        model.RunFinished,
			StepsDone:     6,
			StepsTotal:    6,
			ActiveSeconds: 1200,
		})
		if err != nil {
			t.Fatalf("insert run: %v", err)
		}
	}
	return st
}

func TestModelTabs(t *testing.T) {
	m := NewModel(seededStore(t), model.HistoryFilter{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if !strings.Contains(m.View(), "Runs: 3") {
		t.Fatalf("overview missing summary:\n%s", m.View())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	view := m.View()
	if !strings.Contains(view, "HIIT") || !strings.Contains(view, "YOGA") {
		t.Fatalf("workouts tab missing rows:\n%s", view)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if !strings.Contains(m.View(), "6/6") {
		t.Fatalf("runs tab missing steps column:\n%s", m.View())
	}
}

func TestModelFilterForm(t *testing.T) {
	m := NewModel(seededStore(t), model.HistoryFilter{})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("yoga")})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode || m.filter.WorkoutID != "yoga" {
		t.Fatalf("expected yoga filter applied, got %+v", m.filter)
	}
	if len(m.report.Runs) != 1 {
		t.Fatalf("expected 1 filtered run, got %d", len(m.report.Runs))
	}
}

func TestParseFilter(t *testing.T) {
	filter, err := ParseFilter(" hiit ", "2026-04-02", "5")
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	if filter.WorkoutID != "hiit" || filter.Last != 5 || filter.Since == nil {
		t.Fatalf("unexpected filter: %+v", filter)
	}
	if _, err := ParseFilter("", "04/02/2026", ""); err == nil {
		t.Fatalf("expected since error")
	}
	if _, err := ParseFilter("", "", "-1"); err == nil {
		t.Fatalf("expected last error")
	}
}
