package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuifit/internal/model"
	"github.com/verte-zerg/tuifit/internal/session"
)

// WorkoutLister lists selectable workouts.
type WorkoutLister interface {
	List() []model.WorkoutSpec
}

// RunHistory looks up the latest recorded run of a workout.
type RunHistory interface {
	LastRun(ctx context.Context, workoutID string) (model.RunRecord, bool, error)
}

type tickMsg struct {
	gen int
}

// Model implements the Bubble Tea workout UI.
type Model struct {
	workouts []model.WorkoutSpec
	machine  *session.Machine
	history  RunHistory

	keys  keyMap
	help  help.Model
	table table.Model

	stepBar  progress.Model
	totalBar progress.Model

	lastRuns map[string]model.RunRecord

	width  int
	height int

	// gen invalidates ticks scheduled for an earlier session. Only the tick
	// of the current gen is tracked by ticking.
	gen     int
	ticking bool
	last    session.Snapshot
}

// NewModel constructs the workout TUI. history may be nil.
func NewModel(workouts WorkoutLister, machine *session.Machine, history RunHistory) *Model {
	m := &Model{
		workouts: workouts.List(),
		machine:  machine,
		history:  history,
		keys:     defaultKeyMap(),
		help:     help.New(),
		stepBar:  progress.New(progress.WithSolidFill(string(workColor)), progress.WithoutPercentage()),
		totalBar: progress.New(progress.WithSolidFill(string(totalColor)), progress.WithoutPercentage()),
		lastRuns: map[string]model.RunRecord{},
	}
	m.loadLastRuns()
	m.table = buildWorkoutTable(m.workouts, m.lastRuns, 0, 0)
	m.last = machine.Snapshot()
	return m
}

// Start selects the workout with id before the program runs.
func (m *Model) Start(id string) bool {
	if !m.machine.SelectWorkout(id) {
		return false
	}
	m.gen++
	m.ticking = false
	m.last = m.machine.Snapshot()
	return true
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.active() {
		return m.scheduleTick()
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.ticking = false
		m.machine.Tick()
		m.refresh()
		return m, m.scheduleTickIfActive()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.machine.Cancel()
		return m, tea.Quit
	}
	switch m.last.Phase {
	case model.PhaseIdle:
		if key.Matches(msg, m.keys.Start) {
			return m, m.startSelected()
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	case model.PhasePreCountdown:
		switch {
		case key.Matches(msg, m.keys.Pause):
			m.machine.TogglePause()
		case key.Matches(msg, m.keys.Skip):
			m.machine.SkipCountdown()
		case key.Matches(msg, m.keys.Cancel):
			m.machine.Cancel()
		}
	case model.PhaseInStep:
		switch {
		case key.Matches(msg, m.keys.Advance):
			m.machine.Advance()
		case key.Matches(msg, m.keys.Pause):
			m.machine.TogglePause()
		case key.Matches(msg, m.keys.Cancel):
			m.machine.Cancel()
		}
	case model.PhaseFinished:
		if key.Matches(msg, m.keys.Back) {
			m.machine.Reset()
		}
	}
	m.refresh()
	return m, nil
}

func (m *Model) startSelected() tea.Cmd {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.workouts) {
		return nil
	}
	if !m.Start(m.workouts[i].ID) {
		logErrf("failed to start workout %q\n", m.workouts[i].ID)
		return nil
	}
	return m.scheduleTickIfActive()
}

// refresh takes a new snapshot and reacts to phase changes.
func (m *Model) refresh() {
	prev := m.last
	m.last = m.machine.Snapshot()
	if prev.Phase == m.last.Phase {
		return
	}
	switch {
	case m.last.Phase == model.PhaseFinished:
		m.noteRun(prev.WorkoutID, model.RunFinished, m.last.Elapsed)
	case m.last.Phase == model.PhaseIdle && prev.Phase == model.PhaseInStep:
		m.noteRun(prev.WorkoutID, model.RunCancelled, prev.Elapsed)
	}
	if m.last.Phase == model.PhaseIdle {
		m.table.SetRows(workoutRows(m.workouts, m.lastRuns))
	}
}

// noteRun mirrors a run that the recorder persists asynchronously.
func (m *Model) noteRun(workoutID, status string, elapsed int) {
	m.lastRuns[workoutID] = model.RunRecord{
		WorkoutID:     workoutID,
		EndedAt:       time.Now(),
		Status:        status,
		ActiveSeconds: elapsed,
	}
}

func (m *Model) active() bool {
	return m.last.Phase == model.PhasePreCountdown || m.last.Phase == model.PhaseInStep
}

func (m *Model) scheduleTickIfActive() tea.Cmd {
	if !m.active() || m.ticking {
		return nil
	}
	return m.scheduleTick()
}

func (m *Model) scheduleTick() tea.Cmd {
	m.ticking = true
	gen := m.gen
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (m *Model) loadLastRuns() {
	if m.history == nil {
		return
	}
	ctx := context.Background()
	for _, w := range m.workouts {
		run, ok, err := m.history.LastRun(ctx, w.ID)
		if err != nil {
			logErrf("failed to load run history: %v\n", err)
			return
		}
		if ok {
			m.lastRuns[w.ID] = run
		}
	}
}

func (m *Model) updateLayout() {
	barWidth := m.contentWidth()
	m.stepBar.Width = barWidth
	m.totalBar.Width = barWidth
	m.help.Width = m.width
	m.table.SetWidth(m.width)
	m.table.SetHeight(maxInt(3, m.height-6))
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 40
	}
	return maxInt(10, int(float64(m.width)*0.70))
}

func (m *Model) helpKeys() screenKeys {
	switch m.last.Phase {
	case model.PhasePreCountdown:
		return screenKeys{m.keys.Pause, m.keys.Skip, m.keys.Cancel, m.keys.Quit}
	case model.PhaseInStep:
		if m.last.ManualStep() {
			return screenKeys{m.keys.Advance, m.keys.Pause, m.keys.Cancel, m.keys.Quit}
		}
		return screenKeys{m.keys.Pause, m.keys.Cancel, m.keys.Quit}
	case model.PhaseFinished:
		return screenKeys{m.keys.Back, m.keys.Quit}
	default:
		return screenKeys{m.keys.Up, m.keys.Down, m.keys.Start, m.keys.Quit}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
