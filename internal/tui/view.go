package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tuifit/internal/model"
	"github.com/verte-zerg/tuifit/internal/sequence"
	"github.com/verte-zerg/tuifit/internal/session"
)

const (
	workColor     = lipgloss.Color("#4DA3FF")
	restColor     = lipgloss.Color("#52C41A")
	finishedColor = lipgloss.Color("#B37FEB")
	totalColor    = lipgloss.Color("#C89A3A")
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	workStyle     = lipgloss.NewStyle().Foreground(workColor).Bold(true)
	restStyle     = lipgloss.NewStyle().Foreground(restColor).Bold(true)
	finishedStyle = lipgloss.NewStyle().Foreground(finishedColor).Bold(true)
	textStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#D0D0D0"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	pausedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	clockStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 2).
			Border(lipgloss.RoundedBorder(), true)
)

// View implements tea.Model.
func (m *Model) View() string {
	var body string
	switch m.last.Phase {
	case model.PhasePreCountdown:
		body = m.viewPreCountdown()
	case model.PhaseInStep:
		body = m.viewStep()
	case model.PhaseFinished:
		body = m.viewFinished()
	default:
		body = m.viewList()
	}
	helpLine := m.help.View(m.helpKeys())
	if m.width == 0 || m.height == 0 {
		return body + "\n\n" + helpLine
	}
	footer := m.renderFooter()
	reserved := 1
	if footer != "" {
		reserved = 2
	}
	if m.height <= reserved {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
	}
	main := lipgloss.Place(m.width, m.height-reserved, lipgloss.Center, lipgloss.Center, body)
	lines := []string{main}
	if footer != "" {
		lines = append(lines, lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer))
	}
	lines = append(lines, lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, helpLine))
	return strings.Join(lines, "\n")
}

func (m *Model) viewList() string {
	if len(m.workouts) == 0 {
		return mutedStyle.Render("No workouts available.")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Choose a workout"),
		"",
		m.table.View(),
	)
}

func (m *Model) viewPreCountdown() string {
	snap := m.last
	lines := []string{
		titleStyle.Render(snap.WorkoutName),
		"",
		mutedStyle.Render("Get ready"),
		clockStyle.BorderForeground(workColor).Render(strconv.Itoa(snap.PreRemaining)),
	}
	if snap.HasNext {
		lines = append(lines, "", mutedStyle.Render("First up: ")+textStyle.Render(snap.Next.Title))
	}
	if snap.Paused {
		lines = append(lines, "", pausedStyle.Render("PAUSED"))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) viewStep() string {
	snap := m.last
	if !snap.HasStep {
		return ""
	}
	step := snap.Step
	style, color := workStyle, workColor
	if step.Kind == model.StepRest {
		style, color = restStyle, restColor
	}
	width := m.contentWidth()

	lines := []string{
		mutedStyle.Render(fmt.Sprintf("%s • #%d/%d", snap.WorkoutName, snap.Index+1, snap.Total)),
		"",
		style.Render(step.Title),
	}
	if step.Description != "" {
		lines = append(lines, wrapText(step.Description, textStyle, width))
	}
	if step.MediaRef != "" {
		lines = append(lines, mutedStyle.Render("media: "+step.MediaRef))
	}
	lines = append(lines, "", clockStyle.BorderForeground(color).Render(stepCounter(snap)))
	if snap.ManualStep() {
		lines = append(lines, mutedStyle.Render("press enter when done"))
	}

	lines = append(lines, "")
	if step.Countdown() {
		m.stepBar.FullColor = string(color)
		lines = append(lines, m.stepBar.ViewAs(snap.Progress.Step))
	}
	lines = append(lines, m.totalBar.ViewAs(snap.Progress.Global))
	if step.Kind == model.StepRest && snap.HasNext {
		lines = append(lines, "", mutedStyle.Render("Next: ")+textStyle.Render(nextLabel(snap.Next)))
	}
	if snap.Paused {
		lines = append(lines, "", pausedStyle.Render("PAUSED"))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) viewFinished() string {
	snap := m.last
	return lipgloss.JoinVertical(lipgloss.Center,
		finishedStyle.Render("Workout complete!"),
		"",
		titleStyle.Render(snap.WorkoutName),
		mutedStyle.Render(fmt.Sprintf("%d steps · %s active", snap.Total, sequence.FormatClock(snap.Elapsed))),
		"",
		m.totalBar.ViewAs(1),
	)
}

func (m *Model) renderFooter() string {
	snap := m.last
	if snap.Phase != model.PhaseInStep {
		return ""
	}
	segments := []string{
		fmt.Sprintf("Step %d/%d", snap.Index+1, snap.Total),
		fmt.Sprintf("Elapsed %s", sequence.FormatClock(snap.Elapsed)),
		fmt.Sprintf("Progress %d%%", int(snap.Progress.Global*100)),
	}
	if snap.Paused {
		segments = append(segments, "Paused")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func stepCounter(snap session.Snapshot) string {
	if snap.Step.Countdown() {
		return sequence.FormatClock(snap.Remaining)
	}
	return fmt.Sprintf("× %d", snap.Step.Reps)
}

func nextLabel(step model.Step) string {
	if step.Timed {
		return fmt.Sprintf("%s (%s)", step.Title, sequence.FormatClock(step.Seconds))
	}
	return fmt.Sprintf("%s (× %d)", step.Title, step.Reps)
}

func buildWorkoutTable(workouts []model.WorkoutSpec, lastRuns map[string]model.RunRecord, width, height int) table.Model {
	columns := []table.Column{
		{Title: "Workout", Width: 24},
		{Title: "Level", Width: 10},
		{Title: "Steps", Width: 6},
		{Title: "Time", Width: 7},
		{Title: "Last run", Width: 18},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(workoutRows(workouts, lastRuns)),
		table.WithFocused(true),
		table.WithHeight(maxInt(3, minInt(len(workouts)+1, height-6))),
	)
	if width > 0 {
		t.SetWidth(width)
	}
	t.SetStyles(workoutTableStyles())
	return t
}

func workoutRows(workouts []model.WorkoutSpec, lastRuns map[string]model.RunRecord) []table.Row {
	rows := make([]table.Row, 0, len(workouts))
	for _, w := range workouts {
		steps := sequence.Build(w)
		rows = append(rows, table.Row{
			w.Name,
			difficultyLabel(w.Difficulty),
			strconv.Itoa(len(steps)),
			sequence.FormatClock(sequence.TotalSeconds(steps)),
			lastRunLabel(lastRuns, w.ID),
		})
	}
	return rows
}

func difficultyLabel(d int) string {
	if d < 0 {
		d = 0
	}
	if d > 5 {
		d = 5
	}
	return strings.Repeat("●", d) + strings.Repeat("○", 5-d)
}

func lastRunLabel(lastRuns map[string]model.RunRecord, id string) string {
	run, ok := lastRuns[id]
	if !ok {
		return "-"
	}
	label := run.EndedAt.Local().Format("Jan 02 15:04")
	if run.Status == model.RunCancelled {
		label += " ✗"
	}
	return label
}

func workoutTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#F0F0F0")).
		Background(lipgloss.Color("#2F4F7F")).
		Bold(true)
	return styles
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
