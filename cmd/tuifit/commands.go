package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuifit/internal/config"
	"github.com/verte-zerg/tuifit/internal/cue"
	"github.com/verte-zerg/tuifit/internal/model"
	"github.com/verte-zerg/tuifit/internal/sequence"
	"github.com/verte-zerg/tuifit/internal/session"
	"github.com/verte-zerg/tuifit/internal/stats"
	"github.com/verte-zerg/tuifit/internal/statsui"
	"github.com/verte-zerg/tuifit/internal/store"
	"github.com/verte-zerg/tuifit/internal/workout"
)

var (
	historyWorkout string
	historySince   string
	historyLast    int
	historyTUI     bool
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <workout-id>",
		Short: "Run a workout without the full-screen UI",
		Long: "Run a workout with plain status lines. Type a command and press enter:\n" +
			"  (empty)  finish the current repetition step\n" +
			"  p        pause or resume\n" +
			"  s        skip the pre-countdown\n" +
			"  q        stop the workout",
		Args: cobra.ExactArgs(1),
		RunE: runRunCmd,
	}
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	hist, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer hist.Close()

	cues := cue.ForTerminal(os.Stderr, cfg.Sound)
	defer cues.Close()

	machine := session.New(catalog, cues, hist.options()...)
	defer machine.Dispose()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	return runPlain(ctx, cmd.OutOrStdout(), cmd.InOrStdin(), machine, args[0], ticker.C)
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available workouts",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	return writeWorkoutList(cmd.OutOrStdout(), catalog.List())
}

func writeWorkoutList(w io.Writer, workouts []model.WorkoutSpec) error {
	cols := []stats.Column{
		{Title: "ID"},
		{Title: "Name", Max: 32},
		{Title: "Level", Right: true},
		{Title: "Exercises", Right: true},
		{Title: "Steps", Right: true},
		{Title: "Time", Right: true},
		{Title: "Source", Max: 48},
	}
	rows := make([][]string, 0, len(workouts))
	for _, wo := range workouts {
		steps := sequence.Build(wo)
		rows = append(rows, []string{
			wo.ID,
			wo.Name,
			strconv.Itoa(wo.Difficulty),
			strconv.Itoa(len(wo.Exercises)),
			strconv.Itoa(len(steps)),
			sequence.FormatClock(sequence.TotalSeconds(steps)),
			wo.Source,
		})
	}
	return writeLines(w, stats.FormatTable(cols, rows))
}

func newPlanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan <workout-id>",
		Short: "Print the step sequence of a workout",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlanCmd,
	}
}

func runPlanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	wo, ok := catalog.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown workout %q (see: tuifit list)", args[0])
	}
	return writePlan(cmd.OutOrStdout(), wo)
}

func writePlan(w io.Writer, wo model.WorkoutSpec) error {
	steps := sequence.Build(wo)
	if _, err := fmt.Fprintf(w, "%s (%s)\n\n", wo.Name, wo.ID); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	cols := []stats.Column{
		{Title: "#", Right: true},
		{Title: "Kind"},
		{Title: "Title", Max: 40},
		{Title: "Position"},
		{Title: "Length", Right: true},
	}
	rows := make([][]string, 0, len(steps))
	for i, step := range steps {
		length := fmt.Sprintf("%d reps", step.Reps)
		if step.Countdown() {
			length = sequence.FormatClock(step.Seconds)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			step.Kind.String(),
			step.Title,
			fmt.Sprintf("R%d E%d S%d", step.WorkoutRepeat+1, step.Exercise+1, step.ExerciseRepeat+1),
			length,
		})
	}
	lines := stats.FormatTable(cols, rows)
	lines = append(lines, "", fmt.Sprintf("Total timed: %s", sequence.FormatClock(sequence.TotalSeconds(steps))))
	return writeLines(w, lines)
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check workout files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runValidateCmd,
	}
}

func runValidateCmd(cmd *cobra.Command, args []string) error {
	return validateFiles(cmd.OutOrStdout(), args)
}

func validateFiles(w io.Writer, paths []string) error {
	var errs []error
	for _, path := range paths {
		workouts, err := workout.LoadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		for _, wo := range workouts {
			steps := sequence.Build(wo)
			if _, err := fmt.Fprintf(w, "ok  %s: %s (%d steps)\n", path, wo.ID, len(steps)); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return errors.Join(errs...)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show run history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyWorkout, "workout", "", "workout id filter")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N runs")
	cmd.Flags().BoolVar(&historyTUI, "tui", false, "browse history interactively")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	filter, err := statsui.ParseFilter(historyWorkout, historySince, strconv.Itoa(historyLast))
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if historyTUI {
		program := tea.NewProgram(statsui.NewModel(st, filter), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run history TUI: %w", err)
		}
		return nil
	}
	report, err := stats.BuildReport(cmd.Context(), st, filter)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	return stats.RenderReport(cmd.OutOrStdout(), report, stats.TerminalWidth())
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
