// Package main provides the CLI entrypoint for tuifit.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuifit/internal/config"
	"github.com/verte-zerg/tuifit/internal/cue"
	"github.com/verte-zerg/tuifit/internal/model"
	"github.com/verte-zerg/tuifit/internal/session"
	"github.com/verte-zerg/tuifit/internal/store"
	"github.com/verte-zerg/tuifit/internal/tui"
	"github.com/verte-zerg/tuifit/internal/workout"
)

var (
	sessionSound    bool
	sessionWorkouts string
	sessionBuiltin  bool
	sessionRecord   bool
)

type settings struct {
	Sound       bool
	WorkoutsDir string
	Builtin     bool
	Record      bool
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuifit [workout-id]",
		Short:         "Guided workout timer for the terminal",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTUICmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&sessionSound, "sound", true, "ring the terminal bell for cues")
	flags.StringVar(&sessionWorkouts, "workouts", config.DefaultWorkoutsDir(), "directory with workout files")
	flags.BoolVar(&sessionBuiltin, "builtin", true, "include built-in workouts")
	flags.BoolVar(&sessionRecord, "record", true, "store run history")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyBoolConfig(cmd, "sound", &sessionSound, fileCfg.Session.Sound)
	applyStringConfig(cmd, "workouts", &sessionWorkouts, fileCfg.Session.Workouts)
	applyBoolConfig(cmd, "builtin", &sessionBuiltin, fileCfg.Session.Builtin)
	applyBoolConfig(cmd, "record", &sessionRecord, fileCfg.Session.Record)
	return settings{
		Sound:       sessionSound,
		WorkoutsDir: expandHome(sessionWorkouts),
		Builtin:     sessionBuiltin,
		Record:      sessionRecord,
	}, nil
}

// loadCatalog combines built-in and user workouts. Unreadable user files are
// reported and skipped.
func loadCatalog(cfg settings) (*workout.Catalog, error) {
	var all []model.WorkoutSpec
	if cfg.Builtin {
		builtin, err := workout.Builtin()
		if err != nil {
			return nil, err
		}
		all = append(all, builtin...)
	}
	user, err := workout.LoadDir(cfg.WorkoutsDir)
	if err != nil {
		logErrf("some workouts were skipped:\n%v\n", err)
	}
	all = append(all, user...)
	catalog, err := workout.NewCatalog(all...)
	if err != nil {
		return nil, fmt.Errorf("failed to load workouts: %w", err)
	}
	if catalog.Len() == 0 {
		return nil, fmt.Errorf("no workouts found in %s (enable --builtin or add workout files)", cfg.WorkoutsDir)
	}
	return catalog, nil
}

// history bundles the optional run store and its recorder.
type history struct {
	store    *store.Store
	recorder *store.Recorder
}

func openHistory(cfg settings) (*history, error) {
	if !cfg.Record {
		return &history{}, nil
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	rec := store.NewRecorder(st, func(err error) {
		logErrf("%v\n", err)
	})
	return &history{store: st, recorder: rec}, nil
}

func (h *history) options() []session.Option {
	if h.recorder == nil {
		return nil
	}
	return []session.Option{session.WithPhaseListener(h.recorder.Observe)}
}

func (h *history) runHistory() tui.RunHistory {
	if h.store == nil {
		return nil
	}
	return h.store
}

func (h *history) Close() {
	if h.recorder != nil {
		h.recorder.Close()
	}
	if h.store != nil {
		if err := h.store.Close(); err != nil {
			logErrf("failed to close db: %v\n", err)
		}
	}
}

func runTUICmd(cmd *cobra.Command, args []string) error {
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

	ui := tui.NewModel(catalog, machine, hist.runHistory())
	if len(args) == 1 && !ui.Start(args[0]) {
		return fmt.Errorf("unknown workout %q (see: tuifit list)", args[0])
	}
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuifit configuration
# Uncomment a value to enable it. CLI flags override config values.

[session]
# sound = true            # Ring the terminal bell for countdown cues
# workouts = %q
#                         # Directory with .yaml/.yml/.json workout files
# builtin = true          # Include the built-in workouts
# record = true           # Store run history in %s
`,
		config.DefaultWorkoutsDir(),
		config.DefaultDBPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
