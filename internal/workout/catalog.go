package workout

import (
	_ "embed" // Built-in workouts.
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/verte-zerg/tuifit/internal/model"
)

// BuiltinSource marks workouts bundled with the binary.
const BuiltinSource = "builtin"

//go:embed builtin.yaml
var builtinYAML []byte

// Catalog is an ordered set of workouts with unique ids.
type Catalog struct {
	workouts []model.WorkoutSpec
	index    map[string]int
}

// NewCatalog validates workouts and indexes them by id.
func NewCatalog(workouts ...model.WorkoutSpec) (*Catalog, error) {
	c := &Catalog{index: make(map[string]int, len(workouts))}
	for _, w := range workouts {
		valid, err := Validate(w)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sourceName(w), err)
		}
		if prev, ok := c.index[valid.ID]; ok {
			return nil, fmt.Errorf("duplicate workout id %q in %s and %s", valid.ID, sourceName(c.workouts[prev]), sourceName(valid))
		}
		c.index[valid.ID] = len(c.workouts)
		c.workouts = append(c.workouts, valid)
	}
	return c, nil
}

// Lookup returns the workout with the given id.
func (c *Catalog) Lookup(id string) (model.WorkoutSpec, bool) {
	i, ok := c.index[id]
	if !ok {
		return model.WorkoutSpec{}, false
	}
	return c.workouts[i], true
}

// List returns all workouts in load order.
func (c *Catalog) List() []model.WorkoutSpec {
	out := make([]model.WorkoutSpec, len(c.workouts))
	copy(out, c.workouts)
	return out
}

// Len returns the number of workouts.
func (c *Catalog) Len() int {
	return len(c.workouts)
}

// Builtin returns the bundled sample workouts.
func Builtin() ([]model.WorkoutSpec, error) {
	workouts, err := Parse(builtinYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in workouts: %w", err)
	}
	for i := range workouts {
		workouts[i].Source = BuiltinSource
	}
	return workouts, nil
}

// LoadFile reads workouts from a YAML or JSON file.
func LoadFile(path string) ([]model.WorkoutSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	workouts, err := Parse(data)
	if err != nil {
		return nil, err
	}
	for i := range workouts {
		workouts[i].Source = path
	}
	return workouts, nil
}

// LoadDir reads every workout file in dir. A missing directory is not an
// error. Files that fail to load are reported in the joined error while the
// remaining workouts are still returned.
func LoadDir(dir string) ([]model.WorkoutSpec, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read workouts directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isWorkoutFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var workouts []model.WorkoutSpec
	var errs []error
	for _, name := range names {
		path := filepath.Join(dir, name)
		loaded, err := LoadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		workouts = append(workouts, loaded...)
	}
	return workouts, errors.Join(errs...)
}

func isWorkoutFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}

func sourceName(w model.WorkoutSpec) string {
	if w.Source == "" {
		return "workout " + w.ID
	}
	return w.Source
}
