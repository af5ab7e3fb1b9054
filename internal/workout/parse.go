// Package workout loads and validates workout definitions.
package workout

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tuifit/internal/model"
)

// ValidationError reports an invalid field of a workout definition.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

type rawExercise struct {
	Name        *string `yaml:"name"`
	Description *string `yaml:"description"`
	Media       *string `yaml:"media"`
	WorkSeconds *int    `yaml:"work_seconds"`
	RestSeconds *int    `yaml:"rest_seconds"`
	Reps        *int    `yaml:"reps"`
	Repeat      *int    `yaml:"repeat"`
}

type rawWorkout struct {
	ID         *string       `yaml:"id"`
	Name       *string       `yaml:"name"`
	Difficulty *int          `yaml:"difficulty"`
	Repeat     *int          `yaml:"repeat"`
	Exercises  []rawExercise `yaml:"exercises"`
}

// rawFile holds either a single workout or a "workouts" list.
type rawFile struct {
	rawWorkout `yaml:",inline"`
	Workouts   []rawWorkout `yaml:"workouts"`
}

// Parse decodes one or more workouts from YAML or JSON and validates them.
// Unknown keys are rejected.
func Parse(data []byte) ([]model.WorkoutSpec, error) {
	var file rawFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode workout: %w", err)
	}
	raws := file.Workouts
	if len(raws) == 0 {
		raws = []rawWorkout{file.rawWorkout}
	} else if file.ID != nil || file.Exercises != nil {
		return nil, &ValidationError{Msg: "use either a single workout or a workouts list, not both"}
	}
	out := make([]model.WorkoutSpec, 0, len(raws))
	for i, raw := range raws {
		w, err := validate(raw)
		if err != nil {
			if len(raws) > 1 {
				return nil, fmt.Errorf("workout #%d: %w", i+1, err)
			}
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// Validate checks an already built workout and applies defaults.
func Validate(w model.WorkoutSpec) (model.WorkoutSpec, error) {
	raw := rawWorkout{
		ID:         &w.ID,
		Name:       &w.Name,
		Difficulty: &w.Difficulty,
	}
	if w.RepeatCount != 0 {
		raw.Repeat = &w.RepeatCount
	}
	for _, ex := range w.Exercises {
		ex := ex
		re := rawExercise{Name: &ex.Name, Description: &ex.Description}
		if ex.MediaRef != "" {
			re.Media = &ex.MediaRef
		}
		if ex.WorkSeconds != 0 {
			re.WorkSeconds = &ex.WorkSeconds
		}
		if ex.RestSeconds != 0 {
			re.RestSeconds = &ex.RestSeconds
		}
		if ex.Reps != 0 {
			re.Reps = &ex.Reps
		}
		if ex.RepeatCount != 0 {
			re.Repeat = &ex.RepeatCount
		}
		raw.Exercises = append(raw.Exercises, re)
	}
	out, err := validate(raw)
	if err != nil {
		return model.WorkoutSpec{}, err
	}
	out.Source = w.Source
	return out, nil
}

func validate(raw rawWorkout) (model.WorkoutSpec, error) {
	id, ok := nonEmpty(raw.ID)
	if !ok {
		return model.WorkoutSpec{}, &ValidationError{Field: "id", Msg: "must be a non-empty string"}
	}
	name, ok := nonEmpty(raw.Name)
	if !ok {
		return model.WorkoutSpec{}, &ValidationError{Field: "name", Msg: "must be a non-empty string"}
	}
	if raw.Difficulty == nil || *raw.Difficulty < 1 || *raw.Difficulty > 5 {
		return model.WorkoutSpec{}, &ValidationError{Field: "difficulty", Msg: "must be an integer between 1 and 5"}
	}
	w := model.WorkoutSpec{ID: id, Name: name, Difficulty: *raw.Difficulty, RepeatCount: 1}
	if raw.Repeat != nil {
		if *raw.Repeat <= 0 {
			return model.WorkoutSpec{}, &ValidationError{Field: "repeat", Msg: "must be a positive integer"}
		}
		w.RepeatCount = *raw.Repeat
	}
	if len(raw.Exercises) == 0 {
		return model.WorkoutSpec{}, &ValidationError{Field: "exercises", Msg: "must contain at least one exercise"}
	}
	w.Exercises = make([]model.ExerciseSpec, 0, len(raw.Exercises))
	for i, re := range raw.Exercises {
		ex, err := validateExercise(re, i)
		if err != nil {
			return model.WorkoutSpec{}, err
		}
		w.Exercises = append(w.Exercises, ex)
	}
	return w, nil
}

func validateExercise(re rawExercise, index int) (model.ExerciseSpec, error) {
	field := func(name string) string {
		return fmt.Sprintf("exercise #%d %s", index+1, name)
	}
	name, ok := nonEmpty(re.Name)
	if !ok {
		return model.ExerciseSpec{}, &ValidationError{Field: field("name"), Msg: "must be a non-empty string"}
	}
	desc, ok := nonEmpty(re.Description)
	if !ok {
		return model.ExerciseSpec{}, &ValidationError{Field: field("description"), Msg: "must be a non-empty string"}
	}
	ex := model.ExerciseSpec{Name: name, Description: desc, RepeatCount: 1}
	if re.Media != nil {
		media, ok := nonEmpty(re.Media)
		if !ok {
			return model.ExerciseSpec{}, &ValidationError{Field: field("media"), Msg: "must be a non-empty string"}
		}
		ex.MediaRef = media
	}
	if re.WorkSeconds != nil {
		if *re.WorkSeconds <= 0 {
			return model.ExerciseSpec{}, &ValidationError{Field: field("work_seconds"), Msg: "must be a positive integer"}
		}
		ex.WorkSeconds = *re.WorkSeconds
	}
	if re.RestSeconds != nil {
		if *re.RestSeconds < 0 {
			return model.ExerciseSpec{}, &ValidationError{Field: field("rest_seconds"), Msg: "must be an integer >= 0"}
		}
		ex.RestSeconds = *re.RestSeconds
	}
	if re.Reps != nil {
		if *re.Reps <= 0 {
			return model.ExerciseSpec{}, &ValidationError{Field: field("reps"), Msg: "must be a positive integer"}
		}
		ex.Reps = *re.Reps
	}
	if re.Repeat != nil {
		if *re.Repeat <= 0 {
			return model.ExerciseSpec{}, &ValidationError{Field: field("repeat"), Msg: "must be a positive integer"}
		}
		ex.RepeatCount = *re.Repeat
	}
	return ex, nil
}

func nonEmpty(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	s := strings.TrimSpace(*v)
	return s, s != ""
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
