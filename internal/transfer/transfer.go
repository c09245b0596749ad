// Package transfer implements whole-dataset backup export and import.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/store"
)

// ErrInvalidBackup marks a document that fails validation. Nothing is
// written when a document is rejected.
var ErrInvalidBackup = errors.New("invalid backup document")

// Backup is the bulk export/import document.
type Backup struct {
	Exercises      []models.Exercise       `json:"exercises"`
	Routines       []models.Routine        `json:"routines"`
	WorkoutHistory []models.WorkoutSession `json:"workoutHistory"`
	RestDuration   *int                    `json:"restDuration,omitempty"`
}

// Export reads every collection into a backup document.
func Export(ctx context.Context, repo *store.Repo) (*Backup, error) {
	exercises, err := repo.Exercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("exporting exercises: %w", err)
	}
	routines, err := repo.Routines(ctx)
	if err != nil {
		return nil, fmt.Errorf("exporting routines: %w", err)
	}
	history, err := repo.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("exporting history: %w", err)
	}
	secs, err := repo.RestDuration(ctx)
	if err != nil {
		return nil, fmt.Errorf("exporting rest duration: %w", err)
	}

	return &Backup{
		Exercises:      orEmpty(exercises),
		Routines:       orEmpty(routines),
		WorkoutHistory: orEmpty(history),
		RestDuration:   &secs,
	}, nil
}

// Parse validates and decodes a backup document. The exercises, routines and
// workoutHistory collections must be present and array-typed or the whole
// document is rejected. restDuration is optional; a present but non-numeric
// value is ignored. Exercises without a body part are migrated to "other".
func Parse(data []byte) (*Backup, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	b := &Backup{}
	for key, dst := range map[string]any{
		"exercises":      &b.Exercises,
		"routines":       &b.Routines,
		"workoutHistory": &b.WorkoutHistory,
	} {
		field, ok := raw[key]
		if !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrInvalidBackup, key)
		}
		if !isJSONArray(field) {
			return nil, fmt.Errorf("%w: %s must be an array", ErrInvalidBackup, key)
		}
		if err := json.Unmarshal(field, dst); err != nil {
			return nil, fmt.Errorf("%w: %s is not an array of the expected shape", ErrInvalidBackup, key)
		}
	}

	if field, ok := raw["restDuration"]; ok {
		var secs int
		if err := json.Unmarshal(field, &secs); err == nil && secs > 0 {
			b.RestDuration = &secs
		}
	}

	for i := range b.Exercises {
		b.Exercises[i].BodyPart = models.ParseBodyPart(string(b.Exercises[i].BodyPart))
	}

	return b, nil
}

// Restore persists a parsed backup, replacing every collection. Keys are
// written independently; Parse must be called first so a malformed document
// never reaches this point.
func Restore(ctx context.Context, repo *store.Repo, b *Backup) error {
	if err := repo.SaveExercises(ctx, b.Exercises); err != nil {
		return fmt.Errorf("restoring exercises: %w", err)
	}
	if err := repo.SaveRoutines(ctx, b.Routines); err != nil {
		return fmt.Errorf("restoring routines: %w", err)
	}
	if err := repo.SaveHistory(ctx, b.WorkoutHistory); err != nil {
		return fmt.Errorf("restoring history: %w", err)
	}
	if b.RestDuration != nil {
		if err := repo.SaveRestDuration(ctx, *b.RestDuration); err != nil {
			return fmt.Errorf("restoring rest duration: %w", err)
		}
	}
	return nil
}

func isJSONArray(raw json.RawMessage) bool {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return c == '['
		}
	}
	return false
}

func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
