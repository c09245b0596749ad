package store

import (
	"context"
	"errors"

	"github.com/claude/liftlog/internal/models"
)

// DefaultRestDuration is the rest countdown, in seconds, used until the
// user picks their own.
const DefaultRestDuration = 90

// Repo wraps a Store with typed accessors for each collection. Missing keys
// read as empty collections.
type Repo struct {
	s Store
}

// NewRepo creates a Repo over the given store.
func NewRepo(s Store) *Repo {
	return &Repo{s: s}
}

// Store exposes the underlying key-value store.
func (r *Repo) Store() Store { return r.s }

func (r *Repo) Close() error { return r.s.Close() }

// Exercises loads the exercise catalog.
func (r *Repo) Exercises(ctx context.Context) ([]models.Exercise, error) {
	var out []models.Exercise
	if err := r.get(ctx, KeyExercises, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveExercises persists the exercise catalog.
func (r *Repo) SaveExercises(ctx context.Context, v []models.Exercise) error {
	return r.s.Set(ctx, KeyExercises, emptyNotNull(v))
}

// Routines loads all routines.
func (r *Repo) Routines(ctx context.Context) ([]models.Routine, error) {
	var out []models.Routine
	if err := r.get(ctx, KeyRoutines, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveRoutines persists all routines.
func (r *Repo) SaveRoutines(ctx context.Context, v []models.Routine) error {
	return r.s.Set(ctx, KeyRoutines, emptyNotNull(v))
}

// History loads the finished-workout history, most recent first.
func (r *Repo) History(ctx context.Context) ([]models.WorkoutSession, error) {
	var out []models.WorkoutSession
	if err := r.get(ctx, KeyHistory, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveHistory persists the finished-workout history.
func (r *Repo) SaveHistory(ctx context.Context, v []models.WorkoutSession) error {
	return r.s.Set(ctx, KeyHistory, emptyNotNull(v))
}

// Unfinished loads the resumable-session collection.
func (r *Repo) Unfinished(ctx context.Context) ([]models.WorkoutSession, error) {
	var out []models.WorkoutSession
	if err := r.get(ctx, KeyUnfinished, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveUnfinished persists the resumable-session collection.
func (r *Repo) SaveUnfinished(ctx context.Context, v []models.WorkoutSession) error {
	return r.s.Set(ctx, KeyUnfinished, emptyNotNull(v))
}

// RestDuration loads the default rest countdown in seconds.
func (r *Repo) RestDuration(ctx context.Context) (int, error) {
	var secs int
	err := r.s.Get(ctx, KeyRestDuration, &secs)
	if errors.Is(err, ErrNotFound) {
		return DefaultRestDuration, nil
	}
	if err != nil {
		return 0, err
	}
	if secs <= 0 {
		return DefaultRestDuration, nil
	}
	return secs, nil
}

// SaveRestDuration persists the default rest countdown in seconds.
func (r *Repo) SaveRestDuration(ctx context.Context, secs int) error {
	return r.s.Set(ctx, KeyRestDuration, secs)
}

func (r *Repo) get(ctx context.Context, key string, v any) error {
	err := r.s.Get(ctx, key, v)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// emptyNotNull stores empty collections as [] rather than null so exported
// documents stay array-typed.
func emptyNotNull[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
