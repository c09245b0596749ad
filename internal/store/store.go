// Package store persists application state as JSON documents under string
// keys. Each top-level collection lives under its own key; no transactional
// guarantee spans keys.
package store

import (
	"context"
	"errors"
)

// Storage keys for the top-level collections.
const (
	KeyExercises    = "exercises"
	KeyRoutines     = "routines"
	KeyHistory      = "workoutHistory"
	KeyUnfinished   = "unfinishedWorkouts"
	KeyRestDuration = "restDuration"
)

// ErrNotFound is returned by Get when no value exists under the key.
var ErrNotFound = errors.New("store: key not found")

// Store is a string-keyed JSON document store.
type Store interface {
	// Get unmarshals the value stored under key into v.
	// Returns ErrNotFound when the key has never been written.
	Get(ctx context.Context, key string, v any) error
	// Set durably persists v, JSON-encoded, under key.
	Set(ctx context.Context, key string, v any) error
	Close() error
}
