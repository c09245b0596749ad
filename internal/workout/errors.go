package workout

import "errors"

// Validation and lookup failures surfaced to the caller. Nothing here is
// fatal: every failing operation leaves state unchanged.
var (
	ErrEmptyName         = errors.New("name must not be empty")
	ErrDuplicateName     = errors.New("an exercise with that name already exists")
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrRoutineNotFound   = errors.New("routine not found")
	ErrDuplicateExercise = errors.New("routine lists the same exercise twice")
	ErrNoActiveSession   = errors.New("no active workout session")
	ErrSessionActive     = errors.New("a workout session is already active")
	ErrSessionNotFound   = errors.New("workout session not found")
	ErrEntryNotFound     = errors.New("session entry not found")
	ErrSetNotFound       = errors.New("set not found")
	ErrReorderMismatch   = errors.New("reorder must list every entry exactly once")
)
