package workout

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/store"
	"github.com/claude/liftlog/internal/timer"
	"github.com/google/uuid"
)

// Engine owns the exercise catalog, routines, and the lifecycle of the
// single active workout session. Every successful session mutation is
// mirrored into the unfinished-sessions collection so an interrupted workout
// can be resumed on next launch. A mutex serializes access: HTTP handlers
// call in concurrently but the engine's state model is strictly one writer
// at a time.
type Engine struct {
	mu     sync.Mutex
	repo   *store.Repo
	timer  *timer.RestTimer
	log    *slog.Logger
	active *models.WorkoutSession
}

// NewEngine creates an engine over the given repository and rest timer.
func NewEngine(repo *store.Repo, rt *timer.RestTimer, log *slog.Logger) *Engine {
	e := &Engine{repo: repo, timer: rt, log: log}
	rt.SetOnComplete(func() {
		log.Info("rest complete")
	})
	return e
}

// Timer exposes the rest timer for the API layer.
func (e *Engine) Timer() *timer.RestTimer { return e.timer }

// --- Exercise catalog ---

// Exercises lists the exercise catalog.
func (e *Engine) Exercises(ctx context.Context) ([]models.Exercise, error) {
	return e.repo.Exercises(ctx)
}

// AddExercise appends a new exercise to the catalog. Names are unique
// case-insensitively; a duplicate is rejected with ErrDuplicateName and
// nothing is written.
func (e *Engine) AddExercise(ctx context.Context, name string, bodyPart models.BodyPart) (models.Exercise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Exercise{}, ErrEmptyName
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	exercises, err := e.repo.Exercises(ctx)
	if err != nil {
		return models.Exercise{}, err
	}
	for _, ex := range exercises {
		if strings.EqualFold(ex.Name, name) {
			return models.Exercise{}, ErrDuplicateName
		}
	}

	ex := models.Exercise{ID: uuid.New(), Name: name, BodyPart: bodyPart}
	if err := e.repo.SaveExercises(ctx, append(exercises, ex)); err != nil {
		return models.Exercise{}, err
	}
	return ex, nil
}

// DeleteExercise removes the exercise from the catalog and cascades the id
// out of every routine. Historical and active sessions keep their stale
// references; history is never rewritten.
func (e *Engine) DeleteExercise(ctx context.Context, id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	exercises, err := e.repo.Exercises(ctx)
	if err != nil {
		return err
	}
	kept := make([]models.Exercise, 0, len(exercises))
	found := false
	for _, ex := range exercises {
		if ex.ID == id {
			found = true
			continue
		}
		kept = append(kept, ex)
	}
	if !found {
		return ErrExerciseNotFound
	}
	if err := e.repo.SaveExercises(ctx, kept); err != nil {
		return err
	}

	routines, err := e.repo.Routines(ctx)
	if err != nil {
		return err
	}
	changed := false
	for i, r := range routines {
		ids := make([]uuid.UUID, 0, len(r.ExerciseIDs))
		for _, exID := range r.ExerciseIDs {
			if exID == id {
				changed = true
				continue
			}
			ids = append(ids, exID)
		}
		routines[i].ExerciseIDs = ids
	}
	if changed {
		if err := e.repo.SaveRoutines(ctx, routines); err != nil {
			return err
		}
	}
	return nil
}

// --- Routines ---

// Routines lists all routines.
func (e *Engine) Routines(ctx context.Context) ([]models.Routine, error) {
	return e.repo.Routines(ctx)
}

// CreateRoutine creates a routine from an ordered list of exercise ids.
// The list must not reference the same exercise twice.
func (e *Engine) CreateRoutine(ctx context.Context, name string, exerciseIDs []uuid.UUID) (models.Routine, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Routine{}, ErrEmptyName
	}
	if hasDuplicate(exerciseIDs) {
		return models.Routine{}, ErrDuplicateExercise
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	routines, err := e.repo.Routines(ctx)
	if err != nil {
		return models.Routine{}, err
	}
	r := models.Routine{ID: uuid.New(), Name: name, ExerciseIDs: append([]uuid.UUID{}, exerciseIDs...)}
	if err := e.repo.SaveRoutines(ctx, append(routines, r)); err != nil {
		return models.Routine{}, err
	}
	return r, nil
}

// UpdateRoutine replaces a routine's name and exercise list.
func (e *Engine) UpdateRoutine(ctx context.Context, id uuid.UUID, name string, exerciseIDs []uuid.UUID) (models.Routine, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Routine{}, ErrEmptyName
	}
	if hasDuplicate(exerciseIDs) {
		return models.Routine{}, ErrDuplicateExercise
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	routines, err := e.repo.Routines(ctx)
	if err != nil {
		return models.Routine{}, err
	}
	for i := range routines {
		if routines[i].ID != id {
			continue
		}
		routines[i].Name = name
		routines[i].ExerciseIDs = append([]uuid.UUID{}, exerciseIDs...)
		if err := e.repo.SaveRoutines(ctx, routines); err != nil {
			return models.Routine{}, err
		}
		return routines[i], nil
	}
	return models.Routine{}, ErrRoutineNotFound
}

// DeleteRoutine removes a routine. Sessions created from it keep their
// routineId reference.
func (e *Engine) DeleteRoutine(ctx context.Context, id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	routines, err := e.repo.Routines(ctx)
	if err != nil {
		return err
	}
	kept := make([]models.Routine, 0, len(routines))
	found := false
	for _, r := range routines {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return ErrRoutineNotFound
	}
	return e.repo.SaveRoutines(ctx, kept)
}

// --- Session lifecycle ---

// Active returns a snapshot of the active session, if any.
func (e *Engine) Active() (models.WorkoutSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return models.WorkoutSession{}, false
	}
	return *e.active, true
}

// StartSession creates a new active session, blank or seeded from the given
// routine's last performance. Only one session may be active at a time.
func (e *Engine) StartSession(ctx context.Context, routineID *uuid.UUID) (models.WorkoutSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		return models.WorkoutSession{}, ErrSessionActive
	}

	var routine *models.Routine
	if routineID != nil {
		routines, err := e.repo.Routines(ctx)
		if err != nil {
			return models.WorkoutSession{}, err
		}
		for i := range routines {
			if routines[i].ID == *routineID {
				routine = &routines[i]
				break
			}
		}
		if routine == nil {
			return models.WorkoutSession{}, ErrRoutineNotFound
		}
	}

	history, err := e.repo.History(ctx)
	if err != nil {
		return models.WorkoutSession{}, err
	}

	s := NewSession(routine, history, time.Now())
	e.active = &s
	if err := e.mirrorLocked(ctx); err != nil {
		e.active = nil
		return models.WorkoutSession{}, err
	}
	e.log.Info("session started", "session", s.ID, "entries", len(s.Entries))
	return s, nil
}

// FinishSession finalizes the active session into history. The returned bool
// reports whether the session was kept: a workout with no completed sets
// leaves no trace.
func (e *Engine) FinishSession(ctx context.Context) (models.WorkoutSession, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil {
		return models.WorkoutSession{}, false, ErrNoActiveSession
	}

	history, err := e.repo.History(ctx)
	if err != nil {
		return models.WorkoutSession{}, false, err
	}

	newHistory, final, kept := Finalize(*e.active, history, time.Now())
	if kept {
		if err := e.repo.SaveHistory(ctx, newHistory); err != nil {
			return models.WorkoutSession{}, false, err
		}
	}
	if err := e.removeUnfinishedLocked(ctx, e.active.ID); err != nil {
		return models.WorkoutSession{}, false, err
	}

	e.active = nil
	e.timer.Stop()
	e.log.Info("session finished", "session", final.ID, "kept", kept, "entries", len(final.Entries))
	return final, kept, nil
}

// DiscardActive drops the active session and its unfinished mirror.
func (e *Engine) DiscardActive(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil {
		return ErrNoActiveSession
	}
	if err := e.removeUnfinishedLocked(ctx, e.active.ID); err != nil {
		return err
	}
	e.log.Info("session discarded", "session", e.active.ID)
	e.active = nil
	e.timer.Stop()
	return nil
}

// Unfinished lists sessions available for resume.
func (e *Engine) Unfinished(ctx context.Context) ([]models.WorkoutSession, error) {
	return e.repo.Unfinished(ctx)
}

// Resume restores an unfinished session as the active one. The restored
// session is a deep copy; the mirrored record stays in place until the
// session is finished or discarded.
func (e *Engine) Resume(ctx context.Context, id uuid.UUID) (models.WorkoutSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	list, err := e.repo.Unfinished(ctx)
	if err != nil {
		return models.WorkoutSession{}, err
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		s := list[i].Clone()
		e.active = &s
		e.log.Info("session resumed", "session", id)
		return s, nil
	}
	return models.WorkoutSession{}, ErrSessionNotFound
}

// DiscardUnfinished removes a session from the unfinished collection. If it
// is the active session, the active session is cleared too.
func (e *Engine) DiscardUnfinished(ctx context.Context, id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.removeUnfinishedLocked(ctx, id); err != nil {
		return err
	}
	if e.active != nil && e.active.ID == id {
		e.active = nil
		e.timer.Stop()
	}
	return nil
}

// --- Session mutations ---

// AddSet appends a set to the entry; see AddSet in session.go for seeding.
func (e *Engine) AddSet(ctx context.Context, entryID uuid.UUID) (models.WorkoutSession, error) {
	return e.mutate(ctx, func(s models.WorkoutSession) (models.WorkoutSession, error) {
		return AddSet(s, entryID)
	})
}

// UpdateSet updates one set. Completing a set starts the rest countdown;
// un-completing a set does not stop an in-flight countdown.
func (e *Engine) UpdateSet(ctx context.Context, entryID, setID uuid.UUID, weight float64, reps int, completed bool) (models.WorkoutSession, error) {
	justCompleted := false
	snap, err := e.mutate(ctx, func(s models.WorkoutSession) (models.WorkoutSession, error) {
		var err error
		s, justCompleted, err = UpdateSet(s, entryID, setID, weight, reps, completed)
		return s, err
	})
	if err != nil {
		return snap, err
	}
	if justCompleted {
		secs, err := e.repo.RestDuration(ctx)
		if err != nil {
			e.log.Error("loading rest duration", "error", err)
			secs = store.DefaultRestDuration
		}
		e.timer.Start(secs)
	}
	return snap, nil
}

// DeleteSet removes one set from the entry.
func (e *Engine) DeleteSet(ctx context.Context, entryID, setID uuid.UUID) (models.WorkoutSession, error) {
	return e.mutate(ctx, func(s models.WorkoutSession) (models.WorkoutSession, error) {
		return DeleteSet(s, entryID, setID)
	})
}

// AddExerciseToWorkout appends an entry for the exercise to the active
// session. Adding an exercise that already has an entry is a no-op.
func (e *Engine) AddExerciseToWorkout(ctx context.Context, exerciseID uuid.UUID) (models.WorkoutSession, error) {
	return e.mutate(ctx, func(s models.WorkoutSession) (models.WorkoutSession, error) {
		return AddExerciseEntry(s, exerciseID), nil
	})
}

// UpdateNotes replaces an entry's notes.
func (e *Engine) UpdateNotes(ctx context.Context, entryID uuid.UUID, notes string) (models.WorkoutSession, error) {
	return e.mutate(ctx, func(s models.WorkoutSession) (models.WorkoutSession, error) {
		return UpdateNotes(s, entryID, notes)
	})
}

// ReorderEntries rearranges the active session's entries.
func (e *Engine) ReorderEntries(ctx context.Context, order []uuid.UUID) (models.WorkoutSession, error) {
	return e.mutate(ctx, func(s models.WorkoutSession) (models.WorkoutSession, error) {
		return ReorderEntries(s, order)
	})
}

// --- Queries ---

// Record looks up the personal record for an exercise across ended sessions
// and the active one.
func (e *Engine) Record(ctx context.Context, exerciseID uuid.UUID) (*Record, error) {
	history, err := e.repo.History(ctx)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	active := e.active
	e.mu.Unlock()
	return PersonalRecord(exerciseID, history, active), nil
}

// History returns the finished-workout history, most recent first.
func (e *Engine) History(ctx context.Context) ([]models.WorkoutSession, error) {
	return e.repo.History(ctx)
}

// RestDuration returns the configured default rest countdown in seconds.
func (e *Engine) RestDuration(ctx context.Context) (int, error) {
	return e.repo.RestDuration(ctx)
}

// SetRestDuration persists a new default rest countdown.
func (e *Engine) SetRestDuration(ctx context.Context, secs int) error {
	if err := e.repo.SaveRestDuration(ctx, secs); err != nil {
		return err
	}
	e.timer.SetDuration(secs)
	return nil
}

// --- internals ---

// mutate applies a pure session function to the active session and, on
// success, installs the result and mirrors it for crash resume.
func (e *Engine) mutate(ctx context.Context, fn func(models.WorkoutSession) (models.WorkoutSession, error)) (models.WorkoutSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil {
		return models.WorkoutSession{}, ErrNoActiveSession
	}
	next, err := fn(*e.active)
	if err != nil {
		return *e.active, err
	}
	e.active = &next
	if err := e.mirrorLocked(ctx); err != nil {
		return next, err
	}
	return next, nil
}

// mirrorLocked upserts a deep copy of the active session into the
// unfinished collection, keyed by session id. Callers hold e.mu.
func (e *Engine) mirrorLocked(ctx context.Context) error {
	list, err := e.repo.Unfinished(ctx)
	if err != nil {
		return err
	}
	mirror := e.active.Clone()
	replaced := false
	for i := range list {
		if list[i].ID == mirror.ID {
			list[i] = mirror
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, mirror)
	}
	return e.repo.SaveUnfinished(ctx, list)
}

// removeUnfinishedLocked drops the session from the unfinished collection.
// Removing an absent id is not an error. Callers hold e.mu.
func (e *Engine) removeUnfinishedLocked(ctx context.Context, id uuid.UUID) error {
	list, err := e.repo.Unfinished(ctx)
	if err != nil {
		return err
	}
	kept := make([]models.WorkoutSession, 0, len(list))
	for _, s := range list {
		if s.ID == id {
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) == len(list) {
		return nil
	}
	return e.repo.SaveUnfinished(ctx, kept)
}

func hasDuplicate(ids []uuid.UUID) bool {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
