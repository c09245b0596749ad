package workout

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/store"
	"github.com/claude/liftlog/internal/timer"
	"github.com/google/uuid"
)

// memStore is an in-memory Store for engine tests. Values round-trip through
// JSON, so stored copies share no structure with the caller's values.
type memStore struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemStore() *memStore { return &memStore{m: map[string][]byte{}} }

func (s *memStore) Get(_ context.Context, key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.m[key]
	if !ok {
		return store.ErrNotFound
	}
	return json.Unmarshal(raw, v)
}

func (s *memStore) Set(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = raw
	return nil
}

func (s *memStore) Close() error { return nil }

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	rt := timer.New(store.DefaultRestDuration)
	t.Cleanup(rt.Close)
	return NewEngine(store.NewRepo(newMemStore()), rt, log)
}

func addExercise(t *testing.T, e *Engine, name string) models.Exercise {
	t.Helper()
	ex, err := e.AddExercise(context.Background(), name, models.BodyPartChest)
	if err != nil {
		t.Fatalf("adding exercise %q: %v", name, err)
	}
	return ex
}

// TestAddExerciseRejectsDuplicateName verifies the case-insensitive
// uniqueness rule and that a rejected add writes nothing.
func TestAddExerciseRejectsDuplicateName(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	addExercise(t, e, "Bench Press")
	if _, err := e.AddExercise(ctx, "bench press", models.BodyPartChest); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}

	exercises, err := e.Exercises(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(exercises) != 1 {
		t.Errorf("catalog = %d exercises, want 1", len(exercises))
	}
}

// TestDeleteExerciseCascadesToRoutines verifies the id is removed from every
// routine while history keeps its stale reference.
func TestDeleteExerciseCascadesToRoutines(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	bench := addExercise(t, e, "Bench Press")
	squat := addExercise(t, e, "Squat")
	routine, err := e.CreateRoutine(ctx, "Full Body", []uuid.UUID{bench.ID, squat.ID})
	if err != nil {
		t.Fatal(err)
	}

	// Log a workout referencing the exercise, so history has a reference.
	if _, err := e.StartSession(ctx, &routine.ID); err != nil {
		t.Fatal(err)
	}
	active, _ := e.Active()
	entry := active.Entries[0]
	if _, err := e.UpdateSet(ctx, entry.ID, entry.Sets[0].ID, 100, 5, true); err != nil {
		t.Fatal(err)
	}
	if _, _, err := e.FinishSession(ctx); err != nil {
		t.Fatal(err)
	}

	if err := e.DeleteExercise(ctx, bench.ID); err != nil {
		t.Fatal(err)
	}

	routines, err := e.Routines(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(routines[0].ExerciseIDs) != 1 || routines[0].ExerciseIDs[0] != squat.ID {
		t.Errorf("routine ids = %v, want only squat", routines[0].ExerciseIDs)
	}

	history, err := e.History(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Entries[0].ExerciseID != bench.ID {
		t.Error("history was rewritten; stale references must be kept")
	}
}

// TestMutationsMirrorActiveSession verifies every mutation upserts a deep
// copy into the unfinished collection and that the mirror is isolated from
// later mutations of the working copy.
func TestMutationsMirrorActiveSession(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	bench := addExercise(t, e, "Bench Press")
	s, err := e.StartSession(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.AddExerciseToWorkout(ctx, bench.ID); err != nil {
		t.Fatal(err)
	}

	mirrored, err := e.Unfinished(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(mirrored) != 1 || mirrored[0].ID != s.ID {
		t.Fatalf("unfinished = %+v, want one mirror of the active session", mirrored)
	}
	before := mirrored[0].Clone()

	// Mutate the active session; the copy we already read must not change.
	snap, _ := e.Active()
	entry := snap.Entries[0]
	if _, err := e.UpdateSet(ctx, entry.ID, entry.Sets[0].ID, 100, 5, true); err != nil {
		t.Fatal(err)
	}
	if before.Entries[0].Sets[0].Completed {
		t.Error("previously mirrored copy changed after a later mutation")
	}

	// The store's current mirror reflects the mutation.
	mirrored, err = e.Unfinished(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !mirrored[0].Entries[0].Sets[0].Completed {
		t.Error("mirror not updated after mutation")
	}
}

// TestCompletionStartsRestTimer verifies the false-to-true set transition
// starts the countdown and un-completing does not stop it.
func TestCompletionStartsRestTimer(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	bench := addExercise(t, e, "Bench Press")
	if _, err := e.StartSession(ctx, nil); err != nil {
		t.Fatal(err)
	}
	snap, err := e.AddExerciseToWorkout(ctx, bench.ID)
	if err != nil {
		t.Fatal(err)
	}
	entry := snap.Entries[0]

	if st := e.Timer().Snapshot(); st.Running {
		t.Fatal("timer running before any completion")
	}

	if _, err := e.UpdateSet(ctx, entry.ID, entry.Sets[0].ID, 60, 10, true); err != nil {
		t.Fatal(err)
	}
	if st := e.Timer().Snapshot(); !st.Running {
		t.Fatal("timer not started by set completion")
	}

	// Toggling the set back to incomplete leaves the countdown running.
	if _, err := e.UpdateSet(ctx, entry.ID, entry.Sets[0].ID, 60, 10, false); err != nil {
		t.Fatal(err)
	}
	if st := e.Timer().Snapshot(); !st.Running {
		t.Error("un-completing a set stopped the timer")
	}

	// Editing weight on an already-completed set must not restart it.
	if _, err := e.UpdateSet(ctx, entry.ID, entry.Sets[0].ID, 62.5, 10, true); err != nil {
		t.Fatal(err)
	}
}

// TestFinishClearsMirrorAndTimer verifies finalize moves the session to
// history, clears the unfinished mirror and the active session, and stops
// the timer.
func TestFinishClearsMirrorAndTimer(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	bench := addExercise(t, e, "Bench Press")
	if _, err := e.StartSession(ctx, nil); err != nil {
		t.Fatal(err)
	}
	snap, err := e.AddExerciseToWorkout(ctx, bench.ID)
	if err != nil {
		t.Fatal(err)
	}
	entry := snap.Entries[0]
	if _, err := e.UpdateSet(ctx, entry.ID, entry.Sets[0].ID, 100, 5, true); err != nil {
		t.Fatal(err)
	}

	final, kept, err := e.FinishSession(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !kept || !final.Ended {
		t.Fatalf("final = %+v kept = %v, want kept ended session", final, kept)
	}

	if _, ok := e.Active(); ok {
		t.Error("active session not cleared")
	}
	unfinished, _ := e.Unfinished(ctx)
	if len(unfinished) != 0 {
		t.Errorf("unfinished = %d entries, want 0", len(unfinished))
	}
	history, _ := e.History(ctx)
	if len(history) != 1 {
		t.Errorf("history = %d entries, want 1", len(history))
	}
	if st := e.Timer().Snapshot(); st.Running {
		t.Error("timer still running after finish")
	}

	if _, _, err := e.FinishSession(ctx); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("second finish err = %v, want ErrNoActiveSession", err)
	}
}

// TestFinishDiscardsEmptySession verifies a session with no completed sets
// leaves history untouched but still clears the mirror.
func TestFinishDiscardsEmptySession(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	bench := addExercise(t, e, "Bench Press")
	if _, err := e.StartSession(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddExerciseToWorkout(ctx, bench.ID); err != nil {
		t.Fatal(err)
	}

	_, kept, err := e.FinishSession(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if kept {
		t.Error("session with no completed sets was kept")
	}
	history, _ := e.History(ctx)
	if len(history) != 0 {
		t.Errorf("history = %d entries, want 0", len(history))
	}
	unfinished, _ := e.Unfinished(ctx)
	if len(unfinished) != 0 {
		t.Errorf("unfinished = %d entries, want 0", len(unfinished))
	}
}

// TestResumeRestoresDeepCopy verifies an interrupted session can be resumed
// from the mirror and discarding an unfinished session clears a matching
// active session.
func TestResumeRestoresDeepCopy(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	bench := addExercise(t, e, "Bench Press")
	s, err := e.StartSession(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddExerciseToWorkout(ctx, bench.ID); err != nil {
		t.Fatal(err)
	}

	// Simulate an interruption: a fresh engine over the same store.
	e2 := NewEngine(store.NewRepo(e.repo.Store()), timer.New(90), slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(e2.Timer().Close)

	unfinished, err := e2.Unfinished(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(unfinished) != 1 {
		t.Fatalf("unfinished = %d, want 1", len(unfinished))
	}

	resumed, err := e2.Resume(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if resumed.ID != s.ID || len(resumed.Entries) != 1 {
		t.Fatalf("resumed = %+v, want the interrupted session", resumed)
	}

	if err := e2.DiscardUnfinished(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	if _, ok := e2.Active(); ok {
		t.Error("discarding the active session's mirror must clear it")
	}
	unfinished, _ = e2.Unfinished(ctx)
	if len(unfinished) != 0 {
		t.Errorf("unfinished = %d after discard, want 0", len(unfinished))
	}

	if _, err := e2.Resume(ctx, uuid.New()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("resume unknown id err = %v, want ErrSessionNotFound", err)
	}
}

// TestStartSessionGuards verifies one-active-session-at-a-time and the
// unknown-routine error.
func TestStartSessionGuards(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	unknown := uuid.New()
	if _, err := e.StartSession(ctx, &unknown); !errors.Is(err, ErrRoutineNotFound) {
		t.Errorf("err = %v, want ErrRoutineNotFound", err)
	}

	if _, err := e.StartSession(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := e.StartSession(ctx, nil); !errors.Is(err, ErrSessionActive) {
		t.Errorf("err = %v, want ErrSessionActive", err)
	}

	if err := e.DiscardActive(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := e.StartSession(ctx, nil); err != nil {
		t.Errorf("start after discard: %v", err)
	}
}

// TestMutationWithoutActiveSession verifies set-level mutations report
// ErrNoActiveSession instead of touching state.
func TestMutationWithoutActiveSession(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if _, err := e.AddSet(ctx, uuid.New()); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("err = %v, want ErrNoActiveSession", err)
	}
}

// TestRoutineValidation verifies duplicate exercise ids in a routine are
// rejected.
func TestRoutineValidation(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	bench := addExercise(t, e, "Bench Press")
	if _, err := e.CreateRoutine(ctx, "Bad", []uuid.UUID{bench.ID, bench.ID}); !errors.Is(err, ErrDuplicateExercise) {
		t.Errorf("err = %v, want ErrDuplicateExercise", err)
	}
	if _, err := e.CreateRoutine(ctx, "  ", nil); !errors.Is(err, ErrEmptyName) {
		t.Errorf("err = %v, want ErrEmptyName", err)
	}
}

// TestSeededSessionSpansEngineRestarts is the end-to-end seeding check:
// finish a routine workout, start the same routine again, and find the prior
// completed sets carried over.
func TestSeededSessionSpansEngineRestarts(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	bench := addExercise(t, e, "Bench Press")
	routine, err := e.CreateRoutine(ctx, "Push", []uuid.UUID{bench.ID})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.StartSession(ctx, &routine.ID); err != nil {
		t.Fatal(err)
	}
	snap, _ := e.Active()
	entry := snap.Entries[0]
	if _, err := e.UpdateSet(ctx, entry.ID, entry.Sets[0].ID, 80, 8, true); err != nil {
		t.Fatal(err)
	}
	snap, err = e.AddSet(ctx, entry.ID)
	if err != nil {
		t.Fatal(err)
	}
	added := snap.Entries[0].Sets[1]
	if _, err := e.UpdateSet(ctx, entry.ID, added.ID, 85, 5, true); err != nil {
		t.Fatal(err)
	}
	if _, _, err := e.FinishSession(ctx); err != nil {
		t.Fatal(err)
	}

	// Next workout for the same routine starts seeded.
	s2, err := e.StartSession(ctx, &routine.ID)
	if err != nil {
		t.Fatal(err)
	}
	sets := s2.Entries[0].Sets
	if len(sets) != 2 || sets[0].Weight != 80 || sets[1].Weight != 85 {
		t.Fatalf("seeded sets = %+v, want 80x8 and 85x5", sets)
	}
	for _, set := range sets {
		if set.Completed {
			t.Error("seeded set not reset to incomplete")
		}
	}
	if err := e.DiscardActive(ctx); err != nil {
		t.Fatal(err)
	}
}
