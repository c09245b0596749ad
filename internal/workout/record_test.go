package workout

import (
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

func sessionWithSets(exerciseID uuid.UUID, date time.Time, ended bool, sets ...models.WorkoutSet) models.WorkoutSession {
	return models.WorkoutSession{
		ID:    uuid.New(),
		Date:  date,
		Ended: ended,
		Entries: []models.SessionEntry{
			{ID: uuid.New(), ExerciseID: exerciseID, Sets: sets},
		},
	}
}

// TestPersonalRecordMaxWeight verifies the record is the heaviest completed
// set with its own reps, across sessions.
func TestPersonalRecordMaxWeight(t *testing.T) {
	ex := uuid.New()
	older := sessionWithSets(ex, time.Now().Add(-48*time.Hour), true,
		models.WorkoutSet{ID: uuid.New(), Weight: 10, Reps: 10, Completed: true})
	newer := sessionWithSets(ex, time.Now().Add(-24*time.Hour), true,
		models.WorkoutSet{ID: uuid.New(), Weight: 12, Reps: 8, Completed: true})

	// Most recent first, as stored.
	rec := PersonalRecord(ex, []models.WorkoutSession{newer, older}, nil)
	if rec == nil {
		t.Fatal("record = nil, want 12x8")
	}
	if rec.Weight != 12 || rec.Reps != 8 {
		t.Errorf("record = %.0fx%d, want 12x8", rec.Weight, rec.Reps)
	}
}

// TestPersonalRecordIgnoresIncomplete verifies incomplete sets and non-ended
// history records never count.
func TestPersonalRecordIgnoresIncomplete(t *testing.T) {
	ex := uuid.New()
	s := sessionWithSets(ex, time.Now(), true,
		models.WorkoutSet{ID: uuid.New(), Weight: 200, Reps: 1, Completed: false},
		models.WorkoutSet{ID: uuid.New(), Weight: 80, Reps: 5, Completed: true})

	rec := PersonalRecord(ex, []models.WorkoutSession{s}, nil)
	if rec == nil || rec.Weight != 80 {
		t.Fatalf("record = %+v, want 80x5", rec)
	}

	if rec := PersonalRecord(uuid.New(), []models.WorkoutSession{s}, nil); rec != nil {
		t.Errorf("record for unknown exercise = %+v, want nil", rec)
	}
}

// TestPersonalRecordIncludesActiveSession verifies completed sets in the
// currently active session count toward the record.
func TestPersonalRecordIncludesActiveSession(t *testing.T) {
	ex := uuid.New()
	history := []models.WorkoutSession{
		sessionWithSets(ex, time.Now().Add(-24*time.Hour), true,
			models.WorkoutSet{ID: uuid.New(), Weight: 100, Reps: 3, Completed: true}),
	}
	active := sessionWithSets(ex, time.Now(), false,
		models.WorkoutSet{ID: uuid.New(), Weight: 105, Reps: 2, Completed: true})

	rec := PersonalRecord(ex, history, &active)
	if rec == nil || rec.Weight != 105 || rec.Reps != 2 {
		t.Fatalf("record = %+v, want 105x2", rec)
	}
}

// TestPersonalRecordTieKeepsEarliest verifies ties on weight keep the first
// set encountered in chronological order.
func TestPersonalRecordTieKeepsEarliest(t *testing.T) {
	ex := uuid.New()
	older := sessionWithSets(ex, time.Now().Add(-48*time.Hour), true,
		models.WorkoutSet{ID: uuid.New(), Weight: 100, Reps: 5, Completed: true})
	newer := sessionWithSets(ex, time.Now().Add(-24*time.Hour), true,
		models.WorkoutSet{ID: uuid.New(), Weight: 100, Reps: 8, Completed: true})

	rec := PersonalRecord(ex, []models.WorkoutSession{newer, older}, nil)
	if rec == nil || rec.Reps != 5 {
		t.Fatalf("record = %+v, want the earlier 100x5", rec)
	}
}
