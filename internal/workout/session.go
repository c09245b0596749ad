// Package workout implements the session engine: creating a workout session
// from a routine, mutating it set by set, mirroring it for crash resume, and
// finalizing it into history.
package workout

import (
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Session functions are pure: each returns a new session value with exactly
// the targeted element changed. Untouched entries and sets are shared with
// the input, so previously returned snapshots are never mutated in place.

// NewSession creates an active session. With a routine, each of its
// exercises gets one entry seeded from the most recent ended session for
// that routine: one incomplete set per prior completed set, carrying weight
// and reps, or a single zero set when there is no prior performance. With a
// nil routine the session starts blank.
func NewSession(routine *models.Routine, history []models.WorkoutSession, now time.Time) models.WorkoutSession {
	s := models.WorkoutSession{
		ID:      uuid.New(),
		Date:    now,
		Entries: []models.SessionEntry{},
	}
	if routine == nil {
		return s
	}

	id := routine.ID
	s.RoutineID = &id
	prior := lastEndedFor(routine.ID, history)

	for _, exerciseID := range routine.ExerciseIDs {
		entry := models.SessionEntry{
			ID:         uuid.New(),
			ExerciseID: exerciseID,
		}
		if prior != nil {
			if pe := prior.EntryFor(exerciseID); pe != nil {
				for _, set := range pe.Sets {
					if !set.Completed {
						continue
					}
					entry.Sets = append(entry.Sets, models.WorkoutSet{
						ID:     uuid.New(),
						Weight: set.Weight,
						Reps:   set.Reps,
					})
				}
			}
		}
		if len(entry.Sets) == 0 {
			entry.Sets = []models.WorkoutSet{{ID: uuid.New()}}
		}
		s.Entries = append(s.Entries, entry)
	}
	return s
}

// lastEndedFor returns the most recent ended session for the routine.
func lastEndedFor(routineID uuid.UUID, history []models.WorkoutSession) *models.WorkoutSession {
	var best *models.WorkoutSession
	for i := range history {
		s := &history[i]
		if !s.Ended || s.RoutineID == nil || *s.RoutineID != routineID {
			continue
		}
		if best == nil || s.Date.After(best.Date) {
			best = s
		}
	}
	return best
}

// AddSet appends a set to the entry, seeded from the entry's last set
// (weight and reps carried, completed false) or zero-valued when the entry
// is empty.
func AddSet(s models.WorkoutSession, entryID uuid.UUID) (models.WorkoutSession, error) {
	return replaceEntry(s, entryID, func(e models.SessionEntry) (models.SessionEntry, error) {
		set := models.WorkoutSet{ID: uuid.New()}
		if n := len(e.Sets); n > 0 {
			set.Weight = e.Sets[n-1].Weight
			set.Reps = e.Sets[n-1].Reps
		}
		e.Sets = append(append([]models.WorkoutSet(nil), e.Sets...), set)
		return e, nil
	})
}

// UpdateSet replaces the set's weight, reps and completion flag. The second
// return value reports whether this update transitioned the set from
// incomplete to completed, which is what starts the rest countdown.
func UpdateSet(s models.WorkoutSession, entryID, setID uuid.UUID, weight float64, reps int, completed bool) (models.WorkoutSession, bool, error) {
	justCompleted := false
	s, err := replaceEntry(s, entryID, func(e models.SessionEntry) (models.SessionEntry, error) {
		sets := append([]models.WorkoutSet(nil), e.Sets...)
		for i := range sets {
			if sets[i].ID != setID {
				continue
			}
			justCompleted = completed && !sets[i].Completed
			sets[i] = models.WorkoutSet{ID: setID, Weight: weight, Reps: reps, Completed: completed}
			e.Sets = sets
			return e, nil
		}
		return e, ErrSetNotFound
	})
	return s, justCompleted, err
}

// DeleteSet removes the set from the entry.
func DeleteSet(s models.WorkoutSession, entryID, setID uuid.UUID) (models.WorkoutSession, error) {
	return replaceEntry(s, entryID, func(e models.SessionEntry) (models.SessionEntry, error) {
		sets := make([]models.WorkoutSet, 0, len(e.Sets))
		found := false
		for _, set := range e.Sets {
			if set.ID == setID {
				found = true
				continue
			}
			sets = append(sets, set)
		}
		if !found {
			return e, ErrSetNotFound
		}
		e.Sets = sets
		return e, nil
	})
}

// AddExerciseEntry appends an entry for the exercise with a single zero set.
// Idempotent: a session never holds two entries for the same exercise.
func AddExerciseEntry(s models.WorkoutSession, exerciseID uuid.UUID) models.WorkoutSession {
	if s.EntryFor(exerciseID) != nil {
		return s
	}
	entry := models.SessionEntry{
		ID:         uuid.New(),
		ExerciseID: exerciseID,
		Sets:       []models.WorkoutSet{{ID: uuid.New()}},
	}
	s.Entries = append(append([]models.SessionEntry(nil), s.Entries...), entry)
	return s
}

// UpdateNotes replaces the entry's free-text notes.
func UpdateNotes(s models.WorkoutSession, entryID uuid.UUID, notes string) (models.WorkoutSession, error) {
	return replaceEntry(s, entryID, func(e models.SessionEntry) (models.SessionEntry, error) {
		e.Notes = notes
		return e, nil
	})
}

// ReorderEntries rearranges the session's entries into the given order. The
// order must list every current entry id exactly once.
func ReorderEntries(s models.WorkoutSession, order []uuid.UUID) (models.WorkoutSession, error) {
	if len(order) != len(s.Entries) {
		return s, ErrReorderMismatch
	}
	byID := make(map[uuid.UUID]models.SessionEntry, len(s.Entries))
	for _, e := range s.Entries {
		byID[e.ID] = e
	}
	entries := make([]models.SessionEntry, 0, len(order))
	for _, id := range order {
		e, ok := byID[id]
		if !ok {
			return s, ErrReorderMismatch
		}
		delete(byID, id)
		entries = append(entries, e)
	}
	s.Entries = entries
	return s, nil
}

// Finalize stamps the session ended, prunes entries without a single
// completed set, and prepends the result to history. A session with no
// completed sets at all leaves history untouched; the third return value
// reports whether the session was kept. The input session and history are
// not mutated.
func Finalize(s models.WorkoutSession, history []models.WorkoutSession, now time.Time) ([]models.WorkoutSession, models.WorkoutSession, bool) {
	final := s.Clone()
	final.Ended = true
	final.Date = now

	entries := final.Entries[:0:0]
	for _, e := range final.Entries {
		for _, set := range e.Sets {
			if set.Completed {
				entries = append(entries, e)
				break
			}
		}
	}
	final.Entries = entries

	if len(final.Entries) == 0 {
		return history, final, false
	}

	out := make([]models.WorkoutSession, 0, len(history)+1)
	out = append(out, final)
	out = append(out, history...)
	return out, final, true
}

// replaceEntry applies fn to the entry with the given id and returns a new
// session with that entry replaced; sibling entries are shared unchanged.
func replaceEntry(s models.WorkoutSession, entryID uuid.UUID, fn func(models.SessionEntry) (models.SessionEntry, error)) (models.WorkoutSession, error) {
	for i, e := range s.Entries {
		if e.ID != entryID {
			continue
		}
		ne, err := fn(e)
		if err != nil {
			return s, err
		}
		entries := append([]models.SessionEntry(nil), s.Entries...)
		entries[i] = ne
		s.Entries = entries
		return s, nil
	}
	return s, ErrEntryNotFound
}
