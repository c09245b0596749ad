package models

import (
	"time"

	"github.com/google/uuid"
)

// Exercise is a named movement in the catalog. Names are unique
// case-insensitively; the exercise itself is immutable once created.
type Exercise struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	BodyPart BodyPart  `json:"bodyPart"`
}

// Routine is an ordered template of exercises. ExerciseIDs contains no
// duplicates.
type Routine struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	ExerciseIDs []uuid.UUID `json:"exerciseIds"`
}

// Clone returns a deep copy of the routine.
func (r Routine) Clone() Routine {
	out := r
	out.ExerciseIDs = append([]uuid.UUID(nil), r.ExerciseIDs...)
	return out
}

// WorkoutSet is one logged attempt: weight lifted, reps performed, and
// whether the set was actually completed.
type WorkoutSet struct {
	ID        uuid.UUID `json:"id"`
	Weight    float64   `json:"weight"`
	Reps      int       `json:"reps"`
	Completed bool      `json:"completed"`
}

// SessionEntry holds the sets performed for one exercise within a session.
type SessionEntry struct {
	ID         uuid.UUID    `json:"id"`
	ExerciseID uuid.UUID    `json:"exerciseId"`
	Notes      string       `json:"notes"`
	Sets       []WorkoutSet `json:"sets"`
}

// Clone returns a deep copy of the entry.
func (e SessionEntry) Clone() SessionEntry {
	out := e
	out.Sets = append([]WorkoutSet(nil), e.Sets...)
	return out
}

// WorkoutSession is one workout occurrence. While Ended is false the session
// is active and mirrored into the unfinished collection after every
// mutation; once Ended it is an immutable history record.
type WorkoutSession struct {
	ID        uuid.UUID      `json:"id"`
	Date      time.Time      `json:"date"`
	RoutineID *uuid.UUID     `json:"routineId"`
	Entries   []SessionEntry `json:"entries"`
	Ended     bool           `json:"ended"`
}

// Clone returns a deep copy of the session. The working copy and the
// mirrored copy must never share mutable structure.
func (s WorkoutSession) Clone() WorkoutSession {
	out := s
	if s.RoutineID != nil {
		id := *s.RoutineID
		out.RoutineID = &id
	}
	out.Entries = make([]SessionEntry, len(s.Entries))
	for i, e := range s.Entries {
		out.Entries[i] = e.Clone()
	}
	return out
}

// Entry returns the entry with the given id, or nil.
func (s *WorkoutSession) Entry(entryID uuid.UUID) *SessionEntry {
	for i := range s.Entries {
		if s.Entries[i].ID == entryID {
			return &s.Entries[i]
		}
	}
	return nil
}

// EntryFor returns the entry referencing the given exercise, or nil.
func (s *WorkoutSession) EntryFor(exerciseID uuid.UUID) *SessionEntry {
	for i := range s.Entries {
		if s.Entries[i].ExerciseID == exerciseID {
			return &s.Entries[i]
		}
	}
	return nil
}

// CompletedSets returns how many sets across all entries are completed.
func (s *WorkoutSession) CompletedSets() int {
	n := 0
	for _, e := range s.Entries {
		for _, set := range e.Sets {
			if set.Completed {
				n++
			}
		}
	}
	return n
}
