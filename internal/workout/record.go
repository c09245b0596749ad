package workout

import (
	"github.com/claude/liftlog/internal/models"
	"github.com/google/uuid"
)

// Record is a personal record: the heaviest completed set ever logged for an
// exercise, with the reps performed at that weight.
type Record struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
}

// PersonalRecord scans ended sessions plus the active session, if any, for
// the exercise's heaviest completed set. History is stored most recent
// first; the scan runs chronologically, so on equal weight the earliest set
// wins and its reps accompany the record. Returns nil when the exercise has
// no completed sets.
func PersonalRecord(exerciseID uuid.UUID, history []models.WorkoutSession, active *models.WorkoutSession) *Record {
	var best *Record

	consider := func(s *models.WorkoutSession) {
		e := s.EntryFor(exerciseID)
		if e == nil {
			return
		}
		for _, set := range e.Sets {
			if !set.Completed {
				continue
			}
			if best == nil || set.Weight > best.Weight {
				best = &Record{Weight: set.Weight, Reps: set.Reps}
			}
		}
	}

	for i := len(history) - 1; i >= 0; i-- {
		if !history[i].Ended {
			continue
		}
		consider(&history[i])
	}
	if active != nil {
		consider(active)
	}
	return best
}
