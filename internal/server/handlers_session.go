package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/claude/liftlog/internal/transfer"
	"github.com/google/uuid"
)

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.engine.Active()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active session"})
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoutineID *uuid.UUID `json:"routineId"`
	}
	// An empty body starts a blank session.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	session, err := s.engine.StartSession(r.Context(), req.RoutineID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	final, kept, err := s.engine.FinishSession(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": final, "kept": kept})
}

func (s *Server) handleDiscardSession(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DiscardActive(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExerciseID uuid.UUID `json:"exerciseId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	session, err := s.engine.AddExerciseToWorkout(r.Context(), req.ExerciseID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleReorderEntries(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order []uuid.UUID `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	session, err := s.engine.ReorderEntries(r.Context(), req.Order)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleUpdateNotes(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathUUID(w, r, "entryID")
	if !ok {
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	session, err := s.engine.UpdateNotes(r.Context(), entryID, req.Notes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleAddSet(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathUUID(w, r, "entryID")
	if !ok {
		return
	}
	session, err := s.engine.AddSet(r.Context(), entryID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathUUID(w, r, "entryID")
	if !ok {
		return
	}
	setID, ok := pathUUID(w, r, "setID")
	if !ok {
		return
	}
	var req struct {
		Weight    float64 `json:"weight"`
		Reps      int     `json:"reps"`
		Completed bool    `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	session, err := s.engine.UpdateSet(r.Context(), entryID, setID, req.Weight, req.Reps, req.Completed)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathUUID(w, r, "entryID")
	if !ok {
		return
	}
	setID, ok := pathUUID(w, r, "setID")
	if !ok {
		return
	}
	session, err := s.engine.DeleteSet(r.Context(), entryID, setID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleListUnfinished(w http.ResponseWriter, r *http.Request) {
	list, err := s.engine.Unfinished(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	session, err := s.engine.Resume(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDiscardUnfinished(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.engine.DiscardUnfinished(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTimerState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Timer().Snapshot())
}

func (s *Server) handleTimerStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seconds int `json:"seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	secs := req.Seconds
	if secs <= 0 {
		var err error
		secs, err = s.engine.RestDuration(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
	}
	s.engine.Timer().Start(secs)
	writeJSON(w, http.StatusOK, s.engine.Timer().Snapshot())
}

func (s *Server) handleTimerStop(w http.ResponseWriter, r *http.Request) {
	s.engine.Timer().Stop()
	writeJSON(w, http.StatusOK, s.engine.Timer().Snapshot())
}

func (s *Server) handleTimerReset(w http.ResponseWriter, r *http.Request) {
	s.engine.Timer().Reset()
	writeJSON(w, http.StatusOK, s.engine.Timer().Snapshot())
}

func (s *Server) handleGetRestDuration(w http.ResponseWriter, r *http.Request) {
	secs, err := s.engine.RestDuration(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"restDuration": secs})
}

func (s *Server) handleSetRestDuration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RestDuration int `json:"restDuration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.RestDuration <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restDuration must be positive"})
		return
	}
	if err := s.engine.SetRestDuration(r.Context(), req.RestDuration); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"restDuration": req.RestDuration})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	backup, err := transfer.Export(r.Context(), s.repo)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="liftlog-backup.json"`)
	writeJSON(w, http.StatusOK, backup)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading body: " + err.Error()})
		return
	}
	backup, err := transfer.Parse(data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := transfer.Restore(r.Context(), s.repo, backup); err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("backup imported",
		"exercises", len(backup.Exercises),
		"routines", len(backup.Routines),
		"workouts", len(backup.WorkoutHistory),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"imported": map[string]int{
			"exercises": len(backup.Exercises),
			"routines":  len(backup.Routines),
			"workouts":  len(backup.WorkoutHistory),
		},
	})
}
