package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/transfer"
	"github.com/claude/liftlog/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.engine.Exercises(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		BodyPart string `json:"bodyPart"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	ex, err := s.engine.AddExercise(r.Context(), req.Name, models.ParseBodyPart(req.BodyPart))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ex)
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.engine.DeleteExercise(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "exerciseID")
	if !ok {
		return
	}
	rec, err := s.engine.Record(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no completed sets for this exercise"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListRoutines(w http.ResponseWriter, r *http.Request) {
	routines, err := s.engine.Routines(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routines)
}

type routineRequest struct {
	Name        string      `json:"name"`
	ExerciseIDs []uuid.UUID `json:"exerciseIds"`
}

func (s *Server) handleCreateRoutine(w http.ResponseWriter, r *http.Request) {
	var req routineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	routine, err := s.engine.CreateRoutine(r.Context(), req.Name, req.ExerciseIDs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, routine)
}

func (s *Server) handleUpdateRoutine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req routineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	routine, err := s.engine.UpdateRoutine(r.Context(), id, req.Name, req.ExerciseIDs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routine)
}

func (s *Server) handleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := s.engine.DeleteRoutine(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := s.engine.History(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	info, ok := r.Context().Value(userInfoKey).(UserInfo)
	if !ok {
		info = UserInfo{Login: "local", DisplayName: "Local Dev User"}
	}
	writeJSON(w, http.StatusOK, info)
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps engine errors onto HTTP statuses: validation failures are
// 400, uniqueness and lifecycle conflicts 409, lookups 404.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, workout.ErrDuplicateName),
		errors.Is(err, workout.ErrSessionActive),
		errors.Is(err, workout.ErrNoActiveSession):
		status = http.StatusConflict
	case errors.Is(err, workout.ErrEmptyName),
		errors.Is(err, workout.ErrDuplicateExercise),
		errors.Is(err, workout.ErrReorderMismatch),
		errors.Is(err, transfer.ErrInvalidBackup):
		status = http.StatusBadRequest
	case errors.Is(err, workout.ErrExerciseNotFound),
		errors.Is(err, workout.ErrRoutineNotFound),
		errors.Is(err, workout.ErrSessionNotFound),
		errors.Is(err, workout.ErrEntryNotFound),
		errors.Is(err, workout.ErrSetNotFound):
		status = http.StatusNotFound
	default:
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
		return uuid.UUID{}, false
	}
	return id, true
}
