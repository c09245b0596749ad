// Package server exposes the workout engine over an HTTP API: the exercise
// catalog, routines, the active session and its mutations, the rest timer,
// resume prompts, personal records, and backup export/import.
package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/liftlog/internal/store"
	"github.com/claude/liftlog/internal/workout"
	"github.com/go-chi/chi/v5"
	"tailscale.com/client/local"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	engine *workout.Engine
	repo   *store.Repo
	log    *slog.Logger
	apiKey string
	ts     *local.Client
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(engine *workout.Engine, repo *store.Repo, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		engine: engine,
		repo:   repo,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale wires the tsnet local client used to identify the caller on
// /api/v1/me. Without it the server reports a local dev identity.
func (s *Server) SetTailscale(lc *local.Client) {
	s.ts = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Catalog
		r.Get("/exercises", s.handleListExercises)
		r.Post("/exercises", s.handleAddExercise)
		r.Delete("/exercises/{id}", s.handleDeleteExercise)
		r.Get("/records/{exerciseID}", s.handleRecord)

		// Routines
		r.Get("/routines", s.handleListRoutines)
		r.Post("/routines", s.handleCreateRoutine)
		r.Put("/routines/{id}", s.handleUpdateRoutine)
		r.Delete("/routines/{id}", s.handleDeleteRoutine)

		// Active session
		r.Get("/session", s.handleGetSession)
		r.Post("/session", s.handleStartSession)
		r.Post("/session/finish", s.handleFinishSession)
		r.Delete("/session", s.handleDiscardSession)
		r.Post("/session/entries", s.handleAddEntry)
		r.Put("/session/entries/order", s.handleReorderEntries)
		r.Put("/session/entries/{entryID}/notes", s.handleUpdateNotes)
		r.Post("/session/entries/{entryID}/sets", s.handleAddSet)
		r.Put("/session/entries/{entryID}/sets/{setID}", s.handleUpdateSet)
		r.Delete("/session/entries/{entryID}/sets/{setID}", s.handleDeleteSet)

		// Resume after interruption
		r.Get("/unfinished", s.handleListUnfinished)
		r.Post("/unfinished/{id}/resume", s.handleResume)
		r.Delete("/unfinished/{id}", s.handleDiscardUnfinished)

		// Rest timer
		r.Get("/timer", s.handleTimerState)
		r.Post("/timer/start", s.handleTimerStart)
		r.Post("/timer/stop", s.handleTimerStop)
		r.Post("/timer/reset", s.handleTimerReset)

		// History and settings
		r.Get("/history", s.handleHistory)
		r.Get("/settings/rest-duration", s.handleGetRestDuration)
		r.Put("/settings/rest-duration", s.handleSetRestDuration)

		// Backup (import replaces the stored dataset; API key required)
		r.Get("/export", s.handleExport)
		r.With(APIKeyAuth(s.apiKey)).Post("/import", s.handleImport)

		// Identity (tsnet WhoIs when on a tailnet)
		r.With(s.tailscaleIdentity).Get("/me", s.handleMe)
	})
}
