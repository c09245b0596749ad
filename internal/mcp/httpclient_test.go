package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
	"github.com/google/uuid"
)

func TestHTTPClientExercises(t *testing.T) {
	want := []models.Exercise{
		{ID: uuid.New(), Name: "Bench Press", BodyPart: models.BodyPartChest},
		{ID: uuid.New(), Name: "Squat", BodyPart: models.BodyPartLegs},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/exercises" {
			t.Errorf("path = %q, want /api/v1/exercises", r.URL.Path)
		}
		json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	got, err := NewHTTPClient(srv.URL).Exercises(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Bench Press" {
		t.Errorf("exercises = %+v", got)
	}
}

func TestHTTPClientHistory(t *testing.T) {
	want := []models.WorkoutSession{
		{ID: uuid.New(), Date: time.Now().UTC(), Ended: true},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/history" {
			t.Errorf("path = %q, want /api/v1/history", r.URL.Path)
		}
		json.NewEncoder(w).Encode(want)
	}))
	defer srv.Close()

	got, err := NewHTTPClient(srv.URL).History(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != want[0].ID {
		t.Errorf("history = %+v", got)
	}
}

func TestHTTPClientRecord(t *testing.T) {
	exID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/records/"+exID.String() {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(workout.Record{Weight: 140, Reps: 3})
	}))
	defer srv.Close()

	rec, err := NewHTTPClient(srv.URL).Record(context.Background(), exID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil || rec.Weight != 140 || rec.Reps != 3 {
		t.Errorf("record = %+v, want 140x3", rec)
	}
}

// TestHTTPClientRecordNotFound verifies a 404 maps to a nil record.
func TestHTTPClientRecordNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"no completed sets"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	rec, err := NewHTTPClient(srv.URL).Record(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Errorf("record = %+v, want nil", rec)
	}
}

func TestHTTPClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewHTTPClient(srv.URL).Routines(context.Background()); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestHTTPClientTrimsTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/routines" {
			t.Errorf("path = %q, want /api/v1/routines", r.URL.Path)
		}
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	if _, err := NewHTTPClient(srv.URL + "/").Routines(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
