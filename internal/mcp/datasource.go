package mcp

import (
	"context"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *workout.Engine
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	Exercises(ctx context.Context) ([]models.Exercise, error)
	Routines(ctx context.Context) ([]models.Routine, error)
	History(ctx context.Context) ([]models.WorkoutSession, error)
	Record(ctx context.Context, exerciseID uuid.UUID) (*workout.Record, error)
}

// Compile-time check: *workout.Engine satisfies DataSource.
var _ DataSource = (*workout.Engine)(nil)
