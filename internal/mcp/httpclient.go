package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/workout"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the LiftLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("httpclient: read body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, v any) error {
	body, status, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("httpclient: %s returned %d: %s", path, status, body)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) Exercises(ctx context.Context) ([]models.Exercise, error) {
	var exercises []models.Exercise
	if err := c.getJSON(ctx, "/api/v1/exercises", &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

func (c *HTTPClient) Routines(ctx context.Context) ([]models.Routine, error) {
	var routines []models.Routine
	if err := c.getJSON(ctx, "/api/v1/routines", &routines); err != nil {
		return nil, err
	}
	return routines, nil
}

func (c *HTTPClient) History(ctx context.Context) ([]models.WorkoutSession, error) {
	var history []models.WorkoutSession
	if err := c.getJSON(ctx, "/api/v1/history", &history); err != nil {
		return nil, err
	}
	return history, nil
}

// Record fetches the personal record for an exercise. A 404 means no
// completed sets exist, reported as a nil record, not an error.
func (c *HTTPClient) Record(ctx context.Context, exerciseID uuid.UUID) (*workout.Record, error) {
	path := "/api/v1/records/" + exerciseID.String()
	body, status, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, status, body)
	}

	var rec workout.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("httpclient: decode record: %w", err)
	}
	return &rec, nil
}
