package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// findExercise resolves a name to a catalog entry, preferring an exact
// case-insensitive match over a partial one.
func findExercise(exercises []models.Exercise, name string) (models.Exercise, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	var partial models.Exercise
	found := false
	for _, ex := range exercises {
		lower := strings.ToLower(ex.Name)
		if lower == name {
			return ex, true
		}
		if !found && strings.Contains(lower, name) {
			partial = ex
			found = true
		}
	}
	return partial, found
}

func exerciseNames(exercises []models.Exercise) map[string]string {
	names := make(map[string]string, len(exercises))
	for _, ex := range exercises {
		names[ex.ID.String()] = ex.Name
	}
	return names
}

// --- Tool definitions ---

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercise catalog. Returns each exercise's id, name, and body part."),
	mcp.WithString("body_part", mcp.Description("Filter by body part"), mcp.Enum("chest", "back", "shoulders", "arms", "legs", "core", "other")),
)

var toolGetRoutines = mcp.NewTool("get_routines",
	mcp.WithDescription("List workout routines with their ordered exercise names."),
)

var toolGetWorkoutHistory = mcp.NewTool("get_workout_history",
	mcp.WithDescription("Query finished workouts. Returns per-workout entries with exercise names, sets, weights, and reps. Only completed sets count toward training."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Filter to workouts containing this exercise (partial name match, e.g. 'bench')")),
)

var toolGetPersonalRecord = mcp.NewTool("get_personal_record",
	mcp.WithDescription("Get the personal record for an exercise: the heaviest completed set and its reps."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (partial match, e.g. 'bench press')")),
)

var toolGetTrainingVolume = mcp.NewTool("get_training_volume",
	mcp.WithDescription("Aggregated training volume per period: workout count, completed sets, total reps, and tonnage (sum of weight x reps)."),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 90 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
	mcp.WithString("bucket", mcp.Description("Aggregation period. Defaults to '1 month'."), mcp.Enum("1 week", "1 month")),
	mcp.WithString("exercise", mcp.Description("Restrict volume to one exercise (partial name match)")),
)

// --- Tool handlers ---

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.ds.Exercises(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	if filter := req.GetString("body_part", ""); filter != "" {
		bp := models.ParseBodyPart(filter)
		kept := make([]models.Exercise, 0, len(exercises))
		for _, ex := range exercises {
			if ex.BodyPart == bp {
				kept = append(kept, ex)
			}
		}
		exercises = kept
	}

	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRoutines(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	routines, err := h.ds.Routines(ctx)
	if err != nil {
		h.log.Error("mcp get_routines", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	exercises, err := h.ds.Exercises(ctx)
	if err != nil {
		h.log.Error("mcp get_routines catalog", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	names := exerciseNames(exercises)

	type routineView struct {
		ID        string   `json:"id"`
		Name      string   `json:"name"`
		Exercises []string `json:"exercises"`
	}
	views := make([]routineView, 0, len(routines))
	for _, r := range routines {
		v := routineView{ID: r.ID.String(), Name: r.Name, Exercises: []string{}}
		for _, exID := range r.ExerciseIDs {
			if name, ok := names[exID.String()]; ok {
				v.Exercises = append(v.Exercises, name)
			}
		}
		views = append(views, v)
	}

	result, err := mcp.NewToolResultJSON(views)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	history, err := h.ds.History(ctx)
	if err != nil {
		h.log.Error("mcp get_workout_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	exercises, err := h.ds.Exercises(ctx)
	if err != nil {
		h.log.Error("mcp get_workout_history catalog", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	names := exerciseNames(exercises)

	var filterID string
	if filter := req.GetString("exercise", ""); filter != "" {
		ex, ok := findExercise(exercises, filter)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no exercise matching %q", filter)), nil
		}
		filterID = ex.ID.String()
	}

	views := make([]workoutView, 0, len(history))
	for _, s := range history {
		if s.Date.Before(start) || s.Date.After(end) {
			continue
		}
		if filterID != "" && !sessionHasExercise(s, filterID) {
			continue
		}
		views = append(views, newWorkoutView(s, names))
	}

	result, err := mcp.NewToolResultJSON(views)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPersonalRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	exercises, err := h.ds.Exercises(ctx)
	if err != nil {
		h.log.Error("mcp get_personal_record catalog", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	ex, ok := findExercise(exercises, name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no exercise matching %q", name)), nil
	}

	rec, err := h.ds.Record(ctx, ex.ID)
	if err != nil {
		h.log.Error("mcp get_personal_record", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if rec == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no completed sets for %q", ex.Name)), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise": ex.Name,
		"weight":   rec.Weight,
		"reps":     rec.Reps,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingVolume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	endStr := req.GetString("end", "")
	startStr := req.GetString("start", "")

	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return mcp.NewToolResultError("invalid end date: " + err.Error()), nil
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return mcp.NewToolResultError("invalid start date: " + err.Error()), nil
		}
	} else {
		start = end.AddDate(0, 0, -90)
	}

	bucket := req.GetString("bucket", "1 month")

	history, err := h.ds.History(ctx)
	if err != nil {
		h.log.Error("mcp get_training_volume", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	var filterID string
	if filter := req.GetString("exercise", ""); filter != "" {
		exercises, err := h.ds.Exercises(ctx)
		if err != nil {
			h.log.Error("mcp get_training_volume catalog", "error", err)
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		ex, ok := findExercise(exercises, filter)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no exercise matching %q", filter)), nil
		}
		filterID = ex.ID.String()
	}

	periods := trainingVolume(history, start, end, bucket, filterID)

	result, err := mcp.NewToolResultJSON(periods)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- History views and volume aggregation ---

type workoutView struct {
	ID      string      `json:"id"`
	Date    time.Time   `json:"date"`
	Entries []entryView `json:"entries"`
}

type entryView struct {
	Exercise string    `json:"exercise"`
	Notes    string    `json:"notes,omitempty"`
	Sets     []setView `json:"sets"`
}

type setView struct {
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
	Completed bool    `json:"completed"`
}

func newWorkoutView(s models.WorkoutSession, names map[string]string) workoutView {
	v := workoutView{ID: s.ID.String(), Date: s.Date, Entries: []entryView{}}
	for _, e := range s.Entries {
		name, ok := names[e.ExerciseID.String()]
		if !ok {
			name = "(deleted exercise)"
		}
		ev := entryView{Exercise: name, Notes: e.Notes, Sets: []setView{}}
		for _, set := range e.Sets {
			ev.Sets = append(ev.Sets, setView{Weight: set.Weight, Reps: set.Reps, Completed: set.Completed})
		}
		v.Entries = append(v.Entries, ev)
	}
	return v
}

func sessionHasExercise(s models.WorkoutSession, exerciseID string) bool {
	for _, e := range s.Entries {
		if e.ExerciseID.String() == exerciseID {
			return true
		}
	}
	return false
}

// VolumePeriod is one aggregation bucket of completed training work.
type VolumePeriod struct {
	Period   string  `json:"period"`
	Workouts int     `json:"workouts"`
	Sets     int     `json:"sets"`
	Reps     int     `json:"reps"`
	Tonnage  float64 `json:"tonnage"`
}

// trainingVolume sums completed sets per weekly or monthly bucket. Periods
// are returned oldest first; empty buckets are omitted.
func trainingVolume(history []models.WorkoutSession, start, end time.Time, bucket, filterID string) []VolumePeriod {
	byPeriod := make(map[string]*VolumePeriod)
	for _, s := range history {
		if s.Date.Before(start) || s.Date.After(end) {
			continue
		}
		key := periodKey(s.Date, bucket)
		p, ok := byPeriod[key]
		if !ok {
			p = &VolumePeriod{Period: key}
			byPeriod[key] = p
		}
		counted := false
		for _, e := range s.Entries {
			if filterID != "" && e.ExerciseID.String() != filterID {
				continue
			}
			for _, set := range e.Sets {
				if !set.Completed {
					continue
				}
				p.Sets++
				p.Reps += set.Reps
				p.Tonnage += set.Weight * float64(set.Reps)
				counted = true
			}
		}
		if counted {
			p.Workouts++
		}
	}

	periods := make([]VolumePeriod, 0, len(byPeriod))
	for _, p := range byPeriod {
		if p.Sets > 0 {
			periods = append(periods, *p)
		}
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Period < periods[j].Period })
	return periods
}

// periodKey buckets a date: ISO week ("2026-W03") or calendar month
// ("2026-01").
func periodKey(t time.Time, bucket string) string {
	if bucket == "1 week" {
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	}
	return t.Format("2006-01")
}
