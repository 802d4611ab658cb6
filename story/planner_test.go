package story

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Tanisha1055/Story-AI-Reel-Generation/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Video.TotalReelDurationSec = 30
	cfg.Video.MaxDurationPerSceneSec = 5
	cfg.Models.Storyboard = "gemini-1.5-pro"
	return cfg
}

// scriptedGenerator returns canned responses in order.
type scriptedGenerator struct {
	responses []string
	errs      []error
	calls     int
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	i := g.calls
	g.calls++
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.responses) {
		return g.responses[i], nil
	}
	return "", errors.New("no more scripted responses")
}

func newTestPlanner(gen TextGenerator) *Planner {
	p := NewPlanner(testConfig(), gen)
	p.backoff = time.Millisecond
	return p
}

const validBoard = `{
	"title": "The Hidden Ruins",
	"storyboard": [
		{"scene_title": "Arrival", "scene_description": "An explorer reaches the gates.", "character_prompt": "weathered explorer", "setting_prompt": "vine-covered stone gates", "motion_prompt": "slow push in"},
		{"scene_title": "Descent", "scene_description": "Torchlight on carved stairs.", "character_prompt": "explorer with torch", "setting_prompt": "dark stairwell", "motion_prompt": "crane shot down"}
	]
}`

func TestPlanParsesValidResponse(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{validBoard}}
	board, err := newTestPlanner(gen).Plan(context.Background(), "Lost City")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if board.Theme != "Lost City" {
		t.Errorf("Theme = %q", board.Theme)
	}
	if board.Title != "The Hidden Ruins" {
		t.Errorf("Title = %q", board.Title)
	}
	// A count mismatch (2 scenes, 6 requested) is a warning, not an error.
	if len(board.Scenes) != 2 {
		t.Fatalf("Scenes = %d, want 2", len(board.Scenes))
	}
	if board.Scenes[0].Title != "Arrival" || board.Scenes[1].Title != "Descent" {
		t.Errorf("scene order not preserved: %q, %q", board.Scenes[0].Title, board.Scenes[1].Title)
	}
}

func TestPlanStripsMarkdownFences(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"```json\n" + validBoard + "\n```"}}
	board, err := newTestPlanner(gen).Plan(context.Background(), "Lost City")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(board.Scenes) != 2 {
		t.Errorf("Scenes = %d, want 2", len(board.Scenes))
	}
}

func TestPlanRetriesOnParseFailure(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"not json", "still not json", validBoard}}
	board, err := newTestPlanner(gen).Plan(context.Background(), "Lost City")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if gen.calls != 3 {
		t.Errorf("generator calls = %d, want 3", gen.calls)
	}
	if len(board.Scenes) != 2 {
		t.Errorf("Scenes = %d, want 2", len(board.Scenes))
	}
}

func TestPlanRetryDiscardsPartialDecode(t *testing.T) {
	// The first response decodes its title before failing on the
	// storyboard field; nothing from it may survive into the retry.
	partial := `{"title": "Stale Title", "storyboard": "not a list"}`
	retry := `{"storyboard": [
		{"scene_title": "Only", "scene_description": "A single scene.", "character_prompt": "c", "setting_prompt": "s", "motion_prompt": "m"}
	]}`
	gen := &scriptedGenerator{responses: []string{partial, retry}}
	board, err := newTestPlanner(gen).Plan(context.Background(), "Lost City")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if board.Title != "" {
		t.Errorf("Title = %q, want empty (not carried over from a failed attempt)", board.Title)
	}
	if len(board.Scenes) != 1 || board.Scenes[0].Title != "Only" {
		t.Errorf("Scenes = %+v", board.Scenes)
	}
}

func TestPlanExhaustsRetries(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"bad", "bad", "bad", "bad"}}
	_, err := newTestPlanner(gen).Plan(context.Background(), "Lost City")
	var planErr *PlanningError
	if !errors.As(err, &planErr) {
		t.Fatalf("Plan() error type = %T, want *PlanningError", err)
	}
	if gen.calls != 3 {
		t.Errorf("generator calls = %d, want exactly 3", gen.calls)
	}
}

func TestPlanBackendFailureIsFatalImmediately(t *testing.T) {
	backendErr := errors.New("backend unavailable")
	gen := &scriptedGenerator{errs: []error{backendErr}}
	_, err := newTestPlanner(gen).Plan(context.Background(), "Lost City")
	var planErr *PlanningError
	if !errors.As(err, &planErr) {
		t.Fatalf("Plan() error type = %T, want *PlanningError", err)
	}
	if !errors.Is(err, backendErr) {
		t.Error("PlanningError does not wrap the backend cause")
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1 (no retry on call failure)", gen.calls)
	}
}

func TestPlanRejectsEmptySceneList(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{`{"title": "Empty", "storyboard": []}`}}
	_, err := newTestPlanner(gen).Plan(context.Background(), "Lost City")
	var planErr *PlanningError
	if !errors.As(err, &planErr) {
		t.Fatalf("Plan() error type = %T, want *PlanningError", err)
	}
}
