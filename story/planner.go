package story

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Tanisha1055/Story-AI-Reel-Generation/config"
	"github.com/Tanisha1055/Story-AI-Reel-Generation/types"
)

// PlanningError means no storyboard could be produced. The pipeline
// cannot proceed without one, so this is always fatal.
type PlanningError struct {
	Err error
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("storyboard planning: %v", e.Err)
}

func (e *PlanningError) Unwrap() error {
	return e.Err
}

// TextGenerator produces one model response for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const promptTemplate = `Generate a high-detail storyboard for a %d second video reel based on the theme: '%s'.
The story must be broken down into exactly %d distinct scenes.
For each scene, provide:
1. 'scene_title': A short title.
2. 'scene_description': A vivid text description of the action, suitable for video generation.
3. 'character_prompt': A high-detail image generation prompt for the main character's state in this scene.
4. 'setting_prompt': A high-detail image generation prompt for the environment/setting.
5. 'motion_prompt': Camera movement or subject action (e.g., 'cinematic crane shot, slow pan to the left').

Return the result as a single, valid JSON object with a 'title' and a 'storyboard' list.`

// Planner turns a theme into a validated storyboard.
type Planner struct {
	cfg *config.Config
	gen TextGenerator

	maxAttempts int
	backoff     time.Duration
}

func NewPlanner(cfg *config.Config, gen TextGenerator) *Planner {
	return &Planner{
		cfg:         cfg,
		gen:         gen,
		maxAttempts: 3,
		backoff:     2 * time.Second,
	}
}

// plannedBoard is the raw JSON shape the schema enforces.
type plannedBoard struct {
	Title      string        `json:"title"`
	Storyboard []types.Scene `json:"storyboard"`
}

// Plan requests a storyboard for theme. The scene count is derived from
// config, never from model output. A response that fails to parse is
// retried with a fixed backoff; a backend failure is fatal immediately.
func (p *Planner) Plan(ctx context.Context, theme string) (*types.Storyboard, error) {
	numScenes := p.cfg.NumScenes()
	prompt := fmt.Sprintf(promptTemplate, p.cfg.Video.TotalReelDurationSec, theme, numScenes)

	log.Info().Str("stage", "plan").Str("theme", theme).Int("scenes", numScenes).
		Msg("generating storyboard")

	var parsed plannedBoard
	var parseErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		raw, err := p.gen.Generate(ctx, prompt)
		if err != nil {
			return nil, &PlanningError{Err: err}
		}

		// Decode into a fresh value so a partially-populated failed
		// attempt cannot leak fields into a later successful one.
		var candidate plannedBoard
		parseErr = json.Unmarshal([]byte(cleanJSON(raw)), &candidate)
		if parseErr == nil {
			parsed = candidate
			break
		}
		log.Warn().Str("stage", "plan").Int("attempt", attempt).Err(parseErr).
			Msg("storyboard response was not valid JSON")
		if attempt < p.maxAttempts {
			select {
			case <-ctx.Done():
				return nil, &PlanningError{Err: ctx.Err()}
			case <-time.After(p.backoff):
			}
		}
	}
	if parseErr != nil {
		return nil, &PlanningError{Err: fmt.Errorf("invalid JSON after %d attempts: %w", p.maxAttempts, parseErr)}
	}

	if len(parsed.Storyboard) == 0 {
		return nil, &PlanningError{Err: fmt.Errorf("response has no scenes")}
	}
	if len(parsed.Storyboard) != numScenes {
		log.Warn().Str("stage", "plan").Int("want", numScenes).Int("got", len(parsed.Storyboard)).
			Msg("scene count mismatch, proceeding with actual count")
	}

	board := &types.Storyboard{
		Title:  parsed.Title,
		Theme:  theme,
		Scenes: parsed.Storyboard,
	}
	log.Info().Str("stage", "plan").Int("scenes", len(board.Scenes)).Msg("storyboard ready")
	return board, nil
}

// cleanJSON strips markdown fences in case the model wraps its response
// in ```json ... ``` despite the enforced MIME type.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
