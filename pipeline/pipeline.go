package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Tanisha1055/Story-AI-Reel-Generation/config"
	"github.com/Tanisha1055/Story-AI-Reel-Generation/types"
)

// State is the orchestrator's position in the run lifecycle.
type State string

const (
	StateInit      State = "INIT"
	StatePlanned   State = "PLANNED"
	StateEnriched  State = "ENRICHED"
	StateAssembled State = "ASSEMBLED"
	StateCaptioned State = "CAPTIONED"
	StateDone      State = "DONE"
	StateFailed    State = "FAILED"
)

// Planner produces the storyboard. Failure is fatal.
type Planner interface {
	Plan(ctx context.Context, theme string) (*types.Storyboard, error)
}

// Enricher resolves per-scene media. It degrades but never fails.
type Enricher interface {
	Enrich(ctx context.Context, board *types.Storyboard) *types.Storyboard
}

// Assembler renders the final reel. Failure is fatal.
type Assembler interface {
	Assemble(ctx context.Context, board *types.Storyboard, outDir string) (string, error)
}

// Captioner produces the social caption. It degrades but never fails.
type Captioner interface {
	Generate(ctx context.Context, board *types.Storyboard) *types.Caption
}

// Pipeline sequences plan → enrich → assemble → caption. It does not
// retry stages itself; retry lives inside the planner only.
type Pipeline struct {
	cfg       *config.Config
	planner   Planner
	enricher  Enricher
	assembler Assembler
	captioner Captioner
}

func New(cfg *config.Config, planner Planner, enricher Enricher, assembler Assembler, captioner Captioner) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		planner:   planner,
		enricher:  enricher,
		assembler: assembler,
		captioner: captioner,
	}
}

// Result is the outcome of one pipeline run.
type Result struct {
	RunID      string
	RunDir     string
	State      State
	Storyboard *types.Storyboard
	ReelPath   string
	Caption    *types.Caption
}

// Run executes the full pipeline for one theme. A fatal stage error
// transitions to FAILED and is returned with the stage named; no partial
// artifact path is reported on a fatal path.
func (p *Pipeline) Run(ctx context.Context, theme string) (*Result, error) {
	runID := uuid.NewString()[:8]
	runDir := filepath.Join(p.cfg.Paths.Output, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return nil, fmt.Errorf("create run dir: %w", err)
	}

	state := &types.PipelineState{
		RunID:     runID,
		Theme:     theme,
		State:     string(StateInit),
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	result := &Result{RunID: runID, RunDir: runDir, State: StateInit}

	defer func() {
		state.CompletedAt = time.Now().UTC().Format(time.RFC3339)
		saveJSON(filepath.Join(runDir, "pipeline_state.json"), state)
	}()

	fail := func(stage string, err error) error {
		result.State = StateFailed
		state.State = string(StateFailed)
		state.Error = fmt.Sprintf("%s: %v", stage, err)
		log.Error().Str("run", runID).Str("stage", stage).Err(err).Msg("pipeline failed")
		return fmt.Errorf("%s: %w", stage, err)
	}
	transition := func(next State) {
		result.State = next
		state.State = string(next)
		log.Info().Str("run", runID).Str("state", string(next)).Msg("pipeline state")
	}

	log.Info().Str("run", runID).Str("theme", theme).Str("dir", runDir).Msg("pipeline starting")

	board, err := p.planner.Plan(ctx, theme)
	if err != nil {
		return result, fail("plan", err)
	}
	result.Storyboard = board
	transition(StatePlanned)
	saveJSON(filepath.Join(runDir, "storyboard.json"), board)

	board = p.enricher.Enrich(ctx, board)
	state.Storyboard = board
	transition(StateEnriched)
	saveJSON(filepath.Join(runDir, "storyboard.json"), board)

	reelPath, err := p.assembler.Assemble(ctx, board, runDir)
	if err != nil {
		return result, fail("assemble", err)
	}
	result.ReelPath = reelPath
	state.ReelFile = reelPath
	transition(StateAssembled)

	reelCaption := p.captioner.Generate(ctx, board)
	result.Caption = reelCaption
	state.Caption = reelCaption
	transition(StateCaptioned)
	saveJSON(filepath.Join(runDir, "caption.json"), reelCaption)

	transition(StateDone)
	return result, nil
}

func saveJSON(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Str("path", path).Err(err).Msg("could not marshal run artifact")
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Warn().Str("path", path).Err(err).Msg("could not save run artifact")
	}
}
