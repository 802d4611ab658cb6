package assemble

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Tanisha1055/Story-AI-Reel-Generation/config"
	"github.com/Tanisha1055/Story-AI-Reel-Generation/types"
)

// hardCapSeconds is the absolute reel ceiling, independent of the
// configured target duration.
const hardCapSeconds = 120.0

// AssemblyError means no usable clips survived per-scene filtering.
// Fatal: there is nothing to render.
type AssemblyError struct {
	Reason string
}

func (e *AssemblyError) Error() string {
	return "assembly: " + e.Reason
}

// clip is one downloaded scene clip with its measured duration and the
// narration to overlay while it plays.
type clip struct {
	scene    int
	path     string
	duration float64
	text     string
}

// Assembler downloads per-scene clips and renders the final reel.
type Assembler struct {
	cfg        *config.Config
	httpClient *http.Client
}

func New(cfg *config.Config) *Assembler {
	return &Assembler{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Assemble materializes every scene with a usable video reference,
// enforces the per-scene and global duration policy, concatenates the
// survivors in storyboard order with narration overlays, and renders the
// final artifact into outDir. Intermediate files are removed on both
// success and failure paths.
func (a *Assembler) Assemble(ctx context.Context, board *types.Storyboard, outDir string) (string, error) {
	clipsDir := filepath.Join(outDir, "clips")
	if err := os.MkdirAll(clipsDir, 0755); err != nil {
		return "", fmt.Errorf("create clips dir: %w", err)
	}
	defer os.RemoveAll(clipsDir)

	candidates := a.materialize(ctx, board, clipsDir)

	maxScene := float64(a.cfg.Video.MaxDurationPerSceneSec)
	accepted, _ := planReel(candidates, maxScene)
	if len(accepted) < len(candidates) {
		log.Warn().Str("stage", "assemble").Int("dropped", len(candidates)-len(accepted)).
			Float64("cap_seconds", hardCapSeconds).Msg("hard duration cap reached")
	}
	if len(accepted) == 0 {
		return "", &AssemblyError{Reason: "no usable clips to assemble"}
	}

	prepared := make([]clip, 0, len(accepted))
	for _, c := range accepted {
		path, err := a.prepareClip(ctx, c, clipsDir)
		if err != nil {
			log.Warn().Str("stage", "assemble").Int("scene", c.scene+1).Err(err).
				Msg("clip preparation failed, skipping scene")
			continue
		}
		c.path = path
		prepared = append(prepared, c)
	}
	if len(prepared) == 0 {
		return "", &AssemblyError{Reason: "no usable clips to assemble"}
	}

	concatenated, err := a.concatClips(ctx, prepared, clipsDir)
	if err != nil {
		return "", fmt.Errorf("concatenate clips: %w", err)
	}

	// Narration overlays are timed against accepted clips only, so a
	// skipped scene never leaves a caption gap.
	overlaid, err := a.applyCaptions(ctx, concatenated, overlayWindows(prepared), clipsDir)
	if err != nil {
		log.Warn().Str("stage", "assemble").Err(err).Msg("caption overlay failed, continuing without captions")
		overlaid = concatenated
	}

	finalPath := filepath.Join(outDir, a.cfg.Paths.FinalReelName)
	target := float64(a.cfg.Video.TotalReelDurationSec)
	// The trim decision reflects the clips that actually made it into
	// the concat, not the pre-preparation plan.
	trimTo, trim := truncateTo(totalDuration(prepared), target)
	if !trim {
		trimTo = 0
	}
	if err := a.renderFinal(ctx, overlaid, finalPath, trimTo); err != nil {
		return "", fmt.Errorf("render final reel: %w", err)
	}

	if achieved, err := probeDuration(finalPath); err == nil {
		log.Info().Str("stage", "assemble").Str("reel", finalPath).
			Float64("duration_sec", achieved).Float64("target_sec", target).
			Str("resolution", fmt.Sprintf("%dx%d", a.cfg.Video.Width, a.cfg.Video.Height)).
			Msg("final reel rendered")
	}
	return finalPath, nil
}

// materialize downloads and probes every eligible scene clip, in order.
// Any per-scene download or decode error skips just that scene.
func (a *Assembler) materialize(ctx context.Context, board *types.Storyboard, clipsDir string) []clip {
	var candidates []clip
	for i := range board.Scenes {
		scene := &board.Scenes[i]
		if !scene.HasVideo() {
			log.Info().Str("stage", "assemble").Int("scene", i+1).Msg("scene has no clip, skipping")
			continue
		}

		local, err := download(ctx, a.httpClient, scene.VideoURL, clipsDir, fmt.Sprintf("scene_%02d.mp4", i+1))
		if err != nil {
			log.Warn().Str("stage", "assemble").Int("scene", i+1).Err(err).
				Msg("clip download failed, skipping scene")
			continue
		}

		dur, err := probeDuration(local)
		if err != nil {
			log.Warn().Str("stage", "assemble").Int("scene", i+1).Err(err).
				Msg("clip probe failed, skipping scene")
			continue
		}

		candidates = append(candidates, clip{
			scene:    i,
			path:     local,
			duration: dur,
			text:     scene.Description,
		})
	}
	return candidates
}

// planReel clamps each candidate to the per-scene limit and keeps the
// longest prefix whose running total stays within the hard cap. The clip
// that would cross the cap is dropped and no further scenes are taken.
func planReel(candidates []clip, maxScene float64) ([]clip, float64) {
	var accepted []clip
	var total float64
	for _, c := range candidates {
		if maxScene > 0 && c.duration > maxScene {
			c.duration = maxScene
		}
		if total+c.duration > hardCapSeconds {
			break
		}
		accepted = append(accepted, c)
		total += c.duration
	}
	return accepted, total
}

// captionWindow is one narration overlay interval on the concatenated
// timeline.
type captionWindow struct {
	start float64
	end   float64
	text  string
}

// overlayWindows computes caption timing from accepted clips only: each
// window starts at the cumulative duration of the clips before it.
func overlayWindows(clips []clip) []captionWindow {
	windows := make([]captionWindow, 0, len(clips))
	var elapsed float64
	for _, c := range clips {
		if c.text != "" {
			windows = append(windows, captionWindow{start: elapsed, end: elapsed + c.duration, text: c.text})
		}
		elapsed += c.duration
	}
	return windows
}

// totalDuration sums the planned durations of the given clips.
func totalDuration(clips []clip) float64 {
	var total float64
	for _, c := range clips {
		total += c.duration
	}
	return total
}

// truncateTo reports whether the concatenated total overshoots the
// configured target, and the exact duration to cut down to when it does.
func truncateTo(total, target float64) (float64, bool) {
	if target > 0 && total > target {
		return target, true
	}
	return total, false
}
