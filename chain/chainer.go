package chain

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Tanisha1055/Story-AI-Reel-Generation/config"
	"github.com/Tanisha1055/Story-AI-Reel-Generation/gateway"
	"github.com/Tanisha1055/Story-AI-Reel-Generation/types"
)

// Chainer enriches each storyboard scene with generated media: a
// character image first, then a video clip seeded from that image.
type Chainer struct {
	cfg *config.Config
	gw  gateway.Gateway
}

func New(cfg *config.Config, gw gateway.Gateway) *Chainer {
	return &Chainer{cfg: cfg, gw: gw}
}

// Enrich processes scenes strictly in storyboard order, one backend call
// in flight at a time, so rate-limit behavior stays predictable. A scene
// that fails either step contributes nothing downstream but never aborts
// the chain; Enrich always returns the (same) storyboard.
func (c *Chainer) Enrich(ctx context.Context, board *types.Storyboard) *types.Storyboard {
	for i := range board.Scenes {
		scene := &board.Scenes[i]
		log.Info().Str("stage", "chain").Int("scene", i+1).Str("title", scene.Title).
			Msg("generating scene assets")

		imageURL, ok := c.generateImage(ctx, scene)
		if !ok {
			log.Warn().Str("stage", "chain").Int("scene", i+1).
				Msg("no character image, skipping scene")
			continue
		}
		scene.CharacterImageURL = imageURL

		videoURL, ok := c.generateVideo(ctx, scene)
		if !ok {
			scene.VideoURL = types.MissingVideo
			log.Warn().Str("stage", "chain").Int("scene", i+1).
				Msg("no video clip, marking scene missing")
			continue
		}
		scene.VideoURL = videoURL
		log.Info().Str("stage", "chain").Int("scene", i+1).Str("video_url", videoURL).
			Msg("scene clip ready")
	}
	return board
}

func (c *Chainer) generateImage(ctx context.Context, scene *types.Scene) (string, bool) {
	input := map[string]any{
		"prompt":       scene.CharacterPrompt,
		"aspect_ratio": c.cfg.Video.AspectRatio,
	}
	res, err := c.gw.Run(ctx, c.cfg.Models.CharacterImage, input)
	if err != nil {
		log.Warn().Str("stage", "chain").Err(err).Msg("character image call failed")
		return "", false
	}
	return res.FirstURL()
}

func (c *Chainer) generateVideo(ctx context.Context, scene *types.Scene) (string, bool) {
	prompt := scene.Description
	if scene.MotionPrompt != "" {
		prompt += ". " + scene.MotionPrompt
	}
	input := map[string]any{
		"prompt":     prompt,
		"image":      scene.CharacterImageURL,
		"duration":   c.cfg.Video.MaxDurationPerSceneSec,
		"resolution": c.cfg.Video.Resolution,
	}
	res, err := c.gw.Run(ctx, c.cfg.Models.Video, input)
	if err != nil {
		log.Warn().Str("stage", "chain").Err(err).Msg("video clip call failed")
		return "", false
	}
	return res.FirstURL()
}
