package caption

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Tanisha1055/Story-AI-Reel-Generation/config"
	"github.com/Tanisha1055/Story-AI-Reel-Generation/types"
)

// TextGenerator produces one model response for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// fallbackHashtags is the fixed set used whenever the backend cannot
// produce a caption.
var fallbackHashtags = []string{"#AIReel", "#GenerativeAI", "#Shorts"}

const promptTemplate = `Based on the story titled '%s' with the theme '%s',
generate a compelling social media caption (under 200 characters) and 5 highly relevant hashtags.
The tone should be exciting and mysterious. Output only a JSON object following this schema:
{
    "caption": "Your compelling caption text here.",
    "hashtags": ["#AIReel", "#GenerativeAI", "#YourThemeTag", "#AnotherTag", "#FifthTag"]
}`

// Generator produces the reel's social caption. It never fails: any
// backend or parse problem degrades to a deterministic fallback.
type Generator struct {
	cfg *config.Config
	gen TextGenerator
}

func New(cfg *config.Config, gen TextGenerator) *Generator {
	return &Generator{cfg: cfg, gen: gen}
}

func (g *Generator) Generate(ctx context.Context, board *types.Storyboard) *types.Caption {
	title := board.Title
	if title == "" {
		title = board.Theme
	}
	prompt := fmt.Sprintf(promptTemplate, title, board.Theme)

	raw, err := g.gen.Generate(ctx, prompt)
	if err != nil {
		log.Warn().Str("stage", "caption").Err(err).Msg("caption call failed, using fallback")
		return Fallback(board.Theme)
	}

	var out types.Caption
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &out); err != nil || out.Caption == "" {
		log.Warn().Str("stage", "caption").Msg("unparseable caption response, using fallback")
		return Fallback(board.Theme)
	}
	if len(out.Hashtags) == 0 {
		out.Hashtags = append([]string(nil), fallbackHashtags...)
	}

	log.Info().Str("stage", "caption").Str("caption", out.Caption).Msg("caption ready")
	return &out
}

// Fallback builds the deterministic caption used when generation fails.
func Fallback(theme string) *types.Caption {
	return &types.Caption{
		Caption:  fmt.Sprintf("An AI Reel about %s.", theme),
		Hashtags: append([]string(nil), fallbackHashtags...),
	}
}

func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
