package research

import (
	"context"
	"math/rand"

	"github.com/rs/zerolog/log"
	"github.com/vartanbeno/go-reddit/v2/reddit"

	"github.com/Tanisha1055/Story-AI-Reel-Generation/config"
)

const defaultTheme = "An Adventurous Holiday Story"

// Picker selects the theme for a run: from the configured pool, and
// optionally enriched with trending subreddit post titles.
type Picker struct {
	cfg    *config.Config
	reddit *reddit.Client
	rand   *rand.Rand
}

func New(cfg *config.Config, seed int64) *Picker {
	p := &Picker{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(seed)),
	}
	if cfg.Research.Enabled && len(cfg.Research.Subreddits) > 0 {
		client, err := reddit.NewReadonlyClient()
		if err != nil {
			log.Warn().Str("stage", "research").Err(err).Msg("reddit client unavailable, using configured pool only")
		} else {
			p.reddit = client
		}
	}
	return p
}

// Pick returns the theme for one run. Research failures never block a
// run; the configured pool (or default) always applies.
func (p *Picker) Pick(ctx context.Context) string {
	pool := append([]string(nil), p.cfg.Theme.Pool...)
	pool = append(pool, p.trending(ctx)...)

	if len(pool) == 0 {
		if p.cfg.Theme.Default != "" {
			return p.cfg.Theme.Default
		}
		return defaultTheme
	}

	theme := pool[p.rand.Intn(len(pool))]
	log.Info().Str("stage", "research").Str("theme", theme).Int("pool_size", len(pool)).
		Msg("theme selected")
	return theme
}

// trending fetches hot post titles from the configured subreddits as
// extra theme candidates.
func (p *Picker) trending(ctx context.Context) []string {
	if p.reddit == nil {
		return nil
	}

	var themes []string
	for _, sub := range p.cfg.Research.Subreddits {
		posts, _, err := p.reddit.Subreddit.HotPosts(ctx, sub, &reddit.ListOptions{Limit: 10})
		if err != nil {
			log.Warn().Str("stage", "research").Str("subreddit", sub).Err(err).
				Msg("subreddit fetch failed")
			continue
		}
		for _, post := range posts {
			if post.Score < p.cfg.Research.MinScore {
				continue
			}
			if post.Title == "" {
				continue
			}
			themes = append(themes, post.Title)
		}
	}
	if len(themes) > 0 {
		log.Info().Str("stage", "research").Int("count", len(themes)).Msg("trending themes found")
	}
	return themes
}
