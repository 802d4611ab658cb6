package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/Tanisha1055/Story-AI-Reel-Generation/assemble"
	"github.com/Tanisha1055/Story-AI-Reel-Generation/caption"
	"github.com/Tanisha1055/Story-AI-Reel-Generation/chain"
	"github.com/Tanisha1055/Story-AI-Reel-Generation/config"
	"github.com/Tanisha1055/Story-AI-Reel-Generation/gateway"
	"github.com/Tanisha1055/Story-AI-Reel-Generation/pipeline"
	"github.com/Tanisha1055/Story-AI-Reel-Generation/research"
	"github.com/Tanisha1055/Story-AI-Reel-Generation/social"
	"github.com/Tanisha1055/Story-AI-Reel-Generation/story"
)

func main() {
	themeFlag := flag.String("theme", "", "override the theme from config.yaml")
	configPath := flag.String("config", "config.yaml", "path to the pipeline configuration")
	schedule := flag.String("schedule", "", "cron spec to run the pipeline on a schedule instead of once")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	// Load .env for local dev; CI supplies real environment variables.
	_ = godotenv.Load()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := run(*configPath, *themeFlag, *schedule); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, themeOverride, schedule string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.RequireCredentials(); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Paths.Output, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	ctx := context.Background()

	geminiClient, err := genai.NewClient(ctx, option.WithAPIKey(os.Getenv("GEMINI_API_KEY")))
	if err != nil {
		return fmt.Errorf("gemini client: %w", err)
	}
	defer geminiClient.Close()

	gw := gateway.NewReplicateClient(os.Getenv("REPLICATE_API_TOKEN"))
	pipe := pipeline.New(cfg,
		story.NewPlanner(cfg, story.NewGeminiBackend(geminiClient, cfg.Models.Storyboard)),
		chain.New(cfg, gw),
		assemble.New(cfg),
		caption.New(cfg, caption.NewGeminiBackend(geminiClient, cfg.Models.Caption)),
	)
	picker := research.New(cfg, time.Now().UnixNano())
	poster := social.New(cfg)

	runOnce := func() error {
		theme := themeOverride
		if theme == "" {
			theme = picker.Pick(ctx)
		}

		result, err := pipe.Run(ctx, theme)
		if err != nil {
			return err
		}

		log.Info().Str("run", result.RunID).Str("reel", result.ReelPath).
			Str("caption", result.Caption.Caption).Msg("reel generation complete")

		if cfg.Social.Enabled {
			if url, err := poster.Post(ctx, result.ReelPath, result.Caption); err != nil {
				log.Warn().Str("run", result.RunID).Err(err).Msg("social posting failed")
			} else {
				log.Info().Str("run", result.RunID).Str("url", url).Msg("reel posted")
			}
		}
		return nil
	}

	if schedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(schedule, func() {
			if err := runOnce(); err != nil {
				log.Error().Err(err).Msg("scheduled run failed")
			}
		}); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", schedule, err)
		}
		log.Info().Str("schedule", schedule).Msg("running on schedule")
		c.Run()
		return nil
	}

	return runOnce()
}
