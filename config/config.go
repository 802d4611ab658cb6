package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Theme    ThemeConfig    `yaml:"theme"`
	Models   ModelsConfig   `yaml:"models"`
	Video    VideoConfig    `yaml:"video"`
	Assemble AssembleConfig `yaml:"assemble"`
	Research ResearchConfig `yaml:"research"`
	Social   SocialConfig   `yaml:"social"`
	Paths    PathsConfig    `yaml:"paths"`
}

type ThemeConfig struct {
	Default string   `yaml:"default"`
	Pool    []string `yaml:"pool"`
}

type ModelsConfig struct {
	Storyboard     string `yaml:"storyboard"`
	Caption        string `yaml:"caption"`
	CharacterImage string `yaml:"character_image"`
	Video          string `yaml:"video"`
}

type VideoConfig struct {
	TotalReelDurationSec   int    `yaml:"total_reel_duration_seconds"`
	MaxDurationPerSceneSec int    `yaml:"max_duration_per_scene_seconds"`
	Resolution             string `yaml:"resolution"`
	AspectRatio            string `yaml:"aspect_ratio"`
	Width                  int    `yaml:"width"`
	Height                 int    `yaml:"height"`
	FPS                    int    `yaml:"fps"`
}

type AssembleConfig struct {
	CaptionFontSize int    `yaml:"caption_font_size"`
	FontFile        string `yaml:"font_file"`
	MusicFile       string `yaml:"music_file"`
}

type ResearchConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Subreddits []string `yaml:"subreddits"`
	MinScore   int      `yaml:"min_score"`
}

type SocialConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Visibility      string `yaml:"visibility"`
	CategoryID      string `yaml:"category_id"`
	DefaultLanguage string `yaml:"default_language"`
}

type PathsConfig struct {
	Output        string `yaml:"output"`
	FinalReelName string `yaml:"final_reel_name"`
}

// Error reports missing or invalid configuration. It is always fatal
// and raised before any network call is made.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return "config: " + e.Reason
}

// Load reads and validates the YAML configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("read %s: %v", path, err)}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Reason: fmt.Sprintf("parse %s: %v", path, err)}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Video.MaxDurationPerSceneSec <= 0 {
		return &Error{Reason: "video.max_duration_per_scene_seconds must be positive"}
	}
	if c.Video.TotalReelDurationSec < c.Video.MaxDurationPerSceneSec {
		return &Error{Reason: "video.total_reel_duration_seconds must cover at least one scene"}
	}
	if c.Models.Storyboard == "" || c.Models.CharacterImage == "" || c.Models.Video == "" {
		return &Error{Reason: "models.storyboard, models.character_image and models.video are required"}
	}
	if c.Models.Caption == "" {
		c.Models.Caption = c.Models.Storyboard
	}
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		return &Error{Reason: "video.width and video.height are required"}
	}
	if c.Video.FPS <= 0 {
		c.Video.FPS = 24
	}
	if c.Video.AspectRatio == "" {
		c.Video.AspectRatio = "1:1"
	}
	if c.Assemble.CaptionFontSize <= 0 {
		c.Assemble.CaptionFontSize = 40
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "output"
	}
	if c.Paths.FinalReelName == "" {
		c.Paths.FinalReelName = "final_reel.mp4"
	}
	return nil
}

// NumScenes derives the requested scene count from the duration limits.
// This is the single source of truth; the planner never trusts the model
// for it.
func (c *Config) NumScenes() int {
	return c.Video.TotalReelDurationSec / c.Video.MaxDurationPerSceneSec
}

// RequireCredentials fails fast when a required API token is absent from
// the environment, before the pipeline makes any network call.
func (c *Config) RequireCredentials() error {
	required := []string{"GEMINI_API_KEY", "REPLICATE_API_TOKEN"}
	if c.Social.Enabled {
		required = append(required, "YOUTUBE_CLIENT_ID", "YOUTUBE_CLIENT_SECRET", "YOUTUBE_REFRESH_TOKEN")
	}
	for _, name := range required {
		if os.Getenv(name) == "" {
			return &Error{Reason: name + " not set"}
		}
	}
	return nil
}
