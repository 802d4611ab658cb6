package social

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/Tanisha1055/Story-AI-Reel-Generation/config"
	"github.com/Tanisha1055/Story-AI-Reel-Generation/types"
)

// Poster publishes a finished reel as a YouTube Short. Posting is
// best-effort: errors are returned for reporting but never abort a run.
type Poster struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Poster {
	return &Poster{cfg: cfg}
}

// Post uploads the reel with its caption and returns the watch URL.
func (p *Poster) Post(ctx context.Context, reelPath string, reelCaption *types.Caption) (string, error) {
	client, err := p.oauthClient(ctx)
	if err != nil {
		return "", fmt.Errorf("youtube auth: %w", err)
	}

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", fmt.Errorf("youtube service: %w", err)
	}

	description := reelCaption.Caption
	if len(reelCaption.Hashtags) > 0 {
		description += "\n\n" + strings.Join(reelCaption.Hashtags, " ")
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:                truncate(reelCaption.Caption, 95),
			Description:          description,
			CategoryId:           p.cfg.Social.CategoryID,
			DefaultLanguage:      p.cfg.Social.DefaultLanguage,
			DefaultAudioLanguage: p.cfg.Social.DefaultLanguage,
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus:           p.cfg.Social.Visibility,
			SelfDeclaredMadeForKids: false,
		},
	}

	f, err := os.Open(reelPath)
	if err != nil {
		return "", fmt.Errorf("open reel file: %w", err)
	}
	defer f.Close()

	log.Info().Str("stage", "social").Str("reel", reelPath).Msg("uploading reel")

	call := svc.Videos.Insert([]string{"snippet", "status"}, video)
	call.Media(f)
	uploaded, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("youtube upload: %w", err)
	}

	url := "https://www.youtube.com/watch?v=" + uploaded.Id
	log.Info().Str("stage", "social").Str("video_id", uploaded.Id).Str("url", url).Msg("reel posted")
	return url, nil
}

// oauthClient builds an OAuth2 HTTP client from the refresh token in
// the environment.
func (p *Poster) oauthClient(ctx context.Context) (*http.Client, error) {
	clientID := os.Getenv("YOUTUBE_CLIENT_ID")
	clientSecret := os.Getenv("YOUTUBE_CLIENT_SECRET")
	refreshToken := os.Getenv("YOUTUBE_REFRESH_TOKEN")
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, fmt.Errorf("YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET, or YOUTUBE_REFRESH_TOKEN not set")
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{youtube.YoutubeUploadScope},
	}
	token := &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-time.Hour), // force refresh
	}

	return oauth2.NewClient(ctx, conf.TokenSource(ctx, token)), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
