package assemble

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// placeholderMarker flags backend URLs that cannot actually be fetched.
// References carrying it are treated as already materialized.
const placeholderMarker = "mock-delivery"

// DownloadError reports a failed media fetch. It is recoverable at the
// scene level: the assembler skips the scene and moves on.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// download fetches url into dir/filename and returns the local path.
// Placeholder URLs skip the fetch and resolve to the target path as-is.
func download(ctx context.Context, client *http.Client, url, dir, filename string) (string, error) {
	path := filepath.Join(dir, filename)

	if strings.Contains(url, placeholderMarker) {
		log.Debug().Str("stage", "assemble").Str("url", url).Msg("placeholder reference, skipping download")
		return path, nil
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", &DownloadError{URL: url, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", &DownloadError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &DownloadError{URL: url, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	f, err := os.Create(path)
	if err != nil {
		return "", &DownloadError{URL: url, Err: err}
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return "", &DownloadError{URL: url, Err: err}
	}
	return path, nil
}
