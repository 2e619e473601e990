package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"clip-relay/internal/logging"
	"clip-relay/internal/metrics"
	"clip-relay/internal/runner"
)

// Downloader fetches remote media into per-request staging files.
type Downloader struct {
	dir     string
	timeout time.Duration
}

// New creates a Downloader writing into dir. Each fetch is bounded by
// timeout.
func New(dir string, timeout time.Duration) *Downloader {
	return &Downloader{dir: dir, timeout: timeout}
}

// Path returns the staging path for a request id. The path is fully
// determined by the id, which is what lets the sweeper find every
// artifact later by prefix.
func (d *Downloader) Path(id string) string {
	return filepath.Join(d.dir, id+".mp4")
}

// Fetch downloads the media at sourceURL, recoding to mp4 on ingest,
// and returns the staged file path. The staged file is the raw
// artifact; the size constrainer decides whether it ships as-is.
func (d *Downloader) Fetch(ctx context.Context, sourceURL, id string) (string, error) {
	out := d.Path(id)

	_, err := runner.RunTimeout(ctx, d.timeout, "yt-dlp",
		"-o", out,
		"--recode-video", "mp4",
		sourceURL,
	)
	if err != nil {
		return "", err
	}

	info, statErr := os.Stat(out)
	if statErr != nil {
		return "", fmt.Errorf("download reported success but %s is missing: %w", out, statErr)
	}

	metrics.DownloadBytesTotal.Add(float64(info.Size()))
	logging.Debug("downloaded %s (%d bytes)", out, info.Size())
	return out, nil
}
