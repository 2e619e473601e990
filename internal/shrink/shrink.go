package shrink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"clip-relay/internal/logging"
	"clip-relay/internal/metrics"
	"clip-relay/internal/runner"
)

// ErrInfeasible means the byte budget cannot be met for the media's
// duration: either the duration probe returned nothing usable or the
// derived video bitrate came out non-positive.
var ErrInfeasible = errors.New("size budget infeasible for this duration")

// audioBitrate is fixed; only the video bitrate adapts to duration.
const audioBitrate int64 = 64_000

// bitsPerMB is the budget conversion used for bitrate math. Note the
// decimal megabit convention here against the binary MiB used for the
// on-disk size check; both are kept as-is.
const bitsPerMB = 8_000_000

// Plan is the derived bitrate plan for an oversized artifact.
type Plan struct {
	TargetBits   int64
	Duration     float64
	TotalBitrate int64
	VideoBitrate int64
	AudioBitrate int64
}

// BuildPlan derives a bitrate plan from a byte budget (in MB) and a
// duration in seconds. All rates are integer bits per second from
// truncating division, erring toward under-budget output.
func BuildPlan(safeBudgetMB, duration float64) (Plan, error) {
	if duration <= 0 {
		return Plan{}, fmt.Errorf("%w: duration %.2fs", ErrInfeasible, duration)
	}

	targetBits := int64(safeBudgetMB * bitsPerMB)
	totalBitrate := int64(float64(targetBits) / duration)
	videoBitrate := totalBitrate - audioBitrate

	if videoBitrate <= 0 {
		return Plan{}, fmt.Errorf("%w: derived video bitrate %d bps", ErrInfeasible, videoBitrate)
	}

	return Plan{
		TargetBits:   targetBits,
		Duration:     duration,
		TotalBitrate: totalBitrate,
		VideoBitrate: videoBitrate,
		AudioBitrate: audioBitrate,
	}, nil
}

// Shrinker turns raw artifacts into deliverable final artifacts,
// re-encoding only when the raw file exceeds the safe byte budget.
type Shrinker struct {
	downloadDir  string
	videoDir     string
	maxSizeMB    int
	margin       float64
	probeTimeout time.Duration
	timeout      time.Duration
}

// New creates a Shrinker. maxSizeMB is the configured ceiling; margin
// scales it down (e.g. 0.9) to leave encoding overhead headroom.
// probeTimeout bounds the ffprobe query and timeout the re-encode.
func New(downloadDir, videoDir string, maxSizeMB int, margin float64, probeTimeout, timeout time.Duration) *Shrinker {
	return &Shrinker{
		downloadDir:  downloadDir,
		videoDir:     videoDir,
		maxSizeMB:    maxSizeMB,
		margin:       margin,
		probeTimeout: probeTimeout,
		timeout:      timeout,
	}
}

// SafeBudgetMB returns the scaled byte budget in MB.
func (s *Shrinker) SafeBudgetMB() float64 {
	return float64(s.maxSizeMB) * s.margin
}

// Constrain produces the final artifact for a request id and returns
// its path. Under-budget raw artifacts are renamed into place
// unchanged; oversized ones are re-encoded at a bitrate derived from
// the byte budget and the probed duration. The raw file of a re-encode
// is left behind for the sweeper to collect.
func (s *Shrinker) Constrain(ctx context.Context, id string) (string, error) {
	rawPath := filepath.Join(s.downloadDir, id+".mp4")
	finalPath := filepath.Join(s.videoDir, id+".mp4")

	info, err := os.Stat(rawPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat raw artifact: %w", err)
	}

	sizeMB := float64(info.Size()) / (1024 * 1024)
	safeBudget := s.SafeBudgetMB()
	logging.Debug("raw artifact %s is %.2f MB (budget %.2f MB)", rawPath, sizeMB, safeBudget)

	if sizeMB <= safeBudget {
		if err := os.Rename(rawPath, finalPath); err != nil {
			return "", fmt.Errorf("failed to promote raw artifact: %w", err)
		}
		metrics.TranscodesTotal.WithLabelValues("promoted").Inc()
		return finalPath, nil
	}

	logging.Info("artifact %s exceeds %d MB, re-encoding", id, s.maxSizeMB)

	duration, err := s.fileDuration(ctx, rawPath)
	if err != nil {
		return "", err
	}

	plan, err := BuildPlan(safeBudget, duration)
	if err != nil {
		return "", err
	}

	logging.Info("re-encode plan for %s: %.2fs at %d kbps video / %d kbps audio",
		id, plan.Duration, plan.VideoBitrate/1000, plan.AudioBitrate/1000)

	_, err = runner.RunTimeout(ctx, s.timeout, "ffmpeg",
		"-i", rawPath,
		"-c:v", "libx264",
		"-b:v", strconv.FormatInt(plan.VideoBitrate, 10),
		"-c:a", "aac",
		"-b:a", strconv.FormatInt(plan.AudioBitrate, 10),
		finalPath,
		"-y",
	)
	if err != nil {
		return "", err
	}

	metrics.TranscodesTotal.WithLabelValues("reencoded").Inc()
	return finalPath, nil
}

// fileDuration asks ffprobe for the container duration in seconds.
func (s *Shrinker) fileDuration(ctx context.Context, path string) (float64, error) {
	out, err := runner.RunTimeout(ctx, s.probeTimeout, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, err
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: could not read duration from ffprobe output %q", ErrInfeasible, strings.TrimSpace(out))
	}
	return duration, nil
}
