package probe

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"clip-relay/internal/runner"
)

// Prober queries media metadata from the remote source before anything
// is downloaded.
type Prober struct {
	timeout time.Duration
}

// New creates a Prober whose tool invocations are bounded by timeout.
func New(timeout time.Duration) *Prober {
	return &Prober{timeout: timeout}
}

// Duration returns the media length in whole seconds, as reported by
// yt-dlp for the source URL.
func (p *Prober) Duration(ctx context.Context, sourceURL string) (int, error) {
	out, err := runner.RunTimeout(ctx, p.timeout, "yt-dlp", "--get-duration", sourceURL)
	if err != nil {
		return 0, err
	}

	seconds, err := ParseDuration(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("unexpected duration output from yt-dlp: %w", err)
	}
	return seconds, nil
}

// Title returns the media title for the source URL.
func (p *Prober) Title(ctx context.Context, sourceURL string) (string, error) {
	out, err := runner.RunTimeout(ctx, p.timeout, "yt-dlp", "--get-title", sourceURL)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ParseDuration converts a colon-delimited duration string to total
// seconds. Fields are read right-to-left as seconds, minutes, hours;
// one, two, or three fields are accepted ("59", "4:05", "1:23:45").
func ParseDuration(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration string")
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("too many fields in duration %q", s)
	}

	total := 0
	// Right-to-left: units grow by a factor of 60 per field.
	unit := 1
	for i := len(parts) - 1; i >= 0; i-- {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return 0, fmt.Errorf("invalid duration field %q in %q", parts[i], s)
		}
		if n < 0 {
			return 0, fmt.Errorf("negative duration field in %q", s)
		}
		total += n * unit
		unit *= 60
	}
	return total, nil
}
