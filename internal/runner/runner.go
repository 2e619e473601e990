package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"clip-relay/internal/logging"
)

// ErrProcess marks any external tool failure, whether the tool could not
// be launched at all or ran and exited non-zero. Callers match it with
// errors.Is; the wrapped message carries the distinguishing detail.
var ErrProcess = errors.New("external process failed")

// maxDiagnostic bounds how much captured stderr ends up in error text.
const maxDiagnostic = 400

// Run executes name with the given argument vector and returns captured
// standard output. Arguments never pass through a shell, so URLs and
// other caller-supplied values cannot be interpreted as shell
// metacharacters. The context bounds the full run; a cancelled or
// expired context kills the process.
func Run(ctx context.Context, name string, args ...string) (string, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Debug("running %s %s", name, strings.Join(args, " "))

	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %s timed out after %v: %v", ErrProcess, name, elapsed.Round(time.Millisecond), ctx.Err())
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %s exited with code %d: %s",
				ErrProcess, name, exitErr.ExitCode(), diagnostic(stderr.String()))
		}
		return "", fmt.Errorf("%w: failed to launch %s: %v", ErrProcess, name, err)
	}

	logging.Debug("%s completed in %v", name, elapsed.Round(time.Millisecond))
	return stdout.String(), nil
}

// RunTimeout is Run with a fresh deadline layered on the parent context.
// A zero or negative timeout runs unbounded, preserving the parent only.
func RunTimeout(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return Run(ctx, name, args...)
}

// LookPath reports whether the named tool is available on PATH.
func LookPath(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s not found in PATH", name)
	}
	return nil
}

func diagnostic(stderr string) string {
	s := strings.TrimSpace(stderr)
	if s == "" {
		return "(no stderr output)"
	}
	if len(s) > maxDiagnostic {
		s = s[:maxDiagnostic] + "..."
	}
	return s
}
