package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"clip-relay/internal/logging"
	"clip-relay/internal/metrics"
)

// ErrChannelNotFound means the requested channel name has no configured
// endpoint. A misconfigured channel must never silently deliver to a
// default, so this is terminal for the request.
var ErrChannelNotFound = errors.New("channel not configured")

// Dispatcher posts final artifacts to configured webhook endpoints.
// The channel table is read-only after construction and safe for
// concurrent use.
type Dispatcher struct {
	channels map[string]string
	client   *http.Client
}

// New creates a Dispatcher over a name -> endpoint channel table.
func New(channels map[string]string) *Dispatcher {
	return &Dispatcher{
		channels: channels,
		client:   &http.Client{Timeout: 2 * time.Minute},
	}
}

// Resolve looks up a channel name and returns its endpoint.
func (d *Dispatcher) Resolve(name string) (string, error) {
	endpoint, ok := d.channels[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrChannelNotFound, name)
	}
	return endpoint, nil
}

// ComposeMessage builds the webhook message body: a display-name prefix
// line if present, then the message text on a new line if present. An
// empty result is valid and means a file-only post.
func ComposeMessage(displayName, message string) string {
	body := ""
	if displayName != "" {
		body += displayName + " shared:"
	}
	if message != "" {
		body += "\n" + message
	}
	return body
}

// Deliver resolves the channel and posts the artifact with the composed
// message. An unknown channel is returned as an error before anything
// is sent. A delivery fault after resolution is logged and swallowed:
// the artifact was already produced, so the pipeline is not rolled back
// for a notify failure.
func (d *Dispatcher) Deliver(ctx context.Context, channel, filePath, message, displayName string) error {
	endpoint, err := d.Resolve(channel)
	if err != nil {
		metrics.DeliveriesTotal.WithLabelValues("channel_not_found").Inc()
		return err
	}

	if err := d.post(ctx, endpoint, filePath, ComposeMessage(displayName, message)); err != nil {
		logging.Error("delivery to channel %q failed: %v", channel, err)
		metrics.DeliveriesTotal.WithLabelValues("failed").Inc()
		return nil
	}

	metrics.DeliveriesTotal.WithLabelValues("delivered").Inc()
	return nil
}

// post streams the file as a multipart form with fields "content" and
// "file". The form body is piped rather than buffered so large videos
// never sit in memory.
func (d *Dispatcher) post(ctx context.Context, endpoint, filePath, body string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open final artifact: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer func() {
			if err := file.Close(); err != nil {
				logging.Warn("failed to close artifact %s: %v", filePath, err)
			}
		}()

		if err := mw.WriteField("content", body); err != nil {
			pw.CloseWithError(err)
			return
		}

		part, err := mw.CreateFormFile("file", filepath.Base(filePath))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}

		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("failed to close webhook response body: %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(respBody))
	}

	logging.Info("delivered %s (%d)", filepath.Base(filePath), resp.StatusCode)
	return nil
}
