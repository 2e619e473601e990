package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"clip-relay/internal/cleanup"
	"clip-relay/internal/domains"
	"clip-relay/internal/download"
	"clip-relay/internal/history"
	"clip-relay/internal/logging"
	"clip-relay/internal/metrics"
	"clip-relay/internal/probe"
	"clip-relay/internal/shrink"
	"clip-relay/internal/startup"
	"clip-relay/internal/webhook"
)

var (
	// ErrNotApproved means the source URL's host is not allow-listed.
	ErrNotApproved = errors.New("url host is not approved")
	// ErrDurationExceeded means the media is longer than the configured ceiling.
	ErrDurationExceeded = errors.New("video exceeds maximum duration")
)

// Request carries everything one pipeline run needs. It is immutable
// after creation; the ID is the sole correlation key for every staged
// file the run produces.
type Request struct {
	ID          string
	SourceURL   string
	Message     string
	DisplayName string
	Channel     string
	RemoteAddr  string
}

// NewRequest mints a Request with a fresh unique id.
func NewRequest(sourceURL, message, displayName, channel, remoteAddr string) Request {
	return Request{
		ID:          uuid.NewString(),
		SourceURL:   sourceURL,
		Message:     message,
		DisplayName: displayName,
		Channel:     channel,
		RemoteAddr:  remoteAddr,
	}
}

// Pipeline runs the download -> constrain -> deliver sequence for each
// request. Concurrent runs are isolated by request-id-derived filenames
// and capped by a slot semaphore.
type Pipeline struct {
	cfg        *startup.Config
	prober     *probe.Prober
	downloader *download.Downloader
	shrinker   *shrink.Shrinker
	dispatcher *webhook.Dispatcher
	sweeper    *cleanup.Sweeper
	store      *history.Store

	slots chan struct{}
	wg    sync.WaitGroup
}

// New wires the pipeline from configuration. store may be nil to run
// without request history.
func New(cfg *startup.Config, store *history.Store) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		prober:     probe.New(cfg.ProbeTimeout),
		downloader: download.New(cfg.DownloadDir, cfg.DownloadTimeout),
		shrinker: shrink.New(cfg.DownloadDir, cfg.VideoDir,
			cfg.MaxFileSizeMB, cfg.SizeMargin, cfg.ProbeTimeout, cfg.TranscodeTimeout),
		dispatcher: webhook.New(cfg.Channels),
		sweeper:    cleanup.New(cfg.CacheDir),
		store:      store,
		slots:      make(chan struct{}, cfg.MaxConcurrent),
	}
}

// Admit runs the entry gates for a request: domain approval, the
// pre-download duration check, and the title probe. It returns the
// media title for the success view. Errors here are user-visible;
// ErrNotApproved and ErrDurationExceeded get specific messages,
// anything else renders generically.
func (p *Pipeline) Admit(ctx context.Context, req Request) (string, error) {
	if !domains.Approved(req.SourceURL, domains.Supported) {
		logging.Request(req.RemoteAddr, "rejected %s: host not approved", req.SourceURL)
		p.record(req, "rejected_domain")
		return "", fmt.Errorf("%w: %s", ErrNotApproved, req.SourceURL)
	}

	gateStart := time.Now()
	seconds, err := p.prober.Duration(ctx, req.SourceURL)
	metrics.PipelineStageDuration.WithLabelValues("gate").Observe(time.Since(gateStart).Seconds())
	if err != nil {
		logging.Error("duration probe failed for %s: %v", req.SourceURL, err)
		p.finish(req, "gate_failed")
		return "", err
	}

	if seconds > p.cfg.MaxVideoSeconds {
		logging.Request(req.RemoteAddr, "rejected %s: %ds exceeds %ds ceiling",
			req.SourceURL, seconds, p.cfg.MaxVideoSeconds)
		p.finish(req, "rejected_duration")
		return "", fmt.Errorf("%w: %d seconds (limit %d)",
			ErrDurationExceeded, seconds, p.cfg.MaxVideoSeconds)
	}

	title, err := p.prober.Title(ctx, req.SourceURL)
	if err != nil {
		logging.Error("title probe failed for %s: %v", req.SourceURL, err)
		p.finish(req, "gate_failed")
		return "", err
	}

	logging.Request(req.RemoteAddr, "admitted %s (%ds, %q) as request %s",
		req.SourceURL, seconds, title, req.ID)
	return title, nil
}

// Complete runs the remaining stages for an admitted request: download,
// size constraint, delivery. Every exit path, success included, funnels
// into the sweeper. The caller should pass a context detached from the
// HTTP request, since the response has already been written by the time
// this runs.
func (p *Pipeline) Complete(ctx context.Context, req Request) error {
	p.wg.Add(1)
	defer p.wg.Done()

	p.slots <- struct{}{}
	defer func() { <-p.slots }()

	metrics.PipelineInFlight.Inc()
	defer metrics.PipelineInFlight.Dec()

	outcome := "download_failed"
	defer func() { p.finish(req, outcome) }()

	start := time.Now()
	rawPath, err := p.downloader.Fetch(ctx, req.SourceURL, req.ID)
	metrics.PipelineStageDuration.WithLabelValues("download").Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("download failed for request %s: %w", req.ID, err)
	}
	logging.Debug("request %s staged raw artifact %s", req.ID, rawPath)

	start = time.Now()
	finalPath, err := p.shrinker.Constrain(ctx, req.ID)
	metrics.PipelineStageDuration.WithLabelValues("constrain").Observe(time.Since(start).Seconds())
	if err != nil {
		outcome = "constrain_failed"
		return fmt.Errorf("size constraint failed for request %s: %w", req.ID, err)
	}

	start = time.Now()
	err = p.dispatcher.Deliver(ctx, req.Channel, finalPath, req.Message, req.DisplayName)
	metrics.PipelineStageDuration.WithLabelValues("deliver").Observe(time.Since(start).Seconds())
	if err != nil {
		outcome = "channel_not_found"
		return fmt.Errorf("delivery aborted for request %s: %w", req.ID, err)
	}

	outcome = "delivered"
	logging.Request(req.RemoteAddr, "request %s delivered to channel %q", req.ID, req.Channel)
	return nil
}

// Drain waits for in-flight pipeline runs to finish, up to timeout.
// Returns false if runs were still active when the deadline passed.
func (p *Pipeline) Drain(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// finish sweeps the request's artifacts and records its outcome. Runs
// on every abort path and on success.
func (p *Pipeline) finish(req Request, outcome string) {
	start := time.Now()
	p.sweeper.Sweep(req.ID)
	metrics.PipelineStageDuration.WithLabelValues("sweep").Observe(time.Since(start).Seconds())
	p.record(req, outcome)
}

// record writes the run to the history store and bumps the outcome
// counter. History failures are logged only; they never affect the
// pipeline result.
func (p *Pipeline) record(req Request, outcome string) {
	metrics.PipelineRequestsTotal.WithLabelValues(outcome).Inc()

	if p.store == nil {
		return
	}
	err := p.store.Record(context.Background(), history.Entry{
		RequestID:  req.ID,
		SourceURL:  req.SourceURL,
		Channel:    req.Channel,
		Outcome:    outcome,
		RemoteAddr: req.RemoteAddr,
	})
	if err != nil {
		logging.Warn("failed to record history for request %s: %v", req.ID, err)
	}
}
