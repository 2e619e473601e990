package handlers

import (
	"time"

	"clip-relay/internal/history"
	"clip-relay/internal/pipeline"
	"clip-relay/internal/startup"
)

// Handlers bundles the HTTP surface's dependencies.
type Handlers struct {
	cfg       *startup.Config
	pipe      *pipeline.Pipeline
	store     *history.Store
	startedAt time.Time
}

// New creates the handler set. store may be nil when request history is
// unavailable.
func New(cfg *startup.Config, pipe *pipeline.Pipeline, store *history.Store) *Handlers {
	return &Handlers{
		cfg:       cfg,
		pipe:      pipe,
		store:     store,
		startedAt: time.Now(),
	}
}
