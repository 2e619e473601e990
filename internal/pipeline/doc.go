// Package pipeline orchestrates the relay sequence for each inbound
// request: domain approval, the pre-download duration gate, download,
// size constraint, webhook delivery, and the unconditional cleanup
// sweep.
//
// Each run is isolated by a unique request id that namespaces every
// staged file, so concurrent runs never share a path. Stages execute
// strictly in order; a stage failure aborts the rest but always reaches
// the sweeper.
package pipeline
