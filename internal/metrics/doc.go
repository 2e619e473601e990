// Package metrics provides Prometheus instrumentation for the clip relay.
//
// All metrics are prefixed with "clip_relay_" to avoid naming collisions
// with other applications and are registered with the default registry
// via promauto. Mount promhttp.Handler() on the metrics endpoint to
// expose them.
//
// Categories:
//   - HTTP: request counts, durations, in-flight gauge
//   - Pipeline: per-stage durations, run outcomes, staged bytes,
//     size-constraint decisions
//   - Delivery: webhook attempt results
//   - Sweeper: staged files removed
//   - History: request-history store operations
//
// Example queries:
//
// Pipeline failure rate:
//
//	sum(rate(clip_relay_pipeline_requests_total{outcome!="delivered"}[5m])) /
//	sum(rate(clip_relay_pipeline_requests_total[5m]))
//
// P95 download time:
//
//	histogram_quantile(0.95, sum(rate(clip_relay_pipeline_stage_duration_seconds_bucket{stage="download"}[5m])) by (le))
package metrics
