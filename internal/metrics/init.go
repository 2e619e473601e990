package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, outcome := range []string{
		"delivered", "rejected_domain", "rejected_duration", "gate_failed",
		"download_failed", "constrain_failed", "channel_not_found",
	} {
		PipelineRequestsTotal.WithLabelValues(outcome)
	}

	for _, stage := range []string{"gate", "download", "constrain", "deliver", "sweep"} {
		PipelineStageDuration.WithLabelValues(stage)
	}

	for _, action := range []string{"promoted", "reencoded"} {
		TranscodesTotal.WithLabelValues(action)
	}

	for _, status := range []string{"delivered", "failed", "channel_not_found"} {
		DeliveriesTotal.WithLabelValues(status)
	}

	for _, op := range []string{"initialize_schema", "record", "recent"} {
		HistoryQueriesTotal.WithLabelValues(op, "success")
		HistoryQueriesTotal.WithLabelValues(op, "error")
	}
}
