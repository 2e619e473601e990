// Package workers calculates optimal worker counts for concurrent tasks
// based on available CPU resources.
//
// Worker counts respect container CPU limits through GOMAXPROCS and can
// be overridden with the PIPELINE_WORKERS environment variable. The main
// consumer is the relay pipeline, which sizes its concurrent-request
// semaphore from these values since downloads and transcodes are a mix
// of network I/O and CPU work.
package workers
