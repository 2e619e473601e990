// Package webhook delivers final artifacts to named channel endpoints
// as multipart posts.
//
// Channel resolution is strict (no fallback endpoint) while the post
// itself is best-effort: once the file exists, a network fault only
// costs the notification, not the pipeline.
package webhook
