// Package runner invokes the external media tools (yt-dlp, ffprobe,
// ffmpeg) with argument vectors and captured output.
//
// Every invocation is context-bounded; the pipeline layers per-stage
// timeouts on top so a hung tool fails the request instead of blocking
// it forever. Launch failures and non-zero exits both surface as
// ErrProcess with differing diagnostic text.
package runner
