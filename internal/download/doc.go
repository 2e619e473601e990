// Package download stages remote media on local disk via yt-dlp,
// one file per request id.
package download
