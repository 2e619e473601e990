// Package probe queries media duration and title via yt-dlp before
// download, so over-length requests are rejected without transferring
// anything.
package probe
