// Package shrink constrains downloaded media to a byte-size budget.
//
// Files already under the safe budget are promoted to the videos
// directory by rename, byte-identical. Oversized files get a single
// bitrate-constrained re-encode (libx264 + aac) where the video
// bitrate is derived from the byte budget and the probed duration.
package shrink
