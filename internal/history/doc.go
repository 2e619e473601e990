// Package history keeps an operational record of pipeline runs in a
// small SQLite database: one row per request with its outcome and
// requester address. Media bytes are never stored here.
package history
