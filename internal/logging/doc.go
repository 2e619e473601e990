// Package logging provides a simple leveled logging interface for the
// clip relay application.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable.
// Output goes to standard error and, once SetFileSink is called, is
// mirrored to a flat log file under the cache root.
package logging
