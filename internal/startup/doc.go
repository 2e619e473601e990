// Package startup handles application initialization: environment
// configuration, directory validation, external tool checks, and
// structured startup/shutdown logging.
//
// Configuration is loaded once into an immutable Config value and
// passed by reference into each component, so tests can inject their
// own configs instead of reading ambient globals.
package startup
