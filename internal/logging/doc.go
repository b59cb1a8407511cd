// Package logging assembles structured slog loggers and formatting helpers used
// across abb.
//
// It owns the configurable console/JSON handlers, writes to stderr by default
// so stdout can carry manifests, and exposes context-aware helpers that tag
// log lines with the build ID and mode. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
package logging
