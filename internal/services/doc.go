// Package services defines shared utilities consumed by the build pipeline and
// its external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp build IDs and modes for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (not found, invalid input, external tool) for history and exit output.
package services
