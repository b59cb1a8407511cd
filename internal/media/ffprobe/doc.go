// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio stream properties
//   - Format: container-level metadata (duration, bitrate)
//
// Inspect and Duration run ffprobe through an ffmpeg.Runner, so tests can
// supply canned JSON instead of a real binary.
package ffprobe
