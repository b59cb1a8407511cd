// Package build orchestrates a complete audiobook build.
//
// A build detects its mode from the input path, resolves the directory
// manifest or parses the chapter manifest, probes durations with ffprobe and
// invokes ffmpeg exactly once. ffmpeg writes to a hidden temp file beside
// the target, which is renamed into place only after a zero exit. An
// advisory lock keeps two builds from writing the same output.
package build
