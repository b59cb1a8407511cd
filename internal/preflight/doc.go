// Package preflight provides readiness checks run before a build starts and
// by `abb doctor`.
//
// Checks cover the input path, the output directory and the ffmpeg/ffprobe
// binaries. A failed check stops the build before any temp files exist.
package preflight
