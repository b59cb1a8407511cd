// Package ffmpeg drives the ffmpeg and ffprobe binaries.
//
// Runner is the narrow seam between abb and external tools: ExecRunner runs
// real subprocesses in their own process group so cancellation never leaves
// orphans, and tests substitute a stub. The package also renders concat
// scripts, argument lists and parses -progress output.
package ffmpeg
