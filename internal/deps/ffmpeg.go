package deps

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"abb/internal/ffmpeg"
)

// ResolveFFprobe returns the ffprobe binary to pair with ffmpegCommand. An
// explicitly configured ffprobe wins; the bare default prefers a sibling of
// a non-PATH ffmpeg so both tools come from the same build.
func ResolveFFprobe(ffmpegCommand, ffprobeCommand string) string {
	probe := strings.TrimSpace(ffprobeCommand)
	if probe != "" && probe != "ffprobe" {
		return probe
	}
	ffmpegBinary := strings.TrimSpace(ffmpegCommand)
	if strings.ContainsRune(ffmpegBinary, filepath.Separator) {
		if resolved, err := exec.LookPath(ffmpegBinary); err == nil {
			candidate := filepath.Join(filepath.Dir(resolved), "ffprobe")
			if info, statErr := os.Stat(candidate); statErr == nil && isExecutable(info) {
				return candidate
			}
		}
	}
	return "ffprobe"
}

// CheckEncoder reports whether ffmpeg lists encoder in "ffmpeg -encoders".
func CheckEncoder(ctx context.Context, runner ffmpeg.Runner, ffmpegCommand, encoder string) Status {
	result := Status{Requirement: Requirement{
		Name:        "Encoder " + encoder,
		Command:     ffmpegCommand,
		Description: "AAC encoder used when re-encoding",
	}}
	res, err := runner.Run(ctx, ffmpeg.Command{Binary: ffmpegCommand, Args: []string{"-hide_banner", "-encoders"}})
	if err != nil {
		result.Detail = fmt.Sprintf("list encoders: %v", err)
		return result
	}
	if hasEncoder(string(res.Stdout), encoder) {
		result.Available = true
		return result
	}
	result.Detail = fmt.Sprintf("encoder %q not built into %s", encoder, ffmpegCommand)
	return result
}

func hasEncoder(listing, encoder string) bool {
	for _, line := range strings.Split(listing, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == encoder && strings.HasPrefix(fields[0], "A") {
			return true
		}
	}
	return false
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
