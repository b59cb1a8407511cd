package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"abb/internal/ffmpeg"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Inspect runs ffprobe through runner against path and decodes the JSON response.
func Inspect(ctx context.Context, runner ffmpeg.Runner, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	res, err := runner.Run(ctx, ffmpeg.Command{
		Binary: binary,
		Args:   []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path},
	})
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect %s: %w", path, err)
	}

	var result Result
	if err := json.Unmarshal(res.Stdout, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse %s: %w", path, err)
	}
	return result, nil
}

// Audio is the part of a probe result a build plans with.
type Audio struct {
	Duration time.Duration
	Codec    string
}

// ProbeAudio probes path and returns its playable length and the codec of
// its first audio stream. Streams without a container duration fall back to
// the longest audio stream.
func ProbeAudio(ctx context.Context, runner ffmpeg.Runner, binary string, path string) (Audio, error) {
	result, err := Inspect(ctx, runner, binary, path)
	if err != nil {
		return Audio{}, err
	}
	if result.AudioStreamCount() == 0 {
		return Audio{}, fmt.Errorf("ffprobe %s: no audio stream", path)
	}
	d := result.Duration()
	if d <= 0 {
		return Audio{}, fmt.Errorf("ffprobe %s: duration unavailable", path)
	}
	return Audio{Duration: d, Codec: result.AudioCodec()}, nil
}

// Duration probes path and returns its playable length.
func Duration(ctx context.Context, runner ffmpeg.Runner, binary string, path string) (time.Duration, error) {
	audio, err := ProbeAudio(ctx, runner, binary, path)
	return audio.Duration, err
}

// AudioCodec returns the lower-cased codec name of the first audio stream,
// or "" when ffprobe did not report one.
func (r Result) AudioCodec() string {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			return strings.ToLower(strings.TrimSpace(stream.CodecName))
		}
	}
	return ""
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// Duration returns the container duration, falling back to the longest audio
// stream. It is 0 when neither is reported.
func (r Result) Duration() time.Duration {
	seconds := r.DurationSeconds()
	if math.IsNaN(seconds) || seconds <= 0 {
		seconds = 0
		for _, stream := range r.Streams {
			if !strings.EqualFold(stream.CodecType, "audio") {
				continue
			}
			if s := parseFloat(stream.Duration); !math.IsNaN(s) && s > seconds {
				seconds = s
			}
		}
	}
	return time.Duration(math.Round(seconds * float64(time.Second)))
}

// BitRate returns the container bitrate in bits per second, or 0 when unavailable.
func (r Result) BitRate() int64 {
	rate := parseFloat(r.Format.BitRate)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return int64(rate)
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" || cleaned == "N/A" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
