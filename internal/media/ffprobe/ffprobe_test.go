package ffprobe

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"abb/internal/ffmpeg"
)

type stubRunner struct {
	stdout string
	err    error
	calls  []ffmpeg.Command
}

func (s *stubRunner) Run(_ context.Context, cmd ffmpeg.Command) (ffmpeg.Result, error) {
	s.calls = append(s.calls, cmd)
	return ffmpeg.Result{Stdout: []byte(s.stdout)}, s.err
}

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio"},
			{CodecType: "audio"},
		},
		Format: Format{
			Duration: "123.45",
			BitRate:  "32000",
		},
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	if result.Duration() != 123450*time.Millisecond {
		t.Fatalf("unexpected duration: %v", result.Duration())
	}
	if result.BitRate() != 32000 {
		t.Fatalf("unexpected bitrate: %d", result.BitRate())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "audio", Duration: "7.5"}, {CodecType: "audio", Duration: "bad"}},
		Format: Format{
			Duration: "bad",
			BitRate:  "nope",
		},
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.Duration() != 7500*time.Millisecond {
		t.Fatalf("expected stream duration fallback, got %v", result.Duration())
	}
	if result.BitRate() != 0 {
		t.Fatalf("expected bitrate 0, got %d", result.BitRate())
	}
}

func TestInspectUsesRunner(t *testing.T) {
	runner := &stubRunner{stdout: `{"streams":[{"index":0,"codec_type":"audio","codec_name":"aac"}],"format":{"duration":"61.000000","format_name":"mov,mp4,m4a"}}`}
	d, err := Duration(context.Background(), runner, "", "/books/a.m4a")
	if err != nil {
		t.Fatalf("Duration returned error: %v", err)
	}
	if d != 61*time.Second {
		t.Fatalf("unexpected duration %v", d)
	}
	want := ffmpeg.Command{
		Binary: "ffprobe",
		Args:   []string{"-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", "/books/a.m4a"},
	}
	if len(runner.calls) != 1 || !reflect.DeepEqual(runner.calls[0], want) {
		t.Fatalf("unexpected calls %+v", runner.calls)
	}
}

func TestDurationErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := Duration(ctx, &stubRunner{stdout: `{"streams":[{"codec_type":"video"}],"format":{"duration":"5"}}`}, "ffprobe", "x.mp4"); err == nil {
		t.Fatal("expected error for input without audio")
	}
	if _, err := Duration(ctx, &stubRunner{stdout: `{"streams":[{"codec_type":"audio"}],"format":{}}`}, "ffprobe", "x.mp3"); err == nil {
		t.Fatal("expected error for missing duration")
	}
	if _, err := Inspect(ctx, &stubRunner{stdout: "not json"}, "ffprobe", "x.mp3"); err == nil {
		t.Fatal("expected parse error")
	}
	toolErr := &ffmpeg.ExitError{Binary: "ffprobe", Code: 1}
	if _, err := Inspect(ctx, &stubRunner{err: toolErr}, "ffprobe", "x.mp3"); !errors.Is(err, toolErr) {
		t.Fatalf("expected runner error propagated, got %v", err)
	}
	if _, err := Inspect(ctx, &stubRunner{}, "ffprobe", " "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestProbeAudioReportsFirstAudioCodec(t *testing.T) {
	runner := &stubRunner{stdout: `{"streams":[{"codec_type":"video","codec_name":"mjpeg"},{"codec_type":"audio","codec_name":"MP3"},{"codec_type":"audio","codec_name":"aac"}],"format":{"duration":"2.5"}}`}
	audio, err := ProbeAudio(context.Background(), runner, "ffprobe", "/books/a.mp3")
	if err != nil {
		t.Fatalf("ProbeAudio returned error: %v", err)
	}
	if audio.Codec != "mp3" || audio.Duration != 2500*time.Millisecond {
		t.Fatalf("unexpected audio %+v", audio)
	}
	if codec := (Result{Streams: []Stream{{CodecType: "audio"}}}).AudioCodec(); codec != "" {
		t.Fatalf("expected empty codec, got %q", codec)
	}
}
