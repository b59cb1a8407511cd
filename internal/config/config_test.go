package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"abb/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_DATA_HOME", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantHistory := filepath.Join(tempHome, ".local", "share", "abb", "history.db")
	if cfg.History.Path != wantHistory {
		t.Fatalf("unexpected history path: got %q want %q", cfg.History.Path, wantHistory)
	}
	if cfg.Manifest.Filename != "list.txt" {
		t.Fatalf("unexpected manifest filename: %q", cfg.Manifest.Filename)
	}
	if cfg.Manifest.HashPattern != `-[A-Za-z0-9-]{11,}$` {
		t.Fatalf("unexpected hash pattern: %q", cfg.Manifest.HashPattern)
	}
	if !cfg.Encoding.Reencode {
		t.Fatal("expected re-encoding enabled by default")
	}
	if cfg.Encoding.Output != "output.m4b" {
		t.Fatalf("unexpected default output: %q", cfg.Encoding.Output)
	}
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected tool binaries: %q %q", cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(filepath.Dir(cfg.History.Path)); err != nil || !info.IsDir() {
		t.Fatalf("expected history directory to exist: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "abb.toml")

	type payload struct {
		Manifest struct {
			Filename        string   `toml:"filename"`
			MediaExtensions []string `toml:"media_extensions"`
			Filters         []string `toml:"filters"`
		} `toml:"manifest"`
		Encoding struct {
			Bitrate  string `toml:"bitrate"`
			Reencode bool   `toml:"reencode"`
		} `toml:"encoding"`
		History struct {
			Path string `toml:"path"`
		} `toml:"history"`
	}
	custom := payload{}
	custom.Manifest.Filename = "order.txt"
	custom.Manifest.MediaExtensions = []string{"MP3", ".m4a", "mp3", " "}
	custom.Manifest.Filters = []string{`\s+\(Official Audio\)`, ""}
	custom.Encoding.Bitrate = "64k"
	custom.Encoding.Reencode = false
	custom.History.Path = filepath.Join(tempDir, "data", "history.db")

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Manifest.Filename != "order.txt" {
		t.Fatalf("unexpected manifest filename: %q", cfg.Manifest.Filename)
	}
	if got := strings.Join(cfg.Manifest.MediaExtensions, ","); got != ".mp3,.m4a" {
		t.Fatalf("expected normalized extensions, got %q", got)
	}
	if len(cfg.Manifest.Filters) != 1 {
		t.Fatalf("expected blank filters dropped, got %v", cfg.Manifest.Filters)
	}
	if cfg.Encoding.Bitrate != "64k" || cfg.Encoding.Reencode {
		t.Fatalf("unexpected encoding: %+v", cfg.Encoding)
	}
	if cfg.Encoding.Output != "output.m4b" {
		t.Fatalf("expected default output retained, got %q", cfg.Encoding.Output)
	}
	if cfg.History.Path != custom.History.Path {
		t.Fatalf("unexpected history path: %q", cfg.History.Path)
	}
}

func TestEnvOverridesToolBinaries(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ABB_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("ABB_FFPROBE", " /opt/ffmpeg/bin/ffprobe ")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected ffmpeg from env, got %q", cfg.FFmpegBinary())
	}
	if cfg.FFprobeBinary() != "/opt/ffmpeg/bin/ffprobe" {
		t.Fatalf("expected ffprobe from env, got %q", cfg.FFprobeBinary())
	}
}

func TestAudioEncoderExplicitValue(t *testing.T) {
	cfg := config.Default()
	cfg.Encoding.AudioEncoder = "libfdk_aac"
	if got := cfg.AudioEncoder(); got != "libfdk_aac" {
		t.Fatalf("expected explicit encoder, got %q", got)
	}
	cfg.Encoding.AudioEncoder = "auto"
	switch cfg.AudioEncoder() {
	case "aac", "aac_at", "aac_mf":
	default:
		t.Fatalf("unexpected auto encoder %q", cfg.AudioEncoder())
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "hash_pattern") {
		t.Fatalf("sample config missing hash pattern: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Manifest.HashPattern != config.Default().Manifest.HashPattern {
		t.Fatalf("sample hash pattern drifted from default: %q", cfg.Manifest.HashPattern)
	}
	if len(cfg.Manifest.MediaExtensions) != len(config.DefaultMediaExtensions()) {
		t.Fatalf("sample media extensions drifted from default: %v", cfg.Manifest.MediaExtensions)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Manifest.HashPattern = "-[unclosed"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid hash pattern")
	}

	cfg = config.Default()
	cfg.Manifest.Filters = []string{"(bad"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid filter")
	}

	cfg = config.Default()
	cfg.Manifest.Exclude = []string{"[abc"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid exclude glob")
	}

	cfg = config.Default()
	cfg.Encoding.Bitrate = "fast"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid bitrate")
	}

	cfg = config.Default()
	cfg.Encoding.Output = "audiobook"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for output without extension")
	}

	cfg = config.Default()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log level")
	}

	cfg = config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}
