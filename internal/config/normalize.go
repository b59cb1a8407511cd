package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeManifest()
	c.normalizeEncoding()
	c.normalizeTools()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeManifest() {
	c.Manifest.Filename = strings.TrimSpace(c.Manifest.Filename)
	if c.Manifest.Filename == "" {
		c.Manifest.Filename = defaultManifestFilename
	}
	if strings.TrimSpace(c.Manifest.HashPattern) == "" {
		c.Manifest.HashPattern = defaultHashPattern
	}

	filters := make([]string, 0, len(c.Manifest.Filters))
	for _, filter := range c.Manifest.Filters {
		if strings.TrimSpace(filter) == "" {
			continue
		}
		filters = append(filters, filter)
	}
	c.Manifest.Filters = filters

	if len(c.Manifest.MediaExtensions) == 0 {
		c.Manifest.MediaExtensions = DefaultMediaExtensions()
	} else {
		exts := make([]string, 0, len(c.Manifest.MediaExtensions))
		seen := make(map[string]struct{}, len(c.Manifest.MediaExtensions))
		for _, ext := range c.Manifest.MediaExtensions {
			normalized := strings.ToLower(strings.TrimSpace(ext))
			if normalized == "" {
				continue
			}
			if !strings.HasPrefix(normalized, ".") {
				normalized = "." + normalized
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			exts = append(exts, normalized)
		}
		if len(exts) == 0 {
			exts = DefaultMediaExtensions()
		}
		c.Manifest.MediaExtensions = exts
	}

	exclude := make([]string, 0, len(c.Manifest.Exclude))
	for _, pattern := range c.Manifest.Exclude {
		if trimmed := strings.TrimSpace(pattern); trimmed != "" {
			exclude = append(exclude, trimmed)
		}
	}
	c.Manifest.Exclude = exclude
}

func (c *Config) normalizeEncoding() {
	c.Encoding.AudioEncoder = strings.ToLower(strings.TrimSpace(c.Encoding.AudioEncoder))
	if c.Encoding.AudioEncoder == "" {
		c.Encoding.AudioEncoder = defaultAudioEncoder
	}
	c.Encoding.Bitrate = strings.TrimSpace(c.Encoding.Bitrate)
	if c.Encoding.Bitrate == "" {
		c.Encoding.Bitrate = defaultBitrate
	}
	c.Encoding.Output = strings.TrimSpace(c.Encoding.Output)
	if c.Encoding.Output == "" {
		c.Encoding.Output = defaultOutput
	}
}

func (c *Config) normalizeTools() {
	if value, ok := os.LookupEnv("ABB_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.Tools.FFmpeg = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("ABB_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.Tools.FFprobe = strings.TrimSpace(value)
	}
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = "ffmpeg"
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = "ffprobe"
	}
	if c.Tools.WaitDelaySeconds <= 0 {
		c.Tools.WaitDelaySeconds = defaultWaitDelaySeconds
	}
}

func (c *Config) normalizeHistory() error {
	var err error
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = defaultHistoryPath()
	}
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
