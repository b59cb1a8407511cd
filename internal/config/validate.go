package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var bitratePattern = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?[kKmM]?$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateManifest(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateManifest() error {
	if base := filepath.Base(c.Manifest.Filename); base == "." || base == string(filepath.Separator) {
		return errors.New("manifest.filename must name a file")
	}
	if _, err := regexp.Compile(c.Manifest.HashPattern); err != nil {
		return fmt.Errorf("manifest.hash_pattern: %w", err)
	}
	for i, filter := range c.Manifest.Filters {
		if _, err := regexp.Compile(filter); err != nil {
			return fmt.Errorf("manifest.filters[%d]: %w", i, err)
		}
	}
	for i, pattern := range c.Manifest.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("manifest.exclude[%d]: invalid glob %q", i, pattern)
		}
	}
	if len(c.Manifest.MediaExtensions) == 0 {
		return errors.New("manifest.media_extensions must not be empty")
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if !bitratePattern.MatchString(c.Encoding.Bitrate) {
		return fmt.Errorf("encoding.bitrate: invalid value %q (expected e.g. 128k)", c.Encoding.Bitrate)
	}
	if filepath.Ext(c.Encoding.Output) == "" {
		return fmt.Errorf("encoding.output: %q needs a container extension such as .m4b", c.Encoding.Output)
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return errors.New("history.path must be set when history is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
