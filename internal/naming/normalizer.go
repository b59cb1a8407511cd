package naming

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"abb/internal/config"
)

// DefaultHashPattern matches a trailing content-hash token such as the
// "-JXCDcGmuibo" video ID appended by download tools.
const DefaultHashPattern = `-[A-Za-z0-9-]{11,}$`

var extensionPattern = regexp.MustCompile(`^\.[A-Za-z0-9]{1,6}$`)

// Normalizer strips hash suffixes and user filters from file base names.
type Normalizer struct {
	pattern *regexp.Regexp
	filters []*regexp.Regexp
}

// New compiles a normalizer. An empty pattern falls back to DefaultHashPattern.
func New(pattern string, filters []string) (*Normalizer, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultHashPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile hash pattern: %w", err)
	}
	n := &Normalizer{pattern: re}
	for i, filter := range filters {
		compiled, err := regexp.Compile(filter)
		if err != nil {
			return nil, fmt.Errorf("compile filter %d: %w", i, err)
		}
		n.filters = append(n.filters, compiled)
	}
	return n, nil
}

// FromConfig builds a normalizer from the manifest section.
func FromConfig(cfg *config.Config) (*Normalizer, error) {
	return New(cfg.Manifest.HashPattern, cfg.Manifest.Filters)
}

// Normalize removes the hash suffix from the base name and keeps the
// extension untouched. Names the pattern does not match are returned
// unchanged apart from NFC composition. A name that would be reduced to an
// empty base keeps its original base.
func (n *Normalizer) Normalize(name string) string {
	current := norm.NFC.String(name)
	// Passes only ever shorten the name, so this reaches a fixed point.
	for range len(current) + 1 {
		next := n.once(current)
		if next == current {
			break
		}
		current = next
	}
	return current
}

func (n *Normalizer) once(name string) string {
	base, ext := SplitExt(name)

	cleaned := n.pattern.ReplaceAllString(base, "")
	for _, filter := range n.filters {
		cleaned = filter.ReplaceAllString(cleaned, "")
	}
	if strings.TrimSpace(cleaned) == "" {
		return name
	}
	return cleaned + ext
}

// SplitExt separates a short alphanumeric extension from name. Dots followed
// by spaces or punctuation ("Chapter 1. Intro") are not treated as extensions.
func SplitExt(name string) (string, string) {
	ext := filepath.Ext(name)
	if ext == "" || ext == name || !extensionPattern.MatchString(ext) {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}

// Stem returns name without its extension.
func Stem(name string) string {
	base, _ := SplitExt(name)
	return base
}
