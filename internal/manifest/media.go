package manifest

import (
	"path/filepath"
	"strings"
)

// MediaTypes is the set of file extensions treated as media sources.
type MediaTypes map[string]struct{}

// NewMediaTypes builds a set from extensions such as ".mp3" or "FLAC".
func NewMediaTypes(exts []string) MediaTypes {
	set := make(MediaTypes, len(exts))
	for _, ext := range exts {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		set[normalized] = struct{}{}
	}
	return set
}

// Contains reports whether name carries a media extension.
func (m MediaTypes) Contains(name string) bool {
	_, ok := m[strings.ToLower(filepath.Ext(name))]
	return ok
}

// TrimExt strips a media extension from name; other suffixes are kept so
// titles like "Chapter 1. Intro" survive intact.
func (m MediaTypes) TrimExt(name string) string {
	if m.Contains(name) {
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
