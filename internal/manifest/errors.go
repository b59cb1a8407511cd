package manifest

import (
	"fmt"

	"abb/internal/services"
)

var (
	// ErrInputNotFound reports a missing input directory, file or manifest.
	ErrInputNotFound = services.Mark("input not found", services.ErrNotFound)
	// ErrNoMedia reports a directory without eligible media files.
	ErrNoMedia = services.Mark("no media files found", services.ErrNotFound)
	// ErrEmptyManifest reports a manifest without any entries.
	ErrEmptyManifest = services.Mark("manifest lists no files", services.ErrValidation)
)

// ParseError identifies a manifest line that could not be resolved.
type ParseError struct {
	Path   string
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("%s:%d: %s (%q)", e.Path, e.Line, e.Reason, e.Text)
	}
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error { return services.ErrValidation }
