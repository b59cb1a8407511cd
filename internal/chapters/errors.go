package chapters

import (
	"fmt"
	"time"

	"abb/internal/services"
)

var (
	// ErrManifest matches every chapter manifest failure.
	ErrManifest = services.Mark("invalid chapter manifest", services.ErrValidation)
	// ErrNoChapters reports a manifest without any chapter lines.
	ErrNoChapters = services.Mark("chapter manifest lists no chapters", ErrManifest)
)

// ParseError identifies a malformed chapter line.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

func (e *ParseError) Unwrap() error { return ErrManifest }

// OrderError reports a chapter whose start does not follow its predecessor.
// PrevLine is zero when the start reaches the end of the stream.
type OrderError struct {
	Line     int
	PrevLine int
	Start    time.Duration
	Previous time.Duration
}

func (e *OrderError) Error() string {
	if e.PrevLine == 0 {
		return fmt.Sprintf("line %d: chapter start %s is not before end of stream %s",
			e.Line, FormatTimestamp(e.Start), FormatTimestamp(e.Previous))
	}
	return fmt.Sprintf("line %d: chapter start %s must be after %s on line %d",
		e.Line, FormatTimestamp(e.Start), FormatTimestamp(e.Previous), e.PrevLine)
}

func (e *OrderError) Unwrap() error { return ErrManifest }
