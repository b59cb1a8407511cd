package chapters

import (
	"fmt"
	"strconv"
	"time"
)

// Chapter is a numbered span of the output stream.
type Chapter struct {
	Index int
	Start time.Duration
	End   time.Duration
	Title string
	Name  string
	Line  int
}

// Width returns the zero-padding width for total chapters: two digits,
// widened when there are more than 99.
func Width(total int) int {
	return max(2, len(strconv.Itoa(total)))
}

// Number formats the 1-based chapter title prefix, e.g. "01. Intro".
func Number(index, total int, title string) string {
	return fmt.Sprintf("%0*d. %s", Width(total), index, title)
}

// FromMarkers converts markers into chapters ending at the next marker. The
// last chapter runs to streamEnd, which must lie past its start. A
// non-positive streamEnd means the length is unknown and leaves the last End
// at zero.
func FromMarkers(markers []Marker, streamEnd time.Duration) ([]Chapter, error) {
	if len(markers) == 0 {
		return nil, ErrNoChapters
	}
	last := markers[len(markers)-1]
	if streamEnd > 0 && streamEnd <= last.Start {
		return nil, &OrderError{Line: last.Line, Start: last.Start, Previous: streamEnd}
	}
	out := make([]Chapter, len(markers))
	for i, marker := range markers {
		end := max(streamEnd, 0)
		if i+1 < len(markers) {
			end = markers[i+1].Start
		}
		out[i] = Chapter{
			Index: i + 1,
			Start: marker.Start,
			End:   end,
			Title: Number(i+1, len(markers), marker.Title),
			Name:  marker.Title,
			Line:  marker.Line,
		}
	}
	return out, nil
}

// Span names a source whose chapter length is already known.
type Span struct {
	Title    string
	Duration time.Duration
	Line     int
}

// Sequential lays spans out back to back starting at zero.
func Sequential(spans []Span) []Chapter {
	out := make([]Chapter, len(spans))
	var cursor time.Duration
	for i, span := range spans {
		out[i] = Chapter{
			Index: i + 1,
			Start: cursor,
			End:   cursor + span.Duration,
			Title: Number(i+1, len(spans), span.Title),
			Name:  span.Title,
			Line:  span.Line,
		}
		cursor += span.Duration
	}
	return out
}
