package chapters

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"abb/internal/services"
)

var timestampPattern = regexp.MustCompile(`^([0-9]+):([0-9]{2}):([0-9]{2})$`)

// Marker is a chapter boundary read from a chapter manifest.
type Marker struct {
	Start time.Duration
	Title string
	Line  int
}

// ParseFile opens path and parses it as a chapter manifest.
func ParseFile(path string) ([]Marker, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "chapters", "open", "chapter manifest not found: "+path, err)
		}
		return nil, fmt.Errorf("open chapter manifest: %w", err)
	}
	defer file.Close()
	markers, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return markers, nil
}

// Parse reads "HH:MM:SS title" lines. Blank lines and lines starting with
// '#' are skipped. Starts must strictly increase.
func Parse(r io.Reader) ([]Marker, error) {
	scanner := bufio.NewScanner(r)
	var markers []Marker
	number := 0
	for scanner.Scan() {
		number++
		text := scanner.Text()
		if number == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		text = strings.TrimSpace(text)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		marker, err := parseLine(number, text)
		if err != nil {
			return nil, err
		}
		if n := len(markers); n > 0 && marker.Start <= markers[n-1].Start {
			return nil, &OrderError{
				Line:     number,
				PrevLine: markers[n-1].Line,
				Start:    marker.Start,
				Previous: markers[n-1].Start,
			}
		}
		markers = append(markers, marker)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read chapter manifest: %w", err)
	}
	if len(markers) == 0 {
		return nil, ErrNoChapters
	}
	return markers, nil
}

func parseLine(number int, text string) (Marker, error) {
	idx := strings.IndexFunc(text, unicode.IsSpace)
	if idx < 0 {
		if _, err := ParseTimestamp(text); err != nil {
			return Marker{}, &ParseError{Line: number, Text: text, Reason: err.Error()}
		}
		return Marker{}, &ParseError{Line: number, Text: text, Reason: "missing title"}
	}
	start, err := ParseTimestamp(text[:idx])
	if err != nil {
		return Marker{}, &ParseError{Line: number, Text: text, Reason: err.Error()}
	}
	title := strings.TrimSpace(text[idx:])
	if title == "" {
		return Marker{}, &ParseError{Line: number, Text: text, Reason: "missing title"}
	}
	return Marker{Start: start, Title: title, Line: number}, nil
}

// ParseTimestamp parses H+:MM:SS with minutes and seconds below 60.
func ParseTimestamp(value string) (time.Duration, error) {
	parts := timestampPattern.FindStringSubmatch(value)
	if parts == nil {
		return 0, fmt.Errorf("malformed timestamp %q, want HH:MM:SS", value)
	}
	hours, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || hours > int64(time.Duration(1<<63-1)/time.Hour) {
		return 0, fmt.Errorf("timestamp %q: hours out of range", value)
	}
	minutes, _ := strconv.Atoi(parts[2])
	seconds, _ := strconv.Atoi(parts[3])
	if minutes >= 60 {
		return 0, fmt.Errorf("timestamp %q: minutes must be below 60", value)
	}
	if seconds >= 60 {
		return 0, fmt.Errorf("timestamp %q: seconds must be below 60", value)
	}
	total := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
	if total < 0 {
		return 0, fmt.Errorf("timestamp %q: out of range", value)
	}
	return total, nil
}

// FormatTimestamp renders d as HH:MM:SS, truncating fractions of a second.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}
