package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Line is one meaningful manifest line.
type Line struct {
	Number int
	Text   string
}

// Item is a manifest line resolved to its source file.
type Item struct {
	Entry Entry
	Title string
	Line  int
}

// ReadLines returns the non-blank, non-comment lines of a manifest. Plain
// lines are trimmed and NFC-normalized. Lines in ffmpeg concat syntax
// (file '...') are unquoted to their path and kept byte for byte.
func ReadLines(r io.Reader) ([]Line, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []Line
	number := 0
	for scanner.Scan() {
		number++
		text := scanner.Text()
		if number == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		text = strings.TrimSpace(strings.TrimSuffix(text, "\r"))
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if path, ok := unquoteConcat(text); ok {
			text = path
		} else {
			text = norm.NFC.String(text)
		}
		lines = append(lines, Line{Number: number, Text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return lines, nil
}

func unquoteConcat(text string) (string, bool) {
	rest, ok := strings.CutPrefix(text, "file ")
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if len(rest) < 2 || rest[0] != '\'' || rest[len(rest)-1] != '\'' {
		return "", false
	}
	return strings.ReplaceAll(rest[1:len(rest)-1], `'\''`, `'`), true
}

// ResolveFile lists dir and resolves the manifest at manifestPath against it.
// It also returns the entries that the manifest does not reference.
func (b *Builder) ResolveFile(dir, manifestPath string) ([]Item, []Entry, error) {
	file, err := os.Open(manifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: manifest %s", ErrInputNotFound, manifestPath)
		}
		return nil, nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	lines, err := ReadLines(file)
	if err != nil {
		return nil, nil, err
	}
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrEmptyManifest, manifestPath)
	}
	entries, err := b.List(dir)
	if err != nil && !errors.Is(err, ErrNoMedia) {
		return nil, nil, err
	}
	items, err := b.Resolve(manifestPath, dir, entries, lines)
	if err != nil {
		return nil, nil, err
	}
	return items, Unreferenced(entries, items), nil
}

// Resolve maps each manifest line to exactly one entry. For every line the
// first matching rule wins: source name, display name, stem, then a unique
// substring of the source name. Lines containing a path separator are taken
// as paths relative to dir.
func (b *Builder) Resolve(manifestPath, dir string, entries []Entry, lines []Line) ([]Item, error) {
	items := make([]Item, 0, len(lines))
	seen := make(map[string]int, len(lines))
	for _, line := range lines {
		entry, reason := b.match(dir, entries, line.Text)
		if reason != "" {
			return nil, &ParseError{Path: manifestPath, Line: line.Number, Text: line.Text, Reason: reason}
		}
		if first, dup := seen[entry.Path]; dup {
			return nil, &ParseError{
				Path:   manifestPath,
				Line:   line.Number,
				Text:   line.Text,
				Reason: fmt.Sprintf("file already listed on line %d", first),
			}
		}
		seen[entry.Path] = line.Number
		items = append(items, Item{Entry: entry, Title: b.title(line.Text), Line: line.Number})
	}
	return items, nil
}

func (b *Builder) title(text string) string {
	return strings.TrimSpace(b.Media.TrimExt(filepath.Base(text)))
}

func (b *Builder) match(dir string, entries []Entry, text string) (Entry, string) {
	if strings.ContainsRune(text, '/') || strings.ContainsRune(text, filepath.Separator) {
		return b.matchPath(dir, text)
	}
	for _, entry := range entries {
		if entry.Name == text {
			return entry, ""
		}
	}
	stem := b.Media.TrimExt(text)
	rules := []func(Entry) bool{
		func(e Entry) bool { return norm.NFC.String(e.Name) == text },
		func(e Entry) bool { return e.Display == text },
		func(e Entry) bool {
			return b.Media.TrimExt(e.Display) == stem || norm.NFC.String(b.Media.TrimExt(e.Name)) == stem
		},
		func(e Entry) bool { return strings.Contains(norm.NFC.String(e.Name), stem) },
	}
	for _, rule := range rules {
		var found []Entry
		for _, entry := range entries {
			if rule(entry) {
				found = append(found, entry)
			}
		}
		switch len(found) {
		case 0:
			continue
		case 1:
			return found[0], ""
		default:
			return Entry{}, fmt.Sprintf("ambiguous: matches %s and %s", found[0].Name, found[1].Name)
		}
	}
	return Entry{}, "no media file matches"
}

func (b *Builder) matchPath(dir, text string) (Entry, string) {
	path := text
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Entry{}, err.Error()
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Entry{}, "file not found"
	}
	if !info.Mode().IsRegular() {
		return Entry{}, "not a regular file"
	}
	return b.NewEntry(abs, filepath.Base(abs)), ""
}

// Unreferenced returns the entries no item resolved to, in listing order.
func Unreferenced(entries []Entry, items []Item) []Entry {
	used := make(map[string]struct{}, len(items))
	for _, item := range items {
		used[item.Entry.Path] = struct{}{}
	}
	var rest []Entry
	for _, entry := range entries {
		if _, ok := used[entry.Path]; !ok {
			rest = append(rest, entry)
		}
	}
	return rest
}
