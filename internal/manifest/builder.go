package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/unicode/norm"

	"abb/internal/config"
	"abb/internal/naming"
)

// Entry is a media file discovered during listing.
type Entry struct {
	Path    string
	Name    string
	Display string
}

// Builder lists media directories and maps manifests back to files.
type Builder struct {
	Normalizer *naming.Normalizer
	Media      MediaTypes
	Exclude    []string
}

// NewBuilder wires a builder from the manifest configuration section.
func NewBuilder(cfg *config.Config) (*Builder, error) {
	if cfg == nil {
		return nil, errors.New("manifest builder: config is nil")
	}
	normalizer, err := naming.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Builder{
		Normalizer: normalizer,
		Media:      NewMediaTypes(cfg.Manifest.MediaExtensions),
		Exclude:    append([]string(nil), cfg.Manifest.Exclude...),
	}, nil
}

// List returns the eligible media files of dir sorted by source name.
// Subdirectories, hidden files and symlinks to non-regular files are skipped.
func (b *Builder) List(dir string) ([]Entry, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, dir)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInputNotFound, dir)
	}
	dirEntries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if strings.HasPrefix(name, ".") || de.IsDir() || !b.accept(name) {
			continue
		}
		path := filepath.Join(abs, name)
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		entries = append(entries, Entry{Path: path, Name: name, Display: b.display(name)})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoMedia, dir)
	}
	SortEntries(entries)
	return entries, nil
}

// Accept reports whether a base name is an eligible, non-excluded media file.
func (b *Builder) Accept(name string) bool {
	return !strings.HasPrefix(name, ".") && b.accept(name)
}

func (b *Builder) accept(name string) bool {
	if !b.Media.Contains(name) {
		return false
	}
	for _, pattern := range b.Exclude {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return false
		}
	}
	return true
}

func (b *Builder) display(name string) string {
	if b.Normalizer == nil {
		return name
	}
	return b.Normalizer.Normalize(name)
}

// NewEntry builds an entry for a file known only by path and base name, such
// as an archive member.
func (b *Builder) NewEntry(path, name string) Entry {
	return Entry{Path: path, Name: name, Display: b.display(name)}
}

// SortEntries orders entries by source name using byte comparison.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
}

// Tokens returns the manifest line for each entry. The display name is used
// unless it collides with another entry's display or source name, in which
// case the source name keeps the line unambiguous. Tokens that would not
// survive ReadLines unchanged are quoted.
func Tokens(entries []Entry) []string {
	displays := make(map[string]int, len(entries))
	names := make(map[string]int, len(entries))
	for i, entry := range entries {
		displays[entry.Display]++
		names[entry.Name] = i
	}
	tokens := make([]string, len(entries))
	for i, entry := range entries {
		token := entry.Display
		if displays[token] > 1 {
			token = entry.Name
		} else if owner, ok := names[token]; ok && owner != i {
			token = entry.Name
		}
		tokens[i] = quoteToken(token)
	}
	return tokens
}

// quoteToken writes names that a plain line would not read back verbatim in
// concat syntax: comment-like names, names with edge whitespace, names that
// change under NFC and names that already look like concat lines.
func quoteToken(token string) string {
	if !strings.HasPrefix(token, "#") &&
		!strings.HasPrefix(token, "file ") &&
		strings.TrimSpace(token) == token &&
		norm.NFC.String(token) == token {
		return token
	}
	return "file '" + strings.ReplaceAll(token, "'", `'\''`) + "'"
}

// Write emits one manifest line per entry.
func Write(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, token := range Tokens(entries) {
		if _, err := bw.WriteString(token + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes the manifest to path atomically. On failure the previous
// file, if any, is left untouched.
func WriteFile(path string, entries []Entry) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create manifest temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := Write(tmp, entries); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close manifest: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod manifest: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}
