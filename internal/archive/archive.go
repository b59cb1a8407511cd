package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"abb/internal/manifest"
	"abb/internal/services"
)

// ErrUnsupported reports an archive format abb cannot read.
var ErrUnsupported = services.Mark("unsupported archive format", services.ErrValidation)

type format int

const (
	formatNone format = iota
	formatZip
	formatTar
	formatTarGzip
	formatTarBzip2
)

var suffixes = []struct {
	suffix string
	format format
}{
	{".tar.gz", formatTarGzip},
	{".tgz", formatTarGzip},
	{".tar.bz2", formatTarBzip2},
	{".tbz2", formatTarBzip2},
	{".tar", formatTar},
	{".zip", formatZip},
}

// compressed lists suffixes recognised as archives that cannot be read.
var compressed = []string{".tar.xz", ".txz", ".tar.zst", ".gz", ".bz2", ".xz", ".zst", ".7z", ".rar"}

func detect(name string) format {
	lower := strings.ToLower(name)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return s.format
		}
	}
	return formatNone
}

// IsArchive reports whether name looks like an archive, readable or not.
func IsArchive(name string) bool {
	if detect(name) != formatNone {
		return true
	}
	lower := strings.ToLower(name)
	for _, suffix := range compressed {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// List returns the media members of the archive at archivePath, sorted by
// base name. Entry paths are member paths inside the archive.
func List(archivePath string, b *manifest.Builder) ([]manifest.Entry, error) {
	if _, err := os.Stat(archivePath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", manifest.ErrInputNotFound, archivePath)
		}
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	var (
		members []string
		err     error
	)
	switch detect(archivePath) {
	case formatZip:
		members, err = zipMembers(archivePath)
	case formatTar, formatTarGzip, formatTarBzip2:
		members, err = tarMembers(archivePath, detect(archivePath))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, path.Base(archivePath))
	}
	if err != nil {
		return nil, err
	}

	var entries []manifest.Entry
	for _, member := range members {
		if skipMember(member) {
			continue
		}
		base := path.Base(member)
		if !b.Accept(base) {
			continue
		}
		entries = append(entries, b.NewEntry(member, base))
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w in archive %s", manifest.ErrNoMedia, archivePath)
	}
	manifest.SortEntries(entries)
	return entries, nil
}

func skipMember(member string) bool {
	for _, part := range strings.Split(strings.Trim(member, "/"), "/") {
		if strings.HasPrefix(part, ".") || part == "__MACOSX" {
			return true
		}
	}
	return false
}

func zipMembers(archivePath string) ([]string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer reader.Close()

	members := make([]string, 0, len(reader.File))
	for _, file := range reader.File {
		if file.FileInfo().Mode().IsRegular() {
			members = append(members, file.Name)
		}
	}
	return members, nil
}

func tarMembers(archivePath string, f format) ([]string, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	switch f {
	case formatTarGzip:
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("open gzip: %w", err)
		}
		defer gz.Close()
		r = gz
	case formatTarBzip2:
		r = bzip2.NewReader(file)
	}

	var members []string
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar: %w", err)
		}
		if header.Typeflag == tar.TypeReg {
			members = append(members, header.Name)
		}
	}
	return members, nil
}
