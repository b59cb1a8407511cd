package build

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"abb/internal/manifest"
)

// Mode selects how a build gathers its chapters.
type Mode string

const (
	// ModeDirectory concatenates the files a directory manifest lists.
	ModeDirectory Mode = "directory"
	// ModeFile splits one media file with a chapter manifest.
	ModeFile Mode = "file"
)

// DetectMode returns ModeDirectory for directories and ModeFile for regular
// files.
func DetectMode(path string) (Mode, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", manifest.ErrInputNotFound, path)
		}
		return "", fmt.Errorf("stat input: %w", err)
	}
	switch {
	case info.IsDir():
		return ModeDirectory, nil
	case info.Mode().IsRegular():
		return ModeFile, nil
	default:
		return "", fmt.Errorf("%w: %s is not a regular file or directory", manifest.ErrInputNotFound, path)
	}
}
