package build

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// outputLock guards an output path against concurrent builds. The lock file
// stays on disk after release so every build locks the same inode.
type outputLock struct {
	lock *flock.Flock
	path string
}

func lockOutput(output string) (*outputLock, error) {
	path := filepath.Join(filepath.Dir(output), "."+filepath.Base(output)+".lock")
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock output: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBuildLocked, output)
	}
	return &outputLock{lock: lock, path: path}, nil
}

func (l *outputLock) release() {
	if l == nil {
		return
	}
	_ = l.lock.Unlock()
}

// tempOutputPath is a hidden sibling of output with the same extension so
// ffmpeg picks the same muxer.
func tempOutputPath(output, id string) string {
	ext := filepath.Ext(output)
	stem := strings.TrimSuffix(filepath.Base(output), ext)
	return filepath.Join(filepath.Dir(output), fmt.Sprintf(".%s.abb-%s%s", stem, shortID(id), ext))
}

func checkOutput(output string, overwrite bool) error {
	info, err := os.Stat(output)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("stat output: %w", err)
	case info.IsDir():
		return fmt.Errorf("%w: %s is a directory", ErrOutputExists, output)
	case !overwrite:
		return fmt.Errorf("%w: %s (use --overwrite to replace it)", ErrOutputExists, output)
	}
	return nil
}

// finalize moves a finished temp output into place.
func finalize(tempOutput, output string) error {
	info, err := os.Stat(tempOutput)
	if err != nil {
		return fmt.Errorf("ffmpeg reported success but produced no output: %w", err)
	}
	if info.Size() == 0 {
		return errors.New("ffmpeg reported success but produced an empty output")
	}
	if err := os.Rename(tempOutput, output); err != nil {
		return fmt.Errorf("move output into place: %w", err)
	}
	return nil
}
