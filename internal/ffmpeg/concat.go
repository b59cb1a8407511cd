package ffmpeg

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// EscapePath quotes a path for the concat demuxer's file directive.
func EscapePath(path string) string {
	return "'" + strings.ReplaceAll(path, "'", `'\''`) + "'"
}

// WriteConcatList writes a concat demuxer script referencing paths in order.
func WriteConcatList(w io.Writer, paths []string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "ffconcat version 1.0")
	for _, path := range paths {
		if strings.ContainsAny(path, "\n\r") {
			return fmt.Errorf("concat list: path contains a line break: %q", path)
		}
		fmt.Fprintf(bw, "file %s\n", EscapePath(path))
	}
	return bw.Flush()
}

// WriteConcatFile writes the concat script to path.
func WriteConcatFile(path string, paths []string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create concat list: %w", err)
	}
	if err := WriteConcatList(file, paths); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
