package chapters

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// Metadata is the content of an ffmpeg FFMETADATA1 file.
type Metadata struct {
	Title    string
	Artist   string
	Chapters []Chapter
}

var metaEscaper = strings.NewReplacer(
	`\`, `\\`,
	`=`, `\=`,
	`;`, `\;`,
	`#`, `\#`,
	"\n", "\\\n",
)

// EscapeValue escapes characters with meaning in FFMETADATA values.
func EscapeValue(value string) string {
	return metaEscaper.Replace(value)
}

// WriteFFMetadata renders meta with millisecond chapter timebases. END is
// left out for chapters whose end is not known yet.
func WriteFFMetadata(w io.Writer, meta Metadata) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, ";FFMETADATA1")
	if meta.Title != "" {
		fmt.Fprintf(bw, "title=%s\n", EscapeValue(meta.Title))
		fmt.Fprintf(bw, "album=%s\n", EscapeValue(meta.Title))
	}
	if meta.Artist != "" {
		fmt.Fprintf(bw, "artist=%s\n", EscapeValue(meta.Artist))
		fmt.Fprintf(bw, "album_artist=%s\n", EscapeValue(meta.Artist))
	}
	for _, ch := range meta.Chapters {
		fmt.Fprintln(bw, "[CHAPTER]")
		fmt.Fprintln(bw, "TIMEBASE=1/1000")
		fmt.Fprintf(bw, "START=%d\n", int64(ch.Start/time.Millisecond))
		if ch.End > ch.Start {
			fmt.Fprintf(bw, "END=%d\n", int64(ch.End/time.Millisecond))
		}
		fmt.Fprintf(bw, "title=%s\n", EscapeValue(ch.Title))
	}
	return bw.Flush()
}
