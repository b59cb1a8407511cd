// Package chapters parses chapter manifests and renders chapter metadata.
//
// A chapter manifest holds one "HH:MM:SS title" record per line. Chapters
// are numbered with a zero-padded prefix ("01. Intro") and written to ffmpeg
// as an FFMETADATA1 document.
package chapters
