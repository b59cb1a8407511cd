// Package manifest lists media directories and reads directory-mode manifests.
//
// A manifest is newline-delimited UTF-8 text with one file per line. Lines
// hold the normalized display name of each file so the user can reorder or
// retitle chapters by editing them; Resolve maps every line back to exactly
// one source file.
package manifest
