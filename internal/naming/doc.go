// Package naming cleans media filenames for manifests and chapter titles.
//
// Normalization applies one anchored pattern (by default a hyphen followed
// by eleven or more letters, digits or hyphens) to the base name, then any
// user filters, and re-attaches the extension. Go's leftmost-first matching
// makes the default pattern idempotent: a second pass finds nothing left to
// strip. The normalizer does not judge whether a match was really a hash;
// users review the manifest before building.
package naming
