// Package config loads, normalizes, and validates abb configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ABB_FFMPEG. The Config type replaces ambient globals like the manifest
// filename and the hash-suffix pattern with explicit values that every
// component receives at construction time.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, compiled-safe patterns, and clear validation errors.
package config
