// Package history records completed and failed builds in a local SQLite
// ledger so past runs can be listed with `abb history`.
package history
