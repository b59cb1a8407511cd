// Package main hosts the abb CLI entrypoint and command graph.
//
// The Cobra command tree lists media directories and archives into editable
// manifests, runs builds through the orchestrator, validates chapter lists,
// and reports history and tool health. Configuration and the logger are
// resolved lazily by commandContext so subcommands only wire flags to the
// internal packages.
//
// Keep this package lean: behaviour belongs in internal/, and commands here
// translate flags into requests and results into terminal output.
package main
