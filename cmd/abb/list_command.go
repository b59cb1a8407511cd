package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"abb/internal/archive"
	"abb/internal/config"
	"abb/internal/logging"
	"abb/internal/manifest"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "list <dir|archive>",
		Short: "Write a manifest of the media files in a directory or archive",
		Long: "List media files in a directory (non-recursive) or archive in byte order,\n" +
			"with content-hash suffixes stripped. Edit the result to reorder chapters\n" +
			"before running `abb build`.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger(cmd)
			if err != nil {
				return err
			}
			builder, err := manifest.NewBuilder(cfg)
			if err != nil {
				return err
			}

			source := args[0]
			var entries []manifest.Entry
			if isArchiveFile(source) {
				entries, err = archive.List(source, builder)
			} else {
				entries, err = builder.List(source)
			}
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outputPath)
			if target == "" {
				return manifest.Write(cmd.OutOrStdout(), entries)
			}
			target, err = config.ExpandPath(target)
			if err != nil {
				return fmt.Errorf("resolve manifest path: %w", err)
			}
			if err := manifest.WriteFile(target, entries); err != nil {
				return err
			}
			logging.NewComponentLogger(logger, "list").Info("manifest written",
				logging.String("path", target),
				logging.Int("entries", len(entries)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the manifest to this file instead of stdout")
	return cmd
}

// isArchiveFile reports whether source is an archive rather than a directory
// that happens to carry an archive extension.
func isArchiveFile(source string) bool {
	if info, err := os.Stat(source); err == nil && info.IsDir() {
		return false
	}
	return archive.IsArchive(source)
}
