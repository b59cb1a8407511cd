package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"abb/internal/build"
	"abb/internal/chapters"
	"abb/internal/config"
	"abb/internal/ffmpeg"
	"abb/internal/history"
	"abb/internal/logging"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var req build.Request

	cmd := &cobra.Command{
		Use:     "build <dir|file>",
		Aliases: []string{"cat"},
		Short:   "Build a chaptered audiobook",
		Long: "Build one chaptered audiobook with a single ffmpeg run.\n\n" +
			"Given a directory, the manifest (default list.txt) orders the files and each\n" +
			"file becomes a chapter. Given a single media file, the manifest is a chapter\n" +
			"list of \"HH:MM:SS title\" lines.",
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
			req.Input = args[0]
			req.Verbose = ctx.verbose()

			runner := &ffmpeg.ExecRunner{WaitDelay: cfg.WaitDelay()}
			if req.Verbose {
				runner.Stderr = cmd.ErrOrStderr()
			}
			opts := []build.Option{build.WithRunner(runner), build.WithLogger(logger)}
			if !req.DryRun {
				if store := openHistory(cfg, logger); store != nil {
					defer store.Close()
					opts = append(opts, build.WithRecorder(store))
				}
			}

			orchestrator, err := build.New(cfg, opts...)
			if err != nil {
				return err
			}
			report, err := orchestrator.Build(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if report.DryRun {
				fmt.Fprintln(out, report.Command.String())
				fmt.Fprintf(out, "# manifests kept in %s\n", report.TempDir)
				return nil
			}
			var size string
			if info, err := os.Stat(report.Output); err == nil {
				size = ", " + humanize.Bytes(uint64(info.Size()))
			}
			fmt.Fprintf(out, "Wrote %s (%d chapters, %s%s)\n",
				report.Output, len(report.Chapters), chapters.FormatTimestamp(report.Duration), size)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&req.Manifest, "list", "l", "", "Manifest file (default from config, usually list.txt)")
	flags.StringVarP(&req.Output, "output", "o", "", "Output file (default from config, usually output.m4b)")
	flags.StringVar(&req.Title, "title", "", "Album title tag (default: directory or file name)")
	flags.StringVar(&req.Author, "author", "", "Artist and album artist tag")
	flags.StringVar(&req.Bitrate, "bitrate", "", "Audio bitrate when re-encoding, e.g. 128k")
	flags.BoolVar(&req.Overwrite, "overwrite", false, "Replace an existing output file")
	flags.BoolVar(&req.NoReencode, "no-reencode", false, "Copy audio streams instead of re-encoding")
	flags.BoolVar(&req.DryRun, "dry-run", false, "Write manifests and print the ffmpeg command without running it")
	flags.BoolVar(&req.KeepTemp, "keep-temp", false, "Keep the temporary work directory")
	return cmd
}

// openHistory returns nil when history is disabled or fails to open.
func openHistory(cfg *config.Config, logger *slog.Logger) *history.Store {
	store, err := history.Open(cfg)
	switch {
	case err == nil:
		return store
	case errors.Is(err, history.ErrDisabled):
		return nil
	default:
		logger.Warn("build history unavailable", logging.Error(err))
		return nil
	}
}
