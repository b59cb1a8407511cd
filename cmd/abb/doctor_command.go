package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"abb/internal/config"
	"abb/internal/deps"
	"abb/internal/ffmpeg"
	"abb/internal/logging"
	"abb/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that ffmpeg, ffprobe and the configured encoder are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := doctorChecks(cmd, cfg)

			rows := make([][]string, 0, len(statuses))
			results := make([]preflight.Result, 0, len(statuses))
			for _, s := range statuses {
				state := "ok"
				switch {
				case !s.Available && s.Optional:
					state = "warn"
				case !s.Available:
					state = "missing"
				}
				command := s.Command
				if s.Path != "" {
					command = s.Path
				}
				rows = append(rows, []string{s.Name, command, state, s.Detail})
				if !s.Optional {
					results = append(results, preflight.Result{Name: s.Name, Passed: s.Available, Detail: s.Detail})
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]column{left("Check"), left("Command"), left("Status"), left("Detail")},
				rows,
				logging.IsTerminal(out),
			))
			fmt.Fprintf(out, "History: %s (%s)\n", yesNo(cfg.History.Enabled), cfg.History.Path)
			return preflight.Err(results)
		},
	}
}

// doctorChecks reports the tool binaries and, when ffmpeg is present, whether
// it ships the configured encoder. The encoder only matters when re-encoding.
func doctorChecks(cmd *cobra.Command, cfg *config.Config) []deps.Status {
	statuses := preflight.CheckSystemDeps(cfg)
	ffmpegFound := len(statuses) > 0 && statuses[0].Available
	if !ffmpegFound {
		return statuses
	}
	runner := &ffmpeg.ExecRunner{WaitDelay: cfg.WaitDelay()}
	encoder := deps.CheckEncoder(cmd.Context(), runner, cfg.FFmpegBinary(), cfg.AudioEncoder())
	encoder.Optional = !cfg.Encoding.Reencode
	return append(statuses, encoder)
}
