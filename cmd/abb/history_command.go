package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"abb/internal/chapters"
	"abb/internal/history"
	"abb/internal/logging"
	"abb/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent builds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				if errors.Is(err, history.ErrDisabled) {
					return services.Wrap(services.ErrConfiguration, "history", "open", "build history is disabled ([history] enabled = false)", nil)
				}
				return err
			}
			defer store.Close()

			builds, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(builds) == 0 {
				fmt.Fprintln(out, "No builds recorded")
				return nil
			}

			rows := make([][]string, 0, len(builds))
			for _, b := range builds {
				rows = append(rows, []string{
					humanize.Time(b.StartedAt),
					b.Status,
					b.Mode,
					strconv.Itoa(b.Chapters),
					chapters.FormatTimestamp(b.Duration),
					b.Elapsed().Round(100 * time.Millisecond).String(),
					b.Output,
					truncate(b.Error, 60),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]column{
					left("Started"), left("Status"), left("Mode"), right("Chapters"),
					right("Length"), right("Elapsed"), left("Output"), left("Error"),
				},
				rows,
				logging.IsTerminal(out),
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of builds to show (0 for all)")
	return cmd
}
