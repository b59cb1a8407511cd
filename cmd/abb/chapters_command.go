package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"abb/internal/chapters"
	"abb/internal/logging"
)

func newChaptersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "chapters <manifest>",
		Short: "Validate a chapter list and print the numbered chapters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			markers, err := chapters.ParseFile(args[0])
			if err != nil {
				return err
			}
			chs, err := chapters.FromMarkers(markers, 0)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(chs))
			for _, ch := range chs {
				end := "end"
				if ch.End > 0 {
					end = chapters.FormatTimestamp(ch.End)
				}
				rows = append(rows, []string{
					strconv.Itoa(ch.Index),
					chapters.FormatTimestamp(ch.Start),
					end,
					ch.Title,
					strconv.Itoa(ch.Line),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]column{right("#"), right("Start"), right("End"), left("Title"), right("Line")},
				rows,
				logging.IsTerminal(out),
			))
			return nil
		},
	}
}
