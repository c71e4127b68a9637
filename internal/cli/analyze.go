package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/forPelevin/dmcut/internal/domain/highlights"
	"github.com/forPelevin/dmcut/internal/usecase"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var noLLM bool
	cmd := &cobra.Command{
		Use:   "analyze <input-dir>",
		Short: "Detect chat highlights and write the clip manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sctx, cancel := signalContext(cmd.Context())
			defer cancel()

			r, closeDeps, err := ctx.runner(sctx, noLLM, true)
			if err != nil {
				return err
			}
			defer closeDeps()

			rep, err := r.Analyze(sctx, args[0])
			if errors.Is(err, highlights.ErrEmptyInput) {
				return fmt.Errorf("no scoreable chat events in %s", args[0])
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color := shouldColorize(out)
			if len(rep.Manifest.Clips) == 0 {
				fmt.Fprintln(out, paint("no highlights found", ansiYellow, color))
				fmt.Fprintf(out, "manifest: %s\n", rep.ManifestPath)
				return nil
			}

			rows := make([][]string, 0, len(rep.Manifest.Clips))
			for _, c := range rep.Manifest.Clips {
				title := c.Title
				if title == usecase.FailedTitle {
					title = paint(title, ansiRed, color)
				}
				rows = append(rows, []string{
					strconv.Itoa(c.Index),
					c.Timestamp,
					fmt.Sprintf("%.0fs", c.EndSec-c.StartSec),
					fmt.Sprintf("%.1f", c.Score),
					strconv.Itoa(c.ChatCount),
					title,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Range", "Length", "Score", "Chat", "Title"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "threshold %.1f over %d points; run %s\n", rep.Detection.Threshold, len(rep.Detection.Points), rep.Manifest.RunID)
			if rep.Fallbacks > 0 {
				fmt.Fprintln(out, paint(fmt.Sprintf("%d clip(s) got placeholder metadata", rep.Fallbacks), ansiYellow, color))
			}
			fmt.Fprintf(out, "manifest: %s\n", rep.ManifestPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noLLM, "no-llm", false, "Use placeholder titles instead of calling the LLM")
	return cmd
}
