package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/forPelevin/dmcut/internal/store"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recorded analyze runs, or show the clips of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			s, err := store.Open(cmd.Context(), cfg.Paths.StateDB)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				run, err := s.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "run %s  %s\ninput %s\nthreshold %.1f over %d points\n",
					run.ID, run.CreatedAt.Local().Format("2006-01-02 15:04"), run.InputDir, run.Threshold, run.Points)
				rows := make([][]string, 0, len(run.Clips))
				for _, c := range run.Clips {
					rows = append(rows, []string{strconv.Itoa(c.Index), c.Timestamp, fmt.Sprintf("%.1f", c.Score), strconv.Itoa(c.ChatCount), c.Title})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Range", "Score", "Chat", "Title"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			}

			runs, err := s.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.ID[:min(8, len(r.ID))],
					r.CreatedAt.Local().Format("2006-01-02 15:04"),
					strconv.Itoa(r.ClipCount),
					fmt.Sprintf("%.1f", r.Threshold),
					r.InputDir,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "When", "Clips", "Threshold", "Input"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list (0 for all)")
	return cmd
}
