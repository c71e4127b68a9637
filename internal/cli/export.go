package cli

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/forPelevin/dmcut/internal/pipeline"
	"github.com/forPelevin/dmcut/internal/timecode"
	"github.com/forPelevin/dmcut/internal/types"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var req pipeline.ExportRequest
	cmd := &cobra.Command{
		Use:   "export <input-dir>",
		Short: "Cut the manifest clips from the broadcast video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sctx, cancel := signalContext(cmd.Context())
			defer cancel()

			r, closeDeps, err := ctx.runner(sctx, true, false)
			if err != nil {
				return err
			}
			defer closeDeps()

			req.InputDir = args[0]
			rep, err := r.Export(sctx, req)
			printExported(cmd, rep.Clips)
			if err != nil {
				return err
			}
			if rep.Failed > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), paint(fmt.Sprintf("%d clip(s) failed, see the log", rep.Failed), ansiYellow, shouldColorize(cmd.OutOrStdout())))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "output: %s\n", rep.OutputDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Manifest, "source", "", "Manifest to export (default <output>/<input>/data_source.json)")
	cmd.Flags().BoolVar(&req.Covers, "covers", false, "Extract cover images for each clip")
	cmd.Flags().BoolVar(&req.ForceASS, "force-ass", false, "Regenerate subtitles even if the clip folder has an edited .ass")
	return cmd
}

func newRegenCommand(ctx *commandContext) *cobra.Command {
	var forceASS bool
	cmd := &cobra.Command{
		Use:   "regen <clip-dir>",
		Short: "Re-render one exported clip folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sctx, cancel := signalContext(cmd.Context())
			defer cancel()

			r, closeDeps, err := ctx.runner(sctx, true, false)
			if err != nil {
				return err
			}
			defer closeDeps()

			clip, err := r.Regen(sctx, args[0], forceASS)
			if err != nil {
				return err
			}
			printExported(cmd, []types.ExportedClip{clip})
			return nil
		},
	}
	cmd.Flags().BoolVar(&forceASS, "force-ass", false, "Regenerate subtitles instead of restyling the existing .ass")
	return cmd
}

func printExported(cmd *cobra.Command, clips []types.ExportedClip) {
	if len(clips) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	color := shouldColorize(out)
	rows := make([][]string, 0, len(clips))
	for _, c := range clips {
		aligned := paint("no", ansiYellow, color)
		if c.Aligned {
			aligned = paint("yes", ansiGreen, color)
		}
		rows = append(rows, []string{
			strconv.Itoa(c.Index),
			timecode.FormatRange(c.Range.Start, c.Range.End),
			fmt.Sprintf("%.1fs", c.Range.Duration()),
			aligned,
			strconv.Itoa(len(c.Covers)),
			filepath.Base(c.Dir),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Range", "Length", "Aligned", "Covers", "Folder"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignRight, alignLeft},
	))
}
