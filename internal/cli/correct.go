package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/forPelevin/dmcut/internal/config"
	"github.com/forPelevin/dmcut/internal/timecode"
)

func newCorrectCommand(ctx *commandContext) *cobra.Command {
	var dict string
	cmd := &cobra.Command{
		Use:   "correct <dir>",
		Short: "Apply the subtitle replacement dictionary to every .srt/.txt in a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if dict != "" {
				if cfg.Correction.Dictionary, err = config.ExpandPath(dict); err != nil {
					return err
				}
			}
			r, closeDeps, err := ctx.runner(cmd.Context(), true, false)
			if err != nil {
				return err
			}
			defer closeDeps()

			n, err := r.Correct(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d file(s) corrected\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&dict, "dict", "", "Dictionary file (default correction.dictionary)")
	return cmd
}

func newShiftCommand(ctx *commandContext) *cobra.Command {
	var ref, target string
	cmd := &cobra.Command{
		Use:   "shift <manifest>",
		Short: "Move manifest clips onto another recording of the same broadcast",
		Long: "shift re-times every clip so that the moment at --ref in the analyzed recording\n" +
			"lands at --target in the recording that will be cut.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := timecode.Parse(ref)
			if err != nil {
				return fmt.Errorf("--ref: %w", err)
			}
			to, err := timecode.Parse(target)
			if err != nil {
				return fmt.Errorf("--target: %w", err)
			}
			r, closeDeps, err := ctx.runner(cmd.Context(), true, false)
			if err != nil {
				return err
			}
			defer closeDeps()

			offset := to - from
			m, dropped, err := r.Shift(args[0], offset)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "shifted %d clip(s) by %s\n", len(m.Clips), time.Duration(offset*float64(time.Second)))
			if dropped > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "dropped %d clip(s) that end before the recording starts\n", dropped)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ref, "ref", "", "Reference moment in the analyzed recording (HH:MM:SS)")
	cmd.Flags().StringVar(&target, "target", "", "The same moment in the recording to cut (HH:MM:SS)")
	_ = cmd.MarkFlagRequired("ref")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
