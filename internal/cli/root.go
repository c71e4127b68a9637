package cli

import (
	"github.com/spf13/cobra"
)

const skipConfigLoad = "skipConfigLoad"

// NewRootCommand assembles the dmcut command tree.
func NewRootCommand() *cobra.Command {
	var configFlag, logLevel string
	ctx := newCommandContext(&configFlag, &logLevel)

	root := &cobra.Command{
		Use:           "dmcut",
		Short:         "Find highlight clips from live-stream chat and cut them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipConfigLoad] == "true" {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")

	root.AddCommand(newAnalyzeCommand(ctx))
	root.AddCommand(newExportCommand(ctx))
	root.AddCommand(newRegenCommand(ctx))
	root.AddCommand(newRunsCommand(ctx))
	root.AddCommand(newCorrectCommand(ctx))
	root.AddCommand(newShiftCommand(ctx))
	root.AddCommand(newConfigCommand(ctx))
	return root
}
