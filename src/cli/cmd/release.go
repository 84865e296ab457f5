package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nais/build/src/pipeline"
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Build and push your image to the configured registry",
	Long: `Build and push your image to the configured registry.

Implies build, unless --image points at a prebuilt reference.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(pipeline.StageRelease)
		if err != nil {
			return err
		}
		return p.Run(cmd.Context(), pipeline.StageRelease)
	},
}

func init() {
	rootCmd.AddCommand(releaseCmd)
}
