package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nais/build/src/pipeline"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build your project into a container image",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(pipeline.StageBuild)
		if err != nil {
			return err
		}
		return p.Run(cmd.Context(), pipeline.StageBuild)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
