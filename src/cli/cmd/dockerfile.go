package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nais/build/src/pipeline"
)

var dockerfileCmd = &cobra.Command{
	Use:   "dockerfile",
	Short: "Detect build parameters and print your Dockerfile",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(pipeline.StageDockerfile)
		if err != nil {
			return err
		}
		if err := p.Run(cmd.Context(), pipeline.StageDockerfile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Will be built as: %s\n", p.Image)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dockerfileCmd)
}
