package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nais/build/src/pipeline"
)

var deployCmd = &cobra.Command{
	Use:   "deploy <cluster>",
	Short: "Release your image and deploy it to a cluster",
	Long: `Release your image and deploy it to a cluster.

Implies release. Deploy credentials are read from NAIS_DEPLOY_APIKEY and
NAIS_DEPLOY_SERVER; the deploy client is never invoked with an incomplete
configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline(pipeline.StageDeploy)
		if err != nil {
			return err
		}
		p.DeployConfig.Cluster = args[0]
		return p.Run(cmd.Context(), pipeline.StageDeploy)
	},
}

func init() {
	rootCmd.AddCommand(deployCmd)
}
