package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nais/build/src/config"
)

var (
	sourceDir     string
	cfgFile       string
	imageOverride string
	verbose       bool
	cfg           *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "nb",
	Short: "NAIS build",
	Long:  "NAISly build, test, release and deploy your application.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}

		// The version command doesn't need configuration.
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&sourceDir, "source-directory", "s", ".", "root of the source code tree")
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to the nb.toml build configuration file")
	rootCmd.PersistentFlags().StringVar(&imageOverride, "image", "", "release a prebuilt image reference instead of building one")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
