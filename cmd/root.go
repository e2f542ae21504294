package cmd

import (
	"github.com/spf13/cobra"
	"sonybd/internal/config"
	"sonybd/internal/logger"
)

var (
	verbose    bool
	configPath string
	log        = logger.New()
)

var rootCmd = &cobra.Command{
	Use:   "sonybd",
	Short: "sonybd - control a Sony Blu-ray player over its network remote API",
	Long: `sonybd wakes a Sony Blu-ray player with wake-on-LAN, pairs with it when
the player asks for a code, and sends remote control buttons over IRCC.
It can run once from the command line or serve the player over a REST API.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetSilentMode(false)
			logger.SetLevel(logger.LOG_DEBUG)
		}
		log = logger.New()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFile, "Path to player configuration file")
}
