package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"sonybd/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage player configuration",
	Long:  `Generate or validate player configuration files.`,
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate [config-file]",
	Short: "Generate default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) > 0 {
			path = args[0]
		}

		if err := config.SaveConfig(config.NewDefaultConfig(), path); err != nil {
			return fmt.Errorf("failed to save default config: %w", err)
		}

		cmd.Printf("Default configuration saved to: %s\n", path)
		cmd.Println("Please edit the player address and MAC before use.")
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) > 0 {
			path = args[0]
		}

		cfg, err := config.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}

		cmd.Printf("Configuration file is valid: %s\n", path)
		cmd.Printf("Player %s at %s (mac %s)\n", cfg.Player.ID, cfg.Player.Address, cfg.Player.MAC)
		cmd.Printf("Power on: %d retries, %s backoff\n", cfg.Power.MaxRetries, cfg.Power.Backoff)
		if cfg.Player.Mock {
			cmd.Println("Mock mode: enabled")
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGenerateCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
