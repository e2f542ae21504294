package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"sonybd/internal/bluray"
)

var onCmd = &cobra.Command{
	Use:   "on",
	Short: "Wake the player and load its command list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		log.Info().
			Str("address", s.config.Player.Address).
			Str("mac", s.config.Player.MAC).
			Msg("Turning player on")

		if err := s.remote.On(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to turn player on")
			return err
		}

		cmd.Println("Player is on")
		return nil
	},
}

var offCmd = &cobra.Command{
	Use:   "off",
	Short: "Turn the player off (no standby command is sent)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		return s.remote.Off(ctx)
	},
}

var pressCmd = &cobra.Command{
	Use:   "press [button]...",
	Short: "Send remote control buttons",
	Long: `Wake the player, load its command list and press the given buttons in order.
Host names SELECT, FORWARD, SKIP and REPLAY are mapped to the player's own names;
any other name is looked up in the player's command list as-is.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.remote.On(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to turn player on")
			return err
		}

		for _, button := range args {
			log.Info().
				Str("button", button).
				Msg("Pressing button")

			if err := s.remote.PressButton(ctx, button); err != nil {
				log.Error().Err(err).Str("button", button).Msg("Failed to press button")
				return err
			}
		}

		cmd.Printf("Pressed %d button(s)\n", len(args))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query the player's status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		status, err := s.remote.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}

		out, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode status: %w", err)
		}
		cmd.Println(string(out))
		return nil
	},
}

var buttonsCmd = &cobra.Command{
	Use:   "buttons",
	Short: "List the buttons offered to UIs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.Println("Supported buttons:")
		for _, button := range bluray.SupportedButtons() {
			cmd.Printf("  %-16s %s (sent as %s)\n", button.ID, button.Label, bluray.AliasButton(button.ID))
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{onCmd, offCmd, pressCmd, statusCmd} {
		c.Flags().BoolVar(&mockFlag, "mock", false, "Use the simulated player")
		c.Flags().StringVar(&pinFlag, "pin", "", "Pairing code to answer the player with instead of prompting")
		c.Flags().DurationVar(&timeoutFlag, "timeout", 0, "Abort the command after this long (0 waits for the retry budget)")
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(buttonsCmd)
}
