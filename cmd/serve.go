package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"sonybd/internal/host"
	"sonybd/internal/logger"
)

var (
	serveListen  string
	servePowerOn bool
	tokenSubject string
	tokenExpiry  time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the player over a REST API",
	Long: `Start a player session and mount on, off, status and button presses as
REST routes under /api/v1. When api.jwt_secret is set every device route
requires a bearer token (see "sonybd token").`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetSilentMode(false)
		if verbose {
			logger.SetLevel(logger.LOG_DEBUG)
		} else {
			logger.SetLevel(logger.LOG_INFO)
		}
		log := logger.New()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, err := openSession(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to open player session")
			return err
		}
		defer s.Close()

		if servePowerOn {
			if err := s.remote.On(ctx); err != nil {
				// the API stays up; a later POST /on retries from scratch
				log.Warn().Err(err).Msg("Initial power on failed")
			}
		}

		var options []host.ServerOption
		if s.config.API.JWTSecret != "" {
			options = append(options, host.WithJWT(host.NewJWTService(s.config.API.JWTSecret, s.config.API.JWTIssuer, 0)))
		}
		server := host.NewServer(s.remote, options...)

		listen := s.config.API.Listen
		if serveListen != "" {
			listen = serveListen
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(listen)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("api server error: %w", err)
			}
			return nil
		case <-ctx.Done():
			log.Info().Msg("Received shutdown signal")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the REST API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.API.JWTSecret == "" {
			return fmt.Errorf("api.jwt_secret is not set in %s", configPath)
		}

		token, err := host.NewJWTService(cfg.API.JWTSecret, cfg.API.JWTIssuer, tokenExpiry).GenerateToken(tokenSubject)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}
		fmt.Fprintln(os.Stdout, token)
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "Listen address (overrides api.listen)")
	serveCmd.Flags().BoolVar(&servePowerOn, "power-on", false, "Power the player on before serving")
	serveCmd.Flags().BoolVar(&mockFlag, "mock", false, "Use the simulated player")
	serveCmd.Flags().StringVar(&pinFlag, "pin", "", "Pairing code to answer the player with instead of prompting")

	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "automation", "Token subject")
	tokenCmd.Flags().DurationVar(&tokenExpiry, "expiry", 24*time.Hour, "Token lifetime")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)
}
