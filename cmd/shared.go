package cmd

import (
	"context"
	"fmt"
	"time"

	"sonybd/internal"
	"sonybd/internal/bluray"
	"sonybd/internal/config"
	"sonybd/internal/netif"
	"sonybd/internal/prompt"
	"sonybd/internal/settings"
)

var (
	mockFlag    bool
	pinFlag     string
	timeoutFlag time.Duration
)

// session bundles a started player and whatever must be closed afterwards
type session struct {
	config *config.Config
	remote *bluray.BlurayRemote
	store  *settings.SQLiteStore
}

func (s *session) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// loadConfig reads the config file and applies command-line overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if mockFlag {
		cfg.Player.Mock = true
	}
	return cfg, nil
}

// openSession builds the player client from configuration and starts it
func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	s := &session{config: cfg}
	deps := bluray.Dependencies{}

	if !cfg.Player.Mock {
		store, err := settings.NewSQLiteStore(cfg.Settings.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open settings: %w", err)
		}
		s.store = store
		deps.Credentials = store

		if cfg.Player.LocalMAC != "" {
			deps.MACResolver = netif.Static(cfg.Player.LocalMAC)
		} else {
			deps.MACResolver = netif.NewResolver(cfg.Player.Interface)
		}

		if pinFlag != "" {
			deps.Prompter = prompt.NewStatic(pinFlag)
		} else {
			deps.Prompter = prompt.NewTerminal()
		}
	}

	mode := internal.NewModeOptions(
		internal.WithDebug(verbose),
		internal.WithMock(cfg.Player.Mock),
	)
	s.remote = bluray.NewBlurayRemote(cfg.Player.ID, cfg.ClientOptions(), deps, mode)

	if err := s.remote.Start(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start player session: %w", err)
	}

	return s, nil
}

// commandContext bounds a one-shot command by --timeout
func commandContext() (context.Context, context.CancelFunc) {
	if timeoutFlag <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeoutFlag)
}
