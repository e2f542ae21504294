package bluray

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"sonybd/internal/logger"
)

// MockClient simulates a player. Every call succeeds and is recorded.
type MockClient struct {
	logger zerolog.Logger

	mu      sync.Mutex
	pressed []string
	on      bool
}

// NewMockClient creates a simulated player client
func NewMockClient(opts Options) *MockClient {
	return &MockClient{
		logger: logger.Component("bluray-mock").With().
			Str("address", opts.Address).
			Logger(),
	}
}

func (m *MockClient) Start(ctx context.Context) error {
	m.logger.Info().Msg("start")
	return nil
}

func (m *MockClient) On(ctx context.Context) error {
	m.logger.Info().Msg("on")
	m.mu.Lock()
	m.on = true
	m.mu.Unlock()
	return nil
}

func (m *MockClient) Off(ctx context.Context) error {
	m.logger.Info().Msg("off")
	m.mu.Lock()
	m.on = false
	m.mu.Unlock()
	return nil
}

func (m *MockClient) ButtonPress(ctx context.Context, button string) error {
	m.logger.Info().Str("button", button).Msg("buttonPress")
	m.mu.Lock()
	m.pressed = append(m.pressed, button)
	m.mu.Unlock()
	return nil
}

func (m *MockClient) GetStatus(ctx context.Context) (*Status, error) {
	m.logger.Info().Msg("getStatus")
	return &Status{Reachable: true, Name: "mock"}, nil
}

// Pressed returns the buttons pressed so far, oldest first
func (m *MockClient) Pressed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.pressed...)
}

// IsOn reports whether On was called more recently than Off
func (m *MockClient) IsOn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.on
}
