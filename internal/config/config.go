// Copyright 2025 Arion Yau
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"
	"sonybd/internal/bluray"
)

// DefaultConfigFile is used when no --config flag is given
const DefaultConfigFile = "bluray.yml"

// Config represents the player configuration file
type Config struct {
	Player   PlayerConfig   `yaml:"player"`
	Power    PowerConfig    `yaml:"power"`
	Settings SettingsConfig `yaml:"settings"`
	API      APIConfig      `yaml:"api"`
}

// PlayerConfig describes how to reach one player
type PlayerConfig struct {
	ID             string `yaml:"id"`
	Address        string `yaml:"address"`
	MAC            string `yaml:"mac"`
	IRCCPort       int    `yaml:"ircc_port"`
	Port           int    `yaml:"port"`
	DeviceIDPrefix string `yaml:"device_id_prefix"`
	DeviceName     string `yaml:"device_name"`
	Interface      string `yaml:"interface"` // local NIC whose MAC forms the device id (optional)
	LocalMAC       string `yaml:"local_mac"` // overrides interface lookup (optional)
	Mock           bool   `yaml:"mock"`
}

// PowerConfig holds power-on retry constants
type PowerConfig struct {
	MaxRetries              int    `yaml:"max_retries"`
	Backoff                 string `yaml:"backoff"`
	RequestTimeout          string `yaml:"request_timeout"`
	MaxRegistrationAttempts int    `yaml:"max_registration_attempts"`
}

// SettingsConfig locates the credential database
type SettingsConfig struct {
	Path string `yaml:"path"`
}

// APIConfig configures the HTTP host
type APIConfig struct {
	Listen    string `yaml:"listen"`
	JWTSecret string `yaml:"jwt_secret"` // empty disables bearer auth
	JWTIssuer string `yaml:"jwt_issuer"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := NewDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, filepath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Player.ID == "" {
		return fmt.Errorf("player.id is required")
	}

	if !c.Player.Mock {
		if c.Player.Address == "" {
			return fmt.Errorf("player.address is required")
		}
		if c.Player.MAC == "" {
			return fmt.Errorf("player.mac is required")
		}
	}
	if c.Player.MAC != "" {
		if err := validateMAC(c.Player.MAC); err != nil {
			return fmt.Errorf("player.mac: %w", err)
		}
	}
	if c.Player.LocalMAC != "" {
		if err := validateMAC(c.Player.LocalMAC); err != nil {
			return fmt.Errorf("player.local_mac: %w", err)
		}
	}

	if err := validatePort(c.Player.IRCCPort); err != nil {
		return fmt.Errorf("player.ircc_port: %w", err)
	}
	if err := validatePort(c.Player.Port); err != nil {
		return fmt.Errorf("player.port: %w", err)
	}

	if c.Power.MaxRetries < 0 {
		return fmt.Errorf("power.max_retries must not be negative")
	}
	if c.Power.MaxRegistrationAttempts < 1 {
		return fmt.Errorf("power.max_registration_attempts must be at least 1")
	}
	if _, err := time.ParseDuration(c.Power.Backoff); err != nil {
		return fmt.Errorf("power.backoff: %w", err)
	}
	if _, err := time.ParseDuration(c.Power.RequestTimeout); err != nil {
		return fmt.Errorf("power.request_timeout: %w", err)
	}

	if c.Settings.Path == "" {
		return fmt.Errorf("settings.path is required")
	}

	return nil
}

func validateMAC(mac string) error {
	hw, err := net.ParseMAC(mac)
	if err != nil {
		return err
	}
	if len(hw) != 6 {
		return fmt.Errorf("want 6 octets, got %d", len(hw))
	}
	return nil
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port %d out of range", port)
	}
	return nil
}

// ClientOptions converts the configuration to player client options.
// Durations are assumed valid; call Validate first.
func (c *Config) ClientOptions() bluray.Options {
	backoff, _ := time.ParseDuration(c.Power.Backoff)
	timeout, _ := time.ParseDuration(c.Power.RequestTimeout)

	return bluray.Options{
		InstanceID:              c.Player.ID,
		Address:                 c.Player.Address,
		MAC:                     c.Player.MAC,
		IRCCPort:                c.Player.IRCCPort,
		Port:                    c.Player.Port,
		DeviceIDPrefix:          c.Player.DeviceIDPrefix,
		DeviceName:              c.Player.DeviceName,
		MaxRetries:              c.Power.MaxRetries,
		Backoff:                 backoff,
		RequestTimeout:          timeout,
		MaxRegistrationAttempts: c.Power.MaxRegistrationAttempts,
	}
}

// NewDefaultConfig creates a default configuration template
func NewDefaultConfig() *Config {
	return &Config{
		Player: PlayerConfig{
			ID:             "bluray",
			Address:        "192.168.0.166",
			MAC:            "78:61:7c:a9:cc:c9",
			IRCCPort:       bluray.DefaultIRCCPort,
			Port:           bluray.DefaultPort,
			DeviceIDPrefix: bluray.DefaultDeviceIDPrefix,
			DeviceName:     bluray.DefaultDeviceName,
		},
		Power: PowerConfig{
			MaxRetries:              bluray.DefaultMaxRetries,
			Backoff:                 bluray.DefaultBackoff.String(),
			RequestTimeout:          bluray.DefaultRequestTimeout.String(),
			MaxRegistrationAttempts: bluray.DefaultMaxRegistrationAttempts,
		},
		Settings: SettingsConfig{
			Path: "bluray.db",
		},
		API: APIConfig{
			Listen:    ":3000",
			JWTIssuer: "sonybd",
		},
	}
}
