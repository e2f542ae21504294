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

package bluray

import (
	"context"
	"net/http"
	"time"
)

// CommandTable maps upper-cased command names to IRCC codes
type CommandTable map[string]string

// SessionState is the lifecycle position of a PlayerClient
type SessionState int

const (
	StateUninitialized SessionState = iota
	StateIdentified
	StateReady
)

func (s SessionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateIdentified:
		return "identified"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Status is the best-effort view of the player's getStatus response
type Status struct {
	Reachable bool              `json:"reachable"`
	Name      string            `json:"name,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Raw       string            `json:"raw,omitempty"`
}

// Options holds the immutable connection configuration of one player
type Options struct {
	InstanceID     string
	Address        string
	MAC            string
	IRCCPort       int
	Port           int
	DeviceIDPrefix string
	DeviceName     string

	MaxRetries              int
	Backoff                 time.Duration
	RequestTimeout          time.Duration
	MaxRegistrationAttempts int
}

// Waker sends a wake-on-LAN broadcast to a hardware address
type Waker interface {
	Wake(ctx context.Context, mac string) error
}

// MACResolver returns the local colon-delimited hardware address
type MACResolver interface {
	HardwareAddr() (string, error)
}

// CredentialStore persists the pairing credential per device instance.
// GetCredential returns "" when nothing is stored.
type CredentialStore interface {
	GetCredential(ctx context.Context, instance string) (string, error)
	SetCredential(ctx context.Context, instance, credential string) error
}

// Prompter asks a human for a string
type Prompter interface {
	Prompt(ctx context.Context, message string) (string, error)
}

// Sleeper pauses between power-on attempts
type Sleeper func(ctx context.Context, d time.Duration) error

// Dependencies are the collaborators a PlayerClient calls out to
type Dependencies struct {
	Waker       Waker
	MACResolver MACResolver
	Credentials CredentialStore
	Prompter    Prompter
	HTTPClient  *http.Client
	Sleep       Sleeper
}

// Client is the session surface shared by the real and simulated players
type Client interface {
	Start(ctx context.Context) error
	On(ctx context.Context) error
	Off(ctx context.Context) error
	ButtonPress(ctx context.Context, button string) error
	GetStatus(ctx context.Context) (*Status, error)
}
