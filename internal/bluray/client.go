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
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/antchfx/xmlquery"
	"github.com/rs/zerolog"
	"sonybd/internal"
	"sonybd/internal/logger"
	"sonybd/internal/netif"
	"sonybd/internal/wol"
)

// PlayerClient is a session with one Sony Blu-ray player.
//
// On holds seqMu exclusively for its whole run. ButtonPress takes it shared
// while reading the session, so a press issued during On waits for the new
// command table while presses still run concurrently with each other.
// GetStatus never registers, so it takes no part in this ordering.
// The command table and credential are only replaced under mu.
type PlayerClient struct {
	opts       Options
	deps       Dependencies
	httpClient *http.Client
	sleep      Sleeper
	logger     zerolog.Logger

	seqMu sync.RWMutex

	mu         sync.RWMutex
	state      SessionState
	deviceID   string
	credential string
	table      CommandTable
}

// NewClient returns the simulated client when mode asks for it, the real one otherwise
func NewClient(opts Options, deps Dependencies, mode *internal.FnModeOptions) Client {
	if mode != nil && mode.Mock {
		return NewMockClient(opts)
	}
	return NewPlayerClient(opts, deps, mode)
}

// NewPlayerClient creates a client for the player described by opts
func NewPlayerClient(opts Options, deps Dependencies, mode *internal.FnModeOptions) *PlayerClient {
	opts = withDefaults(opts)

	if deps.HTTPClient == nil {
		deps.HTTPClient = &http.Client{
			Timeout: opts.RequestTimeout,
		}
	}
	if deps.Waker == nil {
		deps.Waker = wol.NewSender()
	}
	if deps.MACResolver == nil {
		deps.MACResolver = netif.NewResolver("")
	}
	if deps.Sleep == nil {
		deps.Sleep = sleepContext
	}

	if mode != nil && mode.Debug {
		logger.SetLevel(logger.LOG_DEBUG)
	}

	return &PlayerClient{
		opts:       opts,
		deps:       deps,
		httpClient: deps.HTTPClient,
		sleep:      deps.Sleep,
		logger: logger.Component("bluray").With().
			Str("address", opts.Address).
			Logger(),
		state: StateUninitialized,
		table: CommandTable{},
	}
}

func withDefaults(opts Options) Options {
	if opts.IRCCPort == 0 {
		opts.IRCCPort = DefaultIRCCPort
	}
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	if opts.DeviceIDPrefix == "" {
		opts.DeviceIDPrefix = DefaultDeviceIDPrefix
	}
	if opts.DeviceName == "" {
		opts.DeviceName = DefaultDeviceName
	}
	if opts.InstanceID == "" {
		opts.InstanceID = opts.Address
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.MaxRegistrationAttempts <= 0 {
		opts.MaxRegistrationAttempts = DefaultMaxRegistrationAttempts
	}
	return opts
}

func dashedMAC(mac string) string {
	return strings.ReplaceAll(mac, ":", "-")
}

// Start captures the device identity from the local hardware address and
// loads any stored credential. It does not contact the player.
func (c *PlayerClient) Start(ctx context.Context) error {
	mac, err := c.deps.MACResolver.HardwareAddr()
	if err != nil {
		return fmt.Errorf("failed to resolve local hardware address: %w", err)
	}
	if mac == "" {
		return fmt.Errorf("failed to resolve local hardware address: empty address")
	}

	credential := ""
	if c.deps.Credentials != nil {
		credential, err = c.deps.Credentials.GetCredential(ctx, c.opts.InstanceID)
		if err != nil {
			return fmt.Errorf("failed to load credential: %w", err)
		}
	}

	deviceID := DeviceID(c.opts.DeviceIDPrefix, mac)

	c.mu.Lock()
	c.deviceID = deviceID
	if credential != "" {
		c.credential = credential
	}
	c.state = StateIdentified
	c.table = CommandTable{}
	c.mu.Unlock()

	c.logger.Info().
		Str("device_id", deviceID).
		Bool("has_credential", credential != "").
		Msg("Player session started")

	return nil
}

// On wakes the player and refreshes the command table
func (c *PlayerClient) On(ctx context.Context) error {
	c.seqMu.Lock()
	defer c.seqMu.Unlock()

	if c.State() == StateUninitialized {
		return fmt.Errorf("%w: start the session before turning the player on", ErrNotReady)
	}

	table, err := c.ensureOn(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateIdentified
		return err
	}
	c.table = table
	c.state = StateReady
	return nil
}

// Off is a deliberate no-op; the player's status API has no standby command.
func (c *PlayerClient) Off(ctx context.Context) error {
	c.logger.Debug().Msg("Off requested, nothing to send")
	return nil
}

// ButtonPress translates button and sends the IRCC code to the player
func (c *PlayerClient) ButtonPress(ctx context.Context, button string) error {
	c.seqMu.RLock()
	c.mu.RLock()
	state, table, deviceID := c.state, c.table, c.deviceID
	c.mu.RUnlock()
	c.seqMu.RUnlock()

	if state != StateReady {
		return fmt.Errorf("%w: cannot press %s while session is %s", ErrNotReady, button, state)
	}

	code, err := table.Translate(button)
	if err != nil {
		c.logger.Debug().
			Str("button", button).
			Int("commands", len(table)).
			Msg("Button not in command list")
		return err
	}

	return c.RemoteRequest(ctx, deviceID, button, code)
}

// GetStatus fetches /getStatus without starting a registration.
// Bodies that do not parse still count as reachable.
func (c *PlayerClient) GetStatus(ctx context.Context) (*Status, error) {
	if c.State() == StateUninitialized {
		return nil, fmt.Errorf("%w: start the session before querying status", ErrNotReady)
	}

	body, err := c.fetchPage(ctx, StatusPath, false)
	if err != nil {
		return nil, err
	}

	status := &Status{
		Reachable: true,
		Raw:       string(body),
	}

	doc, err := parseXML(body)
	if err != nil {
		c.logger.Debug().Err(err).Msg("Status body is not markup")
		return status, nil
	}

	if node := xmlquery.FindOne(doc, "//status"); node != nil {
		status.Name = node.SelectAttr("name")
	}
	for _, item := range xmlquery.Find(doc, "//statusItem") {
		field := item.SelectAttr("field")
		if field == "" {
			continue
		}
		if status.Fields == nil {
			status.Fields = make(map[string]string)
		}
		status.Fields[field] = item.SelectAttr("value")
	}

	return status, nil
}

// State returns the current session state
func (c *PlayerClient) State() SessionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// CommandTable returns a copy of the resolved command table
func (c *PlayerClient) CommandTable() CommandTable {
	c.mu.RLock()
	defer c.mu.RUnlock()

	table := make(CommandTable, len(c.table))
	for name, code := range c.table {
		table[name] = code
	}
	return table
}

// identity returns the device id, failing before Start has captured it
func (c *PlayerClient) identity() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state == StateUninitialized || c.deviceID == "" {
		return "", fmt.Errorf("%w: device identity not captured", ErrNotReady)
	}
	return c.deviceID, nil
}

func (c *PlayerClient) currentCredential() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.credential
}

// storeCredential holds a freshly paired credential and persists it
func (c *PlayerClient) storeCredential(ctx context.Context, credential string) error {
	c.mu.Lock()
	c.credential = credential
	c.mu.Unlock()

	if c.deps.Credentials == nil {
		return nil
	}
	if err := c.deps.Credentials.SetCredential(ctx, c.opts.InstanceID, credential); err != nil {
		return fmt.Errorf("failed to persist credential: %w", err)
	}
	return nil
}

// irccEnvelope reproduces the SOAP body the player expects byte for byte
func irccEnvelope(code string) string {
	return fmt.Sprintf(`<?xml version="1.0"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">
  <s:Body>
    <u:X_SendIRCC xmlns:u="urn:schemas-sony-com:service:IRCC:1">
      <IRCCCode>%s</IRCCCode>
    </u:X_SendIRCC>
  </s:Body>
</s:Envelope>`, code)
}

// RemoteRequest sends an IRCC SOAP request for a resolved command code
func (c *PlayerClient) RemoteRequest(ctx context.Context, deviceID, button, code string) error {
	soapBody := irccEnvelope(code)
	url := fmt.Sprintf("http://%s:%d%s", c.opts.Address, c.opts.IRCCPort, IRCCPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(soapBody))
	if err != nil {
		return fmt.Errorf("failed to create IRCC request: %w", err)
	}

	setIdentityHeaders(req, deviceID)
	req.Header["content-type"] = []string{irccContentType}
	req.Header["soapaction"] = []string{irccSOAPAction}

	c.logger.Debug().
		Str("url", url).
		Str("button", button).
		Str("code", code).
		Msg("Sending IRCC remote request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to send IRCC request: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("button", button).
			Msg("IRCC request failed")
		return fmt.Errorf("IRCC request failed: %w", &HTTPStatusError{Code: resp.StatusCode, Body: string(body)})
	}

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Str("button", button).
		Msg("IRCC request successful")

	return nil
}
