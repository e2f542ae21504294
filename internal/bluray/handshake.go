package bluray

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// registrationPath builds the /register query for the given registration type
func (c *PlayerClient) registrationPath(registrationType, deviceID string) string {
	return fmt.Sprintf("%s?name=%s&registrationType=%s&deviceId=%s&wolSupport=true",
		RegisterPath,
		encodeComponent(c.opts.DeviceName),
		encodeComponent(registrationType),
		encodeComponent(deviceID),
	)
}

// encodeComponent percent-encodes s, spaces included, the way browsers encode a URI component
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// register sends one registration request and returns the player's status code
func (c *PlayerClient) register(ctx context.Context, registrationType string, withCredential bool) (int, error) {
	deviceID, err := c.identity()
	if err != nil {
		return 0, err
	}

	status, body, err := c.get(ctx, c.registrationPath(registrationType, deviceID), withCredential)
	if err != nil {
		return 0, err
	}

	c.logger.Debug().
		Str("phase", registrationType).
		Int("status", status).
		Msg("Registration response")

	if !isSuccess(status) && status != http.StatusForbidden && status != http.StatusUnauthorized {
		return status, fmt.Errorf("%w: %s registration: %w", ErrRegistration, registrationType,
			&HTTPStatusError{Code: status, Body: string(body)})
	}
	return status, nil
}

// ensureCredential runs the pairing handshake.
//
// Renewal is tried first with the held credential. If the player refuses it
// with 403, initial registration starts without a credential; every 401 from
// the player means a pairing code is on screen, so the operator is asked for
// it, the answer is stored, and initial registration is retried with it.
func (c *PlayerClient) ensureCredential(ctx context.Context) error {
	status, err := c.register(ctx, registrationRenewal, true)
	if err != nil {
		return err
	}
	switch {
	case isSuccess(status):
		c.logger.Info().Msg("Registration renewed")
		return nil
	case status != http.StatusForbidden:
		return fmt.Errorf("%w: renewal: %w", ErrRegistration, &HTTPStatusError{Code: status})
	}

	withCredential := false
	for prompts := 0; ; prompts++ {
		status, err = c.register(ctx, registrationInitial, withCredential)
		if err != nil {
			return err
		}
		if isSuccess(status) {
			c.logger.Info().Msg("Initial registration accepted")
			return nil
		}
		if status != http.StatusUnauthorized {
			return fmt.Errorf("%w: initial: %w", ErrRegistration, &HTTPStatusError{Code: status})
		}
		if prompts >= c.opts.MaxRegistrationAttempts {
			return fmt.Errorf("%w: player rejected %d pairing codes", ErrRegistration, prompts)
		}

		credential, err := c.promptForCredential(ctx)
		if err != nil {
			return err
		}
		if err := c.storeCredential(ctx, credential); err != nil {
			return err
		}
		withCredential = true
	}
}

func (c *PlayerClient) promptForCredential(ctx context.Context) (string, error) {
	if c.deps.Prompter == nil {
		return "", fmt.Errorf("%w: pairing code required but no prompter configured", ErrRegistration)
	}

	c.logger.Info().Msg("Registration required from user")
	code, err := c.deps.Prompter.Prompt(ctx, AuthCodePrompt)
	if err != nil {
		return "", fmt.Errorf("failed to read pairing code: %w", err)
	}
	return strings.TrimSpace(code), nil
}
