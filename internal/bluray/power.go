package bluray

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// sleepContext waits for d or until ctx is done
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// powerOnAttempt wakes the player, proves it answers and pulls its command list
func (c *PlayerClient) powerOnAttempt(ctx context.Context) (CommandTable, error) {
	if err := c.deps.Waker.Wake(ctx, c.opts.MAC); err != nil {
		return nil, fmt.Errorf("failed to send wake-on-lan to %s: %w", c.opts.MAC, err)
	}

	// Any 200 proves reachability; the body is not inspected here.
	if _, err := c.fetchPage(ctx, StatusPath, true); err != nil {
		return nil, fmt.Errorf("status check failed: %w", err)
	}

	return c.resolveCommandTable(ctx)
}

// ensureOn repeats powerOnAttempt until it succeeds or the retry budget is spent.
// MaxRetries counts retries, so the player sees at most MaxRetries+1 attempts.
func (c *PlayerClient) ensureOn(ctx context.Context) (CommandTable, error) {
	attempts := c.opts.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.opts.Backoff); err != nil {
				return nil, &PowerOnError{Attempts: attempt - 1, Err: errors.Join(lastErr, err)}
			}
		}

		table, err := c.powerOnAttempt(ctx)
		if err == nil {
			c.logger.Info().
				Int("attempt", attempt).
				Int("commands", len(table)).
				Msg("Player is on")
			return table, nil
		}

		lastErr = err
		c.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("retries_left", attempts-attempt).
			Msg("Could not connect to player")
	}

	return nil, &PowerOnError{Attempts: attempts, Err: lastErr}
}
