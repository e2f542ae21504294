package bluray

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport wraps socket, DNS and connect failures.
	ErrTransport = errors.New("transport error")

	// ErrParse marks a response body that is not well-formed markup.
	ErrParse = errors.New("parse error")

	// ErrRegistration is returned once the pairing handshake has run out of options.
	ErrRegistration = errors.New("registration failed")

	// ErrUntranslatableButton is returned for unknown buttons or an unresolved command table.
	ErrUntranslatableButton = errors.New("untranslatable button")

	// ErrNotReady is returned when an operation runs before the session reached the state it needs.
	ErrNotReady = errors.New("session not ready")

	// ErrPowerOnFailed is matched by every *PowerOnError.
	ErrPowerOnFailed = errors.New("power on failed")
)

// HTTPStatusError reports a non-success response from the player.
type HTTPStatusError struct {
	Code int
	Body string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("invalid response code: %d", e.Code)
	}
	return fmt.Sprintf("invalid response code: %d: %s", e.Code, e.Body)
}

// PowerOnError carries the last failure seen by the power-on sequencer.
type PowerOnError struct {
	Attempts int
	Err      error
}

func (e *PowerOnError) Error() string {
	return fmt.Sprintf("power on failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *PowerOnError) Unwrap() error {
	return e.Err
}

func (e *PowerOnError) Is(target error) bool {
	return target == ErrPowerOnFailed
}

// StatusCode returns the HTTP status carried anywhere in err's chain.
func StatusCode(err error) (int, bool) {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code, true
	}
	return 0, false
}
