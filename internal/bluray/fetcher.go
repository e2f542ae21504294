package bluray

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/antchfx/xmlquery"
)

// DeviceID formats the X-CERS-DEVICE-ID value for a local hardware address
func DeviceID(prefix, mac string) string {
	return fmt.Sprintf("%s:%s", prefix, dashedMAC(mac))
}

// setIdentityHeaders adds the headers every request to the player carries.
// Header names are set verbatim; the player is picky about their case.
func setIdentityHeaders(req *http.Request, deviceID string) {
	req.Close = true
	req.Header[headerDeviceID] = []string{deviceID}
	req.Header[headerDeviceInfo] = []string{deviceInfo}
	req.Header.Set("User-Agent", userAgent)
}

func (c *PlayerClient) statusURL(path string) string {
	return fmt.Sprintf("http://%s:%d%s", c.opts.Address, c.opts.Port, path)
}

// get performs one GET against the status API and returns the raw reply
func (c *PlayerClient) get(ctx context.Context, path string, withCredential bool) (int, []byte, error) {
	deviceID, err := c.identity()
	if err != nil {
		return 0, nil, err
	}

	url := c.statusURL(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	setIdentityHeaders(req, deviceID)

	credential := ""
	if withCredential {
		credential = c.currentCredential()
	}
	if credential != "" {
		req.SetBasicAuth("", credential)
	}

	c.logger.Debug().
		Str("url", url).
		Bool("has_credential", credential != "").
		Msg("Sending status API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: GET %s: %w", ErrTransport, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: reading %s: %w", ErrTransport, path, err)
	}

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Msg("Status API request completed")

	return resp.StatusCode, body, nil
}

// fetchPage GETs path and returns the body of a 200 reply.
// A 403 runs the pairing handshake and retries exactly once.
func (c *PlayerClient) fetchPage(ctx context.Context, path string, retryOnAuthFailure bool) ([]byte, error) {
	status, body, err := c.get(ctx, path, true)
	if err != nil {
		return nil, err
	}

	if status == http.StatusForbidden && retryOnAuthFailure {
		c.logger.Info().
			Str("path", path).
			Msg("Player rejected request, starting registration")

		if err := c.ensureCredential(ctx); err != nil {
			return nil, err
		}

		status, body, err = c.get(ctx, path, true)
		if err != nil {
			return nil, err
		}
	}

	if status != http.StatusOK {
		return nil, &HTTPStatusError{Code: status, Body: string(body)}
	}
	return body, nil
}

// fetchXML is fetchPage followed by a markup parse
func (c *PlayerClient) fetchXML(ctx context.Context, path string, retryOnAuthFailure bool) (*xmlquery.Node, error) {
	body, err := c.fetchPage(ctx, path, retryOnAuthFailure)
	if err != nil {
		return nil, err
	}
	return parseXML(body)
}

func parseXML(body []byte) (*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return doc, nil
}
