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

package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sonybd/internal/bluray"
	"sonybd/internal/device"
)

// stubPlayer records calls and fails with the configured errors
type stubPlayer struct {
	*bluray.BlurayRemote

	mu         sync.Mutex
	onErr      error
	pressErr   error
	statusErr  error
	pressed    []string
	processed  int
	gate       chan struct{}
	processErr error
}

func newStubPlayer() *stubPlayer {
	return &stubPlayer{
		BlurayRemote: bluray.NewBlurayRemoteWithClient("bluray", "192.168.0.166", bluray.NewMockClient(bluray.Options{})),
	}
}

func (p *stubPlayer) On(ctx context.Context) error {
	return p.onErr
}

func (p *stubPlayer) PressButton(ctx context.Context, button string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pressErr != nil {
		return p.pressErr
	}
	p.pressed = append(p.pressed, button)
	return nil
}

func (p *stubPlayer) Status(ctx context.Context) (*bluray.Status, error) {
	if p.statusErr != nil {
		return nil, p.statusErr
	}
	return &bluray.Status{Reachable: true, Name: "viewing"}, nil
}

func (p *stubPlayer) Process(ctx context.Context, actionJSON []byte) (*device.ActionResponse, error) {
	p.mu.Lock()
	p.processed++
	gate, processErr := p.gate, p.processErr
	p.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if processErr != nil {
		return nil, processErr
	}
	return p.BlurayRemote.Process(ctx, actionJSON)
}

func (p *stubPlayer) processedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	handler := NewServer(newStubPlayer()).Handler()

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	handler := NewServer(newStubPlayer()).Handler()

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/health", "", map[string]string{requestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestDeviceRoutes(t *testing.T) {
	player := newStubPlayer()
	handler := NewServer(player).Handler()

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/device", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sony_bluray", decode(t, rec)["type"])

	rec = doRequest(t, handler, http.MethodPost, "/api/v1/on", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])

	rec = doRequest(t, handler, http.MethodPost, "/api/v1/off", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/v1/status", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "viewing", decode(t, rec)["name"])

	rec = doRequest(t, handler, http.MethodGet, "/api/v1/buttons", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var buttons []device.SupportedButton
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &buttons))
	assert.Len(t, buttons, 4)

	rec = doRequest(t, handler, http.MethodPost, "/api/v1/buttons/SELECT", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"SELECT"}, player.pressed)

	rec = doRequest(t, handler, http.MethodGet, "/api/v1/on", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, true, decode(t, rec)["error"])

	rec = doRequest(t, handler, http.MethodDelete, "/api/v1/buttons/SELECT", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, []string{"SELECT"}, player.pressed)

	rec = doRequest(t, handler, http.MethodPost, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/v1/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeviceErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not ready", fmt.Errorf("%w: start first", bluray.ErrNotReady), http.StatusConflict},
		{"untranslatable", fmt.Errorf("%w: Eject", bluray.ErrUntranslatableButton), http.StatusNotFound},
		{"power on", &bluray.PowerOnError{Attempts: 4, Err: errors.New("timeout")}, http.StatusGatewayTimeout},
		{"transport", fmt.Errorf("%w: refused", bluray.ErrTransport), http.StatusBadGateway},
		{"player status", &bluray.HTTPStatusError{Code: 500}, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := newStubPlayer()
			player.pressErr = tt.err
			handler := NewServer(player).Handler()

			rec := doRequest(t, handler, http.MethodPost, "/api/v1/buttons/SELECT", "", nil)
			assert.Equal(t, tt.want, rec.Code)

			body := decode(t, rec)
			assert.Equal(t, true, body["error"])
			assert.Equal(t, tt.err.Error(), body["message"])
		})
	}
}

func TestOnAndStatusErrors(t *testing.T) {
	player := newStubPlayer()
	player.onErr = &bluray.PowerOnError{Attempts: 4, Err: errors.New("no answer")}
	player.statusErr = fmt.Errorf("%w: refused", bluray.ErrTransport)
	handler := NewServer(player).Handler()

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/on", "", nil)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/v1/status", "", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestActionNonceDeduplication(t *testing.T) {
	player := newStubPlayer()
	handler := NewServer(player).Handler()
	headers := map[string]string{nonceHeader: "nonce-0001"}
	body := `{"type":"button","action":"SKIP"}`

	first := doRequest(t, handler, http.MethodPost, "/api/v1/actions", body, headers)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, true, decode(t, first)["success"])

	second := doRequest(t, handler, http.MethodPost, "/api/v1/actions", body, headers)
	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, player.processed)

	doRequest(t, handler, http.MethodPost, "/api/v1/actions", body, nil)
	doRequest(t, handler, http.MethodPost, "/api/v1/actions", body, nil)
	assert.Equal(t, 3, player.processed)
}

func TestActionConcurrentDuplicateNonceRunsOnce(t *testing.T) {
	player := newStubPlayer()
	player.gate = make(chan struct{})
	handler := NewServer(player).Handler()
	headers := map[string]string{nonceHeader: "nonce-0002"}
	body := `{"type":"button","action":"SELECT"}`

	var wg sync.WaitGroup
	recs := make([]*httptest.ResponseRecorder, 2)
	for i := range recs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			recs[i] = doRequest(t, handler, http.MethodPost, "/api/v1/actions", body, headers)
		}(i)
	}

	assert.Eventually(t, func() bool { return player.processedCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(player.gate)
	wg.Wait()

	assert.Equal(t, 1, player.processedCount())
	for _, rec := range recs {
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.JSONEq(t, recs[0].Body.String(), recs[1].Body.String())
	assert.Equal(t, true, decode(t, recs[0])["success"])
}

func TestActionFailedRequestReleasesNonce(t *testing.T) {
	player := newStubPlayer()
	handler := NewServer(player).Handler()
	headers := map[string]string{nonceHeader: "nonce-0003"}

	player.processErr = fmt.Errorf("%w: refused", bluray.ErrTransport)

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/actions", `{"type":"status"}`, headers)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	player.processErr = nil
	rec = doRequest(t, handler, http.MethodPost, "/api/v1/actions", `{"type":"status"}`, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["success"])
	assert.Equal(t, 2, player.processed)
}

func TestActionInvalidNonce(t *testing.T) {
	player := newStubPlayer()
	handler := NewServer(player).Handler()

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/actions", `{"type":"status"}`, map[string]string{nonceHeader: "bad nonce!"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, player.processed)
}

func TestActionFailureIsReported(t *testing.T) {
	handler := NewServer(newStubPlayer()).Handler()

	rec := doRequest(t, handler, http.MethodPost, "/api/v1/actions", `{"type":"volume","action":"up"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "unsupported action type")
}

func TestJWTProtectsDeviceRoutes(t *testing.T) {
	service := NewJWTService("secret", "sonybd", time.Hour)
	handler := NewServer(newStubPlayer(), WithJWT(service)).Handler()

	rec := doRequest(t, handler, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/v1/device", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/v1/on", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/v1/device", "", map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := service.GenerateToken("automation")
	require.NoError(t, err)
	rec = doRequest(t, handler, http.MethodGet, "/api/v1/device", "", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTService(t *testing.T) {
	service := NewJWTService("secret", "sonybd", 0)
	assert.Equal(t, 24*time.Hour, service.tokenExpiry)

	token, err := service.GenerateToken("automation")
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "automation", claims.Subject)
	assert.Equal(t, "sonybd", claims.Issuer)

	_, err = NewJWTService("other", "sonybd", time.Hour).ValidateToken(token)
	assert.Error(t, err)

	_, err = NewJWTService("secret", "someone-else", time.Hour).ValidateToken(token)
	assert.Error(t, err)

	expired, err := (&JWTService{secretKey: []byte("secret"), issuer: "sonybd", tokenExpiry: -time.Hour}).GenerateToken("automation")
	require.NoError(t, err)
	_, err = service.ValidateToken(expired)
	assert.Error(t, err)
}
