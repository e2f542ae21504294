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
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"sonybd/internal/bluray"
	"sonybd/internal/device"
	"sonybd/internal/logger"
)

const (
	requestIDHeader = "X-Request-ID"
	nonceHeader     = "X-Nonce"
)

// Player is the device surface the host mounts as route handlers
type Player interface {
	device.Device
	On(ctx context.Context) error
	Off(ctx context.Context) error
	PressButton(ctx context.Context, button string) error
	Status(ctx context.Context) (*bluray.Status, error)
}

// Server exposes one player over a REST API
type Server struct {
	player     Player
	logger     zerolog.Logger
	server     *http.Server
	jwtService *JWTService
	nonces     *NonceCache
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithJWT requires bearer tokens signed by service on every device route
func WithJWT(service *JWTService) ServerOption {
	return func(s *Server) {
		s.jwtService = service
	}
}

// WithNonceCache replaces the default action nonce cache
func WithNonceCache(cache *NonceCache) ServerOption {
	return func(s *Server) {
		s.nonces = cache
	}
}

// NewServer creates a new API server for player
func NewServer(player Player, options ...ServerOption) *Server {
	s := &Server{
		player: player,
		logger: logger.Component("host"),
		nonces: NewNonceCache(50, time.Hour),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.Use(s.requestIDMiddleware)
	router.Use(s.loggingMiddleware)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	router.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)
	apiRouter.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)

	apiRouter.HandleFunc("/health", s.handleHealth).Methods("GET")

	apiRouter.Handle("/device", s.protect(s.handleDeviceInfo)).Methods("GET")
	apiRouter.Handle("/on", s.protect(s.handleOn)).Methods("POST")
	apiRouter.Handle("/off", s.protect(s.handleOff)).Methods("POST")
	apiRouter.Handle("/status", s.protect(s.handleStatus)).Methods("GET")
	apiRouter.Handle("/buttons", s.protect(s.handleButtons)).Methods("GET")
	apiRouter.Handle("/buttons/{button}", s.protect(s.handleButtonPress)).Methods("POST")
	apiRouter.Handle("/actions", s.protect(s.handleAction)).Methods("POST")

	return router
}

// Start starts the HTTP API server and blocks until it stops
func (s *Server) Start(address string) error {
	s.server = &http.Server{
		Addr:         address,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // power-on retries run inside the request
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info().
		Str("address", address).
		Str("device_id", s.player.GetDeviceInfo().ID).
		Bool("auth", s.jwtService != nil).
		Msg("Starting API server")

	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the API server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Middleware
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
			r.Header.Set(requestIDHeader, requestID)
		}
		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", r.Header.Get(requestIDHeader)).
			Dur("duration", time.Since(start)).
			Msg("API request")
	})
}

// protect requires a bearer token when JWT auth is configured
func (s *Server) protect(handler http.HandlerFunc) http.Handler {
	if s.jwtService == nil {
		return handler
	}
	return s.authMiddleware(handler)
}

// Response helpers
func (s *Server) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) sendError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// statusFor maps session errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, bluray.ErrNotReady):
		return http.StatusConflict
	case errors.Is(err, bluray.ErrUntranslatableButton):
		return http.StatusNotFound
	case errors.Is(err, bluray.ErrPowerOnFailed):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) sendDeviceError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error().
		Err(err).
		Str("path", r.URL.Path).
		Str("request_id", r.Header.Get(requestIDHeader)).
		Msg("Device operation failed")
	s.sendError(w, statusFor(err), err.Error())
}

func (s *Server) sendOK(w http.ResponseWriter) {
	s.sendJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Handlers
func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.sendError(w, http.StatusMethodNotAllowed, r.Method+" not allowed on "+r.URL.Path)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleDeviceInfo(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, s.player.GetDeviceInfo())
}

func (s *Server) handleOn(w http.ResponseWriter, r *http.Request) {
	if err := s.player.On(r.Context()); err != nil {
		s.sendDeviceError(w, r, err)
		return
	}
	s.sendOK(w)
}

func (s *Server) handleOff(w http.ResponseWriter, r *http.Request) {
	if err := s.player.Off(r.Context()); err != nil {
		s.sendDeviceError(w, r, err)
		return
	}
	s.sendOK(w)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.player.Status(r.Context())
	if err != nil {
		s.sendDeviceError(w, r, err)
		return
	}
	s.sendJSON(w, http.StatusOK, status)
}

func (s *Server) handleButtons(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, s.player.SupportedButtons())
}

func (s *Server) handleButtonPress(w http.ResponseWriter, r *http.Request) {
	button := mux.Vars(r)["button"]
	if err := s.player.PressButton(r.Context(), button); err != nil {
		s.sendDeviceError(w, r, err)
		return
	}
	s.sendOK(w)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	nonce := r.Header.Get(nonceHeader)
	if nonce != "" && !ValidateNonce(nonce) {
		s.sendError(w, http.StatusBadRequest, "invalid nonce format")
		return
	}

	cached, owner, err := s.nonces.Begin(r.Context(), nonce)
	if err != nil {
		s.sendError(w, http.StatusRequestTimeout, "request cancelled while waiting for duplicate nonce")
		return
	}
	if !owner {
		s.logger.Info().
			Str("nonce", nonce).
			Msg("Returning cached response for duplicate nonce")
		s.sendJSON(w, http.StatusOK, cached)
		return
	}

	var response *device.ActionResponse
	defer func() { s.nonces.Finish(nonce, response) }()

	body, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		s.sendError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	response, err = s.player.Process(r.Context(), body)
	if err != nil {
		s.sendDeviceError(w, r, err)
		return
	}

	s.sendJSON(w, http.StatusOK, response)
}
