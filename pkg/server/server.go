// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes the backend HTTP surface: the SSE prompt
// stream for the webapp, the agent report endpoints, the per-session
// user message queue and generated audio files.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/teradata-labs/reef/pkg/broker"
	"github.com/teradata-labs/reef/pkg/event"
)

// DefaultKeepalive is the SSE keepalive interval while agents are
// still processing.
const DefaultKeepalive = 60 * time.Second

// Launcher starts the agent processes for a freshly created session.
type Launcher interface {
	Launch(ctx context.Context, info broker.SessionInfo) error
}

// Config holds server configuration.
type Config struct {
	Addr      string
	Keepalive time.Duration
	AudioDir  string
}

// Server is the backend HTTP server.
type Server struct {
	config   Config
	broker   *broker.Broker
	store    *event.Store
	graph    broker.SessionSpec
	launcher Launcher
	logger   *zap.Logger

	httpServer *http.Server
}

// New creates the backend server. launcher may be nil, in which case
// sessions are created without starting agents (they are expected to
// connect on their own).
func New(config Config, b *broker.Broker, store *event.Store, graph broker.SessionSpec, launcher Launcher, logger *zap.Logger) *Server {
	if config.Keepalive == 0 {
		config.Keepalive = DefaultKeepalive
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		config:   config,
		broker:   b,
		store:    store,
		graph:    graph,
		launcher: launcher,
		logger:   logger,
	}
	s.httpServer = &http.Server{
		Addr:         config.Addr,
		Handler:      s.corsMiddleware(s.routes()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // No timeout for SSE
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/prompt", s.handlePrompt)
	mux.HandleFunc("/agent/message", s.handleAgentMessage)
	mux.HandleFunc("/agent/message/", s.handleAgentMessage)
	mux.HandleFunc("/callback", s.handleCallback)
	mux.HandleFunc("/callback/", s.handleCallback)
	mux.HandleFunc("/session/", s.handleUserMessage)

	if s.config.AudioDir != "" {
		mux.Handle("/audio/", http.StripPrefix("/audio/", http.FileServer(http.Dir(s.config.AudioDir))))
	}

	return mux
}

// Start runs the HTTP server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Backend server listening", zap.String("addr", s.config.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Stop(context.Background())
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	}
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// corsMiddleware allows cross-origin access from the webapp.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
