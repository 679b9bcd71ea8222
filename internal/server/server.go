// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Package server exposes the converter over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"

	markitdown "github.com/conductor-oss/markitdown-go"
	"github.com/conductor-oss/markitdown-go/internal/config"
)

// Converter is the part of the engine the server needs.
type Converter interface {
	ConvertReader(ctx context.Context, r io.Reader, opts markitdown.ConverterOptions) (*markitdown.DocumentConverterResult, error)
	ConvertURL(ctx context.Context, rawURL string, opts markitdown.ConverterOptions) (*markitdown.DocumentConverterResult, error)
}

// Server is the HTTP server for the conversion API.
type Server struct {
	converter Converter
	defaults  markitdown.ConverterOptions
	config    config.ServerConfig
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server. defaults seeds the options of every request.
func NewServer(conv Converter, defaults markitdown.ConverterOptions, cfg config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		converter: conv,
		defaults:  defaults,
		config:    cfg,
		logger:    logger,
	}
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if s.config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.config.RequestTimeout))
	}

	r.Post("/v1/convert", s.handleConvert)
	r.Post("/v1/convert/url", s.handleConvertURL)
	r.Get("/health", s.handleHealth)

	return cors.New(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", headerFileExtension},
	}).Handler(r)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
	}
	s.logger.Info("starting server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
