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

package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	markitdown "github.com/conductor-oss/markitdown-go"
	"github.com/conductor-oss/markitdown-go/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the conversion API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := root.load(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			m := markitdown.New(append(cfg.EngineOptions(), markitdown.WithLogger(logger))...)
			srv := server.NewServer(m, cfg.ConverterOptions(), cfg.Server, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				logger.Error("shutdown failed", zap.Error(err))
				return err
			}
			return <-errCh
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (default from config: localhost)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from config: 8080)")
	return cmd
}
