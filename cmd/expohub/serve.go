// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/expohub/expohub/internal/config"
	"github.com/expohub/expohub/internal/httpapi"
	"github.com/expohub/expohub/internal/observability"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(deps *Deps, load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the public HTTP API and, unless metrics-addr is empty, the
observability listener serving /metrics and the health probes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, deps, cfg, logger)
		},
	}
}

// runServe blocks until ctx is cancelled or a server fails.
func runServe(ctx context.Context, cmd *cobra.Command, deps *Deps, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting expohub",
		"http_addr", cfg.HTTP.Addr,
		"metrics_addr", cfg.Metrics.Addr,
		"log_format", cfg.Log.Format,
	)

	pool, err := connect(ctx, deps, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database")

	svc, err := buildServices(pool, cfg, logger)
	if err != nil {
		return err
	}

	obs := observability.NewServer(cfg.Metrics.Addr, pool.Ping, logger)
	api, err := httpapi.New(httpapi.Config{
		Accounts:    svc.registry,
		Documents:   svc.documents,
		Metrics:     obs.Metrics(),
		Logger:      logger,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})
	if err != nil {
		return err
	}
	httpServer := httpapi.NewServer(cfg.HTTP.Addr, api.Handler(), logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Metrics.Addr != "" {
		obsErrCh, err := obs.Start()
		if err != nil {
			return oops.Code("SERVE_FAILED").With("server", "observability").Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability", logger)
	}

	httpErrCh, err := httpServer.Start()
	if err != nil {
		stopServers(logger, obs)
		return oops.Code("SERVE_FAILED").With("server", "http").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, httpErrCh, "http", logger)

	cmd.Printf("expohub listening on %s\n", httpServer.Addr())

	<-ctx.Done()
	logger.Info("shutting down")
	stopServers(logger, httpServer, obs)
	logger.Info("shutdown complete")
	return nil
}

type stopper interface {
	Stop(ctx context.Context) error
}

func stopServers(logger *slog.Logger, servers ...stopper) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, s := range servers {
		if err := s.Stop(ctx); err != nil {
			logger.Warn("error stopping server", "error", err)
		}
	}
}

// monitorServerErrors cancels ctx when a server reports an error. It
// returns when the channel closes or ctx is done.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string, logger *slog.Logger) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			logger.Error("server error, triggering shutdown", "server", serverName, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}
