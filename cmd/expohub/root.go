// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/expohub/expohub/internal/config"
	"github.com/expohub/expohub/internal/logging"
	"github.com/expohub/expohub/internal/store"
)

const serviceName = "expohub"

// NewRootCmd creates the root command for the expohub CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(deps *Deps) *cobra.Command {
	deps = deps.withDefaults()

	var configFile string
	cmd := &cobra.Command{
		Use:   "expohub",
		Short: "Expohub - visitor and exhibitor accounts for events",
		Long: `Expohub serves registration, login and profile endpoints for event
visitors and exhibitors, backed by PostgreSQL.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default: $XDG_CONFIG_HOME/expohub/config.yaml if present)")
	config.RegisterFlags(cmd.PersistentFlags())

	load := func(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
		file := configFile
		if file == "" {
			file = config.DefaultFile()
		}
		cfg, err := config.Load(config.Options{File: file, Flags: cmd.Flags()})
		if err != nil {
			return nil, nil, err
		}
		return cfg, newLogger(cfg), nil
	}

	cmd.AddCommand(newServeCmd(deps, load))
	cmd.AddCommand(newMigrateCmd(deps, load))
	cmd.AddCommand(newSessionsCmd(deps, load))

	return cmd
}

// loadFunc reads the configuration for a command.
type loadFunc func(cmd *cobra.Command) (*config.Config, *slog.Logger, error)

func newLogger(cfg *config.Config) *slog.Logger {
	level, _ := logging.ParseLevel(cfg.Log.Level)
	return logging.SetDefault(logging.Options{
		Service: serviceName,
		Version: version,
		Format:  cfg.Log.Format,
		Level:   level,
	})
}

func connect(ctx context.Context, deps *Deps, cfg *config.Config, logger *slog.Logger) (Pool, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	return deps.Connect(ctx, cfg.Database.URL, store.ConnectOptions{
		Timeout: cfg.Database.ConnectTimeout,
		Logger:  logger,
	})
}
