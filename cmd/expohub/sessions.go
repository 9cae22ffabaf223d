// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package main

import (
	"github.com/spf13/cobra"
)

func newSessionsCmd(deps *Deps, load loadFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage login sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete expired sessions",
		Long: `Delete every session whose expiry has passed. Expired sessions are
already rejected at authentication; pruning only reclaims storage.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := load(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := connect(ctx, deps, cfg, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc, err := buildServices(pool, cfg, logger)
			if err != nil {
				return err
			}

			n, err := svc.registry.PruneSessions(ctx)
			if err != nil {
				return err
			}
			logger.Info("expired sessions pruned", "count", n)
			cmd.Printf("pruned %d expired sessions\n", n)
			return nil
		},
	})

	return cmd
}
