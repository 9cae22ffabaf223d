// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/expohub/expohub/internal/store"
)

func newMigrateCmd(deps *Deps, load loadFunc) *cobra.Command {
	// withMigrator opens a migrator for the configured database and closes
	// it after fn.
	withMigrator := func(cmd *cobra.Command, fn func(m Migrator) error) error {
		cfg, _, err := load(cmd)
		if err != nil {
			return err
		}
		if err := cfg.RequireDatabase(); err != nil {
			return err
		}
		m, err := deps.NewMigrator(cfg.Database.URL)
		if err != nil {
			return oops.Code("MIGRATION_INIT_FAILED").Wrap(err)
		}
		defer func() {
			if closeErr := m.Close(); closeErr != nil {
				cmd.PrintErrf("warning: closing migrator: %v\n", closeErr)
			}
		}()
		return fn(m)
	}

	up := func(cmd *cobra.Command, _ []string) error {
		return withMigrator(cmd, func(m Migrator) error {
			if err := m.Up(); err != nil {
				return oops.Code("MIGRATION_FAILED").With("direction", "up").Wrap(err)
			}
			return printVersion(cmd, m)
		})
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long: `Apply, revert or inspect the embedded schema migrations.
Without a subcommand, all pending migrations are applied.`,
		RunE: up,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE:  up,
	})

	var steps int
	var all bool
	down := &cobra.Command{
		Use:   "down",
		Short: "Revert migrations (one step by default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return oops.Code("INVALID_STEPS").With("steps", steps).Errorf("steps must be at least 1")
			}
			return withMigrator(cmd, func(m Migrator) error {
				var err error
				if all {
					err = m.Down()
				} else {
					err = m.Steps(-steps)
				}
				if err != nil {
					return oops.Code("MIGRATION_FAILED").With("direction", "down").Wrap(err)
				}
				return printVersion(cmd, m)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to revert")
	down.Flags().BoolVar(&all, "all", false, "revert every migration")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m Migrator) error {
				return printStatus(cmd, m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Set the schema version without running migrations",
		Long: `Set the recorded schema version and clear the dirty flag. Use this
after fixing a migration that failed halfway.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return oops.Code("INVALID_VERSION").With("version", args[0]).Wrap(err)
			}
			return withMigrator(cmd, func(m Migrator) error {
				if err := m.Force(version); err != nil {
					return err
				}
				return printVersion(cmd, m)
			})
		},
	})

	return cmd
}

func printVersion(cmd *cobra.Command, m Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return oops.Code("MIGRATION_VERSION_FAILED").Wrap(err)
	}
	if dirty {
		cmd.Printf("schema version %d (dirty)\n", version)
		return nil
	}
	cmd.Printf("schema version %d\n", version)
	return nil
}

func printStatus(cmd *cobra.Command, m Migrator) error {
	applied, err := m.AppliedMigrations()
	if err != nil {
		return err
	}
	pending, err := m.PendingMigrations()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tNAME\tSTATE")
	for _, group := range []struct {
		state    string
		versions []uint
	}{{"applied", applied}, {"pending", pending}} {
		for _, v := range group.versions {
			name, err := store.MigrationName(v)
			if err != nil {
				name = "?"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", v, name, group.state)
		}
	}
	return w.Flush()
}
