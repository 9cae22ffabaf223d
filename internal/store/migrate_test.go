// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expohub/expohub/pkg/errutil"
)

// fakeMigrate implements migrateIface.
type fakeMigrate struct {
	upErr          error
	downErr        error
	stepsErr       error
	version        uint
	versionErr     error
	dirty          bool
	forceErr       error
	closeSourceErr error
	closeDBErr     error

	steps  []int
	forced []int
}

func (f *fakeMigrate) Up() error   { return f.upErr }
func (f *fakeMigrate) Down() error { return f.downErr }
func (f *fakeMigrate) Steps(n int) error {
	f.steps = append(f.steps, n)
	return f.stepsErr
}
func (f *fakeMigrate) Version() (uint, bool, error) { return f.version, f.dirty, f.versionErr }
func (f *fakeMigrate) Force(v int) error {
	f.forced = append(f.forced, v)
	return f.forceErr
}
func (f *fakeMigrate) Close() (error, error) { return f.closeSourceErr, f.closeDBErr }

func TestMigrateURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@db:5432/expohub":   "pgx5://u:p@db:5432/expohub",
		"postgresql://u:p@db:5432/expohub": "pgx5://u:p@db:5432/expohub",
		"pgx5://u:p@db:5432/expohub":       "pgx5://u:p@db:5432/expohub",
	}
	for in, want := range tests {
		assert.Equal(t, want, migrateURL(in), in)
	}
}

func TestNewMigrator_InvalidURL(t *testing.T) {
	for _, url := range []string{"invalid://url", "badscheme://localhost:5432/expohub"} {
		_, err := NewMigrator(url)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
	}
}

func TestNewMigrator_PostgresqlSchemeIsRecognized(t *testing.T) {
	_, err := NewMigrator("postgresql://127.0.0.1:1/expohub?connect_timeout=1")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
	assert.NotContains(t, err.Error(), "unknown driver")
}

func TestMigrator_Operations(t *testing.T) {
	boom := errors.New("database locked")

	tests := []struct {
		name     string
		fake     *fakeMigrate
		run      func(*Migrator) error
		wantCode string
	}{
		{"up", &fakeMigrate{}, (*Migrator).Up, ""},
		{"up no change", &fakeMigrate{upErr: migrate.ErrNoChange}, (*Migrator).Up, ""},
		{"up failure", &fakeMigrate{upErr: boom}, (*Migrator).Up, "MIGRATION_UP_FAILED"},
		{"down", &fakeMigrate{}, (*Migrator).Down, ""},
		{"down no change", &fakeMigrate{downErr: migrate.ErrNoChange}, (*Migrator).Down, ""},
		{"down failure", &fakeMigrate{downErr: boom}, (*Migrator).Down, "MIGRATION_DOWN_FAILED"},
		{"steps", &fakeMigrate{}, func(m *Migrator) error { return m.Steps(2) }, ""},
		{"steps zero", &fakeMigrate{stepsErr: migrate.ErrNoChange}, func(m *Migrator) error { return m.Steps(0) }, ""},
		{"steps failure", &fakeMigrate{stepsErr: boom}, func(m *Migrator) error { return m.Steps(-1) }, "MIGRATION_STEPS_FAILED"},
		{"force", &fakeMigrate{}, func(m *Migrator) error { return m.Force(2) }, ""},
		{"force negative", &fakeMigrate{}, func(m *Migrator) error { return m.Force(-1) }, "INVALID_VERSION"},
		{"force failure", &fakeMigrate{forceErr: boom}, func(m *Migrator) error { return m.Force(2) }, "MIGRATION_FORCE_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(&Migrator{m: tt.fake})
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestMigrator_ForceNegativeNeverReachesDriver(t *testing.T) {
	fake := &fakeMigrate{}
	require.Error(t, (&Migrator{m: fake}).Force(-3))
	assert.Empty(t, fake.forced)
}

func TestMigrator_Version(t *testing.T) {
	t.Run("reports version and dirty flag", func(t *testing.T) {
		v, dirty, err := (&Migrator{m: &fakeMigrate{version: 3, dirty: true}}).Version()
		require.NoError(t, err)
		assert.Equal(t, uint(3), v)
		assert.True(t, dirty)
	})

	t.Run("empty database is version zero", func(t *testing.T) {
		v, dirty, err := (&Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}).Version()
		require.NoError(t, err)
		assert.Zero(t, v)
		assert.False(t, dirty)
	})

	t.Run("driver failure", func(t *testing.T) {
		_, _, err := (&Migrator{m: &fakeMigrate{versionErr: errors.New("connection lost")}}).Version()
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
	})
}

func TestMigrator_Close(t *testing.T) {
	srcErr := errors.New("source close failed")
	dbErr := errors.New("db close failed")

	tests := []struct {
		name      string
		fake      *fakeMigrate
		component string
	}{
		{"clean", &fakeMigrate{}, ""},
		{"source", &fakeMigrate{closeSourceErr: srcErr}, "source"},
		{"database", &fakeMigrate{closeDBErr: dbErr}, "database"},
		{"both", &fakeMigrate{closeSourceErr: srcErr, closeDBErr: dbErr}, "both"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Migrator{m: tt.fake}).Close()
			if tt.component == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
			errutil.AssertErrorContext(t, err, "component", tt.component)
		})
	}

	t.Run("both errors are kept", func(t *testing.T) {
		err := (&Migrator{m: &fakeMigrate{closeSourceErr: srcErr, closeDBErr: dbErr}}).Close()
		assert.Contains(t, err.Error(), "source close failed")
		assert.Contains(t, err.Error(), "db close failed")
	})
}

func TestMigrator_PendingAndApplied(t *testing.T) {
	tests := []struct {
		name    string
		fake    *fakeMigrate
		pending []uint
		applied []uint
	}{
		{"fresh database", &fakeMigrate{versionErr: migrate.ErrNilVersion}, []uint{1, 2, 3, 4}, nil},
		{"partially migrated", &fakeMigrate{version: 2}, []uint{3, 4}, []uint{1, 2}},
		{"up to date", &fakeMigrate{version: 4}, nil, []uint{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Migrator{m: tt.fake}

			pending, err := m.PendingMigrations()
			require.NoError(t, err)
			assert.Equal(t, tt.pending, pending)

			applied, err := m.AppliedMigrations()
			require.NoError(t, err)
			assert.Equal(t, tt.applied, applied)
		})
	}

	t.Run("version failure carries the operation", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: errors.New("connection lost")}}

		_, err := m.PendingMigrations()
		errutil.AssertErrorContext(t, err, "operation", "get pending migrations")

		_, err = m.AppliedMigrations()
		errutil.AssertErrorContext(t, err, "operation", "get applied migrations")
	})
}

func TestMigrationName(t *testing.T) {
	tests := []struct {
		version uint
		want    string
	}{
		{1, "000001_principals"},
		{2, "000002_companies"},
		{3, "000003_sessions"},
		{4, "000004_documents"},
		{999, ""},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("version_%d", tt.version), func(t *testing.T) {
			name, err := MigrationName(tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.want, name)
		})
	}
}

func TestAllMigrationVersions_ReturnsCopy(t *testing.T) {
	first, err := allMigrationVersions()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	original := first[0]
	first[0] = 99999

	second, err := allMigrationVersions()
	require.NoError(t, err)
	assert.Equal(t, original, second[0])
}
