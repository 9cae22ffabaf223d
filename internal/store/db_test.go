// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expohub/expohub/pkg/errutil"
)

func TestTransactor_InTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("commits when fn succeeds", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO principals").WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		err = NewTransactor(mock).InTransaction(ctx, func(ctx context.Context) error {
			_, err := Conn(ctx, mock).Exec(ctx, "INSERT INTO principals (id) VALUES ($1)", "p1")
			return err
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		sentinel := errors.New("company insert failed")
		err = NewTransactor(mock).InTransaction(ctx, func(context.Context) error {
			return sentinel
		})
		require.ErrorIs(t, err, sentinel)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		called := false
		err = NewTransactor(mock).InTransaction(ctx, func(context.Context) error {
			called = true
			return nil
		})
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TX_BEGIN_FAILED")
		assert.False(t, called)
	})

	t.Run("commit failure", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))
		mock.ExpectRollback()

		err = NewTransactor(mock).InTransaction(ctx, func(context.Context) error { return nil })
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "TX_COMMIT_FAILED")
	})

	t.Run("nested call joins the outer transaction", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		tr := NewTransactor(mock)
		err = tr.InTransaction(ctx, func(ctx context.Context) error {
			return tr.InTransaction(ctx, func(context.Context) error { return nil })
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConn_WithoutTransactionUsesPool(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	assert.Equal(t, Querier(mock), Conn(context.Background(), mock))
}

func TestUniqueConstraint(t *testing.T) {
	unique := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "principals_email_key"}

	name, ok := UniqueConstraint(fmt.Errorf("insert: %w", unique))
	assert.True(t, ok)
	assert.Equal(t, "principals_email_key", name)

	_, ok = UniqueConstraint(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})
	assert.False(t, ok)

	_, ok = UniqueConstraint(errors.New("plain"))
	assert.False(t, ok)
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://%zz", ConnectOptions{})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "DB_CONFIG_INVALID")
}
