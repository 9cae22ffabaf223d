// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expohub/expohub/internal/store"
	"github.com/expohub/expohub/pkg/errutil"
)

func mockPoolDeps(t *testing.T) (*Deps, pgxmock.PgxPoolIface, *string) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	var gotURL string
	deps := &Deps{Connect: func(_ context.Context, url string, _ store.ConnectOptions) (Pool, error) {
		gotURL = url
		return mock, nil
	}}
	return deps, mock, &gotURL
}

func TestServe_RequiresDatabaseURL(t *testing.T) {
	isolate(t)
	deps, _, _ := mockPoolDeps(t)

	_, err := execute(t, context.Background(), deps, "serve")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}

func TestServe_ConnectFailure(t *testing.T) {
	isolate(t)
	deps := &Deps{Connect: func(context.Context, string, store.ConnectOptions) (Pool, error) {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(errors.New("connection refused"))
	}}

	_, err := execute(t, context.Background(), deps, "serve", "--database-url=postgres://db/expohub")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "DB_CONNECT_FAILED")
}

func TestServe_RunsUntilCancelled(t *testing.T) {
	isolate(t)
	deps, mock, gotURL := mockPoolDeps(t)
	mock.ExpectClose()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := new(syncBuffer)
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, deps, out, "serve",
			"--database-url=postgres://db/expohub",
			"--http-addr=127.0.0.1:0",
			"--metrics-addr=127.0.0.1:0")
	}()

	listening := regexp.MustCompile(`expohub listening on (\S+)`)
	var addr string
	require.Eventually(t, func() bool {
		m := listening.FindStringSubmatch(out.String())
		if m == nil {
			return false
		}
		addr = m[1]
		return true
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "postgres://db/expohub", *gotURL)

	resp, err := http.Get("http://" + addr + "/user")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("serve did not stop after cancellation")
	}
}

func TestMonitorServerErrors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("error cancels", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		errCh := make(chan error, 1)
		errCh <- errors.New("listener closed")

		monitorServerErrors(ctx, cancel, errCh, "http", logger)
		assert.Error(t, ctx.Err())
	})

	t.Run("closed channel does not cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		errCh := make(chan error)
		close(errCh)

		monitorServerErrors(ctx, cancel, errCh, "http", logger)
		assert.NoError(t, ctx.Err())
	})

	t.Run("returns when context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		monitorServerErrors(ctx, cancel, make(chan error), "http", logger)
	})
}
