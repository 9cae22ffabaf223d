// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

// Package postgres implements the account repositories on PostgreSQL.
//
// Every repository resolves its connection through store.Conn, so calls made
// with a context from store.Transactor.InTransaction join that transaction.
package postgres
