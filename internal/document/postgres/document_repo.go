// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

// Package postgres implements document.Repository on PostgreSQL.
package postgres

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/expohub/expohub/internal/document"
	"github.com/expohub/expohub/internal/store"
)

// Repository implements document.Repository.
type Repository struct {
	db store.Querier
}

// NewRepository creates a Repository.
func NewRepository(db store.Querier) *Repository {
	return &Repository{db: db}
}

// Create inserts a document. An empty URL is stored as NULL.
func (r *Repository) Create(ctx context.Context, d *document.Document) error {
	var url *string
	if d.URL != "" {
		url = &d.URL
	}

	_, err := store.Conn(ctx, r.db).Exec(ctx, `
		INSERT INTO documents (id, principal_id, name, url, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, d.ID.String(), d.PrincipalID.String(), d.Name, url, d.CreatedAt)
	if err != nil {
		return oops.Code("DOCUMENT_INSERT_FAILED").
			With("operation", "insert document").
			With("principal_id", d.PrincipalID.String()).
			Wrap(err)
	}
	return nil
}

// ListByPrincipal returns the documents of a principal, oldest first.
func (r *Repository) ListByPrincipal(ctx context.Context, principalID ulid.ULID) ([]*document.Document, error) {
	rows, err := store.Conn(ctx, r.db).Query(ctx, `
		SELECT id, name, url, created_at
		FROM documents
		WHERE principal_id = $1
		ORDER BY created_at, id
	`, principalID.String())
	if err != nil {
		return nil, oops.Code("DOCUMENT_QUERY_FAILED").
			With("operation", "list documents").
			With("principal_id", principalID.String()).
			Wrap(err)
	}
	defer rows.Close()

	docs := []*document.Document{}
	for rows.Next() {
		var (
			idStr     string
			name      string
			url       *string
			createdAt time.Time
		)
		if err := rows.Scan(&idStr, &name, &url, &createdAt); err != nil {
			return nil, oops.Code("DOCUMENT_SCAN_FAILED").With("operation", "scan document row").Wrap(err)
		}
		id, err := ulid.Parse(idStr)
		if err != nil {
			return nil, oops.Code("DOCUMENT_INVALID_ID").With("id", idStr).Wrap(err)
		}
		doc := &document.Document{ID: id, PrincipalID: principalID, Name: name, CreatedAt: createdAt}
		if url != nil {
			doc.URL = *url
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("DOCUMENT_ROWS_ERROR").With("operation", "iterate document rows").Wrap(err)
	}
	return docs, nil
}

// Compile-time interface check.
var _ document.Repository = (*Repository)(nil)
