// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/expohub/expohub/internal/account"
	"github.com/expohub/expohub/internal/store"
)

const principalColumns = `id, first_name, last_name, email, password_hash, kind, created_at, updated_at`

// PrincipalRepository implements account.PrincipalRepository.
type PrincipalRepository struct {
	db store.Querier
}

// NewPrincipalRepository creates a PrincipalRepository.
func NewPrincipalRepository(db store.Querier) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

// Create inserts a principal.
func (r *PrincipalRepository) Create(ctx context.Context, p *account.Principal) error {
	_, err := store.Conn(ctx, r.db).Exec(ctx, `
		INSERT INTO principals (`+principalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		p.ID.String(),
		p.FirstName,
		p.LastName,
		p.Email,
		p.PasswordHash,
		string(p.Kind),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return oops.Code("PRINCIPAL_CREATE_FAILED").
			With("operation", "insert principal").
			With("principal_id", p.ID.String()).
			Wrap(asUniqueViolation(err))
	}
	return nil
}

// GetByID retrieves a principal by ID.
func (r *PrincipalRepository) GetByID(ctx context.Context, id ulid.ULID) (*account.Principal, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT `+principalColumns+`
		FROM principals
		WHERE id = $1
	`, id.String())

	p, err := scanPrincipal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PRINCIPAL_NOT_FOUND").
			With("id", id.String()).
			Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PRINCIPAL_GET_FAILED").
			With("operation", "get principal by id").
			With("id", id.String()).
			Wrap(err)
	}
	return p, nil
}

// GetByEmail retrieves a principal by email, ignoring case.
func (r *PrincipalRepository) GetByEmail(ctx context.Context, email string) (*account.Principal, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT `+principalColumns+`
		FROM principals
		WHERE lower(email) = lower($1)
	`, email)

	p, err := scanPrincipal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PRINCIPAL_NOT_FOUND").Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PRINCIPAL_GET_FAILED").
			With("operation", "get principal by email").
			Wrap(err)
	}
	return p, nil
}

// ExistsByEmail reports whether any principal uses email, ignoring case.
func (r *PrincipalRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM principals WHERE lower(email) = lower($1))
	`, email).Scan(&exists)
	if err != nil {
		return false, oops.Code("PRINCIPAL_EXISTS_FAILED").
			With("operation", "check email").
			Wrap(err)
	}
	return exists, nil
}

// UpdateProfile stores the name fields and UpdatedAt.
func (r *PrincipalRepository) UpdateProfile(ctx context.Context, p *account.Principal) error {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `
		UPDATE principals
		SET first_name = $2, last_name = $3, updated_at = $4
		WHERE id = $1
	`, p.ID.String(), p.FirstName, p.LastName, p.UpdatedAt)
	if err != nil {
		return oops.Code("PRINCIPAL_UPDATE_FAILED").
			With("operation", "update principal profile").
			With("principal_id", p.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("PRINCIPAL_NOT_FOUND").
			With("id", p.ID.String()).
			Wrap(account.ErrNotFound)
	}
	return nil
}

// UpdatePassword replaces the password hash.
func (r *PrincipalRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `
		UPDATE principals SET password_hash = $2, updated_at = now()
		WHERE id = $1
	`, id.String(), passwordHash)
	if err != nil {
		return oops.Code("PRINCIPAL_UPDATE_PASSWORD_FAILED").
			With("operation", "update password hash").
			With("principal_id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("PRINCIPAL_NOT_FOUND").
			With("id", id.String()).
			Wrap(account.ErrNotFound)
	}
	return nil
}

// scanPrincipal returns pgx.ErrNoRows unwrapped so callers can map it.
func scanPrincipal(row pgx.Row) (*account.Principal, error) {
	var (
		idStr     string
		p         account.Principal
		kind      string
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&idStr, &p.FirstName, &p.LastName, &p.Email, &p.PasswordHash, &kind, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers add context
		}
		return nil, oops.Code("PRINCIPAL_SCAN_FAILED").With("operation", "scan principal").Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("PRINCIPAL_INVALID_ID").With("id", idStr).Wrap(err)
	}

	p.ID = id
	p.Kind = account.Kind(kind)
	if !p.Kind.Valid() {
		return nil, oops.Code("PRINCIPAL_INVALID_KIND").With("id", idStr).With("kind", kind).Errorf("unknown principal kind")
	}
	p.CreatedAt = createdAt
	p.UpdatedAt = updatedAt
	return &p, nil
}

// Compile-time interface check.
var _ account.PrincipalRepository = (*PrincipalRepository)(nil)
