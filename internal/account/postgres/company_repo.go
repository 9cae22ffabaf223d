// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/expohub/expohub/internal/account"
	"github.com/expohub/expohub/internal/store"
)

// CompanyRepository implements account.CompanyRepository.
type CompanyRepository struct {
	db store.Querier
}

// NewCompanyRepository creates a CompanyRepository.
func NewCompanyRepository(db store.Querier) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Create inserts a company. The principal_kind column defaults to
// 'exhibitor', so the foreign key rejects companies owned by visitors.
func (r *CompanyRepository) Create(ctx context.Context, c *account.Company) error {
	_, err := store.Conn(ctx, r.db).Exec(ctx, `
		INSERT INTO companies (id, principal_id, company_name, siren_number, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		c.ID.String(),
		c.PrincipalID.String(),
		c.Name,
		c.SirenNumber,
		c.CreatedAt,
	)
	if err != nil {
		return oops.Code("COMPANY_CREATE_FAILED").
			With("operation", "insert company").
			With("principal_id", c.PrincipalID.String()).
			Wrap(asUniqueViolation(err))
	}
	return nil
}

// GetByPrincipal retrieves the company owned by an exhibitor.
func (r *CompanyRepository) GetByPrincipal(ctx context.Context, principalID ulid.ULID) (*account.Company, error) {
	var (
		idStr, ownerStr string
		c               account.Company
	)
	err := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT id, principal_id, company_name, siren_number, created_at
		FROM companies
		WHERE principal_id = $1
	`, principalID.String()).Scan(&idStr, &ownerStr, &c.Name, &c.SirenNumber, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("COMPANY_NOT_FOUND").
			With("principal_id", principalID.String()).
			Wrap(account.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("COMPANY_GET_FAILED").
			With("operation", "get company by principal").
			With("principal_id", principalID.String()).
			Wrap(err)
	}

	if c.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("COMPANY_INVALID_ID").With("id", idStr).Wrap(err)
	}
	if c.PrincipalID, err = ulid.Parse(ownerStr); err != nil {
		return nil, oops.Code("COMPANY_INVALID_PRINCIPAL_ID").With("principal_id", ownerStr).Wrap(err)
	}
	return &c, nil
}

// ExistsBySiren reports whether a company uses the SIREN number.
func (r *CompanyRepository) ExistsBySiren(ctx context.Context, siren string) (bool, error) {
	var exists bool
	err := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM companies WHERE siren_number = $1)
	`, siren).Scan(&exists)
	if err != nil {
		return false, oops.Code("COMPANY_EXISTS_FAILED").
			With("operation", "check siren").
			Wrap(err)
	}
	return exists, nil
}

// UpdateName renames a company.
func (r *CompanyRepository) UpdateName(ctx context.Context, id ulid.ULID, name string) error {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `
		UPDATE companies SET company_name = $2 WHERE id = $1
	`, id.String(), name)
	if err != nil {
		return oops.Code("COMPANY_UPDATE_FAILED").
			With("operation", "rename company").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("COMPANY_NOT_FOUND").
			With("id", id.String()).
			Wrap(account.ErrNotFound)
	}
	return nil
}

// Compile-time interface check.
var _ account.CompanyRepository = (*CompanyRepository)(nil)
