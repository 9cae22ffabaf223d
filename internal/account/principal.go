// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package account

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Principal is the shared base of every account, visitor or exhibitor.
type Principal struct {
	ID           ulid.ULID
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Kind         Kind
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Company is the exhibitor-only extension of a principal.
type Company struct {
	ID          ulid.ULID
	PrincipalID ulid.ULID
	Name        string
	SirenNumber string
	CreatedAt   time.Time
}

// Account is a principal together with its kind-specific extension.
// Company is non-nil if and only if Principal.Kind is KindExhibitor.
type Account struct {
	Principal *Principal
	Company   *Company
}

// NewPrincipal creates a Principal with a fresh ID.
// The email is normalized; the password hash must already be computed.
func NewPrincipal(firstName, lastName, email, passwordHash string, kind Kind) (*Principal, error) {
	if !kind.Valid() {
		return nil, oops.Code("PRINCIPAL_INVALID_KIND").With("kind", string(kind)).Errorf("unknown principal kind")
	}
	if passwordHash == "" {
		return nil, oops.Code("PRINCIPAL_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	email = NormalizeEmail(email)
	if email == "" {
		return nil, oops.Code("PRINCIPAL_INVALID_EMAIL").Errorf("email cannot be empty")
	}

	now := time.Now().UTC()
	return &Principal{
		ID:           ulid.Make(),
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Email:        email,
		PasswordHash: passwordHash,
		Kind:         kind,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NewCompany creates a Company owned by the given exhibitor.
func NewCompany(owner *Principal, name, sirenNumber string) (*Company, error) {
	if owner == nil {
		return nil, oops.Code("COMPANY_INVALID_OWNER").Errorf("company owner is required")
	}
	if !owner.Kind.OwnsCompany() {
		return nil, oops.Code("COMPANY_INVALID_OWNER").
			With("principal_id", owner.ID.String()).
			With("kind", string(owner.Kind)).
			Errorf("only exhibitors own a company")
	}
	return &Company{
		ID:          ulid.Make(),
		PrincipalID: owner.ID,
		Name:        strings.TrimSpace(name),
		SirenNumber: strings.TrimSpace(sirenNumber),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// NewAccount pairs a principal with its company and checks that the company
// is present exactly when the principal is an exhibitor.
func NewAccount(p *Principal, c *Company) (*Account, error) {
	if p == nil {
		return nil, oops.Code("ACCOUNT_INVALID").Errorf("principal is required")
	}
	switch {
	case p.Kind.OwnsCompany() && c == nil:
		return nil, oops.Code("ACCOUNT_INVALID").
			With("principal_id", p.ID.String()).
			Errorf("exhibitor has no company")
	case !p.Kind.OwnsCompany() && c != nil:
		return nil, oops.Code("ACCOUNT_INVALID").
			With("principal_id", p.ID.String()).
			Errorf("visitor cannot own a company")
	case c != nil && c.PrincipalID != p.ID:
		return nil, oops.Code("ACCOUNT_INVALID").
			With("principal_id", p.ID.String()).
			With("company_principal_id", c.PrincipalID.String()).
			Errorf("company belongs to another principal")
	}
	return &Account{Principal: p, Company: c}, nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PrincipalRepository manages principal persistence.
type PrincipalRepository interface {
	// Create stores a new principal. A duplicate email yields a *UniqueViolation.
	Create(ctx context.Context, p *Principal) error

	// GetByID retrieves a principal by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Principal, error)

	// GetByEmail retrieves a principal by email (case-insensitive).
	// Returns ErrNotFound if no principal has the given email.
	GetByEmail(ctx context.Context, email string) (*Principal, error)

	// ExistsByEmail reports whether any principal, of any kind, uses email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// UpdateProfile updates the mutable name fields.
	UpdateProfile(ctx context.Context, p *Principal) error

	// UpdatePassword updates only the password hash.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error
}

// CompanyRepository manages company persistence.
type CompanyRepository interface {
	// Create stores a new company. A duplicate SIREN yields a *UniqueViolation.
	Create(ctx context.Context, c *Company) error

	// GetByPrincipal retrieves the company owned by an exhibitor.
	GetByPrincipal(ctx context.Context, principalID ulid.ULID) (*Company, error)

	// ExistsBySiren reports whether a company already uses the SIREN number.
	ExistsBySiren(ctx context.Context, siren string) (bool, error)

	// UpdateName renames a company.
	UpdateName(ctx context.Context, id ulid.ULID, name string) error
}

// Transactor runs fn inside a single storage transaction. Repositories called
// with the context passed to fn participate in that transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
