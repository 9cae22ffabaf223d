// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package account_test

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/expohub/expohub/internal/account"
)

type mockPrincipalRepository struct {
	mock.Mock
}

func (m *mockPrincipalRepository) Create(ctx context.Context, p *account.Principal) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPrincipalRepository) GetByID(ctx context.Context, id ulid.ULID) (*account.Principal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Principal), args.Error(1)
}

func (m *mockPrincipalRepository) GetByEmail(ctx context.Context, email string) (*account.Principal, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Principal), args.Error(1)
}

func (m *mockPrincipalRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockPrincipalRepository) UpdateProfile(ctx context.Context, p *account.Principal) error {
	return m.Called(ctx, p).Error(0)
}

func (m *mockPrincipalRepository) UpdatePassword(ctx context.Context, id ulid.ULID, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

type mockCompanyRepository struct {
	mock.Mock
}

func (m *mockCompanyRepository) Create(ctx context.Context, c *account.Company) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCompanyRepository) GetByPrincipal(ctx context.Context, principalID ulid.ULID) (*account.Company, error) {
	args := m.Called(ctx, principalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Company), args.Error(1)
}

func (m *mockCompanyRepository) ExistsBySiren(ctx context.Context, siren string) (bool, error) {
	args := m.Called(ctx, siren)
	return args.Bool(0), args.Error(1)
}

func (m *mockCompanyRepository) UpdateName(ctx context.Context, id ulid.ULID, name string) error {
	return m.Called(ctx, id, name).Error(0)
}

type mockSessionRepository struct {
	mock.Mock
}

func (m *mockSessionRepository) Create(ctx context.Context, s *account.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*account.Session, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Session), args.Error(1)
}

func (m *mockSessionRepository) UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error {
	return m.Called(ctx, id, lastSeen).Error(0)
}

func (m *mockSessionRepository) Delete(ctx context.Context, id ulid.ULID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockPasswordHasher struct {
	mock.Mock
}

func (m *mockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

func (m *mockPasswordHasher) NeedsUpgrade(hash string) bool {
	return m.Called(hash).Bool(0)
}

// inlineTransactor runs fn directly and counts the calls.
type inlineTransactor struct {
	calls int
}

func (tx *inlineTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	return fn(ctx)
}

type registryDeps struct {
	principals *mockPrincipalRepository
	companies  *mockCompanyRepository
	sessions   *mockSessionRepository
	hasher     *mockPasswordHasher
	tx         *inlineTransactor
}

func (d *registryDeps) assertExpectations(t mock.TestingT) {
	d.principals.AssertExpectations(t)
	d.companies.AssertExpectations(t)
	d.sessions.AssertExpectations(t)
	d.hasher.AssertExpectations(t)
}

func newDeps() *registryDeps {
	return &registryDeps{
		principals: new(mockPrincipalRepository),
		companies:  new(mockCompanyRepository),
		sessions:   new(mockSessionRepository),
		hasher:     new(mockPasswordHasher),
		tx:         new(inlineTransactor),
	}
}
