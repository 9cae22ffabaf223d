// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package account

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/expohub/expohub/internal/validation"
	"github.com/expohub/expohub/pkg/errutil"
)

// dummyPasswordHash is verified when no principal matches the email so that
// unknown emails cost the same time as wrong passwords. It matches nothing.
//
//nolint:gosec // G101: intentionally fake hash, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Registry owns registration, authentication and session management.
type Registry struct {
	principals PrincipalRepository
	companies  CompanyRepository
	sessions   SessionRepository
	tx         Transactor
	hasher     PasswordHasher
	validator  *validation.Validator
	policy     PasswordPolicy
	sessionTTL time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithPasswordPolicy replaces the default CNIL password policy.
func WithPasswordPolicy(p PasswordPolicy) Option {
	return func(r *Registry) {
		r.policy = p
	}
}

// WithSessionTTL sets how long newly issued sessions stay valid.
func WithSessionTTL(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.sessionTTL = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the logger used for server-side diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates a Registry. All repositories, the transactor and the
// hasher are required.
func NewRegistry(
	principals PrincipalRepository,
	companies CompanyRepository,
	sessions SessionRepository,
	tx Transactor,
	hasher PasswordHasher,
	opts ...Option,
) (*Registry, error) {
	switch {
	case principals == nil:
		return nil, oops.Code("REGISTRY_INVALID_CONFIG").Errorf("principals repository is required")
	case companies == nil:
		return nil, oops.Code("REGISTRY_INVALID_CONFIG").Errorf("companies repository is required")
	case sessions == nil:
		return nil, oops.Code("REGISTRY_INVALID_CONFIG").Errorf("sessions repository is required")
	case tx == nil:
		return nil, oops.Code("REGISTRY_INVALID_CONFIG").Errorf("transactor is required")
	case hasher == nil:
		return nil, oops.Code("REGISTRY_INVALID_CONFIG").Errorf("password hasher is required")
	}

	r := &Registry{
		principals: principals,
		companies:  companies,
		sessions:   sessions,
		tx:         tx,
		hasher:     hasher,
		validator:  validation.New(),
		policy:     CNILPolicy,
		sessionTTL: DefaultSessionTimeout,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Account *Account
	Session *Session
	// Token is the plaintext bearer token. It is only available here.
	Token string
}

// Identity is an authenticated session together with its account.
type Identity struct {
	Account *Account
	Session *Session
}

// Register creates a principal (and, for exhibitors, its company) and opens
// a first session, all in one transaction.
//
// An email already in use is reported as a conflict even when other fields
// are invalid.
func (r *Registry) Register(ctx context.Context, in RegistrationInput, client ClientInfo) (*AuthResult, error) {
	in.normalize()

	if in.Email != "" {
		taken, err := r.principals.ExistsByEmail(ctx, in.Email)
		if err != nil {
			return nil, r.internal(ctx, "ACCOUNT_REGISTER_FAILED", "check email", err)
		}
		if taken {
			return nil, emailTakenError(in.Email)
		}
	}

	if errs := in.validate(r.validator, r.policy); len(errs) > 0 {
		return nil, validationError(errs)
	}

	kind, _ := ParseKind(in.UserType)

	if kind.OwnsCompany() {
		taken, err := r.companies.ExistsBySiren(ctx, in.SirenNumber)
		if err != nil {
			return nil, r.internal(ctx, "ACCOUNT_REGISTER_FAILED", "check siren", err)
		}
		if taken {
			return nil, sirenTakenError(in.SirenNumber)
		}
	}

	hash, err := r.hasher.Hash(in.Password)
	if err != nil {
		return nil, r.internal(ctx, "ACCOUNT_REGISTER_FAILED", "hash password", err)
	}

	principal, err := NewPrincipal(in.FirstName, in.LastName, in.Email, hash, kind)
	if err != nil {
		return nil, r.internal(ctx, "ACCOUNT_REGISTER_FAILED", "build principal", err)
	}

	var company *Company
	if kind.OwnsCompany() {
		company, err = NewCompany(principal, in.CompanyName, in.SirenNumber)
		if err != nil {
			return nil, r.internal(ctx, "ACCOUNT_REGISTER_FAILED", "build company", err)
		}
	}

	acct, err := NewAccount(principal, company)
	if err != nil {
		return nil, r.internal(ctx, "ACCOUNT_REGISTER_FAILED", "build account", err)
	}

	token, session, err := r.newSession(principal.ID, client)
	if err != nil {
		return nil, r.internal(ctx, "ACCOUNT_REGISTER_FAILED", "create session", err)
	}

	err = r.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := r.principals.Create(ctx, principal); err != nil {
			return err
		}
		if company != nil {
			if err := r.companies.Create(ctx, company); err != nil {
				return err
			}
		}
		return r.sessions.Create(ctx, session)
	})
	if err != nil {
		if conflict := conflictFromConstraint(err, in.Email, in.SirenNumber); conflict != nil {
			return nil, conflict
		}
		return nil, r.internal(ctx, "ACCOUNT_REGISTER_FAILED", "persist account", err)
	}

	r.logger.InfoContext(ctx, "account registered",
		"principal_id", principal.ID.String(),
		"kind", string(principal.Kind),
	)

	return &AuthResult{Account: acct, Session: session, Token: token}, nil
}

// CheckEmailAvailable reports whether no principal of any kind uses email.
func (r *Registry) CheckEmailAvailable(ctx context.Context, email string) (bool, error) {
	in := EmailInput{Email: NormalizeEmail(email)}
	if errs := r.validator.Struct(in); len(errs) > 0 {
		return false, validationError(errs)
	}

	taken, err := r.principals.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return false, r.internal(ctx, "ACCOUNT_CHECK_EMAIL_FAILED", "check email", err)
	}
	return !taken, nil
}

// Login verifies credentials and opens a new session. Unknown emails and
// wrong passwords produce the same error.
func (r *Registry) Login(ctx context.Context, in LoginInput, client ClientInfo) (*AuthResult, error) {
	in.Email = NormalizeEmail(in.Email)
	if errs := r.validator.Struct(in); len(errs) > 0 {
		return nil, validationError(errs)
	}

	principal, lookupErr := r.principals.GetByEmail(ctx, in.Email)

	targetHash := dummyPasswordHash
	exists := false
	switch {
	case lookupErr == nil:
		targetHash = principal.PasswordHash
		exists = true
	case !errors.Is(lookupErr, ErrNotFound):
		return nil, r.internal(ctx, "AUTH_LOGIN_FAILED", "get principal by email", lookupErr)
	}

	valid, verifyErr := r.hasher.Verify(in.Password, targetHash)
	if verifyErr != nil {
		if !exists {
			return nil, invalidCredentialsError()
		}
		return nil, r.internal(ctx, "AUTH_LOGIN_FAILED", "verify password", verifyErr)
	}
	if !exists || !valid {
		return nil, invalidCredentialsError()
	}

	if r.hasher.NeedsUpgrade(principal.PasswordHash) {
		r.upgradeHash(ctx, principal, in.Password)
	}

	acct, err := r.loadAccount(ctx, principal)
	if err != nil {
		return nil, r.internal(ctx, "AUTH_LOGIN_FAILED", "load account", err)
	}

	token, session, err := r.newSession(principal.ID, client)
	if err != nil {
		return nil, r.internal(ctx, "AUTH_LOGIN_FAILED", "create session", err)
	}
	if err := r.sessions.Create(ctx, session); err != nil {
		return nil, r.internal(ctx, "AUTH_SESSION_CREATE_FAILED", "persist session", err)
	}

	return &AuthResult{Account: acct, Session: session, Token: token}, nil
}

// Authenticate resolves a bearer token to its session and account.
func (r *Registry) Authenticate(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, oops.Code(CodeTokenEmpty).Errorf("session token cannot be empty")
	}

	session, err := r.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeSessionInvalid).Errorf("invalid session token")
		}
		return nil, r.internal(ctx, "SESSION_VALIDATE_FAILED", "get session by token hash", err)
	}

	now := r.now().UTC()
	if session.IsExpiredAt(now) {
		return nil, oops.Code(CodeSessionExpired).
			With("session_id", session.ID.String()).
			Errorf("session has expired")
	}

	principal, err := r.principals.GetByID(ctx, session.PrincipalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code(CodeSessionInvalid).Errorf("invalid session token")
		}
		return nil, r.internal(ctx, "SESSION_VALIDATE_FAILED", "get principal", err)
	}

	acct, err := r.loadAccount(ctx, principal)
	if err != nil {
		return nil, r.internal(ctx, "SESSION_VALIDATE_FAILED", "load account", err)
	}

	if err := r.sessions.UpdateLastSeen(ctx, session.ID, now); err != nil {
		r.logger.WarnContext(ctx, "failed to update session last seen",
			"session_id", session.ID.String(),
			"error", err,
		)
	}
	session.LastSeenAt = now

	return &Identity{Account: acct, Session: session}, nil
}

// CurrentPrincipal resolves a bearer token to the account that owns it.
func (r *Registry) CurrentPrincipal(ctx context.Context, token string) (*Account, error) {
	id, err := r.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return id.Account, nil
}

// Logout revokes a single session. Other sessions of the same principal
// remain valid.
func (r *Registry) Logout(ctx context.Context, sessionID ulid.ULID) error {
	if err := r.sessions.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code(CodeSessionInvalid).
				With("session_id", sessionID.String()).
				Errorf("session not found")
		}
		return r.internal(ctx, "AUTH_LOGOUT_FAILED", "delete session", err)
	}
	return nil
}

// UpdateProfile changes the names of a principal and, for exhibitors, the
// company name. Email, kind and SIREN number cannot change.
func (r *Registry) UpdateProfile(ctx context.Context, principalID ulid.ULID, in ProfileInput) (*Account, error) {
	in.normalize()

	principal, err := r.principals.GetByID(ctx, principalID)
	if err != nil {
		return nil, r.internal(ctx, "PROFILE_UPDATE_FAILED", "get principal", err)
	}

	errs := r.validator.Struct(in)
	if in.CompanyName != nil && !principal.Kind.OwnsCompany() {
		errs["company_name"] = "company_name is only available for exhibitors"
	}
	if len(errs) > 0 {
		return nil, validationError(errs)
	}

	if in.FirstName != nil {
		principal.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		principal.LastName = *in.LastName
	}
	principal.UpdatedAt = r.now().UTC()

	acct, err := r.loadAccount(ctx, principal)
	if err != nil {
		return nil, r.internal(ctx, "PROFILE_UPDATE_FAILED", "load account", err)
	}

	err = r.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := r.principals.UpdateProfile(ctx, principal); err != nil {
			return err
		}
		if in.CompanyName != nil {
			return r.companies.UpdateName(ctx, acct.Company.ID, *in.CompanyName)
		}
		return nil
	})
	if err != nil {
		return nil, r.internal(ctx, "PROFILE_UPDATE_FAILED", "persist profile", err)
	}

	if in.CompanyName != nil {
		acct.Company.Name = *in.CompanyName
	}
	return acct, nil
}

// PruneSessions deletes every expired session and returns how many were removed.
func (r *Registry) PruneSessions(ctx context.Context) (int64, error) {
	n, err := r.sessions.DeleteExpired(ctx, r.now().UTC())
	if err != nil {
		return 0, r.internal(ctx, "SESSION_PRUNE_FAILED", "delete expired sessions", err)
	}
	return n, nil
}

func (r *Registry) loadAccount(ctx context.Context, p *Principal) (*Account, error) {
	if !p.Kind.OwnsCompany() {
		return NewAccount(p, nil)
	}
	company, err := r.companies.GetByPrincipal(ctx, p.ID)
	if err != nil {
		return nil, oops.With("principal_id", p.ID.String()).Wrap(err)
	}
	return NewAccount(p, company)
}

func (r *Registry) newSession(principalID ulid.ULID, client ClientInfo) (string, *Session, error) {
	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return "", nil, err
	}
	session, err := NewSession(principalID, tokenHash, client, r.now().UTC().Add(r.sessionTTL))
	if err != nil {
		return "", nil, err
	}
	return token, session, nil
}

// upgradeHash replaces a legacy hash after a successful login.
// Failures are logged; the login still succeeds.
func (r *Registry) upgradeHash(ctx context.Context, p *Principal, password string) {
	newHash, err := r.hasher.Hash(password)
	if err != nil {
		errutil.LogErrorContext(ctx, r.logger, "failed to rehash legacy password", err)
		return
	}
	if err := r.principals.UpdatePassword(ctx, p.ID, newHash); err != nil {
		errutil.LogErrorContext(ctx, r.logger, "failed to store upgraded password hash", err)
		return
	}
	p.PasswordHash = newHash
}

// internal wraps an unexpected failure and logs it with its context.
func (r *Registry) internal(ctx context.Context, code, operation string, err error) error {
	wrapped := oops.Code(code).With("operation", operation).Wrap(err)
	errutil.LogErrorContext(ctx, r.logger, "account registry failure", wrapped)
	return wrapped
}
