// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/expohub/expohub/internal/account"
	"github.com/expohub/expohub/internal/document"
	"github.com/expohub/expohub/internal/observability"
)

// Accounts is the subset of *account.Registry used by the handlers.
type Accounts interface {
	Register(ctx context.Context, in account.RegistrationInput, client account.ClientInfo) (*account.AuthResult, error)
	CheckEmailAvailable(ctx context.Context, email string) (bool, error)
	Login(ctx context.Context, in account.LoginInput, client account.ClientInfo) (*account.AuthResult, error)
	Authenticate(ctx context.Context, token string) (*account.Identity, error)
	Logout(ctx context.Context, sessionID ulid.ULID) error
	UpdateProfile(ctx context.Context, principalID ulid.ULID, in account.ProfileInput) (*account.Account, error)
}

// Documents is the subset of *document.Service used by the handlers.
type Documents interface {
	Create(ctx context.Context, owner *account.Account, in document.Input) (*document.Document, error)
	List(ctx context.Context, caller *account.Account, principalID ulid.ULID) ([]*document.Document, error)
}

// Config holds the dependencies of the API.
type Config struct {
	Accounts  Accounts
	Documents Documents
	// Metrics may be nil.
	Metrics *observability.Metrics
	// Logger defaults to slog.Default.
	Logger *slog.Logger
	// CORSOrigins lists the allowed browser origins. Empty disables CORS.
	CORSOrigins []string
}

// API holds the request handlers.
type API struct {
	accounts  Accounts
	documents Documents
	metrics   *observability.Metrics
	logger    *slog.Logger
	origins   []string
}

// New validates cfg and creates an API.
func New(cfg Config) (*API, error) {
	if cfg.Accounts == nil {
		return nil, oops.Code("HTTPAPI_INVALID_CONFIG").Errorf("accounts service is required")
	}
	if cfg.Documents == nil {
		return nil, oops.Code("HTTPAPI_INVALID_CONFIG").Errorf("documents service is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		accounts:  cfg.Accounts,
		documents: cfg.Documents,
		metrics:   cfg.Metrics,
		logger:    logger,
		origins:   cfg.CORSOrigins,
	}, nil
}

// authedHandlerFunc is a handler that runs after the bearer token resolved
// to an identity.
type authedHandlerFunc func(w http.ResponseWriter, r *http.Request, id *account.Identity)

func (a *API) authenticated(h authedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := a.accounts.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		h(w, r, id)
	}
}

// bearerToken returns the token of an "Authorization: Bearer" header, or "".
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func clientInfo(r *http.Request) account.ClientInfo {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return account.ClientInfo{UserAgent: r.UserAgent(), IPAddress: ip}
}

// outcome labels a result for metrics.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return account.Classify(err).String()
}
