// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package account

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session token configuration.
const (
	SessionTokenBytes     = 32             // 32 bytes = 64 hex chars
	DefaultSessionTimeout = 24 * time.Hour // 24 hour expiry
)

// Session binds an opaque bearer token to one principal.
// Only the SHA-256 of the token is stored.
type Session struct {
	ID          ulid.ULID
	PrincipalID ulid.ULID
	TokenHash   string
	UserAgent   string
	IPAddress   string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	LastSeenAt  time.Time
}

// ClientInfo describes the client that opened a session.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// NewSession creates a validated Session.
func NewSession(principalID ulid.ULID, tokenHash string, client ClientInfo, expiresAt time.Time) (*Session, error) {
	if principalID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_PRINCIPAL").Errorf("principal ID cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	now := time.Now().UTC()
	return &Session{
		ID:          ulid.Make(),
		PrincipalID: principalID,
		TokenHash:   tokenHash,
		UserAgent:   client.UserAgent,
		IPAddress:   client.IPAddress,
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
		LastSeenAt:  now,
	}, nil
}

// IsExpiredAt returns true if the session is expired at t.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// GenerateSessionToken creates a random token and its hash.
// The plaintext token goes to the client; the hash goes to the database.
func GenerateSessionToken() (token, hash string, err error) {
	tokenBytes := make([]byte, SessionTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	return token, HashSessionToken(token), nil
}

// HashSessionToken computes the hex SHA-256 of a session token.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, s *Session) error

	// GetByTokenHash retrieves a session by its token hash.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// UpdateLastSeen updates the LastSeenAt timestamp for a session.
	UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error

	// Delete removes a single session by ID.
	Delete(ctx context.Context, id ulid.ULID) error

	// DeleteExpired removes sessions that expired before now and returns
	// the count of deleted records.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
