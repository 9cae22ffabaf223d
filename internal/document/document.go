// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

// Package document stores metadata about the files principals attach to
// their account. Only the owner can list or add documents.
package document

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/expohub/expohub/internal/account"
	"github.com/expohub/expohub/internal/validation"
	"github.com/expohub/expohub/pkg/errutil"
)

// Error codes surfaced to callers.
const (
	CodeValidationFailed = "DOCUMENT_VALIDATION_FAILED"
	CodeForbidden        = "DOCUMENT_FORBIDDEN"
)

func init() {
	account.RegisterCategory(CodeValidationFailed, account.CategoryValidation)
	account.RegisterCategory(CodeForbidden, account.CategoryForbidden)
}

// Document is a named, optionally linked, file owned by a principal.
type Document struct {
	ID          ulid.ULID
	PrincipalID ulid.ULID
	Name        string
	// URL is empty when the document has no link.
	URL       string
	CreatedAt time.Time
}

// Input carries the fields of a new document.
type Input struct {
	Name string `json:"name" validate:"required,max=255"`
	URL  string `json:"url" validate:"omitempty,http_url"`
}

// Repository manages document persistence.
type Repository interface {
	Create(ctx context.Context, d *Document) error
	// ListByPrincipal returns documents oldest first.
	ListByPrincipal(ctx context.Context, principalID ulid.ULID) ([]*Document, error)
}

// Service adds and lists documents on behalf of an authenticated account.
type Service struct {
	repo      Repository
	validator *validation.Validator
	logger    *slog.Logger
}

// NewService creates a Service. A nil logger uses slog.Default.
func NewService(repo Repository, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, oops.Code("DOCUMENT_INVALID_CONFIG").Errorf("document repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, validator: validation.New(), logger: logger}, nil
}

// Create stores a document owned by owner.
func (s *Service) Create(ctx context.Context, owner *account.Account, in Input) (*Document, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.URL = strings.TrimSpace(in.URL)

	if errs := s.validator.Struct(in); len(errs) > 0 {
		return nil, oops.Code(CodeValidationFailed).With("fields", errs.Keys()).Wrap(errs)
	}

	doc := &Document{
		ID:          ulid.Make(),
		PrincipalID: owner.Principal.ID,
		Name:        in.Name,
		URL:         in.URL,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		wrapped := oops.Code("DOCUMENT_CREATE_FAILED").
			With("principal_id", owner.Principal.ID.String()).
			Wrap(err)
		errutil.LogErrorContext(ctx, s.logger, "failed to store document", wrapped)
		return nil, wrapped
	}
	return doc, nil
}

// List returns the documents of principalID. Callers may only list their
// own documents.
func (s *Service) List(ctx context.Context, caller *account.Account, principalID ulid.ULID) ([]*Document, error) {
	if caller.Principal.ID != principalID {
		return nil, oops.Code(CodeForbidden).
			With("caller_id", caller.Principal.ID.String()).
			With("principal_id", principalID.String()).
			Errorf("documents of another user are not accessible")
	}

	docs, err := s.repo.ListByPrincipal(ctx, principalID)
	if err != nil {
		wrapped := oops.Code("DOCUMENT_LIST_FAILED").
			With("principal_id", principalID.String()).
			Wrap(err)
		errutil.LogErrorContext(ctx, s.logger, "failed to list documents", wrapped)
		return nil, wrapped
	}
	return docs, nil
}
