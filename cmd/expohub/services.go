// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package main

import (
	"log/slog"

	"github.com/expohub/expohub/internal/account"
	accountpg "github.com/expohub/expohub/internal/account/postgres"
	"github.com/expohub/expohub/internal/config"
	"github.com/expohub/expohub/internal/document"
	documentpg "github.com/expohub/expohub/internal/document/postgres"
	"github.com/expohub/expohub/internal/store"
)

type services struct {
	registry  *account.Registry
	documents *document.Service
}

// buildServices wires the PostgreSQL repositories into the domain services.
func buildServices(db store.DB, cfg *config.Config, logger *slog.Logger) (*services, error) {
	registry, err := account.NewRegistry(
		accountpg.NewPrincipalRepository(db),
		accountpg.NewCompanyRepository(db),
		accountpg.NewSessionRepository(db),
		store.NewTransactor(db),
		account.NewArgon2idHasher(),
		account.WithPasswordPolicy(cfg.Password.Policy()),
		account.WithSessionTTL(cfg.Session.TTL),
		account.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	documents, err := document.NewService(documentpg.NewRepository(db), logger)
	if err != nil {
		return nil, err
	}
	return &services{registry: registry, documents: documents}, nil
}
