// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package postgres

import (
	"github.com/expohub/expohub/internal/account"
	"github.com/expohub/expohub/internal/store"
)

// asUniqueViolation returns err as an *account.UniqueViolation when it is a
// unique constraint failure, and err unchanged otherwise.
func asUniqueViolation(err error) error {
	if name, ok := store.UniqueConstraint(err); ok {
		return &account.UniqueViolation{Constraint: name, Err: err}
	}
	return err
}
