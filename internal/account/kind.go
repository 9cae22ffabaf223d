// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package account

import "strings"

// Kind discriminates the two principal variants.
type Kind string

// Principal kinds as stored in the database.
const (
	KindVisitor   Kind = "visitor"
	KindExhibitor Kind = "exhibitor"
)

// User types as exchanged over the HTTP API.
const (
	UserTypeVisitor   = "visiteur"
	UserTypeExhibitor = "exposant"
)

// ParseKind maps an API user type (or its storage name) to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case UserTypeVisitor, string(KindVisitor):
		return KindVisitor, true
	case UserTypeExhibitor, string(KindExhibitor):
		return KindExhibitor, true
	default:
		return "", false
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindVisitor || k == KindExhibitor
}

// UserType returns the API name of the kind.
func (k Kind) UserType() string {
	switch k {
	case KindExhibitor:
		return UserTypeExhibitor
	case KindVisitor:
		return UserTypeVisitor
	default:
		return string(k)
	}
}

// OwnsCompany reports whether principals of this kind carry a company.
func (k Kind) OwnsCompany() bool {
	return k == KindExhibitor
}
