// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package account

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PasswordPolicy describes the minimum strength of a new password.
type PasswordPolicy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

// CNILPolicy is the default policy: at least 12 characters mixing upper and
// lower case letters, digits and symbols.
var CNILPolicy = PasswordPolicy{
	MinLength:     12,
	RequireUpper:  true,
	RequireLower:  true,
	RequireDigit:  true,
	RequireSymbol: true,
}

// LegacyPolicy only requires 8 characters.
var LegacyPolicy = PasswordPolicy{MinLength: 8}

// Check returns a message describing why password is rejected, or "" when it
// satisfies the policy.
func (p PasswordPolicy) Check(password string) string {
	var missing []string

	if n := utf8.RuneCountInString(password); n < p.MinLength {
		missing = append(missing, fmt.Sprintf("at least %d characters", p.MinLength))
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	if p.RequireUpper && !hasUpper {
		missing = append(missing, "an uppercase letter")
	}
	if p.RequireLower && !hasLower {
		missing = append(missing, "a lowercase letter")
	}
	if p.RequireDigit && !hasDigit {
		missing = append(missing, "a digit")
	}
	if p.RequireSymbol && !hasSymbol {
		missing = append(missing, "a symbol")
	}

	if len(missing) == 0 {
		return ""
	}
	return "password must contain " + strings.Join(missing, ", ")
}
