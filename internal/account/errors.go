// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package account

import (
	"errors"
	"fmt"

	"github.com/samber/oops"

	"github.com/expohub/expohub/internal/validation"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Error codes surfaced by the registry. Repository-level codes
// (PRINCIPAL_*, COMPANY_*, SESSION_*_FAILED) are internal.
const (
	CodeValidationFailed   = "ACCOUNT_VALIDATION_FAILED"
	CodeEmailTaken         = "ACCOUNT_EMAIL_TAKEN"
	CodeSirenTaken         = "ACCOUNT_SIREN_TAKEN"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeTokenEmpty         = "SESSION_TOKEN_EMPTY"
	CodeSessionInvalid     = "SESSION_INVALID"
	CodeSessionExpired     = "SESSION_EXPIRED"
)

// Unique constraints declared by the schema.
const (
	ConstraintPrincipalEmail = "principals_email_key"
	ConstraintCompanySiren   = "companies_siren_number_key"
)

// Category groups error codes by how callers should react to them.
type Category int

// Error categories.
const (
	CategoryInternal Category = iota
	CategoryValidation
	CategoryConflict
	CategoryAuth
	CategoryForbidden
)

func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryConflict:
		return "conflict"
	case CategoryAuth:
		return "auth"
	case CategoryForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// categories is written only from package init functions.
var categories = map[string]Category{
	CodeValidationFailed:   CategoryValidation,
	CodeEmailTaken:         CategoryConflict,
	CodeSirenTaken:         CategoryConflict,
	CodeInvalidCredentials: CategoryAuth,
	CodeTokenEmpty:         CategoryAuth,
	CodeSessionInvalid:     CategoryAuth,
	CodeSessionExpired:     CategoryAuth,
}

// RegisterCategory associates an error code owned by another package with a
// category. It must be called from an init function.
func RegisterCategory(code string, c Category) {
	categories[code] = c
}

// Classify reports the category of err based on its oops code.
// Unknown codes and non-oops errors are internal.
func Classify(err error) Category {
	if err == nil {
		return CategoryInternal
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return CategoryInternal
	}
	code, _ := oopsErr.Code().(string)
	if c, ok := categories[code]; ok {
		return c
	}
	return CategoryInternal
}

// UniqueViolation is returned by repositories when storage rejects a write
// because of a unique constraint.
type UniqueViolation struct {
	Constraint string
	Err        error
}

func (e *UniqueViolation) Error() string {
	return fmt.Sprintf("unique constraint %q violated: %v", e.Constraint, e.Err)
}

func (e *UniqueViolation) Unwrap() error {
	return e.Err
}

func validationError(fields validation.FieldErrors) error {
	return oops.Code(CodeValidationFailed).
		With("fields", fields.Keys()).
		Wrap(fields)
}

func emailTakenError(email string) error {
	return oops.Code(CodeEmailTaken).
		With("email", email).
		Wrap(validation.FieldErrors{"email": "email is already registered"})
}

func sirenTakenError(siren string) error {
	return oops.Code(CodeSirenTaken).
		With("siren_number", siren).
		Wrap(validation.FieldErrors{"siren_number": "siren_number is already registered"})
}

func invalidCredentialsError() error {
	return oops.Code(CodeInvalidCredentials).Errorf("invalid email or password")
}

// conflictFromConstraint converts a unique violation into the matching
// conflict error, or returns nil for constraints the registry does not own.
func conflictFromConstraint(err error, email, siren string) error {
	var uv *UniqueViolation
	if !errors.As(err, &uv) {
		return nil
	}
	switch uv.Constraint {
	case ConstraintPrincipalEmail:
		return emailTakenError(email)
	case ConstraintCompanySiren:
		return sirenTakenError(siren)
	default:
		return nil
	}
}
