// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package account

import (
	"strings"

	"github.com/expohub/expohub/internal/validation"
)

const (
	tagCompanyName = "required,max=255"
	tagSirenNumber = "required,len=9,number"
)

// RegistrationInput carries the fields of a registration request.
type RegistrationInput struct {
	FirstName   string `json:"firstName" validate:"required,max=255"`
	LastName    string `json:"lastName" validate:"required,max=255"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required"`
	UserType    string `json:"user_type" validate:"required,oneof=visiteur exposant visitor exhibitor"`
	CompanyName string `json:"company_name,omitempty"`
	SirenNumber string `json:"siren_number,omitempty"`
}

func (in *RegistrationInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = NormalizeEmail(in.Email)
	in.UserType = strings.ToLower(strings.TrimSpace(in.UserType))
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.SirenNumber = strings.TrimSpace(in.SirenNumber)
}

// validate checks field rules. Company fields are only checked for
// exhibitors and ignored for visitors.
func (in *RegistrationInput) validate(v *validation.Validator, policy PasswordPolicy) validation.FieldErrors {
	errs := v.Struct(in)

	if _, failed := errs["password"]; !failed {
		if msg := policy.Check(in.Password); msg != "" {
			errs["password"] = msg
		}
	}

	if kind, ok := ParseKind(in.UserType); ok && kind.OwnsCompany() {
		if msg := v.Var("company_name", in.CompanyName, tagCompanyName); msg != "" {
			errs["company_name"] = msg
		}
		if msg := v.Var("siren_number", in.SirenNumber, tagSirenNumber); msg != "" {
			errs["siren_number"] = msg
		}
	}
	return errs
}

// LoginInput carries the fields of a login request.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput carries a partial profile update. Nil fields are left as is.
type ProfileInput struct {
	FirstName   *string `json:"firstName,omitempty" validate:"omitnil,min=1,max=255"`
	LastName    *string `json:"lastName,omitempty" validate:"omitnil,min=1,max=255"`
	CompanyName *string `json:"company_name,omitempty" validate:"omitnil,min=1,max=255"`
}

func (in *ProfileInput) normalize() {
	for _, f := range []*string{in.FirstName, in.LastName, in.CompanyName} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

// EmailInput carries the single field of an availability check.
type EmailInput struct {
	Email string `json:"email" validate:"required,email,max=255"`
}
