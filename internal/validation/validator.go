// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

// Package validation wraps go-playground/validator and reports failures as
// a map keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors maps a request field name to a human readable message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := f.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, f[k]))
	}
	return strings.Join(parts, "; ")
}

// Keys returns the field names in sorted order.
func (f FieldErrors) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge copies entries from other that are not already present.
func (f FieldErrors) Merge(other FieldErrors) {
	for k, v := range other {
		if _, ok := f[k]; !ok {
			f[k] = v
		}
	}
}

// Fields extracts the field errors carried by err, if any.
func Fields(err error) FieldErrors {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}

// Validator validates structs tagged with `validate:"..."`.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator that names fields after their json tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates s and returns the failing fields. The result is empty
// when s is valid.
func (v *Validator) Struct(s any) FieldErrors {
	errs := FieldErrors{}
	err := v.validate.Struct(s)
	if err == nil {
		return errs
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["_error"] = "invalid payload"
		return errs
	}

	for _, e := range validationErrors {
		if _, seen := errs[e.Field()]; !seen {
			errs[e.Field()] = messageFor(e.Field(), e.Tag(), e.Param())
		}
	}
	return errs
}

// Var validates a single value against tag and returns the message for the
// first failing rule, or "".
func (v *Validator) Var(field string, value any, tag string) string {
	err := v.validate.Var(value, tag)
	if err == nil {
		return ""
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		e := validationErrors[0]
		return messageFor(field, e.Tag(), e.Param())
	}
	return fmt.Sprintf("%s is invalid", field)
}

func messageFor(field, tag, param string) string {
	switch tag {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, param)
	case "number":
		return fmt.Sprintf("%s must contain only digits", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
