// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package httpapi

import (
	"time"

	"github.com/expohub/expohub/internal/account"
	"github.com/expohub/expohub/internal/document"
)

type companyJSON struct {
	ID          string `json:"id"`
	CompanyName string `json:"company_name"`
	SirenNumber string `json:"siren_number"`
}

type userJSON struct {
	ID        string       `json:"id"`
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`
	Email     string       `json:"email"`
	UserType  string       `json:"user_type"`
	Company   *companyJSON `json:"company"`
}

type authJSON struct {
	User  userJSON `json:"user"`
	Token string   `json:"token"`
}

type checkEmailJSON struct {
	Exists  bool   `json:"exists"`
	Message string `json:"message"`
}

type documentJSON struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	URL       *string   `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

func toUser(a *account.Account) userJSON {
	p := a.Principal
	u := userJSON{
		ID:        p.ID.String(),
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		UserType:  p.Kind.UserType(),
	}
	if a.Company != nil {
		u.Company = &companyJSON{
			ID:          a.Company.ID.String(),
			CompanyName: a.Company.Name,
			SirenNumber: a.Company.SirenNumber,
		}
	}
	return u
}

func toDocument(d *document.Document) documentJSON {
	out := documentJSON{
		ID:        d.ID.String(),
		UserID:    d.PrincipalID.String(),
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
	}
	if d.URL != "" {
		url := d.URL
		out.URL = &url
	}
	return out
}

func toDocuments(docs []*document.Document) []documentJSON {
	out := make([]documentJSON, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocument(d))
	}
	return out
}
