// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/expohub/expohub/internal/account"
	"github.com/expohub/expohub/internal/document"
)

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in account.RegistrationInput
	if err := decode(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}

	res, err := a.accounts.Register(r.Context(), in, clientInfo(r))
	if a.metrics != nil {
		userType := "unknown"
		if kind, ok := account.ParseKind(in.UserType); ok {
			userType = kind.UserType()
		}
		a.metrics.RegistrationsTotal.WithLabelValues(userType, outcome(err)).Inc()
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	a.logger.InfoContext(r.Context(), "principal registered",
		"principal_id", res.Account.Principal.ID.String(),
		"user_type", res.Account.Principal.Kind.UserType())
	writeOK(w, http.StatusCreated, msgRegistered, authJSON{User: toUser(res.Account), Token: res.Token})
}

func (a *API) handleCheckEmail(w http.ResponseWriter, r *http.Request) {
	var in account.EmailInput
	if err := decode(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}

	available, err := a.accounts.CheckEmailAvailable(r.Context(), in.Email)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	resp := checkEmailJSON{Exists: !available, Message: msgEmailAvailable}
	if !available {
		resp.Message = msgEmailTaken
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in account.LoginInput
	if err := decode(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}

	res, err := a.accounts.Login(r.Context(), in, clientInfo(r))
	if a.metrics != nil {
		a.metrics.LoginsTotal.WithLabelValues(outcome(err)).Inc()
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, msgLoggedIn, authJSON{User: toUser(res.Account), Token: res.Token})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request, id *account.Identity) {
	if err := a.accounts.Logout(r.Context(), id.Session.ID); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, msgLoggedOut, nil)
}

func (a *API) handleCurrentUser(w http.ResponseWriter, _ *http.Request, id *account.Identity) {
	writeOK(w, http.StatusOK, "", toUser(id.Account))
}

func (a *API) handleUpdateProfile(w http.ResponseWriter, r *http.Request, id *account.Identity) {
	var in account.ProfileInput
	if err := decode(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}

	acct, err := a.accounts.UpdateProfile(r.Context(), id.Account.Principal.ID, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, msgProfileUpdated, toUser(acct))
}

func (a *API) handleCreateDocument(w http.ResponseWriter, r *http.Request, id *account.Identity) {
	var in document.Input
	if err := decode(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}

	doc, err := a.documents.Create(r.Context(), id.Account, in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, msgDocumentCreated, toDocument(doc))
}

func (a *API) handleListDocuments(w http.ResponseWriter, r *http.Request, id *account.Identity) {
	raw := chi.URLParam(r, "userId")
	owner, err := ulid.Parse(raw)
	if err != nil {
		// Not a principal id, so never the caller's own.
		a.writeError(w, r, oops.Code(document.CodeForbidden).With("user_id", raw).Wrap(err))
		return
	}

	docs, err := a.documents.List(r.Context(), id.Account, owner)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", toDocuments(docs))
}
