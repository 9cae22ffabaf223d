// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/samber/oops"

	"github.com/expohub/expohub/internal/account"
	"github.com/expohub/expohub/internal/validation"
	"github.com/expohub/expohub/pkg/errutil"
)

// Client-facing messages.
const (
	msgRegistered         = "Inscription réussie !"
	msgLoggedIn           = "Connexion réussie !"
	msgLoggedOut          = "Déconnexion réussie !"
	msgProfileUpdated     = "Profil mis à jour"
	msgDocumentCreated    = "Document créé avec succès"
	msgEmailTaken         = "Cet email est déjà utilisé"
	msgEmailAvailable     = "Email disponible"
	msgValidation         = "Erreur de validation"
	msgInvalidCredentials = "Email ou mot de passe incorrect"
	msgUnauthenticated    = "Non authentifié"
	msgForbidden          = "Accès refusé"
	msgInternal           = "internal server error"
)

// CodeMalformedRequest is returned when a request body is not a JSON object.
const CodeMalformedRequest = "REQUEST_MALFORMED"

const maxBodyBytes = 1 << 20

func init() {
	account.RegisterCategory(CodeMalformedRequest, account.CategoryValidation)
}

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // client may have disconnected
	json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

// writeError maps err to a status code. Internal errors are logged and the
// client only receives an opaque message.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch account.Classify(err) {
	case account.CategoryValidation, account.CategoryConflict:
		writeJSON(w, http.StatusUnprocessableEntity, envelope{
			Message: msgValidation,
			Errors:  fieldErrors(err),
		})
	case account.CategoryAuth:
		msg := msgUnauthenticated
		if errutil.HasCode(err, account.CodeInvalidCredentials) {
			msg = msgInvalidCredentials
		}
		writeJSON(w, http.StatusUnauthorized, envelope{Message: msg})
	case account.CategoryForbidden:
		writeJSON(w, http.StatusForbidden, envelope{Message: msgForbidden})
	default:
		errutil.LogErrorContext(r.Context(), a.logger, "request failed", err,
			"method", r.Method, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, envelope{Message: msgInternal})
	}
}

func fieldErrors(err error) map[string][]string {
	fields := validation.Fields(err)
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string][]string, len(fields))
	for k, msg := range fields {
		out[k] = []string{msg}
	}
	return out
}

// decode reads a JSON object from the request body into dst.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(body).Decode(dst)
	if err == nil {
		return nil
	}

	msg := "request body must be a JSON object"
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		msg = "request body is required"
	case errors.As(err, &maxErr):
		msg = "request body is too large"
	}
	return oops.Code(CodeMalformedRequest).
		With("path", r.URL.Path).
		Wrap(validation.FieldErrors{"body": msg})
}
