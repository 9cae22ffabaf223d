// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handler returns the router serving every API route.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.instrument)
	r.Use(middleware.Recoverer)
	if len(a.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   a.origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Post("/register", a.handleRegister)
	r.Post("/check-email", a.handleCheckEmail)
	r.Post("/login", a.handleLogin)

	r.Post("/logout", a.authenticated(a.handleLogout))
	r.Get("/user", a.authenticated(a.handleCurrentUser))
	r.Get("/profile", a.authenticated(a.handleCurrentUser))
	r.Put("/profile", a.authenticated(a.handleUpdateProfile))
	r.Post("/documents", a.authenticated(a.handleCreateDocument))
	r.Get("/users/{userId}/documents", a.authenticated(a.handleListDocuments))

	return r
}

// instrument logs each request and records its metrics under the matched
// route pattern.
func (a *API) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)

		if a.metrics != nil {
			a.metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			a.metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())
		}
		a.logger.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
