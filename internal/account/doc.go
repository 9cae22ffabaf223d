// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

// Package account registers and authenticates the principals of the event
// platform.
//
// A principal is either a visitor or an exhibitor. Exhibitors own exactly one
// company identified by its SIREN number. Both kinds share a single email
// namespace: an address registered as a visitor cannot be reused by an
// exhibitor and vice versa.
//
// Authentication issues opaque bearer tokens. The plaintext token is returned
// once to the client; only its SHA-256 is persisted, so a leaked sessions
// table cannot be replayed.
//
// Errors carry oops codes. Classify maps a code to the category the transport
// layer turns into a status code.
package account
