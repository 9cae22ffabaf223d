// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Expohub Contributors

// Package httpapi exposes the account registry and documents over a JSON
// HTTP API.
//
// Every response except /check-email uses the envelope
//
//	{"success": bool, "message": string, "data": ..., "errors": {field: [messages]}}
//
// Authenticated routes read an "Authorization: Bearer <token>" header; the
// resolved identity is handed to the handler as an argument.
package httpapi
