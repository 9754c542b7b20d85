// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http implements the HTTP transport layer of the application.
//
// It exposes the REST API under /api: sign-in, sign-up and password recovery
// for anonymous callers, profile management for authenticated users and the
// administration endpoints for ROLE_ADMIN. Request tracing, access logging,
// authentication and rate limiting are handled here before requests reach
// the service layer.
package http
