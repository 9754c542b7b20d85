// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import "errors"

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrInternalServerError = errors.New("internal server error")

	// ErrDeliveryUnavailable is returned by a Mailer that has no transport
	// configured.
	ErrDeliveryUnavailable = errors.New("delivery channel is not configured")

	// ErrDeliveryFailed wraps transport errors of a configured Mailer.
	ErrDeliveryFailed = errors.New("delivery failed")
)
