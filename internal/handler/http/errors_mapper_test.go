// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/go-user-gate/internal/app"
	"github.com/MKhiriev/go-user-gate/internal/service"
	"github.com/MKhiriev/go-user-gate/internal/store"
	"github.com/MKhiriev/go-user-gate/internal/validators"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid json", fmt.Errorf("%w: unexpected EOF", ErrInvalidJSON), http.StatusBadRequest},
		{"validation", &validators.ValidationError{Fields: map[string]string{"email": "is required"}}, http.StatusBadRequest},
		{"unsupported type", validators.ErrUnsupportedType, http.StatusInternalServerError},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"pending", service.ErrPendingApproval, http.StatusForbidden},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"token", service.ErrTokenIsExpiredOrInvalid, http.StatusUnauthorized},
		{"wrapped store error", fmt.Errorf("update: %w", store.ErrEmailAlreadyExists), http.StatusBadRequest},
		{"rate limited", ErrTooManyCalls, http.StatusTooManyRequests},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFromError(tt.err))
		})
	}
}

func TestMessageFromError(t *testing.T) {
	validation := &validators.ValidationError{Fields: map[string]string{
		"username": "is required",
		"email":    "must be a valid email address",
	}}

	assert.Equal(t, "Validation failed: email must be a valid email address; username is required",
		messageFromError(validation, http.StatusBadRequest))
	assert.Equal(t, "Email is already in use!", messageFromError(store.ErrEmailAlreadyExists, http.StatusBadRequest))
	assert.Equal(t, "internal server error", messageFromError(errors.New("dial tcp: refused"), http.StatusInternalServerError))
	assert.Equal(t, "internal server error", messageFromError(service.ErrTokenCreationFailed, http.StatusInternalServerError))
}

func TestErrorMaps_SameKeys(t *testing.T) {
	for target := range errorMessageMap {
		_, ok := errorStatusMap[target]
		assert.True(t, ok, "no status for %v", target)
	}
}

func TestWriteServiceError_Envelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	writeServiceError(rec, req, service.ErrEmailNotFound)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"Error: Email not found!"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	writeServiceError(rec, req, service.ErrPendingApproval)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"`+app.MsgPendingApproval+`"}`, rec.Body.String())
}
