// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckHTTPMethod(t *testing.T) {
	h := newTestHandler(testServices())

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{name: "registered method", method: http.MethodGet, path: "/api/version", wantStatus: http.StatusOK},
		{name: "wrong method on static route", method: http.MethodPost, path: "/api/version", wantStatus: http.StatusNotFound},
		{name: "wrong method on auth route", method: http.MethodGet, path: "/api/auth/signin", wantStatus: http.StatusNotFound},
		{name: "wrong method on param route", method: http.MethodPatch, path: "/api/admin/users/3", wantStatus: http.StatusNotFound},
		{name: "unknown path", method: http.MethodGet, path: "/api/unknown", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, h, tt.method, tt.path, adminToken, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
