// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-user-gate/internal/utils"
	"github.com/MKhiriev/go-user-gate/models"
)

const maxRequestBodyBytes = 1 << 20

// decodeRequest reads a JSON body into dst and validates it.
func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	return h.validator.Validate(r.Context(), dst)
}

func userIDFromPath(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidUserID
	}
	return id, nil
}

// principalFromRequest returns the identity stored by the auth middleware.
// Routes that call it are always behind that middleware.
func principalFromRequest(r *http.Request) models.Principal {
	principal, _ := utils.GetPrincipalFromContext(r.Context())
	return principal
}
