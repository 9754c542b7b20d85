// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/go-user-gate/internal/app"
	"github.com/MKhiriev/go-user-gate/internal/utils"
	"github.com/MKhiriev/go-user-gate/models"
)

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.services.UserService.Profile(r.Context(), principalFromRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.NewUserResponse(user), http.StatusOK)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.services.UserService.UpdateProfile(r.Context(), principalFromRequest(r), req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteMessage(w, app.MsgProfileUpdated, http.StatusOK)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.services.UserService.ChangePassword(r.Context(), principalFromRequest(r), req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteMessage(w, app.MsgPasswordChanged, http.StatusOK)
}
