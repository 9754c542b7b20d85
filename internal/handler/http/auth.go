// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/go-user-gate/internal/app"
	"github.com/MKhiriev/go-user-gate/internal/logger"
	"github.com/MKhiriev/go-user-gate/internal/utils"
	"github.com/MKhiriev/go-user-gate/models"
)

const tokenType = "Bearer"

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	session, err := h.services.AuthService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	logger.FromRequest(r).Info().Int64("user_id", session.User.UserID).Msg("user signed in")

	utils.WriteJSON(w, models.JWTResponse{
		Token:    session.Token.SignedString,
		Type:     tokenType,
		ID:       session.User.UserID,
		Username: session.User.Username,
		Email:    session.User.Email,
		Roles:    session.User.RoleNames(),
	}, http.StatusOK)
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if _, err := h.services.AuthService.SignUp(r.Context(), req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteMessage(w, app.MsgUserRegistered, http.StatusOK)
}
