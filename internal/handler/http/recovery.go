// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/go-user-gate/internal/app"
	"github.com/MKhiriev/go-user-gate/internal/utils"
	"github.com/MKhiriev/go-user-gate/models"
)

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.services.RecoveryService.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteMessage(w, app.MsgOTPSent, http.StatusOK)
}

func (h *Handler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyOTPRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.services.RecoveryService.VerifyOTP(r.Context(), req.Email, req.OTPCode); err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteMessage(w, app.MsgOTPVerified, http.StatusOK)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := h.decodeRequest(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.services.RecoveryService.ResetPassword(r.Context(), req.Email, req.OTPCode, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteMessage(w, app.MsgPasswordReset, http.StatusOK)
}
