// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"net/http"

	"github.com/MKhiriev/go-user-gate/internal/app"
	"github.com/MKhiriev/go-user-gate/internal/utils"
	"github.com/MKhiriev/go-user-gate/models"
)

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.services.AdminService.ListUsers(r.Context(), principalFromRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.NewUserResponses(users), http.StatusOK)
}

func (h *Handler) listPendingUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.services.AdminService.PendingUsers(r.Context(), principalFromRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.NewUserResponses(users), http.StatusOK)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.services.AdminService.GetUser(r.Context(), principalFromRequest(r), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteJSON(w, models.NewUserResponse(user), http.StatusOK)
}

func (h *Handler) updateUserRoles(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromPath(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req models.UpdateRolesRequest
	if err = h.decodeRequest(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err = h.services.AdminService.UpdateRoles(r.Context(), principalFromRequest(r), userID, req.Roles); err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteMessage(w, app.MsgUserRolesUpdated, http.StatusOK)
}

func (h *Handler) getStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.services.AdminService.Statistics(r.Context(), principalFromRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteJSON(w, stats, http.StatusOK)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	h.userAction(w, r, h.services.AdminService.DeleteUser, app.MsgUserDeleted)
}

func (h *Handler) approveUser(w http.ResponseWriter, r *http.Request) {
	h.userAction(w, r, h.services.AdminService.Approve, app.MsgUserApproved)
}

func (h *Handler) rejectUser(w http.ResponseWriter, r *http.Request) {
	h.userAction(w, r, h.services.AdminService.Reject, app.MsgUserRejected)
}

// userAction runs an admin operation on the user named by the {id} path
// parameter and answers with message on success.
func (h *Handler) userAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, principal models.Principal, userID int64) error,
	message string,
) {
	userID, err := userIDFromPath(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err = action(r.Context(), principalFromRequest(r), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	utils.WriteMessage(w, message, http.StatusOK)
}
