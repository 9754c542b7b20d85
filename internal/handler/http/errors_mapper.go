// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-user-gate/internal/app"
	"github.com/MKhiriev/go-user-gate/internal/logger"
	"github.com/MKhiriev/go-user-gate/internal/service"
	"github.com/MKhiriev/go-user-gate/internal/store"
	"github.com/MKhiriev/go-user-gate/internal/utils"
	"github.com/MKhiriev/go-user-gate/internal/validators"
)

// Every key must match a disjoint set of errors: the lookup order over the
// map is random.
var errorStatusMap = map[error]int{
	ErrInvalidJSON:                http.StatusBadRequest,
	ErrInvalidUserID:              http.StatusBadRequest,
	ErrEmptyAuthorizationHeader:   http.StatusUnauthorized,
	ErrInvalidAuthorizationHeader: http.StatusUnauthorized,
	ErrTooManyCalls:               http.StatusTooManyRequests,
	validators.ErrInvalidRequest:  http.StatusBadRequest,
	validators.ErrUnsupportedType: http.StatusInternalServerError,
	validators.ErrUnknownField:    http.StatusInternalServerError,

	service.ErrUsernameTaken:           http.StatusBadRequest,
	service.ErrEmailTaken:              http.StatusBadRequest,
	service.ErrEmailNotFound:           http.StatusBadRequest,
	service.ErrInvalidCredentials:      http.StatusUnauthorized,
	service.ErrPendingApproval:         http.StatusForbidden,
	service.ErrInvalidOrExpiredOTP:     http.StatusBadRequest,
	service.ErrInvalidOrUnverifiedOTP:  http.StatusBadRequest,
	service.ErrWrongOldPassword:        http.StatusBadRequest,
	service.ErrSamePassword:            http.StatusBadRequest,
	service.ErrCannotDeleteSelf:        http.StatusBadRequest,
	service.ErrForbidden:               http.StatusForbidden,
	service.ErrTokenIsExpiredOrInvalid: http.StatusUnauthorized,
	service.ErrTokenCreationFailed:     http.StatusInternalServerError,

	store.ErrUserNotFound:          http.StatusBadRequest,
	store.ErrUsernameAlreadyExists: http.StatusBadRequest,
	store.ErrEmailAlreadyExists:    http.StatusBadRequest,
}

// errorMessageMap holds the client-facing text for errors whose own message
// is not meant for clients. Errors missing here are answered with a generic
// text for their status.
var errorMessageMap = map[error]string{
	ErrInvalidJSON:                app.MsgInvalidJSON,
	ErrInvalidUserID:              app.MsgInvalidUserID,
	ErrEmptyAuthorizationHeader:   app.MsgUnauthorized,
	ErrInvalidAuthorizationHeader: app.MsgUnauthorized,
	ErrTooManyCalls:               app.MsgTooManyRequests,

	service.ErrUsernameTaken:           app.MsgUsernameTaken,
	service.ErrEmailTaken:              app.MsgEmailTaken,
	service.ErrEmailNotFound:           app.MsgEmailNotFound,
	service.ErrInvalidCredentials:      app.MsgInvalidLoginPassword,
	service.ErrPendingApproval:         app.MsgPendingApproval,
	service.ErrInvalidOrExpiredOTP:     app.MsgInvalidOrExpiredOTP,
	service.ErrInvalidOrUnverifiedOTP:  app.MsgInvalidOrUnverifiedOTP,
	service.ErrWrongOldPassword:        app.MsgWrongOldPassword,
	service.ErrSamePassword:            app.MsgSamePassword,
	service.ErrCannotDeleteSelf:        app.MsgCannotDeleteSelf,
	service.ErrForbidden:               app.MsgAccessDenied,
	service.ErrTokenIsExpiredOrInvalid: app.MsgUnauthorized,

	store.ErrUserNotFound:          app.MsgUserNotFound,
	store.ErrUsernameAlreadyExists: app.MsgUsernameTaken,
	store.ErrEmailAlreadyExists:    app.MsgEmailTaken,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

func messageFromError(err error, status int) string {
	var validationErr *validators.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}

	for target, message := range errorMessageMap {
		if errors.Is(err, target) {
			return message
		}
	}

	if status >= http.StatusInternalServerError {
		return app.MsgInternalServerErr
	}
	return http.StatusText(status)
}

// writeServiceError answers with the status and envelope for err. Server
// errors are logged with the request logger.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)

	status := statusFromError(err)
	message := messageFromError(err, status)

	if status >= http.StatusInternalServerError {
		log.Err(err).Int("status", status).Msg("request failed")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	if errors.Is(err, service.ErrPendingApproval) {
		utils.WriteMessage(w, message, status)
		return
	}
	utils.WriteError(w, message, status)
}
