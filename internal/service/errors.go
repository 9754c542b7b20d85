// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

// Startup / configuration errors.
var (
	ErrVersionIsNotSpecified = errors.New("app version is not specified")
	ErrRoleNotSeeded         = errors.New("role reference data is not seeded")
)

var (
	ErrUsernameTaken = errors.New("username is already taken")
	ErrEmailTaken    = errors.New("email is already in use")
	ErrEmailNotFound = errors.New("email not found")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPendingApproval is only returned after the password matched.
	ErrPendingApproval = errors.New("account is pending admin approval")

	ErrInvalidOrExpiredOTP    = errors.New("invalid or expired one-time code")
	ErrInvalidOrUnverifiedOTP = errors.New("invalid or unverified one-time code")

	ErrWrongOldPassword = errors.New("old password is incorrect")
	ErrSamePassword     = errors.New("new password must be different from old password")

	ErrCannotDeleteSelf = errors.New("cannot delete own account")
	ErrForbidden        = errors.New("access denied")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	ErrDummyHashFailed = errors.New("error preparing unknown-user password hash")
)
