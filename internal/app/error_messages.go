// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains the client-facing message strings of the HTTP API.
//
// Msg* error texts are sent inside the {"message": "Error: ..."} envelope;
// MsgPendingApproval is the one error text sent without the prefix.
// Success texts are sent as {"message": "..."}.
package app

// Error texts.
const (
	MsgInvalidJSON       = "Invalid JSON was passed!"
	MsgInvalidUserID     = "Invalid user id!"
	MsgUnauthorized      = "Unauthorized!"
	MsgTooManyRequests   = "Too many requests, please try again later!"
	MsgAccessDenied      = "Access denied!"
	MsgInternalServerErr = "internal server error"

	MsgInvalidLoginPassword = "Invalid username or password!"
	MsgPendingApproval      = "Your account is pending admin approval. Please wait for approval before logging in."
	MsgUsernameTaken        = "Username is already taken!"
	MsgEmailTaken           = "Email is already in use!"
	MsgEmailNotFound        = "Email not found!"
	MsgUserNotFound         = "User not found!"

	MsgInvalidOrExpiredOTP    = "Invalid or expired OTP!"
	MsgInvalidOrUnverifiedOTP = "Invalid or unverified OTP request!"
	MsgWrongOldPassword       = "Old password is incorrect!"
	MsgSamePassword           = "New password must be different from old password!"
	MsgCannotDeleteSelf       = "You cannot delete your own account!"
)

// Success texts.
const (
	MsgUserRegistered   = "User registered successfully! Your account is pending admin approval."
	MsgOTPSent          = "OTP sent to your email!"
	MsgOTPVerified      = "OTP verified successfully!"
	MsgPasswordReset    = "Password reset successfully!"
	MsgProfileUpdated   = "Profile updated successfully!"
	MsgPasswordChanged  = "Password changed successfully!"
	MsgUserRolesUpdated = "User roles updated successfully!"
	MsgUserDeleted      = "User deleted successfully!"
	MsgUserApproved     = "User approved successfully!"
	MsgUserRejected     = "User rejected and deleted!"
)
