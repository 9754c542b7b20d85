// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter contains the outbound collaborators of the application:
// the mail transport that delivers one-time codes on the server side and the
// REST client the CLI uses to talk to the server.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-user-gate/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// Mailer delivers a one-time code to an e-mail address out of band.
//
// Delivery is fire-and-forget from the caller's point of view: an error only
// tells the caller that the code did not leave the process.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}

// AuthAdapter is the client-side view of the server's REST API.
//
// SignIn stores the returned bearer token; every method that needs an
// authenticated caller sends it in the Authorization header.
type AuthAdapter interface {
	SetToken(token string)
	Token() string

	SignUp(ctx context.Context, req models.SignUpRequest) (string, error)
	SignIn(ctx context.Context, req models.SignInRequest) (models.JWTResponse, error)
	ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (string, error)
	VerifyOTP(ctx context.Context, req models.VerifyOTPRequest) (string, error)
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (string, error)

	Profile(ctx context.Context) (models.UserResponse, error)
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (string, error)

	PendingUsers(ctx context.Context) ([]models.UserResponse, error)
	ApproveUser(ctx context.Context, userID int64) (string, error)

	Version(ctx context.Context) (string, error)
}
