// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-user-gate/models"
)

// RoleResolver maps free-form role tokens onto the closed role enumeration.
type RoleResolver interface {
	// Resolve never returns an empty set: no tokens means {ROLE_USER}.
	Resolve(tokens []string) []models.Role

	// EnsureSeeded fails with ErrRoleNotSeeded if any enumeration member is
	// missing from the reference data.
	EnsureSeeded(ctx context.Context) error
}

// OTPManager owns the one-time code lifecycle of a user: at most one code
// exists per user, it expires after models.OTPValidity and it can be
// verified once.
type OTPManager interface {
	Issue(ctx context.Context, userID int64) (string, error)
	Verify(ctx context.Context, userID int64, code string) (bool, error)

	// FindVerified returns the current code of the user whatever its
	// verified flag is; ok is false when there is none.
	FindVerified(ctx context.Context, userID int64) (otp models.OneTimeCode, ok bool, err error)

	Consume(ctx context.Context, userID int64) error

	// ConsumeGeneration deletes the code only if it is still the given
	// generation and fails with ErrInvalidOrUnverifiedOTP otherwise.
	ConsumeGeneration(ctx context.Context, userID, generation int64) error

	PurgeExpired(ctx context.Context) (int64, error)
}

// AuthService registers users and issues and parses session tokens.
type AuthService interface {
	SignUp(ctx context.Context, req models.SignUpRequest) (models.User, error)
	Authenticate(ctx context.Context, username, password string) (models.Session, error)
	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Principal, error)
}

// RecoveryService implements the forgot / verify / reset password flow keyed
// by e-mail.
type RecoveryService interface {
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// UserService is the self-service surface of an authenticated user.
type UserService interface {
	Profile(ctx context.Context, principal models.Principal) (models.User, error)
	UpdateProfile(ctx context.Context, principal models.Principal, req models.UpdateProfileRequest) error
	ChangePassword(ctx context.Context, principal models.Principal, req models.ChangePasswordRequest) error
}

// AdminService is the administration surface. Every method requires a
// principal holding ROLE_ADMIN.
type AdminService interface {
	ListUsers(ctx context.Context, principal models.Principal) ([]models.User, error)
	GetUser(ctx context.Context, principal models.Principal, userID int64) (models.User, error)
	PendingUsers(ctx context.Context, principal models.Principal) ([]models.User, error)
	Approve(ctx context.Context, principal models.Principal, userID int64) error
	Reject(ctx context.Context, principal models.Principal, userID int64) error
	DeleteUser(ctx context.Context, principal models.Principal, userID int64) error
	UpdateRoles(ctx context.Context, principal models.Principal, userID int64, tokens []string) error
	Statistics(ctx context.Context, principal models.Principal) (models.UserStatistics, error)
}

type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
