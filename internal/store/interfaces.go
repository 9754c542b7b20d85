// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-user-gate/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// UserRepository persists user accounts and their role assignments.
//
// Every lookup that finds nothing returns [ErrUserNotFound]. Unique
// constraint violations on insert or update are reported as
// [ErrUsernameAlreadyExists] or [ErrEmailAlreadyExists].
type UserRepository interface {
	// CreateUser inserts user together with its roles and returns the stored
	// record with UserID and CreatedAt populated.
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByID(ctx context.Context, userID int64) (models.User, error)
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// UpdateUser writes username, email and approval state of user.
	UpdateUser(ctx context.Context, user models.User) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	// ReplaceRoles swaps the full role set of a user.
	ReplaceRoles(ctx context.Context, userID int64, roles []models.Role) error
	DeleteUser(ctx context.Context, userID int64) error
	ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error)
}

// RoleRepository exposes the seeded role reference data.
type RoleRepository interface {
	// FindRoleByName returns [ErrRoleNotFound] when role was not seeded.
	FindRoleByName(ctx context.Context, role models.Role) (models.Role, error)
}

// OTPRepository holds at most one one-time code per user.
type OTPRepository interface {
	// UpsertOTP atomically replaces the user's code, resets the verified
	// flag and assigns a new random generation. The stored row is returned.
	UpsertOTP(ctx context.Context, otp models.OneTimeCode) (models.OneTimeCode, error)
	// MarkOTPVerified flips verified to true only for an unverified,
	// unexpired row whose code equals code. It reports whether a row changed.
	MarkOTPVerified(ctx context.Context, userID int64, code string, now time.Time) (bool, error)
	// FindOTPByUserID returns [ErrOTPNotFound] when the user has no code.
	FindOTPByUserID(ctx context.Context, userID int64) (models.OneTimeCode, error)
	// DeleteOTP removes the user's code. Missing rows are not an error.
	DeleteOTP(ctx context.Context, userID int64) error
	// DeleteOTPGeneration removes the user's code only while its generation
	// still equals generation, otherwise returns [ErrOTPSuperseded].
	DeleteOTPGeneration(ctx context.Context, userID int64, generation int64) error
	// DeleteExpiredOTPs removes codes that expired before the given instant.
	DeleteExpiredOTPs(ctx context.Context, before time.Time) (int64, error)
}

// Transactor runs fn inside a single storage transaction. Repository calls
// made with the ctx passed to fn join that transaction. Nested calls reuse
// the outer transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
