// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-user-gate/models"
)

var errAbort = errors.New("abort")

func seedMemUser(t *testing.T, s *MemoryStorage, username string) models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash-" + username,
		Roles:        []models.Role{models.RoleUser},
	})
	require.NoError(t, err)
	return u
}

func TestMemoryStorage_RollbackKeepsOutsidePasswordChange(t *testing.T) {
	s := NewMemoryStorage()
	alice := seedMemUser(t, s, "alice")
	ctx := context.Background()

	err := s.WithinTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, s.UpdatePassword(txCtx, alice.UserID, "hash-reset"))
		// a password change committed by another request
		require.NoError(t, s.UpdatePassword(ctx, alice.UserID, "hash-changed"))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	found, err := s.FindUserByID(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, "hash-changed", found.PasswordHash)
}

func TestMemoryStorage_RollbackRestoresUntouchedWrites(t *testing.T) {
	s := NewMemoryStorage()
	alice := seedMemUser(t, s, "alice")
	ctx := context.Background()

	err := s.WithinTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, s.UpdatePassword(txCtx, alice.UserID, "hash-reset"))
		require.NoError(t, s.ReplaceRoles(txCtx, alice.UserID, []models.Role{models.RoleUser, models.RoleAdmin}))
		alice.Approved = models.BoolPtr(true)
		require.NoError(t, s.UpdateUser(txCtx, alice))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	found, err := s.FindUserByID(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, "hash-alice", found.PasswordHash)
	assert.Equal(t, []models.Role{models.RoleUser}, found.Roles)
	assert.False(t, found.IsApproved())
}

func TestMemoryStorage_RollbackKeepsOutsideRoleAndProfileChanges(t *testing.T) {
	s := NewMemoryStorage()
	alice := seedMemUser(t, s, "alice")
	ctx := context.Background()

	err := s.WithinTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, s.ReplaceRoles(txCtx, alice.UserID, []models.Role{models.RoleUser, models.RoleAdmin}))
		renamed := alice
		renamed.Username = "alice2"
		require.NoError(t, s.UpdateUser(txCtx, renamed))

		require.NoError(t, s.ReplaceRoles(ctx, alice.UserID, []models.Role{models.RoleUser, models.RoleModerator}))
		renamed.Username = "alice3"
		require.NoError(t, s.UpdateUser(ctx, renamed))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	found, err := s.FindUserByID(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice3", found.Username)
	assert.Equal(t, models.NormalizeRoles([]models.Role{models.RoleUser, models.RoleModerator}), found.Roles)
}

func TestMemoryStorage_RollbackKeepsOutsideOTPReissue(t *testing.T) {
	s := NewMemoryStorage()
	alice := seedMemUser(t, s, "alice")
	ctx := context.Background()
	now := time.Now().UTC()

	old, err := s.UpsertOTP(ctx, models.OneTimeCode{UserID: alice.UserID, Code: "111111", CreatedAt: now, ExpiresAt: now.Add(models.OTPValidity)})
	require.NoError(t, err)

	var fresh models.OneTimeCode
	err = s.WithinTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, s.DeleteOTPGeneration(txCtx, alice.UserID, old.Generation))
		fresh, err = s.UpsertOTP(ctx, models.OneTimeCode{UserID: alice.UserID, Code: "222222", CreatedAt: now, ExpiresAt: now.Add(models.OTPValidity)})
		require.NoError(t, err)
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	stored, err := s.FindOTPByUserID(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, fresh, stored)
}

func TestMemoryStorage_RollbackDeleteUserRestoresOTP(t *testing.T) {
	s := NewMemoryStorage()
	alice := seedMemUser(t, s, "alice")
	ctx := context.Background()
	now := time.Now().UTC()

	_, err := s.UpsertOTP(ctx, models.OneTimeCode{UserID: alice.UserID, Code: "111111", CreatedAt: now, ExpiresAt: now.Add(models.OTPValidity)})
	require.NoError(t, err)

	err = s.WithinTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, s.DeleteUser(txCtx, alice.UserID))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	found, err := s.FindUserByID(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)

	stored, err := s.FindOTPByUserID(ctx, alice.UserID)
	require.NoError(t, err)
	assert.Equal(t, "111111", stored.Code)
}
