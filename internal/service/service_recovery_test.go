// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-user-gate/internal/adapter"
	"github.com/MKhiriev/go-user-gate/internal/utils"
	"github.com/MKhiriev/go-user-gate/models"
)

func (f *fixture) passwordIs(t *testing.T, username, password string) bool {
	t.Helper()

	user, err := f.mem.FindUserByUsername(context.Background(), username)
	require.NoError(t, err)
	return utils.CheckPassword(user.PasswordHash, password)
}

func TestRecoveryService_FullFlow(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", "alice@example.com", "old-secret", true)
	ctx := context.Background()

	f.codes = []string{"483920"}
	f.mailer.EXPECT().SendOTP(gomock.Any(), "alice@example.com", "483920").Return(nil)

	require.NoError(t, f.recovery.ForgotPassword(ctx, "alice@example.com"))

	assert.ErrorIs(t, f.recovery.VerifyOTP(ctx, "alice@example.com", "483910"), ErrInvalidOrExpiredOTP)
	require.NoError(t, f.recovery.VerifyOTP(ctx, "alice@example.com", "483920"))

	require.NoError(t, f.recovery.ResetPassword(ctx, "alice@example.com", "483920", "new-secret"))
	assert.True(t, f.passwordIs(t, "alice", "new-secret"))

	alice, err := f.mem.FindUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	_, ok, err := f.otp.FindVerified(ctx, alice.UserID)
	require.NoError(t, err)
	assert.False(t, ok, "code must be gone after reset")

	err = f.recovery.ResetPassword(ctx, "alice@example.com", "483920", "third-secret")
	assert.ErrorIs(t, err, ErrInvalidOrUnverifiedOTP)
	assert.True(t, f.passwordIs(t, "alice", "new-secret"))
}

func TestRecoveryService_UnknownEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.recovery.ForgotPassword(ctx, "nobody@example.com"), ErrEmailNotFound)
	assert.ErrorIs(t, f.recovery.VerifyOTP(ctx, "nobody@example.com", "123456"), ErrEmailNotFound)
	assert.ErrorIs(t, f.recovery.ResetPassword(ctx, "nobody@example.com", "123456", "new-secret"), ErrEmailNotFound)
}

func TestRecoveryService_ForgotPassword_DeliveryFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", "old-secret", true)
	ctx := context.Background()

	f.codes = []string{"483920"}
	f.mailer.EXPECT().SendOTP(gomock.Any(), "alice@example.com", "483920").Return(adapter.ErrDeliveryFailed)

	require.NoError(t, f.recovery.ForgotPassword(ctx, "alice@example.com"))

	otp, ok, err := f.otp.FindVerified(ctx, alice.UserID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "483920", otp.Code)
}

func TestRecoveryService_ResetPassword_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		verify  bool
		advance time.Duration
		code    string
	}{
		{name: "not verified", verify: false, code: "483920"},
		{name: "wrong code", verify: true, code: "111111"},
		{name: "expired after verification", verify: true, advance: models.OTPValidity + time.Second, code: "483920"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			alice := f.addUser(t, "alice", "alice@example.com", "old-secret", true)
			ctx := context.Background()

			f.codes = []string{"483920"}
			f.mailer.EXPECT().SendOTP(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			require.NoError(t, f.recovery.ForgotPassword(ctx, "alice@example.com"))

			if tt.verify {
				require.NoError(t, f.recovery.VerifyOTP(ctx, "alice@example.com", "483920"))
			}
			f.clock.advance(tt.advance)

			err := f.recovery.ResetPassword(ctx, "alice@example.com", tt.code, "new-secret")
			assert.ErrorIs(t, err, ErrInvalidOrUnverifiedOTP)
			assert.True(t, f.passwordIs(t, "alice", "old-secret"))

			_, ok, err := f.otp.FindVerified(ctx, alice.UserID)
			require.NoError(t, err)
			assert.True(t, ok, "a rejected reset leaves the code in place")
		})
	}
}

func TestRecoveryService_ReissueInvalidatesVerifiedCode(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", "alice@example.com", "old-secret", true)
	ctx := context.Background()

	f.codes = []string{"483920", "654321"}
	f.mailer.EXPECT().SendOTP(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	require.NoError(t, f.recovery.ForgotPassword(ctx, "alice@example.com"))
	require.NoError(t, f.recovery.VerifyOTP(ctx, "alice@example.com", "483920"))
	require.NoError(t, f.recovery.ForgotPassword(ctx, "alice@example.com"))

	err := f.recovery.ResetPassword(ctx, "alice@example.com", "483920", "new-secret")
	assert.ErrorIs(t, err, ErrInvalidOrUnverifiedOTP)
	assert.True(t, f.passwordIs(t, "alice", "old-secret"))
}

// supersedingOTPManager re-issues the user's code right after the reset flow
// has read it, outside of the reset transaction.
type supersedingOTPManager struct {
	OTPManager
	afterFind func()
}

func (m *supersedingOTPManager) FindVerified(ctx context.Context, userID int64) (models.OneTimeCode, bool, error) {
	otp, ok, err := m.OTPManager.FindVerified(ctx, userID)
	m.afterFind()
	return otp, ok, err
}

func TestRecoveryService_ResetPassword_SupersededDuringReset(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", "old-secret", true)
	ctx := context.Background()

	f.codes = []string{"483920"}
	f.mailer.EXPECT().SendOTP(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	require.NoError(t, f.recovery.ForgotPassword(ctx, "alice@example.com"))
	require.NoError(t, f.recovery.VerifyOTP(ctx, "alice@example.com", "483920"))

	f.recovery.otpManager = &supersedingOTPManager{
		OTPManager: f.otp,
		afterFind: func() {
			_, err := f.mem.UpsertOTP(context.Background(), models.OneTimeCode{
				UserID:    alice.UserID,
				Code:      "777777",
				CreatedAt: testNow,
				ExpiresAt: testNow.Add(models.OTPValidity),
			})
			require.NoError(t, err)
		},
	}

	err := f.recovery.ResetPassword(ctx, "alice@example.com", "483920", "new-secret")
	assert.ErrorIs(t, err, ErrInvalidOrUnverifiedOTP)
	assert.True(t, f.passwordIs(t, "alice", "old-secret"), "password update must be rolled back")

	otp, ok, err := f.otp.FindVerified(ctx, alice.UserID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "777777", otp.Code)
	assert.False(t, otp.Verified)
}

func TestRecoveryService_ResetPassword_ConsumedAndReissuedDuringReset(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", "old-secret", true)
	ctx := context.Background()

	f.codes = []string{"483920"}
	f.mailer.EXPECT().SendOTP(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	require.NoError(t, f.recovery.ForgotPassword(ctx, "alice@example.com"))
	require.NoError(t, f.recovery.VerifyOTP(ctx, "alice@example.com", "483920"))

	// another reset with the same code commits, then a new code is requested
	f.recovery.otpManager = &supersedingOTPManager{
		OTPManager: f.otp,
		afterFind: func() {
			require.NoError(t, f.mem.DeleteOTP(context.Background(), alice.UserID))
			_, err := f.mem.UpsertOTP(context.Background(), models.OneTimeCode{
				UserID:    alice.UserID,
				Code:      "777777",
				CreatedAt: testNow,
				ExpiresAt: testNow.Add(models.OTPValidity),
			})
			require.NoError(t, err)
		},
	}

	err := f.recovery.ResetPassword(ctx, "alice@example.com", "483920", "new-secret")
	assert.ErrorIs(t, err, ErrInvalidOrUnverifiedOTP)
	assert.True(t, f.passwordIs(t, "alice", "old-secret"))

	fresh := f.storedOTP(t, alice.UserID)
	assert.Equal(t, "777777", fresh.Code)
	assert.False(t, fresh.Verified)
}
