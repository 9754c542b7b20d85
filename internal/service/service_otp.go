// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/MKhiriev/go-user-gate/internal/config"
	"github.com/MKhiriev/go-user-gate/internal/logger"
	"github.com/MKhiriev/go-user-gate/internal/store"
	"github.com/MKhiriev/go-user-gate/models"
)

// Codes are drawn uniformly from [otpCodeMin, otpCodeMin+otpCodeSpan), so
// they always have models.OTPLength digits and never a leading zero.
const (
	otpCodeMin  = 100000
	otpCodeSpan = 900000
)

// otpManager stores codes through an OTPRepository. Issue runs its upsert in
// a transaction; Verify is a single conditional update, so a code flips to
// verified at most once even under concurrent calls.
type otpManager struct {
	otpRepository store.OTPRepository
	transactor    store.Transactor

	queryTimeout time.Duration

	now          func() time.Time
	generateCode func() (string, error)

	logger *logger.Logger
}

func NewOTPManager(otpRepository store.OTPRepository, transactor store.Transactor, cfg config.DB, logger *logger.Logger) OTPManager {
	return &otpManager{
		otpRepository: otpRepository,
		transactor:    transactor,
		queryTimeout:  cfg.QueryTimeout,
		now:           time.Now,
		generateCode:  generateOTPCode,
		logger:        logger,
	}
}

// generateOTPCode returns a uniformly random 6-digit decimal code.
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpCodeSpan))
	if err != nil {
		return "", fmt.Errorf("error generating one-time code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+otpCodeMin, 10), nil
}

// Issue replaces whatever code the user had with a fresh unverified one and
// returns it in plaintext for delivery.
func (m *otpManager) Issue(ctx context.Context, userID int64) (string, error) {
	log := logger.FromContext(ctx)

	ctx, cancel := withQueryTimeout(ctx, m.queryTimeout)
	defer cancel()

	code, err := m.generateCode()
	if err != nil {
		return "", err
	}

	now := m.now()
	otp := models.OneTimeCode{
		UserID:    userID,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(models.OTPValidity),
	}

	err = m.transactor.WithinTx(ctx, func(ctx context.Context) error {
		stored, err := m.otpRepository.UpsertOTP(ctx, otp)
		if err != nil {
			return err
		}
		otp = stored
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*otpManager.Issue").Int64("user_id", userID).Msg("error issuing one-time code")
		return "", fmt.Errorf("error issuing one-time code: %w", err)
	}

	log.Debug().Int64("user_id", userID).Int64("generation", otp.Generation).Msg("one-time code issued")
	return code, nil
}

// Verify marks the user's code verified when it is unverified, unexpired and
// equal to code. Any other case returns false and changes nothing.
func (m *otpManager) Verify(ctx context.Context, userID int64, code string) (bool, error) {
	if len(code) != models.OTPLength {
		return false, nil
	}

	ctx, cancel := withQueryTimeout(ctx, m.queryTimeout)
	defer cancel()

	ok, err := m.otpRepository.MarkOTPVerified(ctx, userID, code, m.now())
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*otpManager.Verify").Int64("user_id", userID).Msg("error verifying one-time code")
		return false, fmt.Errorf("error verifying one-time code: %w", err)
	}

	return ok, nil
}

func (m *otpManager) FindVerified(ctx context.Context, userID int64) (models.OneTimeCode, bool, error) {
	ctx, cancel := withQueryTimeout(ctx, m.queryTimeout)
	defer cancel()

	otp, err := m.otpRepository.FindOTPByUserID(ctx, userID)
	if errors.Is(err, store.ErrOTPNotFound) {
		return models.OneTimeCode{}, false, nil
	}
	if err != nil {
		return models.OneTimeCode{}, false, fmt.Errorf("error finding one-time code: %w", err)
	}

	return otp, true, nil
}

func (m *otpManager) Consume(ctx context.Context, userID int64) error {
	ctx, cancel := withQueryTimeout(ctx, m.queryTimeout)
	defer cancel()

	if err := m.otpRepository.DeleteOTP(ctx, userID); err != nil {
		return fmt.Errorf("error consuming one-time code: %w", err)
	}
	return nil
}

func (m *otpManager) ConsumeGeneration(ctx context.Context, userID, generation int64) error {
	ctx, cancel := withQueryTimeout(ctx, m.queryTimeout)
	defer cancel()

	err := m.otpRepository.DeleteOTPGeneration(ctx, userID, generation)
	if errors.Is(err, store.ErrOTPSuperseded) {
		return ErrInvalidOrUnverifiedOTP
	}
	if err != nil {
		return fmt.Errorf("error consuming one-time code: %w", err)
	}
	return nil
}

// PurgeExpired deletes every code that expired before now.
func (m *otpManager) PurgeExpired(ctx context.Context) (int64, error) {
	ctx, cancel := withQueryTimeout(ctx, m.queryTimeout)
	defer cancel()

	removed, err := m.otpRepository.DeleteExpiredOTPs(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("error purging expired one-time codes: %w", err)
	}
	return removed, nil
}
