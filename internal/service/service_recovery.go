// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-user-gate/internal/adapter"
	"github.com/MKhiriev/go-user-gate/internal/config"
	"github.com/MKhiriev/go-user-gate/internal/logger"
	"github.com/MKhiriev/go-user-gate/internal/store"
	"github.com/MKhiriev/go-user-gate/internal/utils"
	"github.com/MKhiriev/go-user-gate/models"
)

// recoveryService runs the three password recovery steps. Each step resolves
// the user by e-mail first; an unknown address is ErrEmailNotFound.
type recoveryService struct {
	userRepository store.UserRepository
	transactor     store.Transactor
	otpManager     OTPManager
	mailer         adapter.Mailer

	bcryptCost   int
	queryTimeout time.Duration

	now func() time.Time

	logger *logger.Logger
}

func NewRecoveryService(
	userRepository store.UserRepository,
	transactor store.Transactor,
	otpManager OTPManager,
	mailer adapter.Mailer,
	cfg config.StructuredConfig,
	logger *logger.Logger,
) RecoveryService {
	return &recoveryService{
		userRepository: userRepository,
		transactor:     transactor,
		otpManager:     otpManager,
		mailer:         mailer,
		bcryptCost:     cfg.App.BcryptCost,
		queryTimeout:   cfg.Storage.DB.QueryTimeout,
		now:            time.Now,
		logger:         logger,
	}
}

// ForgotPassword issues a new code and hands it to the mailer. A delivery
// failure does not fail the call: the code is written to the WARN log so an
// operator can pass it on.
func (r *recoveryService) ForgotPassword(ctx context.Context, email string) error {
	log := logger.FromContext(ctx)

	user, err := r.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	code, err := r.otpManager.Issue(ctx, user.UserID)
	if err != nil {
		return err
	}

	if err = r.mailer.SendOTP(ctx, user.Email, code); err != nil {
		log.Warn().Err(err).
			Int64("user_id", user.UserID).
			Str("email", user.Email).
			Str("otp_code", code).
			Msg("one-time code was not delivered")
	}

	return nil
}

// VerifyOTP flips the user's current code to verified. Wrong, expired,
// missing and already verified codes all give ErrInvalidOrExpiredOTP.
func (r *recoveryService) VerifyOTP(ctx context.Context, email, code string) error {
	user, err := r.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	ok, err := r.otpManager.Verify(ctx, user.UserID, code)
	if err != nil {
		return err
	}
	if !ok {
		logger.FromContext(ctx).Info().Int64("user_id", user.UserID).Msg("one-time code rejected")
		return ErrInvalidOrExpiredOTP
	}

	return nil
}

// ResetPassword sets a new password if the user's current code is verified,
// unexpired and equal to code, and deletes that code. The check, the password
// update and the delete share one transaction; the delete is conditional on
// the code generation read by the check, so a code re-issued in between makes
// the whole reset roll back with ErrInvalidOrUnverifiedOTP.
func (r *recoveryService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	log := logger.FromContext(ctx)

	user, err := r.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	err = r.transactor.WithinTx(ctx, func(ctx context.Context) error {
		otp, ok, err := r.otpManager.FindVerified(ctx, user.UserID)
		if err != nil {
			return err
		}
		if !ok || !otp.Verified || otp.IsExpired(r.now()) ||
			subtle.ConstantTimeCompare([]byte(otp.Code), []byte(code)) != 1 {
			return ErrInvalidOrUnverifiedOTP
		}

		hash, err := utils.HashPassword(newPassword, r.bcryptCost)
		if err != nil {
			return err
		}

		if err = r.userRepository.UpdatePassword(ctx, user.UserID, hash); err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}

		return r.otpManager.ConsumeGeneration(ctx, user.UserID, otp.Generation)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidOrUnverifiedOTP) {
			log.Info().Int64("user_id", user.UserID).Msg("password reset rejected")
		} else {
			log.Err(err).Str("func", "*recoveryService.ResetPassword").Int64("user_id", user.UserID).Msg("error resetting password")
		}
		return err
	}

	log.Info().Int64("user_id", user.UserID).Msg("password reset")
	return nil
}

func (r *recoveryService) findByEmail(ctx context.Context, email string) (models.User, error) {
	ctx, cancel := withQueryTimeout(ctx, r.queryTimeout)
	defer cancel()

	user, err := r.userRepository.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrUserNotFound) {
		return models.User{}, ErrEmailNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*recoveryService.findByEmail").Msg("user search by email failed")
		return models.User{}, fmt.Errorf("user search by email failed: %w", err)
	}

	return user, nil
}
