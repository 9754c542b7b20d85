// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-user-gate/internal/logger"
	"github.com/MKhiriev/go-user-gate/models"
)

// otpRepository is the database/sql implementation of [OTPRepository]
// backed by the "otp" table, which has user_id as its primary key.
type otpRepository struct {
	*DB
	logger *logger.Logger
}

// NewOTPRepository constructs an [OTPRepository] backed by db.
func NewOTPRepository(db *DB, logger *logger.Logger) OTPRepository {
	logger.Debug().Msg("creating otp repository")
	return &otpRepository{
		DB:     db,
		logger: logger,
	}
}

// UpsertOTP inserts or replaces the user's code with a single
// INSERT ... ON CONFLICT (user_id) DO UPDATE statement that also stamps a
// new random generation.
func (r *otpRepository) UpsertOTP(ctx context.Context, otp models.OneTimeCode) (models.OneTimeCode, error) {
	query, args, err := buildUpsertOTPQuery(r.builder, otp, newOTPGeneration())
	if err != nil {
		return models.OneTimeCode{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	stored, err := scanOTP(r.executor(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*otpRepository.UpsertOTP").
			Int64("user_id", otp.UserID).
			Msg("error upserting one-time code")
		return models.OneTimeCode{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return stored, nil
}

// MarkOTPVerified runs one conditional UPDATE, so two concurrent callers
// can never both observe a change.
func (r *otpRepository) MarkOTPVerified(ctx context.Context, userID int64, code string, now time.Time) (bool, error) {
	query, args, err := buildMarkOTPVerifiedQuery(r.builder, userID, code, now)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	affected, err := r.exec(ctx, "*otpRepository.MarkOTPVerified", userID, query, args)
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *otpRepository) FindOTPByUserID(ctx context.Context, userID int64) (models.OneTimeCode, error) {
	query, args, err := buildSelectOTPQuery(r.builder, userID)
	if err != nil {
		return models.OneTimeCode{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	otp, err := scanOTP(r.executor(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.OneTimeCode{}, ErrOTPNotFound
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*otpRepository.FindOTPByUserID").
			Int64("user_id", userID).
			Msg("error finding one-time code")
		return models.OneTimeCode{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return otp, nil
}

func (r *otpRepository) DeleteOTP(ctx context.Context, userID int64) error {
	query, args, err := buildDeleteOTPQuery(r.builder, userID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	_, err = r.exec(ctx, "*otpRepository.DeleteOTP", userID, query, args)
	return err
}

func (r *otpRepository) DeleteOTPGeneration(ctx context.Context, userID int64, generation int64) error {
	query, args, err := buildDeleteOTPGenerationQuery(r.builder, userID, generation)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	affected, err := r.exec(ctx, "*otpRepository.DeleteOTPGeneration", userID, query, args)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOTPSuperseded
	}

	return nil
}

func (r *otpRepository) DeleteExpiredOTPs(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := buildDeleteExpiredOTPsQuery(r.builder, before)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.exec(ctx, "*otpRepository.DeleteExpiredOTPs", 0, query, args)
}

func (r *otpRepository) exec(ctx context.Context, funcName string, userID int64, query string, args []any) (int64, error) {
	res, err := r.executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", funcName).
			Int64("user_id", userID).
			Msg("failed to execute statement")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return affected, nil
}

func scanOTP(row rowScanner) (models.OneTimeCode, error) {
	var otp models.OneTimeCode
	err := row.Scan(&otp.UserID, &otp.Code, &otp.CreatedAt, &otp.ExpiresAt, &otp.Verified, &otp.Generation)
	return otp, err
}
