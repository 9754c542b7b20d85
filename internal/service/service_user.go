// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-user-gate/internal/config"
	"github.com/MKhiriev/go-user-gate/internal/logger"
	"github.com/MKhiriev/go-user-gate/internal/store"
	"github.com/MKhiriev/go-user-gate/internal/utils"
	"github.com/MKhiriev/go-user-gate/models"
)

type userService struct {
	userRepository store.UserRepository

	bcryptCost   int
	queryTimeout time.Duration

	logger *logger.Logger
}

func NewUserService(userRepository store.UserRepository, cfg config.StructuredConfig, logger *logger.Logger) UserService {
	return &userService{
		userRepository: userRepository,
		bcryptCost:     cfg.App.BcryptCost,
		queryTimeout:   cfg.Storage.DB.QueryTimeout,
		logger:         logger,
	}
}

// Profile returns the current record of the caller. A deleted account gives
// store.ErrUserNotFound.
func (s *userService) Profile(ctx context.Context, principal models.Principal) (models.User, error) {
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	return s.userRepository.FindUserByID(ctx, principal.UserID)
}

// UpdateProfile changes username and e-mail. Uniqueness is only checked for
// the fields that actually change.
func (s *userService) UpdateProfile(ctx context.Context, principal models.Principal, req models.UpdateProfileRequest) error {
	log := logger.FromContext(ctx)

	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	user, err := s.userRepository.FindUserByID(ctx, principal.UserID)
	if err != nil {
		return err
	}

	var newUsername, newEmail string
	if user.Username != req.Username {
		newUsername = req.Username
	}
	if user.Email != req.Email {
		newEmail = req.Email
	}
	if err = checkAvailable(ctx, s.userRepository, newUsername, newEmail); err != nil {
		return err
	}

	user.Username = req.Username
	user.Email = req.Email
	if err = s.userRepository.UpdateUser(ctx, user); err != nil {
		log.Err(err).Int64("user_id", user.UserID).Msg("error updating profile")
		return conflictOr(err, "error updating profile")
	}

	return nil
}

// ChangePassword requires the current password and a different new one.
func (s *userService) ChangePassword(ctx context.Context, principal models.Principal, req models.ChangePasswordRequest) error {
	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	user, err := s.userRepository.FindUserByID(ctx, principal.UserID)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.OldPassword) {
		return ErrWrongOldPassword
	}
	if req.OldPassword == req.NewPassword {
		return ErrSamePassword
	}

	hash, err := utils.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	if err = s.userRepository.UpdatePassword(ctx, user.UserID, hash); err != nil {
		return fmt.Errorf("error changing password: %w", err)
	}

	logger.FromContext(ctx).Info().Int64("user_id", user.UserID).Msg("password changed")
	return nil
}
