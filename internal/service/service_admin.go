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
	"github.com/MKhiriev/go-user-gate/models"
)

// adminService checks the admin role on every call, even though the HTTP
// router already gates the admin route group.
type adminService struct {
	userRepository store.UserRepository
	roleResolver   RoleResolver

	queryTimeout time.Duration

	logger *logger.Logger
}

func NewAdminService(userRepository store.UserRepository, roleResolver RoleResolver, cfg config.DB, logger *logger.Logger) AdminService {
	return &adminService{
		userRepository: userRepository,
		roleResolver:   roleResolver,
		queryTimeout:   cfg.QueryTimeout,
		logger:         logger,
	}
}

func (s *adminService) ListUsers(ctx context.Context, principal models.Principal) ([]models.User, error) {
	return s.list(ctx, principal, models.UserFilter{})
}

func (s *adminService) PendingUsers(ctx context.Context, principal models.Principal) ([]models.User, error) {
	return s.list(ctx, principal, models.UserFilter{PendingOnly: true})
}

func (s *adminService) GetUser(ctx context.Context, principal models.Principal, userID int64) (models.User, error) {
	if err := s.authorize(ctx, principal); err != nil {
		return models.User{}, err
	}

	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	return s.userRepository.FindUserByID(ctx, userID)
}

// Approve sets the approval flag of the user to true.
func (s *adminService) Approve(ctx context.Context, principal models.Principal, userID int64) error {
	if err := s.authorize(ctx, principal); err != nil {
		return err
	}

	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	user, err := s.userRepository.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}

	user.Approved = models.BoolPtr(true)
	if err = s.userRepository.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("error approving user: %w", err)
	}

	logger.FromContext(ctx).Info().Int64("admin_id", principal.UserID).Int64("user_id", userID).Msg("user approved")
	return nil
}

// Reject deletes the account. It does not look at the approval flag.
func (s *adminService) Reject(ctx context.Context, principal models.Principal, userID int64) error {
	if err := s.authorize(ctx, principal); err != nil {
		return err
	}

	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.userRepository.DeleteUser(ctx, userID); err != nil {
		return err
	}

	logger.FromContext(ctx).Info().Int64("admin_id", principal.UserID).Int64("user_id", userID).Msg("user rejected")
	return nil
}

func (s *adminService) DeleteUser(ctx context.Context, principal models.Principal, userID int64) error {
	if err := s.authorize(ctx, principal); err != nil {
		return err
	}
	if principal.UserID == userID {
		return ErrCannotDeleteSelf
	}

	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.userRepository.DeleteUser(ctx, userID); err != nil {
		return err
	}

	logger.FromContext(ctx).Info().Int64("admin_id", principal.UserID).Int64("user_id", userID).Msg("user deleted")
	return nil
}

// UpdateRoles replaces the role set of the user with the resolved tokens.
func (s *adminService) UpdateRoles(ctx context.Context, principal models.Principal, userID int64, tokens []string) error {
	if err := s.authorize(ctx, principal); err != nil {
		return err
	}

	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	if _, err := s.userRepository.FindUserByID(ctx, userID); err != nil {
		return err
	}

	roles := s.roleResolver.Resolve(tokens)
	if err := s.userRepository.ReplaceRoles(ctx, userID, roles); err != nil {
		return fmt.Errorf("error updating roles: %w", err)
	}

	logger.FromContext(ctx).Info().
		Int64("admin_id", principal.UserID).
		Int64("user_id", userID).
		Strs("roles", models.RoleNames(roles)).
		Msg("user roles updated")
	return nil
}

// Statistics counts users per role. A user holding several roles is counted
// under each of them.
func (s *adminService) Statistics(ctx context.Context, principal models.Principal) (models.UserStatistics, error) {
	users, err := s.list(ctx, principal, models.UserFilter{})
	if err != nil {
		return models.UserStatistics{}, err
	}

	stats := models.UserStatistics{TotalUsers: int64(len(users))}
	for _, u := range users {
		if u.HasRole(models.RoleAdmin) {
			stats.AdminCount++
		}
		if u.HasRole(models.RoleModerator) {
			stats.ModeratorCount++
		}
		if u.HasRole(models.RoleUser) {
			stats.UserCount++
		}
	}

	return stats, nil
}

func (s *adminService) list(ctx context.Context, principal models.Principal, filter models.UserFilter) ([]models.User, error) {
	if err := s.authorize(ctx, principal); err != nil {
		return nil, err
	}

	ctx, cancel := withQueryTimeout(ctx, s.queryTimeout)
	defer cancel()

	users, err := s.userRepository.ListUsers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	return users, nil
}

func (s *adminService) authorize(ctx context.Context, principal models.Principal) error {
	if !principal.HasRole(models.RoleAdmin) {
		logger.FromContext(ctx).Warn().Int64("user_id", principal.UserID).Msg("admin operation denied")
		return ErrForbidden
	}
	return nil
}
