// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-user-gate/internal/adapter"
	"github.com/MKhiriev/go-user-gate/internal/config"
	"github.com/MKhiriev/go-user-gate/internal/logger"
	"github.com/MKhiriev/go-user-gate/internal/store"
)

type Services struct {
	RoleResolver    RoleResolver
	OTPManager      OTPManager
	AuthService     AuthService
	RecoveryService RecoveryService
	UserService     UserService
	AdminService    AdminService
	AppInfoService  AppInfoService
}

func NewServices(storages *store.Storages, mailer adapter.Mailer, cfg *config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	appInfoService, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	roleResolver := NewRoleResolver(storages.RoleRepository, logger)
	otpManager := NewOTPManager(storages.OTPRepository, storages.Transactor, cfg.Storage.DB, logger)

	authService, err := NewAuthService(storages.UserRepository, roleResolver, *cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Services{
		RoleResolver:    roleResolver,
		OTPManager:      otpManager,
		AuthService:     authService,
		RecoveryService: NewRecoveryService(storages.UserRepository, storages.Transactor, otpManager, mailer, *cfg, logger),
		UserService:     NewUserService(storages.UserRepository, *cfg, logger),
		AdminService:    NewAdminService(storages.UserRepository, roleResolver, cfg.Storage.DB, logger),
		AppInfoService:  appInfoService,
	}, nil
}

// withQueryTimeout bounds one unit of store work. A non-positive timeout
// leaves only the caller's deadline.
func withQueryTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// checkAvailable fails with ErrUsernameTaken or ErrEmailTaken. Empty
// arguments are not checked.
func checkAvailable(ctx context.Context, users store.UserRepository, username, email string) error {
	if username != "" {
		taken, err := users.ExistsByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("error checking username: %w", err)
		}
		if taken {
			return ErrUsernameTaken
		}
	}

	if email != "" {
		taken, err := users.ExistsByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("error checking email: %w", err)
		}
		if taken {
			return ErrEmailTaken
		}
	}

	return nil
}

// conflictOr translates store unique violations into client errors and wraps
// everything else with msg.
func conflictOr(err error, msg string) error {
	switch {
	case errors.Is(err, store.ErrUsernameAlreadyExists):
		return ErrUsernameTaken
	case errors.Is(err, store.ErrEmailAlreadyExists):
		return ErrEmailTaken
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}
