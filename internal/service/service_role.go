// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-user-gate/internal/logger"
	"github.com/MKhiriev/go-user-gate/internal/store"
	"github.com/MKhiriev/go-user-gate/models"
)

// roleAliases lists every accepted token other than the default. Matching
// is case-sensitive; unknown tokens resolve to ROLE_USER.
var roleAliases = map[string]models.Role{
	"ROLE_ADMIN":     models.RoleAdmin,
	"admin":          models.RoleAdmin,
	"ROLE_MODERATOR": models.RoleModerator,
	"mod":            models.RoleModerator,
}

type roleResolver struct {
	roleRepository store.RoleRepository

	logger *logger.Logger
}

func NewRoleResolver(roleRepository store.RoleRepository, logger *logger.Logger) RoleResolver {
	return &roleResolver{
		roleRepository: roleRepository,
		logger:         logger,
	}
}

// Resolve maps tokens to roles, de-duplicated and in enumeration order.
func (r *roleResolver) Resolve(tokens []string) []models.Role {
	if len(tokens) == 0 {
		return []models.Role{models.RoleUser}
	}

	roles := make([]models.Role, 0, len(tokens))
	for _, token := range tokens {
		role, ok := roleAliases[token]
		if !ok {
			role = models.RoleUser
		}
		roles = append(roles, role)
	}

	return models.NormalizeRoles(roles)
}

func (r *roleResolver) EnsureSeeded(ctx context.Context) error {
	for _, role := range models.AllRoles {
		_, err := r.roleRepository.FindRoleByName(ctx, role)
		if errors.Is(err, store.ErrRoleNotFound) {
			r.logger.Error().Str("role", role.String()).Msg("role is missing from reference data")
			return fmt.Errorf("%w: %s", ErrRoleNotSeeded, role)
		}
		if err != nil {
			return fmt.Errorf("error looking up role %s: %w", role, err)
		}
	}

	r.logger.Debug().Msg("role reference data is seeded")
	return nil
}
