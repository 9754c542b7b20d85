// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-user-gate/internal/logger"
	"github.com/MKhiriev/go-user-gate/models"
)

type roleRepository struct {
	*DB
	logger *logger.Logger
}

// NewRoleRepository constructs a [RoleRepository] backed by db.
func NewRoleRepository(db *DB, logger *logger.Logger) RoleRepository {
	return &roleRepository{
		DB:     db,
		logger: logger,
	}
}

func (r *roleRepository) FindRoleByName(ctx context.Context, role models.Role) (models.Role, error) {
	query, args, err := buildFindRoleQuery(r.builder, role)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var name string
	err = r.executor(ctx).QueryRowContext(ctx, query, args...).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrRoleNotFound, role)
	}
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*roleRepository.FindRoleByName").
			Str("role", string(role)).
			Msg("error finding role")
		return "", fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return models.Role(name), nil
}
