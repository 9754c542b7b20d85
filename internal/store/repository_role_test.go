// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-user-gate/internal/logger"
	"github.com/MKhiriev/go-user-gate/models"
)

var findRoleSQL = regexp.QuoteMeta(`SELECT name FROM roles WHERE name = $1`)

func newTestRoleRepo(t *testing.T) (*roleRepository, sqlmock.Sqlmock) {
	db, mock := newTestDB(t)
	return &roleRepository{DB: db, logger: logger.Nop()}, mock
}

func TestRoleRepository_FindRoleByName(t *testing.T) {
	repo, mock := newTestRoleRepo(t)

	mock.ExpectQuery(findRoleSQL).
		WithArgs("ROLE_MODERATOR").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("ROLE_MODERATOR"))

	role, err := repo.FindRoleByName(context.Background(), models.RoleModerator)

	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, role)
}

func TestRoleRepository_FindRoleByName_Missing(t *testing.T) {
	repo, mock := newTestRoleRepo(t)

	mock.ExpectQuery(findRoleSQL).
		WithArgs("ROLE_ADMIN").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	_, err := repo.FindRoleByName(context.Background(), models.RoleAdmin)

	require.ErrorIs(t, err, ErrRoleNotFound)
	assert.Contains(t, err.Error(), "ROLE_ADMIN")
}

func TestRoleRepository_FindRoleByName_QueryError(t *testing.T) {
	repo, mock := newTestRoleRepo(t)

	mock.ExpectQuery(findRoleSQL).
		WithArgs("ROLE_USER").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.FindRoleByName(context.Background(), models.RoleUser)

	require.ErrorIs(t, err, ErrExecutingQuery)
}
