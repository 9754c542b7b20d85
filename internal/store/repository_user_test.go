// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-user-gate/models"
)

var testCreatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "email", "password", "approved", "created_at"})
}

func TestCreateUser_Success(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	user := models.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hash",
		Roles:        []models.Role{models.RoleAdmin, models.RoleUser},
		CreatedAt:    testCreatedAt,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice", "alice@example.com", "hash", sql.NullBool{}, testCreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, testCreatedAt))
	mock.ExpectExec("INSERT INTO user_roles").
		WithArgs(int64(1), "ROLE_USER", int64(1), "ROLE_ADMIN").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	created, err := repo.CreateUser(context.Background(), user)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.UserID)
	assert.Equal(t, testCreatedAt, created.CreatedAt)
}

func TestCreateUser_UniqueViolation(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{name: "username", constraint: "users_username_key", want: ErrUsernameAlreadyExists},
		{name: "email", constraint: "users_email_key", want: ErrEmailAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestUserRepo(t)

			mock.ExpectBegin()
			mock.ExpectQuery("INSERT INTO users").
				WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: tt.constraint})
			mock.ExpectRollback()

			_, err := repo.CreateUser(context.Background(), models.User{Username: "alice"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateUser_RoleInsertFails_RollsBack(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, testCreatedAt))
	mock.ExpectExec("INSERT INTO user_roles").WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	_, err := repo.CreateUser(context.Background(), models.User{Username: "alice", Roles: []models.Role{models.RoleUser}})
	assert.ErrorIs(t, err, ErrExecutingStatement)
}

func TestFindUserByUsername_Success(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE username = \\$1").
		WithArgs("alice").
		WillReturnRows(userRows().AddRow(1, "alice", "alice@example.com", "hash", true, testCreatedAt))
	mock.ExpectQuery("SELECT user_id, role_name FROM user_roles WHERE user_id IN \\(\\$1\\)").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "role_name"}).
			AddRow(1, "ROLE_ADMIN").
			AddRow(1, "ROLE_USER"))

	found, err := repo.FindUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", found.Email)
	assert.True(t, found.IsApproved())
	assert.Equal(t, []models.Role{models.RoleUser, models.RoleAdmin}, found.Roles)
}

func TestFindUserByEmail_NullApproved(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
		WithArgs("bob@example.com").
		WillReturnRows(userRows().AddRow(2, "bob", "bob@example.com", "hash", nil, testCreatedAt))
	mock.ExpectQuery("FROM user_roles").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "role_name"}).AddRow(2, "ROLE_USER"))

	found, err := repo.FindUserByEmail(context.Background(), "bob@example.com")
	require.NoError(t, err)
	assert.Nil(t, found.Approved)
	assert.False(t, found.IsApproved())
}

func TestFindUserByID_NotFound(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
		WithArgs(int64(42)).
		WillReturnRows(userRows())

	_, err := repo.FindUserByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFindUserByUsername_UnexpectedError(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users").
		WillReturnError(errors.New("db failure"))

	_, err := repo.FindUserByUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

func TestExistsByEmail(t *testing.T) {
	for _, count := range []int{0, 1} {
		repo, mock := newTestUserRepo(t)

		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users WHERE email = \\$1").
			WithArgs("alice@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))

		exists, err := repo.ExistsByEmail(context.Background(), "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, count == 1, exists)
	}
}

func TestUpdateUser(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)

		mock.ExpectExec("UPDATE users SET username = \\$1, email = \\$2, approved = \\$3 WHERE id = \\$4").
			WithArgs("alice", "new@example.com", sql.NullBool{Bool: true, Valid: true}, int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateUser(context.Background(), models.User{
			UserID: 1, Username: "alice", Email: "new@example.com", Approved: models.BoolPtr(true),
		})
		assert.NoError(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)

		mock.ExpectExec("UPDATE users").WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateUser(context.Background(), models.User{UserID: 9})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("email taken", func(t *testing.T) {
		repo, mock := newTestUserRepo(t)

		mock.ExpectExec("UPDATE users").
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})

		err := repo.UpdateUser(context.Background(), models.User{UserID: 1})
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	})
}

func TestUpdatePassword(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectExec("UPDATE users SET password = \\$1 WHERE id = \\$2").
		WithArgs("new-hash", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdatePassword(context.Background(), 1, "new-hash"))
}

func TestReplaceRoles(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM user_roles WHERE user_id = \\$1").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO user_roles").
		WithArgs(int64(1), "ROLE_MODERATOR").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.ReplaceRoles(context.Background(), 1, []models.Role{models.RoleModerator}))
}

func TestDeleteUser_NotFound(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectExec("DELETE FROM users WHERE id = \\$1").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.DeleteUser(context.Background(), 5), ErrUserNotFound)
}

func TestListUsers_PendingOnly(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE \\(approved IS NULL OR approved = \\$1\\) ORDER BY id").
		WithArgs(false).
		WillReturnRows(userRows().
			AddRow(2, "bob", "bob@example.com", "h", nil, testCreatedAt).
			AddRow(3, "carol", "carol@example.com", "h", false, testCreatedAt))
	mock.ExpectQuery("FROM user_roles WHERE user_id IN \\(\\$1,\\$2\\)").
		WithArgs(int64(2), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "role_name"}).
			AddRow(2, "ROLE_USER").
			AddRow(3, "ROLE_MODERATOR"))

	users, err := repo.ListUsers(context.Background(), models.UserFilter{PendingOnly: true})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, []models.Role{models.RoleUser}, users[0].Roles)
	assert.Equal(t, []models.Role{models.RoleModerator}, users[1].Roles)
}

func TestListUsers_Empty(t *testing.T) {
	repo, mock := newTestUserRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users ORDER BY id").WillReturnRows(userRows())

	users, err := repo.ListUsers(context.Background(), models.UserFilter{})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestFindRoleByName(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewRoleRepository(db, db.logger)

	mock.ExpectQuery("SELECT name FROM roles WHERE name = \\$1").
		WithArgs("ROLE_ADMIN").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("ROLE_ADMIN"))
	mock.ExpectQuery("SELECT name FROM roles WHERE name = \\$1").
		WithArgs("ROLE_MODERATOR").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	role, err := repo.FindRoleByName(context.Background(), models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	_, err = repo.FindRoleByName(context.Background(), models.RoleModerator)
	assert.ErrorIs(t, err, ErrRoleNotFound)
}
