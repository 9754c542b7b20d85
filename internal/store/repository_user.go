// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-user-gate/internal/logger"
	"github.com/MKhiriev/go-user-gate/models"
)

// userRepository is the database/sql implementation of [UserRepository].
// It works against the "users" and "user_roles" tables.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	*DB
	logger *logger.Logger
}

// NewUserRepository constructs a [UserRepository] backed by db.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		DB:     db,
		logger: logger,
	}
}

// CreateUser inserts the user row and its role rows in one transaction.
//
// Error handling:
//   - unique violation on username → [ErrUsernameAlreadyExists].
//   - unique violation on email → [ErrEmailAlreadyExists].
//   - any other driver-level error → wrapped [ErrExecutingStatement].
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	err := r.WithinTx(ctx, func(ctx context.Context) error {
		query, args, err := buildInsertUserQuery(r.builder, user)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}

		if err = r.executor(ctx).QueryRowContext(ctx, query, args...).Scan(&user.UserID, &user.CreatedAt); err != nil {
			if conflict := r.conflictError(err); conflict != nil {
				return conflict
			}
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}

		return r.insertRoles(ctx, user.UserID, user.Roles)
	})
	if err != nil {
		log.Err(err).
			Str("func", "*userRepository.CreateUser").
			Str("username", user.Username).
			Msg("error creating user")
		return models.User{}, err
	}

	return user, nil
}

func (r *userRepository) FindUserByID(ctx context.Context, userID int64) (models.User, error) {
	return r.findOne(ctx, sq.Eq{"id": userID})
}

func (r *userRepository) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findOne(ctx, sq.Eq{"username": username})
}

func (r *userRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, sq.Eq{"email": email})
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, sq.Eq{"username": username})
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, sq.Eq{"email": email})
}

// UpdateUser writes username, email and approval state.
// Returns [ErrUserNotFound] when no row matched.
func (r *userRepository) UpdateUser(ctx context.Context, user models.User) error {
	query, args, err := buildUpdateUserQuery(r.builder, user)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.execAffectingUser(ctx, "*userRepository.UpdateUser", user.UserID, query, args)
}

// UpdatePassword replaces the stored password hash.
// Returns [ErrUserNotFound] when no row matched.
func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	query, args, err := buildUpdatePasswordQuery(r.builder, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.execAffectingUser(ctx, "*userRepository.UpdatePassword", userID, query, args)
}

// ReplaceRoles deletes all role rows of the user and inserts roles.
func (r *userRepository) ReplaceRoles(ctx context.Context, userID int64, roles []models.Role) error {
	return r.WithinTx(ctx, func(ctx context.Context) error {
		query, args, err := buildDeleteUserRolesQuery(r.builder, userID)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}

		if _, err = r.executor(ctx).ExecContext(ctx, query, args...); err != nil {
			logger.FromContext(ctx).Err(err).
				Str("func", "*userRepository.ReplaceRoles").
				Int64("user_id", userID).
				Msg("error deleting user roles")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}

		return r.insertRoles(ctx, userID, roles)
	})
}

// DeleteUser removes the user. Role and one-time code rows follow through
// ON DELETE CASCADE. Returns [ErrUserNotFound] when no row matched.
func (r *userRepository) DeleteUser(ctx context.Context, userID int64) error {
	query, args, err := buildDeleteUserQuery(r.builder, userID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.execAffectingUser(ctx, "*userRepository.DeleteUser", userID, query, args)
}

// ListUsers returns users ordered by id, each with its roles.
func (r *userRepository) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListUsersQuery(r.builder, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.ListUsers").Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	users := make([]models.User, 0, 16)
	for rows.Next() {
		user, scanErr := scanUser(rows)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "*userRepository.ListUsers").Msg("failed to scan user row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	if len(users) == 0 {
		return users, nil
	}

	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.UserID)
	}

	roles, err := r.selectRoles(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Roles = roles[users[i].UserID]
	}

	return users, nil
}

func (r *userRepository) findOne(ctx context.Context, where sq.Eq) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectUserQuery(r.builder, where)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	user, err := scanUser(r.executor(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*userRepository.findOne").Msg("error finding user")
		return models.User{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	roles, err := r.selectRoles(ctx, []int64{user.UserID})
	if err != nil {
		return models.User{}, err
	}
	user.Roles = roles[user.UserID]

	return user, nil
}

func (r *userRepository) exists(ctx context.Context, where sq.Eq) (bool, error) {
	query, args, err := buildCountUsersQuery(r.builder, where)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var count int64
	if err = r.executor(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*userRepository.exists").Msg("error counting users")
		return false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return count > 0, nil
}

func (r *userRepository) selectRoles(ctx context.Context, userIDs []int64) (map[int64][]models.Role, error) {
	query, args, err := buildSelectUserRolesQuery(r.builder, userIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*userRepository.selectRoles").Msg("failed to select roles")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	result := make(map[int64][]models.Role, len(userIDs))
	for rows.Next() {
		var (
			userID int64
			name   string
		)
		if err = rows.Scan(&userID, &name); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		result[userID] = append(result[userID], models.Role(name))
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	for id, roles := range result {
		result[id] = models.NormalizeRoles(roles)
	}

	return result, nil
}

func (r *userRepository) insertRoles(ctx context.Context, userID int64, roles []models.Role) error {
	if len(roles) == 0 {
		return nil
	}

	query, args, err := buildInsertUserRolesQuery(r.builder, userID, models.NormalizeRoles(roles))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.executor(ctx).ExecContext(ctx, query, args...); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "*userRepository.insertRoles").
			Int64("user_id", userID).
			Msg("error inserting user roles")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (r *userRepository) execAffectingUser(ctx context.Context, funcName string, userID int64, query string, args []any) error {
	log := logger.FromContext(ctx)

	res, err := r.executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", funcName).Int64("user_id", userID).Msg("failed to execute statement")
		if conflict := r.conflictError(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		user     models.User
		approved sql.NullBool
	)

	if err := row.Scan(&user.UserID, &user.Username, &user.Email, &user.PasswordHash, &approved, &user.CreatedAt); err != nil {
		return models.User{}, err
	}
	if approved.Valid {
		user.Approved = models.BoolPtr(approved.Bool)
	}

	return user, nil
}
