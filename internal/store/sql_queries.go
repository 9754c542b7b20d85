// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-user-gate/models"
)

var (
	userColumns = []string{"id", "username", "email", "password", "approved", "created_at"}
	otpColumns  = []string{"user_id", "otp_code", "created_at", "expires_at", "verified", "generation"}
)

const upsertOTPSuffix = `ON CONFLICT (user_id) DO UPDATE SET
	otp_code = excluded.otp_code,
	created_at = excluded.created_at,
	expires_at = excluded.expires_at,
	verified = excluded.verified,
	generation = excluded.generation
	RETURNING user_id, otp_code, created_at, expires_at, verified, generation`

func approvedArg(approved *bool) sql.NullBool {
	if approved == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *approved, Valid: true}
}

// ── users ─────────────────────────────────────────────────────────────────────

func buildInsertUserQuery(b sq.StatementBuilderType, user models.User) (string, []any, error) {
	return b.Insert("users").
		Columns("username", "email", "password", "approved", "created_at").
		Values(user.Username, user.Email, user.PasswordHash, approvedArg(user.Approved), user.CreatedAt.UTC()).
		Suffix("RETURNING id, created_at").
		ToSql()
}

func buildSelectUserQuery(b sq.StatementBuilderType, where sq.Eq) (string, []any, error) {
	return b.Select(userColumns...).
		From("users").
		Where(where).
		ToSql()
}

func buildListUsersQuery(b sq.StatementBuilderType, filter models.UserFilter) (string, []any, error) {
	q := b.Select(userColumns...).From("users")
	if filter.PendingOnly {
		q = q.Where(sq.Or{sq.Eq{"approved": nil}, sq.Eq{"approved": false}})
	}
	return q.OrderBy("id").ToSql()
}

func buildCountUsersQuery(b sq.StatementBuilderType, where sq.Eq) (string, []any, error) {
	return b.Select("COUNT(*)").
		From("users").
		Where(where).
		ToSql()
}

func buildUpdateUserQuery(b sq.StatementBuilderType, user models.User) (string, []any, error) {
	return b.Update("users").
		Set("username", user.Username).
		Set("email", user.Email).
		Set("approved", approvedArg(user.Approved)).
		Where(sq.Eq{"id": user.UserID}).
		ToSql()
}

func buildUpdatePasswordQuery(b sq.StatementBuilderType, userID int64, passwordHash string) (string, []any, error) {
	return b.Update("users").
		Set("password", passwordHash).
		Where(sq.Eq{"id": userID}).
		ToSql()
}

func buildDeleteUserQuery(b sq.StatementBuilderType, userID int64) (string, []any, error) {
	return b.Delete("users").
		Where(sq.Eq{"id": userID}).
		ToSql()
}

// ── roles ─────────────────────────────────────────────────────────────────────

func buildSelectUserRolesQuery(b sq.StatementBuilderType, userIDs []int64) (string, []any, error) {
	return b.Select("user_id", "role_name").
		From("user_roles").
		Where(sq.Eq{"user_id": userIDs}).
		OrderBy("user_id").
		ToSql()
}

func buildInsertUserRolesQuery(b sq.StatementBuilderType, userID int64, roles []models.Role) (string, []any, error) {
	q := b.Insert("user_roles").Columns("user_id", "role_name")
	for _, role := range roles {
		q = q.Values(userID, string(role))
	}
	return q.ToSql()
}

func buildDeleteUserRolesQuery(b sq.StatementBuilderType, userID int64) (string, []any, error) {
	return b.Delete("user_roles").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
}

func buildFindRoleQuery(b sq.StatementBuilderType, role models.Role) (string, []any, error) {
	return b.Select("name").
		From("roles").
		Where(sq.Eq{"name": string(role)}).
		ToSql()
}

// ── otp ───────────────────────────────────────────────────────────────────────

func buildUpsertOTPQuery(b sq.StatementBuilderType, otp models.OneTimeCode, generation int64) (string, []any, error) {
	return b.Insert("otp").
		Columns(otpColumns...).
		Values(otp.UserID, otp.Code, otp.CreatedAt.UTC(), otp.ExpiresAt.UTC(), false, generation).
		Suffix(upsertOTPSuffix).
		ToSql()
}

func buildMarkOTPVerifiedQuery(b sq.StatementBuilderType, userID int64, code string, now time.Time) (string, []any, error) {
	return b.Update("otp").
		Set("verified", true).
		Where(sq.Eq{"user_id": userID, "otp_code": code, "verified": false}).
		Where(sq.GtOrEq{"expires_at": now.UTC()}).
		ToSql()
}

func buildSelectOTPQuery(b sq.StatementBuilderType, userID int64) (string, []any, error) {
	return b.Select(otpColumns...).
		From("otp").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
}

func buildDeleteOTPQuery(b sq.StatementBuilderType, userID int64) (string, []any, error) {
	return b.Delete("otp").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
}

func buildDeleteOTPGenerationQuery(b sq.StatementBuilderType, userID, generation int64) (string, []any, error) {
	return b.Delete("otp").
		Where(sq.Eq{"user_id": userID, "generation": generation}).
		ToSql()
}

func buildDeleteExpiredOTPsQuery(b sq.StatementBuilderType, before time.Time) (string, []any, error) {
	return b.Delete("otp").
		Where(sq.Lt{"expires_at": before.UTC()}).
		ToSql()
}
