// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// User represents an account entity used for authentication and authorization.
// It contains identity attributes and credential-related data.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// UserID is the internal unique identifier of the user.
	UserID int64 `json:"id"`

	// Username is the unique login name used at sign-in.
	Username string `json:"username"`

	// Email is the unique e-mail address used for password recovery.
	Email string `json:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// It is never serialized and never holds plaintext.
	PasswordHash string `json:"-"`

	// Approved is the administrator approval flag. nil and false both mean
	// the account is pending; only an explicit true lets the user sign in.
	Approved *bool `json:"approved,omitempty"`

	// Roles is the set of roles assigned to the user. It is never empty for a
	// persisted user.
	Roles []Role `json:"roles"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// IsApproved reports whether the approval flag is explicitly set to true.
func (u User) IsApproved() bool {
	return u.Approved != nil && *u.Approved
}

// HasRole reports whether role is among the user's roles.
func (u User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleNames returns the user's roles as plain strings in stored order.
func (u User) RoleNames() []string {
	return RoleNames(u.Roles)
}

// UserFilter narrows a user listing.
type UserFilter struct {
	// PendingOnly keeps users whose approval flag is not true.
	PendingOnly bool
}

// Principal is the verified identity of the caller of an operation.
//
// It is produced once per request from a validated session token and then
// passed explicitly to every service method that needs to know who is
// calling.
type Principal struct {
	UserID   int64
	Username string
	Email    string
	Roles    []Role
}

// HasRole reports whether the principal carries role.
func (p Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// UserStatistics aggregates user counts per role.
// A user with several roles is counted once for each of them.
type UserStatistics struct {
	TotalUsers     int64 `json:"totalUsers"`
	AdminCount     int64 `json:"adminCount"`
	ModeratorCount int64 `json:"moderatorCount"`
	UserCount      int64 `json:"userCount"`
}

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool {
	return &v
}
