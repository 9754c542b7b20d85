// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

const (
	// OTPLength is the number of decimal digits in a one-time code.
	OTPLength = 6

	// OTPValidity is how long an issued one-time code stays usable.
	OTPValidity = 10 * time.Minute
)

// OneTimeCode is the password recovery code currently issued to a user.
// At most one exists per user; issuing a new code replaces the old one.
type OneTimeCode struct {
	// UserID is the owner of the code and the key of the record.
	UserID int64 `json:"user_id"`

	// Code is the fixed-width decimal code delivered to the user.
	Code string `json:"-"`

	// CreatedAt is the moment the code was issued.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is CreatedAt plus OTPValidity.
	ExpiresAt time.Time `json:"expires_at"`

	// Verified flips to true once, on the first successful verification.
	Verified bool `json:"verified"`

	// Generation is a random tag assigned every time a code is issued, even
	// when the previous code was already deleted. It lets a password reset
	// detect that the code it checked has been consumed or replaced before
	// the reset completed.
	Generation int64 `json:"generation"`
}

// TableName returns the name of the database table
// associated with the OneTimeCode model.
func (o OneTimeCode) TableName() string {
	return "otp"
}

// IsExpired reports whether now is strictly after ExpiresAt.
func (o OneTimeCode) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
