// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the claim set carried by a session token.
//
// It embeds [jwt.RegisteredClaims] for the standard claims (sub, iss, iat,
// exp) and adds the identity attributes and role names captured at the
// moment the token was minted.
type SessionClaims struct {
	jwt.RegisteredClaims

	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// GetUserID parses the "sub" claim as a base-10 int64.
func (c *SessionClaims) GetUserID() (int64, error) {
	userIDString, err := c.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("error extracting UserID from token: %w", err)
	}

	userID, err := strconv.ParseInt(userIDString, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error converting UserID from token to int64: %w", err)
	}

	return userID, nil
}

// Token is a minted session token.
type Token struct {
	// Claims is the claim set that was signed.
	Claims SessionClaims `json:"-"`

	// SignedString is the compact JWS representation of the token
	// (base64url-encoded header.payload.signature).
	SignedString string `json:"-"`

	// ExpiresAt duplicates the "exp" claim for convenience.
	ExpiresAt time.Time `json:"-"`
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t *Token) String() string {
	return t.SignedString
}

// Principal converts validated claims into a [Principal].
func (c *SessionClaims) Principal() (Principal, error) {
	userID, err := c.GetUserID()
	if err != nil {
		return Principal{}, err
	}

	return Principal{
		UserID:   userID,
		Username: c.Username,
		Email:    c.Email,
		Roles:    RolesFromNames(c.Roles),
	}, nil
}

// Session is the result of a successful authentication: the minted token and
// the user it was minted for.
type Session struct {
	Token Token
	User  User
}
