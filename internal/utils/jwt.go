// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MKhiriev/go-user-gate/models"
)

const bearerScheme = "Bearer"

// GenerateJWTToken creates a signed HMAC-SHA256 session token for user.
//
// The token carries the standard claims iss, sub (user id), iat and exp
// (now plus tokenDuration), and the private claims username, email and roles.
//
// issuer, tokenDuration and signKey are required.
//
// Example usage:
//
//	token, err := utils.GenerateJWTToken("go-user-gate", user, time.Hour, "secret", time.Now())
func GenerateJWTToken(issuer string, user models.User, tokenDuration time.Duration, signKey string, now time.Time) (models.Token, error) {
	if issuer == "" || tokenDuration == 0 || signKey == "" {
		return models.Token{}, errors.New("invalid params for generating JWT Token")
	}

	expiresAt := now.Add(tokenDuration)
	claims := models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(user.UserID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Username: user.Username,
		Email:    user.Email,
		Roles:    user.RoleNames(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(signKey))
	if err != nil {
		return models.Token{}, fmt.Errorf("error occurred during singing JWT token: %w", err)
	}

	return models.Token{Claims: claims, SignedString: tokenString, ExpiresAt: expiresAt}, nil
}

// ValidateAndParseJWTToken validates tokenString and returns its claims.
//
// Validation includes:
//   - HS256 signature verification with tokenSignKey (other algorithms are rejected)
//   - issuer (iss) check against tokenIssuer
//   - presence and validity of the expiration (exp) claim
//   - a numeric subject (sub)
func ValidateAndParseJWTToken(tokenString, tokenSignKey, tokenIssuer string) (models.SessionClaims, error) {
	claims := models.SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return []byte(tokenSignKey), nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return models.SessionClaims{}, fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	if _, err = claims.GetUserID(); err != nil {
		return models.SessionClaims{}, err
	}

	return claims, nil
}

// ParseBearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Fields(authorizationHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerScheme) {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
