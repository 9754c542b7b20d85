// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-user-gate/internal/config"
	"github.com/MKhiriev/go-user-gate/internal/logger"
	"github.com/MKhiriev/go-user-gate/internal/store"
	"github.com/MKhiriev/go-user-gate/internal/utils"
	"github.com/MKhiriev/go-user-gate/models"
)

// dummyPassword is hashed at construction with the configured cost and
// compared against when the username is unknown.
const dummyPassword = "go-user-gate-dummy-password"

// authService is the concrete implementation of AuthService.
// It handles user registration, credential verification, and JWT token
// lifecycle using a UserRepository for persistence and bcrypt for password
// hashing.
type authService struct {
	// userRepository is the data-access layer used to create and look up users.
	userRepository store.UserRepository

	// roleResolver turns the role tokens of a signup request into roles.
	roleResolver RoleResolver

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected during parsing.
	tokenIssuer string

	// tokenDuration controls how long a newly issued JWT remains valid.
	tokenDuration time.Duration

	// bcryptCost is the work factor for new password hashes.
	bcryptCost int

	queryTimeout time.Duration

	// dummyHash is compared against for unknown usernames, so that path
	// costs the same bcrypt work as a wrong password.
	dummyHash string

	now func() time.Time

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewAuthService constructs a new AuthService wired to the given UserRepository
// and populated with security parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only after
// construction. It fails with ErrDummyHashFailed when the configured bcrypt
// cost cannot produce a hash.
func NewAuthService(userRepository store.UserRepository, roleResolver RoleResolver, cfg config.StructuredConfig, logger *logger.Logger) (AuthService, error) {
	cost := cfg.App.BcryptCost

	dummyHash, err := utils.HashPassword(dummyPassword, cost)
	if err != nil {
		logger.Err(err).Int("bcrypt_cost", cost).Msg("error hashing dummy password")
		return nil, fmt.Errorf("%w: %w", ErrDummyHashFailed, err)
	}

	return &authService{
		userRepository: userRepository,
		roleResolver:   roleResolver,
		tokenSignKey:   cfg.App.TokenSignKey,
		tokenIssuer:    cfg.App.TokenIssuer,
		tokenDuration:  cfg.App.TokenDuration,
		bcryptCost:     cost,
		queryTimeout:   cfg.Storage.DB.QueryTimeout,
		dummyHash:      dummyHash,
		now:            time.Now,
		logger:         logger,
	}, nil
}

// SignUp creates a pending account.
//
// Returns the persisted user or:
//   - ErrUsernameTaken / ErrEmailTaken if either is already registered
//     (checked up front and again by the store's unique constraints).
//   - A wrapped storage error if the repository call fails.
func (a *authService) SignUp(ctx context.Context, req models.SignUpRequest) (models.User, error) {
	log := logger.FromContext(ctx)

	ctx, cancel := withQueryTimeout(ctx, a.queryTimeout)
	defer cancel()

	if err := checkAvailable(ctx, a.userRepository, req.Username, req.Email); err != nil {
		log.Err(err).Str("username", req.Username).Msg("signup rejected")
		return models.User{}, err
	}

	hash, err := utils.HashPassword(req.Password, a.bcryptCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Roles:        a.roleResolver.Resolve(req.Roles),
		CreatedAt:    a.now(),
	}

	registeredUser, err := a.userRepository.CreateUser(ctx, user)
	if err != nil {
		log.Err(err).Str("username", req.Username).Msg("user creation ended with error")
		return models.User{}, conflictOr(err, "user creation ended with error")
	}

	log.Info().Int64("user_id", registeredUser.UserID).Strs("roles", registeredUser.RoleNames()).Msg("user registered")
	return registeredUser, nil
}

// Authenticate checks username and password and issues a session.
//
// An unknown username and a wrong password both return ErrInvalidCredentials
// after a bcrypt comparison of the same cost. ErrPendingApproval is returned
// only once the password is known to be correct.
func (a *authService) Authenticate(ctx context.Context, username, password string) (models.Session, error) {
	log := logger.FromContext(ctx)

	ctx, cancel := withQueryTimeout(ctx, a.queryTimeout)
	defer cancel()

	user, err := a.userRepository.FindUserByUsername(ctx, username)
	if errors.Is(err, store.ErrUserNotFound) {
		utils.CheckPassword(a.dummyHash, password)
		log.Info().Str("username", username).Msg("sign in failed")
		return models.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		log.Err(err).Str("username", username).Msg("user search by username failed")
		return models.Session{}, fmt.Errorf("user search by username failed: %w", err)
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		log.Info().Int64("user_id", user.UserID).Msg("sign in failed")
		return models.Session{}, ErrInvalidCredentials
	}

	if !user.IsApproved() {
		log.Info().Int64("user_id", user.UserID).Msg("sign in of pending account")
		return models.Session{}, ErrPendingApproval
	}

	token, err := a.CreateToken(ctx, user)
	if err != nil {
		return models.Session{}, err
	}

	return models.Session{Token: token, User: user}, nil
}

// CreateToken issues a signed JWT for the given user.
//
// Returns the token model on success or a wrapped ErrTokenCreationFailed.
func (a *authService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, user, a.tokenDuration, a.tokenSignKey, a.now())
	if err != nil {
		logger.FromContext(ctx).Err(err).Int64("user_id", user.UserID).Msg("creation of token failed")
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates a raw JWT string and returns the principal it carries.
//
// Any validation failure (expired, wrong issuer, wrong algorithm, malformed)
// is normalised to ErrTokenIsExpiredOrInvalid.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Principal, error) {
	claims, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		logger.FromContext(ctx).Debug().Err(err).Msg("token rejected")
		return models.Principal{}, ErrTokenIsExpiredOrInvalid
	}

	principal, err := claims.Principal()
	if err != nil {
		return models.Principal{}, ErrTokenIsExpiredOrInvalid
	}

	return principal, nil
}
