// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/go-user-gate/internal/config"
	"github.com/MKhiriev/go-user-gate/internal/logger"
	"github.com/MKhiriev/go-user-gate/internal/mock"
	"github.com/MKhiriev/go-user-gate/internal/store"
	"github.com/MKhiriev/go-user-gate/internal/utils"
	"github.com/MKhiriev/go-user-gate/models"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func testConfig() config.StructuredConfig {
	return config.StructuredConfig{
		App: config.App{
			TokenSignKey:  "test-sign-key",
			TokenIssuer:   "go-user-gate-test",
			TokenDuration: time.Hour,
			BcryptCost:    bcrypt.MinCost,
			Version:       "test",
		},
		Storage: config.Storage{DB: config.DB{QueryTimeout: time.Second}},
	}
}

// clock is a settable time source shared by the services under test.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

// fixture wires every service against one in-memory store.
type fixture struct {
	mem    *store.MemoryStorage
	clock  *clock
	mailer *mock.MockMailer
	codes  []string

	roles    RoleResolver
	otp      *otpManager
	auth     *authService
	recovery *recoveryService
	users    UserService
	admin    AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	cfg := testConfig()
	log := logger.Nop()

	f := &fixture{
		mem:    store.NewMemoryStorage(),
		clock:  &clock{t: testNow},
		mailer: mock.NewMockMailer(ctrl),
	}

	f.roles = NewRoleResolver(f.mem, log)

	f.otp = NewOTPManager(f.mem, f.mem, cfg.Storage.DB, log).(*otpManager)
	f.otp.now = f.clock.now
	f.otp.generateCode = func() (string, error) {
		if len(f.codes) == 0 {
			return generateOTPCode()
		}
		code := f.codes[0]
		f.codes = f.codes[1:]
		return code, nil
	}

	auth, err := NewAuthService(f.mem, f.roles, cfg, log)
	require.NoError(t, err)
	f.auth = auth.(*authService)
	f.auth.now = f.clock.now

	f.recovery = NewRecoveryService(f.mem, f.mem, f.otp, f.mailer, cfg, log).(*recoveryService)
	f.recovery.now = f.clock.now

	f.users = NewUserService(f.mem, cfg, log)
	f.admin = NewAdminService(f.mem, f.roles, cfg.Storage.DB, log)

	return f
}

// addUser stores a user directly, bypassing signup.
func (f *fixture) addUser(t *testing.T, username, email, password string, approved bool, roles ...models.Role) models.User {
	t.Helper()

	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)

	if len(roles) == 0 {
		roles = []models.Role{models.RoleUser}
	}

	user, err := f.mem.CreateUser(context.Background(), models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Approved:     models.BoolPtr(approved),
		Roles:        roles,
		CreatedAt:    testNow,
	})
	require.NoError(t, err)

	return user
}

func (f *fixture) storedOTP(t *testing.T, userID int64) models.OneTimeCode {
	t.Helper()

	otp, err := f.mem.FindOTPByUserID(context.Background(), userID)
	require.NoError(t, err)
	return otp
}

func adminPrincipal(id int64) models.Principal {
	return models.Principal{UserID: id, Username: "root", Roles: []models.Role{models.RoleUser, models.RoleAdmin}}
}

func userPrincipal(id int64) models.Principal {
	return models.Principal{UserID: id, Username: "bob", Roles: []models.Role{models.RoleUser}}
}
