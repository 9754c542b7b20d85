// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEnv(t *testing.T) {
	t.Setenv("APP_TOKEN_SIGN_KEY", "env-key")
	t.Setenv("STORAGE_DB_DATABASE_URI", "postgres://gate@localhost/gate")
	t.Setenv("WORKERS_OTP_CLEANUP_INTERVAL", "90s")

	cfg, err := readEnv()
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.App.TokenSignKey)
	assert.Equal(t, "postgres://gate@localhost/gate", cfg.Storage.DB.DSN)
	assert.Equal(t, 90*time.Second, cfg.Workers.OTPCleanupInterval)
	assert.Zero(t, cfg.App.BcryptCost, "unset variables stay zero")
}

func TestReadEnv_BadDuration(t *testing.T) {
	t.Setenv("SERVER_REQUEST_TIMEOUT", "soon")

	cfg, err := readEnv()

	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrReadingEnvConfigs)
}
