// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// readEnv returns the layer described by environment variables such as
// APP_TOKEN_SIGN_KEY or STORAGE_DB_DATABASE_URI. Variables that are unset
// leave their fields zero, so the merge keeps the defaults beneath them.
func readEnv() (*StructuredConfig, error) {
	cfg, err := env.ParseAs[StructuredConfig]()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadingEnvConfigs, err)
	}

	return &cfg, nil
}
