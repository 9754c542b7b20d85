// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"time"

	"github.com/MKhiriev/go-user-gate/internal/config"
	"github.com/MKhiriev/go-user-gate/internal/logger"
	"github.com/MKhiriev/go-user-gate/internal/service"
	"github.com/MKhiriev/go-user-gate/internal/validators"
)

type Handler struct {
	services  *service.Services
	validator validators.Validator
	limiter   *ipRateLimiter

	requestTimeout time.Duration

	logger *logger.Logger
}

func NewHandler(services *service.Services, validator validators.Validator, cfg config.Server, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:       services,
		validator:      validator,
		limiter:        newIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		requestTimeout: cfg.RequestTimeout,
		logger:         logger,
	}
}
