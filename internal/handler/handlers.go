// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import (
	"github.com/MKhiriev/go-user-gate/internal/config"
	"github.com/MKhiriev/go-user-gate/internal/handler/http"
	"github.com/MKhiriev/go-user-gate/internal/logger"
	"github.com/MKhiriev/go-user-gate/internal/service"
	"github.com/MKhiriev/go-user-gate/internal/validators"
)

// Handlers groups the transport handlers served by the application.
type Handlers struct {
	HTTP *http.Handler
}

// NewHandlers builds the HTTP handler. It fails when no listen address is
// configured.
func NewHandlers(services *service.Services, validator validators.Validator, cfg config.Server, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	if cfg.HTTPAddress == "" {
		return nil, errNoHandlersAreCreated
	}

	return &Handlers{
		HTTP: http.NewHandler(services, validator, cfg, logger),
	}, nil
}
