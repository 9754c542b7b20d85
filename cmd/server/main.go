// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-user-gate/internal/adapter"
	"github.com/MKhiriev/go-user-gate/internal/config"
	"github.com/MKhiriev/go-user-gate/internal/handler"
	"github.com/MKhiriev/go-user-gate/internal/logger"
	"github.com/MKhiriev/go-user-gate/internal/server"
	"github.com/MKhiriev/go-user-gate/internal/service"
	"github.com/MKhiriev/go-user-gate/internal/store"
	"github.com/MKhiriev/go-user-gate/internal/validators"
	"github.com/MKhiriev/go-user-gate/internal/workers"
	"github.com/MKhiriev/go-user-gate/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	fmt.Print(buildInfo)

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		logger.NewLogger("go-user-gate-server", config.DefaultLogLevel).Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.App.Version == "" {
		cfg.App.Version = buildInfo.BuildVersion()
	}

	log := logger.NewLogger("go-user-gate-server", cfg.App.LogLevel)
	log.Debug().
		Str("driver", cfg.Storage.DB.Driver).
		Str("address", cfg.Server.HTTPAddress).
		Msg("received configs")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	storages, err := store.NewStorages(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	services, err := service.NewServices(storages, adapter.NewMailer(cfg.Mail, log), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	if err = services.RoleResolver.EnsureSeeded(ctx); err != nil {
		log.Fatal().Err(err).Msg("role reference data check failed")
	}

	handlers, err := handler.NewHandlers(services, validators.NewRequestValidator(), cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	go workers.NewWorkers(services.OTPManager, cfg.Workers, log).Run(ctx)

	srv.RunServer()
}
