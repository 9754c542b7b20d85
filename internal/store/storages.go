// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-user-gate/internal/config"
	"github.com/MKhiriev/go-user-gate/internal/logger"
)

// Storages bundles the repositories of one storage backend.
type Storages struct {
	UserRepository UserRepository
	RoleRepository RoleRepository
	OTPRepository  OTPRepository
	Transactor     Transactor

	close func() error
}

// Close releases the underlying connection pool, if any.
func (s *Storages) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// NewStorages connects to the backend selected by cfg.Driver, applies
// migrations for SQL backends and wires the repositories.
func NewStorages(ctx context.Context, cfg config.DB, log *logger.Logger) (*Storages, error) {
	var (
		db  *DB
		err error
	)

	switch cfg.Driver {
	case config.DriverMemory:
		log.Info().Str("func", "NewStorages").Msg("using in-memory storage")
		return NewMemoryStorages(), nil
	case config.DriverPostgres:
		db, err = NewConnectPostgres(ctx, cfg, log)
	case config.DriverSQLite:
		db, err = NewConnectSQLite(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(); err != nil {
		log.Err(err).Str("func", "NewStorages").Msg("error applying migrations")
		_ = db.Close()
		return nil, err
	}

	return NewSQLStorages(db, log), nil
}

// NewSQLStorages wires the database/sql repositories around db.
func NewSQLStorages(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		UserRepository: NewUserRepository(db, log),
		RoleRepository: NewRoleRepository(db, log),
		OTPRepository:  NewOTPRepository(db, log),
		Transactor:     db,
		close:          db.Close,
	}
}

// NewMemoryStorages wires a fresh [MemoryStorage] into every repository slot.
func NewMemoryStorages() *Storages {
	mem := NewMemoryStorage()
	return &Storages{
		UserRepository: mem,
		RoleRepository: mem,
		OTPRepository:  mem,
		Transactor:     mem,
	}
}
