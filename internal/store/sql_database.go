// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-user-gate/internal/logger"
	"github.com/MKhiriev/go-user-gate/migrations"
)

// ErrorClassification is the result type returned by [ErrorClassificator.Classify].
// It indicates whether a failed database operation should be retried or
// abandoned.
type ErrorClassification int

const (
	// NonRetryable indicates that the failed operation should not be retried.
	// This is the default classification for unrecognised errors, constraint
	// violations, syntax errors, and data exceptions.
	NonRetryable ErrorClassification = iota

	// Retryable indicates that the failed operation may succeed if attempted
	// again (e.g. after a transient connection loss or a deadlock rollback).
	Retryable
)

// ErrorClassificator knows the error model of one database driver.
type ErrorClassificator interface {
	// Classify reports whether err is worth retrying.
	Classify(err error) ErrorClassification
	// UniqueViolation reports the constrained column ("username", "email")
	// when err is a unique constraint violation.
	UniqueViolation(err error) (column string, ok bool)
}

// DBTX is the subset of database/sql used by repositories.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

const (
	defaultTxRetries = 3
	txRetryBackoff   = 50 * time.Millisecond
)

// DB is a database/sql connection bound to one driver. It carries the
// squirrel statement builder for the driver's placeholder format and
// implements [Transactor].
type DB struct {
	*sql.DB
	driver             string
	builder            sq.StatementBuilderType
	errorClassificator ErrorClassificator
	logger             *logger.Logger
	maxRetries         int
}

func newDB(conn *sql.DB, driver string, placeholder sq.PlaceholderFormat, classificator ErrorClassificator, log *logger.Logger) *DB {
	return &DB{
		DB:                 conn,
		driver:             driver,
		builder:            sq.StatementBuilder.PlaceholderFormat(placeholder),
		errorClassificator: classificator,
		logger:             log,
		maxRetries:         defaultTxRetries,
	}
}

// Migrate applies the embedded schema for the connection's driver.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.driver)
}

// executor returns the transaction bound to ctx or the pool itself.
func (db *DB) executor(ctx context.Context) DBTX {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db.DB
}

// WithinTx implements [Transactor]. Retryable failures (serialization
// failures, deadlocks, busy database) rerun fn in a fresh transaction up to
// maxRetries times.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	log := logger.FromContext(ctx)

	var err error
	for attempt := 0; ; attempt++ {
		err = db.withTx(ctx, fn)
		if err == nil || attempt >= db.maxRetries || db.classify(err) != Retryable {
			return err
		}

		log.Warn().Err(err).
			Str("func", "DB.WithinTx").
			Int("attempt", attempt+1).
			Msg("retrying transaction")

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(txRetryBackoff * time.Duration(attempt+1)):
		}
	}
}

func (db *DB) withTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, tx))
}

func (db *DB) classify(err error) ErrorClassification {
	if db.errorClassificator == nil {
		return NonRetryable
	}
	return db.errorClassificator.Classify(err)
}

// conflictError maps a unique violation to the matching sentinel, or
// returns nil when err is not a unique violation.
func (db *DB) conflictError(err error) error {
	if db.errorClassificator == nil {
		return nil
	}
	column, ok := db.errorClassificator.UniqueViolation(err)
	if !ok {
		return nil
	}
	if column == "email" {
		return ErrEmailAlreadyExists
	}
	return ErrUsernameAlreadyExists
}
