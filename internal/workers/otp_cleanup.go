// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-user-gate/internal/logger"
)

type otpCleanupWorker struct {
	purger   OTPPurger
	interval time.Duration
	logger   *logger.Logger
}

// NewOTPCleanupWorker returns a worker that purges expired one-time codes
// every interval.
func NewOTPCleanupWorker(purger OTPPurger, interval time.Duration, logger *logger.Logger) Worker {
	return &otpCleanupWorker{
		purger:   purger,
		interval: interval,
		logger:   logger,
	}
}

func (w *otpCleanupWorker) Run(ctx context.Context) {
	if w.interval <= 0 {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().Dur("interval", w.interval).Msg("otp cleanup worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("otp cleanup worker stopped")
			return
		case <-ticker.C:
			w.purge(ctx)
		}
	}
}

// purge logs failures and keeps the worker running.
func (w *otpCleanupWorker) purge(ctx context.Context) {
	removed, err := w.purger.PurgeExpired(w.logger.WithContext(ctx))
	if err != nil {
		w.logger.Err(err).Msg("failed to purge expired one-time codes")
		return
	}
	if removed > 0 {
		w.logger.Debug().Int64("removed", removed).Msg("purged expired one-time codes")
	}
}
