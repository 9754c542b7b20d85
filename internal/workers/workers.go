// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"

	"github.com/MKhiriev/go-user-gate/internal/config"
	"github.com/MKhiriev/go-user-gate/internal/logger"
)

type Workers struct {
	workers []Worker
}

// NewWorkers builds the enabled background workers. A zero
// OTPCleanupInterval leaves the purge worker out.
func NewWorkers(purger OTPPurger, cfg config.Workers, logger *logger.Logger) *Workers {
	logger.Info().Msg("creating new workers...")

	w := &Workers{}
	if cfg.OTPCleanupInterval > 0 {
		w.workers = append(w.workers, NewOTPCleanupWorker(purger, cfg.OTPCleanupInterval, logger))
	}

	return w
}

// Run starts every worker in its own goroutine and blocks until all of them
// return.
func (w *Workers) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, worker := range w.workers {
		wg.Add(1)
		go func(worker Worker) {
			defer wg.Done()
			worker.Run(ctx)
		}(worker)
	}
	wg.Wait()
}
