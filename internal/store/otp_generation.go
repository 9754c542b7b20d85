// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"math"
	"math/rand/v2"
)

// newOTPGeneration returns a random positive generation tag for a freshly
// issued code. Tags are unordered and only compared for equality, so a code
// issued after its predecessor was deleted does not reuse the old tag the
// way a per-row counter restarting at 1 would.
func newOTPGeneration() int64 {
	return rand.Int64N(math.MaxInt64) + 1
}
