// Copyright 2025 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package timeout

import (
	"fmt"
	"time"

	"github.com/cockroachdb/dinelab/table"
	"github.com/sethvargo/go-retry"
)

// Config carries the tunables of the optimistic strategy.
type Config struct {
	// AttemptTimeout bounds each individual chopstick acquisition. A
	// seat resumes, success or failure, within this bound.
	AttemptTimeout time.Duration
	// MaxAttempts caps how many acquisition rounds a seat makes. A
	// seat that exhausts the cap stops short of its quota; this is a
	// deliberate best-effort trade, reported rather than fixed.
	MaxAttempts int
	// HoldBackoffBase seeds the exponential backoff taken after a seat
	// times out on its second chopstick while holding the first.
	HoldBackoffBase time.Duration
	// HoldBackoffCap bounds that exponential backoff.
	HoldBackoffCap time.Duration
	// RetryDelay is the constant component of the smaller backoff
	// taken after a seat times out on its first chopstick.
	RetryDelay time.Duration
	// RetryJitter is the random spread applied to RetryDelay to
	// de-synchronize competing seats.
	RetryJitter time.Duration
}

// DefaultConfig returns the reference tunables: one-second attempts,
// ten attempts per seat, 100ms-based exponential backoff.
func DefaultConfig() Config {
	return Config{
		AttemptTimeout:  time.Second,
		MaxAttempts:     10,
		HoldBackoffBase: 100 * time.Millisecond,
		HoldBackoffCap:  2 * time.Second,
		RetryDelay:      125 * time.Millisecond,
		RetryJitter:     75 * time.Millisecond,
	}
}

// Validate returns an error describing the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.AttemptTimeout <= 0:
		return fmt.Errorf("%w: attempt timeout must be positive", table.ErrInvalidConfig)
	case c.MaxAttempts < 1:
		return fmt.Errorf("%w: at least one attempt required, had %d", table.ErrInvalidConfig, c.MaxAttempts)
	case c.HoldBackoffBase <= 0 || c.HoldBackoffCap < c.HoldBackoffBase:
		return fmt.Errorf("%w: hold backoff must satisfy 0 < base <= cap", table.ErrInvalidConfig)
	case c.RetryDelay <= 0 || c.RetryJitter < 0 || c.RetryJitter >= c.RetryDelay:
		return fmt.Errorf("%w: retry backoff must satisfy 0 <= jitter < delay", table.ErrInvalidConfig)
	}
	return nil
}

// holdBackoff returns a fresh per-seat backoff for partial-hold
// failures: exponential in the number of failures, capped.
func (c *Config) holdBackoff() retry.Backoff {
	return retry.WithCappedDuration(c.HoldBackoffCap, retry.NewExponential(c.HoldBackoffBase))
}

// retryBackoff returns a fresh per-seat backoff for first-chopstick
// failures: a small jittered constant.
func (c *Config) retryBackoff() retry.Backoff {
	return retry.WithJitter(c.RetryJitter, retry.NewConstant(c.RetryDelay))
}
