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

/*
Package timeout implements the optimistic arbitration strategy for the
dining philosophers ring.

There is no shared arbiter. Each seat attempts its chopsticks directly
with a bounded wait: the lower-indexed chopstick first, then the
higher. Order normalization reduces contention patterns but is not
sufficient to prevent deadlock on its own; the timeout is
load-bearing. A seat that times out on its second chopstick releases
the first immediately, so a partial hold never survives a failed
attempt, and then backs off exponentially. A timeout on the first
chopstick triggers a smaller randomized backoff to de-synchronize the
competitors.

Each seat has a hard attempt budget. Exhausting it may leave the seat
short of its meal quota, which is reported rather than treated as a
failure: the strategy trades guaranteed completion for guaranteed
bounded blocking.
*/
package timeout

import (
	"context"
	"time"

	"github.com/cockroachdb/dinelab/stopper"
	"github.com/cockroachdb/dinelab/table"
	"go.uber.org/atomic"
)

// Strategy runs a scenario under the timeout-and-backoff discipline.
// A Strategy is good for a single call to [Strategy.Run].
type Strategy struct {
	cfg      Config
	meals    atomic.Int64 // Run-wide successful meals.
	outcomes []table.Outcome
	table    *table.Table
	timeouts atomic.Int64 // Run-wide expired attempts.
}

// New constructs a Strategy over the given table.
func New(t *table.Table, cfg Config) (*Strategy, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Strategy{
		cfg:      cfg,
		outcomes: make([]table.Outcome, t.Seats()),
		table:    t,
	}
	for i := range s.outcomes {
		s.outcomes[i] = table.NewOutcome()
	}
	return s, nil
}

// Name implements the driver's Strategy interface.
func (s *Strategy) Name() string { return "timeout" }

// Outcomes returns the per-seat status variables for observation
// during or after a run.
func (s *Strategy) Outcomes() []table.Outcome { return s.outcomes }

// TotalMeals returns the run-wide count of successful meals.
func (s *Strategy) TotalMeals() int64 { return s.meals.Load() }

// TotalTimeouts returns the run-wide count of expired attempts.
func (s *Strategy) TotalTimeouts() int64 { return s.timeouts.Load() }

// Run executes one seat goroutine per philosopher and blocks until
// every seat has finished its quota or exhausted its attempt budget.
func (s *Strategy) Run(ctx context.Context) (*table.Report, error) {
	start := time.Now()
	stop := stopper.WithContext(ctx)
	meals := make([]int, s.table.Seats())
	attempts := make([]int, s.table.Seats())
	for seat := range meals {
		seat := seat
		stop.Go(func(ctx *stopper.Context) error {
			table.MarkDining(s.outcomes[seat])
			err := s.dine(ctx, seat, &meals[seat], &attempts[seat])
			table.MarkDone(s.outcomes[seat], err)
			return err
		})
	}
	err := stop.Wait()
	return &table.Report{
		Strategy:       s.Name(),
		MealsBySeat:    meals,
		AttemptsBySeat: attempts,
		Timeouts:       s.timeouts.Load(),
		Elapsed:        time.Since(start),
	}, err
}

// dine is one seat's full cycle. Acquisition order is normalized to
// the lower-indexed chopstick first.
func (s *Strategy) dine(ctx *stopper.Context, seat int, meals, attempts *int) error {
	t := s.table
	events := t.Events()
	holdBackoff := s.cfg.holdBackoff()
	retryBackoff := s.cfg.retryBackoff()

	lo, hi := t.Left(seat), t.Right(seat)
	if lo > hi {
		lo, hi = hi, lo
	}
	first := t.Stick(lo)
	second := t.Stick(hi)

	for *meals < t.Meals() && *attempts < s.cfg.MaxAttempts {
		if ctx.IsStopping() {
			return nil
		}
		*attempts++

		if err := t.Think(ctx, seat, *meals); err != nil {
			return err
		}
		events.EmitPhase(seat, *meals, table.Requesting)

		if !first.TryLockFor(s.cfg.AttemptTimeout, seat) {
			// Lost the race for the first chopstick. Nothing is held,
			// so a short randomized pause is enough to shuffle the
			// contenders.
			s.timeouts.Inc()
			events.EmitTimeout(seat, lo, *attempts)
			d, _ := retryBackoff.Next()
			if err := table.Sleep(ctx, d); err != nil {
				return err
			}
			continue
		}

		if !second.TryLockFor(s.cfg.AttemptTimeout, seat) {
			// Holding one chopstick while a neighbor wants it is the
			// dangerous state. Release it before backing off so the
			// partial hold cannot outlive the failed attempt.
			s.timeouts.Inc()
			events.EmitTimeout(seat, hi, *attempts)
			first.Unlock(seat)
			d, _ := holdBackoff.Next()
			if err := table.Sleep(ctx, d); err != nil {
				return err
			}
			continue
		}

		events.EmitGrant(seat, lo, hi)
		err := t.Eat(ctx, seat, *meals)

		// Return fires before the unlocks so the trace brackets stay
		// within the holding interval.
		events.EmitPhase(seat, *meals, table.Releasing)
		events.EmitReturn(seat, lo, hi)
		second.Unlock(seat)
		first.Unlock(seat)

		if err != nil {
			return err
		}
		*meals++
		s.meals.Inc()
	}
	return nil
}
