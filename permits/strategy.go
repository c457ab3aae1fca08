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

package permits

import (
	"context"
	"time"

	"github.com/cockroachdb/dinelab/stopper"
	"github.com/cockroachdb/dinelab/table"
)

// Strategy runs a scenario under the bounded-concurrency discipline.
// A Strategy is good for a single call to [Strategy.Run].
type Strategy struct {
	outcomes []table.Outcome
	pool     *Pool
	table    *table.Table
}

// New constructs a Strategy over the given table.
func New(t *table.Table) (*Strategy, error) {
	pool, err := NewPool(t.Seats())
	if err != nil {
		return nil, err
	}
	s := &Strategy{
		outcomes: make([]table.Outcome, t.Seats()),
		pool:     pool,
		table:    t,
	}
	for i := range s.outcomes {
		s.outcomes[i] = table.NewOutcome()
	}
	return s, nil
}

// Name implements the driver's Strategy interface.
func (s *Strategy) Name() string { return "permits" }

// Outcomes returns the per-seat status variables for observation
// during or after a run.
func (s *Strategy) Outcomes() []table.Outcome { return s.outcomes }

// Run executes one seat goroutine per philosopher and blocks until
// every seat has finished its meal quota or the context is canceled.
func (s *Strategy) Run(ctx context.Context) (*table.Report, error) {
	start := time.Now()
	stop := stopper.WithContext(ctx)
	meals := make([]int, s.table.Seats())
	for seat := range meals {
		seat := seat
		stop.Go(func(ctx *stopper.Context) error {
			table.MarkDining(s.outcomes[seat])
			err := s.dine(ctx, seat, &meals[seat])
			table.MarkDone(s.outcomes[seat], err)
			return err
		})
	}
	err := stop.Wait()
	return &table.Report{
		Strategy:    s.Name(),
		MealsBySeat: meals,
		Elapsed:     time.Since(start),
	}, err
}

// dine is one seat's full cycle. The permit is always acquired before
// either chopstick and released only after both are back on the table,
// so a seat never holds a chopstick without a permit.
func (s *Strategy) dine(ctx *stopper.Context, seat int, meals *int) error {
	t := s.table
	events := t.Events()
	left := t.Stick(t.Left(seat))
	right := t.Stick(t.Right(seat))

	for meal := 0; meal < t.Meals(); meal++ {
		if err := t.Think(ctx, seat, meal); err != nil {
			return err
		}

		events.EmitPhase(seat, meal, table.Requesting)
		if err := s.pool.Enter(ctx); err != nil {
			return err
		}

		if err := left.Lock(ctx, seat); err != nil {
			s.pool.Exit()
			return err
		}
		if err := right.Lock(ctx, seat); err != nil {
			left.Unlock(seat)
			s.pool.Exit()
			return err
		}
		events.EmitGrant(seat, left.ID(), right.ID())

		err := t.Eat(ctx, seat, meal)

		// The return event fires while both sticks are still held so
		// that a trace never shows a grant racing ahead of the
		// matching return.
		events.EmitPhase(seat, meal, table.Releasing)
		events.EmitReturn(seat, left.ID(), right.ID())
		right.Unlock(seat)
		left.Unlock(seat)
		s.pool.Exit()

		if err != nil {
			return err
		}
		*meals++
	}
	return nil
}
