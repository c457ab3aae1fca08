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

package waiter

import (
	"context"
	"time"

	"github.com/cockroachdb/dinelab/stopper"
	"github.com/cockroachdb/dinelab/table"
)

// Strategy runs a scenario under the central-waiter discipline. A
// Strategy is good for a single call to [Strategy.Run].
type Strategy struct {
	outcomes []table.Outcome
	table    *table.Table
	waiter   *Waiter
}

// New constructs a Strategy over the given table.
func New(t *table.Table) (*Strategy, error) {
	s := &Strategy{
		outcomes: make([]table.Outcome, t.Seats()),
		table:    t,
		waiter:   NewWaiter(t.Seats(), t.Events()),
	}
	for i := range s.outcomes {
		s.outcomes[i] = table.NewOutcome()
	}
	return s, nil
}

// Name implements the driver's Strategy interface.
func (s *Strategy) Name() string { return "waiter" }

// Outcomes returns the per-seat status variables for observation
// during or after a run.
func (s *Strategy) Outcomes() []table.Outcome { return s.outcomes }

// Waiter returns the arbiter, exposed for availability inspection.
func (s *Strategy) Waiter() *Waiter { return s.waiter }

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

// dine is one seat's full cycle. After a grant, both chopsticks are
// guaranteed free, so taking their locks can never block; the locks
// are still taken so that holder bookkeeping is uniform across
// strategies.
func (s *Strategy) dine(ctx *stopper.Context, seat int, meals *int) error {
	t := s.table
	events := t.Events()

	for meal := 0; meal < t.Meals(); meal++ {
		if err := t.Think(ctx, seat, meal); err != nil {
			return err
		}

		events.EmitPhase(seat, meal, table.Requesting)
		left, right := s.waiter.Request(seat)
		t.Stick(left).MustLock(seat)
		t.Stick(right).MustLock(seat)

		err := t.Eat(ctx, seat, meal)

		events.EmitPhase(seat, meal, table.Releasing)
		t.Stick(right).Unlock(seat)
		t.Stick(left).Unlock(seat)
		s.waiter.Return(seat)

		if err != nil {
			return err
		}
		*meals++
	}
	return nil
}
