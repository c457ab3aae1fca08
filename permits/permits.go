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
Package permits implements the bounded-concurrency arbitration
strategy for the dining philosophers ring.

The strategy prevents circular wait by capping the number of seats
that may compete for chopsticks at N-1. With at least one seat always
excluded from the competition, the resource graph can never close into
a full cycle: some competing seat is guaranteed to find both of its
chopsticks eventually. Within the permit, chopsticks may be taken in
either order.

The pool does no identity tracking. It is a pure counting limiter and
makes no ordering guarantee among blocked entrants.
*/
package permits

import (
	"context"
	"fmt"

	"github.com/cockroachdb/dinelab/table"
	"golang.org/x/sync/semaphore"
)

// A Pool bounds how many seats may simultaneously attempt to pick up
// chopsticks. The capacity is fixed at one less than the ring size;
// that bound is what the deadlock-freedom argument rests on, so it is
// not independently tunable.
type Pool struct {
	sem  *semaphore.Weighted
	size int
}

// NewPool constructs a Pool for a ring with the given number of seats.
func NewPool(seats int) (*Pool, error) {
	if seats < 2 {
		return nil, fmt.Errorf("%w: a permit pool needs at least two seats, had %d",
			table.ErrInvalidConfig, seats)
	}
	return &Pool{
		sem:  semaphore.NewWeighted(int64(seats - 1)),
		size: seats - 1,
	}, nil
}

// Size returns the pool capacity.
func (p *Pool) Size() int { return p.size }

// Enter blocks until a permit is available or the context is canceled.
// Prolonged blocking is expected contention, not an error.
func (p *Pool) Enter(ctx context.Context) error {
	return p.sem.Acquire(ctx, 1)
}

// TryEnter acquires a permit without blocking, reporting success.
func (p *Pool) TryEnter() bool {
	return p.sem.TryAcquire(1)
}

// Exit returns a permit to the pool, waking a blocked entrant if one
// exists. It never blocks.
func (p *Pool) Exit() {
	p.sem.Release(1)
}
