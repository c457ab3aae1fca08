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
Package waiter implements the centralized arbitration strategy for the
dining philosophers ring.

A single Waiter owns the availability state of every chopstick. A seat
asks the Waiter for its pair and is suspended on a condition variable
until both chopsticks are available; the check and the reservation
happen in one critical section, so a seat never reserves only half of
its pair. Hold-and-wait is therefore impossible by construction and
the ring cannot deadlock.

Returning a pair wakes every suspended seat rather than one: the two
freed chopsticks may satisfy the predicates of two different
neighbors, and a single wake-up could revive a seat whose pair is
still incomplete while a now-satisfiable seat keeps sleeping. The
broadcast guarantees liveness, not FIFO service order.
*/
package waiter

import (
	"sync"

	"github.com/cockroachdb/dinelab/table"
)

// A Waiter arbitrates chopstick pairs for a ring of the given size.
// It is internally synchronized and safe for concurrent use.
type Waiter struct {
	events *table.Events
	seats  int

	mu struct {
		sync.Mutex
		available []bool
		cond      *sync.Cond
	}
}

// NewWaiter constructs a Waiter for a ring with the given number of
// seats. The events instance may be nil.
func NewWaiter(seats int, events *table.Events) *Waiter {
	w := &Waiter{events: events, seats: seats}
	w.mu.available = make([]bool, seats)
	for i := range w.mu.available {
		w.mu.available[i] = true
	}
	w.mu.cond = sync.NewCond(&w.mu.Mutex)
	return w
}

// Request suspends the seat until both of its chopsticks are
// available, then reserves the pair atomically and returns the pair's
// indices. The grant is emitted as a single combined event.
//
// There is no cancellation path: a request, once made, runs to
// completion. The deadlock-freedom argument relies on every granted
// pair eventually being returned, and every grant is followed by a
// bounded eating phase.
func (w *Waiter) Request(seat int) (left, right int) {
	left = seat
	right = (seat + 1) % w.seats

	w.mu.Lock()
	defer w.mu.Unlock()
	for !(w.mu.available[left] && w.mu.available[right]) {
		w.mu.cond.Wait()
	}
	w.mu.available[left] = false
	w.mu.available[right] = false
	w.events.EmitGrant(seat, left, right)
	return left, right
}

// Return releases the seat's pair and wakes every suspended seat so
// that each re-evaluates its own predicate.
func (w *Waiter) Return(seat int) {
	left := seat
	right := (seat + 1) % w.seats

	w.mu.Lock()
	defer w.mu.Unlock()
	w.mu.available[left] = true
	w.mu.available[right] = true
	w.events.EmitReturn(seat, left, right)
	w.mu.cond.Broadcast()
}

// Available returns a snapshot of the availability vector.
func (w *Waiter) Available() []bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]bool(nil), w.mu.available...)
}

// AvailableCount returns the number of chopsticks not currently
// reserved.
func (w *Waiter) AvailableCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, ok := range w.mu.available {
		if ok {
			n++
		}
	}
	return n
}
