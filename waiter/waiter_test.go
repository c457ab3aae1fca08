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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAtomicGrant(t *testing.T) {
	r := require.New(t)

	w := NewWaiter(5, nil)
	r.Equal(5, w.AvailableCount())

	left, right := w.Request(0)
	r.Equal(0, left)
	r.Equal(1, right)

	// Both chopsticks left the pool in one step; a seat never holds
	// exactly one.
	r.Equal([]bool{false, false, true, true, true}, w.Available())

	w.Return(0)
	r.Equal(5, w.AvailableCount())
}

func TestRingWraps(t *testing.T) {
	r := require.New(t)

	w := NewWaiter(5, nil)
	left, right := w.Request(4)
	r.Equal(4, left)
	r.Equal(0, right)
	w.Return(4)
}

// A blocked request is granted once, and only once, its full pair is
// back.
func TestBroadcastLiveness(t *testing.T) {
	r := require.New(t)

	w := NewWaiter(5, nil)
	w.Request(0) // Holds 0 and 1.
	w.Request(2) // Holds 2 and 3.

	granted := make(chan struct{})
	go func() {
		w.Request(1) // Needs 1 and 2.
		close(granted)
	}()

	// Returning seat 0's pair frees stick 1, but stick 2 is still
	// reserved: the broadcast must not grant the partial pair.
	w.Return(0)
	select {
	case <-granted:
		r.Fail("granted with only half the pair available")
	case <-time.After(50 * time.Millisecond):
	}

	// Freeing seat 2's pair completes the predicate.
	w.Return(2)
	select {
	case <-granted:
	case <-time.After(30 * time.Second):
		r.Fail("request was never granted")
	}
	w.Return(1)
	r.Equal(5, w.AvailableCount())
}

// Two waiting seats with disjoint needs are both served by the
// broadcast; a single wake-up could strand one of them.
func TestBroadcastWakesAllEligible(t *testing.T) {
	r := require.New(t)

	w := NewWaiter(6, nil)
	w.Request(0) // Holds 0 and 1, blocking seat 1.
	w.Request(3) // Holds 3 and 4, blocking seat 4.

	grants := make(chan int, 2)
	for _, seat := range []int{1, 4} {
		seat := seat
		go func() {
			w.Request(seat)
			grants <- seat
		}()
	}

	// Each waiting seat is missing one chopstick, so neither request
	// can be granted yet.
	select {
	case seat := <-grants:
		r.Failf("early grant", "seat %d granted before any return", seat)
	case <-time.After(50 * time.Millisecond):
	}

	w.Return(0)
	w.Return(3)
	seen := map[int]bool{}
	for i := 0; i < 2; i++ {
		select {
		case seat := <-grants:
			seen[seat] = true
		case <-time.After(30 * time.Second):
			r.Fail("broadcast stranded an eligible seat")
		}
	}
	r.True(seen[1] && seen[4])
}
