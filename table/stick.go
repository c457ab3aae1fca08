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

package table

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/atomic"
)

// NoHolder is reported by [Stick.Holder] when a chopstick is free.
const NoHolder = -1

// A Stick is an exclusively-owned chopstick. It is a mutual-exclusion
// lock built on a single-slot channel so that acquisition can also be
// attempted with a bounded wait, which [sync.Mutex] cannot express.
//
// The lock is not reentrant and makes no fairness guarantee among
// blocked acquirers.
type Stick struct {
	id     int
	holder atomic.Int32
	slot   chan struct{} // Holding the token in the slot is holding the stick.
}

func newStick(id int) *Stick {
	s := &Stick{
		id:   id,
		slot: make(chan struct{}, 1),
	}
	s.holder.Store(NoHolder)
	return s
}

// ID returns the chopstick's position in the ring.
func (s *Stick) ID() int { return s.id }

// Holder returns the seat currently holding the chopstick, or
// [NoHolder]. The value is a point-in-time observation.
func (s *Stick) Holder() int { return int(s.holder.Load()) }

// Lock blocks until the chopstick is acquired for the seat or the
// context is canceled, in which case the context error is returned.
func (s *Stick) Lock(ctx context.Context, seat int) error {
	select {
	case s.slot <- struct{}{}:
		s.holder.Store(int32(seat))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MustLock acquires the chopstick without blocking, panicking if it is
// held. It is used after an arbitration grant, when the chopstick is
// guaranteed to be free; a collision there is always an arbiter bug.
func (s *Stick) MustLock(seat int) {
	select {
	case s.slot <- struct{}{}:
		s.holder.Store(int32(seat))
	default:
		panic(fmt.Sprintf("stick %d granted to seat %d while held by %d", s.id, seat, s.holder.Load()))
	}
}

// TryLockFor attempts to acquire the chopstick for the seat, waiting
// no longer than the given bound. It reports whether the chopstick was
// acquired. A timeout is an expected outcome under contention, not an
// error.
func (s *Stick) TryLockFor(d time.Duration, seat int) bool {
	// Fast path for an uncontended stick.
	select {
	case s.slot <- struct{}{}:
		s.holder.Store(int32(seat))
		return true
	default:
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case s.slot <- struct{}{}:
		s.holder.Store(int32(seat))
		return true
	case <-timer.C:
		return false
	}
}

// Unlock releases the chopstick. It panics if the seat does not hold
// the chopstick, since that is always a caller bug.
func (s *Stick) Unlock(seat int) {
	if h := s.holder.Load(); h != int32(seat) {
		panic(fmt.Sprintf("seat %d released stick %d held by %d", seat, s.id, h))
	}
	s.holder.Store(NoHolder)
	<-s.slot
}
