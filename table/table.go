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
Package table contains the shared scenario model for the dining
philosophers arbitration strategies.

A Table owns a ring of N chopsticks. Seat i needs chopsticks i (left)
and (i+1) mod N (right) in order to eat, so each chopstick is contended
by exactly two adjacent seats. A Table carries no arbitration policy of
its own: the strategy packages decide how a seat may come to hold its
two chopsticks without deadlocking the ring.

All state is scoped to a single Table constructed per scenario run.
Strategies report per-seat progress through [Outcome] values and emit a
phase trace through an optional [Events] instance.
*/
package table

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrInvalidConfig is returned when a configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config describes a scenario: the size of the ring and the timing of
// the uncontended phases.
type Config struct {
	// Seats is the number of philosophers (and chopsticks).
	Seats int
	// Meals is the per-seat meal quota.
	Meals int
	// ThinkMin and ThinkMax bound the randomized thinking delay.
	ThinkMin time.Duration
	ThinkMax time.Duration
	// EatTime is how long a seat holds its chopsticks while eating.
	EatTime time.Duration
	// Seed makes the per-seat jitter reproducible. Zero selects a
	// time-based seed.
	Seed int64
}

// DefaultConfig returns the reference scenario: five seats, three
// meals each, with the classroom timing constants.
func DefaultConfig() Config {
	return Config{
		Seats:    5,
		Meals:    3,
		ThinkMin: 300 * time.Millisecond,
		ThinkMax: 1500 * time.Millisecond,
		EatTime:  600 * time.Millisecond,
	}
}

// Validate returns an error describing the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Seats < 2:
		return fmt.Errorf("%w: at least two seats required, had %d", ErrInvalidConfig, c.Seats)
	case c.Meals < 1:
		return fmt.Errorf("%w: at least one meal required, had %d", ErrInvalidConfig, c.Meals)
	case c.ThinkMin < 0 || c.ThinkMax < c.ThinkMin:
		return fmt.Errorf("%w: thinking delays must satisfy 0 <= min <= max", ErrInvalidConfig)
	case c.EatTime < 0:
		return fmt.Errorf("%w: eating time must be non-negative", ErrInvalidConfig)
	}
	return nil
}

// A Table owns the chopstick ring and the scenario timing for one run.
// The exported query methods are safe for concurrent use; the
// per-seat methods ([Table.Think], [Table.Eat]) must be called only
// from the goroutine that owns the seat.
type Table struct {
	cfg    Config
	events *Events
	rngs   []*rand.Rand // One generator per seat, owned by its goroutine.
	sticks []*Stick
}

// New constructs a Table for the given scenario. The events instance
// may be nil if no trace is wanted.
func New(cfg Config, events *Events) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	t := &Table{
		cfg:    cfg,
		events: events,
		rngs:   make([]*rand.Rand, cfg.Seats),
		sticks: make([]*Stick, cfg.Seats),
	}
	for i := range t.sticks {
		t.rngs[i] = rand.New(rand.NewSource(seed + int64(i)))
		t.sticks[i] = newStick(i)
	}
	return t, nil
}

// Events returns the trace sink associated with the Table. It may be
// a nil receiver, which is safe to emit against.
func (t *Table) Events() *Events { return t.events }

// Meals returns the per-seat meal quota.
func (t *Table) Meals() int { return t.cfg.Meals }

// Seats returns the number of seats in the ring.
func (t *Table) Seats() int { return len(t.sticks) }

// Left returns the index of the seat's left chopstick.
func (t *Table) Left(seat int) int { return seat }

// Right returns the index of the seat's right chopstick.
func (t *Table) Right(seat int) int { return (seat + 1) % len(t.sticks) }

// Stick returns the chopstick at the given index.
func (t *Table) Stick(idx int) *Stick { return t.sticks[idx] }

// HeldCount returns the number of chopsticks currently held. Together
// with [Table.Seats] this allows conservation checks: held plus
// available always equals the ring size.
func (t *Table) HeldCount() int {
	held := 0
	for _, s := range t.sticks {
		if s.Holder() != NoHolder {
			held++
		}
	}
	return held
}

// Holders returns a snapshot of the holder of each chopstick, with
// [NoHolder] for free chopsticks.
func (t *Table) Holders() []int {
	ret := make([]int, len(t.sticks))
	for i, s := range t.sticks {
		ret[i] = s.Holder()
	}
	return ret
}

// Think emits the thinking phase for the seat and sleeps for a
// randomized duration within the configured bounds. It returns early
// with the context error if the context is canceled.
func (t *Table) Think(ctx context.Context, seat, meal int) error {
	t.events.EmitPhase(seat, meal, Thinking)
	d := t.cfg.ThinkMin
	if spread := t.cfg.ThinkMax - t.cfg.ThinkMin; spread > 0 {
		d += time.Duration(t.rngs[seat].Int63n(int64(spread)))
	}
	return Sleep(ctx, d)
}

// Eat emits the eating phase for the seat and sleeps for the
// configured eating time. The caller must hold both of the seat's
// chopsticks. It returns early with the context error if the context
// is canceled; the caller remains responsible for releasing the
// chopsticks.
func (t *Table) Eat(ctx context.Context, seat, meal int) error {
	t.events.EmitPhase(seat, meal, Eating)
	return Sleep(ctx, t.cfg.EatTime)
}

// Sleep blocks for the given duration or until the context is
// canceled, in which case the context error is returned.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
