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

package dine

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/dinelab/table"
	"github.com/cockroachdb/dinelab/timeout"
	"github.com/stretchr/testify/require"
)

func testConfig() table.Config {
	return table.Config{
		Seats:    5,
		Meals:    3,
		ThinkMin: 0,
		ThinkMax: 2 * time.Millisecond,
		EatTime:  time.Millisecond,
		Seed:     1,
	}
}

func testTimeoutConfig() timeout.Config {
	cfg := timeout.DefaultConfig()
	cfg.AttemptTimeout = 50 * time.Millisecond
	cfg.HoldBackoffBase = time.Millisecond
	cfg.HoldBackoffCap = 8 * time.Millisecond
	cfg.RetryDelay = 2 * time.Millisecond
	cfg.RetryJitter = time.Millisecond
	return cfg
}

// replay walks a trace in arrival order and fails if any chopstick is
// ever granted while held, or returned by a non-holder. It returns
// the number of eating-phase entries.
func replay(t *testing.T, entries []Entry) int {
	t.Helper()
	owner := map[int]int{}
	eating := 0
	for _, e := range entries {
		switch e.Kind {
		case PhaseEntry:
			if e.Phase == table.Eating {
				eating++
			}
		case GrantEntry:
			for _, stick := range []int{e.Left, e.Right} {
				if prev, held := owner[stick]; held {
					t.Errorf("stick %d granted to seat %d while held by seat %d", stick, e.Seat, prev)
				}
				owner[stick] = e.Seat
			}
		case ReturnEntry:
			for _, stick := range []int{e.Left, e.Right} {
				if prev, held := owner[stick]; !held || prev != e.Seat {
					t.Errorf("stick %d returned by seat %d, held by seat %d", stick, e.Seat, prev)
				}
				delete(owner, stick)
			}
		}
	}
	if len(owner) != 0 {
		t.Errorf("sticks still held at end of trace: %v", owner)
	}
	return eating
}

func TestRunAll(t *testing.T) {
	r := require.New(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	results, err := RunAll(ctx, testConfig(), DefaultFactories(testTimeoutConfig()))
	r.NoError(err)
	r.Len(results, 3)

	r.Equal("permits", results[0].Report.Strategy)
	r.Equal("waiter", results[1].Report.Strategy)
	r.Equal("timeout", results[2].Report.Strategy)

	// The two blocking strategies complete the full quota; the
	// optimistic one is best-effort.
	r.Equal(15, results[0].Report.TotalMeals())
	r.Equal(15, results[1].Report.TotalMeals())
	r.LessOrEqual(results[2].Report.TotalMeals(), 15)

	for _, result := range results {
		eating := replay(t, result.Trace.Entries())
		r.Equal(result.Report.TotalMeals(), eating,
			"eating entries must match reported meals for %s", result.Report.Strategy)
	}
}

// Every eating phase in a trace is bracketed by the seat's own grant
// and return: reconstructing per-seat state from the log alone must
// never show a seat eating without a full pair.
func TestTraceBracketsEating(t *testing.T) {
	r := require.New(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := Run(ctx, testConfig(), Waiter())
	r.NoError(err)

	holding := map[int]bool{}
	for _, e := range result.Trace.Entries() {
		switch e.Kind {
		case GrantEntry:
			holding[e.Seat] = true
		case ReturnEntry:
			holding[e.Seat] = false
		case PhaseEntry:
			if e.Phase == table.Eating {
				r.Truef(holding[e.Seat], "seat %d eating without a grant", e.Seat)
			}
		}
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	r := require.New(t)

	cfg := testConfig()
	cfg.Seats = 0
	_, err := Run(context.Background(), cfg, Permits())
	r.ErrorIs(err, table.ErrInvalidConfig)
}

func TestEntryStrings(t *testing.T) {
	r := require.New(t)

	tests := []struct {
		entry Entry
		want  string
	}{
		{Entry{Kind: PhaseEntry, Seat: 2, Meal: 0, Phase: table.Eating}, "philosopher 2 eating (meal 1)"},
		{Entry{Kind: GrantEntry, Seat: 1, Left: 1, Right: 2}, "philosopher 1 granted chopsticks 1 and 2"},
		{Entry{Kind: ReturnEntry, Seat: 1, Left: 1, Right: 2}, "philosopher 1 returned chopsticks 1 and 2"},
		{Entry{Kind: TimeoutEntry, Seat: 4, Stick: 0, Attempt: 3}, "philosopher 4 timed out on chopstick 0 (attempt 3)"},
	}
	for _, tc := range tests {
		r.Equal(tc.want, tc.entry.String())
	}
}
