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
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/dinelab/table"
)

// EntryKind discriminates the entries of a [Trace].
type EntryKind int

// The kinds of trace entries.
const (
	// PhaseEntry records a seat's phase transition.
	PhaseEntry EntryKind = iota
	// GrantEntry records an indivisible chopstick-pair grant.
	GrantEntry
	// ReturnEntry records a chopstick-pair return.
	ReturnEntry
	// TimeoutEntry records an expired acquisition attempt.
	TimeoutEntry
)

// An Entry is one observed event of a scenario run.
type Entry struct {
	At      time.Time
	Kind    EntryKind
	Seat    int
	Meal    int         // PhaseEntry only.
	Phase   table.Phase // PhaseEntry only.
	Left    int         // GrantEntry and ReturnEntry.
	Right   int         // GrantEntry and ReturnEntry.
	Stick   int         // TimeoutEntry only.
	Attempt int         // TimeoutEntry only.
}

func (e Entry) String() string {
	switch e.Kind {
	case PhaseEntry:
		return fmt.Sprintf("philosopher %d %s (meal %d)", e.Seat, e.Phase, e.Meal+1)
	case GrantEntry:
		return fmt.Sprintf("philosopher %d granted chopsticks %d and %d", e.Seat, e.Left, e.Right)
	case ReturnEntry:
		return fmt.Sprintf("philosopher %d returned chopsticks %d and %d", e.Seat, e.Left, e.Right)
	case TimeoutEntry:
		return fmt.Sprintf("philosopher %d timed out on chopstick %d (attempt %d)", e.Seat, e.Stick, e.Attempt)
	default:
		return fmt.Sprintf("entry(%d)", int(e.Kind))
	}
}

// A Trace accumulates the sequential event log of a scenario run. The
// log is sufficient to reconstruct the interleaving of seats: grants
// and returns bracket every eating phase, so safety properties can be
// checked after the fact.
//
// A Trace is internally synchronized and safe for concurrent use.
type Trace struct {
	mu struct {
		sync.Mutex
		entries []Entry
	}
}

// NewTrace constructs an empty Trace.
func NewTrace() *Trace {
	return &Trace{}
}

// Events returns a [table.Events] wired to record into the Trace.
func (tr *Trace) Events() *table.Events {
	return &table.Events{
		OnPhase: func(seat, meal int, phase table.Phase) {
			tr.append(Entry{Kind: PhaseEntry, Seat: seat, Meal: meal, Phase: phase})
		},
		OnGrant: func(seat, left, right int) {
			tr.append(Entry{Kind: GrantEntry, Seat: seat, Left: left, Right: right})
		},
		OnReturn: func(seat, left, right int) {
			tr.append(Entry{Kind: ReturnEntry, Seat: seat, Left: left, Right: right})
		},
		OnTimeout: func(seat, stick, attempt int) {
			tr.append(Entry{Kind: TimeoutEntry, Seat: seat, Stick: stick, Attempt: attempt})
		},
	}
}

// Entries returns a copy of the log in arrival order.
func (tr *Trace) Entries() []Entry {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]Entry(nil), tr.mu.entries...)
}

// Len returns the number of recorded entries.
func (tr *Trace) Len() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.mu.entries)
}

func (tr *Trace) append(e Entry) {
	e.At = time.Now()
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.mu.entries = append(tr.mu.entries, e)
}
