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

import "fmt"

// Phase identifies a step in a seat's eating cycle.
type Phase int

// The phases of a seat's cycle, in order.
const (
	Thinking Phase = iota
	Requesting
	Eating
	Releasing
)

func (p Phase) String() string {
	switch p {
	case Thinking:
		return "thinking"
	case Requesting:
		return "requesting"
	case Eating:
		return "eating"
	case Releasing:
		return "releasing"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Events provides optional callbacks to observe a scenario run. A nil
// *Events is valid and discards everything, so strategies can emit
// unconditionally.
//
// Callbacks are invoked synchronously from seat goroutines and must be
// safe for concurrent use.
type Events struct {
	// OnPhase is invoked at each phase transition of a seat's cycle.
	OnPhase func(seat, meal int, phase Phase)
	// OnGrant is invoked when a seat comes to hold both of its
	// chopsticks. The pair is reported in a single event: a grant is
	// indivisible and a trace never shows a half-granted pair.
	OnGrant func(seat, left, right int)
	// OnReturn is invoked when a seat has released both chopsticks.
	OnReturn func(seat, left, right int)
	// OnTimeout is invoked when a bounded acquisition attempt expires.
	OnTimeout func(seat, stick, attempt int)
}

// EmitPhase invokes OnPhase if configured.
func (e *Events) EmitPhase(seat, meal int, phase Phase) {
	if e != nil && e.OnPhase != nil {
		e.OnPhase(seat, meal, phase)
	}
}

// EmitGrant invokes OnGrant if configured.
func (e *Events) EmitGrant(seat, left, right int) {
	if e != nil && e.OnGrant != nil {
		e.OnGrant(seat, left, right)
	}
}

// EmitReturn invokes OnReturn if configured.
func (e *Events) EmitReturn(seat, left, right int) {
	if e != nil && e.OnReturn != nil {
		e.OnReturn(seat, left, right)
	}
}

// EmitTimeout invokes OnTimeout if configured.
func (e *Events) EmitTimeout(seat, stick, attempt int) {
	if e != nil && e.OnTimeout != nil {
		e.OnTimeout(seat, stick, attempt)
	}
}
