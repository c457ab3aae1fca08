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

	"github.com/cockroachdb/dinelab/notify"
)

// Outcome is a convenience type alias for a seat's observable status.
type Outcome = *notify.Var[*Status]

// NewOutcome is a convenience method to allocate an Outcome in its
// initial state.
func NewOutcome() Outcome {
	return notify.VarOf(seated)
}

// Status describes the progress of one seat through a scenario run.
type Status struct {
	err error
}

// Sentinel instances of Status.
var (
	seated = &Status{}
	dining = &Status{}
	done   = &Status{}
)

// StatusFor constructs a successful status if err is nil. Otherwise,
// it returns a new Status object that reports the error.
func StatusFor(err error) *Status {
	if err == nil {
		return done
	}
	return &Status{err: err}
}

// MarkDining transitions the Outcome to its running state.
func MarkDining(o Outcome) {
	o.Set(dining)
}

// MarkDone transitions the Outcome to its terminal state, successful
// if err is nil.
func MarkDone(o Outcome, err error) {
	o.Set(StatusFor(err))
}

// Completed returns true once the seat has finished its run, whether
// or not it succeeded. See also [Status.Success].
func (s *Status) Completed() bool {
	return s == done || s.err != nil
}

// Dining returns true while the seat's cycle is in progress.
func (s *Status) Dining() bool {
	return s == dining
}

// Err returns the error that ended the seat's run, if any.
func (s *Status) Err() error {
	return s.err
}

// Success returns true if the seat finished its run without error.
func (s *Status) Success() bool {
	return s == done
}

func (s *Status) String() string {
	switch s {
	case seated:
		return "seated"
	case dining:
		return "dining"
	case done:
		return "done"
	default:
		return fmt.Sprintf("error: %v", s.err)
	}
}

// Wait blocks until every Outcome has completed, returning the first
// error encountered. It returns the context error if the context is
// canceled first.
func Wait(ctx context.Context, outcomes []Outcome) error {
outcome:
	for _, outcome := range outcomes {
		for {
			status, changed := outcome.Get()
			if status.Success() {
				continue outcome
			}
			if err := status.Err(); err != nil {
				return err
			}
			select {
			case <-changed:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}
