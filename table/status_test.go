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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	r := require.New(t)

	o := NewOutcome()
	status := o.Peek()
	r.False(status.Dining())
	r.False(status.Completed())
	r.Equal("seated", status.String())

	MarkDining(o)
	status = o.Peek()
	r.True(status.Dining())
	r.False(status.Completed())

	MarkDone(o, nil)
	status = o.Peek()
	r.True(status.Completed())
	r.True(status.Success())
	r.NoError(status.Err())
}

func TestStatusError(t *testing.T) {
	r := require.New(t)

	boom := errors.New("boom")
	status := StatusFor(boom)
	r.True(status.Completed())
	r.False(status.Success())
	r.ErrorIs(status.Err(), boom)
	r.Contains(status.String(), "boom")
}

func TestWaitOutcomes(t *testing.T) {
	r := require.New(t)
	ctx := context.Background()

	a, b := NewOutcome(), NewOutcome()
	go func() {
		MarkDining(a)
		MarkDone(a, nil)
		MarkDone(b, nil)
	}()
	r.NoError(Wait(ctx, []Outcome{a, b}))
}

func TestWaitPropagatesError(t *testing.T) {
	r := require.New(t)

	boom := errors.New("boom")
	a := NewOutcome()
	MarkDone(a, boom)
	r.ErrorIs(Wait(context.Background(), []Outcome{a}), boom)
}

func TestWaitObservesCancellation(t *testing.T) {
	r := require.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := NewOutcome()
	r.ErrorIs(Wait(ctx, []Outcome{a}), context.Canceled)
}
