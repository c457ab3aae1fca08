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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// A stick is a mutex: concurrent unsynchronized increments under the
// lock must not be lost.
func TestStickMutualExclusion(t *testing.T) {
	const workers = 8
	const rounds = 200
	r := require.New(t)

	s := newStick(0)
	ctx := context.Background()
	counter := 0 // Deliberately unsynchronized; the stick is the lock.

	eg := &errgroup.Group{}
	for w := 0; w < workers; w++ {
		w := w
		eg.Go(func() error {
			for i := 0; i < rounds; i++ {
				if err := s.Lock(ctx, w); err != nil {
					return err
				}
				counter++
				s.Unlock(w)
			}
			return nil
		})
	}
	r.NoError(eg.Wait())
	r.Equal(workers*rounds, counter)
	r.Equal(NoHolder, s.Holder())
}

func TestStickTryLockForBound(t *testing.T) {
	const bound = 50 * time.Millisecond
	r := require.New(t)

	s := newStick(0)
	s.MustLock(0)

	// A contended attempt resumes within the bound plus scheduling
	// slack, and fails.
	start := time.Now()
	r.False(s.TryLockFor(bound, 1))
	elapsed := time.Since(start)
	r.GreaterOrEqual(elapsed, bound)
	r.Less(elapsed, bound+time.Second)
	r.Equal(0, s.Holder())

	// An uncontended attempt succeeds immediately.
	s.Unlock(0)
	r.True(s.TryLockFor(bound, 1))
	r.Equal(1, s.Holder())
	s.Unlock(1)
}

func TestStickLockCancel(t *testing.T) {
	r := require.New(t)

	s := newStick(0)
	s.MustLock(0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	r.Error(s.Lock(ctx, 1))
	r.Equal(0, s.Holder())
}

func TestStickMisuse(t *testing.T) {
	r := require.New(t)

	s := newStick(3)
	s.MustLock(0)

	r.Panics(func() { s.Unlock(1) })
	r.Panics(func() { s.MustLock(1) })

	s.Unlock(0)
	r.Panics(func() { s.Unlock(0) })
}
