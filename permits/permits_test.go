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

package permits

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/dinelab/table"
	"github.com/stretchr/testify/require"
)

func TestPoolCapacity(t *testing.T) {
	r := require.New(t)

	pool, err := NewPool(5)
	r.NoError(err)
	r.Equal(4, pool.Size())

	// The pool admits exactly one fewer entrant than the ring size.
	for i := 0; i < 4; i++ {
		r.True(pool.TryEnter())
	}
	r.False(pool.TryEnter())

	// A release wakes up the excluded entrant.
	pool.Exit()
	r.True(pool.TryEnter())

	for i := 0; i < 4; i++ {
		pool.Exit()
	}
}

func TestPoolBlocksWhenFull(t *testing.T) {
	r := require.New(t)

	pool, err := NewPool(2)
	r.NoError(err)
	r.NoError(pool.Enter(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	r.Error(pool.Enter(ctx))

	pool.Exit()
	r.NoError(pool.Enter(context.Background()))
	pool.Exit()
}

func TestPoolRejectsDegenerateRing(t *testing.T) {
	r := require.New(t)

	_, err := NewPool(1)
	r.ErrorIs(err, table.ErrInvalidConfig)
}
