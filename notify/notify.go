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

// Package notify contains a utility type to implement a variable that
// can be waited upon for updates.
package notify

import "sync"

// A Var implements an observable variable pattern. It is analogous to
// an atomic value combined with a broadcast channel: readers receive
// the current value plus a channel that is closed the next time the
// value is replaced.
//
// The zero value of a Var is ready to use, holding the zero value of T.
// A Var should not be copied after first use.
type Var[T any] struct {
	mu      sync.Mutex
	updated chan struct{}
	value   T
}

// VarOf returns a [Var] that holds the given value.
func VarOf[T any](value T) *Var[T] {
	v := &Var[T]{}
	v.value = value
	return v
}

// Get returns the current value and a channel that will be closed when
// the value is replaced by a subsequent call to [Var.Set] or [Var.Swap].
func (v *Var[T]) Get() (value T, updated <-chan struct{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.updated == nil {
		v.updated = make(chan struct{})
	}
	return v.value, v.updated
}

// Peek returns the current value without the change channel.
func (v *Var[T]) Peek() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Set replaces the current value, notifying any callers that are
// waiting on a channel previously returned from [Var.Get].
func (v *Var[T]) Set(value T) {
	_ = v.Swap(value)
}

// Swap replaces the current value as [Var.Set] does and returns the
// previous value.
func (v *Var[T]) Swap(value T) T {
	v.mu.Lock()
	defer v.mu.Unlock()
	old := v.value
	v.value = value
	if v.updated != nil {
		close(v.updated)
		v.updated = nil
	}
	return old
}
