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

// Package stopper provides a utility for launching a group of related
// tasks whose lifecycle is bound to a [context.Context], with a
// soft-stop signal that precedes hard context cancellation.
package stopper

import (
	"context"
	"sync"
	"time"
)

// A Context is a [context.Context] that also coordinates a group of
// tasks started via [Context.Go]. Tasks may poll [Context.Stopping] to
// receive a graceful-shutdown request before the Context itself is
// canceled.
//
// A Context must be constructed by [WithContext].
type Context struct {
	context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	stopping chan struct{}
	wg       sync.WaitGroup

	mu struct {
		sync.Mutex
		err error // The first error returned by any task.
	}
}

var _ context.Context = (*Context)(nil)

// WithContext returns a task group bound to the given parent context.
// If the parent is canceled, the group enters its stopping state.
func WithContext(parent context.Context) *Context {
	ctx, cancel := context.WithCancel(parent)
	c := &Context{
		Context:  ctx,
		cancel:   cancel,
		stopping: make(chan struct{}),
	}
	go func() {
		<-ctx.Done()
		c.Stop(0)
	}()
	return c
}

// Go starts the task in a new goroutine. The first non-nil error
// returned by any task will be reported by [Context.Wait].
func (c *Context) Go(fn func(ctx *Context) error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := fn(c); err != nil {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.mu.err == nil {
				c.mu.err = err
			}
		}
	}()
}

// IsStopping returns true once [Context.Stop] has been called or the
// parent context has been canceled.
func (c *Context) IsStopping() bool {
	select {
	case <-c.stopping:
		return true
	default:
		return false
	}
}

// Stop requests a graceful shutdown. Tasks observing
// [Context.Stopping] should unwind. If the grace period elapses before
// all tasks have returned, the Context is canceled. A zero grace
// period cancels immediately.
func (c *Context) Stop(gracePeriod time.Duration) {
	c.stopOnce.Do(func() {
		close(c.stopping)
		if gracePeriod == 0 {
			c.cancel()
			return
		}
		time.AfterFunc(gracePeriod, c.cancel)
	})
}

// Stopping returns a channel that is closed when a graceful shutdown
// has been requested.
func (c *Context) Stopping() <-chan struct{} {
	return c.stopping
}

// Wait blocks until all tasks started by [Context.Go] have returned.
// It reports the first error returned by any task. The underlying
// context is canceled before Wait returns, releasing any resources
// associated with it.
func (c *Context) Wait() error {
	c.wg.Wait()
	c.cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mu.err
}
