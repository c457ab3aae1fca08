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
Package dine drives the dining philosophers arbitration strategies.

The driver composes the strategy packages: each strategy is
constructed over a fresh [table.Table] owned by that run alone, so no
arbitration state leaks between runs, and the strategies execute
sequentially while the seats within a run execute concurrently.
*/
package dine

import (
	"context"

	"github.com/cockroachdb/dinelab/permits"
	"github.com/cockroachdb/dinelab/table"
	"github.com/cockroachdb/dinelab/timeout"
	"github.com/cockroachdb/dinelab/waiter"
)

// A Strategy arbitrates one complete scenario run.
type Strategy interface {
	// Name identifies the strategy in reports.
	Name() string
	// Run executes the scenario to completion, blocking until every
	// seat has finished.
	Run(ctx context.Context) (*table.Report, error)
}

// A Factory constructs a Strategy over a freshly-built table.
type Factory func(t *table.Table) (Strategy, error)

// Permits returns a Factory for the bounded-concurrency strategy.
func Permits() Factory {
	return func(t *table.Table) (Strategy, error) { return permits.New(t) }
}

// Waiter returns a Factory for the central-waiter strategy.
func Waiter() Factory {
	return func(t *table.Table) (Strategy, error) { return waiter.New(t) }
}

// Timeout returns a Factory for the timeout-and-backoff strategy.
func Timeout(cfg timeout.Config) Factory {
	return func(t *table.Table) (Strategy, error) { return timeout.New(t, cfg) }
}

// DefaultFactories returns all three strategies in their presentation
// order.
func DefaultFactories(cfg timeout.Config) []Factory {
	return []Factory{Permits(), Waiter(), Timeout(cfg)}
}

// A Result pairs a strategy's report with the trace of its run.
type Result struct {
	Report *table.Report
	Trace  *Trace
}

// Run builds one table, one trace, and one strategy, and executes the
// scenario.
func Run(ctx context.Context, cfg table.Config, factory Factory) (*Result, error) {
	trace := NewTrace()
	t, err := table.New(cfg, trace.Events())
	if err != nil {
		return nil, err
	}
	s, err := factory(t)
	if err != nil {
		return nil, err
	}
	report, err := s.Run(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Report: report, Trace: trace}, nil
}

// RunAll executes the given strategies sequentially, each against its
// own fresh table. One run completes before the next begins.
func RunAll(ctx context.Context, cfg table.Config, factories []Factory) ([]*Result, error) {
	results := make([]*Result, 0, len(factories))
	for _, factory := range factories {
		result, err := Run(ctx, cfg, factory)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}
