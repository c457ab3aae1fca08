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
	"fmt"
	"time"
)

// A Report summarizes one strategy's scenario run.
type Report struct {
	// Strategy is the name of the strategy that produced the run.
	Strategy string
	// MealsBySeat records how many meals each seat finished.
	MealsBySeat []int
	// AttemptsBySeat records acquisition attempts per seat. It is nil
	// for strategies that do not budget attempts.
	AttemptsBySeat []int
	// Timeouts is the run-wide count of expired acquisition attempts.
	// It is zero for strategies that never time out.
	Timeouts int64
	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// TotalMeals returns the number of meals finished across all seats.
func (r *Report) TotalMeals() int {
	total := 0
	for _, m := range r.MealsBySeat {
		total += m
	}
	return total
}

func (r *Report) String() string {
	return fmt.Sprintf("%s: %d meals across %d seats, %d timeouts, %s",
		r.Strategy, r.TotalMeals(), len(r.MealsBySeat), r.Timeouts, r.Elapsed.Round(time.Millisecond))
}
