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

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/dinelab/dine"
	"github.com/cockroachdb/dinelab/table"
	"github.com/cockroachdb/dinelab/timeout"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "dinelab",
	Short: "Run the dining philosophers arbitration strategies",
	Long: `Dinelab runs one or more deadlock-avoidance strategies for the
dining philosophers problem and prints the phase trace of each run
followed by a summary.

Available strategies:
  permits  bound concurrent diners to N-1 with a permit pool
  waiter   centralize grants behind an atomic pair-reserving arbiter
  timeout  acquire optimistically with bounded waits and backoff
  all      run each of the above in sequence`,
	SilenceUsage: true,
	RunE:         runRoot,
}

func init() {
	flags := rootCmd.Flags()
	flags.Int("seats", 5, "number of philosophers at the table")
	flags.Int("meals", 3, "meal quota per philosopher")
	flags.Duration("think-min", 300*time.Millisecond, "minimum thinking delay")
	flags.Duration("think-max", 1500*time.Millisecond, "maximum thinking delay")
	flags.Duration("eat-time", 600*time.Millisecond, "time spent eating a meal")
	flags.Int64("seed", 0, "seed for reproducible jitter (0 for time-based)")
	flags.String("strategy", "all", "strategy to run: permits, waiter, timeout, or all")
	flags.Duration("attempt-timeout", time.Second, "per-chopstick bound for the timeout strategy")
	flags.Int("max-attempts", 10, "attempt budget per philosopher for the timeout strategy")
	flags.Bool("quiet", false, "suppress the phase trace, print summaries only")

	viper.SetEnvPrefix("DINELAB")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := table.Config{
		Seats:    viper.GetInt("seats"),
		Meals:    viper.GetInt("meals"),
		ThinkMin: viper.GetDuration("think-min"),
		ThinkMax: viper.GetDuration("think-max"),
		EatTime:  viper.GetDuration("eat-time"),
		Seed:     viper.GetInt64("seed"),
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	tcfg := timeout.DefaultConfig()
	tcfg.AttemptTimeout = viper.GetDuration("attempt-timeout")
	tcfg.MaxAttempts = viper.GetInt("max-attempts")
	if err := tcfg.Validate(); err != nil {
		return err
	}

	var factories []dine.Factory
	switch strategy := viper.GetString("strategy"); strategy {
	case "permits":
		factories = []dine.Factory{dine.Permits()}
	case "waiter":
		factories = []dine.Factory{dine.Waiter()}
	case "timeout":
		factories = []dine.Factory{dine.Timeout(tcfg)}
	case "all":
		factories = dine.DefaultFactories(tcfg)
	default:
		return fmt.Errorf("unknown strategy %q", strategy)
	}

	quiet := viper.GetBool("quiet")
	for _, factory := range factories {
		result, err := dine.Run(cmd.Context(), cfg, factory)
		if err != nil {
			return err
		}
		if !quiet {
			fmt.Println(renderHeader(result.Report.Strategy))
			for _, entry := range result.Trace.Entries() {
				fmt.Println(renderEntry(entry))
			}
		}
		logger.Info("run complete",
			"strategy", result.Report.Strategy,
			"meals", result.Report.TotalMeals(),
			"timeouts", result.Report.Timeouts,
			"elapsed", result.Report.Elapsed.Round(time.Millisecond))
	}
	return nil
}
