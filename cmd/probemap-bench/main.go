// Copyright 2026 The Probemap Authors
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

// probemap-bench sweeps maximum load factors across the probemap hash table
// variants, timing bulk inserts, lookups, and deletes against the builtin
// map, and renders the results as plots.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/probemap/probemap/bench"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		verbose int

		flagCfg = bench.Default()

		noPlotInsert bool
		noPlotLookup bool
		noPlotMemory bool
		noPlotDelete bool
	)

	cmd := &cobra.Command{
		Use:   "probemap-bench",
		Short: "Benchmark the probemap hash table variants",
		Long: `probemap-bench runs insert/lookup/delete timing and memory benchmarks
for the chaining, linear probing, and quadratic probing hash tables, with
the builtin map as a baseline, and writes per-metric plots.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := flagCfg
			if cfgPath != "" {
				loaded, err := bench.LoadConfig(cfgPath)
				if err != nil {
					return err
				}
				cfg = overlayFlags(cmd, loaded, flagCfg)
			}
			if cfgPath == "" || cmd.Flags().Changed("no-plot-insert") {
				cfg.PlotInsert = !noPlotInsert
			}
			if cfgPath == "" || cmd.Flags().Changed("no-plot-lookup") {
				cfg.PlotLookup = !noPlotLookup
			}
			if cfgPath == "" || cmd.Flags().Changed("no-plot-memory") {
				cfg.PlotMemory = !noPlotMemory
			}
			if cfgPath == "" || cmd.Flags().Changed("no-plot-delete") {
				cfg.PlotDelete = !noPlotDelete
			}

			log, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			_, err = bench.Run(cfg, log)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgPath, "config", "", "TOML trial config; flags override its values")
	f.StringVar(&flagCfg.Name, "name", flagCfg.Name, "trial name, used as a prefix for the plot filenames")
	f.IntVarP(&flagCfg.N, "keys", "N", flagCfg.N, "number of keys to benchmark with")
	f.IntVarP(&flagCfg.Repetitions, "repetitions", "r", flagCfg.Repetitions, "number of repetitions per configuration")
	f.Float64SliceVar(&flagCfg.ChainingLoadFactors, "chaining-load-factors", flagCfg.ChainingLoadFactors, "maximum load factors for the chaining table")
	f.Float64SliceVar(&flagCfg.LinearLoadFactors, "linear-load-factors", flagCfg.LinearLoadFactors, "maximum load factors for the linear probing table")
	f.Float64SliceVar(&flagCfg.QuadraticLoadFactors, "quadratic-load-factors", flagCfg.QuadraticLoadFactors, "maximum load factors for the quadratic probing table")
	f.BoolVar(&flagCfg.Duplicates, "duplicates", false, "resample keys with replacement to benchmark overwrites")
	f.BoolVar(&noPlotInsert, "no-plot-insert", false, "disable plotting insert times")
	f.BoolVar(&noPlotLookup, "no-plot-lookup", false, "disable plotting lookup times")
	f.BoolVar(&noPlotMemory, "no-plot-memory", false, "disable plotting memory usage")
	f.BoolVar(&noPlotDelete, "no-plot-delete", false, "disable plotting delete times")
	f.BoolVar(&flagCfg.ErrorBars, "error-bars", false, "plot error bars around data points")
	f.StringVar(&flagCfg.OutDir, "out", flagCfg.OutDir, "directory for rendered plots")
	f.Int64Var(&flagCfg.Seed, "seed", 0, "seed for key generation; 0 derives one from the clock")
	f.BoolVar(&flagCfg.PerfCounters, "perf-counters", false, "record hardware counters for the insert phase when available")
	f.CountVarP(&verbose, "verbose", "v", "increase logging verbosity")

	return cmd
}

// overlayFlags starts from the loaded config file and reapplies any flag the
// user set explicitly, so flags always win over the file.
func overlayFlags(cmd *cobra.Command, loaded, flagCfg bench.Config) bench.Config {
	cfg := loaded
	set := func(name string, apply func()) {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
	set("name", func() { cfg.Name = flagCfg.Name })
	set("keys", func() { cfg.N = flagCfg.N })
	set("repetitions", func() { cfg.Repetitions = flagCfg.Repetitions })
	set("chaining-load-factors", func() { cfg.ChainingLoadFactors = flagCfg.ChainingLoadFactors })
	set("linear-load-factors", func() { cfg.LinearLoadFactors = flagCfg.LinearLoadFactors })
	set("quadratic-load-factors", func() { cfg.QuadraticLoadFactors = flagCfg.QuadraticLoadFactors })
	set("duplicates", func() { cfg.Duplicates = flagCfg.Duplicates })
	set("error-bars", func() { cfg.ErrorBars = flagCfg.ErrorBars })
	set("out", func() { cfg.OutDir = flagCfg.OutDir })
	set("seed", func() { cfg.Seed = flagCfg.Seed })
	set("perf-counters", func() { cfg.PerfCounters = flagCfg.PerfCounters })
	return cfg
}

func newLogger(verbose int) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if verbose > 0 {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return cfg.Build()
}
