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

package bench

import (
	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
)

// Config describes one benchmark trial: how many keys to exercise, which
// maximum load factors to sweep per strategy, and which plots to render.
type Config struct {
	// Name prefixes the output plot filenames.
	Name string `toml:"name"`
	// N is the number of keys per run. Keys are permutations of a
	// 10-character alphabet, so N is capped at 10! (3,628,800).
	N int `toml:"n"`
	// Repetitions reruns every configuration to reduce variance.
	Repetitions int `toml:"repetitions"`

	// Maximum load factors to sweep, per strategy. Chaining may exceed 1.0;
	// the open-addressing lists must stay below 1.0. The builtin-map
	// baseline is run once per distinct load factor across all lists.
	ChainingLoadFactors  []float64 `toml:"chaining_load_factors"`
	LinearLoadFactors    []float64 `toml:"linear_load_factors"`
	QuadraticLoadFactors []float64 `toml:"quadratic_load_factors"`

	// Duplicates resamples the key list with replacement, leaving roughly
	// 63% distinct keys, to exercise overwrite behavior.
	Duplicates bool `toml:"duplicates"`

	PlotInsert bool `toml:"plot_insert"`
	PlotLookup bool `toml:"plot_lookup"`
	PlotMemory bool `toml:"plot_memory"`
	PlotDelete bool `toml:"plot_delete"`
	// ErrorBars adds one-standard-deviation bars to the plotted means.
	ErrorBars bool `toml:"error_bars"`

	// OutDir receives the rendered plots.
	OutDir string `toml:"out_dir"`
	// Seed fixes the key shuffle for reproducible runs; 0 derives a seed
	// from the clock.
	Seed int64 `toml:"seed"`
	// PerfCounters enables hardware cycle/instruction counters for the
	// insert phase where the OS grants access.
	PerfCounters bool `toml:"perf_counters"`
}

// Default returns the trial configuration used when no flags or config file
// override it.
func Default() Config {
	return Config{
		Name:                 "example",
		N:                    1_000_000,
		Repetitions:          1,
		ChainingLoadFactors:  []float64{0.6, 0.7, 0.8, 0.9, 1.0, 1.1, 1.2},
		LinearLoadFactors:    []float64{0.6, 0.65, 0.7, 0.75, 0.8, 0.85},
		QuadraticLoadFactors: []float64{0.6, 0.65, 0.7, 0.75, 0.8, 0.85},
		PlotInsert:           true,
		PlotLookup:           true,
		PlotMemory:           true,
		PlotDelete:           true,
		OutDir:               "plots",
	}
}

// LoadConfig reads a TOML trial description over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "loading benchmark config %s", path)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.N <= 0 || c.N > maxKeys {
		return errors.Newf("key count %d outside (0, %d]", c.N, maxKeys)
	}
	if c.Repetitions <= 0 {
		return errors.Newf("repetitions %d must be positive", c.Repetitions)
	}
	for _, lf := range c.LinearLoadFactors {
		if lf <= 0 || lf >= 1 {
			return errors.Newf("linear probing load factor %v outside (0, 1)", lf)
		}
	}
	for _, lf := range c.QuadraticLoadFactors {
		if lf <= 0 || lf >= 1 {
			return errors.Newf("quadratic probing load factor %v outside (0, 1)", lf)
		}
	}
	for _, lf := range c.ChainingLoadFactors {
		if lf <= 0 {
			return errors.Newf("chaining load factor %v must be positive", lf)
		}
	}
	return nil
}
