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

// Package bench drives timing and memory benchmarks of the probemap
// variants against the builtin map, sweeping maximum load factors and
// rendering the results as plots.
//
// A trial times three phases per configuration: bulk insert of N keys, a
// verified lookup of every key, and deletion of every distinct key. Between
// the lookup and delete phases the table's in-memory footprint is measured.
// Runs are strictly sequential; parallelism would perturb the very timings
// the harness exists to take.
package bench

import (
	"math/rand"
	"sort"
	"time"

	"github.com/aclements/go-perfevent/events"
	"github.com/aclements/go-perfevent/perf"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/probemap/probemap"
	"github.com/probemap/probemap/memsize"
)

// Result holds the measurements of a single benchmark run.
type Result struct {
	Impl          string
	MaxLoadFactor float64
	Repetition    int

	Insert time.Duration
	Lookup time.Duration
	Delete time.Duration
	Memory uint64

	// Insert-phase hardware counters; zero when counters are unavailable.
	Cycles       uint64
	Instructions uint64
}

// implementation names, in plot legend order.
const (
	implChaining  = "chaining"
	implLinear    = "linear"
	implQuadratic = "quadratic"
	implBuiltin   = "builtin-map"
)

// builtinMap adapts the runtime map to the probemap.Map interface so the
// harness can drive it as a baseline.
type builtinMap map[string]float64

func (m builtinMap) Put(key string, value float64) error {
	m[key] = value
	return nil
}

func (m builtinMap) Get(key string) (float64, error) {
	v, ok := m[key]
	if !ok {
		return 0, probemap.ErrKeyNotFound
	}
	return v, nil
}

func (m builtinMap) Delete(key string) error {
	if _, ok := m[key]; !ok {
		return probemap.ErrKeyNotFound
	}
	delete(m, key)
	return nil
}

func (m builtinMap) Len() int { return len(m) }

func (m builtinMap) Cap() int { return 0 }

func (m builtinMap) LoadFactor() float64 { return 0 }

func (m builtinMap) All(yield func(key string, value float64) bool) {
	for k, v := range m {
		if !yield(k, v) {
			return
		}
	}
}

// Run executes the configured trial and renders its plots. The returned
// results are ordered by implementation, then load factor, then repetition.
func Run(cfg Config, log *zap.Logger) ([]Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	log.Info("beginning trial",
		zap.String("name", cfg.Name),
		zap.Int("keys", cfg.N),
		zap.Int("repetitions", cfg.Repetitions),
		zap.Bool("duplicates", cfg.Duplicates),
		zap.Int64("seed", seed))

	keys, deleteKeys := genKeys(cfg.N, cfg.Duplicates, rng)
	values := genValues(len(keys), rng)
	expect := expected(keys, values)

	type candidate struct {
		name        string
		loadFactors []float64
		construct   func(maxLoad float64) probemap.Map[string, float64]
	}
	candidates := []candidate{
		{implChaining, sortedLoadFactors(cfg.ChainingLoadFactors), func(lf float64) probemap.Map[string, float64] {
			return probemap.NewChaining[string, float64](0, probemap.WithMaxLoadFactor[string](lf))
		}},
		{implLinear, sortedLoadFactors(cfg.LinearLoadFactors), func(lf float64) probemap.Map[string, float64] {
			return probemap.NewLinear[string, float64](0, probemap.WithMaxLoadFactor[string](lf))
		}},
		{implQuadratic, sortedLoadFactors(cfg.QuadraticLoadFactors), func(lf float64) probemap.Map[string, float64] {
			return probemap.NewQuadratic[string, float64](0, probemap.WithMaxLoadFactor[string](lf))
		}},
		// The baseline ignores the load factor but is run across the union
		// so every plotted X has a baseline point.
		{implBuiltin, unionLoadFactors(cfg), func(float64) probemap.Map[string, float64] {
			return make(builtinMap)
		}},
	}

	var results []Result
	for _, c := range candidates {
		log.Debug("running benchmarks", zap.String("impl", c.name))
		for _, lf := range c.loadFactors {
			for rep := 0; rep < cfg.Repetitions; rep++ {
				r, err := measure(c.construct(lf), keys, values, expect, deleteKeys, cfg.PerfCounters, log)
				if err != nil {
					return nil, errors.Wrapf(err, "%s with maximum load factor %v", c.name, lf)
				}
				r.Impl = c.name
				r.MaxLoadFactor = lf
				r.Repetition = rep
				results = append(results, r)
				log.Info("completed run",
					zap.String("impl", r.Impl),
					zap.Float64("maxLoadFactor", r.MaxLoadFactor),
					zap.Int("repetition", r.Repetition),
					zap.Duration("insert", r.Insert),
					zap.Duration("lookup", r.Lookup),
					zap.Duration("delete", r.Delete),
					zap.String("memory", humanize.IBytes(r.Memory)))
			}
		}
	}

	logSummary(results, log)

	if err := writePlots(cfg, results, log); err != nil {
		return nil, err
	}
	return results, nil
}

// measure drives one table through the insert, lookup, and delete phases.
// The lookup phase doubles as a correctness check: every key must report the
// value of its final insert.
func measure(
	m probemap.Map[string, float64],
	keys []string, values []float64,
	expect map[string]float64,
	deleteKeys []string,
	perfCounters bool,
	log *zap.Logger,
) (Result, error) {
	var r Result

	var counter *perf.Counter
	if perfCounters {
		c, err := perf.OpenCounter(perf.TargetThisGoroutine, events.EventCPUCycles, events.EventInstructions)
		if err != nil {
			log.Debug("perf counters unavailable", zap.Error(err))
		} else {
			counter = c
			defer counter.Close()
			counter.Start()
		}
	}

	var before [2]perf.Count
	if counter != nil {
		if err := counter.ReadGroup(before[:]); err != nil {
			return r, errors.Wrap(err, "reading perf counters")
		}
	}
	start := time.Now()
	for i, k := range keys {
		if err := m.Put(k, values[i]); err != nil {
			return r, errors.Wrapf(err, "inserting %q", k)
		}
	}
	r.Insert = time.Since(start)
	if counter != nil {
		var after [2]perf.Count
		if err := counter.ReadGroup(after[:]); err != nil {
			return r, errors.Wrap(err, "reading perf counters")
		}
		bc := before[0].Value()
		ac := after[0].Value()
		bi := before[1].Value()
		ai := after[1].Value()
		r.Cycles = ac - bc
		r.Instructions = ai - bi
	}

	if got, want := m.Len(), len(expect); got != want {
		return r, errors.Newf("after inserts Len()=%d, want %d", got, want)
	}

	start = time.Now()
	for _, k := range keys {
		v, err := m.Get(k)
		if err != nil {
			return r, errors.Wrapf(err, "looking up %q", k)
		}
		if v != expect[k] {
			return r, errors.Newf("lookup of %q returned %v, want %v", k, v, expect[k])
		}
	}
	r.Lookup = time.Since(start)

	r.Memory = memsize.Of(m)

	start = time.Now()
	for _, k := range deleteKeys {
		if err := m.Delete(k); err != nil {
			return r, errors.Wrapf(err, "deleting %q", k)
		}
	}
	r.Delete = time.Since(start)

	if m.Len() != 0 {
		return r, errors.Newf("after deletes Len()=%d, want 0", m.Len())
	}
	return r, nil
}

func logSummary(results []Result, log *zap.Logger) {
	perConfig := make(map[string][]float64)
	var order []string
	for _, r := range results {
		key := r.Impl + "/" + humanize.Ftoa(r.MaxLoadFactor)
		if _, ok := perConfig[key]; !ok {
			order = append(order, key)
		}
		perConfig[key] = append(perConfig[key], r.Insert.Seconds())
	}
	for _, key := range order {
		mean, err := stats.Mean(perConfig[key])
		if err != nil {
			continue
		}
		sd, _ := stats.StandardDeviation(perConfig[key])
		log.Debug("insert summary",
			zap.String("config", key),
			zap.Float64("meanSeconds", mean),
			zap.Float64("stddevSeconds", sd))
	}
}

func sortedLoadFactors(lfs []float64) []float64 {
	out := append([]float64(nil), lfs...)
	sort.Float64s(out)
	return out
}

// unionLoadFactors returns the sorted distinct load factors across all three
// strategy sweeps.
func unionLoadFactors(cfg Config) []float64 {
	seen := make(map[float64]struct{})
	var out []float64
	for _, lfs := range [][]float64{cfg.ChainingLoadFactors, cfg.LinearLoadFactors, cfg.QuadraticLoadFactors} {
		for _, lf := range lfs {
			if _, ok := seen[lf]; ok {
				continue
			}
			seen[lf] = struct{}{}
			out = append(out, lf)
		}
	}
	sort.Float64s(out)
	return out
}
