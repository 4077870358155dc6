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
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

type metric struct {
	name    string
	enabled bool
	ylabel  string
	value   func(r Result) float64
}

// writePlots renders one PNG per enabled metric: maximum load factor on the
// X axis, the metric's mean across repetitions on the Y axis, one line per
// implementation.
func writePlots(cfg Config, results []Result, log *zap.Logger) error {
	metrics := []metric{
		{"insert", cfg.PlotInsert, "Time Elapsed (seconds)", func(r Result) float64 { return r.Insert.Seconds() }},
		{"lookup", cfg.PlotLookup, "Time Elapsed (seconds)", func(r Result) float64 { return r.Lookup.Seconds() }},
		{"memory", cfg.PlotMemory, "Memory Used (MB)", func(r Result) float64 { return float64(r.Memory) / 1e6 }},
		{"delete", cfg.PlotDelete, "Time Elapsed (seconds)", func(r Result) float64 { return r.Delete.Seconds() }},
	}

	var any bool
	for _, m := range metrics {
		any = any || m.enabled
	}
	if !any {
		return nil
	}
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating plot directory %s", cfg.OutDir)
	}

	for _, m := range metrics {
		if !m.enabled {
			continue
		}
		path := filepath.Join(cfg.OutDir, fmt.Sprintf("%s_%s.png", cfg.Name, m.name))
		if err := plotMetric(cfg, results, m, path); err != nil {
			return errors.Wrapf(err, "rendering %s plot", m.name)
		}
		log.Info("wrote plot", zap.String("path", path))
	}
	return nil
}

// yErrPoints pairs plotted points with symmetric one-standard-deviation
// error bars.
type yErrPoints struct {
	plotter.XYs
	sd []float64
}

func (p yErrPoints) YError(i int) (low, high float64) {
	return p.sd[i], p.sd[i]
}

func plotMetric(cfg Config, results []Result, m metric, path string) error {
	p := plot.New()
	info := ""
	if cfg.Duplicates {
		info = " with duplicates"
	}
	p.Title.Text = fmt.Sprintf("%s%s\nkeys=%d repetitions=%d", m.name, info, cfg.N, cfg.Repetitions)
	p.X.Label.Text = "Maximum Load Factor"
	p.Y.Label.Text = m.ylabel

	// impl -> load factor -> samples across repetitions.
	series := make(map[string]map[float64][]float64)
	var implOrder []string
	for _, r := range results {
		byLF, ok := series[r.Impl]
		if !ok {
			byLF = make(map[float64][]float64)
			series[r.Impl] = byLF
			implOrder = append(implOrder, r.Impl)
		}
		byLF[r.MaxLoadFactor] = append(byLF[r.MaxLoadFactor], m.value(r))
	}

	for i, impl := range implOrder {
		byLF := series[impl]
		lfs := make([]float64, 0, len(byLF))
		for lf := range byLF {
			lfs = append(lfs, lf)
		}
		sort.Float64s(lfs)

		pts := make(plotter.XYs, len(lfs))
		sds := make([]float64, len(lfs))
		for j, lf := range lfs {
			mean, err := stats.Mean(byLF[lf])
			if err != nil {
				return errors.Wrapf(err, "aggregating %s at load factor %v", impl, lf)
			}
			sd, _ := stats.StandardDeviation(byLF[lf])
			pts[j] = plotter.XY{X: lf, Y: mean}
			sds[j] = sd
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(impl, line)

		if cfg.ErrorBars {
			bars, err := plotter.NewYErrorBars(yErrPoints{XYs: pts, sd: sds})
			if err != nil {
				return err
			}
			bars.Color = plotutil.Color(i)
			p.Add(bars)
		}
	}

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
