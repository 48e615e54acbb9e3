// Copyright 2025 Erst Users
// SPDX-License-Identifier: Apache-2.0

// Package report summarizes and charts fault sweeps.
package report

import (
	"fmt"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// FaultResult is one bus of a three-phase fault sweep.
type FaultResult struct {
	Bus       int
	Magnitude float64
	// OK is false when the engine reported no value for the bus.
	OK  bool
	Err error
}

// Summary describes the buses that produced a value.
type Summary struct {
	Count   int
	Skipped int
	Mean    float64
	StdDev  float64
	Max     float64
	MaxBus  int
}

// Summarize computes statistics over the results that have a value.
func Summarize(results []FaultResult) Summary {
	var s Summary
	var mags []float64
	var buses []int
	for _, r := range results {
		if !r.OK || r.Err != nil {
			s.Skipped++
			continue
		}
		mags = append(mags, r.Magnitude)
		buses = append(buses, r.Bus)
	}
	s.Count = len(mags)
	if s.Count == 0 {
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(mags, nil)
	if s.Count == 1 {
		s.StdDev = 0
	}
	i := floats.MaxIdx(mags)
	s.Max, s.MaxBus = mags[i], buses[i]
	return s
}

// Chart is a bar chart of fault current per bus, ordered by bus number.
type Chart struct {
	Title  string
	Width  vg.Length
	Height vg.Length
}

func DefaultChart() Chart {
	return Chart{Title: "Three-phase fault current", Width: 8 * vg.Inch, Height: 4 * vg.Inch}
}

func (c Chart) plot(results []FaultResult) (*plot.Plot, error) {
	ok := make([]FaultResult, 0, len(results))
	for _, r := range results {
		if r.OK && r.Err == nil {
			ok = append(ok, r)
		}
	}
	if len(ok) == 0 {
		return nil, fmt.Errorf("no fault currents to chart")
	}
	sort.Slice(ok, func(i, j int) bool { return ok[i].Bus < ok[j].Bus })

	values := make(plotter.Values, len(ok))
	labels := make([]string, len(ok))
	for i, r := range ok {
		values[i] = r.Magnitude
		labels[i] = strconv.Itoa(r.Bus)
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = "Bus"
	p.Y.Label.Text = "Fault current magnitude"

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return nil, fmt.Errorf("build bar chart: %w", err)
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)
	return p, nil
}

// Save renders the chart to path; the extension picks the format (.png,
// .svg, .pdf).
func (c Chart) Save(path string, results []FaultResult) error {
	p, err := c.plot(results)
	if err != nil {
		return err
	}
	if err := p.Save(c.Width, c.Height, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}
	return nil
}
