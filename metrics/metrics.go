//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com
//
// This file is part of GoFootprint.
//
// GoFootprint is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GoFootprint is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GoFootprint. If not, see https://www.gnu.org/licenses/.

// Package metrics provides Prometheus instrumentation for the GoFootprint enricher.
//
// Metrics are recorded by the caller around chain invocations; operators and chains never
// touch them. A nil *Recorder is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Record outcomes.
const (
	OutcomeEnriched = "enriched"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Recorder holds the enricher metric instances.
type Recorder struct {
	Records       *prometheus.CounterVec
	ChainDuration *prometheus.HistogramVec
	Diagnostics   *prometheus.CounterVec
	Workers       prometheus.Gauge
}

// NewRecorder registers the enricher metrics with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		Records: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gofootprint",
				Subsystem: "enricher",
				Name:      "records_total",
				Help:      "Total number of records processed, by product and outcome",
			},
			[]string{"product", "outcome"},
		),

		ChainDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "gofootprint",
				Subsystem: "chain",
				Name:      "duration_seconds",
				Help:      "Time spent applying a product's operator chain to one geometry",
				Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
			},
			[]string{"product"},
		),

		Diagnostics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "gofootprint",
				Subsystem: "chain",
				Name:      "diagnostics_total",
				Help:      "Total number of diagnostics emitted, by product and stage",
			},
			[]string{"product", "stage"},
		),

		Workers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "gofootprint",
				Subsystem: "enricher",
				Name:      "workers",
				Help:      "Number of enrichment workers of the running enricher",
			},
		),
	}
}

// ObserveRecord counts one record outcome.
func (r *Recorder) ObserveRecord(product, outcome string) {
	if r == nil {
		return
	}
	r.Records.WithLabelValues(product, outcome).Inc()
}

// ObserveChain records the duration of one chain invocation.
func (r *Recorder) ObserveChain(product string, d time.Duration) {
	if r == nil {
		return
	}
	r.ChainDuration.WithLabelValues(product).Observe(d.Seconds())
}

// ObserveDiagnostic counts one diagnostic emitted by stage.
func (r *Recorder) ObserveDiagnostic(product, stage string) {
	if r == nil {
		return
	}
	r.Diagnostics.WithLabelValues(product, stage).Inc()
}

// SetWorkers reports the worker count.
func (r *Recorder) SetWorkers(n int) {
	if r == nil {
		return
	}
	r.Workers.Set(float64(n))
}
