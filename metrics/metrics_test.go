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

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveRecord("fmv", OutcomeEnriched)
	r.ObserveRecord("fmv", OutcomeEnriched)
	r.ObserveRecord("fmv", OutcomeRejected)
	r.ObserveDiagnostic("fmv", "simplify")
	r.ObserveChain("fmv", 2*time.Millisecond)
	r.SetWorkers(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Records.WithLabelValues("fmv", OutcomeEnriched)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Records.WithLabelValues("fmv", OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Diagnostics.WithLabelValues("fmv", "simplify")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.Workers))

	count, err := testutil.GatherAndCount(reg, "gofootprint_chain_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveRecord("fmv", OutcomeFailed)
		r.ObserveChain("fmv", time.Second)
		r.ObserveDiagnostic("fmv", "valid")
		r.SetWorkers(1)
	})
}
