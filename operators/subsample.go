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

package operators

import (
	"fmt"
	"math"

	"github.com/aaronlmathis/gofootprint/core"
	"github.com/aaronlmathis/gofootprint/geometry"
)

// SubsampleCounter is the context counter incremented each time a Subsampler processes a geometry.
const SubsampleCounter = "subsample.applied"

// Minimum vertex counts a Subsampler never goes below.
const (
	minLineVertices       = 2
	minClosedRingVertices = 4
	minOpenRingVertices   = 3
)

// Subsampler bounds the size of dense paths and rings by keeping every Nth vertex.
//
// For a sequence of L vertices it keeps the vertices at 0, N, 2N, ... (ceil(L/N) of them) and
// replaces the last kept vertex with the sequence's own last vertex, so both ends survive and
// closed rings stay closed. Results never drop below 2 vertices for lines, 4 for explicitly
// closed rings and 3 for implicitly closed rings; when plain sampling would, the floor count
// is spread evenly over the sequence instead.
type Subsampler struct {
	n int
}

// NewSubsampler creates a Subsampler keeping every nth vertex. n must be at least 1.
func NewSubsampler(n int) (*Subsampler, error) {
	if n < 1 {
		return nil, fmt.Errorf("subsample interval must be >= 1, got %d", n)
	}
	return &Subsampler{n: n}, nil
}

// Name implements core.Named.
func (s *Subsampler) Name() string { return NameSubsample }

// Interval returns N.
func (s *Subsampler) Interval() int { return s.n }

// Apply implements core.Operator.
func (s *Subsampler) Apply(g core.Geometry, ctx *core.Context) (core.Geometry, error) {
	v, ok := g.Get()
	if !ok {
		return core.None(), nil
	}
	ctx.Incr(SubsampleCounter)

	out, err := mapSequences(v, func(seq [][2]float64, closed bool) ([][2]float64, error) {
		floor := minLineVertices
		if closed {
			floor = minOpenRingVertices
			if geometry.Closed(seq) {
				floor = minClosedRingVertices
			}
		}
		return subsample(seq, s.n, floor), nil
	})
	if err != nil {
		return core.None(), err
	}
	return core.Some(out), nil
}

func subsample(seq [][2]float64, n, floor int) [][2]float64 {
	l := len(seq)
	if n <= 1 || l <= floor {
		return copySeq(seq)
	}

	k := (l + n - 1) / n
	if k < floor {
		out := make([][2]float64, floor)
		for i := 0; i < floor; i++ {
			idx := int(math.Round(float64(i) * float64(l-1) / float64(floor-1)))
			out[i] = seq[idx]
		}
		return out
	}

	out := make([][2]float64, 0, k)
	for i := 0; i < k; i++ {
		out = append(out, seq[i*n])
	}
	out[k-1] = seq[l-1]
	return out
}
