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
	"context"
	"fmt"
	"math"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/planar/simplify"

	"github.com/aaronlmathis/gofootprint/core"
	"github.com/aaronlmathis/gofootprint/geometry"
)

// Simplifier applies Douglas-Peucker simplification with a fixed tolerance.
//
// The simplified geometry is re-validated. If it is empty or invalid the Simplifier returns
// its input unchanged and records a diagnostic instead of rejecting the footprint.
type Simplifier struct {
	tolerance float64
}

// NewSimplifier creates a Simplifier. tolerance must be a finite value greater than zero.
func NewSimplifier(tolerance float64) (*Simplifier, error) {
	if math.IsNaN(tolerance) || math.IsInf(tolerance, 0) || tolerance <= 0 {
		return nil, fmt.Errorf("simplify tolerance must be > 0, got %v", tolerance)
	}
	return &Simplifier{tolerance: tolerance}, nil
}

// Name implements core.Named.
func (s *Simplifier) Name() string { return NameSimplify }

// Tolerance returns the configured tolerance.
func (s *Simplifier) Tolerance() float64 { return s.tolerance }

// Apply implements core.Operator.
func (s *Simplifier) Apply(g core.Geometry, ctx *core.Context) (core.Geometry, error) {
	v, ok := g.Get()
	if !ok {
		return core.None(), nil
	}
	if err := geometry.CheckFinite(v); err != nil {
		return core.None(), err
	}

	out, err := s.simplify(simplify.DouglasPeucker{Tolerance: s.tolerance}, v)
	if err != nil {
		return core.None(), err
	}

	if geometry.IsEmpty(out) {
		ctx.AddDiagnostic("simplification produced an empty geometry; keeping input")
		return g, nil
	}
	if verr := geometry.Validate(out); verr != nil {
		ctx.Diagnosticf("simplification produced an invalid geometry (%v); keeping input", verr)
		return g, nil
	}
	return core.Some(out), nil
}

// simplify rewrites the lines and rings of g. Points have no vertex order to simplify along
// and are kept as they are.
func (s *Simplifier) simplify(dp simplify.DouglasPeucker, g geom.Geometry) (geom.Geometry, error) {
	switch v := geometry.Normalize(g).(type) {
	case geom.Point, geom.MultiPoint:
		return v, nil
	case geom.Collection:
		out := make(geom.Collection, len(v))
		for i, m := range v {
			r, err := s.simplify(dp, m)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return mapSequences(v, func(seq [][2]float64, closed bool) ([][2]float64, error) {
			if closed {
				return s.simplifyRing(dp, seq)
			}
			return s.simplifyLine(dp, seq)
		})
	}
}

func (s *Simplifier) simplifyLine(dp simplify.DouglasPeucker, seq [][2]float64) ([][2]float64, error) {
	if len(seq) <= 2 {
		return copySeq(seq), nil
	}
	return dp.Simplify(context.Background(), copySeq(seq), false)
}

// simplifyRing splits the ring at the vertex farthest from its start so that neither half has
// coincident endpoints, simplifies both halves as lines and joins them again.
func (s *Simplifier) simplifyRing(dp simplify.DouglasPeucker, ring [][2]float64) ([][2]float64, error) {
	closed := geometry.Closed(ring)
	open := geometry.OpenRing(ring)
	if len(open) <= 3 {
		return copySeq(ring), nil
	}

	far, best := 0, -1.0
	for i, p := range open {
		d := math.Hypot(p[0]-open[0][0], p[1]-open[0][1])
		if d > best {
			far, best = i, d
		}
	}

	first, err := s.simplifyLine(dp, open[:far+1])
	if err != nil {
		return nil, err
	}
	second := append(copySeq(open[far:]), open[0])
	second, err = s.simplifyLine(dp, second)
	if err != nil {
		return nil, err
	}

	out := append(first, second[1:]...)
	if !closed {
		out = out[:len(out)-1]
	}
	return out, nil
}
