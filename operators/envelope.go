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
	"github.com/go-spatial/geom"

	"github.com/aaronlmathis/gofootprint/core"
	"github.com/aaronlmathis/gofootprint/geometry"
)

// EnvelopeOperator replaces a geometry with its bounding box, turning a sensor track or a
// scatter of frame centres into a coarse footprint polygon. Boxes collapsed in one dimension
// come back as a two-point line, and in both as a point.
type EnvelopeOperator struct{}

// NewEnvelopeOperator creates an EnvelopeOperator.
func NewEnvelopeOperator() EnvelopeOperator {
	return EnvelopeOperator{}
}

// Name implements core.Named.
func (EnvelopeOperator) Name() string { return NameEnvelope }

// Apply implements core.Operator.
func (EnvelopeOperator) Apply(g core.Geometry, _ *core.Context) (core.Geometry, error) {
	v, ok := g.Get()
	if !ok {
		return core.None(), nil
	}
	if err := geometry.CheckFinite(v); err != nil {
		return core.None(), err
	}
	min, max, ok := geometry.Bounds(v)
	if !ok {
		return core.None(), nil
	}

	switch {
	case min == max:
		return core.Some(geom.Point(min)), nil
	case min[0] == max[0] || min[1] == max[1]:
		return core.Some(geom.LineString{min, max}), nil
	default:
		return core.Some(geom.Polygon{{
			min,
			{max[0], min[1]},
			max,
			{min[0], max[1]},
			min,
		}}), nil
	}
}
