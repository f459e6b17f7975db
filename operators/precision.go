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

// MaxPrecisionDecimals is the largest number of decimals a PrecisionReducer accepts.
const MaxPrecisionDecimals = 15

// PrecisionReducer rounds every coordinate to a fixed number of decimals.
type PrecisionReducer struct {
	decimals int
	scale    float64
}

// NewPrecisionReducer creates a PrecisionReducer. decimals must be within 0..15.
func NewPrecisionReducer(decimals int) (*PrecisionReducer, error) {
	if decimals < 0 || decimals > MaxPrecisionDecimals {
		return nil, fmt.Errorf("precision decimals must be within 0..%d, got %d", MaxPrecisionDecimals, decimals)
	}
	return &PrecisionReducer{decimals: decimals, scale: math.Pow10(decimals)}, nil
}

// Name implements core.Named.
func (p *PrecisionReducer) Name() string { return NamePrecision }

// Apply implements core.Operator.
func (p *PrecisionReducer) Apply(g core.Geometry, _ *core.Context) (core.Geometry, error) {
	v, ok := g.Get()
	if !ok {
		return core.None(), nil
	}
	if err := geometry.CheckFinite(v); err != nil {
		return core.None(), err
	}
	out, err := geometry.MapCoords(v, func(c [2]float64) [2]float64 {
		return [2]float64{p.round(c[0]), p.round(c[1])}
	})
	if err != nil {
		return core.None(), err
	}
	if err := geometry.CheckFinite(out); err != nil {
		return core.None(), err
	}
	return core.Some(out), nil
}

// round leaves x alone once its magnitude carries no fractional digits at this scale, which
// also keeps x*scale from overflowing.
func (p *PrecisionReducer) round(x float64) float64 {
	if math.Abs(x) >= exactIntegers/p.scale {
		return x
	}
	return math.Round(x*p.scale) / p.scale
}

// exactIntegers is the float64 magnitude above which every value is an integer.
const exactIntegers = 1 << 52
