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

package core

import (
	"context"

	"github.com/go-spatial/geom"
)

// Package core defines the shared types of the GoFootprint library.
//
// This file contains the record type, the optional Geometry value and the function adapters.

// Record represents a single telemetry or metadata record as produced by a DataSource.
// Each record is a map from attribute names to values, supporting heterogeneous data.
type Record map[string]interface{}

// Geometry is an optional go-spatial geometry value.
// The zero Geometry is absent: it means "no usable footprint" when returned by an operator
// and "no geometry yet" when handed to one.
type Geometry struct {
	value geom.Geometry
}

// Some wraps a geometry value. Some(nil) is equivalent to None().
func Some(g geom.Geometry) Geometry {
	return Geometry{value: g}
}

// None returns the absent geometry.
func None() Geometry {
	return Geometry{}
}

// Get returns the wrapped value and whether it is present.
func (g Geometry) Get() (geom.Geometry, bool) {
	return g.value, g.value != nil
}

// Value returns the wrapped value, or nil when absent.
func (g Geometry) Value() geom.Geometry {
	return g.value
}

// IsNone reports whether the geometry is absent.
func (g Geometry) IsNone() bool {
	return g.value == nil
}

// IsSome reports whether a geometry value is present.
func (g Geometry) IsSome() bool {
	return g.value != nil
}

// OperatorFunc is a function adapter for the Operator interface.
// Allows ordinary functions to be used as Operators.
type OperatorFunc func(g Geometry, ctx *Context) (Geometry, error)

// Apply implements the Operator interface for OperatorFunc.
func (f OperatorFunc) Apply(g Geometry, ctx *Context) (Geometry, error) {
	return f(g, ctx)
}

// FilterFunc is a function adapter for the Filter interface.
type FilterFunc func(ctx context.Context, record Record) (bool, error)

// ShouldInclude implements the Filter interface for FilterFunc.
func (f FilterFunc) ShouldInclude(ctx context.Context, record Record) (bool, error) {
	return f(ctx, record)
}
