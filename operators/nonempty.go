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
	"github.com/aaronlmathis/gofootprint/core"
	"github.com/aaronlmathis/gofootprint/geometry"
)

// NonEmptyFilter rejects empty geometries and passes every other geometry through untouched.
// It never modifies the context.
type NonEmptyFilter struct{}

// NewNonEmptyFilter creates a NonEmptyFilter.
func NewNonEmptyFilter() NonEmptyFilter {
	return NonEmptyFilter{}
}

// Name implements core.Named.
func (NonEmptyFilter) Name() string { return NameNonEmpty }

// Apply implements core.Operator.
func (NonEmptyFilter) Apply(g core.Geometry, _ *core.Context) (core.Geometry, error) {
	v, ok := g.Get()
	if !ok || geometry.IsEmpty(v) {
		return core.None(), nil
	}
	return g, nil
}
