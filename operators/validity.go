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
	"errors"

	"github.com/aaronlmathis/gofootprint/core"
	"github.com/aaronlmathis/gofootprint/geometry"
)

// ValidityFilter rejects geometries that are not topologically valid and records why.
// Non-finite coordinates and unsupported variants are failures, not rejections.
type ValidityFilter struct{}

// NewValidityFilter creates a ValidityFilter.
func NewValidityFilter() ValidityFilter {
	return ValidityFilter{}
}

// Name implements core.Named.
func (ValidityFilter) Name() string { return NameValid }

// Apply implements core.Operator.
func (ValidityFilter) Apply(g core.Geometry, ctx *core.Context) (core.Geometry, error) {
	v, ok := g.Get()
	if !ok {
		return core.None(), nil
	}
	err := geometry.Validate(v)
	switch {
	case err == nil:
		return g, nil
	case errors.Is(err, geometry.ErrInvalid):
		ctx.Diagnosticf("rejected: %v", err)
		return core.None(), nil
	default:
		return core.None(), err
	}
}
