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

// RememberOperator stores the geometry it sees as the context's last-known-good geometry and
// passes it through.
type RememberOperator struct{}

// NewRememberOperator creates a RememberOperator.
func NewRememberOperator() RememberOperator {
	return RememberOperator{}
}

// Name implements core.Named.
func (RememberOperator) Name() string { return NameRemember }

// Apply implements core.Operator.
func (RememberOperator) Apply(g core.Geometry, ctx *core.Context) (core.Geometry, error) {
	if g.IsNone() {
		return core.None(), nil
	}
	ctx.SetLastKnownGood(g)
	return g, nil
}

// FallbackLastKnownGood is geometry-synthesizing: when it receives None it returns a copy of
// the context's last-known-good geometry, if any, and records a diagnostic. Present geometries
// pass through.
type FallbackLastKnownGood struct{}

// NewFallbackLastKnownGood creates a FallbackLastKnownGood operator.
func NewFallbackLastKnownGood() FallbackLastKnownGood {
	return FallbackLastKnownGood{}
}

// Name implements core.Named.
func (FallbackLastKnownGood) Name() string { return NameFallbackLastKnownGood }

// Apply implements core.Operator.
func (FallbackLastKnownGood) Apply(g core.Geometry, ctx *core.Context) (core.Geometry, error) {
	if g.IsSome() {
		return g, nil
	}
	last, ok := ctx.LastKnownGood().Get()
	if !ok {
		return core.None(), nil
	}
	out, err := geometry.Clone(last)
	if err != nil {
		return core.None(), err
	}
	ctx.AddDiagnostic("no geometry; using last known good footprint")
	return core.Some(out), nil
}
