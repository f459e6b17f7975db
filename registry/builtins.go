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

package registry

import (
	"fmt"

	"github.com/aaronlmathis/gofootprint/core"
	"github.com/aaronlmathis/gofootprint/operators"
)

func builtins() []Definition {
	return []Definition{
		{
			Name:        operators.NameNonEmpty,
			Description: "reject absent and empty geometries",
			Factory:     func(Params) (core.Operator, error) { return operators.NewNonEmptyFilter(), nil },
		},
		{
			Name:        operators.NameSubsample,
			Description: "keep every n-th vertex of each line and ring",
			Params:      []string{"n"},
			Required:    []string{"n"},
			Factory: func(p Params) (core.Operator, error) {
				n, err := p.Int("n")
				if err != nil {
					return nil, &core.ConfigError{Param: "n", Err: err}
				}
				if n < 1 {
					return nil, &core.ConfigError{Param: "n", Err: fmt.Errorf("must be >= 1, got %d", n)}
				}
				s, err := operators.NewSubsampler(n)
				if err != nil {
					return nil, &core.ConfigError{Param: "n", Err: err}
				}
				return s, nil
			},
		},
		{
			Name:        operators.NameAntimeridian,
			Description: "split geometries crossing the antimeridian",
			Factory:     func(Params) (core.Operator, error) { return operators.NewAntimeridianNormalizer(), nil },
		},
		{
			Name:        operators.NameSimplify,
			Description: "Douglas-Peucker simplification with fallback to the input",
			Params:      []string{"tolerance"},
			Required:    []string{"tolerance"},
			Factory: func(p Params) (core.Operator, error) {
				tol, err := p.Float("tolerance")
				if err != nil {
					return nil, &core.ConfigError{Param: "tolerance", Err: err}
				}
				s, err := operators.NewSimplifier(tol)
				if err != nil {
					return nil, &core.ConfigError{Param: "tolerance", Err: err}
				}
				return s, nil
			},
		},
		{
			Name:        operators.NameValid,
			Description: "reject geometries that are not valid",
			Factory:     func(Params) (core.Operator, error) { return operators.NewValidityFilter(), nil },
		},
		{
			Name:        operators.NameEnvelope,
			Description: "replace a geometry with its bounding box",
			Factory:     func(Params) (core.Operator, error) { return operators.NewEnvelopeOperator(), nil },
		},
		{
			Name:        operators.NamePrecision,
			Description: "round coordinates to a number of decimals",
			Params:      []string{"decimals"},
			Factory: func(p Params) (core.Operator, error) {
				d, err := p.IntOr("decimals", 6)
				if err != nil {
					return nil, &core.ConfigError{Param: "decimals", Err: err}
				}
				r, err := operators.NewPrecisionReducer(d)
				if err != nil {
					return nil, &core.ConfigError{Param: "decimals", Err: err}
				}
				return r, nil
			},
		},
		{
			Name:        operators.NameRemember,
			Description: "record the geometry as the last known good footprint",
			Factory:     func(Params) (core.Operator, error) { return operators.NewRememberOperator(), nil },
		},
		{
			Name:        operators.NameFallbackLastKnownGood,
			Description: "substitute the last known good footprint for an absent geometry",
			Factory:     func(Params) (core.Operator, error) { return operators.NewFallbackLastKnownGood(), nil },
		},
	}
}
