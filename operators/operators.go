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

// Package operators provides the concrete geometry operators GoFootprint chains are built from.
//
// Every operator honours the core.Operator contract: None in gives None out (except the
// documented geometry-synthesizing FallbackLastKnownGood), inputs are never mutated, and
// degenerate geometries are rejected with None rather than reported as errors. Errors are
// reserved for inputs an operator cannot process at all, such as unsupported geometry
// variants or non-finite coordinates.
package operators

import (
	"github.com/go-spatial/geom"

	"github.com/aaronlmathis/gofootprint/core"
	"github.com/aaronlmathis/gofootprint/geometry"
)

// Operator names as used in configuration.
const (
	NameNonEmpty              = "non_empty"
	NameSubsample             = "subsample"
	NameAntimeridian          = "antimeridian"
	NameSimplify              = "simplify"
	NameValid                 = "valid"
	NameEnvelope              = "envelope"
	NamePrecision             = "precision"
	NameRemember              = "remember"
	NameFallbackLastKnownGood = "fallback_last_known_good"
)

// seqFunc rewrites one vertex sequence. closed is true for polygon rings.
type seqFunc func(seq [][2]float64, closed bool) ([][2]float64, error)

// mapSequences rebuilds g with fn applied to each of its vertex sequences.
// Points are returned unchanged.
func mapSequences(g geom.Geometry, fn seqFunc) (geom.Geometry, error) {
	switch v := geometry.Normalize(g).(type) {
	case geom.Point:
		return v, nil
	case geom.MultiPoint:
		out, err := fn(v, false)
		return geom.MultiPoint(out), err
	case geom.LineString:
		out, err := fn(v, false)
		return geom.LineString(out), err
	case geom.MultiLineString:
		out := make(geom.MultiLineString, len(v))
		for i, ls := range v {
			s, err := fn(ls, false)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	case geom.Polygon:
		p, err := mapRings(v, fn)
		return geom.Polygon(p), err
	case geom.MultiPolygon:
		out := make(geom.MultiPolygon, len(v))
		for i, p := range v {
			rings, err := mapRings(p, fn)
			if err != nil {
				return nil, err
			}
			out[i] = rings
		}
		return out, nil
	case geom.Collection:
		out := make(geom.Collection, len(v))
		for i, m := range v {
			r, err := mapSequences(m, fn)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	default:
		return nil, core.Unsupported(g)
	}
}

func mapRings(rings [][][2]float64, fn seqFunc) ([][][2]float64, error) {
	out := make([][][2]float64, len(rings))
	for i, r := range rings {
		s, err := fn(r, true)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func copySeq(seq [][2]float64) [][2]float64 {
	out := make([][2]float64, len(seq))
	copy(out, seq)
	return out
}
