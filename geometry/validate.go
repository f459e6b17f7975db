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

package geometry

import (
	"errors"
	"fmt"

	"github.com/go-spatial/geom"

	"github.com/aaronlmathis/gofootprint/core"
)

// ErrInvalid is wrapped by every validity violation reported by Validate.
var ErrInvalid = errors.New("invalid geometry")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks the topological validity of g.
//
// Validity violations (empty, too few distinct vertices, zero-area or self-intersecting rings)
// wrap ErrInvalid. Non-finite coordinates wrap core.ErrNonFinite and unknown variants wrap
// core.ErrUnsupportedGeometry; callers treat those two as processing failures rather than
// ordinary invalid data.
func Validate(g geom.Geometry) error {
	g = Normalize(g)
	if err := CheckFinite(g); err != nil {
		return err
	}
	switch v := g.(type) {
	case nil:
		return invalid("empty")
	case geom.Point:
		return nil
	case geom.MultiPoint:
		if len(v) == 0 {
			return invalid("empty multipoint")
		}
		return nil
	case geom.LineString:
		return validateLine(v)
	case geom.MultiLineString:
		if len(v) == 0 {
			return invalid("empty multilinestring")
		}
		for i, ls := range v {
			if err := validateLine(ls); err != nil {
				return fmt.Errorf("part %d: %w", i, err)
			}
		}
		return nil
	case geom.Polygon:
		return validatePolygon(v)
	case geom.MultiPolygon:
		if len(v) == 0 {
			return invalid("empty multipolygon")
		}
		for i, p := range v {
			if err := validatePolygon(p); err != nil {
				return fmt.Errorf("part %d: %w", i, err)
			}
		}
		return nil
	case geom.Collection:
		if len(v) == 0 {
			return invalid("empty collection")
		}
		for i, m := range v {
			if err := Validate(m); err != nil {
				return fmt.Errorf("member %d: %w", i, err)
			}
		}
		return nil
	default:
		return core.Unsupported(g)
	}
}

// IsValid reports whether Validate returns nil.
func IsValid(g geom.Geometry) bool {
	return Validate(g) == nil
}

func validateLine(ls [][2]float64) error {
	if len(ls) == 0 {
		return invalid("empty linestring")
	}
	if distinct(ls) < 2 {
		return invalid("linestring needs at least 2 distinct vertices")
	}
	return nil
}

func validatePolygon(p [][][2]float64) error {
	if polygonEmpty(p) {
		return invalid("empty polygon")
	}
	for i, ring := range p {
		if err := validateRing(ring); err != nil {
			return fmt.Errorf("ring %d: %w", i, err)
		}
	}
	return nil
}

func validateRing(ring [][2]float64) error {
	r := OpenRing(ring)
	if distinct(r) < 3 {
		return invalid("ring needs at least 3 distinct vertices")
	}
	if SignedArea(r) == 0 {
		return invalid("ring has zero area")
	}
	if selfIntersects(r) {
		return invalid("ring self-intersects")
	}
	return nil
}

func distinct(seq [][2]float64) int {
	seen := make(map[[2]float64]struct{}, len(seq))
	for _, p := range seq {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// selfIntersects tests every pair of non-adjacent edges of the open ring r. Edges that
// touch at a vertex or overlap along a line count as intersecting.
// Consecutive duplicate vertices are collapsed first.
func selfIntersects(r [][2]float64) bool {
	pts := make([][2]float64, 0, len(r))
	for _, p := range r {
		if len(pts) == 0 || pts[len(pts)-1] != p {
			pts = append(pts, p)
		}
	}
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	n := len(pts)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := pts[i], pts[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			b1, b2 := pts[j], pts[(j+1)%n]
			if segmentsIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

func orient(a, b, c [2]float64) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, p [2]float64) bool {
	return p[0] >= minf(a[0], b[0]) && p[0] <= maxf(a[0], b[0]) &&
		p[1] >= minf(a[1], b[1]) && p[1] <= maxf(a[1], b[1])
}

func segmentsIntersect(p1, p2, q1, q2 [2]float64) bool {
	d1 := orient(q1, q2, p1)
	d2 := orient(q1, q2, p2)
	d3 := orient(p1, p2, q1)
	d4 := orient(p1, p2, q2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	switch {
	case d1 == 0 && onSegment(q1, q2, p1):
		return true
	case d2 == 0 && onSegment(q1, q2, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, q1):
		return true
	case d4 == 0 && onSegment(p1, p2, q2):
		return true
	}
	return false
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
