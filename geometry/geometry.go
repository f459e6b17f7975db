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

// Package geometry is the capability layer over github.com/go-spatial/geom used by operators.
//
// It answers the questions operators ask of a geometry value (is it empty, how many vertices,
// what are its bounds) and produces independent copies, so operators never have to alias or
// mutate their input.
package geometry

import (
	"math"

	"github.com/go-spatial/geom"

	"github.com/aaronlmathis/gofootprint/core"
)

// Normalize dereferences pointer geometries to their value form.
// Values of other types are returned as-is.
func Normalize(g geom.Geometry) geom.Geometry {
	switch v := g.(type) {
	case *geom.Point:
		if v == nil {
			return nil
		}
		return *v
	case *geom.MultiPoint:
		if v == nil {
			return nil
		}
		return *v
	case *geom.LineString:
		if v == nil {
			return nil
		}
		return *v
	case *geom.MultiLineString:
		if v == nil {
			return nil
		}
		return *v
	case *geom.Polygon:
		if v == nil {
			return nil
		}
		return *v
	case *geom.MultiPolygon:
		if v == nil {
			return nil
		}
		return *v
	case *geom.Collection:
		if v == nil {
			return nil
		}
		out := make(geom.Collection, len(*v))
		for i, m := range *v {
			out[i] = Normalize(m)
		}
		return out
	case geom.Collection:
		out := make(geom.Collection, len(v))
		for i, m := range v {
			out[i] = Normalize(m)
		}
		return out
	default:
		return g
	}
}

// IsEmpty reports whether g has no vertices. A nil geometry is empty.
func IsEmpty(g geom.Geometry) bool {
	switch v := Normalize(g).(type) {
	case nil:
		return true
	case geom.Point:
		return false
	case geom.MultiPoint:
		return len(v) == 0
	case geom.LineString:
		return len(v) == 0
	case geom.MultiLineString:
		for _, ls := range v {
			if len(ls) > 0 {
				return false
			}
		}
		return true
	case geom.Polygon:
		return polygonEmpty(v)
	case geom.MultiPolygon:
		for _, p := range v {
			if !polygonEmpty(p) {
				return false
			}
		}
		return true
	case geom.Collection:
		for _, m := range v {
			if !IsEmpty(m) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func polygonEmpty(p [][][2]float64) bool {
	return len(p) == 0 || len(p[0]) == 0
}

// VertexCount returns the number of stored vertices in g, closing vertices included.
func VertexCount(g geom.Geometry) int {
	switch v := Normalize(g).(type) {
	case geom.Point:
		return 1
	case geom.MultiPoint:
		return len(v)
	case geom.LineString:
		return len(v)
	case geom.MultiLineString:
		n := 0
		for _, ls := range v {
			n += len(ls)
		}
		return n
	case geom.Polygon:
		n := 0
		for _, r := range v {
			n += len(r)
		}
		return n
	case geom.MultiPolygon:
		n := 0
		for _, p := range v {
			n += VertexCount(geom.Polygon(p))
		}
		return n
	case geom.Collection:
		n := 0
		for _, m := range v {
			n += VertexCount(m)
		}
		return n
	default:
		return 0
	}
}

// Clone returns a deep copy of g that shares no backing arrays with it.
func Clone(g geom.Geometry) (geom.Geometry, error) {
	return MapCoords(g, func(p [2]float64) [2]float64 { return p })
}

// MapCoords returns a deep copy of g with fn applied to every vertex.
func MapCoords(g geom.Geometry, fn func([2]float64) [2]float64) (geom.Geometry, error) {
	switch v := Normalize(g).(type) {
	case nil:
		return nil, nil
	case geom.Point:
		return geom.Point(fn(v)), nil
	case geom.MultiPoint:
		return geom.MultiPoint(mapSeq(v, fn)), nil
	case geom.LineString:
		return geom.LineString(mapSeq(v, fn)), nil
	case geom.MultiLineString:
		return geom.MultiLineString(mapSeqs(v, fn)), nil
	case geom.Polygon:
		return geom.Polygon(mapSeqs(v, fn)), nil
	case geom.MultiPolygon:
		out := make(geom.MultiPolygon, len(v))
		for i, p := range v {
			out[i] = mapSeqs(p, fn)
		}
		return out, nil
	case geom.Collection:
		out := make(geom.Collection, len(v))
		for i, m := range v {
			c, err := MapCoords(m, fn)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	default:
		return nil, core.Unsupported(g)
	}
}

func mapSeq(seq [][2]float64, fn func([2]float64) [2]float64) [][2]float64 {
	if seq == nil {
		return nil
	}
	out := make([][2]float64, len(seq))
	for i, p := range seq {
		out[i] = fn(p)
	}
	return out
}

func mapSeqs(seqs [][][2]float64, fn func([2]float64) [2]float64) [][][2]float64 {
	if seqs == nil {
		return nil
	}
	out := make([][][2]float64, len(seqs))
	for i, s := range seqs {
		out[i] = mapSeq(s, fn)
	}
	return out
}

// CheckFinite returns an error wrapping core.ErrNonFinite if any coordinate is NaN or ±Inf.
func CheckFinite(g geom.Geometry) error {
	var bad bool
	_, err := MapCoords(g, func(p [2]float64) [2]float64 {
		if !finite(p[0]) || !finite(p[1]) {
			bad = true
		}
		return p
	})
	if err != nil {
		return err
	}
	if bad {
		return core.ErrNonFinite
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Bounds returns the bounding box of g as min and max corners.
// ok is false for empty geometries.
func Bounds(g geom.Geometry) (min, max [2]float64, ok bool) {
	g = Normalize(g)
	if IsEmpty(g) {
		return min, max, false
	}
	ext, err := geom.NewExtentFromGeometry(g)
	if err != nil || ext == nil {
		return min, max, false
	}
	return [2]float64{ext.MinX(), ext.MinY()}, [2]float64{ext.MaxX(), ext.MaxY()}, true
}

// Closed reports whether seq repeats its first vertex at the end.
func Closed(seq [][2]float64) bool {
	return len(seq) > 1 && seq[0] == seq[len(seq)-1]
}

// OpenRing returns ring without its closing vertex. The result aliases ring.
func OpenRing(ring [][2]float64) [][2]float64 {
	if Closed(ring) {
		return ring[:len(ring)-1]
	}
	return ring
}

// CloseRing returns a copy of ring that ends with its first vertex.
func CloseRing(ring [][2]float64) [][2]float64 {
	out := make([][2]float64, 0, len(ring)+1)
	out = append(out, ring...)
	if len(out) > 0 && !Closed(out) {
		out = append(out, out[0])
	}
	return out
}

// SignedArea returns the shoelace area of ring; positive for counter-clockwise rings.
func SignedArea(ring [][2]float64) float64 {
	r := OpenRing(ring)
	if len(r) < 3 {
		return 0
	}
	var sum float64
	for i := range r {
		j := (i + 1) % len(r)
		sum += r[i][0]*r[j][1] - r[j][0]*r[i][1]
	}
	return sum / 2
}
