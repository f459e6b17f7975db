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
	"sort"

	"github.com/go-spatial/geom"

	"github.com/aaronlmathis/gofootprint/core"
	"github.com/aaronlmathis/gofootprint/geometry"
)

// AntimeridianNormalizer rewrites geometries that wrap across the ±180° meridian.
//
// Longitudes are first wrapped into [-180, 180]. Two consecutive vertices more than 180° of
// longitude apart are taken to cross the antimeridian the short way round. Crossing lines are
// split into a MultiLineString at the meridian with interpolated latitudes; crossing polygons
// are unwrapped and cut at the meridian into one polygon per piece on either side. Rings that
// enclose a pole cannot be represented this way and fail with core.ErrUnsupportedGeometry.
type AntimeridianNormalizer struct{}

// NewAntimeridianNormalizer creates an AntimeridianNormalizer.
func NewAntimeridianNormalizer() AntimeridianNormalizer {
	return AntimeridianNormalizer{}
}

// Name implements core.Named.
func (AntimeridianNormalizer) Name() string { return NameAntimeridian }

// Apply implements core.Operator.
func (a AntimeridianNormalizer) Apply(g core.Geometry, ctx *core.Context) (core.Geometry, error) {
	v, ok := g.Get()
	if !ok {
		return core.None(), nil
	}
	if err := geometry.CheckFinite(v); err != nil {
		return core.None(), err
	}
	out, err := a.normalize(v)
	if err != nil {
		return core.None(), err
	}
	if out == nil || geometry.IsEmpty(out) {
		ctx.AddDiagnostic("antimeridian split left no usable parts")
		return core.None(), nil
	}
	return core.Some(out), nil
}

func (a AntimeridianNormalizer) normalize(g geom.Geometry) (geom.Geometry, error) {
	switch v := geometry.Normalize(g).(type) {
	case geom.Point:
		return geom.Point{wrapLon(v[0]), v[1]}, nil
	case geom.MultiPoint:
		return geom.MultiPoint(wrapSeq(v)), nil
	case geom.LineString:
		return lineResult(splitLine(wrapSeq(v))), nil
	case geom.MultiLineString:
		var parts [][][2]float64
		for _, ls := range v {
			parts = append(parts, splitLine(wrapSeq(ls))...)
		}
		return lineResult(parts), nil
	case geom.Polygon:
		parts, err := splitPolygon(v)
		if err != nil {
			return nil, err
		}
		return polygonResult(parts), nil
	case geom.MultiPolygon:
		var parts [][][][2]float64
		for _, p := range v {
			ps, err := splitPolygon(p)
			if err != nil {
				return nil, err
			}
			parts = append(parts, ps...)
		}
		if len(parts) == 0 {
			return nil, nil
		}
		return geom.MultiPolygon(parts), nil
	case geom.Collection:
		out := make(geom.Collection, 0, len(v))
		for _, m := range v {
			n, err := a.normalize(m)
			if err != nil {
				return nil, err
			}
			if n != nil {
				out = append(out, n)
			}
		}
		return out, nil
	default:
		return nil, core.Unsupported(g)
	}
}

func lineResult(parts [][][2]float64) geom.Geometry {
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return geom.LineString(parts[0])
	default:
		return geom.MultiLineString(parts)
	}
}

func polygonResult(parts [][][][2]float64) geom.Geometry {
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return geom.Polygon(parts[0])
	default:
		return geom.MultiPolygon(parts)
	}
}

// wrapLon maps a longitude into [-180, 180].
func wrapLon(x float64) float64 {
	if x >= -180 && x <= 180 {
		return x
	}
	x = math.Mod(x+180, 360)
	if x < 0 {
		x += 360
	}
	return x - 180
}

func wrapSeq(seq [][2]float64) [][2]float64 {
	out := make([][2]float64, len(seq))
	for i, p := range seq {
		out[i] = [2]float64{wrapLon(p[0]), p[1]}
	}
	return out
}

func crosses(a, b [2]float64) bool {
	return math.Abs(b[0]-a[0]) > 180
}

func appendDistinct(seq [][2]float64, p [2]float64) [][2]float64 {
	if len(seq) > 0 && seq[len(seq)-1] == p {
		return seq
	}
	return append(seq, p)
}

// splitLine cuts a wrapped line at every antimeridian crossing.
// Parts left with fewer than two vertices are dropped.
func splitLine(pts [][2]float64) [][][2]float64 {
	if len(pts) == 0 {
		return nil
	}
	var parts [][][2]float64
	cur := [][2]float64{pts[0]}
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		if crosses(a, b) {
			exit, entry := 180.0, -180.0
			bx := b[0] + 360
			if b[0] > a[0] {
				exit, entry = -180, 180
				bx = b[0] - 360
			}
			t := (exit - a[0]) / (bx - a[0])
			lat := a[1] + t*(b[1]-a[1])
			cur = appendDistinct(cur, [2]float64{exit, lat})
			parts = append(parts, cur)
			cur = [][2]float64{{entry, lat}}
		}
		cur = appendDistinct(cur, b)
	}
	parts = append(parts, cur)

	kept := parts[:0]
	for _, p := range parts {
		if len(p) >= 2 {
			kept = append(kept, p)
		}
	}
	return kept
}

// splitPolygon returns the polygon as one or more polygons none of which crosses the meridian.
func splitPolygon(p [][][2]float64) ([][][][2]float64, error) {
	if len(p) == 0 || len(p[0]) == 0 {
		return nil, nil
	}
	closed := geometry.Closed(p[0])

	rings := make([][][2]float64, len(p))
	crossing := false
	for i, r := range p {
		rings[i] = wrapSeq(geometry.OpenRing(r))
		if ringCrosses(rings[i]) {
			crossing = true
		}
	}
	if !crossing {
		return [][][][2]float64{finishRings(rings, closed)}, nil
	}

	outer, err := unwrapRing(rings[0], rings[0][0][0])
	if err != nil {
		return nil, err
	}
	meridian := -180.0
	for _, q := range outer {
		if q[0] > 180 {
			meridian = 180
			break
		}
	}

	// Holes run against the shell so that the pieces of both meet the meridian in
	// alternating entry and exit points.
	ccw := geometry.SignedArea(outer) > 0
	holes := make([][][2]float64, 0, len(rings)-1)
	for _, r := range rings[1:] {
		if len(r) == 0 {
			continue
		}
		h, err := unwrapRing(r, nearestLon(r[0][0], outer[0][0]))
		if err != nil {
			return nil, err
		}
		if (geometry.SignedArea(h) > 0) == ccw {
			h = reverseRing(h)
		}
		holes = append(holes, h)
	}

	var parts [][][][2]float64
	for _, west := range []bool{true, false} {
		shift := 0.0
		if meridian == 180 && !west {
			shift = -360
		}
		if meridian == -180 && west {
			shift = 360
		}

		var shells, inner, chains [][][2]float64
		cut, whole := cutRing(outer, meridian, west)
		if whole {
			shells = append(shells, outer)
		}
		chains = append(chains, cut...)
		for _, h := range holes {
			cut, whole := cutRing(h, meridian, west)
			if whole {
				inner = append(inner, h)
				continue
			}
			chains = append(chains, cut...)
		}
		shells = append(shells, stitch(chains)...)

		polys := make([][][][2]float64, len(shells))
		for i, shell := range shells {
			polys[i] = [][][2]float64{shell}
		}
		for _, h := range inner {
			inside := farthestFrom(h, meridian)
			for i, shell := range shells {
				if inRing(inside, shell) {
					polys[i] = append(polys[i], h)
					break
				}
			}
		}
		for _, poly := range polys {
			for i := range poly {
				poly[i] = shiftRing(poly[i], shift)
			}
			parts = append(parts, finishRings(poly, closed))
		}
	}
	return parts, nil
}

func ringCrosses(r [][2]float64) bool {
	for i := range r {
		if crosses(r[i], r[(i+1)%len(r)]) {
			return true
		}
	}
	return false
}

// nearestLon shifts x by multiples of 360 to land as close as possible to ref.
func nearestLon(x, ref float64) float64 {
	for x-ref > 180 {
		x -= 360
	}
	for ref-x > 180 {
		x += 360
	}
	return x
}

// unwrapRing makes the open ring r continuous in longitude, starting at start.
func unwrapRing(r [][2]float64, start float64) ([][2]float64, error) {
	out := make([][2]float64, len(r))
	out[0] = [2]float64{start, r[0][1]}
	for i := 1; i < len(r); i++ {
		out[i] = [2]float64{nearestLon(r[i][0], out[i-1][0]), r[i][1]}
	}
	if len(out) > 1 && math.Abs(nearestLon(out[0][0], out[len(out)-1][0])-out[0][0]) > 1e-9 {
		return nil, fmt.Errorf("%w: ring encloses a pole", core.ErrUnsupportedGeometry)
	}
	return out, nil
}

// cutRing returns the stretches of the open ring r lying on one side of x = m (x <= m for
// west). Each stretch starts where r enters that side and ends where it leaves, both on the
// meridian. whole reports that r never leaves the side.
func cutRing(r [][2]float64, m float64, west bool) (chains [][][2]float64, whole bool) {
	outside := func(p [2]float64) bool {
		if west {
			return p[0] > m
		}
		return p[0] < m
	}
	start := -1
	for i, p := range r {
		if outside(p) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, true
	}

	n := len(r)
	var cur [][2]float64
	for k := 1; k <= n; k++ {
		prev, p := r[(start+k-1)%n], r[(start+k)%n]
		pout, cout := outside(prev), outside(p)
		switch {
		case pout && !cout:
			cur = appendDistinct([][2]float64{meridianPoint(prev, p, m)}, p)
		case !pout && !cout:
			cur = appendDistinct(cur, p)
		case !pout && cout:
			cur = appendDistinct(cur, meridianPoint(prev, p, m))
			if !alongMeridian(cur, m) {
				chains = append(chains, cur)
			}
			cur = nil
		}
	}
	return chains, false
}

// stitch closes the stretches returned by cutRing into rings. Sorted by latitude, the
// meridian points pair up into the intervals the pieces share with the meridian; each
// interval leads from the end of one stretch to the start of the next.
func stitch(chains [][][2]float64) [][][2]float64 {
	type end struct {
		lat   float64
		chain int
		exit  bool
	}
	ends := make([]end, 0, 2*len(chains))
	for i, c := range chains {
		ends = append(ends, end{c[0][1], i, false}, end{c[len(c)-1][1], i, true})
	}
	sort.SliceStable(ends, func(a, b int) bool { return ends[a].lat < ends[b].lat })

	next := make([]int, len(chains))
	for i := range next {
		next[i] = -1
	}
	for k := 0; k+1 < len(ends); k += 2 {
		a, b := ends[k], ends[k+1]
		switch {
		case a.exit && !b.exit:
			next[a.chain] = b.chain
		case b.exit && !a.exit:
			next[b.chain] = a.chain
		}
	}

	used := make([]bool, len(chains))
	var rings [][][2]float64
	for i := range chains {
		if used[i] {
			continue
		}
		var ring [][2]float64
		for j := i; j >= 0 && !used[j]; j = next[j] {
			used[j] = true
			for _, p := range chains[j] {
				ring = appendDistinct(ring, p)
			}
		}
		if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
			ring = ring[:len(ring)-1]
		}
		if usableRing(ring) {
			rings = append(rings, ring)
		}
	}
	return rings
}

func alongMeridian(seq [][2]float64, m float64) bool {
	for _, p := range seq {
		if p[0] != m {
			return false
		}
	}
	return true
}

// farthestFrom returns the vertex of r farthest from the meridian x = m.
func farthestFrom(r [][2]float64, m float64) [2]float64 {
	best := r[0]
	for _, p := range r[1:] {
		if math.Abs(p[0]-m) > math.Abs(best[0]-m) {
			best = p
		}
	}
	return best
}

// inRing reports whether p lies inside the open ring r (even-odd rule).
func inRing(p [2]float64, r [][2]float64) bool {
	in := false
	for i, j := 0, len(r)-1; i < len(r); j, i = i, i+1 {
		a, b := r[i], r[j]
		if (a[1] > p[1]) != (b[1] > p[1]) &&
			p[0] < (b[0]-a[0])*(p[1]-a[1])/(b[1]-a[1])+a[0] {
			in = !in
		}
	}
	return in
}

func reverseRing(r [][2]float64) [][2]float64 {
	out := make([][2]float64, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

func meridianPoint(a, b [2]float64, m float64) [2]float64 {
	switch m {
	case a[0]:
		return a
	case b[0]:
		return b
	}
	t := (m - a[0]) / (b[0] - a[0])
	return [2]float64{m, a[1] + t*(b[1]-a[1])}
}

func usableRing(r [][2]float64) bool {
	return len(r) >= 3 && geometry.SignedArea(r) != 0
}

func shiftRing(r [][2]float64, dx float64) [][2]float64 {
	out := make([][2]float64, len(r))
	for i, p := range r {
		out[i] = [2]float64{p[0] + dx, p[1]}
	}
	return out
}

func finishRings(rings [][][2]float64, closed bool) [][][2]float64 {
	if !closed {
		return rings
	}
	out := make([][][2]float64, len(rings))
	for i, r := range rings {
		out[i] = geometry.CloseRing(r)
	}
	return out
}
