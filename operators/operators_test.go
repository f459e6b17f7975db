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
	"math"
	"testing"

	"github.com/go-spatial/geom"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/gofootprint/core"
	"github.com/aaronlmathis/gofootprint/geometry"
)

// circle returns a closed ring of n stored vertices (n-1 distinct) around (cx, cy).
func circle(cx, cy, r float64, n int) [][2]float64 {
	ring := make([][2]float64, 0, n)
	for i := 0; i < n-1; i++ {
		a := 2 * math.Pi * float64(i) / float64(n-1)
		ring = append(ring, [2]float64{cx + r*math.Cos(a), cy + r*math.Sin(a)})
	}
	return append(ring, ring[0])
}

func line(n int) geom.LineString {
	ls := make(geom.LineString, n)
	for i := range ls {
		ls[i] = [2]float64{float64(i), float64(i % 3)}
	}
	return ls
}

func allOperators(t *testing.T) map[string]core.Operator {
	t.Helper()
	sub, err := NewSubsampler(3)
	require.NoError(t, err)
	simp, err := NewSimplifier(0.5)
	require.NoError(t, err)
	prec, err := NewPrecisionReducer(3)
	require.NoError(t, err)
	return map[string]core.Operator{
		NameNonEmpty:     NewNonEmptyFilter(),
		NameSubsample:    sub,
		NameAntimeridian: NewAntimeridianNormalizer(),
		NameSimplify:     simp,
		NameValid:        NewValidityFilter(),
		NameEnvelope:     NewEnvelopeOperator(),
		NamePrecision:    prec,
		NameRemember:     NewRememberOperator(),
	}
}

func TestNullPropagation(t *testing.T) {
	for name, op := range allOperators(t) {
		t.Run(name, func(t *testing.T) {
			out, err := op.Apply(core.None(), core.NewContext())
			require.NoError(t, err)
			assert.True(t, out.IsNone())
		})
	}
}

func TestDeterminism(t *testing.T) {
	in := core.Some(geom.Polygon{circle(10, 10, 5, 40)})
	for name, op := range allOperators(t) {
		t.Run(name, func(t *testing.T) {
			a, err := op.Apply(in, core.NewContext())
			require.NoError(t, err)
			b, err := op.Apply(in, core.NewContext())
			require.NoError(t, err)
			if diff := cmp.Diff(a.Value(), b.Value()); diff != "" {
				t.Errorf("results differ (-first +second):\n%s", diff)
			}
		})
	}
}

func TestOperatorsDoNotMutateInput(t *testing.T) {
	ring := circle(179, 0, 3, 30)
	in := geom.Polygon{ring}
	want, err := geometry.Clone(in)
	require.NoError(t, err)

	for name, op := range allOperators(t) {
		t.Run(name, func(t *testing.T) {
			_, err := op.Apply(core.Some(in), core.NewContext())
			require.NoError(t, err)
			assert.Equal(t, want, in)
		})
	}
}

func TestNonEmptyFilter(t *testing.T) {
	f := NewNonEmptyFilter()

	tests := []struct {
		name  string
		g     geom.Geometry
		empty bool
	}{
		{"empty polygon", geom.Polygon{}, true},
		{"empty line", geom.LineString{}, true},
		{"empty multipoint", geom.MultiPoint{}, true},
		{"point", geom.Point{1, 1}, false},
		{"line", line(3), false},
		{"polygon", geom.Polygon{circle(0, 0, 1, 6)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := core.NewContext()
			in := core.Some(tt.g)
			out, err := f.Apply(in, ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, ctx.Revision(), "context untouched")
			if tt.empty {
				assert.True(t, out.IsNone())
				return
			}
			assert.Equal(t, in, out)

			twice, err := f.Apply(out, ctx)
			require.NoError(t, err)
			assert.Equal(t, out, twice)
		})
	}
}

func TestNonEmptyReturnsIdenticalValue(t *testing.T) {
	in := &geom.LineString{{0, 0}, {1, 1}}
	out, err := NewNonEmptyFilter().Apply(core.Some(in), core.NewContext())
	require.NoError(t, err)
	assert.Same(t, in, out.Value())
}

func TestSubsampleClosedRing(t *testing.T) {
	ring := circle(0, 0, 10, 100)
	require.Len(t, ring, 100)
	s, err := NewSubsampler(10)
	require.NoError(t, err)

	ctx := core.NewContext()
	out, err := s.Apply(core.Some(geom.Polygon{ring}), ctx)
	require.NoError(t, err)

	p, ok := out.Value().(geom.Polygon)
	require.True(t, ok)
	require.Len(t, p, 1)
	assert.Len(t, p[0], 10)
	assert.Equal(t, ring[0], p[0][0])
	assert.Equal(t, ring[99], p[0][9])
	assert.True(t, geometry.Closed(p[0]))
	assert.NoError(t, geometry.Validate(p))
	assert.Equal(t, 1, ctx.Counter(SubsampleCounter))
}

func TestSubsampleLine(t *testing.T) {
	in := line(20)
	s, err := NewSubsampler(5)
	require.NoError(t, err)

	out, err := s.Apply(core.Some(in), core.NewContext())
	require.NoError(t, err)
	want := geom.LineString{in[0], in[5], in[10], in[19]}
	assert.Equal(t, want, out.Value())
}

func TestSubsampleFloors(t *testing.T) {
	tests := []struct {
		name string
		g    geom.Geometry
		n    int
		want geom.Geometry
	}{
		{
			name: "short line unchanged",
			g:    geom.LineString{{0, 0}, {1, 1}},
			n:    10,
			want: geom.LineString{{0, 0}, {1, 1}},
		},
		{
			name: "line keeps both ends",
			g:    geom.LineString{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}},
			n:    10,
			want: geom.LineString{{0, 0}, {4, 0}},
		},
		{
			name: "closed ring keeps four",
			g:    geom.Polygon{{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {2, 2}, {1, 2}, {0, 0}}},
			n:    5,
			want: geom.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 0}}},
		},
		{
			name: "point passes through",
			g:    geom.Point{3, 4},
			n:    5,
			want: geom.Point{3, 4},
		},
		{
			name: "interval one copies",
			g:    line(6),
			n:    1,
			want: line(6),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSubsampler(tt.n)
			require.NoError(t, err)
			out, err := s.Apply(core.Some(tt.g), core.NewContext())
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Value())
		})
	}

	_, err := NewSubsampler(0)
	assert.Error(t, err)
}

func TestSubsampleMultiGeometry(t *testing.T) {
	s, err := NewSubsampler(2)
	require.NoError(t, err)
	in := geom.MultiLineString{line(5), line(2)}
	out, err := s.Apply(core.Some(in), core.NewContext())
	require.NoError(t, err)
	want := geom.MultiLineString{{{0, 0}, {2, 2}, {4, 1}}, {{0, 0}, {1, 1}}}
	assert.Equal(t, want, out.Value())
}

func inRange(t *testing.T, g geom.Geometry) {
	t.Helper()
	_, err := geometry.MapCoords(g, func(p [2]float64) [2]float64 {
		assert.GreaterOrEqual(t, p[0], -180.0)
		assert.LessOrEqual(t, p[0], 180.0)
		return p
	})
	require.NoError(t, err)
}

func TestAntimeridianLine(t *testing.T) {
	a := NewAntimeridianNormalizer()
	out, err := a.Apply(core.Some(geom.LineString{{170, 0}, {-170, 10}}), core.NewContext())
	require.NoError(t, err)

	mls, ok := out.Value().(geom.MultiLineString)
	require.True(t, ok, "got %T", out.Value())
	require.Len(t, mls, 2)
	assert.Equal(t, [2]float64{170, 0}, mls[0][0])
	assert.Equal(t, 180.0, mls[0][1][0])
	assert.InDelta(t, 5, mls[0][1][1], 1e-9)
	assert.Equal(t, -180.0, mls[1][0][0])
	assert.InDelta(t, 5, mls[1][0][1], 1e-9)
	assert.Equal(t, [2]float64{-170, 10}, mls[1][1])
	inRange(t, mls)
}

func TestAntimeridianWrapsLongitudes(t *testing.T) {
	a := NewAntimeridianNormalizer()
	out, err := a.Apply(core.Some(geom.Point{190, 5}), core.NewContext())
	require.NoError(t, err)
	assert.Equal(t, geom.Point{-170, 5}, out.Value())

	in := geom.LineString{{10, 0}, {20, 5}}
	out, err = a.Apply(core.Some(in), core.NewContext())
	require.NoError(t, err)
	assert.Equal(t, in, out.Value())
}

func TestAntimeridianPolygon(t *testing.T) {
	a := NewAntimeridianNormalizer()
	in := geom.Polygon{{{175, -5}, {-175, -5}, {-175, 5}, {175, 5}, {175, -5}}}
	out, err := a.Apply(core.Some(in), core.NewContext())
	require.NoError(t, err)

	mp, ok := out.Value().(geom.MultiPolygon)
	require.True(t, ok, "got %T", out.Value())
	require.Len(t, mp, 2)
	inRange(t, mp)
	assert.NoError(t, geometry.Validate(mp))

	var area float64
	for _, p := range mp {
		assert.True(t, geometry.Closed(p[0]))
		area += math.Abs(geometry.SignedArea(p[0]))
	}
	assert.InDelta(t, 100, area, 1e-9)
}

func TestAntimeridianConcavePolygons(t *testing.T) {
	tests := []struct {
		name  string
		in    geom.Polygon
		parts int
		holes int
		area  float64
	}{
		{
			name: "u shape with both arms across",
			in: geom.Polygon{{
				{170, 0}, {-170, 0}, {-170, 2}, {175, 2}, {175, 8},
				{-170, 8}, {-170, 10}, {170, 10}, {170, 0},
			}},
			parts: 3,
			area:  110,
		},
		{
			name: "hole across",
			in: geom.Polygon{
				{{170, -10}, {-170, -10}, {-170, 10}, {170, 10}, {170, -10}},
				{{175, -5}, {175, 5}, {-175, 5}, {-175, -5}, {175, -5}},
			},
			parts: 2,
			area:  300,
		},
		{
			name: "hole on one side",
			in: geom.Polygon{
				{{170, -10}, {-170, -10}, {-170, 10}, {170, 10}, {170, -10}},
				{{172, -2}, {172, 2}, {176, 2}, {176, -2}, {172, -2}},
			},
			parts: 2,
			holes: 1,
			area:  400,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewAntimeridianNormalizer().Apply(core.Some(tt.in), core.NewContext())
			require.NoError(t, err)

			mp, ok := out.Value().(geom.MultiPolygon)
			require.True(t, ok, "got %T", out.Value())
			require.Len(t, mp, tt.parts)
			inRange(t, mp)
			assert.NoError(t, geometry.Validate(mp))

			var area float64
			holes := 0
			for _, p := range mp {
				assert.True(t, geometry.Closed(p[0]))
				area += math.Abs(geometry.SignedArea(p[0]))
				holes += len(p) - 1
			}
			assert.InDelta(t, tt.area, area, 1e-9)
			assert.Equal(t, tt.holes, holes)
		})
	}
}

func TestAntimeridianPolarRingFails(t *testing.T) {
	in := geom.Polygon{{{0, 80}, {90, 80}, {180, 80}, {-90, 80}, {0, 80}}}
	_, err := NewAntimeridianNormalizer().Apply(core.Some(in), core.NewContext())
	assert.ErrorIs(t, err, core.ErrUnsupportedGeometry)
}

func TestSimplify(t *testing.T) {
	s, err := NewSimplifier(0.1)
	require.NoError(t, err)

	in := geom.LineString{{0, 0}, {1, 0.01}, {2, -0.01}, {3, 0}, {4, 5}}
	ctx := core.NewContext()
	out, err := s.Apply(core.Some(in), ctx)
	require.NoError(t, err)
	assert.Equal(t, geom.LineString{{0, 0}, {3, 0}, {4, 5}}, out.Value())
	assert.Empty(t, ctx.Diagnostics())

	ring := circle(0, 0, 10, 100)
	out, err = s.Apply(core.Some(geom.Polygon{ring}), core.NewContext())
	require.NoError(t, err)
	p := out.Value().(geom.Polygon)
	assert.Less(t, len(p[0]), len(ring))
	assert.True(t, geometry.Closed(p[0]))
	assert.NoError(t, geometry.Validate(p))
}

func TestSimplifyFallsBack(t *testing.T) {
	s, err := NewSimplifier(100)
	require.NoError(t, err)

	in := core.Some(geom.Polygon{circle(0, 0, 1, 20)})
	ctx := core.NewContext()
	out, err := s.Apply(in, ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	require.Len(t, ctx.Diagnostics(), 1)
	assert.Contains(t, ctx.Diagnostics()[0].Message, "keeping input")

	_, err = NewSimplifier(0)
	assert.Error(t, err)
	_, err = NewSimplifier(math.NaN())
	assert.Error(t, err)
}

func TestSimplifyKeepsPoints(t *testing.T) {
	s, err := NewSimplifier(1)
	require.NoError(t, err)

	centres := geom.MultiPoint{{0, 0}, {10, 0.1}, {20, -0.1}, {30, 0}, {40, 0}}
	out, err := s.Apply(core.Some(centres), core.NewContext())
	require.NoError(t, err)
	assert.Equal(t, centres, out.Value())

	mixed := geom.Collection{centres, geom.LineString{{0, 0}, {1, 0.01}, {2, 0}}}
	out, err = s.Apply(core.Some(mixed), core.NewContext())
	require.NoError(t, err)
	assert.Equal(t, geom.Collection{centres, geom.LineString{{0, 0}, {2, 0}}}, out.Value())
}

func TestValidityFilter(t *testing.T) {
	v := NewValidityFilter()

	ctx := core.NewContext()
	bowtie := geom.Polygon{{{0, 0}, {2, 2}, {2, 0}, {0, 2}, {0, 0}}}
	out, err := v.Apply(core.Some(bowtie), ctx)
	require.NoError(t, err)
	assert.True(t, out.IsNone())
	require.Len(t, ctx.Diagnostics(), 1)

	in := core.Some(geom.Polygon{circle(0, 0, 1, 8)})
	out, err = v.Apply(in, core.NewContext())
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = v.Apply(core.Some(geom.Point{math.NaN(), 0}), core.NewContext())
	assert.ErrorIs(t, err, core.ErrNonFinite)
}

func TestEnvelope(t *testing.T) {
	e := NewEnvelopeOperator()
	tests := []struct {
		name string
		g    geom.Geometry
		want geom.Geometry
	}{
		{"track", geom.LineString{{1, 2}, {4, -1}, {3, 6}}, geom.Polygon{{{1, -1}, {4, -1}, {4, 6}, {1, 6}, {1, -1}}}},
		{"flat", geom.LineString{{0, 1}, {5, 1}}, geom.LineString{{0, 1}, {5, 1}}},
		{"single point", geom.MultiPoint{{2, 2}, {2, 2}}, geom.Point{2, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.Apply(core.Some(tt.g), core.NewContext())
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Value())
		})
	}
}

func TestPrecision(t *testing.T) {
	p, err := NewPrecisionReducer(2)
	require.NoError(t, err)
	out, err := p.Apply(core.Some(geom.LineString{{1.23456, -7.891}, {0.005, 3}}), core.NewContext())
	require.NoError(t, err)
	assert.Equal(t, geom.LineString{{1.23, -7.89}, {0.01, 3}}, out.Value())

	_, err = NewPrecisionReducer(16)
	assert.Error(t, err)
	_, err = NewPrecisionReducer(-1)
	assert.Error(t, err)
}

func TestPrecisionLargeCoordinates(t *testing.T) {
	p, err := NewPrecisionReducer(MaxPrecisionDecimals)
	require.NoError(t, err)

	out, err := p.Apply(core.Some(geom.Point{1e300, -1e20}), core.NewContext())
	require.NoError(t, err)
	assert.Equal(t, geom.Point{1e300, -1e20}, out.Value())

	out, err = p.Apply(core.Some(geom.Point{0.1234567890123456789, 12}), core.NewContext())
	require.NoError(t, err)
	assert.False(t, math.IsInf(out.Value().(geom.Point)[0], 0))
	assert.InDelta(t, 0.123456789012346, out.Value().(geom.Point)[0], 1e-15)
}

func TestRememberAndFallback(t *testing.T) {
	ctx := core.NewContext()
	fb := NewFallbackLastKnownGood()

	out, err := fb.Apply(core.None(), ctx)
	require.NoError(t, err)
	assert.True(t, out.IsNone())
	assert.Empty(t, ctx.Diagnostics())

	good := core.Some(geom.Polygon{circle(0, 0, 1, 6)})
	out, err = NewRememberOperator().Apply(good, ctx)
	require.NoError(t, err)
	assert.Equal(t, good, out)
	assert.Equal(t, good, ctx.LastKnownGood())

	out, err = fb.Apply(core.None(), ctx)
	require.NoError(t, err)
	assert.Equal(t, good.Value(), out.Value())
	require.Len(t, ctx.Diagnostics(), 1)

	other := core.Some(geom.Point{5, 5})
	out, err = fb.Apply(other, ctx)
	require.NoError(t, err)
	assert.Equal(t, other, out)
}
