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
	"testing"

	"github.com/go-spatial/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecord map[string]interface{}

func (s stubRecord) Geometry() (Geometry, error)  { return None(), nil }
func (s stubRecord) SetGeometry(g Geometry) error { return nil }
func (s stubRecord) Attribute(name string) (interface{}, bool) {
	v, ok := s[name]
	return v, ok
}

func TestNewContext(t *testing.T) {
	a := NewContext()
	b := NewContext()
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 0, a.Revision())
	assert.True(t, a.LastKnownGood().IsNone())
	assert.Nil(t, a.Record())

	c := NewContext(WithID("frame-7"), WithFlags(map[string]bool{"strict": true}), WithValue("k", 1))
	assert.Equal(t, "frame-7", c.ID())
	assert.True(t, c.Flag("strict"))
	assert.False(t, c.Flag("other"))
	v, ok := c.Value("k")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 0, c.Revision(), "options do not count as mutations")
}

func TestContextMutations(t *testing.T) {
	ctx := NewContext()

	assert.Equal(t, 1, ctx.Incr("n"))
	assert.Equal(t, 2, ctx.Incr("n"))
	assert.Equal(t, 2, ctx.Counter("n"))
	assert.Equal(t, 0, ctx.Counter("missing"))

	counters := ctx.Counters()
	counters["n"] = 100
	assert.Equal(t, 2, ctx.Counter("n"), "Counters returns a copy")

	ctx.SetValue("a", "b")
	ctx.SetFlag("f", true)
	ctx.SetLastKnownGood(Some(geom.Point{1, 2}))
	assert.Equal(t, 6, ctx.Revision())

	last, ok := ctx.LastKnownGood().Get()
	require.True(t, ok)
	assert.Equal(t, geom.Point{1, 2}, last)
}

func TestContextDiagnostics(t *testing.T) {
	ctx := NewContext()
	ctx.AddDiagnostic("before any stage")
	ctx.EnterStage("simplify")
	ctx.Diagnosticf("kept %d of %d", 3, 9)

	diags := ctx.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, Diagnostic{Message: "before any stage"}, diags[0])
	assert.Equal(t, Diagnostic{Stage: "simplify", Message: "kept 3 of 9"}, diags[1])
	assert.Equal(t, "simplify: kept 3 of 9", diags[1].String())
	assert.Equal(t, "before any stage", diags[0].String())

	diags[0].Message = "changed"
	assert.Equal(t, "before any stage", ctx.Diagnostics()[0].Message)
}

func TestContextAttribute(t *testing.T) {
	_, ok := NewContext().Attribute("frame_time")
	assert.False(t, ok)

	ctx := NewContext(WithRecord(stubRecord{"frame_time": "2024-01-01T00:00:00Z"}))
	v, ok := ctx.Attribute("frame_time")
	require.True(t, ok)
	assert.Equal(t, "2024-01-01T00:00:00Z", v)
}

func TestGeometryOption(t *testing.T) {
	assert.True(t, None().IsNone())
	assert.True(t, Some(nil).IsNone())

	g := Some(geom.LineString{{0, 0}, {1, 1}})
	assert.True(t, g.IsSome())
	v, ok := g.Get()
	require.True(t, ok)
	assert.Equal(t, geom.LineString{{0, 0}, {1, 1}}, v)
}
