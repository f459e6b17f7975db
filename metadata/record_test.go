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

package metadata

import (
	"testing"

	"github.com/go-spatial/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/gofootprint/core"
	"github.com/aaronlmathis/gofootprint/geometry"
)

func TestExtractionDefaults(t *testing.T) {
	e := NewExtraction("")
	assert.Equal(t, FormatWKT, e.Format)
	assert.Equal(t, DefaultGeometryField, e.Field)
	assert.Equal(t, DefaultGeometryField, e.Output)
	assert.Equal(t, FormatWKT, e.OutputFormat)
	assert.NoError(t, e.Validate())

	p := NewExtraction(FormatPoint)
	assert.Equal(t, DefaultLatField, p.Lat)
	assert.Equal(t, DefaultLonField, p.Lon)
	assert.Equal(t, DefaultGeometryField, p.Output)
	assert.NoError(t, p.Validate())

	c := NewExtraction(FormatCorners, WithOutput("footprint"), WithOutputFormat(FormatGeoJSON))
	assert.Equal(t, DefaultCorners(), c.Corners)
	assert.Equal(t, "footprint", c.Output)
	assert.NoError(t, c.Validate())
}

func TestExtractionValidate(t *testing.T) {
	tests := []struct {
		name string
		ext  Extraction
	}{
		{"unknown format", Extraction{Format: "kml", Output: "x", OutputFormat: FormatWKT}},
		{"wkt without field", Extraction{Format: FormatWKT, Output: "x", OutputFormat: FormatWKT}},
		{"point without lon", Extraction{Format: FormatPoint, Lat: "lat", Output: "x", OutputFormat: FormatWKT}},
		{"two corners", NewExtraction(FormatCorners, WithCorners(Corner{"a", "b"}, Corner{"c", "d"}))},
		{"blank corner", NewExtraction(FormatCorners, WithCorners(Corner{"a", "b"}, Corner{"c", "d"}, Corner{"", "f"}))},
		{"point output format", NewExtraction(FormatWKT, WithOutputFormat(FormatPoint))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.ext.Validate())
		})
	}
}

func TestRecordGeometry(t *testing.T) {
	corners := core.Record{
		"corner_lat_1": 10.0, "corner_lon_1": 20.0,
		"corner_lat_2": 10.0, "corner_lon_2": "21.5",
		"corner_lat_3": int64(11), "corner_lon_3": 21.5,
		"corner_lat_4": float32(11), "corner_lon_4": 20,
	}

	tests := []struct {
		name string
		data core.Record
		ext  Extraction
		want geom.Geometry
	}{
		{
			name: "wkt",
			data: core.Record{"location": "LINESTRING (1 2, 3 4)"},
			ext:  NewExtraction(FormatWKT),
			want: geom.LineString{{1, 2}, {3, 4}},
		},
		{
			name: "wkt bytes in custom field",
			data: core.Record{"wkt": []byte("POINT (5 6)")},
			ext:  NewExtraction(FormatWKT, WithField("wkt")),
			want: geom.Point{5, 6},
		},
		{
			name: "missing wkt",
			data: core.Record{},
			ext:  NewExtraction(FormatWKT),
		},
		{
			name: "geojson text",
			data: core.Record{"location": `{"type":"Point","coordinates":[7,8]}`},
			ext:  NewExtraction(FormatGeoJSON),
			want: geom.Point{7, 8},
		},
		{
			name: "geojson object",
			data: core.Record{"location": map[string]interface{}{
				"type":        "LineString",
				"coordinates": []interface{}{[]interface{}{0.0, 0.0}, []interface{}{1.0, 1.0}},
			}},
			ext:  NewExtraction(FormatGeoJSON),
			want: geom.LineString{{0, 0}, {1, 1}},
		},
		{
			name: "point",
			data: core.Record{"sensor_latitude": 38.5, "sensor_longitude": "-77.25"},
			ext:  NewExtraction(FormatPoint),
			want: geom.Point{-77.25, 38.5},
		},
		{
			name: "point missing latitude",
			data: core.Record{"sensor_longitude": 1.0},
			ext:  NewExtraction(FormatPoint),
		},
		{
			name: "corners",
			data: corners,
			ext:  NewExtraction(FormatCorners),
			want: geom.Polygon{{{20, 10}, {21.5, 10}, {21.5, 11}, {20, 11}, {20, 10}}},
		},
		{
			name: "corners with a gap",
			data: core.Record{"corner_lat_1": 10.0, "corner_lon_1": 20.0},
			ext:  NewExtraction(FormatCorners),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewRecord(tt.data, tt.ext).Geometry()
			require.NoError(t, err)
			if tt.want == nil {
				assert.True(t, g.IsNone())
				return
			}
			assert.Equal(t, tt.want, g.Value())
		})
	}
}

func TestRecordGeometryErrors(t *testing.T) {
	tests := []struct {
		name string
		data core.Record
		ext  Extraction
	}{
		{"wkt not text", core.Record{"location": 12}, NewExtraction(FormatWKT)},
		{"bad wkt", core.Record{"location": "POINT (1"}, NewExtraction(FormatWKT)},
		{"bad geojson", core.Record{"location": "{"}, NewExtraction(FormatGeoJSON)},
		{"non-numeric latitude", core.Record{"sensor_latitude": "north", "sensor_longitude": 1.0}, NewExtraction(FormatPoint)},
		{"bool longitude", core.Record{"sensor_latitude": 1.0, "sensor_longitude": true}, NewExtraction(FormatPoint)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecord(tt.data, tt.ext).Geometry()
			assert.Error(t, err)
		})
	}
}

func TestRecordSetGeometry(t *testing.T) {
	data := core.Record{"location": "POINT (1 2)", "frame": 9}
	r := NewRecord(data, NewExtraction(FormatWKT, WithOutput("footprint")))

	require.NoError(t, r.SetGeometry(core.Some(geom.LineString{{0, 0}, {1, 1}})))
	s, ok := data["footprint"].(string)
	require.True(t, ok)
	g, err := geometry.ParseWKT(s)
	require.NoError(t, err)
	assert.Equal(t, geom.LineString{{0, 0}, {1, 1}}, g)

	require.NoError(t, r.SetGeometry(core.None()))
	v, ok := data["footprint"]
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.Equal(t, "POINT (1 2)", data["location"])

	frame, ok := r.Attribute("frame")
	require.True(t, ok)
	assert.Equal(t, 9, frame)

	gj := NewRecord(nil, NewExtraction(FormatPoint, WithOutputFormat(FormatGeoJSON)))
	require.NoError(t, gj.SetGeometry(core.Some(geom.Point{3, 4})))
	out, err := geometry.ParseGeoJSON([]byte(gj.Data()[DefaultGeometryField].(string)))
	require.NoError(t, err)
	assert.Equal(t, geom.Point{3, 4}, out)
}
