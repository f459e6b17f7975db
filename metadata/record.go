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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-spatial/geom"

	"github.com/aaronlmathis/gofootprint/core"
	"github.com/aaronlmathis/gofootprint/geometry"
)

// Record implements core.MetadataRecord over a core.Record.
// SetGeometry writes into the wrapped record.
type Record struct {
	data core.Record
	ext  Extraction
}

var _ core.MetadataRecord = (*Record)(nil)

// NewRecord wraps data using ext. Missing extraction settings take their defaults.
func NewRecord(data core.Record, ext Extraction) *Record {
	if data == nil {
		data = make(core.Record)
	}
	return &Record{data: data, ext: ext.withDefaults()}
}

// Data returns the wrapped record.
func (r *Record) Data() core.Record {
	return r.data
}

// Attribute implements core.MetadataRecord.
func (r *Record) Attribute(name string) (interface{}, bool) {
	v, ok := r.data[name]
	return v, ok
}

// Geometry implements core.MetadataRecord. Records lacking the configured attributes yield None.
func (r *Record) Geometry() (core.Geometry, error) {
	var (
		g   geom.Geometry
		err error
	)
	switch r.ext.Format {
	case FormatWKT:
		g, err = r.wkt()
	case FormatGeoJSON:
		g, err = r.geojson()
	case FormatPoint:
		g, err = r.point()
	case FormatCorners:
		g, err = r.corners()
	default:
		err = fmt.Errorf("unknown geometry format %q", r.ext.Format)
	}
	if err != nil {
		return core.None(), err
	}
	return core.Some(g), nil
}

// SetGeometry implements core.MetadataRecord. None stores a nil attribute.
func (r *Record) SetGeometry(g core.Geometry) error {
	v, ok := g.Get()
	if !ok {
		r.data[r.ext.Output] = nil
		return nil
	}
	switch r.ext.OutputFormat {
	case FormatGeoJSON:
		b, err := geometry.FormatGeoJSON(v)
		if err != nil {
			return err
		}
		r.data[r.ext.Output] = string(b)
	default:
		s, err := geometry.FormatWKT(v)
		if err != nil {
			return err
		}
		r.data[r.ext.Output] = s
	}
	return nil
}

func (r *Record) wkt() (geom.Geometry, error) {
	switch v := r.data[r.ext.Field].(type) {
	case nil:
		return nil, nil
	case string:
		return geometry.ParseWKT(v)
	case []byte:
		return geometry.ParseWKT(string(v))
	default:
		return nil, fmt.Errorf("attribute %s: expected WKT text, got %T", r.ext.Field, v)
	}
}

func (r *Record) geojson() (geom.Geometry, error) {
	var data []byte
	switch v := r.data[r.ext.Field].(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		data = []byte(v)
	case []byte:
		data = v
	case map[string]interface{}:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", r.ext.Field, err)
		}
		data = b
	default:
		return nil, fmt.Errorf("attribute %s: expected GeoJSON, got %T", r.ext.Field, v)
	}
	return geometry.ParseGeoJSON(data)
}

func (r *Record) point() (geom.Geometry, error) {
	lon, lat, ok, err := r.lonLat(r.ext.Lat, r.ext.Lon)
	if err != nil || !ok {
		return nil, err
	}
	return geom.Point{lon, lat}, nil
}

// corners builds a closed ring from the frame corners; a frame missing any corner has no footprint.
func (r *Record) corners() (geom.Geometry, error) {
	ring := make([][2]float64, 0, len(r.ext.Corners)+1)
	for _, c := range r.ext.Corners {
		lon, lat, ok, err := r.lonLat(c.Lat, c.Lon)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		ring = append(ring, [2]float64{lon, lat})
	}
	return geom.Polygon{geometry.CloseRing(ring)}, nil
}

func (r *Record) lonLat(latField, lonField string) (lon, lat float64, ok bool, err error) {
	latV, latOK := r.number(latField)
	lonV, lonOK := r.number(lonField)
	if latOK != nil {
		return 0, 0, false, latOK
	}
	if lonOK != nil {
		return 0, 0, false, lonOK
	}
	if latV == nil || lonV == nil {
		return 0, 0, false, nil
	}
	return *lonV, *latV, true, nil
}

// number reads a numeric attribute. Missing and nil attributes return (nil, nil).
func (r *Record) number(field string) (*float64, error) {
	v, exists := r.data[field]
	if !exists || v == nil {
		return nil, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return nil, fmt.Errorf("attribute %s: %w", field, err)
	}
	return &f, nil
}

// toFloat64 converts the numeric types readers produce to float64.
func toFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("cannot convert %T to float64", value)
	}
}
