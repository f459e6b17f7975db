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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/geojson"
	"github.com/go-spatial/geom/encoding/wkt"
)

// ParseWKT decodes a well-known-text geometry. Blank input and EMPTY geometries decode to nil.
func ParseWKT(s string) (geom.Geometry, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	g, err := wkt.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("parse wkt: %w", err)
	}
	g = Normalize(g)
	if IsEmpty(g) {
		return nil, nil
	}
	return g, nil
}

// FormatWKT encodes g as well-known text.
func FormatWKT(g geom.Geometry) (string, error) {
	s, err := wkt.EncodeString(Normalize(g))
	if err != nil {
		return "", fmt.Errorf("format wkt: %w", err)
	}
	return s, nil
}

// ParseGeoJSON decodes a GeoJSON geometry object.
func ParseGeoJSON(data []byte) (geom.Geometry, error) {
	var gj geojson.Geometry
	if err := json.Unmarshal(data, &gj); err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}
	g := Normalize(gj.Geometry)
	if IsEmpty(g) {
		return nil, nil
	}
	return g, nil
}

// FormatGeoJSON encodes g as a GeoJSON geometry object.
func FormatGeoJSON(g geom.Geometry) ([]byte, error) {
	data, err := json.Marshal(geojson.Geometry{Geometry: Normalize(g)})
	if err != nil {
		return nil, fmt.Errorf("format geojson: %w", err)
	}
	return data, nil
}
