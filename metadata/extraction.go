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

// Package metadata adapts telemetry records to the core.MetadataRecord interface.
//
// A Record reads the raw geometry of a core.Record according to an Extraction (a WKT or
// GeoJSON attribute, a sensor latitude/longitude pair, or the four corners of a video frame)
// and writes the chain's result back as WKT or GeoJSON.
package metadata

import (
	"errors"
	"fmt"
)

// Format identifies how a geometry is stored in a record.
type Format string

const (
	FormatWKT     Format = "wkt"
	FormatGeoJSON Format = "geojson"
	FormatPoint   Format = "point"
	FormatCorners Format = "corners"
)

// Default attribute names, following the frame-centre and corner fields of FMV telemetry.
const (
	DefaultGeometryField = "location"
	DefaultLatField      = "sensor_latitude"
	DefaultLonField      = "sensor_longitude"
)

// Corner names the latitude and longitude attributes of one frame corner.
type Corner struct {
	Lat string
	Lon string
}

// DefaultCorners returns the attribute names corner_lat_1/corner_lon_1 .. corner_lat_4/corner_lon_4.
func DefaultCorners() []Corner {
	corners := make([]Corner, 4)
	for i := range corners {
		corners[i] = Corner{
			Lat: fmt.Sprintf("corner_lat_%d", i+1),
			Lon: fmt.Sprintf("corner_lon_%d", i+1),
		}
	}
	return corners
}

// Extraction describes where a product's geometry lives in its records.
type Extraction struct {
	Format       Format
	Field        string   // source attribute for FormatWKT and FormatGeoJSON
	Output       string   // attribute the final geometry is written to
	OutputFormat Format   // FormatWKT or FormatGeoJSON
	Lat          string   // FormatPoint latitude attribute
	Lon          string   // FormatPoint longitude attribute
	Corners      []Corner // FormatCorners attributes, in ring order
}

// ExtractionOption allows functional customization of an Extraction.
type ExtractionOption func(*Extraction)

// WithField sets the source attribute.
func WithField(field string) ExtractionOption {
	return func(e *Extraction) { e.Field = field }
}

// WithOutput sets the write-back attribute.
func WithOutput(field string) ExtractionOption {
	return func(e *Extraction) { e.Output = field }
}

// WithOutputFormat sets the write-back encoding.
func WithOutputFormat(f Format) ExtractionOption {
	return func(e *Extraction) { e.OutputFormat = f }
}

// WithPointFields sets the latitude and longitude attributes.
func WithPointFields(lat, lon string) ExtractionOption {
	return func(e *Extraction) {
		e.Lat = lat
		e.Lon = lon
	}
}

// WithCorners sets the corner attributes.
func WithCorners(corners ...Corner) ExtractionOption {
	return func(e *Extraction) {
		e.Corners = append([]Corner(nil), corners...)
	}
}

// NewExtraction creates an Extraction for format with defaults filled in.
func NewExtraction(format Format, options ...ExtractionOption) Extraction {
	e := Extraction{Format: format}
	for _, opt := range options {
		opt(&e)
	}
	return e.withDefaults()
}

func (e Extraction) withDefaults() Extraction {
	if e.Format == "" {
		e.Format = FormatWKT
	}
	if e.Field == "" && (e.Format == FormatWKT || e.Format == FormatGeoJSON) {
		e.Field = DefaultGeometryField
	}
	if e.Output == "" {
		e.Output = e.Field
		if e.Output == "" {
			e.Output = DefaultGeometryField
		}
	}
	if e.OutputFormat == "" {
		e.OutputFormat = FormatWKT
	}
	if e.Format == FormatPoint {
		if e.Lat == "" {
			e.Lat = DefaultLatField
		}
		if e.Lon == "" {
			e.Lon = DefaultLonField
		}
	}
	if e.Format == FormatCorners && len(e.Corners) == 0 {
		e.Corners = DefaultCorners()
	}
	return e
}

// Validate checks the extraction settings.
func (e Extraction) Validate() error {
	switch e.Format {
	case FormatWKT, FormatGeoJSON:
		if e.Field == "" {
			return fmt.Errorf("format %s requires a field", e.Format)
		}
	case FormatPoint:
		if e.Lat == "" || e.Lon == "" {
			return errors.New("format point requires lat and lon fields")
		}
	case FormatCorners:
		if len(e.Corners) < 3 {
			return fmt.Errorf("format corners requires at least 3 corners, got %d", len(e.Corners))
		}
		for i, c := range e.Corners {
			if c.Lat == "" || c.Lon == "" {
				return fmt.Errorf("corner %d requires lat and lon fields", i)
			}
		}
	default:
		return fmt.Errorf("unknown geometry format %q", e.Format)
	}
	switch e.OutputFormat {
	case FormatWKT, FormatGeoJSON:
	default:
		return fmt.Errorf("unsupported output format %q", e.OutputFormat)
	}
	if e.Output == "" {
		return errors.New("output field is required")
	}
	return nil
}
