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
	"context"
)

// Package core defines the core interfaces for the GoFootprint library.
//
// GoFootprint derives spatial footprints from streaming sensor-telemetry records by running each
// record's geometry through a chain of geometry operators configured per product type.
//
// This file contains the operator contract and the record-facing interfaces.

// Operator is a single stage of a geometry chain.
//
// Apply receives a geometry (possibly None) and the per-invocation Context and returns the
// geometry handed to the next stage. Returning None rejects the record's footprint; returning
// an error means the stage could not process the input at all. Operators must not mutate the
// input geometry, must be deterministic, and must only have side effects on ctx. Unless an
// operator documents itself as geometry-synthesizing, None in gives None out.
type Operator interface {
	Apply(g Geometry, ctx *Context) (Geometry, error)
}

// Named is implemented by operators that report a stage name.
type Named interface {
	Name() string
}

// MetadataRecord is the handle a chain invocation uses to reach the record it enriches.
type MetadataRecord interface {
	// Geometry extracts the raw input geometry. None means the record carries no geometry.
	Geometry() (Geometry, error)
	// SetGeometry writes the final geometry back. None removes the footprint.
	SetGeometry(g Geometry) error
	// Attribute returns an ancillary attribute such as a frame timestamp.
	Attribute(name string) (interface{}, bool)
}

// DataSource defines the interface for telemetry extraction.
// Implementations stream records from a source (e.g., CSV, Parquet, PostgreSQL).
type DataSource interface {
	// Read returns the next record or io.EOF when no more records are available.
	Read(ctx context.Context) (Record, error)
	// Close releases any resources held by the data source.
	Close() error
}

// DataSink defines the interface for emitting enriched records.
type DataSink interface {
	// Write outputs a single record to the sink.
	Write(ctx context.Context, record Record) error
	// Flush ensures all buffered data is written to the sink.
	Flush() error
	// Close releases any resources held by the data sink.
	Close() error
}

// Filter decides whether a record enters enrichment at all.
type Filter interface {
	// ShouldInclude returns true if the record should be enriched.
	ShouldInclude(ctx context.Context, record Record) (bool, error)
}
