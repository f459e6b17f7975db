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

package gofootprint

import (
	"github.com/aaronlmathis/gofootprint/core"
)

// Package gofootprint derives spatial footprints from streaming sensor-telemetry records.
//
// Each record's candidate geometry runs through a Chain of geometry operators configured per
// product type. An operator passes the geometry through, transforms it, annotates the
// per-record Context, or rejects the footprint by returning core.None(). The Enricher drives
// chains over a record stream.
//
// This file re-exports the core contracts so most callers only import the root package.

// Geometry is an optional go-spatial geometry value. See core.Geometry.
type Geometry = core.Geometry

// Context is the per-invocation state threaded through a chain. See core.Context.
type Context = core.Context

// Operator is a single chain stage. See core.Operator.
type Operator = core.Operator

// OperatorFunc adapts a function to the Operator interface.
type OperatorFunc = core.OperatorFunc

// OperatorFailure reports a stage that could not process its input.
type OperatorFailure = core.OperatorFailure

// Record is a telemetry or metadata record.
type Record = core.Record

// Diagnostic is a note an operator attached to a Context.
type Diagnostic = core.Diagnostic

// ErrorStrategy defines how record failures are handled by the enricher.
type ErrorStrategy = core.ErrorStrategy

const (
	// FailFast stops processing on the first failed record.
	FailFast = core.FailFast
	// SkipErrors drops failed records and continues.
	SkipErrors = core.SkipErrors
	// CollectErrors drops failed records, keeping their errors for inspection.
	CollectErrors = core.CollectErrors
)

// Some wraps a geometry value.
var Some = core.Some

// None returns the absent geometry.
var None = core.None

// NewContext creates a per-invocation Context.
var NewContext = core.NewContext
