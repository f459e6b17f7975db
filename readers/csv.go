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

// Package readers provides core.DataSource implementations for telemetry records.
//
// Each reader yields one core.Record per telemetry row or document and returns io.EOF when
// the source is exhausted. Readers are not safe for concurrent use; the enricher reads from a
// single goroutine.
package readers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aaronlmathis/gofootprint/core"
)

// CSVReaderError wraps structured error information for the CSV reader.
type CSVReaderError struct {
	Op   string
	Line int
	Err  error
}

func (e *CSVReaderError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("csv reader %s (line %d): %v", e.Op, e.Line, e.Err)
	}
	return fmt.Sprintf("csv reader %s: %v", e.Op, e.Err)
}

func (e *CSVReaderError) Unwrap() error {
	return e.Err
}

// CSVReaderStats holds statistics about the CSV reader.
type CSVReaderStats struct {
	RecordsRead  int64
	ReadDuration time.Duration
	EmptyCells   map[string]int64
}

// CSVReaderOptions configures the CSV reader.
type CSVReaderOptions struct {
	Comma         rune
	Comment       rune
	HasHeaders    bool
	TrimSpace     bool
	StringColumns map[string]bool // columns kept as text even when they look numeric
}

// ReaderOptionCSV allows functional customization of CSVReader.
type ReaderOptionCSV func(*CSVReaderOptions)

// WithCSVComma sets the field delimiter.
func WithCSVComma(r rune) ReaderOptionCSV {
	return func(o *CSVReaderOptions) { o.Comma = r }
}

// WithCSVComment sets the comment character.
func WithCSVComment(r rune) ReaderOptionCSV {
	return func(o *CSVReaderOptions) { o.Comment = r }
}

// WithCSVHasHeaders sets whether the first row names the columns.
func WithCSVHasHeaders(hasHeaders bool) ReaderOptionCSV {
	return func(o *CSVReaderOptions) { o.HasHeaders = hasHeaders }
}

// WithCSVTrimSpace trims leading space of fields.
func WithCSVTrimSpace(trim bool) ReaderOptionCSV {
	return func(o *CSVReaderOptions) { o.TrimSpace = trim }
}

// WithCSVStringColumns keeps the named columns as strings.
func WithCSVStringColumns(columns ...string) ReaderOptionCSV {
	return func(o *CSVReaderOptions) {
		for _, c := range columns {
			o.StringColumns[c] = true
		}
	}
}

// CSVReader reads telemetry rows from CSV. Numeric cells become int or float64 so that
// latitude, longitude and corner columns can be used directly; empty cells become nil.
type CSVReader struct {
	reader  *csv.Reader
	headers []string
	closer  io.Closer
	stats   CSVReaderStats
	opts    CSVReaderOptions
}

// NewCSVReader creates a CSVReader with default or overridden options.
func NewCSVReader(r io.ReadCloser, options ...ReaderOptionCSV) (*CSVReader, error) {
	opts := CSVReaderOptions{
		Comma:         ',',
		HasHeaders:    true,
		TrimSpace:     true,
		StringColumns: make(map[string]bool),
	}
	for _, opt := range options {
		opt(&opts)
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.Comma
	cr.Comment = opts.Comment
	cr.TrimLeadingSpace = opts.TrimSpace
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	reader := &CSVReader{
		reader: cr,
		closer: r,
		opts:   opts,
		stats:  CSVReaderStats{EmptyCells: make(map[string]int64)},
	}

	if opts.HasHeaders {
		headers, err := cr.Read()
		if err != nil {
			return nil, &CSVReaderError{Op: "read_headers", Err: err}
		}
		reader.headers = make([]string, len(headers))
		for i, h := range headers {
			reader.headers[i] = strings.TrimSpace(h)
		}
	}
	return reader, nil
}

// Read implements the core.DataSource interface.
func (c *CSVReader) Read(ctx context.Context) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, &CSVReaderError{Op: "read", Err: err}
	}
	start := time.Now()

	row, err := c.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		line, _ := c.reader.FieldPos(0)
		return nil, &CSVReaderError{Op: "read_record", Line: line, Err: err}
	}

	rec := make(core.Record, len(row))
	for i, cell := range row {
		key := c.column(i)
		cell = strings.TrimSpace(cell)
		switch {
		case cell == "":
			c.stats.EmptyCells[key]++
			rec[key] = nil
		case c.opts.StringColumns[key]:
			rec[key] = cell
		default:
			rec[key] = inferValue(cell)
		}
	}

	c.stats.RecordsRead++
	c.stats.ReadDuration += time.Since(start)
	return rec, nil
}

func (c *CSVReader) column(i int) string {
	if i < len(c.headers) && c.headers[i] != "" {
		return c.headers[i]
	}
	return "col_" + strconv.Itoa(i)
}

// Close implements the core.DataSource interface.
func (c *CSVReader) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// Stats returns CSV reader statistics.
func (c *CSVReader) Stats() CSVReaderStats {
	return c.stats
}

// inferValue returns an int, float64 or bool for cells that parse as one, else the text.
func inferValue(cell string) interface{} {
	if i, err := strconv.Atoi(cell); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(cell); err == nil {
		return b
	}
	return cell
}
