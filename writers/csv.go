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

package writers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/aaronlmathis/gofootprint/core"
)

// CSVWriterError wraps structured error information for the CSV writer.
type CSVWriterError struct {
	Op  string
	Err error
}

func (e *CSVWriterError) Error() string {
	return fmt.Sprintf("csv writer %s: %v", e.Op, e.Err)
}

func (e *CSVWriterError) Unwrap() error {
	return e.Err
}

// CSVWriterOptions configures the CSV writer.
type CSVWriterOptions struct {
	Comma       rune
	WriteHeader bool
	Headers     []string // column order; taken from the first record when empty
}

// WriterOptionCSV allows functional customization of CSVWriter.
type WriterOptionCSV func(*CSVWriterOptions)

// WithCSVHeaders fixes the columns and their order.
func WithCSVHeaders(headers ...string) WriterOptionCSV {
	return func(o *CSVWriterOptions) { o.Headers = append([]string(nil), headers...) }
}

// WithCSVDelimiter sets the field delimiter.
func WithCSVDelimiter(r rune) WriterOptionCSV {
	return func(o *CSVWriterOptions) { o.Comma = r }
}

// WithCSVWriteHeader sets whether a header row is written.
func WithCSVWriteHeader(write bool) WriterOptionCSV {
	return func(o *CSVWriterOptions) { o.WriteHeader = write }
}

// CSVWriter writes records as CSV rows. Columns not known when the header was written are
// dropped; nil values become empty cells and nested values (GeoJSON maps) are JSON encoded.
type CSVWriter struct {
	writer      *csv.Writer
	closer      io.Closer
	headers     []string
	writeHeader bool
	wroteHeader bool
	row         []string
	written     int64
}

// NewCSVWriter creates a CSV writer.
func NewCSVWriter(w io.WriteCloser, options ...WriterOptionCSV) (*CSVWriter, error) {
	opts := CSVWriterOptions{Comma: ',', WriteHeader: true}
	for _, opt := range options {
		opt(&opts)
	}
	cw := csv.NewWriter(w)
	cw.Comma = opts.Comma
	if err := cw.Error(); err != nil {
		return nil, &CSVWriterError{Op: "create", Err: err}
	}
	return &CSVWriter{
		writer:      cw,
		closer:      w,
		headers:     opts.Headers,
		writeHeader: opts.WriteHeader,
	}, nil
}

// Write implements the core.DataSink interface.
func (c *CSVWriter) Write(_ context.Context, record core.Record) error {
	if !c.wroteHeader {
		if len(c.headers) == 0 {
			for key := range record {
				c.headers = append(c.headers, key)
			}
			sort.Strings(c.headers)
		}
		if c.writeHeader {
			if err := c.writer.Write(c.headers); err != nil {
				return &CSVWriterError{Op: "write_header", Err: err}
			}
		}
		c.row = make([]string, len(c.headers))
		c.wroteHeader = true
	}

	for i, key := range c.headers {
		cell, err := formatCell(record[key])
		if err != nil {
			return &CSVWriterError{Op: "format", Err: fmt.Errorf("column %s: %w", key, err)}
		}
		c.row[i] = cell
	}
	if err := c.writer.Write(c.row); err != nil {
		return &CSVWriterError{Op: "write_row", Err: err}
	}
	c.written++
	return nil
}

// Flush implements the core.DataSink interface.
func (c *CSVWriter) Flush() error {
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return &CSVWriterError{Op: "flush", Err: err}
	}
	return nil
}

// Close implements the core.DataSink interface.
func (c *CSVWriter) Close() error {
	if err := c.Flush(); err != nil {
		return err
	}
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}

// RecordsWritten returns the number of rows written, excluding the header.
func (c *CSVWriter) RecordsWritten() int64 {
	return c.written
}

func formatCell(v interface{}) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), nil
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano), nil
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return fmt.Sprint(val), nil
	}
}
