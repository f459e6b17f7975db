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

// Package writers provides core.DataSink implementations for enriched records.
package writers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aaronlmathis/gofootprint/core"
)

// JSONWriterError wraps structured error information for the JSON lines writer.
type JSONWriterError struct {
	Op  string
	Err error
}

func (e *JSONWriterError) Error() string {
	return fmt.Sprintf("json writer %s: %v", e.Op, e.Err)
}

func (e *JSONWriterError) Unwrap() error {
	return e.Err
}

// JSONWriter writes one JSON object per line. Output is buffered until Flush or Close.
type JSONWriter struct {
	buf     *bufio.Writer
	enc     *json.Encoder
	closer  io.Closer
	written int64
}

// NewJSONWriter creates a new JSON lines writer.
func NewJSONWriter(w io.WriteCloser) *JSONWriter {
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &JSONWriter{buf: buf, enc: enc, closer: w}
}

// Write implements the core.DataSink interface.
func (j *JSONWriter) Write(_ context.Context, record core.Record) error {
	if err := j.enc.Encode(record); err != nil {
		return &JSONWriterError{Op: "encode", Err: err}
	}
	j.written++
	return nil
}

// Flush implements the core.DataSink interface.
func (j *JSONWriter) Flush() error {
	if err := j.buf.Flush(); err != nil {
		return &JSONWriterError{Op: "flush", Err: err}
	}
	return nil
}

// Close implements the core.DataSink interface.
func (j *JSONWriter) Close() error {
	if err := j.Flush(); err != nil {
		return err
	}
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}

// RecordsWritten returns the number of records written.
func (j *JSONWriter) RecordsWritten() int64 {
	return j.written
}
