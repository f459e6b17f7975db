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

package readers

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/apache/arrow/go/arrow/memory"
	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/file"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"

	"github.com/aaronlmathis/gofootprint/core"
)

// ParquetReaderError provides structured error information for parquet reader operations.
type ParquetReaderError struct {
	Op  string
	Err error
}

func (e *ParquetReaderError) Error() string {
	return fmt.Sprintf("parquet reader %s: %v", e.Op, e.Err)
}

func (e *ParquetReaderError) Unwrap() error {
	return e.Err
}

// ParquetReaderStats holds statistics about the Parquet reader.
type ParquetReaderStats struct {
	RecordsRead  int64
	BatchesRead  int64
	ReadDuration time.Duration
	NullCounts   map[string]int64
}

// ParquetReaderOptions configures the Parquet reader.
type ParquetReaderOptions struct {
	BatchSize int64
	Columns   []string // optional projection, e.g. the frame corner columns
}

// ReaderOptionParquet allows functional customization of ParquetReader.
type ReaderOptionParquet func(*ParquetReaderOptions)

// WithParquetBatchSize sets the rows per Arrow batch.
func WithParquetBatchSize(size int64) ReaderOptionParquet {
	return func(o *ParquetReaderOptions) { o.BatchSize = size }
}

// WithParquetColumns projects the named columns.
func WithParquetColumns(columns ...string) ReaderOptionParquet {
	return func(o *ParquetReaderOptions) {
		o.Columns = append([]string(nil), columns...)
	}
}

// ParquetReader reads telemetry rows from a Parquet file through Arrow record batches.
type ParquetReader struct {
	closer   io.Closer
	records  pqarrow.RecordReader
	batch    arrow.Record
	batchIdx int
	schema   *arrow.Schema
	stats    ParquetReaderStats
}

// NewParquetReader opens the Parquet file at filename.
func NewParquetReader(filename string, options ...ReaderOptionParquet) (*ParquetReader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, &ParquetReaderError{Op: "open_file", Err: err}
	}
	r, err := NewParquetReaderFrom(f, f, options...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// NewParquetReaderFrom reads Parquet data from src. closer, if non-nil, is closed by Close.
func NewParquetReaderFrom(src parquet.ReaderAtSeeker, closer io.Closer, options ...ReaderOptionParquet) (*ParquetReader, error) {
	opts := ParquetReaderOptions{BatchSize: 1024}
	for _, opt := range options {
		opt(&opts)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1024
	}

	pf, err := file.NewParquetReader(src)
	if err != nil {
		return nil, &ParquetReaderError{Op: "create_reader", Err: err}
	}

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{BatchSize: opts.BatchSize}, memory.NewGoAllocator())
	if err != nil {
		return nil, &ParquetReaderError{Op: "create_arrow_reader", Err: err}
	}

	schema, err := fr.Schema()
	if err != nil {
		return nil, &ParquetReaderError{Op: "schema", Err: err}
	}

	var cols []int
	for _, name := range opts.Columns {
		idx := schema.FieldIndices(name)
		if len(idx) == 0 {
			return nil, &ParquetReaderError{Op: "column_projection", Err: fmt.Errorf("column %q not found in schema", name)}
		}
		cols = append(cols, idx[0])
	}

	rr, err := fr.GetRecordReader(context.Background(), cols, nil)
	if err != nil {
		return nil, &ParquetReaderError{Op: "create_record_reader", Err: err}
	}

	return &ParquetReader{
		closer:  closer,
		records: rr,
		schema:  schema,
		stats:   ParquetReaderStats{NullCounts: make(map[string]int64)},
	}, nil
}

// Read implements the core.DataSource interface.
func (p *ParquetReader) Read(ctx context.Context) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ParquetReaderError{Op: "read", Err: err}
	}
	start := time.Now()
	defer func() { p.stats.ReadDuration += time.Since(start) }()

	for p.batch == nil || p.batchIdx >= int(p.batch.NumRows()) {
		if err := p.nextBatch(); err != nil {
			return nil, err
		}
	}

	rec := make(core.Record, int(p.batch.NumCols()))
	sch := p.batch.Schema()
	for i := 0; i < int(p.batch.NumCols()); i++ {
		name := sch.Field(i).Name
		rec[name] = p.value(p.batch.Column(i), p.batchIdx, name)
	}
	p.batchIdx++
	p.stats.RecordsRead++
	return rec, nil
}

// nextBatch advances to the next Arrow batch. Batches are owned by the record reader and
// stay valid until the following call.
func (p *ParquetReader) nextBatch() error {
	p.batch = nil
	rec, err := p.records.Read()
	if err == io.EOF || (err == nil && rec == nil) {
		return io.EOF
	}
	if err != nil {
		return &ParquetReaderError{Op: "load_batch", Err: err}
	}
	p.batch = rec
	p.batchIdx = 0
	p.stats.BatchesRead++
	return nil
}

func (p *ParquetReader) value(col arrow.Array, row int, name string) interface{} {
	if col.IsNull(row) {
		p.stats.NullCounts[name]++
		return nil
	}
	switch arr := col.(type) {
	case *array.Boolean:
		return arr.Value(row)
	case *array.Int32:
		return arr.Value(row)
	case *array.Int64:
		return arr.Value(row)
	case *array.Float32:
		return arr.Value(row)
	case *array.Float64:
		return arr.Value(row)
	case *array.String:
		return arr.Value(row)
	case *array.Binary:
		return append([]byte(nil), arr.Value(row)...)
	case *array.Timestamp:
		unit := arr.DataType().(*arrow.TimestampType).Unit
		return arr.Value(row).ToTime(unit)
	default:
		return fmt.Sprintf("%v", col.GetOneForMarshal(row))
	}
}

// Close releases Arrow buffers and closes the underlying source.
func (p *ParquetReader) Close() error {
	p.batch = nil
	if p.records != nil {
		p.records.Release()
		p.records = nil
	}
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

// Schema returns the Arrow schema of the file.
func (p *ParquetReader) Schema() *arrow.Schema {
	return p.schema
}

// Stats returns Parquet reader statistics.
func (p *ParquetReader) Stats() ParquetReaderStats {
	return p.stats
}
