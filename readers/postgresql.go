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
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/aaronlmathis/gofootprint/core"
)

// PostgresReaderError provides structured error information for Postgres reader operations.
type PostgresReaderError struct {
	Op  string
	Err error
}

func (e *PostgresReaderError) Error() string {
	return fmt.Sprintf("postgres reader %s: %v", e.Op, e.Err)
}

func (e *PostgresReaderError) Unwrap() error {
	return e.Err
}

// PostgresReaderOptions configures the Postgres reader.
type PostgresReaderOptions struct {
	DSN             string
	Query           string        // e.g. SELECT frame_id, ST_AsText(footprint) AS location FROM frames
	Params          []interface{} // query parameters
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration // bounds connect and query, not streaming
}

// PostgresReaderOption represents a configuration function for PostgresReaderOptions.
type PostgresReaderOption func(*PostgresReaderOptions)

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) PostgresReaderOption {
	return func(o *PostgresReaderOptions) { o.DSN = dsn }
}

// WithPostgresQuery sets the SQL query and optional parameters.
func WithPostgresQuery(query string, params ...interface{}) PostgresReaderOption {
	return func(o *PostgresReaderOptions) {
		o.Query = query
		o.Params = append([]interface{}(nil), params...)
	}
}

// WithPostgresMaxOpenConns limits the connection pool.
func WithPostgresMaxOpenConns(n int) PostgresReaderOption {
	return func(o *PostgresReaderOptions) { o.MaxOpenConns = n }
}

// WithPostgresQueryTimeout bounds connecting and issuing the query.
func WithPostgresQueryTimeout(d time.Duration) PostgresReaderOption {
	return func(o *PostgresReaderOptions) { o.QueryTimeout = d }
}

func (o PostgresReaderOptions) withDefaults() PostgresReaderOptions {
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = 4
	}
	if o.ConnMaxLifetime <= 0 {
		o.ConnMaxLifetime = 5 * time.Minute
	}
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = 30 * time.Second
	}
	return o
}

func (o PostgresReaderOptions) validate() error {
	if o.DSN == "" {
		return &PostgresReaderError{Op: "validate", Err: errors.New("dsn is required")}
	}
	if o.Query == "" {
		return &PostgresReaderError{Op: "validate", Err: errors.New("query is required")}
	}
	return nil
}

// PostgresReader streams telemetry rows from a PostgreSQL query.
// Geometry columns should be selected as text (ST_AsText or ST_AsGeoJSON).
type PostgresReader struct {
	db      *sql.DB
	rows    *sql.Rows
	columns []string
	types   []string
	values  []interface{}
	scan    []interface{}
	read    int64
}

// NewPostgresReader connects and issues the configured query.
func NewPostgresReader(ctx context.Context, options ...PostgresReaderOption) (*PostgresReader, error) {
	var opts PostgresReaderOptions
	for _, opt := range options {
		opt(&opts)
	}
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", opts.DSN)
	if err != nil {
		return nil, &PostgresReaderError{Op: "connect", Err: err}
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, opts.QueryTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, &PostgresReaderError{Op: "ping", Err: err}
	}

	// The query context must outlive construction because rows stream lazily.
	rows, err := db.QueryContext(ctx, opts.Query, opts.Params...)
	if err != nil {
		db.Close()
		return nil, &PostgresReaderError{Op: "query", Err: err}
	}
	r, err := newPostgresRows(rows)
	if err != nil {
		rows.Close()
		db.Close()
		return nil, err
	}
	r.db = db
	return r, nil
}

func newPostgresRows(rows *sql.Rows) (*PostgresReader, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, &PostgresReaderError{Op: "columns", Err: err}
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, &PostgresReaderError{Op: "column_types", Err: err}
	}
	r := &PostgresReader{
		rows:    rows,
		columns: cols,
		types:   make([]string, len(cols)),
		values:  make([]interface{}, len(cols)),
		scan:    make([]interface{}, len(cols)),
	}
	for i := range cols {
		r.types[i] = colTypes[i].DatabaseTypeName()
		r.scan[i] = &r.values[i]
	}
	return r, nil
}

// Read implements the core.DataSource interface.
func (p *PostgresReader) Read(ctx context.Context) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, &PostgresReaderError{Op: "read", Err: err}
	}
	if p.rows == nil {
		return nil, io.EOF
	}
	if !p.rows.Next() {
		if err := p.rows.Err(); err != nil {
			return nil, &PostgresReaderError{Op: "read", Err: err}
		}
		return nil, io.EOF
	}
	if err := p.rows.Scan(p.scan...); err != nil {
		return nil, &PostgresReaderError{Op: "scan", Err: err}
	}
	rec := make(core.Record, len(p.columns))
	for i, name := range p.columns {
		rec[name] = convertPostgresValue(p.values[i], p.types[i])
	}
	p.read++
	return rec, nil
}

// RecordsRead returns the number of rows read so far.
func (p *PostgresReader) RecordsRead() int64 {
	return p.read
}

// Close implements the core.DataSource interface.
func (p *PostgresReader) Close() error {
	var errs []error
	if p.rows != nil {
		if err := p.rows.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing rows: %w", err))
		}
		p.rows = nil
	}
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing database: %w", err))
		}
		p.db = nil
	}
	if len(errs) > 0 {
		return &PostgresReaderError{Op: "close", Err: errors.Join(errs...)}
	}
	return nil
}

// convertPostgresValue maps lib/pq scan results to record values. NUMERIC arrives as text
// and is parsed so that coordinate columns can be used directly.
func convertPostgresValue(v interface{}, dbType string) interface{} {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	switch dbType {
	case "NUMERIC", "DECIMAL":
		if f, err := strconv.ParseFloat(string(b), 64); err == nil {
			return f
		}
		return string(b)
	case "BYTEA":
		return append([]byte(nil), b...)
	default:
		return string(b)
	}
}
