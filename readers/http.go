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
	"mime"
	"net/http"
	"time"

	"github.com/aaronlmathis/gofootprint/core"
)

// HTTPReaderError provides structured error information for HTTP reader operations.
type HTTPReaderError struct {
	Op         string
	StatusCode int
	URL        string
	Err        error
}

func (e *HTTPReaderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("http reader %s [%d] %s: %v", e.Op, e.StatusCode, e.URL, e.Err)
	}
	return fmt.Sprintf("http reader %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *HTTPReaderError) Unwrap() error {
	return e.Err
}

// HTTPReaderOptions configures the HTTP reader.
type HTTPReaderOptions struct {
	Headers map[string]string
	Token   string // bearer token
	Format  Format // overrides the response content type
	Timeout time.Duration
	Client  *http.Client
}

// ReaderOptionHTTP allows functional customization of HTTPReader.
type ReaderOptionHTTP func(*HTTPReaderOptions)

// WithHTTPHeader adds a request header.
func WithHTTPHeader(name, value string) ReaderOptionHTTP {
	return func(o *HTTPReaderOptions) { o.Headers[name] = value }
}

// WithHTTPBearerToken authenticates with a bearer token.
func WithHTTPBearerToken(token string) ReaderOptionHTTP {
	return func(o *HTTPReaderOptions) { o.Token = token }
}

// WithHTTPFormat fixes the response format.
func WithHTTPFormat(f Format) ReaderOptionHTTP {
	return func(o *HTTPReaderOptions) { o.Format = f }
}

// WithHTTPClient uses client for the request.
func WithHTTPClient(client *http.Client) ReaderOptionHTTP {
	return func(o *HTTPReaderOptions) { o.Client = client }
}

// HTTPReader streams the records of a telemetry export served over HTTP.
type HTTPReader struct {
	core.DataSource
	url string
}

// NewHTTPReader issues a GET for url and streams the response body.
// The format comes from the options, the Content-Type header or the URL path, in that order.
func NewHTTPReader(ctx context.Context, url string, options ...ReaderOptionHTTP) (*HTTPReader, error) {
	opts := HTTPReaderOptions{Headers: make(map[string]string)}
	for _, opt := range options {
		opt(&opts)
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &HTTPReaderError{Op: "request", URL: url, Err: err}
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &HTTPReaderError{Op: "request", URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &HTTPReaderError{Op: "response", StatusCode: resp.StatusCode, URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	format := opts.Format
	if format == "" {
		format = formatFromContentType(resp.Header.Get("Content-Type"))
	}
	if format == "" {
		format = FormatFromName(req.URL.Path)
	}
	src, err := NewStreamReader(resp.Body, format)
	if err != nil {
		return nil, &HTTPReaderError{Op: "open", URL: url, Err: err}
	}
	return &HTTPReader{DataSource: src, url: url}, nil
}

func formatFromContentType(ct string) Format {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	switch mt {
	case "text/csv":
		return FormatCSV
	case "application/x-ndjson", "application/jsonl", "application/json":
		return FormatJSONL
	case "application/vnd.apache.parquet", "application/x-parquet":
		return FormatParquet
	default:
		return ""
	}
}
