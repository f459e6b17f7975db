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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aaronlmathis/gofootprint/core"
)

// Open returns a sink for location: "-" is stdout, s3://bucket/key an object uploaded when
// the sink is closed, anything else a file that is created or truncated. format is "csv" or
// "jsonl"; empty infers it from the extension, defaulting to JSON lines.
func Open(ctx context.Context, location, format string) (core.DataSink, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(location)), ".")
	}
	if strings.HasPrefix(location, "s3://") {
		bucket, key, err := parseS3URL(location)
		if err != nil {
			return nil, err
		}
		return NewS3Writer(ctx, bucket, key, format)
	}

	var w io.WriteCloser = nopCloser{os.Stdout}
	if location != "-" && location != "" {
		f, err := os.Create(location)
		if err != nil {
			return nil, err
		}
		w = f
	}
	return newSink(w, format)
}

// newSink wraps w in the writer for format, closing w if format is not supported.
func newSink(w io.WriteCloser, format string) (core.DataSink, error) {
	switch format {
	case "csv":
		cw, err := NewCSVWriter(w)
		if err != nil {
			w.Close()
			return nil, err
		}
		return cw, nil
	case "", "json", "jsonl", "ndjson":
		return NewJSONWriter(w), nil
	default:
		w.Close()
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

func supportedFormat(format string) bool {
	switch format {
	case "csv", "", "json", "jsonl", "ndjson":
		return true
	}
	return false
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
