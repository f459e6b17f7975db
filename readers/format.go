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
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aaronlmathis/gofootprint/core"
)

// Format names a record encoding understood by the stream readers.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSONL   Format = "jsonl"
	FormatParquet Format = "parquet"
)

// ParseFormat accepts a format name or a file extension with or without the dot.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "csv":
		return FormatCSV, nil
	case "jsonl", "ndjson", "json":
		return FormatJSONL, nil
	case "parquet", "pq":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("unsupported record format %q", s)
	}
}

// FormatFromName infers the format of a file or object key. Compressed suffixes are not
// understood; unknown extensions default to JSON lines.
func FormatFromName(name string) Format {
	if f, err := ParseFormat(path.Ext(name)); err == nil {
		return f
	}
	return FormatJSONL
}

// NewStreamReader wraps body in the reader for format. Parquet needs random access and is
// buffered in memory.
func NewStreamReader(body io.ReadCloser, format Format) (core.DataSource, error) {
	switch format {
	case FormatCSV:
		r, err := NewCSVReader(body)
		if err != nil {
			body.Close()
			return nil, err
		}
		return r, nil
	case FormatJSONL:
		return NewJSONReader(body), nil
	case FormatParquet:
		data, err := io.ReadAll(body)
		if cerr := body.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, &ParquetReaderError{Op: "buffer", Err: err}
		}
		r, err := NewParquetReaderFrom(bytes.NewReader(data), nil)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		body.Close()
		return nil, fmt.Errorf("unsupported record format %q", format)
	}
}
