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
	"net/url"
	"os"
	"strings"

	"github.com/aaronlmathis/gofootprint/core"
)

// Open returns a reader for a location given on the command line:
//
//	frames.csv, ./export.jsonl, /data/sortie.parquet    local files
//	-                                                   JSON lines on stdin
//	s3://bucket/prefix                                  every object under prefix
//	https://host/export.csv                             an HTTP download
//	postgres://user@host/db?query=SELECT...             a PostgreSQL query
//	mongodb://host/db?collection=frames                 a MongoDB collection
//
// format, when non-empty, overrides the format inferred from the name.
func Open(ctx context.Context, location string, format Format) (core.DataSource, error) {
	if location == "-" {
		if format == "" {
			format = FormatJSONL
		}
		return NewStreamReader(os.Stdin, format)
	}

	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return openFile(location, format)
	}

	switch u.Scheme {
	case "file":
		return openFile(u.Path, format)
	case "s3":
		opts := []ReaderOptionS3{
			WithS3Bucket(u.Host),
			WithS3Prefix(strings.TrimPrefix(u.Path, "/")),
			WithS3IncludeKey(true),
		}
		if format != "" {
			opts = append(opts, WithS3Format(format))
		}
		return source(NewS3Reader(ctx, opts...))
	case "http", "https":
		var opts []ReaderOptionHTTP
		if format != "" {
			opts = append(opts, WithHTTPFormat(format))
		}
		return source(NewHTTPReader(ctx, location, opts...))
	case "postgres", "postgresql":
		q := u.Query()
		query := q.Get("query")
		q.Del("query")
		u.RawQuery = q.Encode()
		return source(NewPostgresReader(ctx, WithPostgresDSN(u.String()), WithPostgresQuery(query)))
	case "mongodb", "mongodb+srv":
		q := u.Query()
		coll := q.Get("collection")
		q.Del("collection")
		db := strings.TrimPrefix(u.Path, "/")
		u.RawQuery = q.Encode()
		return source(NewMongoReader(ctx, WithMongoURI(u.String()), WithMongoCollection(db, coll)))
	default:
		return nil, fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
}

func openFile(path string, format Format) (core.DataSource, error) {
	if format == "" {
		format = FormatFromName(path)
	}
	if format == FormatParquet {
		return source(NewParquetReader(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return NewStreamReader(f, format)
}

// source converts a concrete reader result without leaking a typed nil.
func source[T core.DataSource](r T, err error) (core.DataSource, error) {
	if err != nil {
		return nil, err
	}
	return r, nil
}
