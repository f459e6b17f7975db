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

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet/file"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"
	"github.com/spf13/cobra"

	"github.com/aaronlmathis/gofootprint/readers"
	"github.com/aaronlmathis/gofootprint/writers"
)

var inspectFlags struct {
	format string
	limit  int
}

var inspectCmd = &cobra.Command{
	Use:   "inspect SOURCE",
	Short: "Show the layout of a record source and its first records",
	Long: `Inspect prints the first records of a source as JSON lines, which helps when
writing the geometry section of a product configuration. Parquet files also get their
row groups, physical columns and Arrow schema listed.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.StringVar(&inspectFlags.format, "format", "", "Source format: csv, jsonl or parquet (default: from name)")
	f.IntVarP(&inspectFlags.limit, "limit", "n", 5, "Number of records to print")
}

func runInspect(cmd *cobra.Command, args []string) error {
	location := args[0]
	format := readers.FormatFromName(location)
	if inspectFlags.format != "" {
		var err error
		if format, err = readers.ParseFormat(inspectFlags.format); err != nil {
			return err
		}
	}
	if format == readers.FormatParquet && !strings.Contains(location, "://") {
		if err := describeParquet(cmd.OutOrStdout(), location); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	src, err := readers.Open(ctx, location, format)
	if err != nil {
		return err
	}
	defer src.Close()
	sink, err := writers.Open(ctx, "-", "jsonl")
	if err != nil {
		return err
	}
	defer sink.Close()

	for i := 0; i < inspectFlags.limit; i++ {
		record, err := src.Read(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		if err := sink.Write(ctx, record); err != nil {
			return err
		}
	}
	return sink.Flush()
}

func describeParquet(w io.Writer, path string) error {
	reader, err := file.OpenParquetFile(path, false)
	if err != nil {
		return fmt.Errorf("open parquet file: %w", err)
	}
	defer reader.Close()

	fmt.Fprintf(w, "rows: %d\nrow groups: %d\n", reader.NumRows(), reader.NumRowGroups())
	for i := 0; i < reader.NumRowGroups(); i++ {
		fmt.Fprintf(w, "  row group %d: %d rows\n", i, reader.RowGroup(i).NumRows())
	}

	schema := reader.MetaData().Schema
	fmt.Fprintf(w, "columns: %d\n", schema.NumColumns())
	for i := 0; i < schema.NumColumns(); i++ {
		col := schema.Column(i)
		fmt.Fprintf(w, "  %s (%s)\n", col.Name(), col.PhysicalType())
	}

	arrowReader, err := pqarrow.NewFileReader(reader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return fmt.Errorf("arrow reader: %w", err)
	}
	arrowSchema, err := arrowReader.Schema()
	if err != nil {
		return fmt.Errorf("arrow schema: %w", err)
	}
	fmt.Fprintf(w, "arrow fields: %d\n", len(arrowSchema.Fields()))
	for _, field := range arrowSchema.Fields() {
		fmt.Fprintf(w, "  %s: %s\n", field.Name, field.Type)
	}
	return nil
}
