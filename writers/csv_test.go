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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/gofootprint/core"
)

func readCSV(t *testing.T, s string) [][]string {
	t.Helper()
	rows, err := csv.NewReader(strings.NewReader(s)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriter_HeaderFromFirstRecord(t *testing.T) {
	mock := newMockWriteCloser()
	writer, err := NewCSVWriter(mock)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, writer.Write(ctx, core.Record{"frame": 1, "location": "POLYGON ((0 0, 1 0, 1 1, 0 0))"}))
	require.NoError(t, writer.Write(ctx, core.Record{"frame": 2, "location": nil, "extra": "dropped"}))
	require.NoError(t, writer.Close())

	rows := readCSV(t, mock.String())
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"frame", "location"}, rows[0])
	assert.Equal(t, []string{"1", "POLYGON ((0 0, 1 0, 1 1, 0 0))"}, rows[1])
	assert.Equal(t, []string{"2", ""}, rows[2])
	assert.Equal(t, int64(2), writer.RecordsWritten())
}

func TestCSVWriter_Options(t *testing.T) {
	mock := newMockWriteCloser()
	writer, err := NewCSVWriter(mock,
		WithCSVHeaders("location", "frame"),
		WithCSVDelimiter(';'),
		WithCSVWriteHeader(false),
	)
	require.NoError(t, err)

	require.NoError(t, writer.Write(context.Background(), core.Record{"frame": 7, "location": "POINT (1 2)"}))
	require.NoError(t, writer.Flush())
	assert.Equal(t, "POINT (1 2);7\n", mock.String())
}

func TestFormatCell(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"nil", nil, ""},
		{"float", 12.5, "12.5"},
		{"whole float", 3.0, "3"},
		{"bytes", []byte("POINT (1 2)"), "POINT (1 2)"},
		{"time", ts, "2024-03-01T12:00:00Z"},
		{"geojson map", map[string]interface{}{"type": "Point"}, `{"type":"Point"}`},
		{"bool", true, "true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatCell(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
