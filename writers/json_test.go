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
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronlmathis/gofootprint/core"
)

// Mock writer for testing
type mockWriteCloser struct {
	*strings.Builder
	closed    bool
	failWrite bool
	mu        sync.Mutex
}

func (m *mockWriteCloser) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite {
		return 0, io.ErrUnexpectedEOF
	}
	return m.Builder.Write(p)
}

func (m *mockWriteCloser) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockWriteCloser) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Builder.String()
}

func newMockWriteCloser() *mockWriteCloser {
	return &mockWriteCloser{Builder: &strings.Builder{}}
}

func TestJSONWriter_WritesLines(t *testing.T) {
	mock := newMockWriteCloser()
	writer := NewJSONWriter(mock)
	ctx := context.Background()

	require.NoError(t, writer.Write(ctx, core.Record{"frame": 1, "location": "POINT (10 20)"}))
	require.NoError(t, writer.Write(ctx, core.Record{"frame": 2, "location": nil}))

	// buffered until flush
	assert.Empty(t, mock.String())
	require.NoError(t, writer.Close())
	assert.True(t, mock.closed)
	assert.Equal(t, int64(2), writer.RecordsWritten())

	lines := strings.Split(strings.TrimSpace(mock.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "POINT (10 20)", first["location"])
	assert.Contains(t, lines[1], `"location":null`)
}

func TestJSONWriter_NoHTMLEscaping(t *testing.T) {
	mock := newMockWriteCloser()
	writer := NewJSONWriter(mock)

	require.NoError(t, writer.Write(context.Background(), core.Record{"note": "a<b"}))
	require.NoError(t, writer.Flush())
	assert.Contains(t, mock.String(), `"a<b"`)
}

func TestJSONWriter_EncodeError(t *testing.T) {
	writer := NewJSONWriter(newMockWriteCloser())

	err := writer.Write(context.Background(), core.Record{"bad": make(chan int)})
	require.Error(t, err)
	var jerr *JSONWriterError
	require.ErrorAs(t, err, &jerr)
	assert.Equal(t, "encode", jerr.Op)
}

func TestJSONWriter_FlushError(t *testing.T) {
	mock := newMockWriteCloser()
	mock.failWrite = true
	writer := NewJSONWriter(mock)

	require.NoError(t, writer.Write(context.Background(), core.Record{"frame": 1}))
	err := writer.Flush()
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
