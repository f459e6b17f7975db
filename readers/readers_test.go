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
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	arrowmem "github.com/apache/arrow/go/v12/arrow/memory"
	"github.com/apache/arrow/go/v12/parquet"
	"github.com/apache/arrow/go/v12/parquet/pqarrow"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aaronlmathis/gofootprint/core"
)

func readAll(t *testing.T, src core.DataSource) []core.Record {
	t.Helper()
	var out []core.Record
	for {
		rec, err := src.Read(context.Background())
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
	require.NoError(t, src.Close())
	return out
}

const frameCSV = `frame_id,sensor_latitude,sensor_longitude,location,platform
0001,45.5,-122.25,"POINT (-122.25 45.5)",uav-7
0002,,-122.26,,uav-7
`

func TestCSVReader(t *testing.T) {
	r, err := NewCSVReader(io.NopCloser(strings.NewReader(frameCSV)), WithCSVStringColumns("frame_id"))
	require.NoError(t, err)

	recs := readAll(t, r)
	require.Len(t, recs, 2)

	assert.Equal(t, "0001", recs[0]["frame_id"])
	assert.Equal(t, 45.5, recs[0]["sensor_latitude"])
	assert.Equal(t, "POINT (-122.25 45.5)", recs[0]["location"])
	assert.Nil(t, recs[1]["sensor_latitude"])
	assert.Nil(t, recs[1]["location"])
	assert.Equal(t, int64(2), r.Stats().RecordsRead)
	assert.Equal(t, int64(1), r.Stats().EmptyCells["location"])
}

func TestCSVReader_NoHeaders(t *testing.T) {
	r, err := NewCSVReader(io.NopCloser(strings.NewReader("1;2\n")), WithCSVHasHeaders(false), WithCSVComma(';'))
	require.NoError(t, err)

	recs := readAll(t, r)
	require.Len(t, recs, 1)
	assert.Equal(t, core.Record{"col_0": 1, "col_1": 2}, recs[0])
}

func TestCSVReader_Cancelled(t *testing.T) {
	r, err := NewCSVReader(io.NopCloser(strings.NewReader(frameCSV)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Read(ctx)
	var cerr *CSVReaderError
	require.ErrorAs(t, err, &cerr)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestJSONReader(t *testing.T) {
	in := `{"frame":1,"location":{"type":"Point","coordinates":[10,20]}}

{"frame":2,"location":null}
not json
{"frame":3}
`
	r := NewJSONReader(io.NopCloser(strings.NewReader(in)))
	ctx := context.Background()

	rec, err := r.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rec["frame"])
	assert.IsType(t, map[string]interface{}{}, rec["location"])

	rec, err = r.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec["location"])

	_, err = r.Read(ctx)
	var jerr *JSONReaderError
	require.ErrorAs(t, err, &jerr)
	assert.Equal(t, 4, jerr.Line)

	rec, err = r.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3.0, rec["frame"])

	_, err = r.Read(ctx)
	assert.Equal(t, io.EOF, err)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"csv": FormatCSV, ".CSV": FormatCSV, "ndjson": FormatJSONL, "parquet": FormatParquet,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)

	assert.Equal(t, FormatCSV, FormatFromName("2024/sortie-1.csv"))
	assert.Equal(t, FormatJSONL, FormatFromName("frames"))
}

func writeParquet(t *testing.T) []byte {
	t.Helper()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "frame", Type: arrow.PrimitiveTypes.Int64},
		{Name: "sensor_latitude", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
		{Name: "location", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	b := array.NewRecordBuilder(arrowmem.NewGoAllocator(), schema)
	defer b.Release()
	b.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2, 3}, nil)
	b.Field(1).(*array.Float64Builder).AppendValues([]float64{45.5, 0, 46}, []bool{true, false, true})
	b.Field(2).(*array.StringBuilder).AppendValues([]string{"POINT (1 2)", "", "POINT (3 4)"}, []bool{true, false, true})
	rec := b.NewRecord()
	defer rec.Release()

	var buf bytes.Buffer
	w, err := pqarrow.NewFileWriter(schema, &buf, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestParquetReader(t *testing.T) {
	data := writeParquet(t)

	r, err := NewParquetReaderFrom(bytes.NewReader(data), nil, WithParquetBatchSize(2))
	require.NoError(t, err)
	assert.Len(t, r.Schema().Fields(), 3)

	recs := readAll(t, r)
	require.Len(t, recs, 3)
	assert.Equal(t, int64(1), recs[0]["frame"])
	assert.Equal(t, 45.5, recs[0]["sensor_latitude"])
	assert.Equal(t, "POINT (1 2)", recs[0]["location"])
	assert.Nil(t, recs[1]["sensor_latitude"])
	assert.Nil(t, recs[1]["location"])
	assert.Equal(t, int64(3), r.Stats().RecordsRead)
	assert.Equal(t, int64(1), r.Stats().NullCounts["location"])
	assert.Equal(t, int64(1), r.Stats().NullCounts["sensor_latitude"])
}

func TestParquetReader_Projection(t *testing.T) {
	data := writeParquet(t)

	r, err := NewParquetReaderFrom(bytes.NewReader(data), nil, WithParquetColumns("location"))
	require.NoError(t, err)
	recs := readAll(t, r)
	require.Len(t, recs, 3)
	assert.Len(t, recs[0], 1)

	_, err = NewParquetReaderFrom(bytes.NewReader(data), nil, WithParquetColumns("missing"))
	var perr *ParquetReaderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "column_projection", perr.Op)
}

func TestOpen_LocalFiles(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "frames.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(frameCSV), 0o644))
	pqPath := filepath.Join(dir, "frames.parquet")
	require.NoError(t, os.WriteFile(pqPath, writeParquet(t), 0o644))

	src, err := Open(context.Background(), csvPath, "")
	require.NoError(t, err)
	assert.Len(t, readAll(t, src), 2)

	src, err = Open(context.Background(), "file://"+pqPath, "")
	require.NoError(t, err)
	assert.Len(t, readAll(t, src), 3)

	_, err = Open(context.Background(), filepath.Join(dir, "missing.csv"), "")
	assert.Error(t, err)

	_, err = Open(context.Background(), "ftp://host/frames.csv", "")
	assert.Error(t, err)
}

type fakeS3 struct {
	objects map[string]string
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for key, body := range f.objects {
		if !strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			continue
		}
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key), Size: aws.Int64(int64(len(body)))})
	}
	return out, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.objects[aws.ToString(in.Key)]))}, nil
}

func TestS3Reader(t *testing.T) {
	client := &fakeS3{objects: map[string]string{
		"sortie-1/b.jsonl": `{"frame":3}` + "\n",
		"sortie-1/a.csv":   "frame\n1\n2\n",
		"sortie-1/":        "",
		"sortie-2/c.jsonl": `{"frame":9}` + "\n",
	}}

	r, err := NewS3Reader(context.Background(),
		WithS3Bucket("telemetry"),
		WithS3Prefix("sortie-1/"),
		WithS3IncludeKey(true),
		WithS3Client(client),
	)
	require.NoError(t, err)
	require.Len(t, r.Objects(), 2)

	recs := readAll(t, r)
	require.Len(t, recs, 3)
	assert.Equal(t, 1, recs[0]["frame"])
	assert.Equal(t, "sortie-1/a.csv", recs[0]["_s3_key"])
	assert.Equal(t, 3.0, recs[2]["frame"])
	assert.Equal(t, "sortie-1/b.jsonl", recs[2]["_s3_key"])
}

func TestS3Reader_RequiresBucket(t *testing.T) {
	_, err := NewS3Reader(context.Background(), WithS3Client(&fakeS3{}))
	var serr *S3ReaderError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "validate", serr.Op)
}

func TestConvertValues(t *testing.T) {
	assert.Equal(t, 45.25, convertPostgresValue([]byte("45.25"), "NUMERIC"))
	assert.Equal(t, "POINT (1 2)", convertPostgresValue([]byte("POINT (1 2)"), "TEXT"))
	assert.Equal(t, int64(4), convertPostgresValue(int64(4), "INT8"))

	doc := convertBSONValue(bson.M{"type": "Point", "coordinates": bson.A{10.0, 20.0}})
	assert.Equal(t, map[string]interface{}{"type": "Point", "coordinates": []interface{}{10.0, 20.0}}, doc)
	assert.Nil(t, convertBSONValue(primitive.Null{}))
}
