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
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aaronlmathis/gofootprint/core"
)

// MongoReaderError provides structured error information for MongoDB reader operations.
type MongoReaderError struct {
	Op         string
	Collection string
	Err        error
}

func (e *MongoReaderError) Error() string {
	if e.Collection != "" {
		return fmt.Sprintf("mongo reader %s [%s]: %v", e.Op, e.Collection, e.Err)
	}
	return fmt.Sprintf("mongo reader %s: %v", e.Op, e.Err)
}

func (e *MongoReaderError) Unwrap() error {
	return e.Err
}

// MongoReaderOptions configures the MongoDB reader.
type MongoReaderOptions struct {
	URI        string
	Database   string
	Collection string
	Filter     bson.M   // find filter, e.g. a $geoIntersects query on the sensor position
	Sort       bson.D   // find sort, e.g. by frame timestamp
	Pipeline   []bson.M // aggregation pipeline; replaces find when set
	BatchSize  int32
	Timeout    time.Duration // bounds connect and the initial query
}

// ReaderOptionMongo allows functional customization of MongoReader.
type ReaderOptionMongo func(*MongoReaderOptions)

// WithMongoURI sets the connection URI.
func WithMongoURI(uri string) ReaderOptionMongo {
	return func(o *MongoReaderOptions) { o.URI = uri }
}

// WithMongoCollection sets the database and collection.
func WithMongoCollection(database, collection string) ReaderOptionMongo {
	return func(o *MongoReaderOptions) {
		o.Database = database
		o.Collection = collection
	}
}

// WithMongoFilter sets the find filter.
func WithMongoFilter(filter bson.M) ReaderOptionMongo {
	return func(o *MongoReaderOptions) { o.Filter = filter }
}

// WithMongoSort sets the find sort order.
func WithMongoSort(sort bson.D) ReaderOptionMongo {
	return func(o *MongoReaderOptions) { o.Sort = sort }
}

// WithMongoPipeline reads the result of an aggregation pipeline.
func WithMongoPipeline(pipeline []bson.M) ReaderOptionMongo {
	return func(o *MongoReaderOptions) { o.Pipeline = pipeline }
}

// WithMongoBatchSize sets the cursor batch size.
func WithMongoBatchSize(n int32) ReaderOptionMongo {
	return func(o *MongoReaderOptions) { o.BatchSize = n }
}

// WithMongoTimeout bounds connecting and the initial query.
func WithMongoTimeout(d time.Duration) ReaderOptionMongo {
	return func(o *MongoReaderOptions) { o.Timeout = d }
}

// MongoReader streams telemetry documents from a MongoDB collection.
// Embedded GeoJSON geometries are returned as plain maps.
type MongoReader struct {
	client *mongo.Client
	cursor *mongo.Cursor
	coll   string
	read   int64
}

// NewMongoReader connects and opens the cursor.
func NewMongoReader(ctx context.Context, options ...ReaderOptionMongo) (*MongoReader, error) {
	opts := MongoReaderOptions{
		URI:       "mongodb://localhost:27017",
		BatchSize: 500,
		Timeout:   30 * time.Second,
	}
	for _, opt := range options {
		opt(&opts)
	}
	if opts.Database == "" || opts.Collection == "" {
		return nil, &MongoReaderError{Op: "validate", Err: errors.New("database and collection are required")}
	}

	setupCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client, err := mongo.Connect(setupCtx, mongoClientOptions(opts))
	if err != nil {
		return nil, &MongoReaderError{Op: "connect", Err: err}
	}
	if err := client.Ping(setupCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, &MongoReaderError{Op: "ping", Err: err}
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	var cursor *mongo.Cursor
	if len(opts.Pipeline) > 0 {
		cursor, err = coll.Aggregate(ctx, opts.Pipeline, mongoAggregateOptions(opts))
	} else {
		filter := opts.Filter
		if filter == nil {
			filter = bson.M{}
		}
		cursor, err = coll.Find(ctx, filter, mongoFindOptions(opts))
	}
	if err != nil {
		client.Disconnect(context.Background())
		return nil, &MongoReaderError{Op: "query", Collection: opts.Collection, Err: err}
	}

	return &MongoReader{client: client, cursor: cursor, coll: opts.Collection}, nil
}

func mongoClientOptions(opts MongoReaderOptions) *options.ClientOptions {
	return options.Client().
		ApplyURI(opts.URI).
		SetRetryReads(true).
		SetConnectTimeout(opts.Timeout)
}

func mongoFindOptions(opts MongoReaderOptions) *options.FindOptions {
	find := options.Find().SetBatchSize(opts.BatchSize)
	if len(opts.Sort) > 0 {
		find.SetSort(opts.Sort)
	}
	return find
}

func mongoAggregateOptions(opts MongoReaderOptions) *options.AggregateOptions {
	return options.Aggregate().SetBatchSize(opts.BatchSize).SetAllowDiskUse(true)
}

// Read implements the core.DataSource interface.
func (mr *MongoReader) Read(ctx context.Context) (core.Record, error) {
	if mr.cursor == nil {
		return nil, io.EOF
	}
	if !mr.cursor.Next(ctx) {
		if err := mr.cursor.Err(); err != nil {
			return nil, &MongoReaderError{Op: "read", Collection: mr.coll, Err: err}
		}
		return nil, io.EOF
	}
	var doc bson.M
	if err := mr.cursor.Decode(&doc); err != nil {
		return nil, &MongoReaderError{Op: "decode", Collection: mr.coll, Err: err}
	}
	rec := make(core.Record, len(doc))
	for k, v := range doc {
		rec[k] = convertBSONValue(v)
	}
	mr.read++
	return rec, nil
}

// RecordsRead returns the number of documents read so far.
func (mr *MongoReader) RecordsRead() int64 {
	return mr.read
}

// Close implements the core.DataSource interface.
func (mr *MongoReader) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	if mr.cursor != nil {
		if err := mr.cursor.Close(ctx); err != nil {
			errs = append(errs, err)
		}
		mr.cursor = nil
	}
	if mr.client != nil {
		if err := mr.client.Disconnect(ctx); err != nil {
			errs = append(errs, err)
		}
		mr.client = nil
	}
	if len(errs) > 0 {
		return &MongoReaderError{Op: "close", Collection: mr.coll, Err: errors.Join(errs...)}
	}
	return nil
}

// convertBSONValue maps BSON values onto plain Go values so that embedded GeoJSON can be
// re-encoded as JSON.
func convertBSONValue(value interface{}) interface{} {
	switch v := value.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case primitive.DateTime:
		return v.Time().UTC()
	case primitive.Decimal128:
		if f, err := strconv.ParseFloat(v.String(), 64); err == nil {
			return f
		}
		return v.String()
	case primitive.Binary:
		return v.Data
	case primitive.Null, primitive.Undefined:
		return nil
	case bson.M:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[k] = convertBSONValue(val)
		}
		return out
	case bson.D:
		out := make(map[string]interface{}, len(v))
		for _, e := range v {
			out[e.Key] = convertBSONValue(e.Value)
		}
		return out
	case bson.A:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = convertBSONValue(val)
		}
		return out
	default:
		return v
	}
}
