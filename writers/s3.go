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
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	s3manager "github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/aaronlmathis/gofootprint/core"
)

// S3WriterError provides structured error information for S3 uploads.
type S3WriterError struct {
	Op  string
	Key string
	Err error
}

func (e *S3WriterError) Error() string {
	return fmt.Sprintf("s3 writer %s s3://%s: %v", e.Op, e.Key, e.Err)
}

func (e *S3WriterError) Unwrap() error {
	return e.Err
}

// S3Uploader is the subset of the S3 upload manager used by the S3 sink.
type S3Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

// S3WriterOptions configures an S3 sink.
type S3WriterOptions struct {
	Region      string
	ContentType string
	Uploader    S3Uploader
}

// WriterOptionS3 allows functional customization of the S3 sink.
type WriterOptionS3 func(*S3WriterOptions)

// WithS3Region sets the region used when no uploader is supplied.
func WithS3Region(region string) WriterOptionS3 {
	return func(o *S3WriterOptions) { o.Region = region }
}

// WithS3ContentType sets the content type of the uploaded object.
func WithS3ContentType(contentType string) WriterOptionS3 {
	return func(o *S3WriterOptions) { o.ContentType = contentType }
}

// WithS3Uploader supplies the uploader, mainly for tests.
func WithS3Uploader(u S3Uploader) WriterOptionS3 {
	return func(o *S3WriterOptions) { o.Uploader = u }
}

// s3Object buffers everything written to it and uploads it as one object on Close.
type s3Object struct {
	ctx         context.Context
	buf         bytes.Buffer
	uploader    S3Uploader
	bucket      string
	key         string
	contentType string
	closed      bool
}

func (o *s3Object) Write(p []byte) (int, error) { return o.buf.Write(p) }

func (o *s3Object) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true
	input := &s3.PutObjectInput{
		Bucket: &o.bucket,
		Key:    &o.key,
		Body:   bytes.NewReader(o.buf.Bytes()),
	}
	if o.contentType != "" {
		input.ContentType = &o.contentType
	}
	if _, err := o.uploader.Upload(o.ctx, input); err != nil {
		return &S3WriterError{Op: "upload", Key: o.bucket + "/" + o.key, Err: err}
	}
	return nil
}

// NewS3Writer returns a sink that encodes records as format ("csv" or "jsonl") and uploads
// the result to bucket/key when the sink is closed. Nothing reaches S3 before Close.
func NewS3Writer(ctx context.Context, bucket, key, format string, options ...WriterOptionS3) (core.DataSink, error) {
	opts := &S3WriterOptions{}
	for _, opt := range options {
		opt(opts)
	}
	if bucket == "" || key == "" {
		return nil, &S3WriterError{Op: "open", Key: bucket + "/" + key, Err: fmt.Errorf("bucket and key are required")}
	}
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(path.Ext(key)), ".")
	}
	if !supportedFormat(format) {
		return nil, &S3WriterError{Op: "open", Key: bucket + "/" + key, Err: fmt.Errorf("unsupported output format %q", format)}
	}
	if opts.ContentType == "" {
		opts.ContentType = contentType(format)
	}
	if opts.Uploader == nil {
		var cfgOpts []func(*awsconfig.LoadOptions) error
		if opts.Region != "" {
			cfgOpts = append(cfgOpts, awsconfig.WithRegion(opts.Region))
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx, cfgOpts...)
		if err != nil {
			return nil, &S3WriterError{Op: "config", Key: bucket + "/" + key, Err: err}
		}
		opts.Uploader = s3manager.NewUploader(s3.NewFromConfig(cfg))
	}

	obj := &s3Object{
		ctx:         ctx,
		uploader:    opts.Uploader,
		bucket:      bucket,
		key:         key,
		contentType: opts.ContentType,
	}
	return newSink(obj, format)
}

func contentType(format string) string {
	switch format {
	case "csv":
		return "text/csv"
	default:
		return "application/x-ndjson"
	}
}

// parseS3URL splits s3://bucket/key.
func parseS3URL(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", err
	}
	key = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || key == "" {
		return "", "", fmt.Errorf("s3 location %q needs a bucket and a key", location)
	}
	return u.Host, key, nil
}

var _ io.WriteCloser = (*s3Object)(nil)
