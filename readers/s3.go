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
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/aaronlmathis/gofootprint/core"
)

// S3ReaderError provides structured error information for S3 reader operations.
type S3ReaderError struct {
	Op  string
	Key string
	Err error
}

func (e *S3ReaderError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("s3 reader %s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("s3 reader %s: %v", e.Op, e.Err)
}

func (e *S3ReaderError) Unwrap() error {
	return e.Err
}

// S3API is the subset of the S3 client used by S3Reader.
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3ReaderOptions configures the S3 reader.
type S3ReaderOptions struct {
	Bucket         string
	Prefix         string
	Suffix         string
	Region         string
	Profile        string
	Credentials    aws.Credentials
	EndpointURL    string // S3-compatible endpoint
	ForcePathStyle bool
	IncludeKey     bool   // add the object key as _s3_key to every record
	Format         Format // overrides inference from the key
	Client         S3API  // overrides the client built from the options
}

// ReaderOptionS3 allows functional customization of S3Reader.
type ReaderOptionS3 func(*S3ReaderOptions)

// WithS3Bucket sets the bucket.
func WithS3Bucket(bucket string) ReaderOptionS3 {
	return func(o *S3ReaderOptions) { o.Bucket = bucket }
}

// WithS3Prefix limits the listing to keys with prefix.
func WithS3Prefix(prefix string) ReaderOptionS3 {
	return func(o *S3ReaderOptions) { o.Prefix = prefix }
}

// WithS3Suffix limits the listing to keys with suffix.
func WithS3Suffix(suffix string) ReaderOptionS3 {
	return func(o *S3ReaderOptions) { o.Suffix = suffix }
}

// WithS3Region sets the AWS region.
func WithS3Region(region string) ReaderOptionS3 {
	return func(o *S3ReaderOptions) { o.Region = region }
}

// WithS3Profile sets the shared config profile.
func WithS3Profile(profile string) ReaderOptionS3 {
	return func(o *S3ReaderOptions) { o.Profile = profile }
}

// WithS3Credentials sets static credentials.
func WithS3Credentials(creds aws.Credentials) ReaderOptionS3 {
	return func(o *S3ReaderOptions) { o.Credentials = creds }
}

// WithS3Endpoint sets a custom endpoint, using path-style addressing.
func WithS3Endpoint(endpoint string) ReaderOptionS3 {
	return func(o *S3ReaderOptions) {
		o.EndpointURL = endpoint
		o.ForcePathStyle = true
	}
}

// WithS3IncludeKey adds the source object key to every record.
func WithS3IncludeKey(include bool) ReaderOptionS3 {
	return func(o *S3ReaderOptions) { o.IncludeKey = include }
}

// WithS3Format fixes the record format of every object.
func WithS3Format(f Format) ReaderOptionS3 {
	return func(o *S3ReaderOptions) { o.Format = f }
}

// WithS3Client uses client instead of building one from the AWS configuration.
func WithS3Client(client S3API) ReaderOptionS3 {
	return func(o *S3ReaderOptions) { o.Client = client }
}

// S3Object describes a listed object.
type S3Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// S3Reader reads the records of every matching object under a prefix, in key order.
// Telemetry exports are typically split into one object per mission or sortie.
type S3Reader struct {
	client  S3API
	opts    S3ReaderOptions
	objects []S3Object
	next    int
	current core.DataSource
	key     string
}

// NewS3Reader lists the matching objects. Objects are fetched lazily by Read.
func NewS3Reader(ctx context.Context, options ...ReaderOptionS3) (*S3Reader, error) {
	var opts S3ReaderOptions
	for _, opt := range options {
		opt(&opts)
	}
	if opts.Bucket == "" {
		return nil, &S3ReaderError{Op: "validate", Err: errors.New("bucket is required")}
	}

	client := opts.Client
	if client == nil {
		cfg, err := loadAWSConfig(ctx, opts)
		if err != nil {
			return nil, &S3ReaderError{Op: "aws_config", Err: err}
		}
		client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			if opts.EndpointURL != "" {
				o.BaseEndpoint = aws.String(opts.EndpointURL)
			}
			o.UsePathStyle = opts.ForcePathStyle
		})
	}

	r := &S3Reader{client: client, opts: opts}
	if err := r.list(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func loadAWSConfig(ctx context.Context, opts S3ReaderOptions) (aws.Config, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Credentials.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				opts.Credentials.AccessKeyID,
				opts.Credentials.SecretAccessKey,
				opts.Credentials.SessionToken,
			),
		))
	}
	return config.LoadDefaultConfig(ctx, loadOpts...)
}

func (s *S3Reader) list(ctx context.Context) error {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(s.opts.Bucket)}
	if s.opts.Prefix != "" {
		input.Prefix = aws.String(s.opts.Prefix)
	}
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return &S3ReaderError{Op: "list_objects", Err: err}
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, "/") {
				continue
			}
			if s.opts.Suffix != "" && !strings.HasSuffix(key, s.opts.Suffix) {
				continue
			}
			s.objects = append(s.objects, S3Object{
				Key:          key,
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	sort.Slice(s.objects, func(i, j int) bool { return s.objects[i].Key < s.objects[j].Key })
	return nil
}

// Objects returns the listed objects.
func (s *S3Reader) Objects() []S3Object {
	return append([]S3Object(nil), s.objects...)
}

// Read implements the core.DataSource interface.
func (s *S3Reader) Read(ctx context.Context) (core.Record, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, &S3ReaderError{Op: "read", Err: err}
		}
		if s.current == nil {
			if s.next >= len(s.objects) {
				return nil, io.EOF
			}
			if err := s.open(ctx, s.objects[s.next]); err != nil {
				s.next++
				return nil, err
			}
			s.next++
		}

		rec, err := s.current.Read(ctx)
		if err == io.EOF {
			cerr := s.current.Close()
			s.current = nil
			if cerr != nil {
				return nil, &S3ReaderError{Op: "close_object", Key: s.key, Err: cerr}
			}
			continue
		}
		if err != nil {
			return nil, &S3ReaderError{Op: "read_record", Key: s.key, Err: err}
		}
		if s.opts.IncludeKey {
			rec["_s3_key"] = s.key
		}
		return rec, nil
	}
}

func (s *S3Reader) open(ctx context.Context, obj S3Object) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(obj.Key),
	})
	if err != nil {
		return &S3ReaderError{Op: "get_object", Key: obj.Key, Err: err}
	}
	format := s.opts.Format
	if format == "" {
		format = FormatFromName(obj.Key)
	}
	src, err := NewStreamReader(out.Body, format)
	if err != nil {
		return &S3ReaderError{Op: "open_object", Key: obj.Key, Err: err}
	}
	s.current = src
	s.key = obj.Key
	return nil
}

// Close implements the core.DataSource interface.
func (s *S3Reader) Close() error {
	if s.current == nil {
		return nil
	}
	err := s.current.Close()
	s.current = nil
	return err
}
