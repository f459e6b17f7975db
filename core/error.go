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

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Package core defines the error handling types for the GoFootprint library.
//
// A rejected footprint is not an error: operators signal it with None. The types here cover the
// two failure classes, build-time configuration errors and per-record operator failures, plus
// the caller-side strategies for the latter.

var (
	// ErrUnsupportedGeometry is returned by operators handed a geometry variant they cannot process.
	ErrUnsupportedGeometry = errors.New("unsupported geometry type")
	// ErrNonFinite is returned when a coordinate is NaN or infinite.
	ErrNonFinite = errors.New("non-finite coordinate")
)

// Unsupported returns an ErrUnsupportedGeometry error naming the dynamic type of g.
func Unsupported(g interface{}) error {
	return fmt.Errorf("%w: %T", ErrUnsupportedGeometry, g)
}

// OperatorFailure reports a chain stage that could not process its input.
// Context mutations made before and by the failing stage are kept.
type OperatorFailure struct {
	Stage  string // Name of the offending stage
	Index  int    // Position of the offending stage in the chain
	Reason string // Human readable reason
	Err    error  // Underlying error, if any
}

func (e *OperatorFailure) Error() string {
	return fmt.Sprintf("operator %s (stage %d): %s", e.Stage, e.Index, e.Reason)
}

func (e *OperatorFailure) Unwrap() error {
	return e.Err
}

// ConfigError reports invalid chain configuration detected at build time.
type ConfigError struct {
	Product  string
	Operator string
	Param    string
	Err      error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config")
	if e.Product != "" {
		fmt.Fprintf(&b, " product %q", e.Product)
	}
	if e.Operator != "" {
		fmt.Fprintf(&b, " operator %q", e.Operator)
	}
	if e.Param != "" {
		fmt.Fprintf(&b, " param %q", e.Param)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ErrorHandler defines how record failures are handled during enrichment.
// Custom error handlers can be used to log, collect, or transform errors.
type ErrorHandler interface {
	// HandleError processes an error raised while enriching record.
	// Returning a non-nil error will stop enrichment; returning nil will continue.
	HandleError(ctx context.Context, record Record, err error) error
}

// ErrorStrategy defines how record failures are handled by the enricher.
type ErrorStrategy int

const (
	// FailFast stops processing on the first error encountered.
	FailFast ErrorStrategy = iota
	// SkipErrors continues processing, dropping failed records.
	SkipErrors
	// CollectErrors continues processing, collecting all errors for later inspection.
	CollectErrors
)

// String returns the configuration name of the strategy.
func (s ErrorStrategy) String() string {
	switch s {
	case FailFast:
		return "fail_fast"
	case SkipErrors:
		return "skip"
	case CollectErrors:
		return "collect"
	default:
		return fmt.Sprintf("ErrorStrategy(%d)", int(s))
	}
}

// ParseErrorStrategy converts a configuration name into an ErrorStrategy.
func ParseErrorStrategy(name string) (ErrorStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "fail_fast", "failfast":
		return FailFast, nil
	case "skip", "skip_errors":
		return SkipErrors, nil
	case "collect", "collect_errors":
		return CollectErrors, nil
	default:
		return FailFast, fmt.Errorf("unknown error strategy %q", name)
	}
}

// ErrorHandlerFunc is a function adapter for the ErrorHandler interface.
// Allows ordinary functions to be used as error handlers.
type ErrorHandlerFunc func(ctx context.Context, record Record, err error) error

// HandleError implements the ErrorHandler interface for ErrorHandlerFunc.
func (f ErrorHandlerFunc) HandleError(ctx context.Context, record Record, err error) error {
	return f(ctx, record, err)
}
