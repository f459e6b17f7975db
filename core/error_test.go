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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperatorFailure(t *testing.T) {
	cause := fmt.Errorf("%w: ring encloses a pole", ErrUnsupportedGeometry)
	var err error = &OperatorFailure{Stage: "antimeridian", Index: 2, Reason: cause.Error(), Err: cause}

	assert.Equal(t, "operator antimeridian (stage 2): unsupported geometry type: ring encloses a pole", err.Error())
	assert.ErrorIs(t, err, ErrUnsupportedGeometry)

	var failure *OperatorFailure
	require.True(t, errors.As(fmt.Errorf("record 3: %w", err), &failure))
	assert.Equal(t, 2, failure.Index)
}

func TestConfigError(t *testing.T) {
	tests := []struct {
		name string
		err  *ConfigError
		want string
	}{
		{"bare", &ConfigError{Err: errors.New("no products configured")}, "config: no products configured"},
		{"operator", &ConfigError{Product: "fmv", Operator: "subsmaple", Err: errors.New("unknown operator")}, `config product "fmv" operator "subsmaple": unknown operator`},
		{"param", &ConfigError{Operator: "subsample", Param: "n", Err: errors.New("must be >= 1, got 0")}, `config operator "subsample" param "n": must be >= 1, got 0`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.Equal(t, tt.err.Err, errors.Unwrap(tt.err))
		})
	}
}

func TestParseErrorStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    ErrorStrategy
		wantErr bool
	}{
		{"", FailFast, false},
		{"fail_fast", FailFast, false},
		{"Skip", SkipErrors, false},
		{"collect_errors", CollectErrors, false},
		{" collect ", CollectErrors, false},
		{"retry", FailFast, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseErrorStrategy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "skip", SkipErrors.String())
	assert.Equal(t, "ErrorStrategy(9)", ErrorStrategy(9).String())
}

func TestErrorHandlerFunc(t *testing.T) {
	var seen error
	h := ErrorHandlerFunc(func(_ context.Context, _ Record, err error) error {
		seen = err
		return nil
	})
	boom := errors.New("boom")
	assert.NoError(t, h.HandleError(context.Background(), Record{}, boom))
	assert.Equal(t, boom, seen)
}
