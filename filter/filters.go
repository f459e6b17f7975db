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

// Package filter provides record filters for the enricher.
//
// Filters run before geometry extraction and decide whether a record is processed at all.
// Every function returns a core.Filter for EnricherBuilder.Where.
package filter

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aaronlmathis/gofootprint/core"
)

// Present includes records where field is set to a non-nil, non-blank value.
func Present(field string) core.Filter {
	return core.FilterFunc(func(_ context.Context, record core.Record) (bool, error) {
		value, exists := record[field]
		if !exists || value == nil {
			return false, nil
		}
		if str, ok := value.(string); ok && strings.TrimSpace(str) == "" {
			return false, nil
		}
		return true, nil
	})
}

// Equals includes records where the string form of field equals want.
func Equals(field, want string) core.Filter {
	return core.FilterFunc(func(_ context.Context, record core.Record) (bool, error) {
		value, exists := record[field]
		if !exists || value == nil {
			return false, nil
		}
		return fmt.Sprint(value) == want, nil
	})
}

// In includes records where the string form of field is one of values.
func In(field string, values ...string) core.Filter {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return core.FilterFunc(func(_ context.Context, record core.Record) (bool, error) {
		value, exists := record[field]
		if !exists || value == nil {
			return false, nil
		}
		return set[fmt.Sprint(value)], nil
	})
}

// Between includes records where the numeric field lies within [min, max].
// Non-numeric values are excluded.
func Between(field string, min, max float64) core.Filter {
	return core.FilterFunc(func(_ context.Context, record core.Record) (bool, error) {
		num, ok := number(record[field])
		if !ok {
			return false, nil
		}
		return num >= min && num <= max, nil
	})
}

// WithinBounds includes records whose latitude and longitude attributes lie inside the box.
// Records lacking either coordinate are excluded.
func WithinBounds(latField, lonField string, minLon, minLat, maxLon, maxLat float64) core.Filter {
	return core.FilterFunc(func(_ context.Context, record core.Record) (bool, error) {
		lat, ok := number(record[latField])
		if !ok {
			return false, nil
		}
		lon, ok := number(record[lonField])
		if !ok {
			return false, nil
		}
		return lon >= minLon && lon <= maxLon && lat >= minLat && lat <= maxLat, nil
	})
}

// And requires all filters to pass.
func And(filters ...core.Filter) core.Filter {
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		for _, f := range filters {
			include, err := f.ShouldInclude(ctx, record)
			if err != nil || !include {
				return false, err
			}
		}
		return true, nil
	})
}

// Or requires at least one filter to pass.
func Or(filters ...core.Filter) core.Filter {
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		for _, f := range filters {
			include, err := f.ShouldInclude(ctx, record)
			if err != nil {
				return false, err
			}
			if include {
				return true, nil
			}
		}
		return false, nil
	})
}

// Not negates filter.
func Not(filter core.Filter) core.Filter {
	return core.FilterFunc(func(ctx context.Context, record core.Record) (bool, error) {
		include, err := filter.ShouldInclude(ctx, record)
		if err != nil {
			return false, err
		}
		return !include, nil
	})
}

// Parse builds a filter from a command-line expression:
//
//	field=value      Equals
//	field!=value     Not(Equals)
//	field=a|b|c      In
//	field            Present
func Parse(expr string) (core.Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty filter expression")
	}
	if field, value, ok := strings.Cut(expr, "!="); ok {
		field = strings.TrimSpace(field)
		if field == "" {
			return nil, fmt.Errorf("filter %q: missing field", expr)
		}
		return Not(Equals(field, strings.TrimSpace(value))), nil
	}
	if field, value, ok := strings.Cut(expr, "="); ok {
		field = strings.TrimSpace(field)
		if field == "" {
			return nil, fmt.Errorf("filter %q: missing field", expr)
		}
		if strings.Contains(value, "|") {
			parts := strings.Split(value, "|")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return In(field, parts...), nil
		}
		return Equals(field, strings.TrimSpace(value)), nil
	}
	return Present(expr), nil
}

func number(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
