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

// Package config loads the declarative pipeline configuration of GoFootprint.
//
// A configuration names, per product type, how the raw geometry is extracted from a record and
// the ordered list of operators (with parameters) its chain is built from. It is only read at
// chain-build time; operator names and parameters are validated by the registry package.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/aaronlmathis/gofootprint/core"
)

// Config is the root of a pipeline configuration file.
type Config struct {
	Runtime  Runtime            `yaml:"runtime"`
	Products map[string]Product `yaml:"products"`
}

// Runtime holds enricher settings.
type Runtime struct {
	Workers        int    `yaml:"workers"`
	ErrorStrategy  string `yaml:"error_strategy"`
	ProductField   string `yaml:"product_field"`
	DefaultProduct string `yaml:"default_product"`
	CarryForward   bool   `yaml:"carry_forward"`
}

// Product configures one product type.
type Product struct {
	Flags     map[string]bool `yaml:"flags"`
	Geometry  Geometry        `yaml:"geometry"`
	Operators []OperatorSpec  `yaml:"operators"`
}

// Geometry configures extraction and write-back of a product's geometry attribute.
type Geometry struct {
	Format       string   `yaml:"format"`        // wkt, geojson, point or corners
	Field        string   `yaml:"field"`         // source attribute for wkt and geojson
	Output       string   `yaml:"output"`        // attribute the result is written to
	OutputFormat string   `yaml:"output_format"` // wkt or geojson
	Lat          string   `yaml:"lat"`           // point latitude attribute
	Lon          string   `yaml:"lon"`           // point longitude attribute
	Corners      []Corner `yaml:"corners"`       // frame corner attributes, in ring order
}

// Corner names the latitude and longitude attributes of one frame corner.
type Corner struct {
	Lat string `yaml:"lat"`
	Lon string `yaml:"lon"`
}

// OperatorSpec names one operator and its parameters.
type OperatorSpec struct {
	Name   string                 `yaml:"name"`
	Params map[string]interface{} `yaml:"params"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML configuration. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the structure of the configuration.
// Operator names and parameters are checked when chains are built.
func (c *Config) Validate() error {
	if len(c.Products) == 0 {
		return &core.ConfigError{Err: errors.New("no products configured")}
	}
	if c.Runtime.Workers < 0 {
		return &core.ConfigError{Param: "runtime.workers", Err: fmt.Errorf("must be >= 0, got %d", c.Runtime.Workers)}
	}
	if _, err := core.ParseErrorStrategy(c.Runtime.ErrorStrategy); err != nil {
		return &core.ConfigError{Param: "runtime.error_strategy", Err: err}
	}
	if c.Runtime.DefaultProduct != "" {
		if _, ok := c.Products[c.Runtime.DefaultProduct]; !ok {
			return &core.ConfigError{
				Param: "runtime.default_product",
				Err:   fmt.Errorf("unknown product %q", c.Runtime.DefaultProduct),
			}
		}
	}
	for _, name := range c.ProductNames() {
		if name == "" {
			return &core.ConfigError{Err: errors.New("product name is empty")}
		}
		for i, op := range c.Products[name].Operators {
			if op.Name == "" {
				return &core.ConfigError{Product: name, Err: fmt.Errorf("operator %d has no name", i)}
			}
		}
	}
	return nil
}

// ProductNames returns the configured product types in sorted order.
func (c *Config) ProductNames() []string {
	names := make([]string, 0, len(c.Products))
	for name := range c.Products {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrorStrategy returns the parsed runtime error strategy.
func (c *Config) ErrorStrategy() core.ErrorStrategy {
	s, _ := core.ParseErrorStrategy(c.Runtime.ErrorStrategy)
	return s
}
