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

// Package registry builds operator chains from configuration.
//
// Operators are registered by name together with a Factory that validates the parameters of a
// config.OperatorSpec. Every configuration error (unknown operator, unknown parameter, missing or
// out-of-range value) is reported as a *core.ConfigError when the chain is built, never while
// records are processed.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aaronlmathis/gofootprint"
	"github.com/aaronlmathis/gofootprint/config"
	"github.com/aaronlmathis/gofootprint/core"
	"github.com/aaronlmathis/gofootprint/metadata"
)

var errMissing = errors.New("required parameter is missing")

// Factory creates an operator from validated parameters.
type Factory func(p Params) (core.Operator, error)

// Definition describes a registered operator.
type Definition struct {
	Name        string
	Description string
	Params      []string // accepted parameter names
	Required    []string // parameters that must be set
	Factory     Factory
}

// Registry maps operator names to definitions. It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Default returns a registry holding every operator of the operators package.
func Default() *Registry {
	r := New()
	for _, def := range builtins() {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds def. Registering a name twice is an error.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return errors.New("registry: definition has no name")
	}
	if def.Factory == nil {
		return fmt.Errorf("registry: operator %q has no factory", def.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("registry: operator %q already registered", def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// Names returns the registered operator names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns the registered definitions sorted by name.
func (r *Registry) Definitions() []Definition {
	names := r.Names()
	defs := make([]Definition, 0, len(names))
	for _, name := range names {
		def, _ := r.Lookup(name)
		defs = append(defs, def)
	}
	return defs
}

// Build creates a chain from specs. product only labels errors and the chain.
func (r *Registry) Build(product string, specs []config.OperatorSpec) (*gofootprint.Chain, error) {
	b := gofootprint.NewChain().Named(product)
	for i, spec := range specs {
		op, err := r.create(spec)
		if err != nil {
			var cfgErr *core.ConfigError
			if errors.As(err, &cfgErr) {
				cfgErr.Product = product
				return nil, cfgErr
			}
			return nil, &core.ConfigError{Product: product, Operator: spec.Name, Err: fmt.Errorf("stage %d: %w", i, err)}
		}
		b.ThenNamed(spec.Name, op)
	}
	chain, err := b.Build()
	if err != nil {
		return nil, &core.ConfigError{Product: product, Err: err}
	}
	return chain, nil
}

func (r *Registry) create(spec config.OperatorSpec) (core.Operator, error) {
	def, ok := r.Lookup(spec.Name)
	if !ok {
		return nil, &core.ConfigError{Operator: spec.Name, Err: errors.New("unknown operator")}
	}
	params := Params(spec.Params)
	allowed := make(map[string]bool, len(def.Params))
	for _, name := range def.Params {
		allowed[name] = true
	}
	for _, key := range params.Keys() {
		if !allowed[key] {
			return nil, &core.ConfigError{Operator: spec.Name, Param: key, Err: errors.New("unknown parameter")}
		}
	}
	for _, key := range def.Required {
		if !params.Has(key) {
			return nil, &core.ConfigError{Operator: spec.Name, Param: key, Err: errMissing}
		}
	}
	op, err := def.Factory(params)
	if err != nil {
		var cfgErr *core.ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.Operator = spec.Name
			return nil, cfgErr
		}
		return nil, &core.ConfigError{Operator: spec.Name, Err: err}
	}
	if op == nil {
		return nil, &core.ConfigError{Operator: spec.Name, Err: errors.New("factory returned no operator")}
	}
	return op, nil
}

// BuildProduct builds the chain and extraction settings of one configured product.
func (r *Registry) BuildProduct(cfg *config.Config, name string) (*gofootprint.Product, error) {
	if cfg == nil {
		return nil, &core.ConfigError{Product: name, Err: errors.New("no configuration")}
	}
	pc, ok := cfg.Products[name]
	if !ok {
		return nil, &core.ConfigError{Product: name, Err: errors.New("unknown product")}
	}
	ext := Extraction(pc.Geometry)
	if err := ext.Validate(); err != nil {
		return nil, &core.ConfigError{Product: name, Param: "geometry", Err: err}
	}
	chain, err := r.Build(name, pc.Operators)
	if err != nil {
		return nil, err
	}
	flags := make(map[string]bool, len(pc.Flags))
	for k, v := range pc.Flags {
		flags[k] = v
	}
	return &gofootprint.Product{Name: name, Chain: chain, Extraction: ext, Flags: flags}, nil
}

// BuildAll builds every configured product, failing on the first invalid one.
func (r *Registry) BuildAll(cfg *config.Config) (map[string]*gofootprint.Product, error) {
	if cfg == nil {
		return nil, &core.ConfigError{Err: errors.New("no configuration")}
	}
	products := make(map[string]*gofootprint.Product, len(cfg.Products))
	for _, name := range cfg.ProductNames() {
		p, err := r.BuildProduct(cfg, name)
		if err != nil {
			return nil, err
		}
		products[name] = p
	}
	return products, nil
}

// Extraction converts configured geometry settings to metadata extraction settings.
func Extraction(g config.Geometry) metadata.Extraction {
	opts := []metadata.ExtractionOption{
		metadata.WithField(g.Field),
		metadata.WithOutput(g.Output),
		metadata.WithOutputFormat(metadata.Format(g.OutputFormat)),
		metadata.WithPointFields(g.Lat, g.Lon),
	}
	if len(g.Corners) > 0 {
		corners := make([]metadata.Corner, len(g.Corners))
		for i, c := range g.Corners {
			corners[i] = metadata.Corner{Lat: c.Lat, Lon: c.Lon}
		}
		opts = append(opts, metadata.WithCorners(corners...))
	}
	return metadata.NewExtraction(metadata.Format(g.Format), opts...)
}
