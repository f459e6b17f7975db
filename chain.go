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

package gofootprint

import (
	"errors"
	"fmt"

	"github.com/aaronlmathis/gofootprint/core"
)

// ErrNilContext is returned by Chain.Apply when no Context is supplied.
var ErrNilContext = errors.New("chain requires a context")

// ChainBuilder provides a fluent API for constructing operator chains.
// Use NewChain() to create a new builder, then add stages with Then and ThenNamed.
//
//	chain, err := gofootprint.NewChain().
//	    Then(operators.NewNonEmptyFilter()).
//	    Then(subsampler).
//	    Build()
type ChainBuilder struct {
	name   string
	stages []stage
	err    error
}

type stage struct {
	name string
	op   core.Operator
}

// NewChain creates a new ChainBuilder.
func NewChain() *ChainBuilder {
	return &ChainBuilder{stages: make([]stage, 0)}
}

// Named sets the chain's name, usually the product type it serves.
func (cb *ChainBuilder) Named(name string) *ChainBuilder {
	cb.name = name
	return cb
}

// Then appends op as the next stage. The stage is named after op when it implements
// core.Named, and after its position otherwise.
func (cb *ChainBuilder) Then(op core.Operator) *ChainBuilder {
	name := fmt.Sprintf("stage-%d", len(cb.stages))
	if n, ok := op.(core.Named); ok && n.Name() != "" {
		name = n.Name()
	}
	return cb.ThenNamed(name, op)
}

// ThenNamed appends op as the next stage under the given name.
func (cb *ChainBuilder) ThenNamed(name string, op core.Operator) *ChainBuilder {
	if op == nil {
		if cb.err == nil {
			cb.err = fmt.Errorf("stage %d (%s): operator is nil", len(cb.stages), name)
		}
		return cb
	}
	cb.stages = append(cb.stages, stage{name: name, op: op})
	return cb
}

// ThenFunc appends a function as the next stage.
func (cb *ChainBuilder) ThenFunc(name string, fn func(g core.Geometry, ctx *core.Context) (core.Geometry, error)) *ChainBuilder {
	if fn == nil {
		return cb.ThenNamed(name, nil)
	}
	return cb.ThenNamed(name, core.OperatorFunc(fn))
}

// Build validates and returns an immutable Chain.
// The builder may be reused afterwards without affecting the returned chain.
func (cb *ChainBuilder) Build() (*Chain, error) {
	if cb.err != nil {
		return nil, cb.err
	}
	stages := make([]stage, len(cb.stages))
	copy(stages, cb.stages)
	return &Chain{name: cb.name, stages: stages}, nil
}

// Chain is an ordered, immutable sequence of operators.
//
// A Chain holds no per-invocation state and is safe for concurrent use by any number of
// goroutines, each supplying its own Context. A Chain is itself an Operator, so chains nest.
type Chain struct {
	name   string
	stages []stage
}

// Name returns the chain's name.
func (c *Chain) Name() string {
	return c.name
}

// Len returns the number of stages.
func (c *Chain) Len() int {
	return len(c.stages)
}

// Stages returns the stage names in execution order.
func (c *Chain) Stages() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.name
	}
	return names
}

// Apply runs g through every stage in insertion order.
//
// If a stage returns None the remaining stages are skipped and Apply returns None with a nil
// error. If a stage fails (returns an error or panics) Apply stops and returns a
// *core.OperatorFailure naming that stage. Context mutations made by executed stages, the
// failing one included, are kept in either case.
func (c *Chain) Apply(g core.Geometry, ctx *core.Context) (core.Geometry, error) {
	if ctx == nil {
		return core.None(), ErrNilContext
	}
	outer := ctx.Stage()
	defer ctx.EnterStage(outer)

	current := g
	for i, s := range c.stages {
		ctx.EnterStage(s.name)
		out, err := runStage(i, s, current, ctx)
		if err != nil {
			return core.None(), err
		}
		if out.IsNone() {
			return core.None(), nil
		}
		current = out
	}
	return current, nil
}

// runStage applies a single stage and converts errors and panics into OperatorFailures.
func runStage(index int, s stage, g core.Geometry, ctx *core.Context) (out core.Geometry, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = core.None()
			err = &core.OperatorFailure{
				Stage:  s.name,
				Index:  index,
				Reason: fmt.Sprintf("panic: %v", r),
			}
		}
	}()

	out, err = s.op.Apply(g, ctx)
	if err != nil {
		return core.None(), &core.OperatorFailure{
			Stage:  s.name,
			Index:  index,
			Reason: err.Error(),
			Err:    err,
		}
	}
	return out, nil
}
