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
	"fmt"

	"github.com/google/uuid"
)

// Diagnostic is one entry of a Context's diagnostics accumulator.
type Diagnostic struct {
	Stage   string // Stage that recorded the entry
	Message string
}

func (d Diagnostic) String() string {
	if d.Stage == "" {
		return d.Message
	}
	return d.Stage + ": " + d.Message
}

// Context is the mutable state threaded through every stage of one chain invocation.
//
// A Context is created for a single record, passed by reference to each stage and discarded
// when the chain returns. It is not safe for concurrent use and must never be shared between
// invocations.
type Context struct {
	id            string
	values        map[string]interface{}
	counters      map[string]int
	flags         map[string]bool
	diagnostics   []Diagnostic
	lastKnownGood Geometry
	record        MetadataRecord
	stage         string
	revision      int
}

// ContextOption allows functional customization of a Context.
type ContextOption func(*Context)

// WithID overrides the generated invocation ID.
func WithID(id string) ContextOption {
	return func(c *Context) { c.id = id }
}

// WithRecord attaches the metadata record being enriched.
func WithRecord(record MetadataRecord) ContextOption {
	return func(c *Context) { c.record = record }
}

// WithFlags seeds configuration toggles.
func WithFlags(flags map[string]bool) ContextOption {
	return func(c *Context) {
		for k, v := range flags {
			c.flags[k] = v
		}
	}
}

// WithLastKnownGood seeds the last-known-good geometry, typically from the previous record
// of the same stream.
func WithLastKnownGood(g Geometry) ContextOption {
	return func(c *Context) { c.lastKnownGood = g }
}

// WithValue seeds a context value.
func WithValue(key string, value interface{}) ContextOption {
	return func(c *Context) { c.values[key] = value }
}

// NewContext creates a Context for a single chain invocation.
func NewContext(options ...ContextOption) *Context {
	c := &Context{
		values:   make(map[string]interface{}),
		counters: make(map[string]int),
		flags:    make(map[string]bool),
	}
	for _, opt := range options {
		opt(c)
	}
	if c.id == "" {
		c.id = uuid.NewString()
	}
	return c
}

// ID returns the invocation ID.
func (c *Context) ID() string { return c.id }

// Value returns a value stored under key.
func (c *Context) Value(key string) (interface{}, bool) {
	v, ok := c.values[key]
	return v, ok
}

// SetValue stores a value under key.
func (c *Context) SetValue(key string, value interface{}) {
	c.values[key] = value
	c.revision++
}

// Incr increments the named counter and returns its new value.
func (c *Context) Incr(key string) int {
	c.counters[key]++
	c.revision++
	return c.counters[key]
}

// Counter returns the current value of the named counter.
func (c *Context) Counter(key string) int {
	return c.counters[key]
}

// Counters returns a copy of all counters.
func (c *Context) Counters() map[string]int {
	out := make(map[string]int, len(c.counters))
	for k, v := range c.counters {
		out[k] = v
	}
	return out
}

// Flag reports whether the named toggle is set.
func (c *Context) Flag(name string) bool {
	return c.flags[name]
}

// SetFlag sets a toggle.
func (c *Context) SetFlag(name string, on bool) {
	c.flags[name] = on
	c.revision++
}

// AddDiagnostic appends a message attributed to the currently executing stage.
func (c *Context) AddDiagnostic(message string) {
	c.diagnostics = append(c.diagnostics, Diagnostic{Stage: c.stage, Message: message})
	c.revision++
}

// Diagnosticf appends a formatted message attributed to the currently executing stage.
func (c *Context) Diagnosticf(format string, args ...interface{}) {
	c.AddDiagnostic(fmt.Sprintf(format, args...))
}

// Diagnostics returns a copy of the accumulated diagnostics.
func (c *Context) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(c.diagnostics))
	copy(out, c.diagnostics)
	return out
}

// LastKnownGood returns the last-known-good geometry, or None.
func (c *Context) LastKnownGood() Geometry {
	return c.lastKnownGood
}

// SetLastKnownGood replaces the last-known-good geometry.
func (c *Context) SetLastKnownGood(g Geometry) {
	c.lastKnownGood = g
	c.revision++
}

// Record returns the metadata record being enriched, or nil.
func (c *Context) Record() MetadataRecord {
	return c.record
}

// Attribute reads an ancillary attribute of the record being enriched.
func (c *Context) Attribute(name string) (interface{}, bool) {
	if c.record == nil {
		return nil, false
	}
	return c.record.Attribute(name)
}

// Stage returns the name of the stage currently executing.
func (c *Context) Stage() string {
	return c.stage
}

// EnterStage marks name as the executing stage. Called by chains before each stage.
func (c *Context) EnterStage(name string) {
	c.stage = name
}

// Revision counts mutations made through the Context API. Entering a stage is not a mutation.
func (c *Context) Revision() int {
	return c.revision
}
