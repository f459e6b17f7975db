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
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aaronlmathis/gofootprint/core"
	"github.com/aaronlmathis/gofootprint/metadata"
	"github.com/aaronlmathis/gofootprint/metrics"
)

// ErrUnknownProduct is returned for records whose product type has no configured chain.
var ErrUnknownProduct = errors.New("unknown product type")

// Product binds a product type to its operator chain and geometry extraction settings.
type Product struct {
	Name       string
	Chain      *Chain
	Extraction metadata.Extraction
	Flags      map[string]bool
}

// Stats summarizes one Execute run.
type Stats struct {
	Read     int64 // records read from the source
	Filtered int64 // records dropped by Where filters
	Enriched int64 // records written with a footprint
	Rejected int64 // records written without a footprint
	Failed   int64 // records whose extraction, chain or write failed
}

// RecordError reports a record that could not be enriched.
// Operator failures are available through errors.As on *core.OperatorFailure.
type RecordError struct {
	Seq     int64  // 1-based position of the record in the source
	Product string // product type, if resolved
	Err     error
}

func (e *RecordError) Error() string {
	if e.Product == "" {
		return fmt.Sprintf("record %d: %v", e.Seq, e.Err)
	}
	return fmt.Sprintf("record %d (%s): %v", e.Seq, e.Product, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// DiagnosticsHandler receives the diagnostics a chain emitted for one record.
type DiagnosticsHandler interface {
	HandleDiagnostics(ctx context.Context, product string, record core.Record, diags []core.Diagnostic)
}

// DiagnosticsHandlerFunc is a function adapter for the DiagnosticsHandler interface.
type DiagnosticsHandlerFunc func(ctx context.Context, product string, record core.Record, diags []core.Diagnostic)

// HandleDiagnostics implements the DiagnosticsHandler interface for DiagnosticsHandlerFunc.
func (f DiagnosticsHandlerFunc) HandleDiagnostics(ctx context.Context, product string, record core.Record, diags []core.Diagnostic) {
	f(ctx, product, record, diags)
}

// EnricherBuilder provides a fluent API for constructing an Enricher.
// Use NewEnricher() to create a builder, then chain From, Product, To and configuration methods.
type EnricherBuilder struct {
	enricher *Enricher
	err      error
}

// NewEnricher creates a new EnricherBuilder.
func NewEnricher() *EnricherBuilder {
	return &EnricherBuilder{
		enricher: &Enricher{
			products: make(map[string]*Product),
			workers:  1,
			strategy: FailFast,
			logger:   zap.NewNop(),
		},
	}
}

// From sets the record source.
func (eb *EnricherBuilder) From(source core.DataSource) *EnricherBuilder {
	eb.enricher.source = source
	return eb
}

// To sets the record sink.
func (eb *EnricherBuilder) To(sink core.DataSink) *EnricherBuilder {
	eb.enricher.sink = sink
	return eb
}

// Product adds a product type. The first product added becomes the default product.
func (eb *EnricherBuilder) Product(p *Product) *EnricherBuilder {
	if p == nil || p.Chain == nil {
		if eb.err == nil {
			eb.err = errors.New("enricher: product requires a chain")
		}
		return eb
	}
	if err := p.Extraction.Validate(); err != nil {
		if eb.err == nil {
			eb.err = fmt.Errorf("enricher: product %s: %w", p.Name, err)
		}
		return eb
	}
	if eb.enricher.defaultProduct == "" {
		eb.enricher.defaultProduct = p.Name
	}
	eb.enricher.products[p.Name] = p
	return eb
}

// Products adds every product of m.
func (eb *EnricherBuilder) Products(m map[string]*Product) *EnricherBuilder {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		eb.Product(m[name])
	}
	return eb
}

// ProductField resolves the product type of each record from the named attribute.
func (eb *EnricherBuilder) ProductField(field string) *EnricherBuilder {
	eb.enricher.productField = field
	return eb
}

// DefaultProduct sets the product used when a record carries no product type.
func (eb *EnricherBuilder) DefaultProduct(name string) *EnricherBuilder {
	eb.enricher.defaultProduct = name
	eb.enricher.explicitDefault = true
	return eb
}

// Where adds a record filter evaluated before extraction.
func (eb *EnricherBuilder) Where(filter core.Filter) *EnricherBuilder {
	eb.enricher.filters = append(eb.enricher.filters, filter)
	return eb
}

// Workers sets the number of concurrent enrichment workers. Values below 1 mean 1.
func (eb *EnricherBuilder) Workers(n int) *EnricherBuilder {
	if n < 1 {
		n = 1
	}
	eb.enricher.workers = n
	return eb
}

// CarryForward passes the last known good footprint of each record to the next one.
// Carrying forward requires source order, so it forces a single worker.
func (eb *EnricherBuilder) CarryForward(on bool) *EnricherBuilder {
	eb.enricher.carryForward = on
	return eb
}

// WithErrorStrategy sets the handling of failed records.
func (eb *EnricherBuilder) WithErrorStrategy(strategy ErrorStrategy) *EnricherBuilder {
	eb.enricher.strategy = strategy
	return eb
}

// WithErrorHandler sets a custom handler consulted for failed records.
func (eb *EnricherBuilder) WithErrorHandler(handler core.ErrorHandler) *EnricherBuilder {
	eb.enricher.errorHandler = handler
	return eb
}

// WithDiagnosticsHandler sets the receiver of per-record diagnostics.
func (eb *EnricherBuilder) WithDiagnosticsHandler(handler DiagnosticsHandler) *EnricherBuilder {
	eb.enricher.diagnostics = handler
	return eb
}

// WithMetrics sets the metrics recorder.
func (eb *EnricherBuilder) WithMetrics(rec *metrics.Recorder) *EnricherBuilder {
	eb.enricher.metrics = rec
	return eb
}

// WithLogger sets the logger. The default logger discards everything.
func (eb *EnricherBuilder) WithLogger(logger *zap.Logger) *EnricherBuilder {
	if logger != nil {
		eb.enricher.logger = logger
	}
	return eb
}

// Build validates and constructs the Enricher.
func (eb *EnricherBuilder) Build() (*Enricher, error) {
	e := eb.enricher
	if eb.err != nil {
		return nil, eb.err
	}
	if e.source == nil {
		return nil, errors.New("enricher requires a data source")
	}
	if e.sink == nil {
		return nil, errors.New("enricher requires a data sink")
	}
	if len(e.products) == 0 {
		return nil, errors.New("enricher requires at least one product")
	}
	if e.explicitDefault || e.productField == "" {
		if _, ok := e.products[e.defaultProduct]; !ok {
			return nil, fmt.Errorf("enricher: default product %q: %w", e.defaultProduct, ErrUnknownProduct)
		}
	}
	if e.carryForward {
		e.workers = 1
	}
	return e, nil
}

// Enricher streams records from a source through the operator chain of their product type
// and writes them, footprint attached, to a sink.
//
// Every record gets its own core.Context. Rejected records are written with their geometry
// attribute cleared; failed records are handled by the error strategy and not written.
type Enricher struct {
	source          core.DataSource
	sink            core.DataSink
	products        map[string]*Product
	productField    string
	defaultProduct  string
	explicitDefault bool
	filters         []core.Filter
	workers         int
	carryForward    bool
	strategy        ErrorStrategy
	errorHandler    core.ErrorHandler
	diagnostics     DiagnosticsHandler
	metrics         *metrics.Recorder
	logger          *zap.Logger

	stats    stats
	sinkMu   sync.Mutex
	errMu    sync.Mutex
	errs     []error
	lastGood core.Geometry
}

type stats struct {
	read, filtered, enriched, rejected, failed atomic.Int64
}

func (s *stats) snapshot() Stats {
	return Stats{
		Read:     s.read.Load(),
		Filtered: s.filtered.Load(),
		Enriched: s.enriched.Load(),
		Rejected: s.rejected.Load(),
		Failed:   s.failed.Load(),
	}
}

type job struct {
	seq    int64
	record core.Record
}

// Execute runs the enricher until the source is exhausted, the context is cancelled or a
// failure stops it. The source and sink are closed on return.
func (e *Enricher) Execute(ctx context.Context) (Stats, error) {
	defer func() {
		if err := e.source.Close(); err != nil {
			e.logger.Warn("closing source", zap.Error(err))
		}
		if err := e.sink.Flush(); err != nil {
			e.logger.Warn("flushing sink", zap.Error(err))
		}
		if err := e.sink.Close(); err != nil {
			e.logger.Warn("closing sink", zap.Error(err))
		}
	}()

	e.metrics.SetWorkers(e.workers)
	e.logger.Info("enrichment started",
		zap.Int("workers", e.workers),
		zap.Int("products", len(e.products)),
		zap.Stringer("error_strategy", e.strategy),
		zap.Bool("carry_forward", e.carryForward))

	var err error
	if e.workers <= 1 {
		err = e.runSequential(ctx)
	} else {
		err = e.runParallel(ctx)
	}

	s := e.stats.snapshot()
	fields := []zap.Field{
		zap.Int64("read", s.Read),
		zap.Int64("filtered", s.Filtered),
		zap.Int64("enriched", s.Enriched),
		zap.Int64("rejected", s.Rejected),
		zap.Int64("failed", s.Failed),
	}
	if err != nil {
		e.logger.Error("enrichment stopped", append(fields, zap.Error(err))...)
		return s, err
	}
	e.logger.Info("enrichment finished", fields...)
	return s, nil
}

// Errors returns the failures gathered under CollectErrors.
func (e *Enricher) Errors() []error {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	out := make([]error, len(e.errs))
	copy(out, e.errs)
	return out
}

func (e *Enricher) runSequential(ctx context.Context) error {
	var seq int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		record, err := e.source.Read(ctx)
		if err == io.EOF {
			return nil
		}
		seq++
		if err != nil {
			if cerr := stopped(ctx, err); cerr != nil {
				return cerr
			}
			if err := e.fail(ctx, record, "", &RecordError{Seq: seq, Err: err}); err != nil {
				return err
			}
			continue
		}
		e.stats.read.Add(1)
		if err := e.process(ctx, job{seq: seq, record: record}); err != nil {
			return err
		}
	}
}

func (e *Enricher) runParallel(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan job, e.workers*2)

	g.Go(func() error {
		defer close(jobs)
		var seq int64
		for {
			if err := gctx.Err(); err != nil {
				return err
			}
			record, err := e.source.Read(gctx)
			if err == io.EOF {
				return nil
			}
			seq++
			if err != nil {
				if cerr := stopped(gctx, err); cerr != nil {
					return cerr
				}
				if err := e.fail(gctx, record, "", &RecordError{Seq: seq, Err: err}); err != nil {
					return err
				}
				continue
			}
			e.stats.read.Add(1)
			select {
			case jobs <- job{seq: seq, record: record}:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	for i := 0; i < e.workers; i++ {
		g.Go(func() error {
			for j := range jobs {
				if err := e.process(gctx, j); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return g.Wait()
}

// process enriches one record. A non-nil error stops the run.
func (e *Enricher) process(ctx context.Context, j job) error {
	if len(j.record) == 0 {
		return nil
	}
	include, err := e.applyFilters(ctx, j.record)
	if err != nil {
		return e.fail(ctx, j.record, "", &RecordError{Seq: j.seq, Err: err})
	}
	if !include {
		e.stats.filtered.Add(1)
		return nil
	}

	product, err := e.resolve(j.record)
	if err != nil {
		return e.fail(ctx, j.record, "", &RecordError{Seq: j.seq, Err: err})
	}

	mr := metadata.NewRecord(j.record, product.Extraction)
	raw, err := mr.Geometry()
	if err != nil {
		return e.fail(ctx, j.record, product.Name, &RecordError{Seq: j.seq, Product: product.Name, Err: fmt.Errorf("extract geometry: %w", err)})
	}

	opts := []core.ContextOption{core.WithRecord(mr), core.WithFlags(product.Flags)}
	if e.carryForward {
		opts = append(opts, core.WithLastKnownGood(e.lastGood))
	}
	cctx := core.NewContext(opts...)

	start := time.Now()
	out, err := product.Chain.Apply(raw, cctx)
	e.metrics.ObserveChain(product.Name, time.Since(start))

	if diags := cctx.Diagnostics(); len(diags) > 0 {
		for _, d := range diags {
			e.metrics.ObserveDiagnostic(product.Name, d.Stage)
		}
		if e.diagnostics != nil {
			e.diagnostics.HandleDiagnostics(ctx, product.Name, j.record, diags)
		}
	}
	if e.carryForward {
		e.lastGood = cctx.LastKnownGood()
	}
	if err != nil {
		e.logger.Debug("chain failed",
			zap.Int64("record", j.seq),
			zap.String("product", product.Name),
			zap.String("invocation", cctx.ID()),
			zap.Error(err))
		return e.fail(ctx, j.record, product.Name, &RecordError{Seq: j.seq, Product: product.Name, Err: err})
	}

	if err := mr.SetGeometry(out); err != nil {
		return e.fail(ctx, j.record, product.Name, &RecordError{Seq: j.seq, Product: product.Name, Err: fmt.Errorf("write geometry: %w", err)})
	}

	e.sinkMu.Lock()
	err = e.sink.Write(ctx, mr.Data())
	e.sinkMu.Unlock()
	if err != nil {
		return e.fail(ctx, j.record, product.Name, &RecordError{Seq: j.seq, Product: product.Name, Err: err})
	}

	if out.IsNone() {
		e.stats.rejected.Add(1)
		e.metrics.ObserveRecord(product.Name, metrics.OutcomeRejected)
	} else {
		e.stats.enriched.Add(1)
		e.metrics.ObserveRecord(product.Name, metrics.OutcomeEnriched)
	}
	return nil
}

func (e *Enricher) applyFilters(ctx context.Context, record core.Record) (bool, error) {
	for _, filter := range e.filters {
		include, err := filter.ShouldInclude(ctx, record)
		if err != nil {
			return false, err
		}
		if !include {
			return false, nil
		}
	}
	return true, nil
}

func (e *Enricher) resolve(record core.Record) (*Product, error) {
	name := e.defaultProduct
	if e.productField != "" {
		if v, ok := record[e.productField]; ok && v != nil {
			name = fmt.Sprint(v)
		}
	}
	p, ok := e.products[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownProduct, name)
	}
	return p, nil
}

// fail applies the error strategy to a failed record. A non-nil result stops the run.
// product is empty when the record failed before a product was resolved.
func (e *Enricher) fail(ctx context.Context, record core.Record, product string, err error) error {
	e.stats.failed.Add(1)
	e.metrics.ObserveRecord(product, metrics.OutcomeFailed)
	switch e.strategy {
	case SkipErrors:
		e.logger.Warn("skipping record", zap.Error(err))
	case CollectErrors:
		e.errMu.Lock()
		e.errs = append(e.errs, err)
		e.errMu.Unlock()
	default:
		return err
	}
	if e.errorHandler != nil {
		return e.errorHandler.HandleError(ctx, record, err)
	}
	return nil
}

// stopped returns the cancellation behind a read error, which ends the run under every
// error strategy.
func stopped(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
