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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aaronlmathis/gofootprint"
	"github.com/aaronlmathis/gofootprint/config"
	"github.com/aaronlmathis/gofootprint/core"
	"github.com/aaronlmathis/gofootprint/filter"
	"github.com/aaronlmathis/gofootprint/metrics"
	"github.com/aaronlmathis/gofootprint/readers"
	"github.com/aaronlmathis/gofootprint/registry"
	"github.com/aaronlmathis/gofootprint/writers"
)

var enrichFlags struct {
	configPath    string
	input         string
	inputFormat   string
	output        string
	outputFormat  string
	product       string
	workers       int
	errorStrategy string
	where         []string
	metricsAddr   string
	diagnostics   bool
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Attach footprints to a stream of telemetry records",
	Long: `Enrich reads records from --input, runs the operator chain of each record's
product type and writes the records to --output.

Inputs may be local files (csv, jsonl, parquet), "-" for stdin, s3://bucket/prefix,
http(s) URLs, postgres://...?query=SELECT... or mongodb://host/db?collection=name.

Records whose footprint is rejected are written with the output attribute cleared.
Failed records are handled by the error strategy (fail_fast, skip or collect).`,
	Args: cobra.NoArgs,
	RunE: runEnrich,
}

func init() {
	f := enrichCmd.Flags()
	f.StringVarP(&enrichFlags.configPath, "config", "c", "pipelines.yaml", "Pipeline configuration file")
	f.StringVarP(&enrichFlags.input, "input", "i", "-", "Record source")
	f.StringVar(&enrichFlags.inputFormat, "input-format", "", "Input format: csv, jsonl or parquet (default: from name)")
	f.StringVarP(&enrichFlags.output, "output", "o", "-", "Output file, - for stdout")
	f.StringVar(&enrichFlags.outputFormat, "output-format", "", "Output format: csv or jsonl (default: from name)")
	f.StringVarP(&enrichFlags.product, "product", "p", "", "Process every record as this product type")
	f.IntVarP(&enrichFlags.workers, "workers", "w", 0, "Concurrent workers (default: runtime.workers from config)")
	f.StringVar(&enrichFlags.errorStrategy, "error-strategy", "", "fail_fast, skip or collect (default: from config)")
	f.StringArrayVar(&enrichFlags.where, "where", nil, "Record filter: field=value, field!=value, field=a|b or field (repeatable)")
	f.StringVar(&enrichFlags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9102")
	f.BoolVar(&enrichFlags.diagnostics, "diagnostics", false, "Log per-record diagnostics at info level")
}

func runEnrich(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(enrichFlags.configPath)
	if err != nil {
		return err
	}
	products, err := registry.Default().BuildAll(cfg)
	if err != nil {
		return err
	}

	strategy := cfg.ErrorStrategy()
	if enrichFlags.errorStrategy != "" {
		if strategy, err = core.ParseErrorStrategy(enrichFlags.errorStrategy); err != nil {
			return err
		}
	}
	workers := cfg.Runtime.Workers
	if enrichFlags.workers > 0 {
		workers = enrichFlags.workers
	}

	var inFormat readers.Format
	if enrichFlags.inputFormat != "" {
		if inFormat, err = readers.ParseFormat(enrichFlags.inputFormat); err != nil {
			return err
		}
	}
	source, err := readers.Open(ctx, enrichFlags.input, inFormat)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	sink, err := writers.Open(ctx, enrichFlags.output, enrichFlags.outputFormat)
	if err != nil {
		source.Close()
		return fmt.Errorf("open output: %w", err)
	}

	b := gofootprint.NewEnricher().
		From(source).
		To(sink).
		Products(products).
		Workers(workers).
		CarryForward(cfg.Runtime.CarryForward).
		WithErrorStrategy(strategy).
		WithLogger(logger).
		WithDiagnosticsHandler(logDiagnostics(enrichFlags.diagnostics))

	switch {
	case enrichFlags.product != "":
		b.DefaultProduct(enrichFlags.product)
	case cfg.Runtime.ProductField != "":
		b.ProductField(cfg.Runtime.ProductField)
		if cfg.Runtime.DefaultProduct != "" {
			b.DefaultProduct(cfg.Runtime.DefaultProduct)
		}
	case cfg.Runtime.DefaultProduct != "":
		b.DefaultProduct(cfg.Runtime.DefaultProduct)
	}

	for _, expr := range enrichFlags.where {
		f, err := filter.Parse(expr)
		if err != nil {
			source.Close()
			sink.Close()
			return err
		}
		b.Where(f)
	}

	if enrichFlags.metricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		b.WithMetrics(metrics.NewRecorder(reg))
		srv := serveMetrics(enrichFlags.metricsAddr, reg)
		defer shutdown(srv)
	}

	enricher, err := b.Build()
	if err != nil {
		source.Close()
		sink.Close()
		return err
	}

	start := time.Now()
	stats, err := enricher.Execute(ctx)
	for _, e := range enricher.Errors() {
		logger.Warn("record failed", zap.Error(e))
	}
	logger.Info("done",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int64("read", stats.Read),
		zap.Int64("enriched", stats.Enriched),
		zap.Int64("rejected", stats.Rejected),
		zap.Int64("failed", stats.Failed))
	return err
}

func logDiagnostics(info bool) gofootprint.DiagnosticsHandler {
	return gofootprint.DiagnosticsHandlerFunc(func(_ context.Context, product string, _ core.Record, diags []core.Diagnostic) {
		if ce := logger.Check(levelFor(info), "diagnostics"); ce != nil {
			msgs := make([]string, len(diags))
			for i, d := range diags {
				msgs[i] = d.String()
			}
			ce.Write(zap.String("product", product), zap.Strings("diagnostics", msgs))
		}
	})
}

func levelFor(info bool) zapcore.Level {
	if info {
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", addr))
	return srv
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
