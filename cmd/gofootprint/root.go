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

// gofootprint derives spatial footprints for telemetry records.
//
// Usage:
//
//	gofootprint enrich   -c pipelines.yaml -i frames.csv -o footprints.jsonl
//	gofootprint validate -c pipelines.yaml
//	gofootprint apply    -c pipelines.yaml --product fmv 'POLYGON ((...))'
//	gofootprint operators
//	gofootprint inspect  frames.parquet
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	verbose bool
	logJSON bool
}

var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "gofootprint",
	Short: "Derive spatial footprints from sensor telemetry",
	Long: `gofootprint reads telemetry records (full-motion-video frames, imagery products),
runs the configured chain of geometry operators for each record's product type and
writes the records back out with their footprint attached.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		l, err := newLogger(rootFlags.verbose, rootFlags.logJSON)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Sync()
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.BoolVarP(&rootFlags.verbose, "verbose", "v", false, "Enable debug logging")
	f.BoolVar(&rootFlags.logJSON, "log-json", false, "Log JSON instead of console output")

	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(operatorsCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.Version = version
}

// newLogger builds the CLI logger. Logs go to stderr so stdout can carry records.
func newLogger(verbose, json bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if json {
		cfg = zap.NewProductionConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = !verbose
	return cfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
