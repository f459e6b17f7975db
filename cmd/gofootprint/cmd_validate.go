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
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aaronlmathis/gofootprint/config"
	"github.com/aaronlmathis/gofootprint/registry"
)

var validateFlags struct {
	configPath string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a pipeline configuration and print the resulting chains",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateFlags.configPath, "config", "c", "pipelines.yaml", "Pipeline configuration file")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(validateFlags.configPath)
	if err != nil {
		return err
	}
	products, err := registry.Default().BuildAll(cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, name := range cfg.ProductNames() {
		p := products[name]
		fmt.Fprintf(out, "%s (%s -> %s %s): %s\n",
			name,
			p.Extraction.Format,
			p.Extraction.Output,
			p.Extraction.OutputFormat,
			strings.Join(p.Chain.Stages(), " | "))
	}
	fmt.Fprintf(out, "runtime: workers=%d error_strategy=%s carry_forward=%t\n",
		cfg.Runtime.Workers, cfg.ErrorStrategy(), cfg.Runtime.CarryForward)
	return nil
}
