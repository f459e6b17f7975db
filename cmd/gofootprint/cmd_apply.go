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
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aaronlmathis/gofootprint/config"
	"github.com/aaronlmathis/gofootprint/core"
	"github.com/aaronlmathis/gofootprint/geometry"
	"github.com/aaronlmathis/gofootprint/registry"
)

var applyFlags struct {
	configPath string
	product    string
	geojson    bool
}

var applyCmd = &cobra.Command{
	Use:   "apply [WKT]",
	Short: "Run one product's chain over a single geometry",
	Long: `Apply parses a WKT geometry (argument or stdin), runs the named product's
operator chain over it and prints the result and any diagnostics.

Exits non-zero when a stage fails. A rejected geometry prints EMPTY.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApply,
}

func init() {
	f := applyCmd.Flags()
	f.StringVarP(&applyFlags.configPath, "config", "c", "pipelines.yaml", "Pipeline configuration file")
	f.StringVarP(&applyFlags.product, "product", "p", "", "Product type whose chain to run (required)")
	f.BoolVar(&applyFlags.geojson, "geojson", false, "Print the result as GeoJSON")
	_ = applyCmd.MarkFlagRequired("product")
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(applyFlags.configPath)
	if err != nil {
		return err
	}
	product, err := registry.Default().BuildProduct(cfg, applyFlags.product)
	if err != nil {
		return err
	}

	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}
	g, err := geometry.ParseWKT(strings.TrimSpace(text))
	if err != nil {
		return err
	}

	ctx := core.NewContext(core.WithFlags(product.Flags))
	out, err := product.Chain.Apply(core.Some(g), ctx)
	for _, d := range ctx.Diagnostics() {
		fmt.Fprintf(cmd.ErrOrStderr(), "diagnostic: %s\n", d)
	}
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	v, ok := out.Get()
	if !ok {
		fmt.Fprintln(w, "EMPTY")
		return nil
	}
	if applyFlags.geojson {
		data, err := geometry.FormatGeoJSON(v)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}
	s, err := geometry.FormatWKT(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, s)
	return nil
}
