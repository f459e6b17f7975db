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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aaronlmathis/gofootprint/registry"
)

var operatorsCmd = &cobra.Command{
	Use:   "operators",
	Short: "List the operators available to pipeline configurations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tPARAMS\tDESCRIPTION")
		for _, def := range registry.Default().Definitions() {
			params := "-"
			if len(def.Params) > 0 {
				names := make([]string, len(def.Params))
				for i, p := range def.Params {
					names[i] = p
					if contains(def.Required, p) {
						names[i] += "*"
					}
				}
				params = strings.Join(names, ",")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", def.Name, params, def.Description)
		}
		return tw.Flush()
	},
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
