// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ajroetker/go-tiling/tiling"
)

func newPlatformCmd() *cobra.Command {
	f := &platformFlags{}
	cmd := &cobra.Command{
		Use:   "platform",
		Short: "Print the platform plans would be made for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := f.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the standard operator kinds and their scratch coefficients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := tiling.NewStandardRegistry()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "kind\tlive buffers\tcalc buffers\treserved\ttail reserved\tmin bytes/core")
			for _, kind := range reg.Kinds() {
				c, err := reg.Lookup(kind)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", kind, c.Scratch.LiveBuffers, c.Scratch.CalcBuffers,
					c.Scratch.ReservedBytes, c.Scratch.TailReservedBytes, c.MinBytesPerCore)
			}
			return tw.Flush()
		},
	}
}
