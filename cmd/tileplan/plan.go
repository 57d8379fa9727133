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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ajroetker/go-tiling/tiling"
	"github.com/ajroetker/go-tiling/tiling/platform"
)

type planFlags struct {
	platformFlags

	segments       []int64
	shapes         []string
	dtype          string
	kind           string
	reduction      string
	noDoubleBuffer bool
	noFallback     bool
	asJSON         bool
}

func newPlanCmd(opts *globalOptions) *cobra.Command {
	f := &planFlags{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute the dispatch plan for one operator invocation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, f, opts)
		},
	}
	fs := cmd.Flags()
	f.platformFlags.register(fs)
	fs.Int64SliceVar(&f.segments, "segments", nil, "Segment lengths in elements, e.g. 10,20,5")
	fs.StringSliceVar(&f.shapes, "shapes", nil, "Tensor shapes, e.g. 16x1024,16x1024 (one segment each)")
	fs.StringVar(&f.dtype, "dtype", "float32", "Element type")
	fs.StringVar(&f.kind, "kind", tiling.KindMulScalar.String(), "Operator kind (see 'tileplan kinds')")
	fs.StringVar(&f.reduction, "reduction", "none", "Reduction mode: none, sum or mean")
	fs.BoolVar(&f.noDoubleBuffer, "no-double-buffer", false, "Plan a single working buffer per core")
	fs.BoolVar(&f.noFallback, "no-fallback", false, "Fail instead of falling back to a single buffer")
	fs.BoolVar(&f.asJSON, "json", false, "Print the plan as JSON")
	cmd.MarkFlagsMutuallyExclusive("segments", "shapes")
	return cmd
}

func runPlan(cmd *cobra.Command, f *planFlags, opts *globalOptions) error {
	segments, err := f.segmentSource()
	if err != nil {
		return err
	}
	p, err := f.platformFlags.resolve(cmd.Flags())
	if err != nil {
		return err
	}
	dtype, err := tiling.ParseDType(f.dtype)
	if err != nil {
		return err
	}
	kind, err := tiling.ParseOperatorKind(f.kind)
	if err != nil {
		return err
	}
	reduction, err := tiling.ParseReductionMode(f.reduction)
	if err != nil {
		return err
	}

	plannerOpts := []tiling.Option{tiling.WithLogger(opts.logger())}
	if f.noFallback {
		plannerOpts = append(plannerOpts, tiling.WithoutFallback())
	}
	planner := tiling.NewPlanner(tiling.NewStandardRegistry(), plannerOpts...)
	plan, err := planner.Plan(tiling.Request{
		Kind:         kind,
		DType:        dtype,
		Reduction:    reduction,
		Segments:     segments,
		Platform:     p,
		DoubleBuffer: !f.noDoubleBuffer && !platform.NoDoubleBufferEnv(),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}
	return writeTable(out, p, kind, dtype, plan)
}

func (f *planFlags) segmentSource() (tiling.Segments, error) {
	if len(f.shapes) == 0 {
		if len(f.segments) == 0 {
			return nil, errors.New("one of --segments or --shapes is required")
		}
		return tiling.Segments(f.segments), nil
	}
	shapes := make([][]int64, len(f.shapes))
	for i, s := range f.shapes {
		dims, err := parseShape(s)
		if err != nil {
			return nil, err
		}
		shapes[i] = dims
	}
	return tiling.SegmentsFromShapes(shapes)
}

// parseShape parses "AxBxC" into dimensions. An empty string is a scalar.
func parseShape(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "x")
	dims := make([]int64, len(parts))
	for i, d := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(d), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("shape %q: %w", s, err)
		}
		dims[i] = n
	}
	return dims, nil
}

func writeTable(w io.Writer, p platform.Platform, kind tiling.OperatorKind, dtype tiling.DType, plan *tiling.DispatchPlan) error {
	fmt.Fprintf(w, "platform: %s\n", p)
	fmt.Fprintf(w, "kind=%s dtype=%s variant=%d\n", kind, dtype, plan.VariantTag())
	fmt.Fprintf(w, "total=%d blocks of %d, cores=%d, buffer=%d elements, double-buffered=%v\n\n",
		plan.TotalElements(), plan.ElementsPerBlock(), plan.UsedCoreCount(), plan.BufferElementCount(), plan.DoubleBuffered())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "core\tstart\tend\telements")
	for i, c := range plan.Cores() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", i, c.Start(), c.End(), c.ElementCount)
	}
	return tw.Flush()
}
