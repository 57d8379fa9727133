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

package tiling

import (
	"fmt"
	"log/slog"

	"github.com/ajroetker/go-tiling/tiling/platform"
)

// PlanOptions are the per-operator inputs to PlanProblem.
type PlanOptions struct {
	Scratch ScratchCoefficients

	// MinBytesPerCore overrides the platform value when positive.
	MinBytesPerCore int64

	VariantTag   uint32
	DoubleBuffer bool

	// FallbackToSingleBuffer retries the budget once without double
	// buffering when the double-buffered budget is insufficient.
	FallbackToSingleBuffer bool
}

// PlanProblem runs budget, partition, assignment and assembly for one
// problem. It either returns a complete, validated plan or an error; it never
// returns a partial plan.
func PlanProblem(desc ProblemDescriptor, opts PlanOptions) (*DispatchPlan, error) {
	p := desc.Platform()
	req := BudgetRequest{
		ScratchBytes:      p.ScratchBytes,
		ElementBytes:      desc.ElementBytes(),
		BlockBytes:        p.BlockBytes,
		ReservedBytes:     p.ReservedBytes + opts.Scratch.ReservedBytes,
		LiveBuffers:       opts.Scratch.LiveBuffers,
		CalcBuffers:       opts.Scratch.CalcBuffers,
		TailReservedBytes: opts.Scratch.TailReservedBytes,
		DoubleBuffer:      opts.DoubleBuffer,
	}
	var (
		budget BufferBudget
		err    error
	)
	if opts.FallbackToSingleBuffer {
		budget, _, err = ComputeBudgetFallback(req)
	} else {
		budget, err = ComputeBudget(req)
	}
	if err != nil {
		return nil, err
	}

	total := desc.TotalElements()
	cores := availableCores(desc, opts.MinBytesPerCore)
	part, err := PartitionCores(total, desc.ElementsPerBlock(), cores)
	if err != nil {
		return nil, err
	}
	ranges := make([]CorePlan, part.UsedCores())
	if err := AssignSegmentsInto(ranges, desc.Segments(), part.Quotas); err != nil {
		return nil, err
	}
	return assemble(budget, part, ranges, opts.VariantTag, desc.Segments())
}

// availableCores caps the platform core count so that no core gets less than
// the minimum amount of work.
func availableCores(desc ProblemDescriptor, minBytesOverride int64) int {
	p := desc.Platform()
	cores := p.CoreCount
	minBytes := p.MinBytesPerCore
	if minBytesOverride > 0 {
		minBytes = minBytesOverride
	}
	if minBytes <= 0 || desc.TotalElements() == 0 {
		return cores
	}
	minElements := max(1, minBytes/desc.ElementBytes())
	return int(min(int64(cores), CeilDiv(desc.TotalElements(), minElements)))
}

// Request is one operator invocation to plan.
type Request struct {
	Kind      OperatorKind
	DType     DType
	Reduction ReductionMode
	Segments  SegmentSource
	Platform  platform.Platform

	DoubleBuffer bool
}

// Planner plans Requests against a Registry. A Planner holds no mutable state
// and may be shared between goroutines.
type Planner struct {
	registry *Registry
	logger   *slog.Logger
	fallback bool
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger for debug records. The default discards them.
func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) { p.logger = l }
}

// WithoutFallback makes an insufficient double-buffered budget a hard error
// instead of retrying with a single buffer.
func WithoutFallback() Option {
	return func(p *Planner) { p.fallback = false }
}

// NewPlanner returns a Planner reading coefficients from reg.
func NewPlanner(reg *Registry, opts ...Option) *Planner {
	p := &Planner{
		registry: reg,
		logger:   slog.New(slog.DiscardHandler),
		fallback: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the registry the planner reads from.
func (p *Planner) Registry() *Registry { return p.registry }

// Plan builds the DispatchPlan for req.
func (p *Planner) Plan(req Request) (*DispatchPlan, error) {
	coeff, err := p.registry.Lookup(req.Kind)
	if err != nil {
		return nil, err
	}
	size := req.DType.Size()
	if size == 0 {
		return nil, fmt.Errorf("dtype %s: %w", req.DType, ErrInvalidConfiguration)
	}
	tag, err := coeff.SelectVariant(req.DType, req.Reduction)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Kind, err)
	}
	desc, err := NewProblemDescriptor(req.Segments, size, req.Platform)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Kind, err)
	}
	plan, err := PlanProblem(desc, PlanOptions{
		Scratch:                coeff.ScratchFor(req.DType),
		MinBytesPerCore:        coeff.MinBytesPerCore,
		VariantTag:             tag,
		DoubleBuffer:           req.DoubleBuffer,
		FallbackToSingleBuffer: p.fallback,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Kind, err)
	}

	if req.DoubleBuffer && !plan.DoubleBuffered() {
		p.logger.Debug("double-buffered budget insufficient, planned with a single buffer",
			"kind", req.Kind, "dtype", req.DType, "platform", req.Platform.Name)
	}
	p.logger.Debug("planned",
		"kind", req.Kind,
		"dtype", req.DType,
		"total", plan.TotalElements(),
		"cores", plan.UsedCoreCount(),
		"buffer", plan.BufferElementCount(),
		"double", plan.DoubleBuffered(),
		"variant", plan.VariantTag())
	return plan, nil
}
