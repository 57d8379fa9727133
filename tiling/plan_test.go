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
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// scenarioPlan builds the plan for segments 10, 20 and 5 with 4-element blocks
// over two cores.
func scenarioPlan(t *testing.T) (*DispatchPlan, Segments) {
	t.Helper()
	segs := Segments{10, 20, 5}
	part, err := PartitionCores(35, 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	cores, err := AssignSegments(segs, part.Quotas)
	if err != nil {
		t.Fatal(err)
	}
	plan, err := Assemble(BufferBudget{Elements: 64, DoubleBuffered: true}, part, cores, 2, segs)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return plan, segs
}

func TestAssemble(t *testing.T) {
	plan, _ := scenarioPlan(t)
	if plan.UsedCoreCount() != 2 {
		t.Errorf("UsedCoreCount = %d, want 2", plan.UsedCoreCount())
	}
	if plan.TotalElements() != 35 || plan.ElementsPerBlock() != 4 {
		t.Errorf("TotalElements=%d ElementsPerBlock=%d, want 35, 4", plan.TotalElements(), plan.ElementsPerBlock())
	}
	if plan.BufferElementCount() != 64 || !plan.DoubleBuffered() || plan.VariantTag() != 2 {
		t.Errorf("buffer=%d double=%v variant=%d, want 64, true, 2",
			plan.BufferElementCount(), plan.DoubleBuffered(), plan.VariantTag())
	}
	want := CorePlan{StartSegment: 1, StartOffset: 10, EndSegment: 2, EndOffset: 4, ElementCount: 15}
	if got := plan.Core(1); got != want {
		t.Errorf("Core(1) = %s, want %s", got, want)
	}
	var n int
	for i, c := range plan.Cores() {
		if c != plan.Core(i) {
			t.Errorf("Cores() yielded %s at %d, Core(%d) = %s", c, i, i, plan.Core(i))
		}
		n++
	}
	if n != 2 {
		t.Errorf("Cores() yielded %d cores, want 2", n)
	}
}

func TestAssembleCopiesCores(t *testing.T) {
	segs := Segments{8}
	part, _ := PartitionCores(8, 4, 2)
	cores, _ := AssignSegments(segs, part.Quotas)
	plan, err := Assemble(BufferBudget{Elements: 4}, part, cores, 0, segs)
	if err != nil {
		t.Fatal(err)
	}
	cores[0].EndOffset = 6
	if plan.Core(0).EndOffset != 3 {
		t.Errorf("plan changed with the caller's slice: %s", plan.Core(0))
	}
}

func TestAssembleErrors(t *testing.T) {
	segs := Segments{10, 20, 5}
	part, _ := PartitionCores(35, 4, 2)
	cores, _ := AssignSegments(segs, part.Quotas)

	if _, err := Assemble(BufferBudget{}, part, cores, 0, segs); !errors.Is(err, ErrInsufficientBudget) {
		t.Errorf("empty budget: error = %v, want ErrInsufficientBudget", err)
	}
	if _, err := Assemble(BufferBudget{Elements: 8}, part, cores[:1], 0, segs); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("missing core: error = %v, want ErrShapeMismatch", err)
	}

	// Ranges that tile the data but disagree with the partition.
	shifted := []CorePlan{
		{StartSegment: 0, StartOffset: 0, EndSegment: 1, EndOffset: 5, ElementCount: 16},
		{StartSegment: 1, StartOffset: 6, EndSegment: 2, EndOffset: 4, ElementCount: 19},
	}
	if _, err := Assemble(BufferBudget{Elements: 8}, part, shifted, 0, segs); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("quota mismatch: error = %v, want ErrShapeMismatch", err)
	}
}

func TestValidateCores(t *testing.T) {
	segs := Segments{10, 0, 20, 5}
	valid := []CorePlan{
		{StartSegment: 0, StartOffset: 0, EndSegment: 2, EndOffset: 9, ElementCount: 20},
		{StartSegment: 2, StartOffset: 10, EndSegment: 3, EndOffset: 4, ElementCount: 15},
	}
	if err := ValidateCores(valid, segs); err != nil {
		t.Fatalf("valid cores: %v", err)
	}

	tests := []struct {
		name   string
		modify func(c []CorePlan)
	}{
		{"gap", func(c []CorePlan) {
			c[0].EndOffset = 8
			c[0].ElementCount = 19
		}},
		{"overlap", func(c []CorePlan) {
			c[0].EndOffset = 10
			c[0].ElementCount = 21
		}},
		{"late first start", func(c []CorePlan) { c[0].StartOffset = 1 }},
		{"early last end", func(c []CorePlan) { c[1].EndOffset = 3 }},
		{"wrong count", func(c []CorePlan) {
			c[0].ElementCount = 19
			c[1].ElementCount = 16
		}},
		{"start in empty segment", func(c []CorePlan) {
			c[1].StartSegment = 1
			c[1].StartOffset = 0
		}},
		{"segment out of range", func(c []CorePlan) { c[1].EndSegment = 4 }},
		{"offset past segment", func(c []CorePlan) {
			c[0].EndSegment = 0
			c[0].EndOffset = 20
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cores := append([]CorePlan(nil), valid...)
			tt.modify(cores)
			if err := ValidateCores(cores, segs); !errors.Is(err, ErrShapeMismatch) {
				t.Errorf("error = %v, want ErrShapeMismatch", err)
			}
		})
	}
}

func TestValidateCoresGapAndOverlapCancel(t *testing.T) {
	// Counts and spans agree and sum to T, but (2,0) is skipped and (2,19)
	// is owned twice.
	segs := Segments{10, 0, 20, 5}
	cores := []CorePlan{
		{StartSegment: 0, StartOffset: 0, EndSegment: 0, EndOffset: 9, ElementCount: 10},
		{StartSegment: 2, StartOffset: 1, EndSegment: 2, EndOffset: 19, ElementCount: 19},
		{StartSegment: 2, StartOffset: 19, EndSegment: 3, EndOffset: 4, ElementCount: 6},
	}
	if err := ValidateCores(cores, segs); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("error = %v, want ErrShapeMismatch", err)
	}
}

func TestDispatchPlanValidateSource(t *testing.T) {
	plan, segs := scenarioPlan(t)
	if err := plan.ValidateSource(segs); err != nil {
		t.Fatalf("ValidateSource(%v) = %v, want nil", segs, err)
	}
	for _, src := range []Segments{
		{10, 20, 5, 7},
		{35},
		{10, 25},
		{20, 10, 5},
		{10, 20},
	} {
		if err := plan.ValidateSource(src); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("ValidateSource(%v) = %v, want ErrShapeMismatch", src, err)
		}
	}
	if !plan.Claim() {
		t.Error("ValidateSource claimed the plan")
	}
}

func TestDispatchPlanClaim(t *testing.T) {
	plan, _ := scenarioPlan(t)
	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			if plan.Claim() {
				wins.Add(1)
			}
		})
	}
	wg.Wait()
	if got := wins.Load(); got != 1 {
		t.Errorf("%d goroutines claimed the plan, want 1", got)
	}
	if plan.Claim() {
		t.Error("Claim() succeeded on a claimed plan")
	}
}

func TestDispatchPlanJSON(t *testing.T) {
	plan, _ := scenarioPlan(t)
	data, err := json.Marshal(plan)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got planJSON
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal(%s): %v", data, err)
	}
	want := planJSON{
		UsedCoreCount:      2,
		TotalElements:      35,
		ElementsPerBlock:   4,
		BufferElementCount: 64,
		DoubleBuffered:     true,
		VariantTag:         2,
		Cores: []coreJSON{
			{StartSegment: 0, StartOffset: 0, EndSegment: 1, EndOffset: 9, ElementCount: 20},
			{StartSegment: 1, StartOffset: 10, EndSegment: 2, EndOffset: 4, ElementCount: 15},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("JSON mismatch (-want +got):\n%s", diff)
	}
}
