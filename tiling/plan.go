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
	"fmt"
	"iter"
	"slices"
	"sync/atomic"

	"github.com/samber/lo"
)

// DispatchPlan is the output of planning, consumed once by a launcher.
//
// A DispatchPlan is immutable: all fields are read through accessors and
// Cores hands out copies. The only state it carries is whether a launcher has
// claimed it (see Claim).
type DispatchPlan struct {
	claimed atomic.Bool

	cores            []CorePlan
	bufferElements   int64
	doubleBuffered   bool
	variantTag       uint32
	totalElements    int64
	elementsPerBlock int64
}

// UsedCoreCount is the number of core programs the launcher must start.
func (p *DispatchPlan) UsedCoreCount() int { return len(p.cores) }

// Core returns the range owned by core i.
func (p *DispatchPlan) Core(i int) CorePlan { return p.cores[i] }

// Cores iterates over (core index, range) pairs.
func (p *DispatchPlan) Cores() iter.Seq2[int, CorePlan] {
	return slices.All(p.cores)
}

// BufferElementCount is the element capacity of each core's working buffer.
func (p *DispatchPlan) BufferElementCount() int64 { return p.bufferElements }

// DoubleBuffered reports whether each core splits its scratch in two.
func (p *DispatchPlan) DoubleBuffered() bool { return p.doubleBuffered }

// VariantTag selects the precompiled kernel variant.
func (p *DispatchPlan) VariantTag() uint32 { return p.variantTag }

// TotalElements is T, the size of the logical index space.
func (p *DispatchPlan) TotalElements() int64 { return p.totalElements }

// ElementsPerBlock is the block granularity the plan was built with.
func (p *DispatchPlan) ElementsPerBlock() int64 { return p.elementsPerBlock }

// Claim marks the plan as consumed by a launcher. It returns true only for
// the first caller.
func (p *DispatchPlan) Claim() bool {
	return p.claimed.CompareAndSwap(false, true)
}

// ValidateSource checks that the plan's core ranges tile src exactly, so
// that a launcher walking src with them visits every element once. It returns
// an error wrapping ErrShapeMismatch when src is not the data the plan was
// built for.
func (p *DispatchPlan) ValidateSource(src SegmentSource) error {
	total, err := TotalLen(src)
	if err != nil {
		return err
	}
	if total != p.totalElements {
		return fmt.Errorf("source holds %d elements, plan covers %d: %w", total, p.totalElements, ErrShapeMismatch)
	}
	return ValidateCores(p.cores, src)
}

// String returns a one-line summary.
func (p *DispatchPlan) String() string {
	return fmt.Sprintf("DispatchPlan{cores=%d total=%d buffer=%d double=%v variant=%d}",
		len(p.cores), p.totalElements, p.bufferElements, p.doubleBuffered, p.variantTag)
}

type planJSON struct {
	UsedCoreCount      int        `json:"usedCoreCount"`
	TotalElements      int64      `json:"totalElements"`
	ElementsPerBlock   int64      `json:"elementsPerBlock"`
	BufferElementCount int64      `json:"bufferElementCount"`
	DoubleBuffered     bool       `json:"doubleBuffered"`
	VariantTag         uint32     `json:"variantTag"`
	Cores              []coreJSON `json:"cores"`
}

type coreJSON struct {
	StartSegment int   `json:"startSegment"`
	StartOffset  int64 `json:"startOffset"`
	EndSegment   int   `json:"endSegment"`
	EndOffset    int64 `json:"endOffset"`
	ElementCount int64 `json:"elementCount"`
}

// MarshalJSON implements json.Marshaler.
func (p *DispatchPlan) MarshalJSON() ([]byte, error) {
	return json.Marshal(planJSON{
		UsedCoreCount:      len(p.cores),
		TotalElements:      p.totalElements,
		ElementsPerBlock:   p.elementsPerBlock,
		BufferElementCount: p.bufferElements,
		DoubleBuffered:     p.doubleBuffered,
		VariantTag:         p.variantTag,
		Cores: lo.Map(p.cores, func(c CorePlan, _ int) coreJSON {
			return coreJSON(c)
		}),
	})
}

// Assemble combines the planning results into a DispatchPlan after checking
// that the core ranges tile the logical index space of src exactly. cores is
// copied.
func Assemble(budget BufferBudget, part Partition, cores []CorePlan, variantTag uint32, src SegmentSource) (*DispatchPlan, error) {
	return assemble(budget, part, slices.Clone(cores), variantTag, src)
}

// assemble is Assemble taking ownership of cores.
func assemble(budget BufferBudget, part Partition, cores []CorePlan, variantTag uint32, src SegmentSource) (*DispatchPlan, error) {
	if budget.Elements <= 0 {
		return nil, fmt.Errorf("buffer of %d elements: %w", budget.Elements, ErrInsufficientBudget)
	}
	if len(cores) != part.UsedCores() {
		return nil, fmt.Errorf("%d core ranges for %d partitioned cores: %w", len(cores), part.UsedCores(), ErrShapeMismatch)
	}
	if err := ValidateCores(cores, src); err != nil {
		return nil, err
	}
	for i, c := range cores {
		if c.ElementCount != part.Quotas[i] {
			return nil, fmt.Errorf("core %d owns %d elements, partition quota is %d: %w",
				i, c.ElementCount, part.Quotas[i], ErrShapeMismatch)
		}
	}
	return &DispatchPlan{
		cores:            cores,
		bufferElements:   budget.Elements,
		doubleBuffered:   budget.DoubleBuffered,
		variantTag:       variantTag,
		totalElements:    part.TotalElements,
		elementsPerBlock: part.ElementsPerBlock,
	}, nil
}

// ValidateCores checks that cores tile the logical index space of src with no
// gap and no overlap: the first core starts at the first element, each core
// starts right after its predecessor ends, the last core ends at the last
// element, and every ElementCount matches its range.
func ValidateCores(cores []CorePlan, src SegmentSource) error {
	total, err := TotalLen(src)
	if err != nil {
		return err
	}
	if sum := lo.SumBy(cores, func(c CorePlan) int64 { return c.ElementCount }); sum != total {
		return fmt.Errorf("core element counts sum to %d, want %d: %w", sum, total, ErrShapeMismatch)
	}
	if len(cores) == 0 {
		return nil
	}

	first, ok := nextNonEmpty(src, Position{Segment: 0, Offset: 0})
	if !ok || cores[0].Start() != first {
		return fmt.Errorf("core 0 starts at %s, want %s: %w", cores[0].Start(), first, ErrShapeMismatch)
	}
	for i, c := range cores {
		if err := checkRange(c, src); err != nil {
			return fmt.Errorf("core %d: %w", i, err)
		}
		var n int64
		for span := range c.Spans(src) {
			n += span.Len()
		}
		if n != c.ElementCount {
			return fmt.Errorf("core %d spans %d elements, ElementCount is %d: %w", i, n, c.ElementCount, ErrShapeMismatch)
		}
		if i == 0 {
			continue
		}
		want, ok := nextNonEmpty(src, Position{Segment: cores[i-1].EndSegment, Offset: cores[i-1].EndOffset + 1})
		if !ok || c.Start() != want {
			return fmt.Errorf("core %d starts at %s, want %s after core %d: %w", i, c.Start(), want, i-1, ErrShapeMismatch)
		}
	}
	last := cores[len(cores)-1]
	if _, more := nextNonEmpty(src, Position{Segment: last.EndSegment, Offset: last.EndOffset + 1}); more {
		return fmt.Errorf("last core ends at %s before the end of the data: %w", last.End(), ErrShapeMismatch)
	}
	return nil
}

func checkRange(c CorePlan, src SegmentSource) error {
	n := src.NumSegments()
	if c.StartSegment < 0 || c.StartSegment >= n || c.EndSegment < c.StartSegment || c.EndSegment >= n {
		return fmt.Errorf("segments %d..%d out of range [0,%d): %w", c.StartSegment, c.EndSegment, n, ErrShapeMismatch)
	}
	if c.StartOffset < 0 || c.StartOffset >= src.SegmentLen(c.StartSegment) {
		return fmt.Errorf("start %s outside its segment: %w", c.Start(), ErrShapeMismatch)
	}
	if c.EndOffset < 0 || c.EndOffset >= src.SegmentLen(c.EndSegment) {
		return fmt.Errorf("end %s outside its segment: %w", c.End(), ErrShapeMismatch)
	}
	if c.StartSegment == c.EndSegment && c.EndOffset < c.StartOffset {
		return fmt.Errorf("end %s before start %s: %w", c.End(), c.Start(), ErrShapeMismatch)
	}
	return nil
}

// nextNonEmpty normalizes pos to an existing element, moving past the end of
// its segment and over zero-length segments. ok is false past the last element.
func nextNonEmpty(src SegmentSource, pos Position) (Position, bool) {
	for seg := pos.Segment; seg < src.NumSegments(); seg++ {
		if pos.Offset < src.SegmentLen(seg) {
			return Position{Segment: seg, Offset: pos.Offset}, true
		}
		pos.Offset = 0
	}
	return Position{}, false
}
