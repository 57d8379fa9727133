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
	"iter"
)

// CorePlan is the inclusive range of the logical index space owned by one core.
type CorePlan struct {
	StartSegment int
	StartOffset  int64
	EndSegment   int
	EndOffset    int64 // inclusive

	// ElementCount is the number of elements in the range. It is redundant
	// with the positions and kept for validation.
	ElementCount int64
}

// Start returns the position of the first element of the range.
func (c CorePlan) Start() Position {
	return Position{Segment: c.StartSegment, Offset: c.StartOffset}
}

// End returns the position of the last element of the range.
func (c CorePlan) End() Position {
	return Position{Segment: c.EndSegment, Offset: c.EndOffset}
}

// String formats the range as "(s,o)..(s,o) n=count".
func (c CorePlan) String() string {
	return fmt.Sprintf("%s..%s n=%d", c.Start(), c.End(), c.ElementCount)
}

// Spans yields the per-segment pieces of the range in order. Zero-length
// segments inside the range are skipped.
func (c CorePlan) Spans(src SegmentSource) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		for seg := c.StartSegment; seg <= c.EndSegment; seg++ {
			start, end := int64(0), src.SegmentLen(seg)
			if seg == c.StartSegment {
				start = c.StartOffset
			}
			if seg == c.EndSegment {
				end = c.EndOffset + 1
			}
			if end <= start {
				continue
			}
			if !yield(Span{Segment: seg, Start: start, End: end}) {
				return
			}
		}
	}
}

// AssignSegments maps per-core element quotas onto the segment list, returning
// one CorePlan per quota. See AssignSegmentsInto.
func AssignSegments(src SegmentSource, quotas []int64) ([]CorePlan, error) {
	cores := make([]CorePlan, len(quotas))
	if err := AssignSegmentsInto(cores, src, quotas); err != nil {
		return nil, err
	}
	return cores, nil
}

// AssignSegmentsInto walks the segments once, in order, and records where each
// core's quota starts and ends. It writes dst[:len(quotas)] and does not
// allocate.
//
// The quotas are checked before the walk: every quota must be positive and
// they must sum to exactly the total segment length. When a core's quota ends
// exactly at the end of a segment, the next core starts at offset 0 of the
// next non-empty segment; otherwise the segment is split and the next core
// starts inside it. Zero-length segments never hold a core's start or end.
func AssignSegmentsInto(dst []CorePlan, src SegmentSource, quotas []int64) error {
	if len(dst) < len(quotas) {
		return fmt.Errorf("destination holds %d cores, need %d: %w", len(dst), len(quotas), ErrShapeMismatch)
	}
	total, err := TotalLen(src)
	if err != nil {
		return err
	}
	var sum int64
	for i, q := range quotas {
		if q <= 0 {
			return fmt.Errorf("core %d has quota %d: %w", i, q, ErrShapeMismatch)
		}
		sum += q
	}
	if sum != total {
		return fmt.Errorf("core quotas sum to %d, segments hold %d elements: %w", sum, total, ErrShapeMismatch)
	}

	var (
		core     int
		consumed int64
		started  bool
		offset   int64
	)
	numSegs := src.NumSegments()
	for seg := 0; seg < numSegs && core < len(quotas); {
		remaining := src.SegmentLen(seg) - offset
		if remaining == 0 {
			seg++
			offset = 0
			continue
		}
		if !started {
			dst[core] = CorePlan{StartSegment: seg, StartOffset: offset}
			started = true
		}

		quota := quotas[core]
		if consumed+remaining < quota {
			// The rest of this segment belongs to the current core.
			consumed += remaining
			seg++
			offset = 0
			continue
		}

		need := quota - consumed
		dst[core].EndSegment = seg
		dst[core].EndOffset = offset + need - 1
		dst[core].ElementCount = quota
		core++
		consumed = 0
		started = false
		if need == remaining {
			seg++
			offset = 0
		} else {
			offset += need
		}
	}
	if core != len(quotas) {
		return fmt.Errorf("segments exhausted after %d of %d cores: %w", core, len(quotas), ErrShapeMismatch)
	}
	return nil
}
