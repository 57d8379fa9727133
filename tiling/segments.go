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

import "fmt"

// SegmentSource provides the ordered segment lengths of a problem.
//
// The segments are read as one virtual concatenation (the logical index
// space); order matters. Implementations must return the same values on every
// call for the lifetime of a plan.
type SegmentSource interface {
	NumSegments() int
	SegmentLen(i int) int64
}

// Segments is the plain slice implementation of SegmentSource.
type Segments []int64

// NumSegments implements SegmentSource.
func (s Segments) NumSegments() int { return len(s) }

// SegmentLen implements SegmentSource.
func (s Segments) SegmentLen(i int) int64 { return s[i] }

// SegmentsFromShapes returns one segment per tensor shape, with length equal to
// the product of its dimensions. A scalar (empty shape) has length 1.
func SegmentsFromShapes(shapes [][]int64) (Segments, error) {
	segs := make(Segments, len(shapes))
	for i, shape := range shapes {
		n := int64(1)
		for j, dim := range shape {
			if dim < 0 {
				return nil, fmt.Errorf("tensor %d has negative dim %d at axis %d: %w", i, dim, j, ErrShapeMismatch)
			}
			n *= dim
		}
		segs[i] = n
	}
	return segs, nil
}

// TotalLen returns T, the sum of all segment lengths. A negative length is
// reported as ErrShapeMismatch.
func TotalLen(src SegmentSource) (int64, error) {
	var total int64
	for i := range src.NumSegments() {
		n := src.SegmentLen(i)
		if n < 0 {
			return 0, fmt.Errorf("segment %d has negative length %d: %w", i, n, ErrShapeMismatch)
		}
		total += n
	}
	return total, nil
}

// Position addresses one element of the logical index space.
type Position struct {
	Segment int
	Offset  int64
}

// String formats the position as "(segment,offset)".
func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Segment, p.Offset)
}

// Locate maps a logical index in [0, T) to its position, using cumulative
// segment offsets. Zero-length segments are never returned.
func Locate(src SegmentSource, index int64) (Position, error) {
	if index < 0 {
		return Position{}, fmt.Errorf("logical index %d is negative: %w", index, ErrShapeMismatch)
	}
	var base int64
	for i := range src.NumSegments() {
		n := src.SegmentLen(i)
		if index < base+n {
			return Position{Segment: i, Offset: index - base}, nil
		}
		base += n
	}
	return Position{}, fmt.Errorf("logical index %d is past the end (%d elements): %w", index, base, ErrShapeMismatch)
}

// Span is a contiguous run [Start, End) of elements within one segment.
type Span struct {
	Segment    int
	Start, End int64
}

// Len returns End - Start.
func (s Span) Len() int64 { return s.End - s.Start }
