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

	"github.com/ajroetker/go-tiling/tiling/platform"
)

// ProblemDescriptor is the validated, immutable description of one planning
// problem: the segments, the element width and the target platform.
type ProblemDescriptor struct {
	segments     SegmentSource
	total        int64
	elementBytes int64
	platform     platform.Platform
}

// NewProblemDescriptor validates its inputs and computes T.
//
// A non-positive core count, block size or element width, or a block size that
// is not a whole number of elements, is ErrInvalidConfiguration. A negative
// segment length is ErrShapeMismatch.
func NewProblemDescriptor(segments SegmentSource, elementBytes int64, p platform.Platform) (ProblemDescriptor, error) {
	switch {
	case segments == nil:
		return ProblemDescriptor{}, fmt.Errorf("nil segment source: %w", ErrInvalidConfiguration)
	case p.CoreCount <= 0:
		return ProblemDescriptor{}, fmt.Errorf("platform %q has %d cores: %w", p.Name, p.CoreCount, ErrInvalidConfiguration)
	case p.BlockBytes <= 0:
		return ProblemDescriptor{}, fmt.Errorf("platform %q has %d-byte blocks: %w", p.Name, p.BlockBytes, ErrInvalidConfiguration)
	case elementBytes <= 0:
		return ProblemDescriptor{}, fmt.Errorf("element width %d bytes: %w", elementBytes, ErrInvalidConfiguration)
	case p.BlockBytes%elementBytes != 0:
		return ProblemDescriptor{}, fmt.Errorf("%d-byte block does not hold whole %d-byte elements: %w",
			p.BlockBytes, elementBytes, ErrInvalidConfiguration)
	case p.ScratchBytes < 0 || p.ReservedBytes < 0 || p.MinBytesPerCore < 0:
		return ProblemDescriptor{}, fmt.Errorf("platform %q has negative memory sizes: %w", p.Name, ErrInvalidConfiguration)
	}
	total, err := TotalLen(segments)
	if err != nil {
		return ProblemDescriptor{}, err
	}
	return ProblemDescriptor{
		segments:     segments,
		total:        total,
		elementBytes: elementBytes,
		platform:     p,
	}, nil
}

// NewProblemDescriptorFor is NewProblemDescriptor with the element width taken
// from T.
func NewProblemDescriptorFor[T Element](segments SegmentSource, p platform.Platform) (ProblemDescriptor, error) {
	return NewProblemDescriptor(segments, DTypeOf[T]().Size(), p)
}

func (d ProblemDescriptor) Segments() SegmentSource     { return d.segments }
func (d ProblemDescriptor) TotalElements() int64        { return d.total }
func (d ProblemDescriptor) ElementBytes() int64         { return d.elementBytes }
func (d ProblemDescriptor) Platform() platform.Platform { return d.platform }

// ElementsPerBlock is the number of elements in one aligned block.
func (d ProblemDescriptor) ElementsPerBlock() int64 {
	return d.platform.BlockBytes / d.elementBytes
}
