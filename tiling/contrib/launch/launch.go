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

// Package launch is a host-side reference launcher for tiling plans.
//
// It starts one program per used core on a worker pool. Each program walks its
// own range only, split into tiles no larger than the plan's working buffer,
// and never coordinates with other cores. It is used to exercise plans on the
// CPU and to check that every element is visited exactly once.
package launch

import (
	"errors"
	"fmt"
	"iter"

	"github.com/ajroetker/go-tiling/tiling"
	"github.com/ajroetker/go-tiling/tiling/contrib/workerpool"
)

// ErrAlreadyLaunched is returned when a plan is launched a second time.
var ErrAlreadyLaunched = errors.New("launch: plan already consumed")

// Kernel processes one tile for one core. A tile lies within a single segment
// and holds at most BufferElementCount elements.
type Kernel func(core int, tile tiling.Span) error

// Launcher runs plans on a worker pool.
type Launcher struct {
	pool *workerpool.Pool
}

// New returns a Launcher using pool. The caller keeps ownership of the pool.
func New(pool *workerpool.Pool) *Launcher {
	return &Launcher{pool: pool}
}

// Launch consumes plan: it runs kernel over every tile of every core and
// returns the joined errors of the cores that failed. A plan can be launched
// only once.
//
// src must be the data the plan was built for. Otherwise Launch returns an
// error wrapping tiling.ErrShapeMismatch without running kernel, and the plan
// stays unclaimed.
func (l *Launcher) Launch(plan *tiling.DispatchPlan, src tiling.SegmentSource, kernel Kernel) error {
	if err := plan.ValidateSource(src); err != nil {
		return fmt.Errorf("launch: %w", err)
	}
	if !plan.Claim() {
		return ErrAlreadyLaunched
	}
	buffer := plan.BufferElementCount()
	return l.pool.Run(plan.UsedCoreCount(), func(core int) error {
		for tile := range Tiles(plan.Core(core), src, buffer) {
			if err := kernel(core, tile); err != nil {
				return fmt.Errorf("core %d tile %d[%d:%d]: %w", core, tile.Segment, tile.Start, tile.End, err)
			}
		}
		return nil
	})
}

// Tiles splits a core's range into pieces of at most bufferElements elements
// that never cross a segment boundary. A non-positive bufferElements yields
// whole spans.
func Tiles(c tiling.CorePlan, src tiling.SegmentSource, bufferElements int64) iter.Seq[tiling.Span] {
	return func(yield func(tiling.Span) bool) {
		for span := range c.Spans(src) {
			if bufferElements <= 0 {
				if !yield(span) {
					return
				}
				continue
			}
			for start := span.Start; start < span.End; start += bufferElements {
				tile := tiling.Span{Segment: span.Segment, Start: start, End: min(start+bufferElements, span.End)}
				if !yield(tile) {
					return
				}
			}
		}
	}
}
