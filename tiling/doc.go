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

// Package tiling plans how an elementwise operator invocation is split across
// the compute cores of an accelerator.
//
// The input is an ordered list of segments (one per tensor, or per tensor
// slice), read as a single virtual concatenation of T elements. The output is a
// DispatchPlan: how many cores to start, which contiguous (segment, offset)
// range each core owns, how many elements each core's scratch buffer holds, and
// which precompiled kernel variant to run.
//
// # Pipeline
//
// Planning is four pure steps over immutable inputs:
//
//   - ComputeBudget: scratch bytes to a block-aligned buffer element count,
//     optionally halved for double buffering.
//   - PartitionCores: T elements to per-core block counts. The first
//     totalBlocks%usedCores cores get one extra block.
//   - AssignSegments: per-core quotas to (segment, offset) start and end
//     positions, walking the segments once.
//   - Assemble: budget, core ranges and variant tag into a DispatchPlan,
//     checked for gaps and overlaps.
//
// Planner runs the whole pipeline for a Request, reading per-operator
// coefficients from a caller-owned Registry.
//
// # Example Usage
//
//	reg := tiling.NewStandardRegistry()
//	planner := tiling.NewPlanner(reg)
//	plan, err := planner.Plan(tiling.Request{
//	    Kind:         tiling.KindMulScalar,
//	    DType:        tiling.Float32,
//	    Segments:     tiling.Segments{10, 20, 5},
//	    Platform:     platform.MustPreset("ai-core-40"),
//	    DoubleBuffer: true,
//	})
//
// # Concurrency
//
// Nothing in this package touches package-level mutable state. Independent
// Plan calls may run on separate goroutines without synchronization, and a
// Registry is safe for concurrent reads once registration is done.
package tiling
