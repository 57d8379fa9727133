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
	"errors"
	"fmt"
)

// BudgetRequest describes one core's scratch memory and how it will be used.
//
// Memory layout of the scratch space:
//   - ReservedBytes: held by bookkeeping for the whole kernel
//   - per copy of the working set (two when DoubleBuffer is set):
//     TailReservedBytes of temporaries, then LiveBuffers equal buffers of the
//     returned element count
//   - CalcBuffers more buffers of the same size, held once
type BudgetRequest struct {
	ScratchBytes  int64
	ElementBytes  int64
	BlockBytes    int64
	ReservedBytes int64

	// LiveBuffers is the number of equally sized buffers that coexist in one
	// pipeline stage (inputs, outputs and temporaries). Zero means 1.
	LiveBuffers int

	// TailReservedBytes is subtracted after the double-buffer split.
	TailReservedBytes int64

	// CalcBuffers counts kernel intermediates sized like a working buffer
	// that are not double buffered.
	CalcBuffers int

	DoubleBuffer bool
}

// BufferBudget is the result of ComputeBudget.
type BufferBudget struct {
	// Elements is the element capacity of one working buffer.
	Elements int64

	// DoubleBuffered reports whether two copies of the working set share the
	// scratch memory.
	DoubleBuffered bool
}

// Bytes returns the size in bytes of one working buffer.
func (b BufferBudget) Bytes(elementBytes int64) int64 {
	return b.Elements * elementBytes
}

// ComputeBudget returns how many elements fit in one core's working buffer.
//
// The usable scratch space is aligned down to BlockBytes so a core never works
// on a partial block. If the result is not positive it returns
// ErrInsufficientBudget; there is no implicit retry (see ComputeBudgetFallback).
func ComputeBudget(req BudgetRequest) (BufferBudget, error) {
	if req.ElementBytes <= 0 {
		return BufferBudget{}, fmt.Errorf("element width %d bytes: %w", req.ElementBytes, ErrInvalidConfiguration)
	}
	if req.BlockBytes <= 0 {
		return BufferBudget{}, fmt.Errorf("block alignment %d bytes: %w", req.BlockBytes, ErrInvalidConfiguration)
	}
	if req.BlockBytes%req.ElementBytes != 0 {
		return BufferBudget{}, fmt.Errorf("block of %d bytes does not hold whole %d-byte elements: %w",
			req.BlockBytes, req.ElementBytes, ErrInvalidConfiguration)
	}
	if req.LiveBuffers < 0 || req.CalcBuffers < 0 || req.ReservedBytes < 0 || req.TailReservedBytes < 0 {
		return BufferBudget{}, fmt.Errorf("negative reserve or buffer count: %w", ErrInvalidConfiguration)
	}

	copies := int64(1)
	if req.DoubleBuffer {
		copies = 2
	}
	live := max(int64(req.LiveBuffers), 1)
	avail := req.ScratchBytes - req.ReservedBytes - copies*req.TailReservedBytes
	avail /= live*copies + int64(req.CalcBuffers)
	avail = FloorAlign(avail, req.BlockBytes)

	elements := avail / req.ElementBytes
	if elements <= 0 {
		mode := "single"
		if req.DoubleBuffer {
			mode = "double"
		}
		return BufferBudget{}, fmt.Errorf("%d scratch bytes (%d reserved) hold no %d-byte block with %s buffering: %w",
			req.ScratchBytes, req.ReservedBytes, req.BlockBytes, mode, ErrInsufficientBudget)
	}
	return BufferBudget{Elements: elements, DoubleBuffered: req.DoubleBuffer}, nil
}

// ComputeBudgetFallback is the common caller policy on top of ComputeBudget:
// when a double-buffered budget is insufficient it recomputes once with
// double buffering disabled. Any other error is returned unchanged.
func ComputeBudgetFallback(req BudgetRequest) (budget BufferBudget, fellBack bool, err error) {
	budget, err = ComputeBudget(req)
	if err == nil || !req.DoubleBuffer || !errors.Is(err, ErrInsufficientBudget) {
		return budget, false, err
	}
	req.DoubleBuffer = false
	budget, err = ComputeBudget(req)
	return budget, err == nil, err
}

// CeilDiv returns ceil(a/b) for a >= 0 and b > 0.
func CeilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

// FloorAlign rounds a down to a multiple of b. Negative values round to 0.
func FloorAlign(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return a / b * b
}

// CeilAlign rounds a up to a multiple of b.
func CeilAlign(a, b int64) int64 {
	return CeilDiv(a, b) * b
}
