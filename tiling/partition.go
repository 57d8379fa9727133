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

// Partition is the block-level split of T elements across cores.
type Partition struct {
	TotalElements    int64
	ElementsPerBlock int64
	TotalBlocks      int64

	// Blocks[i] is the number of blocks owned by core i. Its length is the
	// number of used cores.
	Blocks []int64

	// Quotas[i] is Blocks[i]*ElementsPerBlock, except the last core which is
	// capped at what remains of TotalElements.
	Quotas []int64
}

// UsedCores returns the number of cores that receive work.
func (p Partition) UsedCores() int { return len(p.Blocks) }

// PartitionCores splits total elements into contiguous block-aligned ranges
// over at most availableCores cores.
//
// It never uses more cores than there are blocks. With
// base = totalBlocks/used and remainder = totalBlocks%used, cores
// [0, remainder) get base+1 blocks and the rest get base blocks. Only the last
// core may have a quota that is not a multiple of elementsPerBlock.
//
// total == 0 returns an empty Partition and no error.
func PartitionCores(total, elementsPerBlock int64, availableCores int) (Partition, error) {
	if availableCores <= 0 {
		return Partition{}, fmt.Errorf("available core count %d: %w", availableCores, ErrInvalidConfiguration)
	}
	if elementsPerBlock <= 0 {
		return Partition{}, fmt.Errorf("elements per block %d: %w", elementsPerBlock, ErrInvalidConfiguration)
	}
	if total < 0 {
		return Partition{}, fmt.Errorf("total element count %d: %w", total, ErrShapeMismatch)
	}
	totalBlocks := CeilDiv(total, elementsPerBlock)
	used := int(min(totalBlocks, int64(availableCores)))
	return partition(total, elementsPerBlock, totalBlocks, used), nil
}

// PartitionExact is PartitionCores with a caller-chosen core count. Asking for
// more cores than there are blocks is ErrShapeMismatch, since some core would
// receive no work.
func PartitionExact(total, elementsPerBlock int64, needCores int) (Partition, error) {
	if needCores <= 0 {
		return Partition{}, fmt.Errorf("core count %d: %w", needCores, ErrInvalidConfiguration)
	}
	if elementsPerBlock <= 0 {
		return Partition{}, fmt.Errorf("elements per block %d: %w", elementsPerBlock, ErrInvalidConfiguration)
	}
	if total < 0 {
		return Partition{}, fmt.Errorf("total element count %d: %w", total, ErrShapeMismatch)
	}
	totalBlocks := CeilDiv(total, elementsPerBlock)
	if int64(needCores) > totalBlocks {
		return Partition{}, fmt.Errorf("%d cores requested for %d blocks: %w", needCores, totalBlocks, ErrShapeMismatch)
	}
	return partition(total, elementsPerBlock, totalBlocks, needCores), nil
}

func partition(total, elementsPerBlock, totalBlocks int64, used int) Partition {
	p := Partition{
		TotalElements:    total,
		ElementsPerBlock: elementsPerBlock,
		TotalBlocks:      totalBlocks,
	}
	if used == 0 {
		return p
	}

	// One backing array for both slices.
	buf := make([]int64, 2*used)
	p.Blocks = buf[:used:used]
	p.Quotas = buf[used:]

	base := totalBlocks / int64(used)
	remainder := totalBlocks % int64(used)
	left := total
	for i := range used {
		blocks := base
		if int64(i) < remainder {
			blocks++
		}
		quota := min(blocks*elementsPerBlock, left)
		p.Blocks[i] = blocks
		p.Quotas[i] = quota
		left -= quota
	}
	return p
}
