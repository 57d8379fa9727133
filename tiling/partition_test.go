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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPartitionCores(t *testing.T) {
	tests := []struct {
		name       string
		total, epb int64
		cores      int
		wantBlocks []int64
		wantQuotas []int64
	}{
		{"two cores", 35, 4, 2, []int64{5, 4}, []int64{20, 15}},
		{"fewer blocks than cores", 3, 4, 8, []int64{1}, []int64{3}},
		{"exact blocks", 32, 4, 4, []int64{2, 2, 2, 2}, []int64{8, 8, 8, 8}},
		{"remainder spread", 40, 4, 3, []int64{4, 3, 3}, []int64{16, 12, 12}},
		{"short last block", 41, 4, 3, []int64{4, 4, 3}, []int64{16, 16, 9}},
		{"single core", 1000, 8, 1, []int64{125}, []int64{1000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := PartitionCores(tt.total, tt.epb, tt.cores)
			if err != nil {
				t.Fatalf("PartitionCores(%d, %d, %d) error: %v", tt.total, tt.epb, tt.cores, err)
			}
			if diff := cmp.Diff(tt.wantBlocks, p.Blocks); diff != "" {
				t.Errorf("Blocks mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantQuotas, p.Quotas); diff != "" {
				t.Errorf("Quotas mismatch (-want +got):\n%s", diff)
			}
			if p.UsedCores() != len(tt.wantBlocks) {
				t.Errorf("UsedCores = %d, want %d", p.UsedCores(), len(tt.wantBlocks))
			}
		})
	}
}

func TestPartitionCoresEmpty(t *testing.T) {
	p, err := PartitionCores(0, 4, 8)
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if p.UsedCores() != 0 || p.TotalBlocks != 0 {
		t.Errorf("got %+v, want no cores and no blocks", p)
	}
}

func TestPartitionCoresErrors(t *testing.T) {
	tests := []struct {
		name       string
		total, epb int64
		cores      int
		want       error
	}{
		{"no cores", 10, 4, 0, ErrInvalidConfiguration},
		{"negative cores", 10, 4, -1, ErrInvalidConfiguration},
		{"zero block", 10, 0, 2, ErrInvalidConfiguration},
		{"negative total", -1, 4, 2, ErrShapeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := PartitionCores(tt.total, tt.epb, tt.cores); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPartitionCoresProperties(t *testing.T) {
	for total := int64(0); total <= 150; total++ {
		for epb := int64(1); epb <= 9; epb++ {
			for cores := 1; cores <= 12; cores++ {
				p, err := PartitionCores(total, epb, cores)
				if err != nil {
					t.Fatalf("PartitionCores(%d, %d, %d) error: %v", total, epb, cores, err)
				}
				checkPartition(t, p, total, epb, cores)
			}
		}
	}
}

func checkPartition(t *testing.T, p Partition, total, epb int64, cores int) {
	t.Helper()
	totalBlocks := CeilDiv(total, epb)
	wantUsed := int(min(totalBlocks, int64(cores)))
	if p.UsedCores() != wantUsed {
		t.Fatalf("T=%d epb=%d A=%d: used %d cores, want %d", total, epb, cores, p.UsedCores(), wantUsed)
	}
	if wantUsed == 0 {
		return
	}
	base := totalBlocks / int64(wantUsed)
	remainder := totalBlocks % int64(wantUsed)
	var blocks, quotas int64
	for i := range wantUsed {
		want := base
		if int64(i) < remainder {
			want++
		}
		if p.Blocks[i] != want {
			t.Fatalf("T=%d epb=%d A=%d: core %d has %d blocks, want %d", total, epb, cores, i, p.Blocks[i], want)
		}
		if p.Quotas[i] <= 0 {
			t.Fatalf("T=%d epb=%d A=%d: core %d has quota %d", total, epb, cores, i, p.Quotas[i])
		}
		if i < wantUsed-1 && p.Quotas[i] != p.Blocks[i]*epb {
			t.Fatalf("T=%d epb=%d A=%d: core %d quota %d is not block aligned", total, epb, cores, i, p.Quotas[i])
		}
		blocks += p.Blocks[i]
		quotas += p.Quotas[i]
	}
	if blocks != totalBlocks {
		t.Fatalf("T=%d epb=%d A=%d: blocks sum to %d, want %d", total, epb, cores, blocks, totalBlocks)
	}
	if quotas != total {
		t.Fatalf("T=%d epb=%d A=%d: quotas sum to %d, want %d", total, epb, cores, quotas, total)
	}
}

func TestPartitionExact(t *testing.T) {
	p, err := PartitionExact(35, 4, 9)
	if err != nil {
		t.Fatalf("PartitionExact(35, 4, 9) error: %v", err)
	}
	if diff := cmp.Diff([]int64{4, 4, 4, 4, 4, 4, 4, 4, 3}, p.Quotas); diff != "" {
		t.Errorf("Quotas mismatch (-want +got):\n%s", diff)
	}

	if _, err := PartitionExact(35, 4, 10); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("more cores than blocks: error = %v, want ErrShapeMismatch", err)
	}
	if _, err := PartitionExact(35, 4, 0); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("zero cores: error = %v, want ErrInvalidConfiguration", err)
	}
}

func BenchmarkPartitionCores(b *testing.B) {
	for b.Loop() {
		_, _ = PartitionCores(1<<20+3, 8, 40)
	}
}
