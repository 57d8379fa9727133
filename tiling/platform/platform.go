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

// Package platform describes the compute resources a plan is made for: how
// many cores, how much scratch memory each core has, and the transfer
// granularity every buffer must be aligned to.
//
// Platforms come from named presets, from host detection, or from either one
// with environment overrides applied:
//
//	p, err := platform.FromEnv(platform.MustPreset("ai-core-40"))
//
// Environment variables:
//   - TILING_CORE_NUM: core count
//   - TILING_SCRATCH_BYTES: scratch memory per core
//   - TILING_BLOCK_BYTES: block alignment
//   - TILING_RESERVED_BYTES: scratch held by per-core bookkeeping
//   - TILING_MIN_CORE_BYTES: minimum work per core
//   - TILING_NO_DOUBLE_BUFFER: any true value disables double buffering
package platform

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
)

// Platform is plain data describing one target.
type Platform struct {
	Name string

	// CoreCount is the number of cores available to one operator invocation.
	CoreCount int

	// ScratchBytes is the per-core scratch (local buffer) capacity.
	ScratchBytes int64

	// BlockBytes is the transfer granularity; every buffer is a multiple of it.
	BlockBytes int64

	// ReservedBytes is scratch held on every core by bookkeeping structures
	// (e.g. the tiling header the launcher copies in).
	ReservedBytes int64

	// MinBytesPerCore, when positive, is the least amount of data worth
	// giving a core. Small problems then use fewer cores.
	MinBytesPerCore int64
}

// String returns a one-line description.
func (p Platform) String() string {
	return fmt.Sprintf("%s: %d cores, %d B scratch, %d B blocks, %d B reserved, %d B min/core",
		p.Name, p.CoreCount, p.ScratchBytes, p.BlockBytes, p.ReservedBytes, p.MinBytesPerCore)
}

// Known accelerator shapes. Scratch and block sizes follow the vector-core
// local buffer (192 KiB, 32-byte blocks); the reserve covers the tiling header.
var presets = map[string]Platform{
	"ai-core-40": {Name: "ai-core-40", CoreCount: 40, ScratchBytes: 192 * 1024, BlockBytes: 32, ReservedBytes: 512},
	"ai-core-48": {Name: "ai-core-48", CoreCount: 48, ScratchBytes: 192 * 1024, BlockBytes: 32, ReservedBytes: 512},
	"ai-core-8":  {Name: "ai-core-8", CoreCount: 8, ScratchBytes: 256 * 1024, BlockBytes: 32, ReservedBytes: 512},
}

// Preset returns the named platform. The name "host" returns Host().
func Preset(name string) (Platform, bool) {
	if name == "host" {
		return Host(), true
	}
	p, ok := presets[name]
	return p, ok
}

// MustPreset is Preset that panics on an unknown name.
func MustPreset(name string) Platform {
	p, ok := Preset(name)
	if !ok {
		panic(fmt.Sprintf("platform: unknown preset %q (known: %s)", name, strings.Join(PresetNames(), ", ")))
	}
	return p
}

// PresetNames returns the accepted preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets)+1)
	for name := range presets {
		names = append(names, name)
	}
	names = append(names, "host")
	slices.Sort(names)
	return names
}

// FromEnv returns base with any TILING_* overrides applied. Malformed values
// are reported instead of ignored.
func FromEnv(base Platform) (Platform, error) {
	p := base
	if v, ok := os.LookupEnv("TILING_CORE_NUM"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return base, fmt.Errorf("TILING_CORE_NUM=%q: %w", v, err)
		}
		p.CoreCount = n
	}
	for _, f := range []struct {
		env string
		dst *int64
	}{
		{"TILING_SCRATCH_BYTES", &p.ScratchBytes},
		{"TILING_BLOCK_BYTES", &p.BlockBytes},
		{"TILING_RESERVED_BYTES", &p.ReservedBytes},
		{"TILING_MIN_CORE_BYTES", &p.MinBytesPerCore},
	} {
		v, ok := os.LookupEnv(f.env)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return base, fmt.Errorf("%s=%q: %w", f.env, v, err)
		}
		*f.dst = n
	}
	return p, nil
}

// NoDoubleBufferEnv checks if the TILING_NO_DOUBLE_BUFFER environment variable
// is set. Any non-empty value is true unless it parses as a false bool.
func NoDoubleBufferEnv() bool {
	val := os.Getenv("TILING_NO_DOUBLE_BUFFER")
	if val == "" {
		return false
	}
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	return true
}
