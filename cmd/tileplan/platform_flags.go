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

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ajroetker/go-tiling/tiling/platform"
)

// platformFlags select and override the target platform.
type platformFlags struct {
	preset       string
	cores        int
	scratchBytes int64
	blockBytes   int64
	reserved     int64
	minCoreBytes int64
}

func (f *platformFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.preset, "preset", "ai-core-40", "Platform preset ("+strings.Join(platform.PresetNames(), ", ")+")")
	fs.IntVar(&f.cores, "cores", 0, "Override the available core count")
	fs.Int64Var(&f.scratchBytes, "scratch", 0, "Override the per-core scratch bytes")
	fs.Int64Var(&f.blockBytes, "block", 0, "Override the block alignment in bytes")
	fs.Int64Var(&f.reserved, "reserved", 0, "Override the per-core reserved scratch bytes")
	fs.Int64Var(&f.minCoreBytes, "min-core-bytes", 0, "Override the minimum bytes of work per core")
}

// resolve applies, in order: the preset, TILING_* environment variables, and
// the flags the user actually set.
func (f *platformFlags) resolve(fs *pflag.FlagSet) (platform.Platform, error) {
	base, ok := platform.Preset(f.preset)
	if !ok {
		return platform.Platform{}, fmt.Errorf("unknown preset %q (known: %s)", f.preset, strings.Join(platform.PresetNames(), ", "))
	}
	p, err := platform.FromEnv(base)
	if err != nil {
		return platform.Platform{}, err
	}
	if fs.Changed("cores") {
		p.CoreCount = f.cores
	}
	if fs.Changed("scratch") {
		p.ScratchBytes = f.scratchBytes
	}
	if fs.Changed("block") {
		p.BlockBytes = f.blockBytes
	}
	if fs.Changed("reserved") {
		p.ReservedBytes = f.reserved
	}
	if fs.Changed("min-core-bytes") {
		p.MinBytesPerCore = f.minCoreBytes
	}
	return p, nil
}
