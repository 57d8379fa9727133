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

package platform

import "runtime"

// defaultHostScratchBytes is the per-core working set assumed on CPUs: about
// one L2 slice.
const defaultHostScratchBytes = 256 * 1024

// hostBlockBytes is the vector register width in bytes of the host.
// Set by init() in host_*.go files.
var hostBlockBytes int64

// hostName names the detected vector unit, e.g. "avx2" or "neon".
// Set by init() in host_*.go files.
var hostName string

// Host describes the machine the process runs on: one core per logical CPU,
// blocks as wide as the widest usable vector register.
func Host() Platform {
	return Platform{
		Name:         "host-" + hostName,
		CoreCount:    runtime.NumCPU(),
		ScratchBytes: defaultHostScratchBytes,
		BlockBytes:   hostBlockBytes,
	}
}
