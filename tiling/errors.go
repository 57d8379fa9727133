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

import "errors"

// Planning failures. Every error returned by this package wraps exactly one of
// these, so callers can branch with errors.Is.
var (
	// ErrInvalidConfiguration reports parameters that leave the arithmetic
	// undefined: zero cores, zero block size, zero element width, or an unknown
	// operator kind or variant.
	ErrInvalidConfiguration = errors.New("tiling: invalid configuration")

	// ErrInsufficientBudget reports a scratch memory too small to hold a single
	// aligned block under the requested buffering mode.
	ErrInsufficientBudget = errors.New("tiling: insufficient scratch budget")

	// ErrShapeMismatch reports segment lengths and core quotas that disagree,
	// or a request for more cores than there are blocks of work.
	ErrShapeMismatch = errors.New("tiling: shape mismatch")
)
