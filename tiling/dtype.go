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
	"strings"

	"github.com/x448/float16"
)

// DType is the element type of the tensors being planned.
type DType int

const (
	// InvalidDType is the zero value and is rejected by the planner.
	InvalidDType DType = iota
	Float16
	BFloat16
	Float32
	Float64
	Int8
	Int16
	Int32
	Int64
)

// BFloat16Bits is the storage type used for bfloat16 elements.
// It only exists so DTypeOf can tell bfloat16 apart from uint16 data.
type BFloat16Bits uint16

// Element lists the Go types that can describe tensor elements.
type Element interface {
	float16.Float16 | BFloat16Bits | float32 | float64 | int8 | int16 | int32 | int64
}

// Size returns the element width in bytes, or 0 for an invalid DType.
func (d DType) Size() int64 {
	switch d {
	case Int8:
		return 1
	case Float16, BFloat16, Int16:
		return 2
	case Float32, Int32:
		return 4
	case Float64, Int64:
		return 8
	default:
		return 0
	}
}

// String returns the lower-case name used by the CLI.
func (d DType) String() string {
	switch d {
	case Float16:
		return "float16"
	case BFloat16:
		return "bfloat16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	default:
		return "invalid"
	}
}

// ParseDType accepts the names returned by String plus the short aliases
// "half", "float", "bf16", "f16", "f32" and "f64".
func ParseDType(s string) (DType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float16", "f16", "half":
		return Float16, nil
	case "bfloat16", "bf16":
		return BFloat16, nil
	case "float32", "f32", "float":
		return Float32, nil
	case "float64", "f64", "double":
		return Float64, nil
	case "int8":
		return Int8, nil
	case "int16":
		return Int16, nil
	case "int32", "int":
		return Int32, nil
	case "int64":
		return Int64, nil
	}
	return InvalidDType, fmt.Errorf("unknown dtype %q: %w", s, ErrInvalidConfiguration)
}

// DTypeOf returns the DType for the Go element type T.
func DTypeOf[T Element]() DType {
	var zero T
	switch any(zero).(type) {
	case float16.Float16:
		return Float16
	case BFloat16Bits:
		return BFloat16
	case float32:
		return Float32
	case float64:
		return Float64
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	}
	return InvalidDType
}
