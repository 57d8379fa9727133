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
	"maps"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// OperatorKind is the closed set of operator families the planner knows how to
// budget for.
type OperatorKind int

const (
	KindMulScalar OperatorKind = iota
	KindLog
	KindBinaryList
	KindPointwise
	KindPowScalar
	KindCos
	KindLog2
	KindNeg
	KindPowTensor
	KindBinaryScalar
	KindPointwiseList
	KindSigmoid
	KindMultiTensorApply

	numOperatorKinds
)

var kindNames = [numOperatorKinds]string{
	KindMulScalar:        "mul-scalar",
	KindLog:              "log",
	KindBinaryList:       "binary-list",
	KindPointwise:        "pointwise",
	KindPowScalar:        "pow-scalar",
	KindCos:              "cos",
	KindLog2:             "log2",
	KindNeg:              "neg",
	KindPowTensor:        "pow-tensor",
	KindBinaryScalar:     "binary-scalar",
	KindPointwiseList:    "pointwise-list",
	KindSigmoid:          "sigmoid",
	KindMultiTensorApply: "multi-tensor-apply",
}

// Valid reports whether k is one of the declared kinds.
func (k OperatorKind) Valid() bool { return k >= 0 && k < numOperatorKinds }

func (k OperatorKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("OperatorKind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseOperatorKind is the inverse of OperatorKind.String.
func ParseOperatorKind(s string) (OperatorKind, error) {
	if i := slices.Index(kindNames[:], strings.ToLower(strings.TrimSpace(s))); i >= 0 {
		return OperatorKind(i), nil
	}
	return 0, fmt.Errorf("unknown operator kind %q: %w", s, ErrInvalidConfiguration)
}

// ReductionMode is the reduction an operator applies, if any. It only affects
// variant selection.
type ReductionMode int

const (
	ReductionNone ReductionMode = iota
	ReductionSum
	ReductionMean

	// AnyReduction is only meaningful in a VariantRule, where it matches every mode.
	AnyReduction ReductionMode = -1
)

func (r ReductionMode) String() string {
	switch r {
	case ReductionNone:
		return "none"
	case ReductionSum:
		return "sum"
	case ReductionMean:
		return "mean"
	case AnyReduction:
		return "any"
	default:
		return fmt.Sprintf("ReductionMode(%d)", int(r))
	}
}

// ParseReductionMode accepts "none", "sum" and "mean".
func ParseReductionMode(s string) (ReductionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ReductionNone, nil
	case "sum":
		return ReductionSum, nil
	case "mean":
		return ReductionMean, nil
	}
	return 0, fmt.Errorf("unknown reduction mode %q: %w", s, ErrInvalidConfiguration)
}

// VariantRule maps an element type and reduction mode to a kernel variant tag.
type VariantRule struct {
	DType     DType
	Reduction ReductionMode
	Tag       uint32
}

// ScratchCoefficients describe how an operator carves up scratch memory. See
// BudgetRequest for how each field is applied.
type ScratchCoefficients struct {
	LiveBuffers       int
	CalcBuffers       int
	ReservedBytes     int64
	TailReservedBytes int64
}

// Coefficients is the per-operator-kind planning data held in a Registry.
type Coefficients struct {
	Scratch ScratchCoefficients

	// ByDType replaces Scratch for specific element types.
	ByDType map[DType]ScratchCoefficients

	// MinBytesPerCore, when positive, overrides the platform's minimum amount
	// of work per core.
	MinBytesPerCore int64

	// Variants are tried in order; the first match wins.
	Variants []VariantRule
}

// ScratchFor returns the scratch coefficients for element type d.
func (c Coefficients) ScratchFor(d DType) ScratchCoefficients {
	if s, ok := c.ByDType[d]; ok {
		return s
	}
	return c.Scratch
}

// SelectVariant returns the tag of the first rule matching d and r.
func (c Coefficients) SelectVariant(d DType, r ReductionMode) (uint32, error) {
	for _, rule := range c.Variants {
		if rule.DType == d && (rule.Reduction == AnyReduction || rule.Reduction == r) {
			return rule.Tag, nil
		}
	}
	return 0, fmt.Errorf("no kernel variant for dtype %s with reduction %s: %w", d, r, ErrInvalidConfiguration)
}

func (c Coefficients) validate() error {
	check := func(s ScratchCoefficients) error {
		if s.LiveBuffers < 0 || s.CalcBuffers < 0 || s.ReservedBytes < 0 || s.TailReservedBytes < 0 {
			return fmt.Errorf("negative scratch coefficient %+v: %w", s, ErrInvalidConfiguration)
		}
		return nil
	}
	if err := check(c.Scratch); err != nil {
		return err
	}
	for _, s := range c.ByDType {
		if err := check(s); err != nil {
			return err
		}
	}
	if c.MinBytesPerCore < 0 {
		return fmt.Errorf("negative minimum bytes per core %d: %w", c.MinBytesPerCore, ErrInvalidConfiguration)
	}
	if len(c.Variants) == 0 {
		return fmt.Errorf("no kernel variants: %w", ErrInvalidConfiguration)
	}
	return nil
}

// Registry maps operator kinds to their Coefficients. It is built once by
// explicit Register calls and then only read; concurrent Lookups are safe once
// registration is finished.
type Registry struct {
	entries map[OperatorKind]Coefficients
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[OperatorKind]Coefficients)}
}

// Register adds the coefficients for kind. Registering a kind twice or an
// undeclared kind is an error. The coefficients are copied.
func (r *Registry) Register(kind OperatorKind, c Coefficients) error {
	if !kind.Valid() {
		return fmt.Errorf("register %s: %w", kind, ErrInvalidConfiguration)
	}
	if _, dup := r.entries[kind]; dup {
		return fmt.Errorf("register %s: already registered: %w", kind, ErrInvalidConfiguration)
	}
	if err := c.validate(); err != nil {
		return fmt.Errorf("register %s: %w", kind, err)
	}
	c.ByDType = maps.Clone(c.ByDType)
	c.Variants = slices.Clone(c.Variants)
	r.entries[kind] = c
	return nil
}

// Lookup returns the coefficients registered for kind.
func (r *Registry) Lookup(kind OperatorKind) (Coefficients, error) {
	c, ok := r.entries[kind]
	if !ok {
		return Coefficients{}, fmt.Errorf("operator kind %s not registered: %w", kind, ErrInvalidConfiguration)
	}
	return c, nil
}

// Kinds returns the registered kinds in ascending order.
func (r *Registry) Kinds() []OperatorKind {
	kinds := lo.Keys(r.entries)
	slices.Sort(kinds)
	return kinds
}

// Len returns the number of registered kinds.
func (r *Registry) Len() int { return len(r.entries) }
