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

// Scratch layout constants shared by the standard operator kinds.
const (
	// basicBlockBytes is the temporary area unit used by transcendental kernels.
	basicBlockBytes = 1024

	// Basic blocks per element byte the pow-scalar kernel keeps for its
	// series expansion.
	powScalarTermsHalf  = 14
	powScalarTermsFloat = 4

	// Working-buffer sized intermediates of the pow-tensor kernel.
	powTensorCalcHalf  = 12
	powTensorCalcFloat = 3

	// multiTensorMinCoreBytes keeps multi-tensor-apply from spreading tiny
	// tensor lists over every core.
	multiTensorMinCoreBytes = 256

	// Variant tag offsets for reductions, added to the per-dtype base tag.
	variantSumOffset  = 16
	variantMeanOffset = 32
)

// Base variant tags per element type. Float16, Float32 and Int32 keep the
// values the launcher has always used.
var baseVariantTags = []struct {
	dtype DType
	tag   uint32
}{
	{Float16, 1},
	{Float32, 2},
	{Int32, 3},
	{BFloat16, 4},
}

// StandardVariants returns the default variant table: one tag per supported
// element type and reduction mode.
func StandardVariants() []VariantRule {
	rules := make([]VariantRule, 0, 3*len(baseVariantTags))
	for _, b := range baseVariantTags {
		rules = append(rules,
			VariantRule{DType: b.dtype, Reduction: ReductionNone, Tag: b.tag},
			VariantRule{DType: b.dtype, Reduction: ReductionSum, Tag: b.tag + variantSumOffset},
			VariantRule{DType: b.dtype, Reduction: ReductionMean, Tag: b.tag + variantMeanOffset},
		)
	}
	return rules
}

// NewStandardRegistry returns a Registry populated with the standard operator
// kinds. Each stage holds LiveBuffers buffers, and the double-buffer split
// happens on top of that, so e.g. binary-list (two inputs, one output) uses a
// sixth of the scratch per buffer when double buffered.
func NewStandardRegistry() *Registry {
	r := NewRegistry()
	variants := StandardVariants()
	mustRegister := func(kind OperatorKind, c Coefficients) {
		c.Variants = variants
		if err := r.Register(kind, c); err != nil {
			panic(err)
		}
	}

	// One in-place buffer.
	mustRegister(KindMulScalar, Coefficients{Scratch: ScratchCoefficients{LiveBuffers: 1}})
	mustRegister(KindLog, Coefficients{Scratch: ScratchCoefficients{LiveBuffers: 1, ReservedBytes: basicBlockBytes}})
	mustRegister(KindNeg, Coefficients{Scratch: ScratchCoefficients{LiveBuffers: 1, TailReservedBytes: 32}})
	mustRegister(KindLog2, Coefficients{
		Scratch: ScratchCoefficients{LiveBuffers: 1},
		ByDType: map[DType]ScratchCoefficients{
			// float16 log2 is computed in float32 and needs 4 basic blocks per byte.
			Float16:  {LiveBuffers: 1, TailReservedBytes: basicBlockBytes * 4 * 2},
			BFloat16: {LiveBuffers: 1, TailReservedBytes: basicBlockBytes * 4 * 2},
		},
	})

	// Two inputs and one output.
	mustRegister(KindBinaryList, Coefficients{Scratch: ScratchCoefficients{LiveBuffers: 3}})
	mustRegister(KindSigmoid, Coefficients{Scratch: ScratchCoefficients{LiveBuffers: 3, ReservedBytes: basicBlockBytes}})

	// Input and output.
	mustRegister(KindBinaryScalar, Coefficients{Scratch: ScratchCoefficients{LiveBuffers: 2}})
	mustRegister(KindPowScalar, Coefficients{
		Scratch: ScratchCoefficients{LiveBuffers: 2, ReservedBytes: basicBlockBytes * powScalarTermsFloat * 4},
		ByDType: map[DType]ScratchCoefficients{
			Float16:  {LiveBuffers: 2, ReservedBytes: basicBlockBytes * powScalarTermsHalf * 2},
			BFloat16: {LiveBuffers: 2, ReservedBytes: basicBlockBytes * powScalarTermsHalf * 2},
		},
	})
	mustRegister(KindCos, Coefficients{
		Scratch: ScratchCoefficients{LiveBuffers: 2, ReservedBytes: basicBlockBytes * 4 * 4},
		ByDType: map[DType]ScratchCoefficients{
			Float16:  {LiveBuffers: 2, ReservedBytes: basicBlockBytes * 6 * 2},
			BFloat16: {LiveBuffers: 2, ReservedBytes: basicBlockBytes * 6 * 2},
		},
	})

	// Three inputs and one output.
	mustRegister(KindPointwise, Coefficients{Scratch: ScratchCoefficients{LiveBuffers: 4}})

	// Four inputs and one output.
	mustRegister(KindPointwiseList, Coefficients{Scratch: ScratchCoefficients{LiveBuffers: 5}})

	// Two inputs and one output, double buffered, plus single intermediates
	// that are widened to float32 for half precision.
	mustRegister(KindPowTensor, Coefficients{
		Scratch: ScratchCoefficients{LiveBuffers: 3, CalcBuffers: powTensorCalcFloat},
		ByDType: map[DType]ScratchCoefficients{
			Float16:  {LiveBuffers: 3, CalcBuffers: powTensorCalcHalf},
			BFloat16: {LiveBuffers: 3, CalcBuffers: powTensorCalcHalf},
		},
	})

	// A list of depth 3 plus one live intermediate, one block of headroom.
	mustRegister(KindMultiTensorApply, Coefficients{
		Scratch:         ScratchCoefficients{LiveBuffers: 4, ReservedBytes: 32},
		MinBytesPerCore: multiTensorMinCoreBytes,
	})
	return r
}
