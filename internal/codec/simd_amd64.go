//go:build amd64

package codec

import "golang.org/x/sys/cpu"

var (
	hasAVX2   = cpu.X86.HasAVX2
	hasAVX512 = cpu.X86.HasAVX512F
)

func simdCapability() string {
	if hasAVX512 {
		return "AVX-512 (amd64, unrolled Go fallback)"
	}
	if hasAVX2 {
		return "AVX2 (amd64, unrolled Go fallback)"
	}
	return "scalar (amd64)"
}

// simdWide reports whether the wide, lane-unrolled bit-unpack path
// should be used instead of the bit-by-bit scalar one. There is no
// assembly kernel behind this build (see DESIGN.md); the flag still
// gates a structurally distinct, 8-lanes-at-once Go loop the way the
// teacher's dotProductSIMD gates dotProductAVX2/dotProductSSE on the
// same cpu feature flags (sqlite-vec/simd_amd64.go).
func simdWide() bool {
	return hasAVX2 || hasAVX512
}
