//go:build amd64

package accumulator

import "golang.org/x/sys/cpu"

var hasAVX2 = cpu.X86.HasAVX2

// addVector dispatches AddVector's page-clearing gather/add to an
// 8-lanes-unrolled loop when the CPU reports AVX2, mirroring the
// teacher's cpu.X86.HasAVX2 gate in sqlite-vec/simd_amd64.go. There is
// no real gather/scatter instruction behind this build (no assembly
// can be authored here, see DESIGN.md); the unrolled loop produces
// identical results to the scalar fallback.
func addVector(t *Table, ids []uint32, delta uint32) {
	if !hasAVX2 {
		addVectorScalar(t, ids, delta)
		return
	}
	i := 0
	for ; i+8 <= len(ids); i += 8 {
		t.Add(ids[i+0], delta)
		t.Add(ids[i+1], delta)
		t.Add(ids[i+2], delta)
		t.Add(ids[i+3], delta)
		t.Add(ids[i+4], delta)
		t.Add(ids[i+5], delta)
		t.Add(ids[i+6], delta)
		t.Add(ids[i+7], delta)
	}
	for ; i < len(ids); i++ {
		t.Add(ids[i], delta)
	}
}
