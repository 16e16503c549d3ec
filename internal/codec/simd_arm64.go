//go:build arm64

package codec

import "golang.org/x/sys/cpu"

var hasNEON = cpu.ARM64.HasASIMD

func simdCapability() string {
	if hasNEON {
		return "NEON (arm64, unrolled Go fallback)"
	}
	return "scalar (arm64)"
}

func simdWide() bool {
	return hasNEON
}
