//go:build !amd64 && !arm64

package codec

func simdCapability() string {
	return "scalar (no SIMD feature gating for this platform)"
}

func simdWide() bool {
	return false
}
