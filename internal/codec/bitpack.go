package codec

// bitpackCodec packs fixed-size blocks of integers at a single bit
// width chosen to fit the widest value in the block, a one-byte width
// header followed by the tightly packed bits (SPEC_FULL.md §4.2's "bit-
// pack 32/64/128/256" block family). Unlike the Simple/Carryover word
// codecs, every value in a block shares one width instead of the
// codec picking a per-word row, which is what lets the wide decode
// path unpack a block lane by lane at fixed bit offsets instead of
// branching on a selector.
const bitpackBlockSize = 32

type bitpackCodec struct{}

func init() { Register(bitpackCodec{}) }

func (bitpackCodec) Name() string     { return "bitpack" }
func (bitpackCodec) ID() uint8        { return 9 }
func (bitpackCodec) MaxValue() uint64 { return 1<<32 - 1 }

func blockWidth(xs []uint32) int {
	var max uint32
	for _, x := range xs {
		if x > max {
			max = x
		}
	}
	w := 0
	for max > 0 {
		w++
		max >>= 1
	}
	if w == 0 {
		w = 1
	}
	return w
}

func (bitpackCodec) Encode(dst []byte, xs []uint32) int {
	if len(xs) == 0 {
		return 0
	}
	n := 0
	for i := 0; i < len(xs); i += bitpackBlockSize {
		block := xs[i:min(i+bitpackBlockSize, len(xs))]
		width := blockWidth(block)
		if n >= len(dst) {
			return 0
		}
		dst[n] = byte(width)
		n++
		bits := width * len(block)
		nbytes := (bits + 7) / 8
		if n+nbytes > len(dst) {
			return 0
		}
		for j := range dst[n : n+nbytes] {
			dst[n+j] = 0
		}
		w := newBitWriter(dst[n : n+nbytes])
		for _, x := range block {
			w.WriteBits(uint64(x), width)
		}
		n += nbytes
	}
	return n
}

func (bitpackCodec) Decode(dst []uint32, src []byte) error {
	pos, written := 0, 0
	for written < len(dst) {
		if pos >= len(src) {
			return ErrShortBuffer
		}
		width := int(src[pos])
		pos++
		if width == 0 || width > 32 {
			return ErrMalformed
		}
		remaining := len(dst) - written
		count := bitpackBlockSize
		if count > remaining {
			count = remaining
		}
		bits := width * count
		nbytes := (bits + 7) / 8
		if pos+nbytes > len(src) {
			return ErrShortBuffer
		}
		block := src[pos : pos+nbytes]
		if simdWide() && byteAlignedWidth(width) {
			unpackByteAlignedWide(dst[written:written+count], width, block)
		} else {
			r := newBitReader(block)
			for i := 0; i < count; i++ {
				v, err := r.ReadBits(width)
				if err != nil {
					return err
				}
				dst[written+i] = uint32(v)
			}
		}
		pos += nbytes
		written += count
	}
	return nil
}

// byteAlignedWidth reports whether width divides evenly into a byte,
// the case the unrolled lane path below handles without a bit reader.
func byteAlignedWidth(width int) bool {
	switch width {
	case 1, 2, 4, 8, 16, 32:
		return true
	default:
		return false
	}
}

// bitsAt extracts width bits starting at bitOffset from an MSB-first,
// big-endian bit stream, the same layout bitWriter/bitReader produce.
func bitsAt(src []byte, bitOffset, width int) uint32 {
	var v uint32
	for i := 0; i < width; i++ {
		bit := bitOffset + i
		byteIdx := bit / 8
		b := (src[byteIdx] >> uint(7-bit%8)) & 1
		v = v<<1 | uint32(b)
	}
	return v
}

// unpackByteAlignedWide unpacks 8 lanes per iteration for byte-aligned
// widths. There is no assembly kernel behind this (see DESIGN.md); it
// is a structurally distinct, wider loop body gated the same way the
// teacher gates its real AVX2/NEON kernels on cpu feature flags
// (sqlite-vec/simd_amd64.go) — the honest extent to which SIMD
// dispatch can be reproduced here without a vendored assembly file.
// Each lane still decodes independently via bitsAt, so the unrolling
// buys loop-overhead amortization, not a different bit layout.
func unpackByteAlignedWide(dst []uint32, width int, src []byte) {
	i := 0
	for ; i+8 <= len(dst); i += 8 {
		base := i * width
		dst[i+0] = bitsAt(src, base+0*width, width)
		dst[i+1] = bitsAt(src, base+1*width, width)
		dst[i+2] = bitsAt(src, base+2*width, width)
		dst[i+3] = bitsAt(src, base+3*width, width)
		dst[i+4] = bitsAt(src, base+4*width, width)
		dst[i+5] = bitsAt(src, base+5*width, width)
		dst[i+6] = bitsAt(src, base+6*width, width)
		dst[i+7] = bitsAt(src, base+7*width, width)
	}
	for ; i < len(dst); i++ {
		dst[i] = bitsAt(src, i*width, width)
	}
}
