package codec

// vbyteCodec is the classic variable-byte codec: 7 payload bits per byte,
// the high bit set on every byte except the last one of an integer's
// encoding.
type vbyteCodec struct{}

func init() { Register(vbyteCodec{}) }

func (vbyteCodec) Name() string    { return "vbyte" }
func (vbyteCodec) ID() uint8       { return 1 }
func (vbyteCodec) MaxValue() uint64 { return 1<<32 - 1 }

func (vbyteCodec) Encode(dst []byte, xs []uint32) int {
	if len(xs) == 0 {
		return 0
	}
	n := 0
	for _, x := range xs {
		for {
			if n >= len(dst) {
				return 0
			}
			b := byte(x & 0x7f)
			x >>= 7
			if x != 0 {
				dst[n] = b | 0x80
				n++
				continue
			}
			dst[n] = b
			n++
			break
		}
	}
	return n
}

func (vbyteCodec) Decode(dst []uint32, src []byte) error {
	pos := 0
	for i := range dst {
		var v uint32
		shift := uint(0)
		for {
			if pos >= len(src) {
				return ErrShortBuffer
			}
			b := src[pos]
			pos++
			v |= uint32(b&0x7f) << shift
			if b&0x80 == 0 {
				break
			}
			shift += 7
			if shift > 35 {
				return ErrMalformed
			}
		}
		dst[i] = v
	}
	return nil
}

// streamVByteCodec packs integers in groups of 4: one control byte per
// group encoding each integer's byte length (1-4) in 2 bits, followed by
// the 4 integers' raw little-endian bytes with no continuation bits. This
// keeps the control stream byte-aligned and branch-light to decode,
// matching the "grouped control bytes" shape the family description
// calls for (SPEC_FULL.md §4.2); true Stream-VByte additionally
// de-interleaves the control-byte stream from the data-byte stream for
// SIMD-friendly decoding, which this scalar port does not do.
type streamVByteCodec struct{}

func init() { Register(streamVByteCodec{}) }

func (streamVByteCodec) Name() string     { return "stream-vbyte" }
func (streamVByteCodec) ID() uint8        { return 2 }
func (streamVByteCodec) MaxValue() uint64 { return 1<<32 - 1 }

func byteLen(x uint32) int {
	switch {
	case x < 1<<8:
		return 1
	case x < 1<<16:
		return 2
	case x < 1<<24:
		return 3
	default:
		return 4
	}
}

func (streamVByteCodec) Encode(dst []byte, xs []uint32) int {
	if len(xs) == 0 {
		return 0
	}
	n := 0
	for i := 0; i < len(xs); i += 4 {
		group := xs[i:min(i+4, len(xs))]
		if n >= len(dst) {
			return 0
		}
		ctrlPos := n
		n++
		var ctrl byte
		for j, x := range group {
			l := byteLen(x)
			ctrl |= byte(l-1) << uint(j*2)
			for k := 0; k < l; k++ {
				if n >= len(dst) {
					return 0
				}
				dst[n] = byte(x >> (8 * k))
				n++
			}
		}
		dst[ctrlPos] = ctrl
	}
	return n
}

func (streamVByteCodec) Decode(dst []uint32, src []byte) error {
	pos := 0
	for i := 0; i < len(dst); i += 4 {
		if pos >= len(src) {
			return ErrShortBuffer
		}
		ctrl := src[pos]
		pos++
		groupLen := min(4, len(dst)-i)
		for j := 0; j < groupLen; j++ {
			l := int((ctrl>>(uint(j)*2))&0x3) + 1
			if pos+l > len(src) {
				return ErrShortBuffer
			}
			var v uint32
			for k := 0; k < l; k++ {
				v |= uint32(src[pos+k]) << (8 * k)
			}
			pos += l
			dst[i+j] = v
		}
	}
	return nil
}
