package codec

// eliasGammaCodec is a bitwise Elias gamma codec: a value v >= 1 is
// written as floor_log2(v) zero bits followed by the floor_log2(v)+1
// bits of v itself, MSB first (original_source/
// compress_integer_elias_gamma_bitwise.h). Gamma has no representation
// for 0, so every value in xs must satisfy x >= 1; D-gap-encoded DocID
// runs never contain a 0 gap (SPEC_FULL.md §3), so this is not a
// practical restriction for postings use.
type eliasGammaCodec struct{}

func init() { Register(eliasGammaCodec{}) }

func (eliasGammaCodec) Name() string     { return "elias-gamma" }
func (eliasGammaCodec) ID() uint8        { return 7 }
func (eliasGammaCodec) MaxValue() uint64 { return 1<<32 - 1 }

func floorLog2(v uint64) uint {
	var exp uint
	for v > 1 {
		v >>= 1
		exp++
	}
	return exp
}

func (eliasGammaCodec) Encode(dst []byte, xs []uint32) int {
	if len(xs) == 0 {
		return 0
	}
	for i := range dst {
		dst[i] = 0
	}
	w := newBitWriter(dst)
	for _, x := range xs {
		if x == 0 {
			return 0
		}
		exp := floorLog2(uint64(x))
		for i := uint(0); i < exp; i++ {
			w.WriteBit(0)
		}
		w.WriteBits(uint64(x), int(exp)+1)
	}
	if w.overrun {
		return 0
	}
	return w.BytesWritten()
}

func (eliasGammaCodec) Decode(dst []uint32, src []byte) error {
	r := newBitReader(src)
	for i := range dst {
		var exp uint
		for {
			b, err := r.ReadBit()
			if err != nil {
				return err
			}
			if b != 0 {
				break
			}
			exp++
			if exp > 31 {
				return ErrMalformed
			}
		}
		rest, err := r.ReadBits(int(exp))
		if err != nil {
			return err
		}
		dst[i] = uint32((uint64(1) << exp) | rest)
	}
	return nil
}
