package codec

// eliasDeltaCodec is Elias delta: the exponent exp = floor_log2(v) is
// itself gamma-coded as exp+1, followed by the exp remaining bits of v
// below its leading 1 bit. Delta trades a slightly longer code for
// small values against a shorter one for large values compared to
// gamma, since the exponent's own length grows logarithmically rather
// than linearly (same restriction as gamma: v must be >= 1).
type eliasDeltaCodec struct{}

func init() { Register(eliasDeltaCodec{}) }

func (eliasDeltaCodec) Name() string     { return "elias-delta" }
func (eliasDeltaCodec) ID() uint8        { return 8 }
func (eliasDeltaCodec) MaxValue() uint64 { return 1<<32 - 1 }

func (eliasDeltaCodec) Encode(dst []byte, xs []uint32) int {
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
		expCode := exp + 1
		expExp := floorLog2(uint64(expCode))
		for i := uint(0); i < expExp; i++ {
			w.WriteBit(0)
		}
		w.WriteBits(uint64(expCode), int(expExp)+1)
		w.WriteBits(uint64(x), int(exp))
	}
	if w.overrun {
		return 0
	}
	return w.BytesWritten()
}

func (eliasDeltaCodec) Decode(dst []uint32, src []byte) error {
	r := newBitReader(src)
	for i := range dst {
		var expExp uint
		for {
			b, err := r.ReadBit()
			if err != nil {
				return err
			}
			if b != 0 {
				break
			}
			expExp++
			if expExp > 31 {
				return ErrMalformed
			}
		}
		rest, err := r.ReadBits(int(expExp))
		if err != nil {
			return err
		}
		expCode := (uint64(1) << expExp) | rest
		if expCode == 0 {
			return ErrMalformed
		}
		exp := expCode - 1
		if exp > 31 {
			return ErrMalformed
		}
		tail, err := r.ReadBits(int(exp))
		if err != nil {
			return err
		}
		dst[i] = uint32((uint64(1) << exp) | tail)
	}
	return nil
}
