package codec

import "encoding/binary"

// carryoverRows is the 12-row table for Carryover-12: each row's Count
// times Width is at most 28 payload bits, matching Simple-9's 28-bit
// budget, but the table is extended to 12 entries so several rows leave
// exactly 4 spare bits — room enough to carry the *next* word's 4-bit
// selector, avoiding a second word fetch to learn how to decode it
// (original_source/compress_integer_carryover_12.h; V. Anh, A. Moffat
// (2005), Inverted Index Compression Using Word-Aligned Binary Codes).
var carryoverRows = []packRow{
	{28, 1}, {14, 2}, {9, 3}, {7, 4}, {5, 5}, {4, 6}, {4, 7}, {3, 8}, {3, 9}, {2, 12}, {2, 14}, {1, 28},
}

// carriesSelector reports whether row leaves at least 4 spare payload
// bits once Count values of Width bits are packed, which is exactly the
// condition under which this word can also carry the next word's
// selector nibble.
func carriesSelector(row packRow) (spareBitOffset int, ok bool) {
	spare := 28 - row.Count*row.Width
	if spare >= 4 {
		return row.Count * row.Width, true
	}
	return 0, false
}

type carryover12Codec struct{}

func init() { Register(carryover12Codec{}) }

func (carryover12Codec) Name() string     { return "carryover12" }
func (carryover12Codec) ID() uint8        { return 5 }
func (carryover12Codec) MaxValue() uint64 { return 1<<28 - 1 }

// Encode packs xs into 32-bit words of the form [4-bit selector][28-bit
// payload], except that a word whose predecessor carried its selector
// omits the inline selector nibble; its payload still fits in bits
// [0,28), leaving bits [28,32) free to carry the following word's
// selector. The first word in a stream always carries its own selector
// inline, since there is no predecessor to carry it for.
func (carryover12Codec) Encode(dst []byte, xs []uint32) int {
	if len(xs) == 0 {
		return 0
	}
	n := 0
	carriedSelector := -1 // selector for the upcoming word, if carried by the previous one
	for i := 0; i < len(xs); {
		row, selector, ok := selectedRow(carryoverRows, xs[i:])
		if !ok {
			return 0
		}
		count := row.Count
		if i+count > len(xs) {
			count = len(xs) - i
		}
		if n+4 > len(dst) {
			return 0
		}

		selfCarried := carriedSelector >= 0
		var word uint32
		if selfCarried {
			// Full 32 bits available for payload; Width*Count <= 28 still
			// holds, so bits [28,32) are unconditionally free.
			word = packWord(row, xs[i:i+count])
		} else {
			word = packWord(row, xs[i:i+count]) | uint32(selector)<<28
		}

		// Decide whether this word can carry the NEXT word's selector.
		// A self-carried word always has bits [28,32) free (the table's
		// payload budget never exceeds 28 bits); an inline word only has
		// room if its row leaves >= 4 spare bits within [0,28).
		carriedSelector = -1
		if i+count < len(xs) {
			spareOffset, spareAvailable := 28, selfCarried
			if !selfCarried {
				spareOffset, spareAvailable = carriesSelector(row)
			}
			if spareAvailable {
				_, nextSelector, ok := selectedRow(carryoverRows, xs[i+count:])
				if ok {
					word |= uint32(nextSelector) << uint(spareOffset)
					carriedSelector = nextSelector
				}
			}
		}

		binary.LittleEndian.PutUint32(dst[n:], word)
		n += 4
		i += count
	}
	return n
}

func (carryover12Codec) Decode(dst []uint32, src []byte) error {
	pos, written := 0, 0
	carriedSelector := -1
	for written < len(dst) {
		if pos+4 > len(src) {
			return ErrShortBuffer
		}
		word := binary.LittleEndian.Uint32(src[pos:])
		pos += 4

		selfCarried := carriedSelector >= 0
		var selector int
		if selfCarried {
			selector = carriedSelector
		} else {
			selector = int(word >> 28)
		}
		if selector >= len(carryoverRows) {
			return ErrMalformed
		}
		row := carryoverRows[selector]

		remaining := len(dst) - written
		n := row.Count
		if n > remaining {
			n = remaining
		}
		unpackWord(row, word&(1<<28-1), dst[written:written+n])
		written += n

		prevSelfCarried := selfCarried
		carriedSelector = -1
		if written < len(dst) {
			spareOffset, spareAvailable := 28, prevSelfCarried
			if !prevSelfCarried {
				spareOffset, spareAvailable = carriesSelector(row)
			}
			if spareAvailable {
				carriedSelector = int((word >> uint(spareOffset)) & 0xF)
			}
		}
	}
	return nil
}

// carry8bRows is Carry-8b's selector table scaled to a 64-bit ("8
// byte") word with a 4-bit inline selector and 60 payload bits, the
// explicit table-base the family description calls out — here "table
// base" is simply the selector nibble stored in every word rather than
// carried, trading Carryover-12's cross-word indirection for a simpler,
// self-contained 64-bit word (documented simplification, see DESIGN.md).
var carry8bRows = []packRow{
	{60, 1}, {30, 2}, {20, 3}, {15, 4}, {12, 5}, {10, 6}, {8, 7}, {7, 8},
	{6, 10}, {5, 12}, {4, 15}, {3, 20}, {2, 30}, {1, 60},
}

type carry8bCodec struct{}

func init() { Register(carry8bCodec{}) }

func (carry8bCodec) Name() string     { return "carry8b" }
func (carry8bCodec) ID() uint8        { return 6 }
func (carry8bCodec) MaxValue() uint64 { return 1<<60 - 1 }

func (carry8bCodec) Encode(dst []byte, xs []uint32) int {
	if len(xs) == 0 {
		return 0
	}
	xs64 := make([]uint64, len(xs))
	for i, x := range xs {
		xs64[i] = uint64(x)
	}
	n := 0
	for i := 0; i < len(xs64); {
		row, selector, ok := selectedRow64(carry8bRows, xs64[i:])
		if !ok {
			return 0
		}
		count := row.Count
		if i+count > len(xs64) {
			count = len(xs64) - i
		}
		if n+8 > len(dst) {
			return 0
		}
		word := packWord64(row, xs64[i:i+count]) | uint64(selector)<<60
		binary.LittleEndian.PutUint64(dst[n:], word)
		n += 8
		i += count
	}
	return n
}

func (carry8bCodec) Decode(dst []uint32, src []byte) error {
	pos, written := 0, 0
	for written < len(dst) {
		if pos+8 > len(src) {
			return ErrShortBuffer
		}
		word := binary.LittleEndian.Uint64(src[pos:])
		pos += 8
		selector := int(word >> 60)
		if selector >= len(carry8bRows) {
			return ErrMalformed
		}
		row := carry8bRows[selector]
		remaining := len(dst) - written
		n := row.Count
		if n > remaining {
			n = remaining
		}
		tmp := make([]uint64, n)
		unpackWord64(row, word&(1<<60-1), tmp)
		for i, v := range tmp {
			dst[written+i] = uint32(v)
		}
		written += n
	}
	return nil
}

func fits64(xs []uint64, width int) bool {
	if width >= 64 {
		return true
	}
	limit := uint64(1) << uint(width)
	for _, x := range xs {
		if x >= limit {
			return false
		}
	}
	return true
}

func selectedRow64(rows []packRow, xs []uint64) (packRow, int, bool) {
	for idx, row := range rows {
		n := row.Count
		if n > len(xs) {
			n = len(xs)
		}
		if fits64(xs[:n], row.Width) {
			return row, idx, true
		}
	}
	return packRow{}, 0, false
}

func packWord64(row packRow, xs []uint64) uint64 {
	var word uint64
	for i, x := range xs {
		word |= x << uint(i*row.Width)
	}
	return word
}

func unpackWord64(row packRow, word uint64, dst []uint64) {
	mask := uint64(1)<<uint(row.Width) - 1
	if row.Width >= 64 {
		mask = ^uint64(0)
	}
	for i := range dst {
		dst[i] = (word >> uint(i*row.Width)) & mask
	}
}
