package codec

import "encoding/binary"

// packRow describes one selector row for a word-packed codec: Count
// integers fit in Width bits each. Rows are tried widest-count-first so
// encoding is greedy: the most values that fit in the current word win.
type packRow struct {
	Count int
	Width int
}

// simple9Rows mirrors the classic Simple-9 selector table (9 rows, a
// 4-bit selector packed into the top nibble of a 32-bit word, 28 payload
// bits), grounded on original_source/compress_integer_simple_9.h's
// simple9_table.
var simple9Rows = []packRow{
	{28, 1}, {14, 2}, {9, 3}, {7, 4}, {5, 5}, {4, 7}, {3, 9}, {2, 14}, {1, 28},
}

// simple16Rows generalizes the idea to 16 selectors with bit widths
// 1..13, 16, 20 and 32 (the widest row holds a single 32-bit value),
// a 32-bit word with no reserved header bits — the
// selector is carried in a leading control byte instead, since 16
// variants plus per-row remainders leave no room for an inline nibble
// the way Simple-9's 9-row table does.
var simple16Rows = func() []packRow {
	widths := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 16, 20, 32}
	rows := make([]packRow, len(widths))
	for i, w := range widths {
		count := 32 / w
		if count < 1 {
			count = 1
		}
		rows[i] = packRow{Count: count, Width: w}
	}
	return rows
}()

func fits(xs []uint32, width int) bool {
	if width >= 32 {
		return true
	}
	limit := uint32(1) << uint(width)
	for _, x := range xs {
		if x >= limit {
			return false
		}
	}
	return true
}

func packWord(row packRow, xs []uint32) uint32 {
	var word uint32
	for i, x := range xs {
		word |= x << uint(i*row.Width)
	}
	return word
}

func unpackWord(row packRow, word uint32, dst []uint32) {
	mask := uint32(1)<<uint(row.Width) - 1
	if row.Width >= 32 {
		mask = ^uint32(0)
	}
	for i := range dst {
		dst[i] = (word >> uint(i*row.Width)) & mask
	}
}

// --- Simple-9 ---

type simple9Codec struct{}

func init() { Register(simple9Codec{}) }

func (simple9Codec) Name() string     { return "simple9" }
func (simple9Codec) ID() uint8        { return 3 }
func (simple9Codec) MaxValue() uint64 { return 1<<28 - 1 }

func (simple9Codec) Encode(dst []byte, xs []uint32) int {
	if len(xs) == 0 {
		return 0
	}
	n := 0
	for i := 0; i < len(xs); {
		row, selector, ok := selectedRow(simple9Rows, xs[i:])
		if !ok {
			return 0 // a value exceeds even the 28-bit single-element row
		}
		count := row.Count
		if i+count > len(xs) {
			count = len(xs) - i
		}
		if n+4 > len(dst) {
			return 0
		}
		word := packWord(row, xs[i:i+count]) | uint32(selector)<<28
		binary.LittleEndian.PutUint32(dst[n:], word)
		n += 4
		i += count
	}
	return n
}

func (simple9Codec) Decode(dst []uint32, src []byte) error {
	pos, written := 0, 0
	for written < len(dst) {
		if pos+4 > len(src) {
			return ErrShortBuffer
		}
		word := binary.LittleEndian.Uint32(src[pos:])
		pos += 4
		selector := int(word >> 28)
		if selector >= len(simple9Rows) {
			return ErrMalformed
		}
		row := simple9Rows[selector]
		remaining := len(dst) - written
		n := row.Count
		if n > remaining {
			n = remaining
		}
		unpackWord(row, word&(1<<28-1), dst[written:written+n])
		written += n
	}
	return nil
}

// selectedRow is chooseRow plus the row's index in rows, used as the
// on-the-wire selector value.
func selectedRow(rows []packRow, xs []uint32) (packRow, int, bool) {
	for idx, row := range rows {
		n := row.Count
		if n > len(xs) {
			n = len(xs)
		}
		if fits(xs[:n], row.Width) {
			return row, idx, true
		}
	}
	return packRow{}, 0, false
}

// --- Simple-16 ---

type simple16Codec struct{}

func init() { Register(simple16Codec{}) }

func (simple16Codec) Name() string     { return "simple16" }
func (simple16Codec) ID() uint8        { return 4 }
func (simple16Codec) MaxValue() uint64 { return 1<<32 - 1 }

func (simple16Codec) Encode(dst []byte, xs []uint32) int {
	if len(xs) == 0 {
		return 0
	}
	n := 0
	for i := 0; i < len(xs); {
		row, selector, ok := selectedRow(simple16Rows, xs[i:])
		if !ok {
			return 0
		}
		count := row.Count
		if i+count > len(xs) {
			count = len(xs) - i
		}
		if n+5 > len(dst) {
			return 0
		}
		dst[n] = byte(selector)
		word := packWord(row, xs[i:i+count])
		binary.LittleEndian.PutUint32(dst[n+1:], word)
		n += 5
		i += count
	}
	return n
}

func (simple16Codec) Decode(dst []uint32, src []byte) error {
	pos, written := 0, 0
	for written < len(dst) {
		if pos+5 > len(src) {
			return ErrShortBuffer
		}
		selector := int(src[pos])
		if selector >= len(simple16Rows) {
			return ErrMalformed
		}
		word := binary.LittleEndian.Uint32(src[pos+1:])
		pos += 5
		row := simple16Rows[selector]
		remaining := len(dst) - written
		n := row.Count
		if n > remaining {
			n = remaining
		}
		unpackWord(row, word, dst[written:written+n])
		written += n
	}
	return nil
}
