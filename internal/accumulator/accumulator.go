// Package accumulator implements the page-wise, lazily-initialized
// DocID -> score table a query evaluator sums impacts into. Instead of
// zeroing all N scores at the start of every query, the table is split
// into pages of W = 2^s entries and a per-page dirty byte marks
// whether a page still holds a previous query's state; a page is only
// cleared the first time one of its entries is touched (X.-F. Jia, A.
// Trotman, R. O'Keefe (2010), Efficient Accumulator Initialisation;
// original_source/accumulator_2d.h).
package accumulator

const dirtyAll = 0xFF

// Table is a flat array of scores partitioned into dirty-flagged pages.
type Table struct {
	acc   []uint32
	dirty []byte
	n     int
	shift int
	width int
}

// New constructs a Table for n accumulators. If pageShift <= 0, the
// page width is derived as 2^floor(log2(sqrt(n))), balancing the
// number of pages against the page width the way the original's
// init() does when no preferred width is supplied.
func New(n int, pageShift int) *Table {
	if n <= 0 {
		n = 1
	}
	shift := pageShift
	if shift <= 0 {
		shift = floorLog2(isqrt(n))
	}
	width := 1 << uint(shift)
	numPages := (n + width - 1) / width

	t := &Table{
		acc:   make([]uint32, numPages*width),
		dirty: make([]byte, numPages),
		n:     n,
		shift: shift,
		width: width,
	}
	t.Reset()
	return t
}

func floorLog2(v int) int {
	if v < 1 {
		return 0
	}
	e := 0
	for v > 1 {
		v >>= 1
		e++
	}
	return e
}

func isqrt(v int) int {
	if v < 1 {
		return 1
	}
	x := v
	for {
		next := (x + v/x) / 2
		if next >= x {
			return x
		}
		x = next
	}
}

// Size returns the number of accumulators the caller asked for (which
// may be fewer than were physically allocated to round out the last
// page).
func (t *Table) Size() int { return t.n }

// PageWidth returns W, the number of accumulators per dirty-flag page.
func (t *Table) PageWidth() int { return t.width }

// Reset marks every page dirty so the next Add/Get for any DocID in it
// observes 0 without walking the whole accumulator array.
func (t *Table) Reset() {
	for i := range t.dirty {
		t.dirty[i] = dirtyAll
	}
}

func (t *Table) pageOf(d uint32) int {
	return int(d) >> uint(t.shift)
}

func (t *Table) clearPage(p int) {
	start := p * t.width
	end := start + t.width
	clear := t.acc[start:end]
	for i := range clear {
		clear[i] = 0
	}
	t.dirty[p] = 0
}

// Add applies delta to accumulator d, lazily zeroing d's page first if
// it is still dirty, and returns the accumulator's new value.
func (t *Table) Add(d uint32, delta uint32) uint32 {
	p := t.pageOf(d)
	if t.dirty[p] == dirtyAll {
		t.clearPage(p)
	}
	t.acc[d] += delta
	return t.acc[d]
}

// Get returns the current value of accumulator d without mutating
// anything; an untouched (dirty-page) entry reads as 0.
func (t *Table) Get(d uint32) uint32 {
	if t.dirty[t.pageOf(d)] == dirtyAll {
		return 0
	}
	return t.acc[d]
}

// AddVector is the batch counterpart of Add, performing a gather over
// dirty, clearing exactly the pages that need it, then adding delta to
// every id. It is the scalar implementation of the SIMD gather/scatter
// path accumulator_2d.h describes for its vector operator[]; the SIMD
// build-tag files gate the identical scalar semantics behind a wider,
// unrolled loop body rather than real gather/scatter instructions (see
// DESIGN.md).
func (t *Table) AddVector(ids []uint32, delta uint32) {
	addVector(t, ids, delta)
}

func addVectorScalar(t *Table, ids []uint32, delta uint32) {
	for _, d := range ids {
		t.Add(d, delta)
	}
}
