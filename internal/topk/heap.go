package topk

import (
	stdheap "container/heap"

	"jass/internal/accumulator"
)

// Heap is the min-heap top-k variant: heap[0] is always the current
// worst of the top-k, so Add only ever compares a candidate against
// one element before deciding whether it's admitted
// (original_source/query_heap.h add_rsv).
type Heap struct {
	table  *accumulator.Table
	k      int
	ids    []uint32
	pos    map[uint32]int
	needed int
}

// NewHeap constructs a Heap bound to no table; call Rewind before use.
func NewHeap() *Heap {
	return &Heap{pos: map[uint32]int{}}
}

func (h *Heap) Rewind(table *accumulator.Table, k int) {
	h.table = table
	h.k = k
	h.ids = h.ids[:0]
	for key := range h.pos {
		delete(h.pos, key)
	}
	h.needed = k
}

// Len, Less, Swap, Push, Pop implement container/heap.Interface over
// h.ids, keeping h.pos in sync so Add can locate an already-admitted
// DocID in O(1).
func (h *Heap) Len() int { return len(h.ids) }
func (h *Heap) Less(i, j int) bool {
	return less(h.table, h.ids[i], h.ids[j])
}
func (h *Heap) Swap(i, j int) {
	h.ids[i], h.ids[j] = h.ids[j], h.ids[i]
	h.pos[h.ids[i]] = i
	h.pos[h.ids[j]] = j
}
func (h *Heap) Push(x any) {
	d := x.(uint32)
	h.pos[d] = len(h.ids)
	h.ids = append(h.ids, d)
}
func (h *Heap) Pop() any {
	n := len(h.ids)
	d := h.ids[n-1]
	h.ids = h.ids[:n-1]
	delete(h.pos, d)
	return d
}

// Add mirrors query_heap::add_rsv: the accumulator add has already
// happened by the time Add is called the way the original updates
// *which before comparing. Callers always pass a delta already applied
// to table (see driver), so here we just resolve the new score.
func (h *Heap) Add(d uint32, delta uint32) {
	newScore := h.table.Get(d)
	if h.needed > 0 {
		// A slot is still open. If this is the accumulator's first
		// contribution (new score equals this delta) claim a slot;
		// repeat additions to an already-claimed slot need no heap
		// work until the heap is full.
		if _, already := h.pos[d]; already {
			return
		}
		if newScore == delta {
			h.pos[d] = len(h.ids)
			h.ids = append(h.ids, d)
			h.needed--
			if h.needed == 0 {
				stdheap.Init(h)
			}
		}
		return
	}

	if idx, ok := h.pos[d]; ok {
		stdheap.Fix(h, idx)
		return
	}

	if len(h.ids) == 0 {
		return
	}
	rootScore := h.table.Get(h.ids[0])
	if newScore <= rootScore {
		return // does not beat the current worst of the top-k
	}
	delete(h.pos, h.ids[0])
	h.ids[0] = d
	h.pos[d] = 0
	stdheap.Fix(h, 0)
}

func (h *Heap) Results() []Result {
	return sortDescending(h.table, h.ids)
}
