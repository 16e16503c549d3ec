package topk

import (
	"math"

	"jass/internal/accumulator"
)

// Beap is the bi-parental heap top-k variant: a fixed-length array
// stored as an implicit triangle where every element below the root has
// up to two parents, so sifting an element up or down costs O(sqrt(k))
// instead of Heap's O(log k). Locating an already-admitted DocID (find)
// is a linear scan, O(k); the beap's key-guided O(sqrt(k)) search is not
// used. The original offers this structure as an alternative selector
// (original_source/beap.h; J.I. Munro, H. Suwanda (1980), Implicit
// data structures for fast search and update).
type Beap struct {
	table  *accumulator.Table
	k      int
	ids    []uint32
	needed int
}

func NewBeap() *Beap {
	return &Beap{}
}

func (b *Beap) Rewind(table *accumulator.Table, k int) {
	b.table = table
	b.k = k
	b.ids = b.ids[:0]
	b.needed = k
}

// getHeight returns the row number of array index element, counting
// from 0: get_height(0)==0, get_height(1)==get_height(2)==1, etc.
// (original_source/beap.h get_height).
func getHeight(element int) int {
	return int(math.Ceil((math.Sqrt(float64(8*element+2))-1)/2)) - 1
}

func getFirst(height int) int { return height * (height + 1) / 2 }
func getLast(height int) int  { return (height+1)*(height+2)/2 - 1 }

// find locates id's current slot by a linear scan of the array, or
// returns -1. It does not search from the bottom-right corner by key
// the way beap::find does, so it costs O(k) rather than O(sqrt(k)).
func (b *Beap) find(id uint32) int {
	for i, v := range b.ids {
		if v == id {
			return i
		}
	}
	return -1
}

// siftUp re-homes the value at location towards the root after it has
// decreased relative to its beap neighbors, mirroring beap_up.
func (b *Beap) siftUp(location int) {
	for {
		height := getHeight(location)
		endOfRow := getLast(height)
		startOfRow := endOfRow - height

		if location == 0 {
			return
		}
		if location == startOfRow {
			parent := location - height
			if less(b.table, b.ids[location], b.ids[parent]) {
				b.swap(location, parent)
				location = parent
				continue
			}
			return
		}
		if location == endOfRow {
			parent := location - height - 1
			if less(b.table, b.ids[location], b.ids[parent]) {
				b.swap(location, parent)
				location = parent
				continue
			}
			return
		}

		parent1 := location - height - 1
		parent2 := location - height
		key := b.ids[location]
		switch {
		case less(b.table, key, b.ids[parent1]):
			// Move up; swap with whichever parent is larger.
			if less(b.table, b.ids[parent2], b.ids[parent1]) {
				b.swap(location, parent1)
				location = parent1
			} else {
				b.swap(location, parent2)
				location = parent2
			}
		case less(b.table, key, b.ids[parent2]):
			b.swap(location, parent2)
			location = parent2
		default:
			return
		}
	}
}

// siftDown re-homes the value at location towards the leaves after it
// has increased, mirroring beap_down.
func (b *Beap) siftDown(location int) {
	n := len(b.ids)
	for {
		height := getHeight(location)
		child1 := location + height + 1
		child2 := location + height + 2

		if child1 >= n {
			return
		}
		if child2 >= n {
			if less(b.table, b.ids[child1], b.ids[location]) {
				b.swap(location, child1)
				location = child1
				continue
			}
			return
		}
		if less(b.table, b.ids[child1], b.ids[location]) || less(b.table, b.ids[child2], b.ids[location]) {
			if less(b.table, b.ids[child1], b.ids[child2]) {
				b.swap(location, child1)
				location = child1
			} else {
				b.swap(location, child2)
				location = child2
			}
			continue
		}
		return
	}
}

func (b *Beap) swap(i, j int) {
	b.ids[i], b.ids[j] = b.ids[j], b.ids[i]
}

func (b *Beap) Add(d uint32, delta uint32) {
	newScore := b.table.Get(d)
	if b.needed > 0 {
		if b.find(d) >= 0 {
			return
		}
		if newScore == delta {
			b.ids = append(b.ids, d)
			b.needed--
			b.siftUp(len(b.ids) - 1)
			if b.needed == 0 {
				b.heapify()
			}
		}
		return
	}

	if idx := b.find(d); idx >= 0 {
		// The accumulator only ever grows, so an already-admitted
		// DocID's score just increased: it moves away from the root,
		// towards the leaves (beap.h's guaranteed_replace_with_larger
		// calls beap_down, never beap_up, for this case).
		b.siftDown(idx)
		return
	}

	if len(b.ids) == 0 {
		return
	}
	rootScore := b.table.Get(b.ids[0])
	if newScore <= rootScore {
		return
	}
	b.ids[0] = d
	b.siftDown(0)
}

// heapify restores the beap property over the whole array once every
// slot has been claimed, equivalent in effect to make_beap's sort but
// done via repeated siftDown so it only depends on `less`.
func (b *Beap) heapify() {
	for i := len(b.ids) - 1; i >= 0; i-- {
		b.siftDown(i)
	}
}

func (b *Beap) Results() []Result {
	return sortDescending(b.table, b.ids)
}
