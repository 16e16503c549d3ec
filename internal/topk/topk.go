// Package topk maintains the K accumulator entries with the largest
// scores seen during a query, as a min-ordered structure keyed by
// (score, DocID): the root is always the current worst of the top-k,
// so admitting a new candidate is a single comparison against it
// (original_source/query_heap.h, beap.h).
package topk

import "jass/internal/accumulator"

// Result is one top-k entry, the pairing the original's iterator
// reconstructs from an accumulator pointer via get_index.
type Result struct {
	DocID uint32
	Score uint32
}

// Selector is the common top-k protocol both the heap and beap
// variants implement.
type Selector interface {
	// Rewind clears the selector for K new entries and binds it to
	// table for the query about to run.
	Rewind(table *accumulator.Table, k int)
	// Add records that DocID d's accumulator was just incremented by
	// delta (d's new total is whatever table.Get(d) now reports) and
	// admits d to the top-k if it qualifies.
	Add(d uint32, delta uint32)
	// Results returns the top-k entries sorted by score descending,
	// ties broken by DocID ascending.
	Results() []Result
}

// less is the shared total order: lower score first, ties broken by
// the smaller DocID — pointer-value tie-break in the original, DocID
// playing the role of a stable pointer surrogate (SPEC_FULL.md §9,
// Decisions).
func less(table *accumulator.Table, a, b uint32) bool {
	sa, sb := table.Get(a), table.Get(b)
	if sa != sb {
		return sa < sb
	}
	return a < b
}

// before reports whether a should rank ahead of b in the output order:
// higher score first, ties broken by the smaller DocID
// (SPEC_FULL.md §9, Decisions) — the inverse of less's ascending sense,
// kept as its own comparator rather than derived from less + reversal,
// since reversing an ascending-with-ties-first order also reverses the
// ties themselves.
func before(table *accumulator.Table, a, b uint32) bool {
	sa, sb := table.Get(a), table.Get(b)
	if sa != sb {
		return sa > sb
	}
	return a < b
}

func sortDescending(table *accumulator.Table, ids []uint32) []Result {
	sorted := append([]uint32(nil), ids...)
	// Insertion sort: k is always small (tens to low hundreds), so this
	// is both simple and fast.
	for i := 1; i < len(sorted); i++ {
		v := sorted[i]
		j := i - 1
		for j >= 0 && before(table, v, sorted[j]) {
			sorted[j+1] = sorted[j]
			j--
		}
		sorted[j+1] = v
	}
	out := make([]Result, len(sorted))
	for i, id := range sorted {
		out[i] = Result{DocID: id, Score: table.Get(id)}
	}
	return out
}
