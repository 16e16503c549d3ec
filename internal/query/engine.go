// Package query implements the query driver (C6): for each query term
// it resolves the term through the index loader, streams its impact
// segments through the postings iterator, accumulates scores, and
// feeds the top-k selector. The orchestration shape — a struct of
// collaborators with a single step-logged entry point — is grounded on
// the teacher's RAG pipeline (Query()'s numbered steps, swallow-
// missing-term semantics, typed early returns), generalized from
// embed→search→generate to lookup→stream→score→sort.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"jass/internal/accumulator"
	"jass/internal/arena"
	"jass/internal/codec"
	"jass/internal/errlog"
	"jass/internal/index"
	"jass/internal/postings"
	"jass/internal/topk"
)

// Result is one ranked document produced by a query.
type Result = topk.Result

// Response is the outcome of running a query: the ranked top-k, the
// parsed query identifier, and whether a timeout or cancellation cut
// the query short before all terms were processed.
type Response struct {
	QueryID   string
	Results   []Result
	Truncated bool
}

// NewSelector builds a fresh topk.Selector for the named variant
// ("heap" or "beap"); unrecognized names fall back to "heap".
func NewSelector(name string) topk.Selector {
	if name == "beap" {
		return topk.NewBeap()
	}
	return topk.NewHeap()
}

// Engine orchestrates the search-time query evaluation path: it holds
// no per-query state itself (Query allocates that), only the
// long-lived shared collaborators (SPEC_FULL.md §5: "the Index is
// shared read-only").
type Engine struct {
	idx       *index.Index
	codec     codec.Codec
	pageShift int
}

// NewEngine binds an Engine to an opened Index and the codec used to
// decode its postings lists. pageShift overrides the per-Query
// accumulator table's page-shift derivation (SPEC_FULL.md §4.3); 0
// means "let the accumulator choose" (accumulator.New's own
// floor(log2(sqrt(n))) default).
func NewEngine(idx *index.Index, c codec.Codec, pageShift int) *Engine {
	return &Engine{idx: idx, codec: c, pageShift: pageShift}
}

// Query is one in-flight query's private working state: its own
// arena, accumulator table, and selector, so that many Querys can run
// concurrently against the same shared Engine (SPEC_FULL.md §5).
type Query struct {
	engine   *Engine
	table    *accumulator.Table
	selector topk.Selector
	arena    *arena.Arena
	cancel   func() bool
}

// NewQuery creates a Query bound to engine, ready to run repeated
// queries via Run. selectorName chooses "heap" or "beap".
// cancel, if non-nil, is polled between impact segments; when it
// returns true the in-progress query stops early and Run reports
// Truncated instead of an error (SPEC_FULL.md §5 cancellation/timeout).
func NewQuery(engine *Engine, selectorName string, cancel func() bool) *Query {
	return &Query{
		engine:   engine,
		table:    accumulator.New(engine.idx.DocumentCount(), engine.pageShift),
		selector: NewSelector(selectorName),
		arena:    arena.New(0),
		cancel:   cancel,
	}
}

// Run executes the full query-evaluation pipeline (SPEC_FULL.md §4.6):
//  1. parse raw into terms, the first purely-numeric token becoming
//     the query identifier;
//  2. rewind the accumulator table and selector for k results;
//  3. for each term, look it up, skip if absent, else stream its
//     impact segments, D-gap decoding into the arena and adding each
//     decoded DocID's impact to the selector;
//  4. sort and return the top-k.
func (q *Query) Run(raw string, k int) (*Response, error) {
	queryID, terms := parseQuery(raw)
	errlog.Logf("[query] step=1 parse id=%s terms=%d", queryID, len(terms))

	q.table.Reset()
	q.selector.Rewind(q.table, k)
	q.arena.Reset()
	errlog.Logf("[query] step=2 rewind k=%d", k)

	truncated := false
termLoop:
	for i, term := range terms {
		entry, ok := q.engine.idx.Lookup(term)
		if !ok {
			errlog.Logf("[query] step=3 term=%q (%d/%d) not found, skipping", term, i+1, len(terms))
			continue
		}

		body := q.engine.idx.PostingsBody(entry)
		it := postings.New(term, body, q.engine.codec, q.arena)
		segments := 0
		for {
			if q.cancel != nil && q.cancel() {
				truncated = true
				errlog.Logf("[query] step=3 term=%q cancelled after %d segments", term, segments)
				break termLoop
			}
			seg, ok := it.Next()
			if !ok {
				break
			}
			q.table.AddVector(seg.IDs, seg.Impact)
			for _, d := range seg.IDs {
				q.selector.Add(d, seg.Impact)
			}
			segments++
		}
		if err := it.Err(); err != nil {
			errlog.Logf("[query] step=3 term=%q decode error: %v", term, err)
			return nil, fmt.Errorf("query: %w", err)
		}
		errlog.Logf("[query] step=3 term=%q (%d/%d) segments=%d", term, i+1, len(terms), segments)
	}

	results := q.selector.Results()
	errlog.Logf("[query] step=4 sort id=%s results=%d truncated=%v", queryID, len(results), truncated)

	return &Response{QueryID: queryID, Results: results, Truncated: truncated}, nil
}

// parseQuery splits raw into whitespace-delimited terms. The first
// purely-numeric token becomes the query identifier (SPEC_FULL.md
// §4.6 step 1); if no token is numeric, the identifier is empty and
// every token is treated as a search term.
func parseQuery(raw string) (queryID string, terms []string) {
	fields := strings.Fields(raw)
	terms = make([]string, 0, len(fields))
	for _, f := range fields {
		if queryID == "" {
			if _, err := strconv.ParseUint(f, 10, 64); err == nil {
				queryID = f
				continue
			}
		}
		terms = append(terms, strings.ToLower(f))
	}
	return queryID, terms
}
