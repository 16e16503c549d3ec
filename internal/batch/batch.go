// Package batch runs many queries against a shared query.Engine,
// partitioning them across goroutines the way the teacher's
// vectorstore.Search partitions its candidate-chunk slice across
// workers: adaptive worker count, chunked slices, each worker writing
// its results in place by index and signalling completion on a
// channel, input order preserved (SPEC_FULL.md §5 multi-query
// parallelism supplement).
package batch

import (
	"runtime"

	"jass/internal/query"
)

// minBatchForWorkers is the minimum number of queries before goroutine
// setup cost is worth paying; below it Run executes single-threaded,
// generalizing the teacher's minWorkersThreshold guard.
const minBatchForWorkers = 8

// Result pairs a query's input line with its outcome; Err is set if
// that one query failed (a decode error, say) without aborting the
// rest of the batch.
type Result struct {
	Query    string
	Response *query.Response
	Err      error
}

// Run evaluates each of queries against engine using a fresh
// query.Query per goroutine (so arenas/accumulators/selectors are
// never shared across concurrent queries, per SPEC_FULL.md §5),
// preserving input order in the returned slice. workers <= 0 means
// "choose adaptively" the way the teacher computes numWorkers.
func Run(engine *query.Engine, queries []string, k int, selectorName string, workers int) []Result {
	n := len(queries)
	results := make([]Result, n)
	if n == 0 {
		return results
	}

	numWorkers := workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if n < minBatchForWorkers {
		numWorkers = 1
	} else if numWorkers > n {
		numWorkers = n
	}

	chunkSize := (n + numWorkers - 1) / numWorkers
	done := make(chan struct{}, numWorkers)

	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			done <- struct{}{}
			continue
		}
		go func(lo, hi int) {
			q := query.NewQuery(engine, selectorName, nil)
			for i := lo; i < hi; i++ {
				resp, err := q.Run(queries[i], k)
				results[i] = Result{Query: queries[i], Response: resp, Err: err}
			}
			done <- struct{}{}
		}(start, end)
	}

	for w := 0; w < numWorkers; w++ {
		<-done
	}

	return results
}
