// Package export writes ranked query results in TREC run format, the
// six-field layout trec_eval consumes (original_source/run_export_trec.h).
package export

import (
	"bufio"
	"fmt"
	"io"

	"jass/internal/topk"
)

// Writer emits TREC run lines for one or more queries to an underlying
// io.Writer, buffering output the way the teacher buffers file writes.
type Writer struct {
	w          *bufio.Writer
	RunTag     string
	IncludeIDs bool
}

// NewWriter wraps w, tagging every line with runTag. If includeIDs is
// true, each line gets an optional trailing "(ID:docid)" debug field.
func NewWriter(w io.Writer, runTag string, includeIDs bool) *Writer {
	return &Writer{w: bufio.NewWriter(w), RunTag: runTag, IncludeIDs: includeIDs}
}

// WriteResults writes one line per result in results, in the order
// given (callers pass results already sorted by score descending —
// topk.Selector.Results already returns that order). Rank is 1-based.
func (tw *Writer) WriteResults(queryID string, results []topk.Result, primaryKey func(docID uint32) string) error {
	for i, r := range results {
		rank := i + 1
		if _, err := fmt.Fprintf(tw.w, "%s Q0 %s %d %d %s", queryID, primaryKey(r.DocID), rank, r.Score, tw.RunTag); err != nil {
			return err
		}
		if tw.IncludeIDs {
			if _, err := fmt.Fprintf(tw.w, " (ID:%d)", r.DocID); err != nil {
				return err
			}
		}
		if _, err := tw.w.WriteString("\n"); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered output to the underlying writer.
func (tw *Writer) Flush() error { return tw.w.Flush() }
