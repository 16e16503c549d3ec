package export

import (
	"bytes"
	"strings"
	"testing"

	"jass/internal/topk"
)

func TestWriteResultsFormat(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "myrun", false)
	results := []topk.Result{{DocID: 42, Score: 130}, {DocID: 7, Score: 90}}
	keys := map[uint32]string{42: "WSJ870918-0107", 7: "WSJ870101-0001"}
	if err := w.WriteResults("703", results, func(d uint32) string { return keys[d] }); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	want := []string{
		"703 Q0 WSJ870918-0107 1 130 myrun",
		"703 Q0 WSJ870101-0001 2 90 myrun",
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
}

func TestWriteResultsIncludeIDs(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "myrun", true)
	results := []topk.Result{{DocID: 5, Score: 10}}
	if err := w.WriteResults("1", results, func(d uint32) string { return "DOC" }); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	w.Flush()
	got := strings.TrimRight(buf.String(), "\n")
	want := "1 Q0 DOC 1 10 myrun (ID:5)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriteResultsEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, "myrun", false)
	if err := w.WriteResults("1", nil, func(d uint32) string { return "" }); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	w.Flush()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
