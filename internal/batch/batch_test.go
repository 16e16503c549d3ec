package batch

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"jass/internal/codec"
	"jass/internal/index"
	"jass/internal/query"
)

func writeVocabRecord(t *testing.T, f *os.File, term string, offset, df, cf uint64, nImpacts uint32) {
	t.Helper()
	var lexLen [2]byte
	binary.LittleEndian.PutUint16(lexLen[:], uint16(len(term)))
	f.Write(lexLen[:])
	f.WriteString(term)
	var rest [28]byte
	binary.LittleEndian.PutUint64(rest[0:], offset)
	binary.LittleEndian.PutUint64(rest[8:], df)
	binary.LittleEndian.PutUint64(rest[16:], cf)
	binary.LittleEndian.PutUint32(rest[24:], nImpacts)
	f.Write(rest[:])
}

func appendSegment(c codec.Codec, dst []byte, impact uint16, docIDs []uint32) []byte {
	gaps := make([]uint32, len(docIDs))
	prev := uint32(0)
	for i, d := range docIDs {
		gaps[i] = d - prev
		prev = d
	}
	body := make([]byte, 256)
	n := c.Encode(body, gaps)
	body = body[:n]
	var hdr [10]byte
	binary.LittleEndian.PutUint16(hdr[0:], impact)
	binary.LittleEndian.PutUint32(hdr[2:], uint32(len(gaps)))
	binary.LittleEndian.PutUint32(hdr[6:], uint32(len(body)))
	dst = append(dst, hdr[:]...)
	dst = append(dst, body...)
	return dst
}

func appendTerminator(dst []byte) []byte {
	var hdr [10]byte
	return append(dst, hdr[:]...)
}

func buildIndex(t *testing.T, numDocs int) *index.Index {
	t.Helper()
	dir := t.TempDir()
	c, _ := codec.ByName("vbyte")

	var postings []byte
	offset := uint64(len(postings))
	ids := make([]uint32, 0, numDocs)
	for d := 1; d <= numDocs; d++ {
		ids = append(ids, uint32(d))
	}
	postings = appendSegment(c, postings, 1, ids)
	postings = appendTerminator(postings)
	if err := os.WriteFile(filepath.Join(dir, "postings"), postings, 0o644); err != nil {
		t.Fatal(err)
	}

	vf, _ := os.Create(filepath.Join(dir, "vocabulary"))
	writeVocabRecord(t, vf, "word", offset, uint64(numDocs), uint64(numDocs), 1)
	vf.Close()

	pf, _ := os.Create(filepath.Join(dir, "primarykeys"))
	for d := 0; d <= numDocs; d++ {
		var n [2]byte
		key := "DOC"
		binary.LittleEndian.PutUint16(n[:], uint16(len(key)))
		pf.Write(n[:])
		pf.WriteString(key)
	}
	pf.Close()

	os.WriteFile(filepath.Join(dir, "codec"), []byte{c.ID()}, 0o644)

	idx, err := index.Open(dir)
	if err != nil {
		t.Fatalf("index.Open: %v", err)
	}
	return idx
}

func TestRunPreservesInputOrder(t *testing.T) {
	idx := buildIndex(t, 5)
	c, _ := codec.ByName("vbyte")
	engine := query.NewEngine(idx, c, 0)

	queries := []string{"1 word", "2 word", "3 word", "4 word", "5 word", "6 word", "7 word", "8 word", "9 word"}
	results := Run(engine, queries, 10, "heap", 0)

	if len(results) != len(queries) {
		t.Fatalf("got %d results, want %d", len(results), len(queries))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("result %d: %v", i, r.Err)
		}
		if r.Query != queries[i] {
			t.Errorf("result %d query = %q, want %q", i, r.Query, queries[i])
		}
		wantID := string(rune('1' + i))
		if r.Response.QueryID != wantID {
			t.Errorf("result %d QueryID = %q, want %q", i, r.Response.QueryID, wantID)
		}
	}
}

func TestRunBelowThresholdIsSingleThreaded(t *testing.T) {
	idx := buildIndex(t, 3)
	c, _ := codec.ByName("vbyte")
	engine := query.NewEngine(idx, c, 0)

	results := Run(engine, []string{"1 word", "2 word"}, 5, "heap", 0)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("unexpected error: %v", r.Err)
		}
	}
}

func TestRunEmptyBatch(t *testing.T) {
	idx := buildIndex(t, 1)
	c, _ := codec.ByName("vbyte")
	engine := query.NewEngine(idx, c, 0)

	results := Run(engine, nil, 5, "heap", 0)
	if len(results) != 0 {
		t.Fatalf("got %d results, want 0", len(results))
	}
}
