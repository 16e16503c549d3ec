package index

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func writeVocabRecord(t *testing.T, f *os.File, term string, offset, df, cf uint64, nImpacts uint32) {
	t.Helper()
	var lexLen [2]byte
	binary.LittleEndian.PutUint16(lexLen[:], uint16(len(term)))
	if _, err := f.Write(lexLen[:]); err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(term); err != nil {
		t.Fatal(err)
	}
	var rest [28]byte
	binary.LittleEndian.PutUint64(rest[0:], offset)
	binary.LittleEndian.PutUint64(rest[8:], df)
	binary.LittleEndian.PutUint64(rest[16:], cf)
	binary.LittleEndian.PutUint32(rest[24:], nImpacts)
	if _, err := f.Write(rest[:]); err != nil {
		t.Fatal(err)
	}
}

func writePrimaryKey(t *testing.T, f *os.File, key string) {
	t.Helper()
	var n [2]byte
	binary.LittleEndian.PutUint16(n[:], uint16(len(key)))
	if _, err := f.Write(n[:]); err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(key); err != nil {
		t.Fatal(err)
	}
}

func buildTestIndex(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	vf, err := os.Create(filepath.Join(dir, "vocabulary"))
	if err != nil {
		t.Fatal(err)
	}
	// Written out of order to exercise sort-on-open.
	writeVocabRecord(t, vf, "zebra", 10, 2, 4, 1)
	writeVocabRecord(t, vf, "apple", 0, 5, 9, 2)
	vf.Close()

	// Each term's postings list is a bare terminator record (impact==0),
	// i.e. a term with zero impact segments, at its own offset — enough
	// to exercise offset slicing and the impact-ordering check (which
	// accepts an immediately-terminated stream) without needing a real
	// codec-encoded body.
	if err := os.WriteFile(filepath.Join(dir, "postings"), make([]byte, 20), 0o644); err != nil {
		t.Fatal(err)
	}

	pf, err := os.Create(filepath.Join(dir, "primarykeys"))
	if err != nil {
		t.Fatal(err)
	}
	writePrimaryKey(t, pf, "DOC-A")
	writePrimaryKey(t, pf, "DOC-B")
	pf.Close()

	if err := os.WriteFile(filepath.Join(dir, "codec"), []byte{1}, 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestOpenSortsVocabularyAndLooksUp(t *testing.T) {
	idx, err := Open(buildTestIndex(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	e, ok := idx.Lookup("apple")
	if !ok {
		t.Fatal("expected apple to be found")
	}
	if e.PostingsOffset != 0 || e.DocFrequency != 5 || e.CollFrequency != 9 || e.ImpactSegments != 2 {
		t.Errorf("apple entry = %+v", e)
	}

	e, ok = idx.Lookup("zebra")
	if !ok {
		t.Fatal("expected zebra to be found")
	}
	if e.PostingsOffset != 10 {
		t.Errorf("zebra offset = %d, want 10", e.PostingsOffset)
	}

	if _, ok := idx.Lookup("missing"); ok {
		t.Error("expected missing term to not be found")
	}
}

func TestPrimaryKeyAndDocumentCount(t *testing.T) {
	idx, err := Open(buildTestIndex(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if idx.DocumentCount() != 2 {
		t.Errorf("DocumentCount() = %d, want 2", idx.DocumentCount())
	}
	if got := idx.PrimaryKey(0); got != "DOC-A" {
		t.Errorf("PrimaryKey(0) = %q", got)
	}
	if got := idx.PrimaryKey(1); got != "DOC-B" {
		t.Errorf("PrimaryKey(1) = %q", got)
	}
	if got := idx.PrimaryKey(99); got != "" {
		t.Errorf("PrimaryKey(99) = %q, want empty", got)
	}
}

func TestCodecIDAndPostingsBody(t *testing.T) {
	idx, err := Open(buildTestIndex(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if idx.CodecID() != 1 {
		t.Errorf("CodecID() = %d, want 1", idx.CodecID())
	}
	e, _ := idx.Lookup("zebra")
	body := idx.PostingsBody(e)
	if len(body) != 10 {
		t.Errorf("PostingsBody(zebra) len = %d, want 10", len(body))
	}
}

func TestOpenRejectsDuplicateTerm(t *testing.T) {
	dir := t.TempDir()
	vf, err := os.Create(filepath.Join(dir, "vocabulary"))
	if err != nil {
		t.Fatal(err)
	}
	writeVocabRecord(t, vf, "dup", 0, 1, 1, 1)
	writeVocabRecord(t, vf, "dup", 5, 1, 1, 1)
	vf.Close()
	os.WriteFile(filepath.Join(dir, "postings"), []byte{0, 0}, 0o644)
	pf, _ := os.Create(filepath.Join(dir, "primarykeys"))
	pf.Close()
	os.WriteFile(filepath.Join(dir, "codec"), []byte{1}, 0o644)

	_, err = Open(dir)
	if err == nil {
		t.Fatal("expected VocabularyError for duplicate term")
	}
	if _, ok := err.(*VocabularyError); !ok {
		t.Errorf("err type = %T, want *VocabularyError", err)
	}
}
