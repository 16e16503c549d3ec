package main

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"jass/internal/codec"
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

func buildIndexDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	c, _ := codec.ByName("vbyte")

	var postings []byte
	offset := uint64(len(postings))
	postings = appendSegment(c, postings, 4, []uint32{1, 2})
	postings = appendTerminator(postings)
	os.WriteFile(filepath.Join(dir, "postings"), postings, 0o644)

	vf, _ := os.Create(filepath.Join(dir, "vocabulary"))
	writeVocabRecord(t, vf, "term", offset, 2, 8, 1)
	vf.Close()

	pf, _ := os.Create(filepath.Join(dir, "primarykeys"))
	for _, k := range []string{"DOC-0", "DOC-1", "DOC-2"} {
		var n [2]byte
		binary.LittleEndian.PutUint16(n[:], uint16(len(k)))
		pf.Write(n[:])
		pf.WriteString(k)
	}
	pf.Close()

	os.WriteFile(filepath.Join(dir, "codec"), []byte{c.ID()}, 0o644)
	return dir
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	fn()
	w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestRunQuerySubcommand(t *testing.T) {
	dir := buildIndexDir(t)
	var out string
	var code int
	out = captureStdout(t, func() {
		code = run([]string{"query", "-index", dir, "-k", "5", "term"})
	})
	if code != exitOK {
		t.Fatalf("run() = %d, want %d", code, exitOK)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 TREC lines, got %d: %q", len(lines), out)
	}
}

func TestRunBadArgsExitCode(t *testing.T) {
	if code := run(nil); code != exitBadArgs {
		t.Errorf("run(nil) = %d, want %d", code, exitBadArgs)
	}
	if code := run([]string{"bogus"}); code != exitBadArgs {
		t.Errorf("run([bogus]) = %d, want %d", code, exitBadArgs)
	}
}

func TestRunIOErrorOnMissingIndex(t *testing.T) {
	code := run([]string{"query", "-index", "/nonexistent/path/xyz", "term"})
	if code != exitIOError {
		t.Errorf("run() = %d, want %d", code, exitIOError)
	}
}
