// Package index loads a pre-built impact-ordered index off disk: the
// vocabulary (term → postings location), the postings byte stream
// itself, and the primary-key table mapping internal DocIDs back to
// collection-external document names (SPEC_FULL.md §4.7/§6).
package index

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
)

// VocabularyError reports a structural problem with a vocabulary
// record discovered at Open.
type VocabularyError struct {
	Term string
	Msg  string
}

func (e *VocabularyError) Error() string {
	return fmt.Sprintf("index: vocabulary term %q: %s", e.Term, e.Msg)
}

// Entry is one vocabulary record: a term and the location/shape of its
// postings list.
type Entry struct {
	Term           string
	PostingsOffset uint64
	DocFrequency   uint64
	CollFrequency  uint64
	ImpactSegments uint32
}

// Index is the immutable, shared, read-only view over one on-disk
// index: every Query built against it may look up terms and decode
// postings concurrently (SPEC_FULL.md §5).
type Index struct {
	vocab       []Entry
	postings    []byte
	primaryKeys []string
	codecID     uint8
}

// Open reads the vocabulary, postings, and primary-key files rooted at
// dir ("vocabulary", "postings", "primarykeys") and a single codec
// identity byte ("codec"). The vocabulary need not arrive sorted —
// Open sorts it before returning so Lookup can binary search
// (SPEC_FULL.md §4.7).
func Open(dir string) (*Index, error) {
	vocab, err := readVocabulary(dir + "/vocabulary")
	if err != nil {
		return nil, fmt.Errorf("index: open vocabulary: %w", err)
	}
	postings, err := os.ReadFile(dir + "/postings")
	if err != nil {
		return nil, fmt.Errorf("index: open postings: %w", err)
	}
	primaryKeys, err := readPrimaryKeys(dir + "/primarykeys")
	if err != nil {
		return nil, fmt.Errorf("index: open primary keys: %w", err)
	}
	codecByte, err := os.ReadFile(dir + "/codec")
	if err != nil {
		return nil, fmt.Errorf("index: open codec: %w", err)
	}
	if len(codecByte) != 1 {
		return nil, fmt.Errorf("index: codec file must contain exactly one byte, got %d", len(codecByte))
	}

	sort.Slice(vocab, func(i, j int) bool { return vocab[i].Term < vocab[j].Term })
	for i := 1; i < len(vocab); i++ {
		if vocab[i].Term == vocab[i-1].Term {
			return nil, &VocabularyError{Term: vocab[i].Term, Msg: "duplicate term in vocabulary"}
		}
	}

	for _, e := range vocab {
		if err := checkImpactOrdering(e, postings); err != nil {
			return nil, err
		}
	}

	return &Index{vocab: vocab, postings: postings, primaryKeys: primaryKeys, codecID: codecByte[0]}, nil
}

// checkImpactOrdering walks only the impact-segment headers of e's
// postings list (never decoding a gap body) and rejects an index whose
// segments do not strictly decrease in impact, per SPEC_FULL.md §9's
// "tests must reject" resolution of the duplicate-impact open
// question: the driver and codec layer assume impacts are unique per
// term and never coalesce.
func checkImpactOrdering(e Entry, postings []byte) error {
	if e.PostingsOffset > uint64(len(postings)) {
		return &VocabularyError{Term: e.Term, Msg: "postings offset out of range"}
	}
	body := postings[e.PostingsOffset:]
	pos := 0
	prev := uint16(0)
	first := true
	for {
		if pos+10 > len(body) {
			return &VocabularyError{Term: e.Term, Msg: "postings stream truncated before terminator"}
		}
		impact := binary.LittleEndian.Uint16(body[pos:])
		bodyLen := binary.LittleEndian.Uint32(body[pos+6:])
		pos += 10
		if impact == 0 {
			return nil
		}
		if !first && impact >= prev {
			return &VocabularyError{Term: e.Term, Msg: "impact segments are not strictly decreasing"}
		}
		prev, first = impact, false
		pos += int(bodyLen)
		if pos > len(body) {
			return &VocabularyError{Term: e.Term, Msg: "postings stream truncated within segment body"}
		}
	}
}

// CodecID returns the single-byte codec identity recorded for this
// index's postings lists (SPEC_FULL.md §6).
func (idx *Index) CodecID() uint8 { return idx.codecID }

// Lookup finds term by binary search over the sorted vocabulary,
// returning its entry and true, or the zero Entry and false if term is
// not present.
func (idx *Index) Lookup(term string) (Entry, bool) {
	i := sort.Search(len(idx.vocab), func(i int) bool { return idx.vocab[i].Term >= term })
	if i < len(idx.vocab) && idx.vocab[i].Term == term {
		return idx.vocab[i], true
	}
	return Entry{}, false
}

// PostingsBody returns the postings byte stream starting at e's
// recorded offset, running to the end of the postings file (the
// postings iterator finds its own terminator within it).
func (idx *Index) PostingsBody(e Entry) []byte {
	if e.PostingsOffset > uint64(len(idx.postings)) {
		return nil
	}
	return idx.postings[e.PostingsOffset:]
}

// PrimaryKey returns the external document name for an internal DocID.
func (idx *Index) PrimaryKey(docID uint32) string {
	if int(docID) >= len(idx.primaryKeys) {
		return ""
	}
	return idx.primaryKeys[docID]
}

// DocumentCount returns the number of documents in the collection.
func (idx *Index) DocumentCount() int { return len(idx.primaryKeys) }

// readVocabulary parses the vocabulary file format from SPEC_FULL.md
// §6: a sequence of (lex_len:u16, lex_bytes, postings_offset:u64,
// df:u64, cf:u64, n_impacts:u32) records, any order, until EOF.
func readVocabulary(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var entries []Entry
	for {
		var lexLen uint16
		if err := binary.Read(r, binary.LittleEndian, &lexLen); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		lexBytes := make([]byte, lexLen)
		if _, err := io.ReadFull(r, lexBytes); err != nil {
			return nil, err
		}
		var e Entry
		if err := binary.Read(r, binary.LittleEndian, &e.PostingsOffset); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &e.DocFrequency); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &e.CollFrequency); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &e.ImpactSegments); err != nil {
			return nil, err
		}
		e.Term = string(lexBytes)
		entries = append(entries, e)
	}
	return entries, nil
}

// readPrimaryKeys parses the length-prefixed primary-key file:
// (len:u16, bytes) records, one per DocID in ascending order.
func readPrimaryKeys(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var keys []string
	for {
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		keys = append(keys, string(buf))
	}
	return keys, nil
}
