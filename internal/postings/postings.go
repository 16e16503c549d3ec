// Package postings implements the impact-ordered postings iterator: for
// a single term it streams impact segments in descending impact order,
// D-gap decodes each segment's compressed DocID run through the
// configured codec, and hands the caller ascending DocIDs one impact
// segment at a time (original_source/posting.h; SPEC_FULL.md §4.5/§6).
package postings

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"jass/internal/arena"
	"jass/internal/codec"
)

// DecodeError reports a codec decode failure partway through a term's
// postings, naming enough context to diagnose the failed query without
// re-running it (SPEC_FULL.md §4.5).
type DecodeError struct {
	Term    string
	Segment int
	Codec   string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("postings: term %q segment %d codec %q: %v", e.Term, e.Segment, e.Codec, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Segment is one decoded impact segment: every DocID in IDs carries the
// same impact score.
type Segment struct {
	Impact uint32
	IDs    []uint32
}

// Iterator reads impact segments for a single term from a postings
// byte stream (SPEC_FULL.md §6: impact:u16, count:u32, body_len:u32,
// body_bytes, terminated by impact==0), D-gap decoding each segment's
// body through c into DocIDs allocated from a.
type Iterator struct {
	term  string
	body  []byte
	pos   int
	seg   int
	c     codec.Codec
	a     *arena.Arena
	err   error
	done  bool
}

// New constructs an Iterator over body, the bytes at a term's
// postings_offset, using c to decode each segment's gap run and a to
// allocate scratch DocID slices. term is carried only for error
// reporting.
func New(term string, body []byte, c codec.Codec, a *arena.Arena) *Iterator {
	return &Iterator{term: term, body: body, c: c, a: a}
}

// Next reads the next impact segment, or returns false (with Err()
// reporting any failure) once the header stream is exhausted or the
// impact==0 terminator is read.
func (it *Iterator) Next() (Segment, bool) {
	if it.done || it.err != nil {
		return Segment{}, false
	}
	if it.pos+10 > len(it.body) {
		it.done = true
		return Segment{}, false
	}

	impact := binary.LittleEndian.Uint16(it.body[it.pos:])
	count := binary.LittleEndian.Uint32(it.body[it.pos+2:])
	bodyLen := binary.LittleEndian.Uint32(it.body[it.pos+6:])
	it.pos += 10

	if impact == 0 {
		it.done = true
		return Segment{}, false
	}

	if it.pos+int(bodyLen) > len(it.body) {
		it.err = &DecodeError{Term: it.term, Segment: it.seg, Codec: it.c.Name(), Err: codec.ErrShortBuffer}
		return Segment{}, false
	}
	segBytes := it.body[it.pos : it.pos+int(bodyLen)]
	it.pos += int(bodyLen)

	if count == 0 {
		it.seg++
		return Segment{Impact: uint32(impact), IDs: nil}, true
	}

	gapBuf := it.a.Alloc(int(count)*4, 4)
	gaps := unsafe.Slice((*uint32)(unsafe.Pointer(&gapBuf[0])), count)
	if err := it.c.Decode(gaps, segBytes); err != nil {
		it.err = &DecodeError{Term: it.term, Segment: it.seg, Codec: it.c.Name(), Err: err}
		return Segment{}, false
	}

	ids := gaps
	var running uint32
	for i, g := range ids {
		running += g
		ids[i] = running
	}

	it.seg++
	return Segment{Impact: uint32(impact), IDs: ids}, true
}

// Err reports the failure, if any, that stopped iteration early. A nil
// Err after Next returns false means the stream ended normally (header
// exhausted or impact==0 terminator).
func (it *Iterator) Err() error { return it.err }

