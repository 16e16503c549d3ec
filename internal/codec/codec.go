// Package codec implements the integer codec family used to compress
// D-gap-encoded DocID runs and impact values in postings lists: a
// variable-byte family, word-packed Simple codecs, cross-word packed
// codecs that carry a selector into spare bits of a neighboring word, and
// bit-block codecs including Elias gamma/delta.
//
// Every codec is polymorphic only in {Encode, Decode, MaxValue, Name, ID};
// callers resolve codecs through the registry (ByName/ByID) rather than an interface method set
// chosen dynamically per value, since the set of codecs is closed at
// compile time and per-segment dispatch sits in the query driver's hot
// path (SPEC_FULL.md §4.2, §9).
package codec

import (
	"errors"
	"fmt"
)

// ErrShortBuffer is returned by Decode when src does not contain enough
// bytes to produce the requested number of integers.
var ErrShortBuffer = errors.New("codec: source buffer underflow")

// ErrMalformed is returned by Decode when the encoded stream is
// structurally invalid (e.g. an out-of-range selector).
var ErrMalformed = errors.New("codec: malformed encoded stream")

// Codec is the uniform interface every integer codec implements.
type Codec interface {
	// Name is the registry key and on-disk codec name.
	Name() string
	// ID is the single-byte codec identity stored at the start of a
	// postings list (SPEC_FULL.md §6).
	ID() uint8
	// MaxValue is the largest integer this codec can represent.
	MaxValue() uint64
	// Encode packs xs into dst, returning the number of bytes written,
	// or 0 if dst is too small or any value in xs exceeds MaxValue.
	Encode(dst []byte, xs []uint32) int
	// Decode reads from src and writes exactly len(dst) integers into
	// dst. It returns ErrShortBuffer if src is exhausted before dst is
	// filled, or ErrMalformed if the stream is structurally invalid.
	Decode(dst []uint32, src []byte) error
}

// registry holds every codec known at package init, keyed by name and by
// on-disk ID byte.
var (
	byName = map[string]Codec{}
	byID   = map[uint8]Codec{}
)

// Register adds a codec to the global registry. It is called from each
// codec file's init(); a duplicate name or ID is a programming error.
func Register(c Codec) {
	if _, exists := byName[c.Name()]; exists {
		panic(fmt.Sprintf("codec: duplicate registration for name %q", c.Name()))
	}
	if _, exists := byID[c.ID()]; exists {
		panic(fmt.Sprintf("codec: duplicate registration for id %d", c.ID()))
	}
	byName[c.Name()] = c
	byID[c.ID()] = c
}

// ByName resolves a codec by its registry name (e.g. "vbyte").
func ByName(name string) (Codec, bool) {
	c, ok := byName[name]
	return c, ok
}

// ByID resolves a codec by its on-disk identity byte.
func ByID(id uint8) (Codec, bool) {
	c, ok := byID[id]
	return c, ok
}

// SIMDCapability reports the CPU feature level detected at startup that
// gates bitpack's wide decode path (the only SIMD-gated codec), for CLI
// diagnostics — mirrors the teacher's sqlitevec.simdCapability().
func SIMDCapability() string {
	return simdCapability()
}

// Names returns every registered codec name, for CLI help text and
// config validation.
func Names() []string {
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	return names
}
