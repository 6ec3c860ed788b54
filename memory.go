package kheap

// WordSize is the width in bytes of the machine words that Memory exposes.
// Free-list links threaded through freed blocks are exactly one word wide.
const WordSize = 8

// Memory grants an allocator word-level access to the heap range it owns.
// Allocators use it to write free-list nodes into the freed blocks themselves,
// so no metadata is stored outside the heap region.
//
// Implementations must support reads and writes at any word-aligned address
// inside the initialized range. Access to an address outside the range, or to
// an unmapped or misaligned address, is a fatal programming error and panics.
type Memory interface {
	ReadWord(addr int) uint64
	WriteWord(addr int, value uint64)
}
