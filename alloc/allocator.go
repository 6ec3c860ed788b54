package alloc

//go:generate mockgen -source allocator.go -destination mocks/mock_fallback.go

import (
	"math"

	"github.com/ShreyasPrasad/kheap"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// noAddress is the in-struct sentinel for "no block"- free-list heads hold it
// when their list is empty. Heap addresses are always non-negative.
const noAddress = -1

// noLink is the on-heap encoding of noAddress. Free-list links are stored as
// full words inside freed blocks, so the sentinel must survive a round trip
// through kheap.Memory.
const noLink uint64 = math.MaxUint64

func encodeLink(addr int) uint64 {
	if addr == noAddress {
		return noLink
	}
	return uint64(addr)
}

func decodeLink(word uint64) int {
	if word == noLink {
		return noAddress
	}
	return int(word)
}

// Allocator hands out regions of a fixed heap range that was mapped before
// Init. Every variant in this package satisfies it, so the installed allocator
// is a build-time choice rather than a runtime dispatch cost per call site.
type Allocator interface {
	// Init must be called exactly once, strictly after the entire range
	// [start, start+size) has been mapped read/write, because it is the first
	// point at which the allocator may write into the heap. mem is the
	// allocator's only view of the heap's contents; implementations that keep
	// no state inside the heap may ignore it.
	Init(start, size int, mem kheap.Memory)
	// Alloc returns the address of an unused region of at least size bytes,
	// aligned to align (which must be a power of two). The returned region
	// lies entirely inside the initialized heap range and overlaps no other
	// live allocation. When no region can satisfy the request, Alloc returns
	// an error wrapping kheap.OutOfMemoryError- exhaustion is an ordinary
	// failure for the caller to handle, never a panic.
	Alloc(size int, align uint) (int, error)
	// Dealloc returns an allocation to the allocator. The caller must pass
	// the exact size and align used at the matching Alloc call; the
	// allocators store no per-allocation metadata with which to verify this,
	// so a mismatched layout silently corrupts the heap.
	Dealloc(addr, size int, align uint)

	// AllocationCount returns the number of live allocations- successful
	// allocs minus successful deallocs.
	AllocationCount() int
	// SumFreeSize returns the number of bytes the allocator considers
	// reusable right now. Depending on the variant this can be much smaller
	// than the number of bytes not currently allocated.
	SumFreeSize() int
	// IsEmpty will return true if this allocator has no live allocations
	IsEmpty() bool

	// Validate performs internal consistency checks on the allocator's
	// bookkeeping. These checks may be expensive, depending on the
	// implementation. When the implementation is functioning correctly, it
	// should not be possible for this method to return an error, but this may
	// assist in diagnosing issues with the implementation.
	Validate() error

	// AddStatistics sums this allocator's load counters into the statistics
	// currently present in the provided kheap.Statistics object.
	AddStatistics(stats *kheap.Statistics)
	// MetadataJson populates a json object with information about this
	// allocator's current state.
	MetadataJson(json jwriter.ObjectState)
}

// Fallback is the general-purpose allocator that FixedSizeBlockAllocator
// delegates to when no block class fits a request or a class's free list is
// empty. FixedSizeBlockAllocator never inspects the fallback's internals-
// only this contract.
type Fallback interface {
	// Init must be called exactly once, before any other method, with the
	// same heap range handed to the owning allocator.
	Init(start, size int, mem kheap.Memory)
	// AllocateFirstFit returns the address of the first tracked free region
	// that can hold size bytes at the requested power-of-two alignment, or an
	// error wrapping kheap.OutOfMemoryError when none can.
	AllocateFirstFit(size int, align uint) (int, error)
	// Deallocate returns a region to the tracked free space, making it
	// available to future first-fit searches. No merging with neighboring
	// free regions is guaranteed.
	Deallocate(addr, size int, align uint)

	SumFreeSize() int
	Validate() error
	MetadataJson(json jwriter.ObjectState)
}
