package alloc

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"

	"github.com/ShreyasPrasad/kheap"
)

// BumpAllocator is the simplest Allocator variant: a single cursor marks the
// next unused address, and each allocation advances it. The only bookkeeping
// beyond the cursor is a live-allocation count, so individual frees reclaim
// nothing- the entire region becomes reusable in one step when the count
// returns to zero.
//
// That makes this variant suitable only for stack-like allocation lifetimes
// or as a bootstrap allocator, but allocation is a handful of integer
// operations and there is no internal fragmentation beyond alignment padding.
type BumpAllocator struct {
	heapStart int
	heapEnd   int
	// next always holds the next unused address in the region. It is
	// monotonically non-decreasing between full reclaims.
	next            int
	allocations     int
	allocationBytes int
}

var _ Allocator = &BumpAllocator{}

func NewBumpAllocator() *BumpAllocator {
	return &BumpAllocator{}
}

// Init hands the allocator its heap range. The bump allocator keeps no state
// inside the heap, so mem is unused.
func (a *BumpAllocator) Init(start, size int, mem kheap.Memory) {
	a.heapStart = start
	a.heapEnd = start + size
	a.next = start
}

// Alloc advances the bump cursor past an aligned region of the requested size
// and returns the region's start address.
func (a *BumpAllocator) Alloc(size int, align uint) (int, error) {
	kheap.DebugCheckPow2(align, "align")

	allocStart := kheap.AlignUp(a.next, align)
	allocEnd, ok := kheap.CheckedAdd(allocStart, size)
	if !ok {
		return 0, cerrors.Wrapf(kheap.OutOfMemoryError, "allocation of size %d at %#x overflows the address space", size, allocStart)
	}

	if allocEnd > a.heapEnd {
		return 0, cerrors.Wrapf(kheap.OutOfMemoryError, "allocation of size %d does not fit in the %d unused bytes of the region", size, a.heapEnd-a.next)
	}

	a.next = allocEnd
	a.allocations++
	a.allocationBytes += size
	return allocStart, nil
}

// Dealloc drops the live-allocation count. The address and layout are
// otherwise unused- the allocator tracks no per-allocation state, so it cannot
// reuse the freed bytes until every outstanding allocation has been returned.
// When the count reaches zero the cursor resets and the whole region is
// reclaimed at once.
func (a *BumpAllocator) Dealloc(addr, size int, align uint) {
	if a.allocations == 0 {
		panic("bump allocator: dealloc without a matching live allocation")
	}

	a.allocations--
	a.allocationBytes -= size
	if a.allocations == 0 {
		a.next = a.heapStart
	}
}

// AllocationCount returns the number of live allocations.
func (a *BumpAllocator) AllocationCount() int {
	return a.allocations
}

// SumFreeSize returns the number of bytes between the bump cursor and the end
// of the region. Bytes behind the cursor are not counted even when their
// allocations have been freed, because they cannot be reused until the region
// fully reclaims.
func (a *BumpAllocator) SumFreeSize() int {
	return a.heapEnd - a.next
}

// IsEmpty will return true if this allocator has no live allocations
func (a *BumpAllocator) IsEmpty() bool {
	return a.allocations == 0
}

// Validate performs internal consistency checks on the allocator's bookkeeping.
func (a *BumpAllocator) Validate() error {
	if a.next < a.heapStart || a.next > a.heapEnd {
		return errors.Errorf("bump cursor %#x lies outside the heap region [%#x, %#x)", a.next, a.heapStart, a.heapEnd)
	}

	if a.allocations < 0 {
		return errors.Errorf("the live-allocation count is %d, but it can never be negative", a.allocations)
	}

	if a.allocations == 0 && a.next != a.heapStart {
		return errors.Errorf("no allocations are live but the bump cursor %#x has not reclaimed to the region start %#x", a.next, a.heapStart)
	}

	return nil
}

// AddStatistics sums this allocator's load counters into the statistics
// currently present in the provided kheap.Statistics object.
func (a *BumpAllocator) AddStatistics(stats *kheap.Statistics) {
	stats.AllocationCount += a.allocations
	stats.AllocationBytes += a.allocationBytes
	stats.HeapBytes += a.heapEnd - a.heapStart
	stats.FreeBytes += a.SumFreeSize()
}

// MetadataJson populates a json object with information about this allocator's
// current state.
func (a *BumpAllocator) MetadataJson(json jwriter.ObjectState) {
	json.Name("Type").String("Bump")
	json.Name("TotalBytes").Int(a.heapEnd - a.heapStart)
	json.Name("Next").Int(a.next)
	json.Name("Allocations").Int(a.allocations)
	json.Name("FreeBytes").Int(a.SumFreeSize())
}
