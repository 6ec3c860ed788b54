package alloc

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"

	"github.com/ShreyasPrasad/kheap"
)

const (
	// listNodeSize is the footprint of a free-region node: one word for the
	// region's size and one word for the link to the next region. Nodes live
	// inside the free regions they describe, so every tracked region must be
	// at least this large.
	listNodeSize        = 2 * kheap.WordSize
	listNodeAlign  uint = kheap.WordSize
	listNodeOffset      = 0
	listLinkOffset      = kheap.WordSize
)

// ListAllocator is a general-purpose first-fit free-list allocator. Free
// regions are tracked as a singly-linked list threaded through the regions'
// own memory: the first word of a free region holds its size, the second the
// address of the next free region. No metadata is stored outside the heap.
//
// Allocation walks the list and takes the first region that can hold the
// request, returning any leading or trailing remainder to the list when the
// remainder is large enough to carry its own node. Freed regions are pushed
// onto the front of the list and are not merged with their neighbors.
//
// It satisfies the Fallback contract and backs FixedSizeBlockAllocator for
// requests that miss the block-class table.
type ListAllocator struct {
	// head is the address of the first free region, or noAddress
	head      int
	mem       kheap.Memory
	heapStart int
	heapEnd   int

	freeBytes       int
	allocations     int
	allocationBytes int
}

var _ Fallback = &ListAllocator{}

func NewListAllocator() *ListAllocator {
	return &ListAllocator{
		head: noAddress,
	}
}

// Init hands the allocator its heap range and makes the entire range one free
// region. The range's start must be word-aligned and its size must be at
// least one free-list node.
func (a *ListAllocator) Init(start, size int, mem kheap.Memory) {
	a.mem = mem
	a.heapStart = start
	a.heapEnd = start + size
	a.head = noAddress
	a.freeBytes = 0
	a.addFreeRegion(start, size)
}

// addFreeRegion pushes a region onto the front of the free list, writing the
// region's node into its own first two words.
func (a *ListAllocator) addFreeRegion(addr, size int) {
	// A region that cannot carry its own node cannot be tracked. Callers are
	// responsible for never producing one.
	if kheap.AlignUp(addr, listNodeAlign) != addr {
		panic(errors.Errorf("free region address %#x is not aligned to %d, so it cannot hold a free-list node", addr, listNodeAlign).Error())
	}
	if size < listNodeSize {
		panic(errors.Errorf("free region of size %d is too small to hold a %d-byte free-list node", size, listNodeSize).Error())
	}

	a.mem.WriteWord(addr+listNodeOffset, uint64(size))
	a.mem.WriteWord(addr+listLinkOffset, encodeLink(a.head))
	a.head = addr
	a.freeBytes += size
}

// adjustLayout raises a requested layout to one the free list can track after
// the region is freed again: the alignment becomes at least the node
// alignment and the size becomes at least one node, rounded to whole words.
// Alloc and Dealloc apply the identical adjustment, so a caller passing the
// original layout to both always names the same effective region.
func adjustLayout(size int, align uint) (int, uint) {
	if align < listNodeAlign {
		align = listNodeAlign
	}
	if size < listNodeSize {
		size = listNodeSize
	}
	return kheap.AlignUp(size, listNodeAlign), align
}

// fitInRegion computes the aligned start address the request would occupy
// inside a free region, or false if the region cannot hold it. A fit is
// rejected when it would strand a leading or trailing remainder too small to
// rejoin the free list.
func fitInRegion(regionAddr, regionSize, size int, align uint) (int, bool) {
	allocStart := kheap.AlignUp(regionAddr, align)
	allocEnd, ok := kheap.CheckedAdd(allocStart, size)
	if !ok || allocEnd > regionAddr+regionSize {
		return 0, false
	}

	front := allocStart - regionAddr
	if front > 0 && front < listNodeSize {
		return 0, false
	}

	tail := regionAddr + regionSize - allocEnd
	if tail > 0 && tail < listNodeSize {
		return 0, false
	}

	return allocStart, true
}

// AllocateFirstFit walks the free list and carves the request out of the
// first region that can hold it. Leading and trailing remainders go back on
// the list.
func (a *ListAllocator) AllocateFirstFit(size int, align uint) (int, error) {
	kheap.DebugCheckPow2(align, "align")

	requestedSize := size
	size, align = adjustLayout(size, align)

	prev := noAddress
	current := a.head
	for current != noAddress {
		regionSize := int(a.mem.ReadWord(current + listNodeOffset))
		next := decodeLink(a.mem.ReadWord(current + listLinkOffset))

		allocStart, ok := fitInRegion(current, regionSize, size, align)
		if !ok {
			prev = current
			current = next
			continue
		}

		// Unlink the region, then return the unused pieces to the list.
		if prev == noAddress {
			a.head = next
		} else {
			a.mem.WriteWord(prev+listLinkOffset, encodeLink(next))
		}
		a.freeBytes -= regionSize

		if front := allocStart - current; front > 0 {
			a.addFreeRegion(current, front)
		}
		if tail := current + regionSize - (allocStart + size); tail > 0 {
			a.addFreeRegion(allocStart+size, tail)
		}

		a.allocations++
		a.allocationBytes += requestedSize
		return allocStart, nil
	}

	return 0, cerrors.Wrapf(kheap.OutOfMemoryError, "no free region fits an allocation of size %d and alignment %d", size, align)
}

// Deallocate returns a region to the free list. The caller must pass the
// exact size and align used at the matching AllocateFirstFit call.
func (a *ListAllocator) Deallocate(addr, size int, align uint) {
	if a.allocations == 0 {
		panic("list allocator: deallocate without a matching live allocation")
	}

	requestedSize := size
	size, _ = adjustLayout(size, align)

	kheap.DebugFillFreed(a.mem, addr, size)
	a.addFreeRegion(addr, size)
	a.allocations--
	a.allocationBytes -= requestedSize
}

// AllocationCount returns the number of live allocations.
func (a *ListAllocator) AllocationCount() int {
	return a.allocations
}

// SumFreeSize returns the total number of bytes across all tracked free
// regions. Because regions are never merged, the largest satisfiable
// allocation may be much smaller than this.
func (a *ListAllocator) SumFreeSize() int {
	return a.freeBytes
}

// IsEmpty will return true if this allocator has no live allocations
func (a *ListAllocator) IsEmpty() bool {
	return a.allocations == 0
}

type freeRegion struct {
	addr int
	size int
}

// collectFreeRegions walks the free list into a slice, guarding against
// cycles. The walk reads every node from heap memory, so it is not cheap.
func (a *ListAllocator) collectFreeRegions() ([]freeRegion, error) {
	maxRegions := (a.heapEnd - a.heapStart) / listNodeSize

	var regions []freeRegion
	for current := a.head; current != noAddress; {
		if len(regions) >= maxRegions {
			return nil, errors.Errorf("walked %d free regions in a heap that can hold at most %d- the free list must contain a cycle", len(regions), maxRegions)
		}

		size := int(a.mem.ReadWord(current + listNodeOffset))
		regions = append(regions, freeRegion{addr: current, size: size})
		current = decodeLink(a.mem.ReadWord(current + listLinkOffset))
	}

	return regions, nil
}

// Validate performs internal consistency checks on the free list. It reads
// every node from heap memory and sorts the regions, so it is expensive and
// intended for diagnostics.
func (a *ListAllocator) Validate() error {
	regions, err := a.collectFreeRegions()
	if err != nil {
		return err
	}

	var sumFree int
	for _, region := range regions {
		if kheap.AlignUp(region.addr, listNodeAlign) != region.addr {
			return errors.Errorf("free region at %#x is not aligned to %d", region.addr, listNodeAlign)
		}

		if region.size < listNodeSize {
			return errors.Errorf("free region at %#x has size %d, which cannot hold its own free-list node", region.addr, region.size)
		}

		if region.addr < a.heapStart || region.addr+region.size > a.heapEnd {
			return errors.Errorf("free region [%#x, %#x) lies outside the heap region [%#x, %#x)", region.addr, region.addr+region.size, a.heapStart, a.heapEnd)
		}

		sumFree += region.size
	}

	if sumFree != a.freeBytes {
		return errors.Errorf("the free list tracks %d bytes, but the allocator's counter says %d", sumFree, a.freeBytes)
	}

	slices.SortFunc(regions, func(left, right freeRegion) bool {
		return left.addr < right.addr
	})
	for i := 1; i < len(regions); i++ {
		previous := regions[i-1]
		if previous.addr+previous.size > regions[i].addr {
			return errors.Errorf("free regions [%#x, %#x) and [%#x, %#x) overlap", previous.addr, previous.addr+previous.size, regions[i].addr, regions[i].addr+regions[i].size)
		}
	}

	return nil
}

// AddStatistics sums this allocator's load counters into the statistics
// currently present in the provided kheap.Statistics object.
func (a *ListAllocator) AddStatistics(stats *kheap.Statistics) {
	stats.AllocationCount += a.allocations
	stats.AllocationBytes += a.allocationBytes
	stats.HeapBytes += a.heapEnd - a.heapStart
	stats.FreeBytes += a.freeBytes
}

// MetadataJson populates a json object with information about this
// allocator's current state, including one entry per tracked free region.
func (a *ListAllocator) MetadataJson(json jwriter.ObjectState) {
	json.Name("Type").String("FreeList")
	json.Name("TotalBytes").Int(a.heapEnd - a.heapStart)
	json.Name("Allocations").Int(a.allocations)
	json.Name("FreeBytes").Int(a.freeBytes)

	regionArray := json.Name("FreeRegions").Array()
	defer regionArray.End()

	regions, err := a.collectFreeRegions()
	if err != nil {
		// A cyclic list cannot be dumped, but the dump itself should not
		// bring the process down.
		return
	}

	for _, region := range regions {
		regionObj := regionArray.Object()
		regionObj.Name("Offset").Int(region.addr - a.heapStart)
		regionObj.Name("Size").Int(region.size)
		regionObj.End()
	}
}

// DebugLogAllFreeRegions calls logFunc once per tracked free region. The walk
// reads every node from heap memory, so this should only be used for
// diagnostic purposes.
func (a *ListAllocator) DebugLogAllFreeRegions(logger *slog.Logger, logFunc func(log *slog.Logger, offset int, size int)) {
	regions, err := a.collectFreeRegions()
	if err != nil {
		return
	}

	for _, region := range regions {
		logFunc(logger, region.addr-a.heapStart, region.size)
	}
}
