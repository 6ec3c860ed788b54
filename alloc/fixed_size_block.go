package alloc

import (
	"fmt"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"

	"github.com/ShreyasPrasad/kheap"
)

// BlockSizes is the fixed table of block classes, in ascending order. Every
// entry must be a power of two because the class size doubles as the class
// alignment, and none may be smaller than a free-list link, because a freed
// block stores the link to the next free block of its class in its own first
// word.
//
// The table is frozen for the allocator's lifetime: Dealloc recomputes a
// block's class from the caller-provided layout instead of storing it, so
// changing the table between an alloc and its matching dealloc would return
// blocks to the wrong list. validateBlockSizes enforces the table's shape at
// package load.
var BlockSizes = []int{8, 16, 32, 64, 128, 256, 512, 1024, 2048}

const (
	freeBlockNodeSize        = kheap.WordSize
	freeBlockNodeAlign  uint = kheap.WordSize
)

func init() {
	validateBlockSizes()
}

func validateBlockSizes() {
	for classIndex, blockSize := range BlockSizes {
		if err := kheap.CheckPow2(uint(blockSize), "block size"); err != nil {
			panic(fmt.Sprintf("block class %d: %+v", classIndex, err))
		}

		if blockSize < freeBlockNodeSize || blockSize < int(freeBlockNodeAlign) {
			panic(fmt.Sprintf("block class %d has size %d, which cannot hold a %d-byte free-list link", classIndex, blockSize, freeBlockNodeSize))
		}

		if classIndex > 0 && BlockSizes[classIndex-1] >= blockSize {
			panic(fmt.Sprintf("block class %d (size %d) does not ascend from class %d (size %d)", classIndex, blockSize, classIndex-1, BlockSizes[classIndex-1]))
		}
	}
}

// sizeClassIndex returns the index of the smallest block class that can hold
// an allocation with the given layout, or noClass when the request exceeds
// the largest class and must route to the fallback allocator. The required
// block size is max(size, align): the class size serves as the block's
// alignment, so satisfying the larger of the two satisfies both.
func sizeClassIndex(size int, align uint) int {
	requiredBlockSize := size
	if int(align) > requiredBlockSize {
		requiredBlockSize = int(align)
	}

	return slices.IndexFunc(BlockSizes, func(blockSize int) bool {
		return blockSize >= requiredBlockSize
	})
}

const noClass = -1

// FixedSizeBlockAllocator buckets allocations into power-of-two block classes
// and keeps one free list per class, threaded through the freed blocks
// themselves. A request that fits a class is served from the class's list in
// O(1) when the list is non-empty, or carved from the fallback allocator as a
// fresh (classSize, classSize) block when it is. Requests larger than the
// biggest class delegate to the fallback with their original layout.
//
// Freed class blocks always return to their class list, never to the
// fallback, so steady-state alloc and dealloc of class-sized objects touch no
// search structure at all. The cost is internal fragmentation bounded by
// roughly 2x per allocation.
type FixedSizeBlockAllocator struct {
	// listHeads holds the address of the first free block of each class, or
	// noAddress for an empty list.
	listHeads  []int
	freeCounts []int
	fallback   Fallback

	mem       kheap.Memory
	heapStart int
	heapEnd   int

	allocations     int
	allocationBytes int
}

var _ Allocator = &FixedSizeBlockAllocator{}

// NewFixedSizeBlockAllocator creates a FixedSizeBlockAllocator backed by a
// first-fit ListAllocator fallback.
func NewFixedSizeBlockAllocator() *FixedSizeBlockAllocator {
	return NewFixedSizeBlockAllocatorWithFallback(NewListAllocator())
}

// NewFixedSizeBlockAllocatorWithFallback creates a FixedSizeBlockAllocator
// that delegates class misses and list exhaustion to the provided fallback.
func NewFixedSizeBlockAllocatorWithFallback(fallback Fallback) *FixedSizeBlockAllocator {
	listHeads := make([]int, len(BlockSizes))
	for classIndex := range listHeads {
		listHeads[classIndex] = noAddress
	}

	return &FixedSizeBlockAllocator{
		listHeads:  listHeads,
		freeCounts: make([]int, len(BlockSizes)),
		fallback:   fallback,
	}
}

// Init hands the allocator its heap range. All class free lists start empty;
// the embedded fallback allocator is initialized over the full range and
// every block is ultimately carved from it.
func (a *FixedSizeBlockAllocator) Init(start, size int, mem kheap.Memory) {
	a.mem = mem
	a.heapStart = start
	a.heapEnd = start + size
	a.fallback.Init(start, size, mem)
}

// Alloc serves a request from its block class's free list when possible,
// carving a fresh block from the fallback when the list is empty, and
// delegating to the fallback outright when the request fits no class.
func (a *FixedSizeBlockAllocator) Alloc(size int, align uint) (int, error) {
	kheap.DebugCheckPow2(align, "align")

	classIndex := sizeClassIndex(size, align)
	if classIndex == noClass {
		// Oversized request- delegate the original, unmodified layout.
		addr, err := a.fallback.AllocateFirstFit(size, align)
		if err != nil {
			return 0, err
		}

		a.allocations++
		a.allocationBytes += size
		return addr, nil
	}

	if head := a.listHeads[classIndex]; head != noAddress {
		// Pop the head block and reuse its memory directly. The block's link
		// word is dead the moment it leaves the list.
		a.listHeads[classIndex] = decodeLink(a.mem.ReadWord(head))
		a.freeCounts[classIndex]--

		a.allocations++
		a.allocationBytes += size
		return head, nil
	}

	// Empty list- carve a fresh block. Block sizes are powers of two, so the
	// class size doubles as the block alignment.
	blockSize := BlockSizes[classIndex]
	addr, err := a.fallback.AllocateFirstFit(blockSize, uint(blockSize))
	if err != nil {
		return 0, err
	}

	a.allocations++
	a.allocationBytes += size
	return addr, nil
}

// Dealloc returns a block to its class's free list, writing the list link
// into the block's own first word. Blocks that fit no class return to the
// fallback allocator with their original layout.
func (a *FixedSizeBlockAllocator) Dealloc(addr, size int, align uint) {
	if a.allocations == 0 {
		panic("fixed-size-block allocator: dealloc without a matching live allocation")
	}

	classIndex := sizeClassIndex(size, align)
	if classIndex == noClass {
		a.fallback.Deallocate(addr, size, align)
		a.finishDealloc(size)
		return
	}

	blockSize := BlockSizes[classIndex]

	// Structural invariant: every class must be able to hold a free-list
	// link. validateBlockSizes already guarantees this for the static table;
	// a failure here means the allocator itself is corrupt, so halting beats
	// scribbling a link over memory that cannot contain it.
	if freeBlockNodeSize > blockSize || int(freeBlockNodeAlign) > blockSize {
		panic(fmt.Sprintf("block class %d (size %d) cannot hold a free-list link", classIndex, blockSize))
	}

	kheap.DebugFillFreed(a.mem, addr, blockSize)
	a.mem.WriteWord(addr, encodeLink(a.listHeads[classIndex]))
	a.listHeads[classIndex] = addr
	a.freeCounts[classIndex]++
	a.finishDealloc(size)
}

func (a *FixedSizeBlockAllocator) finishDealloc(size int) {
	a.allocations--
	a.allocationBytes -= size
}

// AllocationCount returns the number of live allocations across both the
// block classes and the fallback.
func (a *FixedSizeBlockAllocator) AllocationCount() int {
	return a.allocations
}

// SumFreeSize returns the bytes reusable right now: the blocks parked on
// class free lists plus whatever the fallback still tracks.
func (a *FixedSizeBlockAllocator) SumFreeSize() int {
	freeSize := a.fallback.SumFreeSize()
	for classIndex, freeCount := range a.freeCounts {
		freeSize += freeCount * BlockSizes[classIndex]
	}

	return freeSize
}

// IsEmpty will return true if this allocator has no live allocations
func (a *FixedSizeBlockAllocator) IsEmpty() bool {
	return a.allocations == 0
}

// collectFreeBlocks walks one class's free list into a slice, guarding
// against cycles via the class's free count.
func (a *FixedSizeBlockAllocator) collectFreeBlocks(classIndex int) ([]int, error) {
	var blocks []int
	for current := a.listHeads[classIndex]; current != noAddress; {
		if len(blocks) >= a.freeCounts[classIndex] {
			return nil, errors.Errorf("class %d's free list holds more than the %d blocks its counter reports- the list must contain a cycle or the counter is corrupt", classIndex, a.freeCounts[classIndex])
		}

		blocks = append(blocks, current)
		current = decodeLink(a.mem.ReadWord(current))
	}

	return blocks, nil
}

// Validate performs internal consistency checks on every class free list and
// on the fallback allocator. It reads every list link from heap memory, so it
// is expensive and intended for diagnostics.
func (a *FixedSizeBlockAllocator) Validate() error {
	for classIndex := range BlockSizes {
		blockSize := BlockSizes[classIndex]

		blocks, err := a.collectFreeBlocks(classIndex)
		if err != nil {
			return err
		}

		if len(blocks) != a.freeCounts[classIndex] {
			return errors.Errorf("class %d's free list holds %d blocks, but its counter reports %d", classIndex, len(blocks), a.freeCounts[classIndex])
		}

		for _, blockAddr := range blocks {
			if kheap.AlignDown(blockAddr, uint(blockSize)) != blockAddr {
				return errors.Errorf("free block at %#x is not aligned to its class size %d", blockAddr, blockSize)
			}

			if blockAddr < a.heapStart || blockAddr+blockSize > a.heapEnd {
				return errors.Errorf("free block [%#x, %#x) lies outside the heap region [%#x, %#x)", blockAddr, blockAddr+blockSize, a.heapStart, a.heapEnd)
			}
		}
	}

	return a.fallback.Validate()
}

// AddStatistics sums this allocator's load counters into the statistics
// currently present in the provided kheap.Statistics object.
func (a *FixedSizeBlockAllocator) AddStatistics(stats *kheap.Statistics) {
	stats.AllocationCount += a.allocations
	stats.AllocationBytes += a.allocationBytes
	stats.HeapBytes += a.heapEnd - a.heapStart
	stats.FreeBytes += a.SumFreeSize()
}

// MetadataJson populates a json object with information about this
// allocator's current state, including one entry per block class and the
// fallback allocator's own dump.
func (a *FixedSizeBlockAllocator) MetadataJson(json jwriter.ObjectState) {
	json.Name("Type").String("FixedSizeBlock")
	json.Name("TotalBytes").Int(a.heapEnd - a.heapStart)
	json.Name("Allocations").Int(a.allocations)
	json.Name("FreeBytes").Int(a.SumFreeSize())

	classArray := json.Name("BlockClasses").Array()
	for classIndex, blockSize := range BlockSizes {
		classObj := classArray.Object()
		classObj.Name("BlockSize").Int(blockSize)
		classObj.Name("FreeBlocks").Int(a.freeCounts[classIndex])
		classObj.End()
	}
	classArray.End()

	fallbackObj := json.Name("Fallback").Object()
	a.fallback.MetadataJson(fallbackObj)
	fallbackObj.End()
}

// DebugLogAllFreeBlocks calls logFunc once per parked free block in every
// class. The walk reads every list link from heap memory, so this should only
// be used for diagnostic purposes.
func (a *FixedSizeBlockAllocator) DebugLogAllFreeBlocks(logger *slog.Logger, logFunc func(log *slog.Logger, offset int, blockSize int)) {
	for classIndex, blockSize := range BlockSizes {
		blocks, err := a.collectFreeBlocks(classIndex)
		if err != nil {
			continue
		}

		for _, blockAddr := range blocks {
			logFunc(logger, blockAddr-a.heapStart, blockSize)
		}
	}
}
