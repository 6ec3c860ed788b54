// Package heap owns the process-wide kernel heap: a fixed virtual range that
// is mapped page by page at boot and then handed, exactly once, to the
// installed allocator. Every subsequent allocation and deallocation routes
// through the mutual-exclusion wrapper around that single allocator instance.
package heap

import (
	"sync/atomic"

	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"

	"github.com/ShreyasPrasad/kheap"
	"github.com/ShreyasPrasad/kheap/alloc"
	"github.com/ShreyasPrasad/kheap/paging"
)

// HeapStart and HeapSize fix the heap's virtual range. They are configuration
// constants, not runtime decisions, and they are deliberately tiny- this is a
// teaching-scale heap.
const (
	HeapStart = 0x4444_4444_0000
	HeapSize  = 100 * 1024
)

// FrameAllocationFailedError is returned from Init or Bootstrap when the
// frame allocator runs out of physical frames before the whole heap range is
// mapped.
var FrameAllocationFailedError error = errors.New("no physical frames remain to back the heap")

// MappingFailedError marks errors returned from Init or Bootstrap when the
// paging layer refuses to map a heap page.
var MappingFailedError error = errors.New("failed to map a heap page")

// allocator is the single process-wide allocator instance. Which variant is
// installed is a build-time decision; swapping it for a
// Locked[*BumpAllocator] requires touching only this line.
var allocator = alloc.NewLocked[*alloc.FixedSizeBlockAllocator](alloc.NewFixedSizeBlockAllocator())

var initialized atomic.Bool

// Bootstrap maps every page of region with a frame from frameAllocator, then
// initializes a over the fully mapped range. It is the reusable core of Init
// for callers managing their own allocator instance and range; the package
// globals are untouched.
//
// The allocator is initialized strictly after all pages are mapped, because
// initialization is the first point at which the allocator writes into the
// heap.
func Bootstrap(a alloc.Allocator, region *paging.Region, frameAllocator paging.FrameAllocator) error {
	for page := region.Start(); page < region.End(); page += paging.PageSize {
		frame, ok := frameAllocator.AllocateFrame()
		if !ok {
			return cerrors.Wrapf(FrameAllocationFailedError, "mapping page %#x", page)
		}

		if err := region.MapToWritable(page, frame); err != nil {
			return cerrors.Mark(cerrors.Wrapf(err, "mapping page %#x", page), MappingFailedError)
		}
	}

	a.Init(region.Start(), region.Size(), region)
	return nil
}

// Init creates the kernel heap: it maps the fixed range
// [HeapStart, HeapStart+HeapSize) page by page and hands the range to the
// installed global allocator. It must be called exactly once, before any call
// to Alloc; calling it a second time panics, because re-initializing a live
// heap would corrupt every outstanding allocation.
func Init(region *paging.Region, frameAllocator paging.FrameAllocator) error {
	if region.Start() != HeapStart || region.Size() != HeapSize {
		return errors.Errorf("region [%#x, %#x) does not match the heap range [%#x, %#x)", region.Start(), region.End(), HeapStart, HeapStart+HeapSize)
	}

	if !initialized.CompareAndSwap(false, true) {
		panic("kernel heap initialized twice")
	}

	if err := Bootstrap(allocator, region, frameAllocator); err != nil {
		// Mapping failed partway- the heap never became usable.
		initialized.Store(false)
		return err
	}

	return nil
}

func checkInitialized() {
	if !initialized.Load() {
		panic("kernel heap used before heap.Init")
	}
}

// Alloc allocates size bytes at the given power-of-two alignment from the
// global allocator. Exhaustion returns an error wrapping
// kheap.OutOfMemoryError; using the heap before Init panics.
func Alloc(size int, align uint) (int, error) {
	checkInitialized()
	return allocator.Alloc(size, align)
}

// Dealloc returns an allocation to the global allocator. The caller must pass
// the exact size and align used at the matching Alloc call.
func Dealloc(addr, size int, align uint) {
	checkInitialized()
	allocator.Dealloc(addr, size, align)
}

// Stats returns the global allocator's current load counters.
func Stats() kheap.Statistics {
	checkInitialized()

	var stats kheap.Statistics
	stats.Clear()
	allocator.AddStatistics(&stats)
	return stats
}

// Validate runs the global allocator's consistency checks.
func Validate() error {
	checkInitialized()
	return allocator.Validate()
}

// PrintDetailedMap dumps the global allocator's state as a json object.
func PrintDetailedMap(writer *jwriter.Writer) {
	checkInitialized()

	objState := writer.Object()
	defer objState.End()

	allocator.MetadataJson(objState)
}
