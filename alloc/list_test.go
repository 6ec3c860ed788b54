package alloc_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/ShreyasPrasad/kheap"
	"github.com/ShreyasPrasad/kheap/alloc"
)

const listHeapStart = 0x200000

func newListAllocator(size int) *alloc.ListAllocator {
	allocator := alloc.NewListAllocator()
	allocator.Init(listHeapStart, size, alloc.NewFakeMemory())
	return allocator
}

func TestListFirstFit(t *testing.T) {
	allocator := newListAllocator(4096)
	require.Equal(t, 4096, allocator.SumFreeSize())

	// The whole region is one free region, so the first fit is its start.
	first, err := allocator.AllocateFirstFit(100, 8)
	require.NoError(t, err)
	require.Equal(t, listHeapStart, first)

	// 100 rounds to 104 to keep the region trackable on free; the remainder
	// went back on the list and serves the next request.
	second, err := allocator.AllocateFirstFit(50, 8)
	require.NoError(t, err)
	require.Equal(t, listHeapStart+104, second)

	require.Equal(t, 2, allocator.AllocationCount())
	require.Equal(t, 4096-104-56, allocator.SumFreeSize())
	require.NoError(t, allocator.Validate())
}

func TestListReusesFreedRegion(t *testing.T) {
	allocator := newListAllocator(4096)

	first, err := allocator.AllocateFirstFit(100, 8)
	require.NoError(t, err)
	_, err = allocator.AllocateFirstFit(100, 8)
	require.NoError(t, err)

	allocator.Deallocate(first, 100, 8)

	// Freed regions push onto the list head, so the very next fitting
	// request lands on the freed bytes.
	reused, err := allocator.AllocateFirstFit(100, 8)
	require.NoError(t, err)
	require.Equal(t, first, reused)
	require.NoError(t, allocator.Validate())
}

func TestListAlignmentPadding(t *testing.T) {
	allocator := newListAllocator(4096)

	// Shift the free region off the requested alignment.
	_, err := allocator.AllocateFirstFit(16, 8)
	require.NoError(t, err)

	addr, err := allocator.AllocateFirstFit(16, 1024)
	require.NoError(t, err)
	require.Zero(t, addr%1024)
	require.Greater(t, addr, listHeapStart)

	// The padding in front of the aligned allocation went back on the free
	// list rather than leaking.
	require.Equal(t, 4096-16-16, allocator.SumFreeSize())
	require.NoError(t, allocator.Validate())
}

func TestListRejectsUntrackableRemainder(t *testing.T) {
	allocator := newListAllocator(128)

	// A fit leaving an 8-byte tail would strand bytes too small to hold a
	// free-list node, so the region must be passed over entirely.
	_, err := allocator.AllocateFirstFit(120, 8)
	require.Error(t, err)
	require.True(t, errors.Is(err, kheap.OutOfMemoryError))

	// A 16-byte tail is trackable.
	addr, err := allocator.AllocateFirstFit(112, 8)
	require.NoError(t, err)
	require.Equal(t, listHeapStart, addr)
	require.Equal(t, 16, allocator.SumFreeSize())
	require.NoError(t, allocator.Validate())
}

func TestListExactFitConsumesRegion(t *testing.T) {
	allocator := newListAllocator(128)

	addr, err := allocator.AllocateFirstFit(128, 8)
	require.NoError(t, err)
	require.Equal(t, listHeapStart, addr)
	require.Zero(t, allocator.SumFreeSize())

	_, err = allocator.AllocateFirstFit(16, 8)
	require.Error(t, err)
	require.True(t, errors.Is(err, kheap.OutOfMemoryError))

	allocator.Deallocate(addr, 128, 8)
	require.Equal(t, 128, allocator.SumFreeSize())
	require.True(t, allocator.IsEmpty())
}

func TestListOutOfMemory(t *testing.T) {
	allocator := newListAllocator(512)

	_, err := allocator.AllocateFirstFit(1024, 8)
	require.Error(t, err)
	require.True(t, errors.Is(err, kheap.OutOfMemoryError))

	// Fragmented free space: two 256-byte regions cannot serve 400 bytes
	// even though 512 are nominally free after the frees below.
	first, err := allocator.AllocateFirstFit(256, 8)
	require.NoError(t, err)
	second, err := allocator.AllocateFirstFit(256, 8)
	require.NoError(t, err)

	allocator.Deallocate(first, 256, 8)
	allocator.Deallocate(second, 256, 8)
	require.Equal(t, 512, allocator.SumFreeSize())

	// Freed regions never merge, so a request spanning both fails.
	_, err = allocator.AllocateFirstFit(400, 8)
	require.Error(t, err)
	require.True(t, errors.Is(err, kheap.OutOfMemoryError))
}

func TestListSmallRequestsRoundUp(t *testing.T) {
	allocator := newListAllocator(4096)

	// A 1-byte allocation still occupies a full node-sized region, and the
	// identical adjustment happens again on free.
	addr, err := allocator.AllocateFirstFit(1, 1)
	require.NoError(t, err)
	require.Equal(t, listHeapStart, addr)
	require.Equal(t, 4096-16, allocator.SumFreeSize())

	allocator.Deallocate(addr, 1, 1)
	require.Equal(t, 4096, allocator.SumFreeSize())
	require.NoError(t, allocator.Validate())
}

func TestListStatistics(t *testing.T) {
	allocator := newListAllocator(4096)

	_, err := allocator.AllocateFirstFit(100, 8)
	require.NoError(t, err)

	var stats kheap.Statistics
	stats.Clear()
	allocator.AddStatistics(&stats)
	require.Equal(t, kheap.Statistics{
		AllocationCount: 1,
		AllocationBytes: 100,
		HeapBytes:       4096,
		FreeBytes:       4096 - 104,
	}, stats)
}

func TestListDeallocateWithoutAllocPanics(t *testing.T) {
	allocator := newListAllocator(4096)

	addr, err := allocator.AllocateFirstFit(64, 8)
	require.NoError(t, err)
	allocator.Deallocate(addr, 64, 8)

	require.Panics(t, func() {
		allocator.Deallocate(addr, 64, 8)
	})
}
