package alloc_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ShreyasPrasad/kheap"
	"github.com/ShreyasPrasad/kheap/alloc"
	mock_alloc "github.com/ShreyasPrasad/kheap/alloc/mocks"
)

const blockHeapStart = 0x100000
const blockHeapSize = 64 * 1024

func newBlockAllocator(t *testing.T) *alloc.FixedSizeBlockAllocator {
	t.Helper()

	allocator := alloc.NewFixedSizeBlockAllocator()
	allocator.Init(blockHeapStart, blockHeapSize, alloc.NewFakeMemory())
	return allocator
}

func TestSizeClassSelection(t *testing.T) {
	// The chosen class is observable through the (classSize, classSize)
	// layout the allocator carves from the fallback when a class's free list
	// is empty.
	testCases := map[string]struct {
		size              int
		align             uint
		expectedBlockSize int
	}{
		"MinimumClass":            {1, 1, 8},
		"ExactFit":                {8, 8, 8},
		"SizeJustOverClass":       {9, 1, 16},
		"SmallestClassAtLeastMax": {17, 8, 32},
		"AlignmentDominates":      {65, 128, 128},
		"LargestClass":            {2048, 1, 2048},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			fallback := mock_alloc.NewMockFallback(ctrl)
			allocator := alloc.NewFixedSizeBlockAllocatorWithFallback(fallback)

			fallback.EXPECT().Init(blockHeapStart, blockHeapSize, gomock.Any())
			allocator.Init(blockHeapStart, blockHeapSize, alloc.NewFakeMemory())

			fallback.EXPECT().
				AllocateFirstFit(testCase.expectedBlockSize, uint(testCase.expectedBlockSize)).
				Return(blockHeapStart, nil)

			addr, err := allocator.Alloc(testCase.size, testCase.align)
			require.NoError(t, err)
			require.Equal(t, blockHeapStart, addr)
		})
	}
}

func TestOversizeRequestRoutesToFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	fallback := mock_alloc.NewMockFallback(ctrl)
	allocator := alloc.NewFixedSizeBlockAllocatorWithFallback(fallback)

	fallback.EXPECT().Init(blockHeapStart, blockHeapSize, gomock.Any())
	allocator.Init(blockHeapStart, blockHeapSize, alloc.NewFakeMemory())

	// Larger than the biggest class- the original, unmodified layout must
	// reach the fallback on both the alloc and dealloc paths.
	fallback.EXPECT().AllocateFirstFit(4096, uint(8)).Return(blockHeapStart, nil)
	addr, err := allocator.Alloc(4096, 8)
	require.NoError(t, err)
	require.Equal(t, blockHeapStart, addr)

	fallback.EXPECT().Deallocate(blockHeapStart, 4096, uint(8))
	allocator.Dealloc(addr, 4096, 8)
	require.True(t, allocator.IsEmpty())
}

func TestFallbackFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	fallback := mock_alloc.NewMockFallback(ctrl)
	allocator := alloc.NewFixedSizeBlockAllocatorWithFallback(fallback)

	fallback.EXPECT().Init(blockHeapStart, blockHeapSize, gomock.Any())
	allocator.Init(blockHeapStart, blockHeapSize, alloc.NewFakeMemory())

	fallback.EXPECT().AllocateFirstFit(64, uint(64)).Return(0, kheap.OutOfMemoryError)

	// Fallback exhaustion is an ordinary allocation failure, not a panic.
	_, err := allocator.Alloc(60, 8)
	require.Error(t, err)
	require.True(t, errors.Is(err, kheap.OutOfMemoryError))
	require.Zero(t, allocator.AllocationCount())
}

func TestBlockReuse(t *testing.T) {
	allocator := newBlockAllocator(t)

	first, err := allocator.Alloc(60, 8)
	require.NoError(t, err)

	allocator.Dealloc(first, 60, 8)

	// Same class (64): the freed block is the list head and must be handed
	// back directly, bit-for-bit the same address.
	second, err := allocator.Alloc(50, 16)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.NoError(t, allocator.Validate())
}

func TestBlockReuseIsLIFO(t *testing.T) {
	allocator := newBlockAllocator(t)

	a, err := allocator.Alloc(32, 8)
	require.NoError(t, err)
	b, err := allocator.Alloc(32, 8)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	allocator.Dealloc(a, 32, 8)
	allocator.Dealloc(b, 32, 8)

	// Freed blocks push onto the front of their class list, so they come
	// back in reverse order of freeing.
	next, err := allocator.Alloc(32, 8)
	require.NoError(t, err)
	require.Equal(t, b, next)

	next, err = allocator.Alloc(32, 8)
	require.NoError(t, err)
	require.Equal(t, a, next)
}

func TestBlockReuseDoesNotCrossClasses(t *testing.T) {
	allocator := newBlockAllocator(t)

	small, err := allocator.Alloc(16, 8)
	require.NoError(t, err)
	allocator.Dealloc(small, 16, 8)

	// A class-64 request must not be served from the freed class-16 block.
	large, err := allocator.Alloc(60, 8)
	require.NoError(t, err)
	require.NotEqual(t, small, large)
	require.NoError(t, allocator.Validate())
}

func TestInterleavedAllocationsDoNotOverlap(t *testing.T) {
	allocator := newBlockAllocator(t)

	// Served block extent is the class size- recompute it the way the
	// allocator does, from max(size, align).
	blockExtent := func(size int, align uint) int {
		required := size
		if int(align) > required {
			required = int(align)
		}
		for _, blockSize := range alloc.BlockSizes {
			if blockSize >= required {
				return blockSize
			}
		}
		return size
	}

	type allocation struct {
		addr, size int
		align      uint
	}
	var live []allocation

	checkNoOverlap := func(addr, extent int) {
		for _, other := range live {
			otherExtent := blockExtent(other.size, other.align)
			require.True(t, addr >= other.addr+otherExtent || addr+extent <= other.addr,
				"allocation [%#x, %#x) overlaps [%#x, %#x)", addr, addr+extent, other.addr, other.addr+otherExtent)
		}
	}

	layouts := []struct {
		size  int
		align uint
	}{
		{8, 8}, {100, 8}, {13, 4}, {2048, 8}, {60, 64}, {500, 256}, {24, 8}, {3000, 8},
	}

	for round := 0; round < 3; round++ {
		for _, layout := range layouts {
			addr, err := allocator.Alloc(layout.size, layout.align)
			require.NoError(t, err)
			require.Zero(t, addr%int(layout.align))

			checkNoOverlap(addr, blockExtent(layout.size, layout.align))
			live = append(live, allocation{addr, layout.size, layout.align})
		}

		// Free every other allocation to churn the free lists.
		var kept []allocation
		for i, a := range live {
			if i%2 == 0 {
				allocator.Dealloc(a.addr, a.size, a.align)
			} else {
				kept = append(kept, a)
			}
		}
		live = kept
		require.NoError(t, allocator.Validate())
	}

	for _, a := range live {
		allocator.Dealloc(a.addr, a.size, a.align)
	}
	require.True(t, allocator.IsEmpty())
	require.NoError(t, allocator.Validate())
}

func TestBlockAllocatorOutOfMemory(t *testing.T) {
	allocator := alloc.NewFixedSizeBlockAllocator()
	allocator.Init(blockHeapStart, 512, alloc.NewFakeMemory())

	first, err := allocator.Alloc(256, 1)
	require.NoError(t, err)
	second, err := allocator.Alloc(256, 1)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// The 512-byte heap is exhausted and the class free lists are empty, so
	// even the smallest request must fail cleanly.
	_, err = allocator.Alloc(8, 1)
	require.Error(t, err)
	require.True(t, errors.Is(err, kheap.OutOfMemoryError))
}

func TestBlockAllocatorStatistics(t *testing.T) {
	allocator := newBlockAllocator(t)

	addr, err := allocator.Alloc(60, 8)
	require.NoError(t, err)

	var stats kheap.Statistics
	stats.Clear()
	allocator.AddStatistics(&stats)
	require.Equal(t, 1, stats.AllocationCount)
	require.Equal(t, 60, stats.AllocationBytes)
	require.Equal(t, blockHeapSize, stats.HeapBytes)

	allocator.Dealloc(addr, 60, 8)
	stats.Clear()
	allocator.AddStatistics(&stats)
	require.Zero(t, stats.AllocationCount)
	require.Zero(t, stats.AllocationBytes)

	// The freed block sits parked on its class list, still counted as free.
	require.GreaterOrEqual(t, allocator.SumFreeSize(), 64)
}
