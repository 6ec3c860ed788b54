package alloc_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ShreyasPrasad/kheap/alloc"
)

func TestLockedExcludesConcurrentOperations(t *testing.T) {
	const goroutines = 8
	const allocsPerGoroutine = 100
	const allocSize = 64

	locked := alloc.NewLocked(alloc.NewBumpAllocator())
	locked.Init(0x10000, goroutines*allocsPerGoroutine*allocSize, nil)

	type result struct {
		addr int
		err  error
	}
	results := make(chan result, goroutines*allocsPerGoroutine)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < allocsPerGoroutine; i++ {
				addr, err := locked.Alloc(allocSize, 8)
				results <- result{addr, err}
			}
		}()
	}
	wg.Wait()
	close(results)

	// With the lock serializing every operation, no two allocations can have
	// observed the same bump cursor.
	seen := map[int]bool{}
	for r := range results {
		require.NoError(t, r.err)
		require.False(t, seen[r.addr], "address %#x was returned twice", r.addr)
		seen[r.addr] = true
	}
	require.Len(t, seen, goroutines*allocsPerGoroutine)
	require.Equal(t, goroutines*allocsPerGoroutine, locked.AllocationCount())
	require.NoError(t, locked.Validate())
}

func TestLockedScopedAccess(t *testing.T) {
	locked := alloc.NewLocked(alloc.NewBumpAllocator())

	// A multi-operation critical section through Lock/Unlock.
	inner := locked.Lock()
	inner.Init(0x10000, 4096, nil)
	first, err := inner.Alloc(100, 8)
	require.NoError(t, err)
	locked.Unlock()

	require.Equal(t, 0x10000, first)

	// The lock was released- the shared handle works again.
	second, err := locked.Alloc(100, 8)
	require.NoError(t, err)
	require.Greater(t, second, first)
	require.Equal(t, 2, locked.AllocationCount())
	require.False(t, locked.IsEmpty())
}
