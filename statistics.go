package kheap

// Statistics describes the current load on an allocator. The allocators in
// this module store no per-allocation metadata, so only aggregate counters
// are available- there is no way to enumerate live allocations after the fact.
type Statistics struct {
	// AllocationCount is the number of live allocations (successful allocs minus frees)
	AllocationCount int
	// AllocationBytes is the sum of the requested sizes of all live allocations. Internal
	// fragmentation (block rounding, alignment padding) is not included.
	AllocationBytes int
	// HeapBytes is the total size of the managed heap region
	HeapBytes int
	// FreeBytes is the number of bytes the allocator considers reusable right now
	FreeBytes int
}

func (s *Statistics) Clear() {
	s.AllocationCount = 0
	s.AllocationBytes = 0
	s.HeapBytes = 0
	s.FreeBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.AllocationCount += other.AllocationCount
	s.AllocationBytes += other.AllocationBytes
	s.HeapBytes += other.HeapBytes
	s.FreeBytes += other.FreeBytes
}
