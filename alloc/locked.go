package alloc

import (
	"sync"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/ShreyasPrasad/kheap"
)

// Locked wraps an allocator in a mutual-exclusion lock so that a single
// shared handle can be installed process-wide and reached from arbitrary call
// sites. Every Allocator method acquires the lock for its full duration and
// releases it on every exit path, so at most one operation executes against
// the wrapped allocator at any instant.
//
// The lock is not reentrant. Code that triggers an allocation while already
// holding the lock- directly, or indirectly through anything it calls-
// deadlocks against itself. That is a deliberate property, not a recoverable
// error: the accepted mitigation is a calling convention (interrupt-context
// code must mask interrupts around its critical sections), not a lock
// feature. Locked instances guard only their own allocator; no ordering holds
// between operations on independently locked allocators.
type Locked[A Allocator] struct {
	inner A
	mutex sync.Mutex
}

var _ Allocator = &Locked[*BumpAllocator]{}

func NewLocked[A Allocator](inner A) *Locked[A] {
	return &Locked[A]{
		inner: inner,
	}
}

// Lock acquires exclusive access and returns the wrapped allocator for a
// multi-operation critical section. The caller must call Unlock when done;
// the single-operation methods below are preferred for ordinary use.
func (l *Locked[A]) Lock() A {
	l.mutex.Lock()
	return l.inner
}

// Unlock releases exclusive access acquired by Lock.
func (l *Locked[A]) Unlock() {
	l.mutex.Unlock()
}

// Init initializes the wrapped allocator under the lock.
func (l *Locked[A]) Init(start, size int, mem kheap.Memory) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.inner.Init(start, size, mem)
}

// Alloc performs a single allocation under the lock.
func (l *Locked[A]) Alloc(size int, align uint) (int, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return l.inner.Alloc(size, align)
}

// Dealloc performs a single deallocation under the lock.
func (l *Locked[A]) Dealloc(addr, size int, align uint) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.inner.Dealloc(addr, size, align)
}

// AllocationCount returns the wrapped allocator's live-allocation count.
func (l *Locked[A]) AllocationCount() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return l.inner.AllocationCount()
}

// SumFreeSize returns the wrapped allocator's reusable byte count.
func (l *Locked[A]) SumFreeSize() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return l.inner.SumFreeSize()
}

// IsEmpty will return true if the wrapped allocator has no live allocations
func (l *Locked[A]) IsEmpty() bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return l.inner.IsEmpty()
}

// Validate runs the wrapped allocator's consistency checks under the lock.
func (l *Locked[A]) Validate() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return l.inner.Validate()
}

// AddStatistics sums the wrapped allocator's load counters into stats under
// the lock.
func (l *Locked[A]) AddStatistics(stats *kheap.Statistics) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.inner.AddStatistics(stats)
}

// MetadataJson dumps the wrapped allocator's state under the lock.
func (l *Locked[A]) MetadataJson(json jwriter.ObjectState) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.inner.MetadataJson(json)
}
