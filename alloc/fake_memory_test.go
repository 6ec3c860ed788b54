package alloc

import (
	"fmt"

	"github.com/ShreyasPrasad/kheap"
)

// FakeMemory is a kheap.Memory over a plain map, for exercising allocators
// without standing up a paged region. Like the real thing, it panics on
// misaligned word access.
type FakeMemory struct {
	words map[int]uint64
}

var _ kheap.Memory = &FakeMemory{}

func NewFakeMemory() *FakeMemory {
	return &FakeMemory{
		words: map[int]uint64{},
	}
}

func (m *FakeMemory) checkAligned(addr int) {
	if kheap.AlignDown(addr, kheap.WordSize) != addr {
		panic(fmt.Sprintf("word access at %#x is not aligned to the word size %d", addr, kheap.WordSize))
	}
}

func (m *FakeMemory) ReadWord(addr int) uint64 {
	m.checkAligned(addr)
	return m.words[addr]
}

func (m *FakeMemory) WriteWord(addr int, value uint64) {
	m.checkAligned(addr)
	m.words[addr] = value
}
