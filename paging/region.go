package paging

import (
	"encoding/binary"
	"fmt"

	"github.com/dolthub/swiss"
	"github.com/pkg/errors"

	"github.com/ShreyasPrasad/kheap"
)

// Region models the heap's fixed virtual address range [start, start+size):
// a page table mapping each page-aligned address to the physical frame backing
// it. The range is established once and never grows or shrinks; pages become
// usable as frames are mapped behind them.
//
// Region implements kheap.Memory, giving allocators word-level access to the
// mapped bytes so they can thread free-list nodes through freed blocks.
// Accessing an unmapped or misaligned address panics: an allocator touching
// memory it was never given is a fatal bug, and continuing would corrupt
// whatever actually lives there.
type Region struct {
	start int
	size  int
	pages *swiss.Map[int, Frame]
}

var _ kheap.Memory = &Region{}

// NewRegion creates an empty region covering [start, start+size). Both bounds
// must be page-aligned: the paging layer can only map whole pages.
func NewRegion(start, size int) (*Region, error) {
	if kheap.AlignDown(start, PageSize) != start {
		return nil, errors.Errorf("region start %#x is not aligned to the page size %d", start, PageSize)
	}

	if size <= 0 || kheap.AlignDown(size, PageSize) != size {
		return nil, errors.Errorf("region size %d is not a positive multiple of the page size %d", size, PageSize)
	}

	return &Region{
		start: start,
		size:  size,
		pages: swiss.NewMap[int, Frame](uint32(size / PageSize)),
	}, nil
}

// Start returns the first address of the region.
func (r *Region) Start() int { return r.start }

// Size returns the region's size in bytes.
func (r *Region) Size() int { return r.size }

// End returns the first address past the region.
func (r *Region) End() int { return r.start + r.size }

// MapToWritable installs a frame behind the page at the given page-aligned
// address, making [page, page+PageSize) readable and writable. Mapping the
// same page twice is refused: the first frame may already hold allocator
// state, and silently replacing it would destroy that state.
func (r *Region) MapToWritable(page int, frame Frame) error {
	if kheap.AlignDown(page, PageSize) != page {
		return errors.Errorf("page address %#x is not aligned to the page size %d", page, PageSize)
	}

	if page < r.start || page+PageSize > r.End() {
		return errors.Errorf("page %#x lies outside the region [%#x, %#x)", page, r.start, r.End())
	}

	if len(frame) != PageSize {
		return errors.Errorf("frame holds %d bytes, but a page requires exactly %d", len(frame), PageSize)
	}

	if r.pages.Has(page) {
		return errors.Errorf("page %#x is already mapped", page)
	}

	r.pages.Put(page, frame)
	return nil
}

// MappedPageCount returns the number of pages with a frame behind them.
func (r *Region) MappedPageCount() int {
	return r.pages.Count()
}

// FullyMapped returns true once every page in the region has a frame.
func (r *Region) FullyMapped() bool {
	return r.pages.Count() == r.size/PageSize
}

// frameFor locates the frame behind addr and the offset of addr within it.
// Word accesses are word-aligned and pages are word-multiples, so a word
// never straddles two frames.
func (r *Region) frameFor(addr int) (Frame, int) {
	if kheap.AlignDown(addr, kheap.WordSize) != addr {
		panic(fmt.Sprintf("word access at %#x is not aligned to the word size %d", addr, kheap.WordSize))
	}

	page := kheap.AlignDown(addr, PageSize)
	frame, mapped := r.pages.Get(page)
	if !mapped {
		panic(fmt.Sprintf("word access at %#x touches unmapped page %#x", addr, page))
	}

	return frame, addr - page
}

// ReadWord returns the word stored at the word-aligned address addr.
func (r *Region) ReadWord(addr int) uint64 {
	frame, offset := r.frameFor(addr)
	return binary.LittleEndian.Uint64(frame[offset : offset+kheap.WordSize])
}

// WriteWord stores value at the word-aligned address addr.
func (r *Region) WriteWord(addr int, value uint64) {
	frame, offset := r.frameFor(addr)
	binary.LittleEndian.PutUint64(frame[offset:offset+kheap.WordSize], value)
}
