package paging

// PageSize is the size in bytes of every page and physical frame.
const PageSize = 4096

// Frame is one physical frame of backing storage: exactly PageSize bytes that
// a Region can map behind a page of the heap's virtual range.
type Frame []byte

// FrameAllocator hands out physical frames for the heap's pages. Returning
// false means no frames remain; heap initialization surfaces that to the
// caller rather than mapping a partial heap.
type FrameAllocator interface {
	AllocateFrame() (Frame, bool)
}

// BootFrameAllocator is a FrameAllocator over a fixed pool of frames carved
// from one contiguous backing slab, sized at construction. It stands in for
// the boot-time physical memory map: once the pool runs dry, allocation fails
// permanently. Frames are never returned.
type BootFrameAllocator struct {
	backing   []byte
	nextFrame int
	frames    int
}

var _ FrameAllocator = &BootFrameAllocator{}

// NewBootFrameAllocator creates a pool of frameCount frames.
func NewBootFrameAllocator(frameCount int) *BootFrameAllocator {
	return &BootFrameAllocator{
		backing: make([]byte, frameCount*PageSize),
		frames:  frameCount,
	}
}

// AllocateFrame returns the next unused frame from the pool, or false when
// the pool is exhausted.
func (f *BootFrameAllocator) AllocateFrame() (Frame, bool) {
	if f.nextFrame >= f.frames {
		return nil, false
	}

	start := f.nextFrame * PageSize
	f.nextFrame++
	return Frame(f.backing[start : start+PageSize : start+PageSize]), true
}

// FramesRemaining returns the number of frames still available in the pool.
func (f *BootFrameAllocator) FramesRemaining() int {
	return f.frames - f.nextFrame
}
