// Package pmm contains code that manages physical memory frame allocations.
package pmm

import (
	"math"
	"ripos/kernel"
	"ripos/kernel/mem"
)

// Frame describes a physical memory page index.
type Frame uintptr

const (
	// InvalidFrame is returned by page allocators when
	// they fail to reserve the requested frame.
	InvalidFrame = Frame(math.MaxUint64)
)

// Valid returns true if this is a valid frame.
func (f Frame) Valid() bool {
	return f != InvalidFrame
}

// Address returns a pointer to the physical memory address pointed to by this Frame.
func (f Frame) Address() uintptr {
	return uintptr(f << mem.PageShift)
}

// FrameFromAddress returns the Frame that contains the given physical address.
func FrameFromAddress(physAddr uintptr) Frame {
	return Frame((physAddr & ^(uintptr(mem.PageSize) - 1)) >> mem.PageShift)
}

// FrameAllocator is implemented by types that can hand out and reclaim
// physical frames. The paging layer uses this interface (rather than a
// concrete allocator type) so that it can be driven by either the
// boot-trust allocator or, once available, a more capable one.
type FrameAllocator interface {
	Allocate() (Frame, *kernel.Error)
	Deallocate(Frame) *kernel.Error
}
