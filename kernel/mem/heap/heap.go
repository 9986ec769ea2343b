// Package heap implements the kernel's dynamic memory allocator: a
// size-indexed binary tree laid over a fixed, page-aligned virtual region.
// It is the only allocator available once kernel/goruntime's sysAlloc hook
// is wired up, replacing the boot-trust frame allocator (kernel/mem/pmm/allocator)
// for everything except the frames backing the tree itself.
package heap

import (
	"reflect"
	"ripos/kernel"
	"ripos/kernel/mem"
	"ripos/kernel/mem/pmm"
	"ripos/kernel/mem/vmm"
	"ripos/kernel/sync"
	"unsafe"
)

var (
	errOutOfMemory  = &kernel.Error{Module: "heap", Message: "allocation request could not be satisfied"}
	errZeroSize     = &kernel.Error{Module: "heap", Message: "allocation size must be greater than zero"}
	errBadAlignment = &kernel.Error{Module: "heap", Message: "alignment must be a power of two"}
)

// Layout describes the size and alignment requirements of an allocation, in
// bytes.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// Allocator is a size-indexed binary-tree allocator covering a fixed
// virtual region reserved at construction time. A single Spinlock guards
// every tree mutation; concurrent callers serialize through it rather than
// through any lock-free scheme, matching the rest of the pre-scheduler
// kernel's concurrency model.
type Allocator struct {
	lock sync.Spinlock

	base      uintptr
	pageCount uint64

	tree *pageTree
	// nodes backs tree.nodes; it is carved out of the region's first page(s)
	// rather than allocated separately, so the allocator never needs a
	// bootstrap allocation to describe itself.
	nodes []nodeState
}

// New reserves a virtual region of pageCount pages starting at a
// freshly-chosen base address, maps it in with the given frame allocator,
// and returns an Allocator ready to service requests against it.
//
// The tree's own node-control-block is carved directly out of the first
// mapped pages of the region via an unsafe slice overlay rather than a
// `make()` call: New runs before kernel/goruntime.Init wires up the Go
// allocator (indeed, this Allocator is what that hook will route through),
// so nothing here may depend on the Go heap already working. The control
// block's pages are then marked allocated up front so they are never
// handed out to a caller.
func New(pageCount uint64, alloc pmm.FrameAllocator) (*Allocator, *kernel.Error) {
	base, err := vmm.EarlyReserveRegion(uintptr(pageCount) * uintptr(mem.PageSize))
	if err != nil {
		return nil, err
	}

	for page := vmm.PageFromAddress(base); page.Address() < base+uintptr(pageCount)*uintptr(mem.PageSize); page++ {
		frame, err := alloc.Allocate()
		if err != nil {
			return nil, err
		}
		if err := (vmm.Mapper{}).MapPage(page, frame, vmm.FlagRW|vmm.FlagNoExecute, alloc); err != nil {
			return nil, err
		}
	}

	nodeCount := treeSize(pageCount)
	nodeStateSize := unsafe.Sizeof(nodeState{})
	controlBytes := uintptr(nodeCount) * nodeStateSize

	nodes := *(*[]nodeState)(unsafe.Pointer(&reflect.SliceHeader{
		Data: base,
		Len:  int(nodeCount),
		Cap:  int(nodeCount),
	}))

	a := &Allocator{
		base:      base,
		pageCount: pageCount,
		nodes:     nodes,
		tree:      newPageTree(pageCount, nodes),
	}

	controlPages := (uint64(controlBytes) + uint64(mem.PageSize) - 1) / uint64(mem.PageSize)
	if controlPages > 0 {
		a.tree.markAllocated(rootIndex(), 0, controlPages*uint64(mem.PageSize))
	}

	return a, nil
}

// Allocate reserves a region of Size bytes aligned to Align bytes and
// returns its virtual address. Align must be a power of two.
func (a *Allocator) Allocate(layout Layout) (uintptr, *kernel.Error) {
	if layout.Size == 0 {
		return 0, errZeroSize
	}
	if layout.Align == 0 || layout.Align&(layout.Align-1) != 0 {
		return 0, errBadAlignment
	}

	a.lock.Acquire()
	defer a.lock.Release()

	off, ok := a.tree.tryAllocate(rootIndex(), uint64(layout.Size), uint64(layout.Align))
	if !ok {
		return 0, errOutOfMemory
	}
	return a.base + uintptr(off), nil
}

// Deallocate releases a region previously returned by Allocate. layout must
// match the one passed to the corresponding Allocate call.
func (a *Allocator) Deallocate(ptr uintptr, layout Layout) {
	lo := uint64(ptr - a.base)
	hi := lo + uint64(layout.Size)

	a.lock.Acquire()
	defer a.lock.Release()

	a.tree.markDeallocated(rootIndex(), lo, hi)
}
