// Package goruntime contains code for bootstrapping Go runtime features such
// as the memory allocator.
package goruntime

import (
	"ripos/kernel"
	"ripos/kernel/mem"
	"ripos/kernel/mem/heap"
	"unsafe"
)

var (
	// heapAlloc is the binary-tree allocator that sysReserve/sysAlloc draw
	// backing memory from. It is nil until SetHeap runs; sysReserve/sysAlloc
	// only touch it for non-zero requests, so the dummy zero-size calls this
	// file's own init() makes (to keep the linker from discarding these
	// functions) are safe before that point.
	heapAlloc *heap.Allocator

	mallocInitFn    = mallocInit
	algInitFn       = algInit
	modulesInitFn   = modulesInit
	typeLinksInitFn = typeLinksInit
	itabsInitFn     = itabsInit

	// A seed for the pseudo-random number generator used by getRandomData
	prngSeed = 0xdeadc0de
)

// SetHeap registers the allocator that backs every subsequent sysReserve,
// sysMap and sysAlloc call. It must be called once kernel/mem/heap.New has
// mapped in the heap's backing region, and before any Go allocation (make,
// new, append, a map or channel, ...) runs.
func SetHeap(a *heap.Allocator) {
	heapAlloc = a
}

//go:linkname algInit runtime.alginit
func algInit()

//go:linkname modulesInit runtime.modulesinit
func modulesInit()

//go:linkname typeLinksInit runtime.typelinksinit
func typeLinksInit()

//go:linkname itabsInit runtime.itabsinit
func itabsInit()

//go:linkname mallocInit runtime.mallocinit
func mallocInit()

//go:linkname mSysStatInc runtime.mSysStatInc
func mSysStatInc(*uint64, uintptr)

// sysReserve reserves address space by allocating a page-aligned block of
// the requested size from the kernel heap installed via SetHeap, whose pages
// are already mapped.
//
// This function replaces runtime.sysReserve and is required for initializing
// the Go allocator.
//
//go:redirect-from runtime.sysReserve
//go:nosplit
func sysReserve(_ unsafe.Pointer, size uintptr, reserved *bool) unsafe.Pointer {
	if size == 0 {
		*reserved = true
		return unsafe.Pointer(uintptr(0))
	}

	addr, err := heapAlloc.Allocate(heap.Layout{Size: size, Align: uintptr(mem.PageSize)})
	if err != nil {
		panic(err)
	}

	*reserved = true
	return unsafe.Pointer(addr)
}

// sysMap commits a region previously reserved via sysReserve. The heap's
// entire backing range is mapped in up front by kernel/mem/heap.New, so
// there is no separate page-table work to do here: sysMap only exists to
// satisfy the runtime's reserve-then-map protocol.
//
// This function replaces runtime.sysMap and is required for initializing
// the Go allocator.
//
//go:redirect-from runtime.sysMap
//go:nosplit
func sysMap(virtAddr unsafe.Pointer, size uintptr, reserved bool, sysStat *uint64) unsafe.Pointer {
	if !reserved {
		panic("sysMap should only be called with reserved=true")
	}

	mSysStatInc(sysStat, size)
	return virtAddr
}

// sysAlloc reserves and commits a region in a single call, used by the
// runtime when it has no address in mind and just wants memory.
//
// This function replaces runtime.sysAlloc and is required for initializing
// the Go allocator.
//
//go:redirect-from runtime.sysAlloc
//go:nosplit
func sysAlloc(size uintptr, sysStat *uint64) unsafe.Pointer {
	if size == 0 {
		return unsafe.Pointer(uintptr(0))
	}

	addr, err := heapAlloc.Allocate(heap.Layout{Size: size, Align: uintptr(mem.PageSize)})
	if err != nil {
		return unsafe.Pointer(uintptr(0))
	}

	mSysStatInc(sysStat, size)
	return unsafe.Pointer(addr)
}

// nanotime returns a monotonically increasing clock value. This is a dummy
// implementation and will be replaced when the timekeeper package is
// implemented.
//
// This function replaces runtime.nanotime and is invoked by the Go allocator
// when a span allocation is performed.
//
//go:redirect-from runtime.nanotime
//go:nosplit
func nanotime() uint64 {
	// Use a dummy loop to prevent the compiler from inlining this function.
	for i := 0; i < 100; i++ {
	}
	return 1
}

// getRandomData populates the given slice with random data. The implementation
// is the runtime package reads a random stream from /dev/random but since this
// is not available, we use a prng instead.
//
//go:redirect-from runtime.getRandomData
func getRandomData(r []byte) {
	for i := 0; i < len(r); i++ {
		prngSeed = (prngSeed * 58321) + 11113
		r[i] = byte((prngSeed >> 16) & 255)
	}
}

// Init enables support for various Go runtime features. After a call to init
// the following runtime features become available for use:
//  - heap memory allocation (new, make e.t.c)
//  - map primitives
//  - interfaces
func Init() *kernel.Error {
	mallocInitFn()
	algInitFn()       // setup hash implementation for map keys
	modulesInitFn()   // provides activeModules
	typeLinksInitFn() // uses maps, activeModules
	itabsInitFn()     // uses activeModules

	return nil
}

func init() {
	// Dummy calls so the compiler does not optimize away the functions in
	// this file.
	var (
		reserved bool
		stat     uint64
		zeroPtr  = unsafe.Pointer(uintptr(0))
	)

	sysReserve(zeroPtr, 0, &reserved)
	sysMap(zeroPtr, 0, reserved, &stat)
	sysAlloc(0, &stat)
	getRandomData(nil)
	stat = nanotime()
}
