// Package allocator implements the boot-trust frame allocator: a
// region-scanning allocator seeded directly from the BIOS-reported memory
// map that hands out frames monotonically and never tracks returns. It is
// the only allocator available until the heap (kernel/mem/heap) comes
// online; after that point it is left alone as a read-only backing pool.
package allocator

import (
	"ripos/kernel"
	"ripos/kernel/hal/multiboot"
	"ripos/kernel/kfmt"
	"ripos/kernel/mem"
	"ripos/kernel/mem/pmm"
)

var (
	// boot is the package-level boot-trust allocator instance used before
	// the heap is initialized.
	boot BootAllocator

	errBootAllocOutOfMemory = &kernel.Error{Module: "boot_mem_alloc", Message: "out of memory"}
)

// BootAllocator implements pmm.FrameAllocator using only the memory region
// information provided by the bootloader. It excludes the frame ranges
// occupied by the kernel ELF image and by the Multiboot info block, and
// hands out every other frame exactly once, in increasing order.
//
// Because it tracks only the last handed-out frame, Deallocate is a no-op:
// the boot allocator never reclaims memory. Once the heap takes over all
// dynamic allocation, any frames still held by the boot allocator simply
// become permanently reserved.
type BootAllocator struct {
	allocCount     uint64
	lastAllocFrame pmm.Frame

	kernelStartAddr, kernelEndAddr   uintptr
	kernelStartFrame, kernelEndFrame pmm.Frame

	bootInfoStartAddr, bootInfoEndAddr     uintptr
	bootInfoStartFrame, bootInfoEndFrame   pmm.Frame
	haveBootInfoRange                      bool
}

// Init resets the package-level boot allocator so that it excludes the
// frame ranges [kernelStart,kernelEnd) and [bootInfoStart,bootInfoEnd).
// Either exclusion range may be empty (start == end) to indicate there is
// nothing to exclude.
func Init(kernelStart, kernelEnd, bootInfoStart, bootInfoEnd uintptr) {
	boot = BootAllocator{}
	boot.init(kernelStart, kernelEnd, bootInfoStart, bootInfoEnd)
}

// Allocate reserves and returns the next available physical frame.
func Allocate() (pmm.Frame, *kernel.Error) {
	return boot.Allocate()
}

// FramesLeft returns the number of frames the boot allocator could still
// hand out.
func FramesLeft() uint64 {
	return boot.FramesLeft()
}

// Deallocate is a no-op: the boot-trust allocator never tracks or reuses
// returned frames. It satisfies pmm.FrameAllocator so that callers written
// against the interface (e.g. the paging layer) work unchanged once a
// reclaiming allocator replaces this one.
func (alloc *BootAllocator) Deallocate(pmm.Frame) *kernel.Error {
	return nil
}

// PrintMemoryMap logs the system memory map as reported by the bootloader.
func PrintMemoryMap() {
	boot.printMemoryMap()
}

// Default is a zero-size pmm.FrameAllocator backed by the package-level
// boot allocator, for callers (e.g. the paging layer) that want to take an
// allocator value rather than call the package funcs directly.
type Default struct{}

// Allocate implements pmm.FrameAllocator.
func (Default) Allocate() (pmm.Frame, *kernel.Error) { return Allocate() }

// Deallocate implements pmm.FrameAllocator.
func (Default) Deallocate(f pmm.Frame) *kernel.Error { return boot.Deallocate(f) }

func (alloc *BootAllocator) init(kernelStart, kernelEnd, bootInfoStart, bootInfoEnd uintptr) {
	pageSizeMinus1 := uintptr(mem.PageSize - 1)

	alloc.kernelStartAddr = kernelStart
	alloc.kernelEndAddr = kernelEnd
	alloc.kernelStartFrame = pmm.Frame((kernelStart & ^pageSizeMinus1) >> mem.PageShift)
	alloc.kernelEndFrame = pmm.Frame(((kernelEnd+pageSizeMinus1) & ^pageSizeMinus1)>>mem.PageShift) - 1

	if bootInfoEnd > bootInfoStart {
		alloc.haveBootInfoRange = true
		alloc.bootInfoStartAddr = bootInfoStart
		alloc.bootInfoEndAddr = bootInfoEnd
		alloc.bootInfoStartFrame = pmm.Frame((bootInfoStart & ^pageSizeMinus1) >> mem.PageShift)
		alloc.bootInfoEndFrame = pmm.Frame(((bootInfoEnd+pageSizeMinus1) & ^pageSizeMinus1)>>mem.PageShift) - 1
	}
}

// inExcludedRange reports whether frame f falls within the kernel or
// boot-info exclusion ranges.
func (alloc *BootAllocator) inExcludedRange(f pmm.Frame) (skipTo pmm.Frame, excluded bool) {
	if f >= alloc.kernelStartFrame && f <= alloc.kernelEndFrame {
		return alloc.kernelEndFrame + 1, true
	}
	if alloc.haveBootInfoRange && f >= alloc.bootInfoStartFrame && f <= alloc.bootInfoEndFrame {
		return alloc.bootInfoEndFrame + 1, true
	}
	return 0, false
}

// Allocate scans the system memory regions reported by the bootloader and
// reserves the next available free frame, skipping the kernel and
// boot-info exclusion ranges.
func (alloc *BootAllocator) Allocate() (pmm.Frame, *kernel.Error) {
	var err = errBootAllocOutOfMemory

	multiboot.VisitMemRegions(func(region *multiboot.MemoryMapEntry) bool {
		if region.Type != multiboot.MemAvailable || region.Length < uint64(mem.PageSize) {
			return true
		}

		pageSizeMinus1 := uint64(mem.PageSize - 1)
		regionStartFrame := pmm.Frame(((region.PhysAddress + pageSizeMinus1) & ^pageSizeMinus1) >> mem.PageShift)
		regionEndFrame := pmm.Frame(((region.PhysAddress+region.Length) & ^pageSizeMinus1)>>mem.PageShift) - 1

		if alloc.lastAllocFrame >= regionEndFrame {
			return true
		}

		if (alloc.lastAllocFrame <= regionStartFrame && alloc.kernelStartFrame == regionStartFrame) ||
			(alloc.lastAllocFrame <= regionEndFrame && alloc.lastAllocFrame+1 == alloc.kernelStartFrame) {
			alloc.lastAllocFrame = alloc.kernelEndFrame + 1
		} else if alloc.lastAllocFrame < regionStartFrame || alloc.allocCount == 0 {
			alloc.lastAllocFrame = regionStartFrame
		} else {
			alloc.lastAllocFrame++
		}

		// A candidate frame may still land inside an exclusion range
		// (e.g. the boot-info block, which the kernel-range jump above
		// doesn't account for); keep skipping until clear.
		for {
			if skipTo, excluded := alloc.inExcludedRange(alloc.lastAllocFrame); excluded {
				alloc.lastAllocFrame = skipTo
				continue
			}
			break
		}

		if alloc.lastAllocFrame > regionEndFrame {
			return true
		}

		err = nil
		return false
	})

	if err != nil {
		return pmm.InvalidFrame, errBootAllocOutOfMemory
	}

	alloc.allocCount++
	return alloc.lastAllocFrame, nil
}

// FramesLeft returns the number of frames still available from this
// allocator: total available frames across all regions, minus the
// kernel/boot-info exclusion ranges, minus frames already handed out.
func (alloc *BootAllocator) FramesLeft() uint64 {
	var total uint64

	multiboot.VisitMemRegions(func(region *multiboot.MemoryMapEntry) bool {
		if region.Type != multiboot.MemAvailable || region.Length < uint64(mem.PageSize) {
			return true
		}

		pageSizeMinus1 := uint64(mem.PageSize - 1)
		regionStartFrame := pmm.Frame(((region.PhysAddress + pageSizeMinus1) & ^pageSizeMinus1) >> mem.PageShift)
		regionEndFrame := pmm.Frame(((region.PhysAddress+region.Length) & ^pageSizeMinus1)>>mem.PageShift) - 1

		frames := uint64(regionEndFrame-regionStartFrame) + 1

		if alloc.kernelStartFrame >= regionStartFrame && alloc.kernelEndFrame <= regionEndFrame {
			frames -= uint64(alloc.kernelEndFrame-alloc.kernelStartFrame) + 1
		}
		if alloc.haveBootInfoRange && alloc.bootInfoStartFrame >= regionStartFrame && alloc.bootInfoEndFrame <= regionEndFrame {
			frames -= uint64(alloc.bootInfoEndFrame-alloc.bootInfoStartFrame) + 1
		}

		total += frames
		return true
	})

	return total - alloc.allocCount
}

// printMemoryMap scans the memory region information provided by the
// bootloader and prints out the system's memory map.
func (alloc *BootAllocator) printMemoryMap() {
	kfmt.Printf("[boot_mem_alloc] system memory map:\n")
	var totalFree mem.Size
	multiboot.VisitMemRegions(func(region *multiboot.MemoryMapEntry) bool {
		kfmt.Printf("\t[0x%10x - 0x%10x], size: %10d, type: %s\n", region.PhysAddress, region.PhysAddress+region.Length, region.Length, region.Type.String())

		if region.Type == multiboot.MemAvailable {
			totalFree += mem.Size(region.Length)
		}
		return true
	})
	kfmt.Printf("[boot_mem_alloc] available memory: %dKb\n", uint64(totalFree/mem.Kb))
	kfmt.Printf("[boot_mem_alloc] kernel loaded at 0x%x - 0x%x\n", alloc.kernelStartAddr, alloc.kernelEndAddr)
	kfmt.Printf("[boot_mem_alloc] size: %d bytes, reserved pages: %d\n",
		uint64(alloc.kernelEndAddr-alloc.kernelStartAddr),
		uint64(alloc.kernelEndFrame-alloc.kernelStartFrame+1),
	)
}
