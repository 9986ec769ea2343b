package vmm

import (
	"ripos/kernel"
	"ripos/kernel/mem"
)

var (
	// earlyReserveLastUsed tracks the last reserved virtual address. It
	// starts at tempMappingAddr (the end of the kernel's usable address
	// space) and is decreased on each reservation.
	earlyReserveLastUsed = tempMappingAddr

	errEarlyReserveNoSpace = &kernel.Error{Module: "vmm", Message: "remaining virtual address space too small for reservation"}
)

// EarlyReserveRegion reserves a page-aligned contiguous virtual region of
// the requested size (rounded up to a page boundary) by bumping down from
// the end of the kernel's address space, and returns its start address. It
// is used to back the heap's reserved range.
func EarlyReserveRegion(size uintptr) (uintptr, *kernel.Error) {
	size = (size + (uintptr(mem.PageSize) - 1)) & ^(uintptr(mem.PageSize) - 1)

	if size > earlyReserveLastUsed {
		return 0, errEarlyReserveNoSpace
	}

	earlyReserveLastUsed -= size
	return earlyReserveLastUsed, nil
}
