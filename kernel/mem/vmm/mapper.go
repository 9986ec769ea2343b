package vmm

import (
	"ripos/kernel"
	"ripos/kernel/cpu"
	"ripos/kernel/mem"
	"ripos/kernel/mem/pmm"
	"unsafe"
)

var (
	flushTLBEntryFn = cpu.FlushTLBEntry

	errInvalidMappingOnUnmap = &kernel.Error{Module: "vmm", Message: "attempted to unmap a page that is not mapped"}
	errEntryInUse            = &kernel.Error{Module: "vmm", Message: "attempted to map an already-mapped page"}
)

// Mapper operates on the currently active L4 table through the recursive
// mapping. It carries no state of its own: "currently active" is whatever
// CR3 points to at the time a method runs.
type Mapper struct{}

// TranslatePage returns the physical frame mapped to page, or
// ErrInvalidMapping if it is not mapped at every level.
func (Mapper) TranslatePage(page Page) (pmm.Frame, *kernel.Error) {
	pte, err := pteForAddress(page.Address())
	if err != nil {
		return pmm.InvalidFrame, err
	}
	return pte.Frame(), nil
}

// Translate returns the physical address corresponding to virtAddr.
func (m Mapper) Translate(virtAddr uintptr) (uintptr, *kernel.Error) {
	frame, err := m.TranslatePage(PageFromAddress(virtAddr))
	if err != nil {
		return 0, err
	}
	return frame.Address() + Offset(virtAddr), nil
}

// MapPage walks the table hierarchy for page, allocating and zeroing any
// missing intermediate table from alloc, and installs a present mapping to
// frame with the given flags. The target L1 entry must currently be unused;
// MapPage panics otherwise, matching the invariant that a mapping is never
// silently clobbered.
func (Mapper) MapPage(page Page, frame pmm.Frame, flags PageTableEntryFlag, alloc pmm.FrameAllocator) *kernel.Error {
	var err *kernel.Error

	walk(page.Address(), func(pteLevel uint8, pte *pageTableEntry) bool {
		if pteLevel == pageLevels-1 {
			if pte.HasFlags(FlagPresent) {
				panic(errEntryInUse)
			}
			*pte = 0
			pte.SetFrame(frame)
			pte.SetFlags(FlagPresent | flags)
			flushTLBEntryFn(page.Address())
			return true
		}

		if pte.HasFlags(FlagHugePage) {
			err = errNoHugePageSupport
			return false
		}

		if !pte.HasFlags(FlagPresent) {
			var newTableFrame pmm.Frame
			newTableFrame, err = alloc.Allocate()
			if err != nil {
				return false
			}

			*pte = 0
			pte.SetFrame(newTableFrame)
			pte.SetFlags(FlagPresent | FlagRW)

			nextTableAddr := uintptr(unsafe.Pointer(pte)) << pageLevelBits[pteLevel+1]
			kernel.Memset(nextTableAddr, 0, mem.PageSize)
		}

		return true
	})

	return err
}

// IdentityMap maps frame to the page with the same number as the frame
// (i.e. virtual address == physical address).
func (m Mapper) IdentityMap(frame pmm.Frame, flags PageTableEntryFlag, alloc pmm.FrameAllocator) (Page, *kernel.Error) {
	page := Page(frame)
	if err := m.MapPage(page, frame, flags, alloc); err != nil {
		return 0, err
	}
	return page, nil
}

// Unmap clears the mapping previously installed for page, flushes its TLB
// entry and returns the frame it was backed by to alloc.
func (Mapper) Unmap(page Page, alloc pmm.FrameAllocator) *kernel.Error {
	var (
		err   *kernel.Error
		frame pmm.Frame
	)

	walk(page.Address(), func(pteLevel uint8, pte *pageTableEntry) bool {
		if pteLevel == pageLevels-1 {
			if !pte.HasFlags(FlagPresent) {
				err = errInvalidMappingOnUnmap
				return false
			}
			frame = pte.Frame()
			pte.ClearFlags(FlagPresent)
			flushTLBEntryFn(page.Address())
			return true
		}

		if !pte.HasFlags(FlagPresent) {
			err = ErrInvalidMapping
			return false
		}

		if pte.HasFlags(FlagHugePage) {
			err = errNoHugePageSupport
			return false
		}

		return true
	})

	if err != nil {
		return err
	}

	return alloc.Deallocate(frame)
}
