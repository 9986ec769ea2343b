package vmm

import (
	"ripos/kernel"
	"ripos/kernel/cpu"
	"ripos/kernel/mem"
	"ripos/kernel/mem/pmm"
	"unsafe"
)

var (
	activePDTFn = cpu.ActivePDT
	switchPDTFn = cpu.SwitchPDT
)

// InactivePageTable identifies a page table hierarchy that is not currently
// loaded into CR3. Its L4 frame can only be edited through TemporaryPage or
// through PageTableMaster.WithInactive.
type InactivePageTable struct {
	l4Frame pmm.Frame
}

// PageTableMaster wraps Mapper with the ability to switch the active table
// and to construct or edit an inactive one.
type PageTableMaster struct {
	Mapper
}

// NewInactivePageTable allocates a frame for a fresh L4 table, zeroes it
// through temp, and installs its self-referential recursive entry at index
// 511. The table is left inactive; use WithInactive to populate it and
// Switch (after wrapping it back as the active table) to adopt it.
func (PageTableMaster) NewInactivePageTable(alloc pmm.FrameAllocator, temp *TemporaryPage) (InactivePageTable, *kernel.Error) {
	frame, err := alloc.Allocate()
	if err != nil {
		return InactivePageTable{}, err
	}

	page, err := temp.Map(frame)
	if err != nil {
		return InactivePageTable{}, err
	}

	kernel.Memset(page.Address(), 0, mem.PageSize)

	lastEntry := (*pageTableEntry)(unsafe.Pointer(page.Address() + (recursiveSlot << mem.PointerShift)))
	*lastEntry = 0
	lastEntry.SetFlags(FlagPresent | FlagRW)
	lastEntry.SetFrame(frame)

	temp.Unmap()

	return InactivePageTable{l4Frame: frame}, nil
}

// activeL4Frame returns the frame backing the currently active L4 table.
func activeL4Frame() pmm.Frame {
	return pmm.Frame(activePDTFn() >> mem.PageShift)
}

// WithInactive temporarily installs inactive's L4 frame into the active L4's
// recursive slot so that, for the duration of fn, the recursive-mapping
// trick reaches inactive's tables instead of the active ones. This lets
// Mapper methods run unmodified against a table that isn't loaded into CR3.
func (m PageTableMaster) WithInactive(inactive InactivePageTable, fn func(Mapper) *kernel.Error) *kernel.Error {
	active := activeL4Frame()

	recursiveEntryAddr := pdtVirtualAddr + (recursiveSlot << mem.PointerShift)
	recursiveEntry := (*pageTableEntry)(unsafe.Pointer(recursiveEntryAddr))

	recursiveEntry.SetFrame(inactive.l4Frame)
	flushTLBEntryFn(recursiveEntryAddr)

	err := fn(m.Mapper)

	recursiveEntry.SetFrame(active)
	flushTLBEntryFn(recursiveEntryAddr)

	return err
}

// Switch activates this table, making it the live address space. Once
// active, any virtual addresses it doesn't map itself (such as ones mapped
// only in the table it replaces) stop resolving.
func (t InactivePageTable) Switch() {
	switchPDTFn(t.l4Frame.Address())
}
