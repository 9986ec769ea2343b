package vmm

import "math"

const (
	// pageLevels is the number of page-table levels the amd64 MMU walks
	// (L4, L3, L2, L1).
	pageLevels = 4

	// ptePhysPageMask extracts the physical frame address encoded in a page
	// table entry (bits 12-51).
	ptePhysPageMask = uintptr(0x000ffffffffff000)

	// recursiveSlot is the L4 entry index (511) that a table's Init points
	// back at itself, making the active L4 permanently reachable at
	// pdtVirtualAddr.
	recursiveSlot = 511

	// tempMappingAddr is the fixed virtual page used for temporary
	// mappings (e.g. when zeroing an inactive table's top-level frame).
	// It uses L4 index 510 and index 511 at the three lower levels.
	tempMappingAddr = uintptr(0xffffff7ffffff000)
)

var (
	// pdtVirtualAddr is the virtual address that, thanks to the recursive
	// L4 entry, always resolves to the currently active L4 table.
	pdtVirtualAddr = uintptr(math.MaxUint64 &^ ((1 << 12) - 1))

	// pageLevelBits is the number of virtual-address bits consumed by each
	// page level (512 entries per level).
	pageLevelBits = [pageLevels]uint8{9, 9, 9, 9}

	// pageLevelShifts is the bit shift needed to extract each level's
	// index from a virtual address.
	pageLevelShifts = [pageLevels]uint8{39, 30, 21, 12}
)

// PageTableEntryFlag describes a flag that can be applied to a page table
// entry.
type PageTableEntryFlag uintptr

const (
	// FlagPresent is set when the page is resident in memory.
	FlagPresent PageTableEntryFlag = 1 << iota

	// FlagRW is set if the page can be written to.
	FlagRW

	// FlagUserAccessible is set if user-mode code can access this page.
	FlagUserAccessible

	// FlagWriteThroughCaching implies write-through caching when set.
	FlagWriteThroughCaching

	// FlagDoNotCache prevents the page from being cached.
	FlagDoNotCache

	// FlagAccessed is set by the CPU when the page is accessed.
	FlagAccessed

	// FlagDirty is set by the CPU when the page is modified.
	FlagDirty

	// FlagHugePage indicates a 2Mb page instead of a 4K page.
	FlagHugePage

	// FlagGlobal prevents the TLB entry for this page from being flushed
	// on a CR3 reload.
	FlagGlobal

	// FlagNoExecute marks the page as non-executable.
	FlagNoExecute = 1 << 63
)
